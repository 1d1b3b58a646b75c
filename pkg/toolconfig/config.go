// Copyright 2015 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package toolconfig

type Config struct {
	// Directory with symbol tables: rhm.<region>.csv for the game binary and
	// sw.<version>.csv (sw._<tag>.csv for debug builds) for Saltwater plugins.
	// Tables may be xz-compressed (<name>.xz).
	SymbolsDir string `json:"symbols_dir"`
	// Bounds table with the section offsets of every game region (optional).
	// Defaults to <symbols_dir>/bounds.csv.
	BoundsFile string `json:"bounds_file,omitempty"`
	// Number of call stack entries reconstructed from Luma3DS stack dumps.
	CallStackDepth int `json:"call_stack_depth"`
	// Number of dumps analyzed in parallel.
	Workers int `json:"workers"`
	// Write metrics in the Prometheus text format to this file when done (optional).
	MetricsFile string `json:"metrics_file,omitempty"`
}
