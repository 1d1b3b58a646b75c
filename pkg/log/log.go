// Copyright 2016 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package log provides functionality similar to standard log package with some extensions:
//   - verbosity levels
//   - global verbosity setting that can be used by multiple packages
//   - a counter of reported errors
package log

import (
	"flag"
	"fmt"
	golog "log"
	"sync/atomic"
)

var (
	flagV      = flag.Int("vv", 0, "verbosity")
	errorCount atomic.Int64
)

// V reports whether messages at verbosity v are printed.
func V(v int) bool {
	return v <= *flagV
}

func Logf(v int, msg string, args ...any) {
	writeMessage(v, "", msg, args...)
}

// Errorf logs a non-fatal error regardless of verbosity and counts it.
func Errorf(msg string, args ...any) {
	errorCount.Add(1)
	writeMessage(0, "ERROR: ", msg, args...)
}

// ErrorCount returns the number of Errorf calls so far.
func ErrorCount() int {
	return int(errorCount.Load())
}

func writeMessage(v int, prefix, msg string, args ...any) {
	if V(v) {
		golog.Print(prefix + fmt.Sprintf(msg, args...))
	}
}

func Fatal(err error) {
	golog.Fatal(err)
}

func Fatalf(msg string, args ...any) {
	golog.Fatalf(msg, args...)
}
