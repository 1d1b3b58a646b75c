// Copyright 2015 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package toolconfig loads and validates the bertram tool configuration.
package toolconfig

import (
	"fmt"
	"path/filepath"

	"github.com/rhmodding/bertram/pkg/config"
	"github.com/rhmodding/bertram/pkg/osutil"
)

const (
	DefaultCallStackDepth = 5
	DefaultWorkers        = 4
	maxWorkers            = 128
	boundsFileName        = "bounds.csv"
)

func LoadData(data []byte) (*Config, error) {
	cfg := DefaultValues()
	if err := config.LoadData(data, cfg); err != nil {
		return nil, err
	}
	if err := Complete(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadFile(filename string) (*Config, error) {
	cfg := DefaultValues()
	if err := config.LoadFile(filename, cfg); err != nil {
		return nil, err
	}
	if err := Complete(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultValues returns the configuration used when no file is given.
// Callers that override fields must call Complete afterwards.
func DefaultValues() *Config {
	return &Config{
		SymbolsDir:     "sym",
		CallStackDepth: DefaultCallStackDepth,
		Workers:        DefaultWorkers,
	}
}

func Complete(cfg *Config) error {
	if cfg.SymbolsDir == "" {
		return fmt.Errorf("config param symbols_dir is empty")
	}
	cfg.SymbolsDir = osutil.Abs(cfg.SymbolsDir)
	if cfg.BoundsFile == "" {
		cfg.BoundsFile = filepath.Join(cfg.SymbolsDir, boundsFileName)
	}
	cfg.BoundsFile = osutil.Abs(cfg.BoundsFile)
	if cfg.CallStackDepth < 0 {
		return fmt.Errorf("bad config param call_stack_depth: %v, want >= 0", cfg.CallStackDepth)
	}
	if cfg.Workers < 1 || cfg.Workers > maxWorkers {
		return fmt.Errorf("bad config param workers: %v, want [1, %v]", cfg.Workers, maxWorkers)
	}
	cfg.MetricsFile = osutil.Abs(cfg.MetricsFile)
	return nil
}
