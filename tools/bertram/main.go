// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// bertram decodes, symbolizes and diagnoses crash dumps of the game and its mods.
//
//	bertram [flags] <command> args...
//
// Commands:
//
//	luma <dump>                  print a Luma3DS crash dump
//	stack [-lines N] <dump>      print the stack of a crash dump
//	saltwater <dump>             print a Saltwater crash dump
//	analyze <dump>...            symbolize pc, lr and the call stack of dumps
//	solve <dump>...              list known causes of crashes
//	symbol [-region R] <addr>    look up the game symbol containing addr
//	symgen [-o out.csv] [-tag T] <3gx>
//	                             extract the symbol table of a 3GX plugin
//	config <file>                write the effective configuration to file
//	ctru <code>                  describe a ctrulib result code
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rhmodding/bertram/pkg/log"
	"github.com/rhmodding/bertram/pkg/stat"
	"github.com/rhmodding/bertram/pkg/tool"
	"github.com/rhmodding/bertram/pkg/toolconfig"
)

var (
	flagConfig      = flag.String("config", "", "configuration file (json or yaml)")
	flagSymbols     = flag.String("symbols", "", "directory with symbol tables (overrides config)")
	flagBounds      = flag.String("bounds", "", "bounds table (overrides config)")
	flagDepth       = flag.Int("depth", -1, "call stack depth for Luma3DS dumps (overrides config)")
	flagWorkers     = flag.Int("workers", 0, "number of dumps processed in parallel (overrides config)")
	flagMetricsFile = flag.String("metrics_file", "", "write metrics in Prometheus text format to this file")
)

type command struct {
	name  string
	args  string
	run   func(cfg *toolconfig.Config, args []string) error
	needs bool // needs the configuration
}

var commands = []command{
	{"luma", "<dump>", cmdLuma, false},
	{"stack", "[-lines N] <dump>", cmdStack, false},
	{"saltwater", "<dump>", cmdSaltwater, false},
	{"analyze", "<dump>...", cmdAnalyze, true},
	{"solve", "<dump>...", cmdSolve, true},
	{"symbol", "[-region R] <addr>", cmdSymbol, true},
	{"symgen", "[-o out.csv] [-tag T] <3gx>", cmdSymgen, true},
	{"ctru", "<code>", cmdCtru, false},
	{"config", "<file>", cmdConfig, true},
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
	}
	name, args := flag.Arg(0), flag.Args()[1:]
	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		var cfg *toolconfig.Config
		if cmd.needs {
			var err error
			if cfg, err = loadConfig(); err != nil {
				tool.Fail(err)
			}
		}
		if err := cmd.run(cfg, args); err != nil {
			tool.Fail(err)
		}
		printStats(cfg)
		if n := log.ErrorCount(); n != 0 {
			tool.Failf("%v errors", n)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n", name)
	usage()
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: bertram [flags] <command> args...\n")
	fmt.Fprintf(os.Stderr, "commands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(os.Stderr, "  %v %v\n", cmd.name, cmd.args)
	}
	fmt.Fprintf(os.Stderr, "flags:\n")
	flag.PrintDefaults()
	os.Exit(1)
}

func loadConfig() (*toolconfig.Config, error) {
	cfg := toolconfig.DefaultValues()
	if *flagConfig != "" {
		var err error
		if cfg, err = toolconfig.LoadFile(*flagConfig); err != nil {
			return nil, err
		}
	}
	if *flagSymbols != "" {
		cfg.SymbolsDir = *flagSymbols
	}
	if *flagBounds != "" {
		cfg.BoundsFile = *flagBounds
	}
	if *flagDepth >= 0 {
		cfg.CallStackDepth = *flagDepth
	}
	if *flagWorkers != 0 {
		cfg.Workers = *flagWorkers
	}
	if *flagMetricsFile != "" {
		cfg.MetricsFile = *flagMetricsFile
	}
	if err := toolconfig.Complete(cfg); err != nil {
		return nil, err
	}
	log.Logf(1, "config: symbols %v, bounds %v, depth %v, workers %v",
		cfg.SymbolsDir, cfg.BoundsFile, cfg.CallStackDepth, cfg.Workers)
	return cfg, nil
}

func printStats(cfg *toolconfig.Config) {
	if cfg == nil {
		return
	}
	if log.V(1) {
		for _, ui := range stat.Collect(stat.Console) {
			log.Logf(1, "%-24v %v", ui.Name+":", ui.Value)
		}
	}
	if cfg.MetricsFile != "" {
		if err := stat.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Errorf("failed to write metrics: %v", err)
		}
	}
}
