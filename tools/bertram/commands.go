// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rhmodding/bertram/pkg/analyze"
	"github.com/rhmodding/bertram/pkg/config"
	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/ctrplugin"
	"github.com/rhmodding/bertram/pkg/ctru"
	"github.com/rhmodding/bertram/pkg/log"
	"github.com/rhmodding/bertram/pkg/osutil"
	"github.com/rhmodding/bertram/pkg/report"
	"github.com/rhmodding/bertram/pkg/solve"
	"github.com/rhmodding/bertram/pkg/symbols"
	"github.com/rhmodding/bertram/pkg/tool"
	"github.com/rhmodding/bertram/pkg/toolconfig"
)

func cmdLuma(_ *toolconfig.Config, args []string) error {
	return printDump("luma", args)
}

func cmdSaltwater(_ *toolconfig.Config, args []string) error {
	return printDump("saltwater", args)
}

func printDump(format string, args []string) error {
	args, err := tool.ParseFlags(flag.NewFlagSet(format, flag.ContinueOnError), args, 1, 1)
	if err != nil {
		return err
	}
	d, err := loadDump(args[0])
	if err != nil {
		return err
	}
	if d.format() != format {
		return fmt.Errorf("%v: not a %v dump (found %v)", d.file, format, d.format())
	}
	fmt.Print(d.report())
	return nil
}

func cmdStack(_ *toolconfig.Config, args []string) error {
	flags := flag.NewFlagSet("stack", flag.ContinueOnError)
	lines := flags.Int("lines", report.DefaultStackLines, "max number of stack lines")
	args, err := tool.ParseFlags(flags, args, 1, 1)
	if err != nil {
		return err
	}
	d, err := loadDump(args[0])
	if err != nil {
		return err
	}
	info, err := d.info(0)
	if err != nil {
		return err
	}
	if len(info.Stack) == 0 {
		return fmt.Errorf("%v: the dump has no stack", d.file)
	}
	fmt.Print(report.Stack(info.Stack, info.SP, *lines))
	return nil
}

func cmdAnalyze(cfg *toolconfig.Config, args []string) error {
	args, err := tool.ParseFlags(flag.NewFlagSet("analyze", flag.ContinueOnError), args, 1, -1)
	if err != nil {
		return err
	}
	return forEachDump(cfg, args, func(d *dump) (string, error) {
		info, err := d.info(cfg.CallStackDepth)
		if err != nil {
			return "", err
		}
		res, err := symbols.Open(cfg.SymbolsDir, cfg.BoundsFile, info.Engine)
		if err != nil {
			return "", err
		}
		a, err := analyze.Analyze(info, res)
		if err != nil {
			return "", err
		}
		return report.Analysis(a), nil
	})
}

func cmdSolve(cfg *toolconfig.Config, args []string) error {
	args, err := tool.ParseFlags(flag.NewFlagSet("solve", flag.ContinueOnError), args, 1, -1)
	if err != nil {
		return err
	}
	bounds, err := symbols.LoadBounds(osutil.Locate(cfg.BoundsFile))
	if err != nil {
		return err
	}
	engine, err := solve.New(bounds)
	if err != nil {
		return err
	}
	return forEachDump(cfg, args, func(d *dump) (string, error) {
		info, err := d.info(cfg.CallStackDepth)
		if err != nil {
			return "", err
		}
		if region := info.Region(); !region.Known() {
			return "", fmt.Errorf("%w: %v", crash.ErrUnknownRegion, region)
		}
		ds, err := engine.FindMatches(info)
		if err != nil {
			return "", err
		}
		return report.Diagnoses(ds), nil
	})
}

// forEachDump processes dumps in parallel and prints the results in argument order.
// A failed dump does not stop the others.
func forEachDump(cfg *toolconfig.Config, files []string, fn func(*dump) (string, error)) error {
	type result struct {
		out string
		err error
	}
	results := make([]result, len(files))
	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			d, err := loadDump(file)
			if err == nil {
				results[i].out, err = fn(d)
			}
			results[i].err = err
			return nil
		})
	}
	g.Wait()
	failed := 0
	for i, res := range results {
		if len(files) > 1 {
			fmt.Printf("==> %v <==\n", files[i])
		}
		if res.err != nil {
			log.Errorf("%v", res.err)
			failed++
			continue
		}
		fmt.Print(res.out)
	}
	if failed != 0 {
		return fmt.Errorf("failed to process %v out of %v dumps", failed, len(files))
	}
	return nil
}

func cmdSymbol(cfg *toolconfig.Config, args []string) error {
	flags := flag.NewFlagSet("symbol", flag.ContinueOnError)
	regionName := flags.String("region", crash.RegionUS.String(), "game region")
	args, err := tool.ParseFlags(flags, args, 1, 1)
	if err != nil {
		return err
	}
	region, err := crash.ParseRegionName(*regionName)
	if err != nil {
		return err
	}
	addr, err := tool.ParseAddress(args[0])
	if err != nil {
		return err
	}
	res, err := symbols.OpenRegion(cfg.SymbolsDir, cfg.BoundsFile, region)
	if err != nil {
		return err
	}
	sym, err := res.FindSymbol(addr)
	if err != nil {
		return err
	}
	fmt.Print(report.Symbol(sym))
	return nil
}

func cmdSymgen(cfg *toolconfig.Config, args []string) error {
	flags := flag.NewFlagSet("symgen", flag.ContinueOnError)
	out := flags.String("o", "", "output file (xz-compressed if it ends in .xz)")
	tag := flags.String("tag", "", "debug build tag, writes the table for it into the symbols dir if -o is empty")
	args, err := tool.ParseFlags(flags, args, 1, 1)
	if err != nil {
		return err
	}
	file, err := symgenOutput(cfg, *out, *tag)
	if err != nil {
		return err
	}
	data, err := osutil.ReadFile(args[0])
	if err != nil {
		return err
	}
	info, err := ctrplugin.ReadInfo(bytes.NewReader(data))
	if err != nil {
		return err
	}
	buf := new(bytes.Buffer)
	w, err := symbols.NewWriter(buf)
	if err != nil {
		return err
	}
	n, err := ctrplugin.ExtractSymbols(bytes.NewReader(data), w)
	if err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "%v by %v: extracted %v symbols\n", info.Title, info.Author, n)
	if file == "" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := osutil.MkdirAll(filepath.Dir(file)); err != nil {
		return err
	}
	return osutil.WriteFile(file, buf.Bytes())
}

// symgenOutput returns the file to write the table to, empty for stdout.
// Debug tags are hex numbers and are normalized the way dumps render them.
func symgenOutput(cfg *toolconfig.Config, out, tag string) (string, error) {
	if out != "" || tag == "" {
		return out, nil
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(tag, "0x"), 16, 32)
	if err != nil {
		return "", fmt.Errorf("bad debug tag %q: not a 32-bit hex number", tag)
	}
	version := crash.PluginVersion{DebugTag: strconv.FormatUint(v, 16)}
	return symbols.SecondaryTable(cfg.SymbolsDir, version), nil
}

func cmdConfig(cfg *toolconfig.Config, args []string) error {
	args, err := tool.ParseFlags(flag.NewFlagSet("config", flag.ContinueOnError), args, 1, 1)
	if err != nil {
		return err
	}
	return config.SaveFile(args[0], cfg)
}

func cmdCtru(_ *toolconfig.Config, args []string) error {
	args, err := tool.ParseFlags(flag.NewFlagSet("ctru", flag.ContinueOnError), args, 1, 1)
	if err != nil {
		return err
	}
	res, err := ctru.Parse(args[0])
	if err != nil {
		return err
	}
	fmt.Println(res)
	return nil
}
