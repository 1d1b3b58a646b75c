// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"

	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/luma"
	"github.com/rhmodding/bertram/pkg/osutil"
	"github.com/rhmodding/bertram/pkg/report"
	"github.com/rhmodding/bertram/pkg/saltwater"
)

// dump is a decoded crash dump of either supported format.
type dump struct {
	file      string
	luma      *luma.Dump
	saltwater *saltwater.Dump
}

func loadDump(file string) (*dump, error) {
	data, err := osutil.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return decodeDump(file, data)
}

// decodeDump tries FormatA (Luma3DS) first and falls back to FormatB (Saltwater)
// only if the data is not a Luma3DS dump at all.
func decodeDump(file string, data []byte) (*dump, error) {
	d := &dump{file: file}
	var err error
	if d.luma, err = luma.DecodeBytes(data); err == nil {
		return d, nil
	} else if !errors.Is(err, crash.ErrNotThisFormat) {
		return nil, fmt.Errorf("%v: %w", file, err)
	}
	if d.saltwater, err = saltwater.DecodeBytes(data); err == nil {
		return d, nil
	} else if !errors.Is(err, crash.ErrNotThisFormat) {
		return nil, fmt.Errorf("%v: %w", file, err)
	}
	return nil, fmt.Errorf("%v: unrecognized crash dump format", file)
}

// info normalizes the dump. depth only applies to Luma3DS dumps,
// Saltwater records a fixed-size call stack.
func (d *dump) info(depth int) (*crash.Info, error) {
	if d.luma != nil {
		info, err := d.luma.Generic(depth)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", d.file, err)
		}
		return info, nil
	}
	return d.saltwater.Generic(), nil
}

func (d *dump) format() string {
	if d.luma != nil {
		return "luma"
	}
	return "saltwater"
}

func (d *dump) report() string {
	if d.luma != nil {
		return report.Luma(d.luma)
	}
	return report.Saltwater(d.saltwater)
}
