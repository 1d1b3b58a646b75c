// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package symbols

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/osutil"
)

// Bounds are the section offsets of one build of the game binary.
type Bounds struct {
	Version string
	Code    uint32
	Rodata  uint32
	Data    uint32
	BSS     uint32
	BSSSize uint32
}

type BoundsTable struct {
	Rows []Bounds
}

func LoadBounds(file string) (*BoundsTable, error) {
	data, err := osutil.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read bounds table: %w", err)
	}
	return ParseBounds(file, data)
}

func ParseBounds(name string, data []byte) (*BoundsTable, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.TrimLeadingSpace = true
	hdr, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%v: failed to read header: %w", name, err)
	}
	cols, err := columns(hdr, "Version", "Code offset", "Rodata offset", "Data offset", "BSS size")
	if err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	bssCol, ok := cols["BSS offset"]
	if !ok {
		if bssCol, ok = cols["BSS start"]; !ok {
			return nil, fmt.Errorf("%v: missing column \"BSS offset\"", name)
		}
	}
	bt := new(BoundsTable)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return bt, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%v: %w", name, err)
		}
		line, _ := r.FieldPos(0)
		b := Bounds{Version: strings.TrimSpace(rec[cols["Version"]])}
		for _, f := range []struct {
			col int
			val *uint32
		}{
			{cols["Code offset"], &b.Code},
			{cols["Rodata offset"], &b.Rodata},
			{cols["Data offset"], &b.Data},
			{bssCol, &b.BSS},
			{cols["BSS size"], &b.BSSSize},
		} {
			if *f.val, err = parseHex(rec[f.col]); err != nil {
				return nil, fmt.Errorf("%v:%v: %w", name, line, err)
			}
		}
		bt.Rows = append(bt.Rows, b)
	}
}

// Find returns the row for the region. RegionUnknown never matches.
func (bt *BoundsTable) Find(region crash.Region) (*Bounds, error) {
	if !region.Known() {
		return nil, fmt.Errorf("%w: %v", crash.ErrUnknownRegion, region)
	}
	for i := range bt.Rows {
		if strings.EqualFold(bt.Rows[i].Version, region.String()) {
			return &bt.Rows[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no bounds for %v", crash.ErrUnknownRegion, region)
}
