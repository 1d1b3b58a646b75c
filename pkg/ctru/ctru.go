// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package ctru decodes Nintendo 3DS result codes.
package ctru

import (
	"fmt"
	"strconv"
	"strings"
)

// Result is a 32-bit result code split into its bit fields.
type Result struct {
	Code        uint32
	Description uint32 // bits 0-9
	Module      uint32 // bits 10-17
	Summary     uint32 // bits 21-26
	Level       uint32 // bits 27-31
}

func Decode(code uint32) Result {
	return Result{
		Code:        code,
		Description: code & 0x3ff,
		Module:      (code >> 10) & 0xff,
		Summary:     (code >> 21) & 0x3f,
		Level:       code >> 27,
	}
}

// Parse accepts a hex code with an optional 0x prefix.
func Parse(s string) (Result, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 32)
	if err != nil {
		return Result{}, fmt.Errorf("bad result code %q", s)
	}
	return Decode(uint32(v)), nil
}

func (r Result) DescriptionName() string {
	if s, ok := descriptions[r.Description]; ok {
		return s
	}
	return "Unknown"
}

func (r Result) ModuleName() string {
	if s, ok := modules[r.Module]; ok {
		return s
	}
	return fmt.Sprintf("<Unknown (%v)>", r.Module)
}

func (r Result) SummaryName() string {
	if s, ok := summaries[r.Summary]; ok {
		return s
	}
	return fmt.Sprintf("Unknown (%v)", r.Summary)
}

func (r Result) LevelName() string {
	if s, ok := levels[r.Level]; ok {
		return s
	}
	return fmt.Sprintf("Unknown (%v)", r.Level)
}

func (r Result) String() string {
	return fmt.Sprintf("In module %v:\n\t- Summary: %v\n\t- Level: %v\n\t- Description: %v (%v)",
		r.ModuleName(), r.SummaryName(), r.LevelName(), r.DescriptionName(), r.Description)
}
