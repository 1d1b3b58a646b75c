// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package report renders decoded dumps, analyses and diagnoses as text.
package report

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/rhmodding/bertram/pkg/analyze"
	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/luma"
	"github.com/rhmodding/bertram/pkg/saltwater"
	"github.com/rhmodding/bertram/pkg/solve"
	"github.com/rhmodding/bertram/pkg/symbols"
)

// DefaultStackLines is the number of stack lines shown when no limit is given.
const DefaultStackLines = 16

func Luma(d *luma.Dump) string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "Luma3DS crash dump:\n")
	if !d.Version.Supported() {
		fmt.Fprintf(buf, "WARNING: unsupported dump version %v, minimum supported %v\n",
			d.Version, luma.MinimumVersion)
	}
	fmt.Fprintf(buf, "Processor: %v\n", d.Processor)
	fmt.Fprintf(buf, "Exception type: %v\n", d.Exception)
	regs := d.Regs()
	dfsr, _ := regs.Get(crash.RegDFSR)
	ifsr, _ := regs.Get(crash.RegIFSR)
	if fault := crash.FaultStatus(d.Exception, dfsr, ifsr); fault != "" {
		fmt.Fprintf(buf, "Fault status: %v\n", fault)
	}
	if len(d.Extra) != 0 {
		if ti, ok := d.TitleInfo(); ok {
			fmt.Fprintf(buf, "Current process: %v (%016X)\n", ti.Name, ti.TitleID)
		} else if d.Processor.Kind == luma.Arm9 {
			fmt.Fprintf(buf, "<ARM9 memory embedded in the crash>\n")
		}
	}
	fmt.Fprintf(buf, "\nRegister dump:\n")
	var named []namedReg
	for i := 0; i < regs.Len(); i++ {
		v, _ := regs.Get(i)
		named = append(named, namedReg{crash.RegisterName(i), v})
	}
	writeRegisters(buf, named)
	return buf.String()
}

func Saltwater(d *saltwater.Dump) string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "Saltwater crash dump:\n")
	fmt.Fprintf(buf, "Region: %v\n", d.Region)
	fmt.Fprintf(buf, "Version: %v\n", d.Version)
	fmt.Fprintf(buf, "Exception type: %v\n", d.Exception)
	if fault := d.FaultStatus(); fault != "" {
		fmt.Fprintf(buf, "Fault status: %v\n", fault)
	}
	fmt.Fprintf(buf, "\nRegister dump:\n")
	var named []namedReg
	if d.Registers != nil {
		for i, v := range d.Registers {
			named = append(named, namedReg{crash.RegisterName(i), v})
		}
	}
	named = append(named, namedReg{"lr", d.LR}, namedReg{"pc", d.PC})
	for _, reg := range d.StatusRegisters() {
		named = append(named, namedReg{reg.Name, reg.Val})
	}
	writeRegisters(buf, named)
	fmt.Fprintf(buf, "\nCall stack:\n")
	for _, addr := range d.CallStack {
		fmt.Fprintf(buf, " - %08x\n", addr)
	}
	return buf.String()
}

type namedReg struct {
	name string
	val  uint32
}

// writeRegisters prints two registers per line.
func writeRegisters(buf *bytes.Buffer, regs []namedReg) {
	for i, reg := range regs {
		fmt.Fprintf(buf, "%-8v%08x", reg.name, reg.val)
		if i%2 == 1 || i == len(regs)-1 {
			buf.WriteByte('\n')
		} else {
			buf.WriteString("    ")
		}
	}
}

// Stack renders the stack as little-endian words, 4 per line, at most lines lines.
// sp may be nil if the dump did not record it.
func Stack(stack []byte, sp *uint32, lines int) string {
	if lines <= 0 {
		lines = DefaultStackLines
	}
	buf := new(bytes.Buffer)
	if sp != nil {
		fmt.Fprintf(buf, "Stack dump (sp = %08x):\n", *sp)
	} else {
		fmt.Fprintf(buf, "Stack dump:\n")
	}
	for i := 0; i+4 <= len(stack) && i < lines*16; i += 4 {
		fmt.Fprintf(buf, "%08x", binary.LittleEndian.Uint32(stack[i:]))
		if i%16 == 12 || i+8 > len(stack) || i+4 == lines*16 {
			buf.WriteByte('\n')
		} else {
			buf.WriteByte(' ')
		}
	}
	return buf.String()
}

func Analysis(a *analyze.Analysis) string {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "Crash analysis (%v), id %v:\n", a.Engine, a.ID.Short())
	if !a.OOBPC {
		fmt.Fprintf(buf, "pc: %v\n", a.PC)
	}
	fmt.Fprintf(buf, "lr: %v\n", a.LR)
	if len(a.CallStack) != 0 {
		fmt.Fprintf(buf, "Call stack:\n")
		for _, fn := range a.CallStack {
			fmt.Fprintf(buf, " - %v\n", fn)
		}
	}
	return buf.String()
}

func Diagnoses(ds []solve.Diagnosis) string {
	if len(ds) == 0 {
		return "No known crash cause found.\n"
	}
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "Possible causes:\n")
	for _, d := range ds {
		fmt.Fprintf(buf, " - %v\n", d)
	}
	return buf.String()
}

// Symbol renders a symbol lookup result, sym may be nil.
func Symbol(sym *symbols.Symbol) string {
	if sym == nil {
		return "Symbol couldn't be found\n"
	}
	return fmt.Sprintf("Symbol found: %v (%08x)\n", sym.DisplayName(), sym.Addr)
}
