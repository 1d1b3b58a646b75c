// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package saltwater decodes crash dumps (SWD files) written by the Saltwater plugin runtime.
package saltwater

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/rhmodding/bertram/pkg/binio"
	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/log"
)

const format = "saltwater"

var Magic = []byte("SELCRAH\x00")

const (
	CallStackSize = 5
	NumRegisters  = 14
	// MaxStackSize caps the recorded stack, larger declared lengths are truncated.
	MaxStackSize = 0x100
)

type Kind uint8

const (
	Extended Kind = iota
	Short
)

func (k Kind) String() string {
	if k == Short {
		return "short"
	}
	return "extended"
}

type Dump struct {
	Kind      Kind
	Region    crash.Region
	Exception crash.ExcType
	Version   crash.PluginVersion

	PC      uint32
	LR      uint32
	CPSR    uint32
	StatusA uint32
	StatusB uint32

	CallStack [CallStackSize]uint32

	// Registers (r0..r12, sp) and Stack are only present in extended dumps.
	Registers *[NumRegisters]uint32
	Stack     []byte
}

func DecodeBytes(data []byte) (*Dump, error) {
	return Decode(bytes.NewReader(data))
}

func Decode(rs io.ReadSeeker) (*Dump, error) {
	r := binio.NewReader(rs)
	ok, err := r.Magic(Magic)
	if err != nil {
		return nil, crash.Wrap(format, "magic", err)
	}
	if !ok {
		return nil, &crash.DecodeError{Format: format, Err: crash.ErrNotThisFormat}
	}
	d := new(Dump)
	hdr, err := r.Bytes(4)
	if err != nil {
		return nil, crash.Wrap(format, "header", err)
	}
	if hdr[0] > uint8(Short) {
		return nil, crash.InvalidField(format, "type", hdr[0])
	}
	d.Kind = Kind(hdr[0])
	d.Region = crash.ParseRegion(hdr[1])
	if d.Exception, ok = crash.ParseExcType(uint32(hdr[2])); !ok {
		return nil, crash.InvalidField(format, "exception", hdr[2])
	}
	if d.Version, err = readVersion(r, hdr[3] != 0); err != nil {
		return nil, crash.Wrap(format, "version", err)
	}
	scalars, err := r.U32s(5 + CallStackSize)
	if err != nil {
		return nil, crash.Wrap(format, "registers", err)
	}
	d.PC, d.LR, d.CPSR, d.StatusA, d.StatusB = scalars[0], scalars[1], scalars[2], scalars[3], scalars[4]
	copy(d.CallStack[:], scalars[5:])
	if d.Kind == Short {
		log.Logf(2, "saltwater: decoded short dump %v %v", d.Version, d.Region)
		return d, nil
	}
	regs, err := r.U32s(NumRegisters)
	if err != nil {
		return nil, crash.Wrap(format, "extended registers", err)
	}
	d.Registers = new([NumRegisters]uint32)
	copy(d.Registers[:], regs)
	size, err := r.U32()
	if err != nil {
		return nil, crash.Wrap(format, "stack size", err)
	}
	if d.Stack, err = r.Bytes(min(size, MaxStackSize)); err != nil {
		return nil, crash.Wrap(format, "stack", err)
	}
	log.Logf(2, "saltwater: decoded extended dump %v %v, %v stack bytes", d.Version, d.Region, len(d.Stack))
	return d, nil
}

func readVersion(r *binio.Reader, release bool) (crash.PluginVersion, error) {
	if !release {
		tag, err := r.U32()
		return crash.PluginVersion{DebugTag: fmt.Sprintf("%x", tag)}, err
	}
	v, err := r.Bytes(4)
	if err != nil {
		return crash.PluginVersion{}, err
	}
	return crash.PluginVersion{Release: true, Major: v[0], Minor: v[1], Patch: v[2]}, nil
}

// Encode writes the dump back in its binary layout.
func (d *Dump) Encode(w io.Writer) error {
	buf := new(bytes.Buffer)
	buf.Write(Magic)
	buf.Write([]byte{byte(d.Kind), byte(d.Region), byte(d.Exception)})
	if d.Version.Release {
		buf.Write([]byte{1, d.Version.Major, d.Version.Minor, d.Version.Patch, 0})
	} else {
		var tag uint32
		if _, err := fmt.Sscanf(d.Version.DebugTag, "%x", &tag); err != nil {
			return fmt.Errorf("bad debug tag %q: %w", d.Version.DebugTag, err)
		}
		buf.WriteByte(0)
		binary.Write(buf, binary.LittleEndian, tag)
	}
	binary.Write(buf, binary.LittleEndian, []uint32{d.PC, d.LR, d.CPSR, d.StatusA, d.StatusB})
	binary.Write(buf, binary.LittleEndian, d.CallStack)
	if d.Kind == Extended {
		if d.Registers == nil {
			return errors.New("extended dump without registers")
		}
		binary.Write(buf, binary.LittleEndian, d.Registers)
		binary.Write(buf, binary.LittleEndian, uint32(len(d.Stack)))
		buf.Write(d.Stack)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// FaultStatus describes the abort cause, see crash.FaultStatus.
func (d *Dump) FaultStatus() string {
	return crash.FaultStatus(d.Exception, d.StatusA, d.StatusB)
}

// StatusRegister is a status slot that is meaningful for the dump's exception kind.
type StatusRegister struct {
	Name string
	Val  uint32
}

func (d *Dump) StatusRegisters() []StatusRegister {
	var res []StatusRegister
	names := d.Exception.StatusRegisterNames()
	for i, val := range []uint32{d.StatusA, d.StatusB} {
		if names[i] != "" {
			res = append(res, StatusRegister{names[i], val})
		}
	}
	return res
}

func (d *Dump) Engine() crash.PluginRuntime {
	return crash.PluginRuntime{Version: d.Version, Region: d.Region}
}

// Generic converts the dump into the shared representation.
func (d *Dump) Generic() *crash.Info {
	info := &crash.Info{
		Engine:    d.Engine(),
		LR:        d.LR,
		PC:        d.PC,
		CPSR:      d.CPSR,
		CallStack: append([]uint32{}, d.CallStack[:]...),
		Stack:     d.Stack,
	}
	if d.Registers != nil {
		var r [crash.NumGeneral]uint32
		copy(r[:], d.Registers[:])
		sp := d.Registers[crash.RegSP]
		info.R, info.SP = &r, &sp
	}
	a, b := d.StatusA, d.StatusB
	switch d.Exception {
	case crash.DataAbort:
		info.DFSR, info.FAR = &a, &b
	case crash.PrefetchAbort:
		info.IFSR = &b
	case crash.FloatingPoint:
		info.FPEXC, info.FPINST = &a, &b
	}
	return info
}
