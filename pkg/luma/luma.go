// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package luma decodes exception dumps written by the Luma3DS primary loader.
package luma

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

const format = "luma"

var Magic = [2]uint32{0xdeadc0de, 0xdeadcafe}

type Version struct {
	Major uint16
	Minor uint8
	Micro uint8
}

// MinimumVersion is the oldest dump layout known to be decoded correctly.
var MinimumVersion = Version{1, 0, 2}

func ParseVersion(v uint32) Version {
	return Version{
		Major: uint16(v >> 16),
		Minor: uint8(v >> 8),
		Micro: uint8(v),
	}
}

func (v Version) Pack() uint32 {
	return uint32(v.Major)<<16 | uint32(v.Minor)<<8 | uint32(v.Micro)
}

func (v Version) Supported() bool {
	return v.Pack() >= MinimumVersion.Pack()
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
}

type ProcessorKind uint16

const (
	Arm9  ProcessorKind = 9
	Arm11 ProcessorKind = 11
)

// Processor is the CPU that took the exception. Core is only meaningful for Arm11.
type Processor struct {
	Kind ProcessorKind
	Core uint16
}

func ParseProcessor(v uint32) (Processor, bool) {
	p := Processor{
		Kind: ProcessorKind(v & 0xffff),
		Core: uint16(v >> 16),
	}
	return p, p.Kind == Arm9 || p.Kind == Arm11
}

func (p Processor) Pack() uint32 {
	return uint32(p.Core)<<16 | uint32(p.Kind)
}

func (p Processor) String() string {
	if p.Kind == Arm9 {
		return "ARM9"
	}
	return fmt.Sprintf("ARM11 (core %d)", p.Core)
}

type Dump struct {
	Version   Version
	Processor Processor
	Exception crash.ExcType
	Registers []uint32
	Code      []byte
	Stack     []byte
	Extra     []byte
}

func DecodeBytes(data []byte) (*Dump, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a dump from rs positioned at the start of the dump.
func Decode(rs io.ReadSeeker) (*Dump, error) {
	r := binio.NewReader(rs)
	magic, err := r.U32s(len(Magic))
	if err != nil {
		return nil, notThisFormat(err)
	}
	if magic[0] != Magic[0] || magic[1] != Magic[1] {
		return nil, &crash.DecodeError{Format: format, Err: crash.ErrNotThisFormat}
	}
	d := new(Dump)
	version, err := r.U32()
	if err != nil {
		return nil, crash.Wrap(format, "version", err)
	}
	d.Version = ParseVersion(version)
	proc, err := r.U32()
	if err != nil {
		return nil, crash.Wrap(format, "processor", err)
	}
	var ok bool
	if d.Processor, ok = ParseProcessor(proc); !ok {
		return nil, crash.InvalidField(format, "processor", proc)
	}
	exc, err := r.U32()
	if err != nil {
		return nil, crash.Wrap(format, "exception", err)
	}
	if d.Exception, ok = crash.ParseExcType(exc); !ok {
		return nil, crash.InvalidField(format, "exception", exc)
	}
	if err := r.Skip(4); err != nil {
		return nil, crash.Wrap(format, "reserved", err)
	}
	sizes, err := r.U32s(4)
	if err != nil {
		return nil, crash.Wrap(format, "sizes", err)
	}
	if d.Registers, err = r.U32s(int(sizes[0] / 4)); err != nil {
		return nil, crash.Wrap(format, "registers", err)
	}
	if d.Code, err = r.Bytes(sizes[1]); err != nil {
		return nil, crash.Wrap(format, "code", err)
	}
	if d.Stack, err = r.Bytes(sizes[2]); err != nil {
		return nil, crash.Wrap(format, "stack", err)
	}
	if d.Extra, err = r.Bytes(sizes[3]); err != nil {
		return nil, crash.Wrap(format, "extra", err)
	}
	log.Logf(2, "luma: decoded %v dump v%v, %v registers", d.Processor, d.Version, len(d.Registers))
	return d, nil
}

// A dump too short to hold the magic cannot be this format.
func notThisFormat(err error) error {
	if errors.Is(err, binio.ErrTruncated) {
		err = crash.ErrNotThisFormat
	}
	return crash.Wrap(format, "magic", err)
}

// Encode writes the dump back in its binary layout.
func (d *Dump) Encode(w io.Writer) error {
	hdr := []uint32{
		Magic[0], Magic[1],
		d.Version.Pack(),
		d.Processor.Pack(),
		uint32(d.Exception),
		0,
		uint32(len(d.Registers) * 4),
		uint32(len(d.Code)),
		uint32(len(d.Stack)),
		uint32(len(d.Extra)),
	}
	for _, v := range [][]uint32{hdr, d.Registers} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, blob := range [][]byte{d.Code, d.Stack, d.Extra} {
		if _, err := w.Write(blob); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dump) Regs() crash.RegisterFile {
	return crash.NewRegisterFile(d.Registers)
}

type TitleInfo struct {
	Name    string
	TitleID uint64
}

// TitleInfo returns the process that crashed. It is only recorded for Arm11 dumps.
func (d *Dump) TitleInfo() (TitleInfo, bool) {
	if d.Processor.Kind != Arm11 || len(d.Extra) < 16 {
		return TitleInfo{}, false
	}
	name := d.Extra[:8]
	for i, c := range name {
		if c == 0 {
			name = name[:i]
			break
		}
	}
	return TitleInfo{
		Name:    string(name),
		TitleID: binary.LittleEndian.Uint64(d.Extra[8:16]),
	}, true
}

// Code ranges a return address can plausibly point into.
var codeRanges = [][2]uint32{
	{0x00100000, 0x04000000},
	{0x07000100, 0x08000000},
}

func IsCodeAddr(v uint32) bool {
	for _, r := range codeRanges {
		if v >= r[0] && v < r[1] {
			return true
		}
	}
	return false
}

// CallStack scans the stack for words that look like code addresses
// and returns at most n of them. Any data word in a code range is a false positive.
func (d *Dump) CallStack(n int) []uint32 {
	res := []uint32{}
	for i := 0; i+4 <= len(d.Stack) && len(res) < n; i += 4 {
		if v := binary.LittleEndian.Uint32(d.Stack[i:]); IsCodeAddr(v) {
			res = append(res, v)
		}
	}
	return res
}

// Generic converts the dump into the shared representation.
// If depth is positive, a call stack of at most depth entries is reconstructed.
func (d *Dump) Generic(depth int) (*crash.Info, error) {
	regs := d.Regs()
	if regs.Len() <= crash.RegCPSR {
		return nil, crash.InvalidField(format, "register count", len(d.Registers))
	}
	var r [crash.NumGeneral]uint32
	copy(r[:], d.Registers)
	info := &crash.Info{
		Engine:  crash.RHMPatch{},
		R:       &r,
		SP:      regs.Opt(crash.RegSP),
		LR:      d.Registers[crash.RegLR],
		PC:      d.Registers[crash.RegPC],
		CPSR:    d.Registers[crash.RegCPSR],
		DFSR:    regs.Opt(crash.RegDFSR),
		IFSR:    regs.Opt(crash.RegIFSR),
		FAR:     regs.Opt(crash.RegFAR),
		FPEXC:   regs.Opt(crash.RegFPEXC),
		FPINST:  regs.Opt(crash.RegFPINST),
		FPINST2: regs.Opt(crash.RegFPINST2),
		Stack:   d.Stack,
	}
	if depth > 0 {
		info.CallStack = d.CallStack(depth)
	}
	return info, nil
}
