// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package saltwater

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/testutil"
)

func build(hdr []byte, version []byte, vals ...uint32) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("SELCRAH\x00")
	buf.Write(hdr)
	buf.Write(version)
	binary.Write(buf, binary.LittleEndian, vals)
	return buf.Bytes()
}

func scalars() []uint32 {
	return []uint32{
		0x00100020, 0x00100010, 0x60000010, 0x00000805, 0x00000004, // pc lr cpsr a b
		0x00100100, 0x00100200, 0x07000300, 0, 0, // call stack
	}
}

func TestDecodeShortDebug(t *testing.T) {
	data := build([]byte{1, 1, 2, 0}, []byte{0xcd, 0xab, 0x00, 0x00}, scalars()...)
	d, err := DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, Short, d.Kind)
	assert.Equal(t, crash.RegionUS, d.Region)
	assert.Equal(t, crash.PrefetchAbort, d.Exception)
	assert.False(t, d.Version.Release)
	assert.Equal(t, "abcd", d.Version.String())
	assert.Nil(t, d.Registers)
	assert.Nil(t, d.Stack)
	assert.Equal(t, uint32(0x00100020), d.PC)
	assert.Equal(t, [CallStackSize]uint32{0x00100100, 0x00100200, 0x07000300, 0, 0}, d.CallStack)
	assert.Equal(t, "Instruction cache maintenance operation fault", d.FaultStatus())
	assert.Equal(t, []StatusRegister{{"ifsr", 4}}, d.StatusRegisters())
}

func TestDecodeExtendedRelease(t *testing.T) {
	vals := scalars()
	for i := 0; i < NumRegisters; i++ {
		vals = append(vals, uint32(i))
	}
	vals = append(vals, 8)
	data := build([]byte{0, 2, 3, 1}, []byte{1, 2, 3, 0xee}, vals...)
	data = append(data, 1, 2, 3, 4, 5, 6, 7, 8)
	d, err := DecodeBytes(data)
	require.NoError(t, err)
	assert.Equal(t, Extended, d.Kind)
	assert.Equal(t, crash.RegionEU, d.Region)
	assert.Equal(t, crash.DataAbort, d.Exception)
	assert.Equal(t, crash.PluginVersion{Release: true, Major: 1, Minor: 2, Patch: 3}, d.Version)
	require.NotNil(t, d.Registers)
	assert.Equal(t, uint32(13), d.Registers[13])
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, d.Stack)
	// 0x805: low nibble 5, bit 10 clear.
	assert.Equal(t, "Translation - Section", d.FaultStatus())
	assert.Equal(t, []StatusRegister{{"dfsr", 0x805}, {"far", 4}}, d.StatusRegisters())

	buf := new(bytes.Buffer)
	require.NoError(t, d.Encode(buf))
	// The reserved version byte is written back as zero.
	data[8+4+3] = 0
	if diff := cmp.Diff(data, buf.Bytes()); diff != "" {
		t.Fatalf("re-encoded dump differs:\n%s", diff)
	}
}

func TestStackClamp(t *testing.T) {
	for _, declared := range []uint32{0, 1, 0xff, 0x100, 0x101, 0x1000, 0xffffffff} {
		vals := append(scalars(), make([]uint32, NumRegisters)...)
		vals = append(vals, declared)
		data := build([]byte{0, 1, 1, 1}, []byte{1, 0, 0, 0}, vals...)
		data = append(data, make([]byte, 0x200)...)
		d, err := DecodeBytes(data)
		require.NoError(t, err)
		assert.Len(t, d.Stack, int(min(declared, 0x100)), "declared 0x%x", declared)
	}
}

func TestUnknownRegion(t *testing.T) {
	d, err := DecodeBytes(build([]byte{1, 9, 0, 0}, []byte{0, 0, 0, 0}, scalars()...))
	require.NoError(t, err)
	assert.Equal(t, crash.RegionUnknown, d.Region)
	assert.Equal(t, crash.RegionUnknown, d.Generic().Region())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{"empty", nil, crash.ErrNotThisFormat},
		{"luma magic", []byte{0xde, 0xc0, 0xad, 0xde, 0xfe, 0xca, 0xad, 0xde, 0, 0}, crash.ErrNotThisFormat},
		{"bad type", build([]byte{2, 1, 0, 0}, []byte{0, 0, 0, 0}, scalars()...), crash.ErrInvalidField},
		{"bad exception", build([]byte{1, 1, 4, 0}, []byte{0, 0, 0, 0}, scalars()...), crash.ErrInvalidField},
		{"short header", []byte("SELCRAH\x00\x01"), crash.ErrTruncated},
		{"short scalars", build([]byte{1, 1, 0, 0}, []byte{0, 0, 0, 0}, 1, 2, 3), crash.ErrTruncated},
		{"no registers", build([]byte{0, 1, 0, 0}, []byte{0, 0, 0, 0}, scalars()...), crash.ErrTruncated},
		{"short stack", build([]byte{0, 1, 0, 0}, []byte{0, 0, 0, 0},
			append(append(scalars(), make([]uint32, NumRegisters)...), 4)...), crash.ErrTruncated},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := DecodeBytes(test.data)
			assert.ErrorIs(t, err, test.err)
		})
	}
}

func TestGeneric(t *testing.T) {
	vals := scalars()
	for i := 0; i < NumRegisters; i++ {
		vals = append(vals, uint32(0x1000+i))
	}
	vals = append(vals, 0)
	d, err := DecodeBytes(build([]byte{0, 1, 3, 0}, []byte{0x78, 0x56, 0x34, 0x12}, vals...))
	require.NoError(t, err)
	info := d.Generic()
	assert.Equal(t, crash.PluginRuntime{Version: crash.PluginVersion{DebugTag: "12345678"},
		Region: crash.RegionUS}, info.Engine)
	require.NotNil(t, info.R)
	assert.Equal(t, uint32(0x100c), info.R[12])
	require.NotNil(t, info.SP)
	assert.Equal(t, uint32(0x100d), *info.SP)
	assert.Equal(t, uint32(0x00100020), info.PC)
	assert.Equal(t, uint32(0x00100010), info.LR)
	require.NotNil(t, info.DFSR)
	require.NotNil(t, info.FAR)
	assert.Equal(t, uint32(0x805), *info.DFSR)
	assert.Equal(t, uint32(4), *info.FAR)
	assert.Nil(t, info.IFSR)
	assert.Equal(t, []uint32{0x00100100, 0x00100200, 0x07000300, 0, 0}, info.CallStack)

	d.Exception = crash.UndefinedInstruction
	info = d.Generic()
	assert.Nil(t, info.DFSR)
	assert.Nil(t, info.FAR)
	d.Exception = crash.FloatingPoint
	info = d.Generic()
	require.NotNil(t, info.FPINST)
	assert.Equal(t, uint32(4), *info.FPINST)
}

func TestDecodeRandom(t *testing.T) {
	rnd := rand.New(testutil.RandSource(t))
	for i := 0; i < testutil.IterCount(); i++ {
		d, err := DecodeBytes(testutil.RandDump(rnd, Magic, 128))
		if err != nil {
			assert.NotErrorIs(t, err, crash.ErrNotThisFormat)
			continue
		}
		assert.LessOrEqual(t, len(d.Stack), MaxStackSize)
		assert.Equal(t, d.Kind == Extended, d.Registers != nil)
		d.StatusRegisters()
		d.FaultStatus()
		info := d.Generic()
		assert.Len(t, info.CallStack, CallStackSize)
	}
}
