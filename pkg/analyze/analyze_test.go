// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package analyze

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/symbols"
)

const (
	testBounds = "Version,Code offset,Rodata offset,Data offset,BSS offset,BSS size\n" +
		"US,00100000,00200000,00300000,00400000,1000\n"
	testPrimary   = "Name,Location,Namespace\nmain,00100000,Global\ntick,00100100,Tickflow\n"
	testSecondary = "Name,Location\n_ZN2sw4hookEv,07000000\n_TEXT_END,07000100\n"
)

func newResolver(t *testing.T) *symbols.Resolver {
	primary, err := symbols.ParseTable("primary", []byte(testPrimary))
	require.NoError(t, err)
	secondary, err := symbols.ParseTable("secondary", []byte(testSecondary))
	require.NoError(t, err)
	bounds, err := symbols.ParseBounds("bounds", []byte(testBounds))
	require.NoError(t, err)
	r := symbols.NewResolver(primary, secondary, bounds)
	require.NoError(t, r.InitBounds(crash.RegionUS))
	return r
}

func TestAnalyze(t *testing.T) {
	info := &crash.Info{
		Engine:    crash.PluginRuntime{Version: crash.PluginVersion{DebugTag: "abcd"}, Region: crash.RegionUS},
		PC:        0x00100104,
		LR:        0x07000010,
		CallStack: []uint32{0x00100010, 0x00300000, 0x07000100},
	}
	a, err := Analyze(info, newResolver(t))
	require.NoError(t, err)
	assert.False(t, a.OOBPC)
	assert.Equal(t, "Tickflow::tick+0x4 (00100104)", a.PC.String())
	assert.Equal(t, "sw::hook()+0x10 (07000010)", a.LR.String())
	var stack []string
	for _, fn := range a.CallStack {
		stack = append(stack, fn.String())
	}
	assert.Equal(t, []string{
		"main+0x10 (00100010)",
		"out of bounds (00300000)",
		"_TEXT_END+0x0 (07000100)",
	}, stack)
	assert.Equal(t, ID(info), a.ID)
}

func TestAnalyzeOOBPC(t *testing.T) {
	info := &crash.Info{Engine: crash.RHMPatch{}, PC: 0x00000010, LR: 0x00100000}
	a, err := Analyze(info, newResolver(t))
	require.NoError(t, err)
	assert.True(t, a.OOBPC)
	assert.False(t, a.PC.Resolved())
	assert.Equal(t, uint32(0), a.PC.Offset())
	assert.True(t, a.LR.Resolved())
	assert.Empty(t, a.CallStack)
}

type failingResolver struct{}

func (failingResolver) FindSymbol(addr uint32) (*symbols.Symbol, error) {
	return nil, errors.New("broken table")
}

func TestAnalyzeError(t *testing.T) {
	_, err := Analyze(&crash.Info{Engine: crash.RHMPatch{}}, failingResolver{})
	assert.ErrorContains(t, err, "broken table")
}

func TestID(t *testing.T) {
	a := &crash.Info{Engine: crash.RHMPatch{}, PC: 1, LR: 2, CallStack: []uint32{3}}
	b := &crash.Info{Engine: crash.RHMPatch{}, PC: 1, LR: 2, CallStack: []uint32{3}, FAR: new(uint32)}
	assert.Equal(t, ID(a), ID(b))
	b.CallStack = []uint32{4}
	assert.NotEqual(t, ID(a), ID(b))
	b.CallStack = a.CallStack
	b.Engine = crash.PluginRuntime{Region: crash.RegionUS}
	assert.NotEqual(t, ID(a), ID(b))
}
