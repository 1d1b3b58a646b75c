// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package symbols

import (
	"bytes"
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/osutil"
	"github.com/rhmodding/bertram/pkg/testutil"
)

const testBounds = `Version, Code offset, Rodata offset, Data offset, BSS offset, BSS size
US, 00100000, 00200000, 00300000, 00400000, 00001000
EU, 00100000, 0x00280000, 00380000, 00480000, 00002000
`

func mustTable(t *testing.T, data string) *Table {
	tab, err := ParseTable(t.Name(), []byte(data))
	require.NoError(t, err)
	return tab
}

func mustBounds(t *testing.T, data string) *BoundsTable {
	bt, err := ParseBounds(t.Name(), []byte(data))
	require.NoError(t, err)
	return bt
}

func TestFindSymbolBasic(t *testing.T) {
	r := NewResolver(mustTable(t, "Name,Location\na,00100000\nb,00100010\n"), nil, mustBounds(t, testBounds))
	require.NoError(t, r.InitBounds(crash.RegionUS))
	assert.True(t, r.InPrimary(0x001fffff))
	assert.False(t, r.InPrimary(0x00200000))

	sym, err := r.FindSymbol(0x100005)
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "a", sym.Name)
	assert.Equal(t, uint32(0x100000), sym.Addr)

	for _, addr := range []uint32{0x0fffff, 0x200000, 0x07000000, 0xffffffff} {
		sym, err = r.FindSymbol(addr)
		require.NoError(t, err)
		assert.Nil(t, sym, "0x%x", addr)
	}
	sym, err = r.FindSymbol(0x1fffff)
	require.NoError(t, err)
	assert.Equal(t, "b", sym.Name)
}

func TestFindSymbolNoPredecessor(t *testing.T) {
	r := NewResolver(mustTable(t, "Name,Location\na,00100100\n"), nil, mustBounds(t, testBounds))
	require.NoError(t, r.InitBounds(crash.RegionUS))
	sym, err := r.FindSymbol(0x1000ff)
	require.NoError(t, err)
	assert.Nil(t, sym)

	r = NewResolver(mustTable(t, "Name,Location\n"), nil, mustBounds(t, testBounds))
	require.NoError(t, r.InitBounds(crash.RegionUS))
	sym, err = r.FindSymbol(0x100100)
	require.NoError(t, err)
	assert.Nil(t, sym)
}

func TestFindSymbolPredecessor(t *testing.T) {
	rnd := rand.New(testutil.RandSource(t))
	for iter := 0; iter < 20; iter++ {
		var addrs []uint32
		seen := make(map[uint32]bool)
		for i := 0; i < 1+rnd.Intn(50); i++ {
			a := PrimaryStart + uint32(rnd.Intn(0x1000))
			if !seen[a] {
				seen[a] = true
				addrs = append(addrs, a)
			}
		}
		sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
		buf := new(bytes.Buffer)
		w, err := NewWriter(buf)
		require.NoError(t, err)
		for _, a := range addrs {
			require.NoError(t, w.WriteSymbol(fmt.Sprintf("f%x", a), a))
		}
		require.NoError(t, w.Flush())
		r := NewResolver(mustTable(t, buf.String()), nil, mustBounds(t, testBounds))
		require.NoError(t, r.InitBounds(crash.RegionUS))
		for q := uint32(PrimaryStart - 0x10); q < PrimaryStart+0x1010; q += 7 {
			sym, err := r.FindSymbol(q)
			require.NoError(t, err)
			idx := sort.Search(len(addrs), func(i int) bool { return addrs[i] > q }) - 1
			if q < PrimaryStart || idx < 0 {
				assert.Nil(t, sym, "0x%x", q)
				continue
			}
			require.NotNil(t, sym, "0x%x", q)
			assert.Equal(t, addrs[idx], sym.Addr, "0x%x", q)
			again, err := r.FindSymbol(q)
			require.NoError(t, err)
			assert.Equal(t, sym, again)
		}
	}
}

func TestSecondarySpace(t *testing.T) {
	primary := mustTable(t, "Name,Location,Namespace\nmain,00100000,Global\n")
	secondary := mustTable(t, `Name,Location,Namespace
_ZN2sw4initEv,07000000,
hook,07000100,sw
_TEXT_END,07000200,sw
`)
	r := NewResolver(primary, secondary, mustBounds(t, testBounds))
	require.NoError(t, r.InitBounds(crash.RegionEU))
	assert.True(t, r.InPrimary(0x0027ffff))
	assert.False(t, r.InPrimary(0x00280000))

	sym, err := r.FindSymbol(0x07000004)
	require.NoError(t, err)
	require.NotNil(t, sym)
	assert.Equal(t, "_ZN2sw4initEv", sym.FullName())
	assert.Equal(t, "sw::init()", sym.DisplayName())

	sym, err = r.FindSymbol(0x07000150)
	require.NoError(t, err)
	assert.Equal(t, "sw::hook", sym.FullName())

	// The sentinel address itself is inside the space.
	sym, err = r.FindSymbol(0x07000200)
	require.NoError(t, err)
	assert.Equal(t, SentinelName, sym.Name)

	sym, err = r.FindSymbol(0x07000201)
	require.NoError(t, err)
	assert.Nil(t, sym)

	sym, err = r.FindSymbol(0x00100004)
	require.NoError(t, err)
	assert.Equal(t, "main", sym.FullName())
}

func TestInitBoundsErrors(t *testing.T) {
	bounds := mustBounds(t, testBounds)
	r := NewResolver(mustTable(t, "Name,Location\n"), nil, bounds)
	assert.ErrorIs(t, r.InitBounds(crash.RegionUnknown), crash.ErrUnknownRegion)
	assert.ErrorIs(t, r.InitBounds(crash.RegionJP), crash.ErrUnknownRegion)

	r = NewResolver(mustTable(t, "Name,Location\n"), mustTable(t, "Name,Location\nfoo,07000000\n"), bounds)
	assert.ErrorIs(t, r.InitBounds(crash.RegionUS), crash.ErrMissingSentinelSymbol)
}

func TestContractViolations(t *testing.T) {
	r := NewResolver(mustTable(t, "Name,Location\na,00100000\n"), nil, mustBounds(t, testBounds))
	assert.PanicsWithValue(t, "symbol lookup before InitBounds", func() { r.FindSymbol(0x100000) })

	r = NewResolver(mustTable(t, "Name,Location\na,00100010\nb,00100000\n"), nil, mustBounds(t, testBounds))
	require.NoError(t, r.InitBounds(crash.RegionUS))
	assert.Panics(t, func() { r.FindSymbol(0x100020) })
}

func TestTableErrors(t *testing.T) {
	_, err := ParseTable("t", []byte("Name,Address\n"))
	assert.ErrorContains(t, err, `missing column "Location"`)
	_, err = ParseTable("t", nil)
	assert.Error(t, err)

	r := NewResolver(mustTable(t, " Name , Location \na,zzz\n"), nil, mustBounds(t, testBounds))
	require.NoError(t, r.InitBounds(crash.RegionUS))
	_, err = r.FindSymbol(0x100000)
	assert.ErrorIs(t, err, crash.ErrInvalidField)
}

func TestBounds(t *testing.T) {
	bt := mustBounds(t, "Version,Code offset,Rodata offset,Data offset,BSS start,BSS size\n"+
		"kr,00100000,00220000,00300000,00400000,10\n")
	b, err := bt.Find(crash.RegionKR)
	require.NoError(t, err)
	assert.Equal(t, Bounds{"kr", 0x100000, 0x220000, 0x300000, 0x400000, 0x10}, *b)

	_, err = ParseBounds("b", []byte("Version,Code offset,Rodata offset,Data offset,BSS size\n"))
	assert.ErrorContains(t, err, "BSS offset")
	_, err = ParseBounds("b", []byte("Version,Code offset,Rodata offset,Data offset,BSS offset,BSS size\n"+
		"US,1,2,3,4,x\n"))
	assert.ErrorIs(t, err, crash.ErrInvalidField)
}

func TestSymbolsAndNames(t *testing.T) {
	tab := mustTable(t, "Name,Location,Namespace\nx,00100000,Global\ny,00100004,\nz,00100008,ns\n")
	var names []string
	for _, addr := range []uint32{0x00100000, 0x00100004, 0x00100008} {
		sym, err := tab.Lookup(addr)
		require.NoError(t, err)
		names = append(names, sym.FullName())
	}
	assert.Equal(t, []string{"x", "y", "ns::z"}, names)
	assert.Equal(t, "not_mangled", (&Symbol{Name: "not_mangled"}).DisplayName())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, filepath.Join("d", "rhm.us.csv"), PrimaryTable("d", crash.RegionUS))
	assert.Equal(t, filepath.Join("d", "sw.1.2.3.csv"),
		SecondaryTable("d", crash.PluginVersion{Release: true, Major: 1, Minor: 2, Patch: 3}))
	assert.Equal(t, filepath.Join("d", "sw._abcd.csv"), SecondaryTable("d", crash.PluginVersion{DebugTag: "abcd"}))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	boundsFile := filepath.Join(dir, "bounds.csv")
	require.NoError(t, osutil.WriteFile(boundsFile, []byte(testBounds)))
	require.NoError(t, osutil.WriteFile(filepath.Join(dir, "rhm.us.csv.xz"),
		[]byte("Name,Location\nmain,00100000\n")))
	require.NoError(t, osutil.WriteFile(filepath.Join(dir, "sw._abcd.csv"),
		[]byte("Name,Location\nentry,07000000\n_TEXT_END,07000100\n")))

	r, err := Open(dir, boundsFile, crash.RHMPatch{})
	require.NoError(t, err)
	sym, err := r.FindSymbol(0x00100010)
	require.NoError(t, err)
	assert.Equal(t, "main", sym.Name)
	sym, err = r.FindSymbol(0x07000010)
	require.NoError(t, err)
	assert.Nil(t, sym)

	engine := crash.PluginRuntime{Version: crash.PluginVersion{DebugTag: "abcd"}, Region: crash.RegionUS}
	r, err = Open(dir, boundsFile, engine)
	require.NoError(t, err)
	sym, err = r.FindSymbol(0x07000010)
	require.NoError(t, err)
	assert.Equal(t, "entry", sym.Name)

	engine.Region = crash.RegionUnknown
	_, err = Open(dir, boundsFile, engine)
	assert.ErrorIs(t, err, crash.ErrUnknownRegion)

	engine = crash.PluginRuntime{Version: crash.PluginVersion{DebugTag: "ffff"}, Region: crash.RegionUS}
	_, err = Open(dir, boundsFile, engine)
	assert.True(t, err != nil && strings.Contains(err.Error(), "sw._ffff.csv"), "%v", err)

	r, err = OpenRegion(dir, boundsFile, crash.RegionUS)
	require.NoError(t, err)
	assert.False(t, r.InSecondary(0x07000010))
	_, err = OpenRegion(dir, boundsFile, crash.RegionEU)
	assert.True(t, err != nil && strings.Contains(err.Error(), "rhm.eu.csv"), "%v", err)
}
