// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package symbols resolves code addresses to the nearest preceding symbol.
// Two disjoint address spaces are supported: the game binary (primary table)
// and the plugin loaded by the Saltwater runtime (secondary table).
package symbols

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/log"
	"github.com/rhmodding/bertram/pkg/osutil"
)

const (
	// PrimaryStart is the load address of the game binary.
	PrimaryStart = 0x00100000
	// SecondaryStart is the load address of the plugin.
	SecondaryStart = 0x07000000
)

type Resolver struct {
	primary   *Table
	secondary *Table
	bounds    *BoundsTable

	ready        bool
	primaryEnd   uint32
	secondaryEnd uint32
}

// NewResolver creates a resolver. secondary may be nil.
// InitBounds must be called before FindSymbol.
func NewResolver(primary, secondary *Table, bounds *BoundsTable) *Resolver {
	if primary == nil || bounds == nil {
		panic("resolver needs a primary table and bounds")
	}
	return &Resolver{
		primary:   primary,
		secondary: secondary,
		bounds:    bounds,
	}
}

// InitBounds fixes the end of both address spaces for the region.
// The primary space ends at the rodata offset of the region's bounds row,
// the secondary space ends at the sentinel symbol of the secondary table.
func (r *Resolver) InitBounds(region crash.Region) error {
	b, err := r.bounds.Find(region)
	if err != nil {
		return err
	}
	r.primaryEnd = b.Rodata
	if r.secondary != nil {
		sentinel, err := r.secondary.Find(SentinelName)
		if err != nil {
			return err
		}
		if sentinel == nil {
			return fmt.Errorf("%v: %w", r.secondary, crash.ErrMissingSentinelSymbol)
		}
		r.secondaryEnd = sentinel.Addr
	}
	r.ready = true
	log.Logf(1, "symbols: %v bounds: primary [0x%08x, 0x%08x) secondary [0x%08x, 0x%08x]",
		region, PrimaryStart, r.primaryEnd, SecondaryStart, r.secondaryEnd)
	return nil
}

func (r *Resolver) InPrimary(addr uint32) bool {
	r.mustBeReady()
	return addr >= PrimaryStart && addr < r.primaryEnd
}

func (r *Resolver) InSecondary(addr uint32) bool {
	r.mustBeReady()
	return r.secondary != nil && addr >= SecondaryStart && addr <= r.secondaryEnd
}

// FindSymbol returns the symbol with the greatest address not exceeding addr
// in the address space addr belongs to, or nil if there is none.
func (r *Resolver) FindSymbol(addr uint32) (*Symbol, error) {
	switch {
	case r.InPrimary(addr):
		return r.primary.Lookup(addr)
	case r.InSecondary(addr):
		return r.secondary.Lookup(addr)
	}
	return nil, nil
}

func (r *Resolver) mustBeReady() {
	if !r.ready {
		panic("symbol lookup before InitBounds")
	}
}

// PrimaryTable returns the path of the game symbol table for the region.
func PrimaryTable(dir string, region crash.Region) string {
	return filepath.Join(dir, fmt.Sprintf("rhm.%v.csv", strings.ToLower(region.String())))
}

// SecondaryTable returns the path of the plugin symbol table for the plugin version.
// Debug builds are keyed by their tag.
func SecondaryTable(dir string, v crash.PluginVersion) string {
	name := v.String()
	if !v.Release {
		name = "_" + v.DebugTag
	}
	return filepath.Join(dir, fmt.Sprintf("sw.%v.csv", name))
}

// Open loads the tables an engine needs from dir and binds the resolver
// to the engine's region. Tables may be stored xz-compressed.
func Open(dir, boundsFile string, engine crash.Engine) (*Resolver, error) {
	secondary := ""
	if rt, ok := engine.(crash.PluginRuntime); ok {
		secondary = SecondaryTable(dir, rt.Version)
	}
	return open(dir, boundsFile, engine.GameRegion(), secondary)
}

// OpenRegion loads only the game symbol table of the region.
func OpenRegion(dir, boundsFile string, region crash.Region) (*Resolver, error) {
	return open(dir, boundsFile, region, "")
}

func open(dir, boundsFile string, region crash.Region, secondaryFile string) (*Resolver, error) {
	if !region.Known() {
		return nil, fmt.Errorf("%w: %v", crash.ErrUnknownRegion, region)
	}
	bounds, err := LoadBounds(osutil.Locate(boundsFile))
	if err != nil {
		return nil, err
	}
	primary, err := LoadTable(osutil.Locate(PrimaryTable(dir, region)))
	if err != nil {
		return nil, err
	}
	var secondary *Table
	if secondaryFile != "" {
		if secondary, err = LoadTable(osutil.Locate(secondaryFile)); err != nil {
			return nil, err
		}
	}
	r := NewResolver(primary, secondary, bounds)
	if err := r.InitBounds(region); err != nil {
		return nil, err
	}
	return r, nil
}
