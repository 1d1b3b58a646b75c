// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package crash holds the representation shared by all dump formats:
// exception kinds, game regions, the engine that produced a dump
// and the normalized Info that analysis and diagnosis operate on.
package crash

import (
	"fmt"
	"strings"
)

type ExcType uint8

const (
	FloatingPoint ExcType = iota
	UndefinedInstruction
	PrefetchAbort
	DataAbort
)

// ParseExcType maps a raw exception code onto one of the four known kinds.
func ParseExcType(v uint32) (ExcType, bool) {
	if v > uint32(DataAbort) {
		return 0, false
	}
	return ExcType(v), true
}

func (t ExcType) String() string {
	switch t {
	case FloatingPoint:
		return "FIQ"
	case UndefinedInstruction:
		return "undefined instruction"
	case PrefetchAbort:
		return "prefetch abort"
	case DataAbort:
		return "data abort"
	}
	return fmt.Sprintf("exception %d", uint8(t))
}

// StatusRegisterNames returns the display labels of the two status slots
// recorded by the plugin runtime. An empty label means the slot carries nothing for this kind.
func (t ExcType) StatusRegisterNames() [2]string {
	switch t {
	case FloatingPoint:
		return [2]string{"fpexc", "fpinst"}
	case PrefetchAbort:
		return [2]string{"", "ifsr"}
	case DataAbort:
		return [2]string{"dfsr", "far"}
	}
	return [2]string{}
}

type Region uint8

const (
	RegionJP Region = iota
	RegionUS
	RegionEU
	RegionKR
	// RegionUnknown is a valid decode result but an invalid input to
	// symbol bounds resolution and diagnosis.
	RegionUnknown
)

var regionNames = [...]string{"JP", "US", "EU", "KR", "UNK"}

// ParseRegion never fails: unrecognized codes map to RegionUnknown.
func ParseRegion(b uint8) Region {
	if b >= uint8(RegionUnknown) {
		return RegionUnknown
	}
	return Region(b)
}

// ParseRegionName accepts a case-insensitive region name ("us", "EU", ...).
func ParseRegionName(name string) (Region, error) {
	for i, n := range regionNames[:RegionUnknown] {
		if strings.EqualFold(strings.TrimSpace(name), n) {
			return Region(i), nil
		}
	}
	return RegionUnknown, fmt.Errorf("%w: %q", ErrUnknownRegion, name)
}

func (r Region) Known() bool {
	return r < RegionUnknown
}

func (r Region) String() string {
	if r > RegionUnknown {
		return regionNames[RegionUnknown]
	}
	return regionNames[r]
}

// PluginVersion is either a release triple or a debug build tag.
type PluginVersion struct {
	Release             bool
	Major, Minor, Patch uint8
	// DebugTag is the lowercase hex rendering of the debug build identifier.
	DebugTag string
}

func (v PluginVersion) String() string {
	if !v.Release {
		return v.DebugTag
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Engine identifies the loader that produced a crash.
// Implementations are RHMPatch and PluginRuntime.
type Engine interface {
	GameRegion() Region
	String() string
	engine()
}

// RHMPatch is the primary loader. It only supports the US copy of the game.
type RHMPatch struct{}

func (RHMPatch) GameRegion() Region { return RegionUS }
func (RHMPatch) String() string     { return "RHMPatch" }
func (RHMPatch) engine()            {}

// PluginRuntime is the injected plugin runtime. It reports its own version and region.
type PluginRuntime struct {
	Version PluginVersion
	Region  Region
}

func (e PluginRuntime) GameRegion() Region { return e.Region }
func (e PluginRuntime) String() string {
	return fmt.Sprintf("Saltwater %v (%v)", e.Version, e.Region)
}
func (PluginRuntime) engine() {}
