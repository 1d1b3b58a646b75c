// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package solve matches normalized crashes against known crash signatures.
package solve

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"

	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/log"
	"github.com/rhmodding/bertram/pkg/symbols"
	"gopkg.in/yaml.v3"
)

// Diagnosis is one recognized crash cause.
type Diagnosis interface {
	String() string
	diagnosis()
}

// InvalidTickflowAddress means the tickflow interpreter dispatched to a bad operation.
type InvalidTickflowAddress struct {
	FAR *uint32
}

// NoEffectMemory means the effect allocator was exhausted.
type NoEffectMemory struct{}

// SceneLoadingError means a scene failed to load. Cause is GenericSceneLoad or LowSlotLayout.
type SceneLoadingError struct {
	Cause SceneLoadCause
}

type SceneLoadCause interface {
	String() string
	sceneLoadCause()
}

type GenericSceneLoad struct {
	PC uint32
}

// LowSlotLayout means a layout was requested for a negative or too low slot index.
type LowSlotLayout struct {
	Slot int32
}

// NonExecRegion means the program counter left the code section.
type NonExecRegion struct {
	PC uint32
}

// NullRead means memory near address zero was accessed.
type NullRead struct {
	Addr uint32
}

func (d InvalidTickflowAddress) String() string {
	if d.FAR == nil {
		return "invalid tickflow operation"
	}
	return fmt.Sprintf("invalid tickflow operation (address 0x%08x)", *d.FAR)
}

func (NoEffectMemory) String() string { return "ran out of effect memory" }

func (d SceneLoadingError) String() string { return "scene loading error: " + d.Cause.String() }

func (c GenericSceneLoad) String() string { return fmt.Sprintf("at 0x%08x", c.PC) }

func (c LowSlotLayout) String() string { return fmt.Sprintf("layout slot %d is too low", c.Slot) }

func (d NonExecRegion) String() string {
	return fmt.Sprintf("jumped to non-executable memory (pc 0x%08x)", d.PC)
}

func (d NullRead) String() string {
	return fmt.Sprintf("null pointer access (address 0x%08x)", d.Addr)
}

func (InvalidTickflowAddress) diagnosis() {}
func (NoEffectMemory) diagnosis()         {}
func (SceneLoadingError) diagnosis()      {}
func (NonExecRegion) diagnosis()          {}
func (NullRead) diagnosis()               {}

func (GenericSceneLoad) sceneLoadCause() {}
func (LowSlotLayout) sceneLoadCause()    {}

// NullPageEnd bounds the null pointer fallback. Nothing is mapped below the game binary.
const NullPageEnd = symbols.PrimaryStart

type Addr uint32

func (a *Addr) UnmarshalYAML(node *yaml.Node) error {
	v, err := strconv.ParseUint(node.Value, 0, 32)
	if err != nil {
		return fmt.Errorf("line %v: bad address %q: %w", node.Line, node.Value, err)
	}
	*a = Addr(v)
	return nil
}

// Signatures are the program counter values that identify known crashes in one region.
// A nil address disables its rule.
type Signatures struct {
	InvalidTickflow *Addr `yaml:"invalid_tickflow"`
	NoEffectMemory  *Addr `yaml:"no_effect_memory"`
	LowSlotLayout   *Addr `yaml:"low_slot_layout"`
}

func (a *Addr) matches(pc uint32) bool {
	return a != nil && uint32(*a) == pc
}

//go:embed signatures.yaml
var builtinSignatures []byte

type Engine struct {
	sigs   map[crash.Region]Signatures
	bounds *symbols.BoundsTable
}

// New creates an engine over the built-in signature catalogue.
// The bounds table provides the rodata bound of each region.
func New(bounds *symbols.BoundsTable) (*Engine, error) {
	return NewFromData(builtinSignatures, bounds)
}

func NewFromData(data []byte, bounds *symbols.BoundsTable) (*Engine, error) {
	var raw map[string]Signatures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse signatures: %w", err)
	}
	e := &Engine{
		sigs:   make(map[crash.Region]Signatures),
		bounds: bounds,
	}
	for name, sigs := range raw {
		region, err := crash.ParseRegionName(name)
		if err != nil {
			return nil, fmt.Errorf("signatures: %w", err)
		}
		e.sigs[region] = sigs
	}
	return e, nil
}

// Supported reports whether signatures exist for the region.
func (e *Engine) Supported(region crash.Region) bool {
	_, ok := e.sigs[region]
	return ok
}

// FindMatches returns all diagnoses that apply to the crash.
// Panics for an unknown region, returns ErrUnsupportedRegion for regions without signatures.
func (e *Engine) FindMatches(info *crash.Info) ([]Diagnosis, error) {
	region := info.Region()
	if !region.Known() {
		panic("cannot solve for an UNK-region crash")
	}
	sigs, ok := e.sigs[region]
	if !ok {
		return nil, fmt.Errorf("%w: no crash signatures for %v", crash.ErrUnsupportedRegion, region)
	}
	bounds, err := e.bounds.Find(region)
	if err != nil {
		return nil, err
	}
	var res []Diagnosis
	switch {
	case sigs.InvalidTickflow.matches(info.PC):
		res = append(res, InvalidTickflowAddress{FAR: info.FAR})
	case sigs.NoEffectMemory.matches(info.PC):
		res = append(res, NoEffectMemory{})
	case info.PC >= bounds.Rodata:
		// Plugin code lives above rodata too, so a pc in a plugin is reported here as well.
		res = append(res, NonExecRegion{PC: info.PC})
	}
	if sigs.LowSlotLayout.matches(info.PC) {
		var cause SceneLoadCause = GenericSceneLoad{PC: info.PC}
		if info.R != nil {
			cause = LowSlotLayout{Slot: int32(info.R[0])}
		}
		res = append(res, SceneLoadingError{Cause: cause})
	}
	if len(res) == 0 && info.FAR != nil && *info.FAR < NullPageEnd {
		res = append(res, NullRead{Addr: *info.FAR})
	}
	log.Logf(1, "solve: %v pc=0x%08x: %v diagnoses", region, info.PC, len(res))
	return res, nil
}
