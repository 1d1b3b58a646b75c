// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package analyze symbolizes the code addresses of a normalized crash.
package analyze

import (
	"fmt"

	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/hash"
	"github.com/rhmodding/bertram/pkg/stat"
	"github.com/rhmodding/bertram/pkg/symbols"
)

var (
	statAnalyzed = stat.New("analyzed crashes", "Number of symbolized crashes",
		stat.Console, stat.Rate{}, stat.Prometheus("bertram_analyzed_crashes"))
	statUnresolved = stat.New("unresolved addresses", "Addresses outside of all symbol tables",
		stat.Console, stat.Prometheus("bertram_unresolved_addresses"))
	statDepth = stat.New("call stack depth", "Number of call stack entries per crash",
		stat.Distribution{})
)

// Resolver is satisfied by *symbols.Resolver after InitBounds.
type Resolver interface {
	FindSymbol(addr uint32) (*symbols.Symbol, error)
}

// Function is a code address and the symbol that contains it.
// Symbol is nil if the address is out of bounds of the symbol tables.
type Function struct {
	Addr   uint32
	Symbol *symbols.Symbol
}

func (f Function) Resolved() bool {
	return f.Symbol != nil
}

func (f Function) Offset() uint32 {
	if f.Symbol == nil {
		return 0
	}
	return f.Addr - f.Symbol.Addr
}

func (f Function) String() string {
	if f.Symbol == nil {
		return fmt.Sprintf("out of bounds (%08x)", f.Addr)
	}
	return fmt.Sprintf("%v+0x%x (%08x)", f.Symbol.DisplayName(), f.Offset(), f.Addr)
}

type Analysis struct {
	Engine    crash.Engine
	PC        Function
	LR        Function
	CallStack []Function
	// OOBPC is set if pc is out of bounds. Reports omit pc in that case.
	OOBPC bool
	ID    hash.Sig
}

func Analyze(info *crash.Info, res Resolver) (*Analysis, error) {
	resolve := func(addr uint32) (Function, error) {
		sym, err := res.FindSymbol(addr)
		if err != nil {
			return Function{}, fmt.Errorf("failed to resolve 0x%08x: %w", addr, err)
		}
		if sym == nil {
			statUnresolved.Add(1)
		}
		return Function{Addr: addr, Symbol: sym}, nil
	}
	a := &Analysis{
		Engine: info.Engine,
		ID:     ID(info),
	}
	var err error
	if a.PC, err = resolve(info.PC); err != nil {
		return nil, err
	}
	if a.LR, err = resolve(info.LR); err != nil {
		return nil, err
	}
	a.OOBPC = !a.PC.Resolved()
	for _, addr := range info.CallStack {
		fn, err := resolve(addr)
		if err != nil {
			return nil, err
		}
		a.CallStack = append(a.CallStack, fn)
	}
	statAnalyzed.Add(1)
	statDepth.Add(len(a.CallStack))
	return a, nil
}

// ID identifies a crash by its engine and code addresses.
func ID(info *crash.Info) hash.Sig {
	words := hash.Words(append([]uint32{info.PC, info.LR}, info.CallStack...)...)
	return hash.Hash([]byte(info.Engine.String()), words[:])
}
