// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package symbols

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ianlancetaylor/demangle"
	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/osutil"
)

// SentinelName marks the end of the plugin text section.
const SentinelName = "_TEXT_END"

// GlobalNamespace is treated the same as no namespace.
const GlobalNamespace = "Global"

const (
	colName      = "Name"
	colLocation  = "Location"
	colNamespace = "Namespace"
)

type Symbol struct {
	Name      string
	Namespace string
	Addr      uint32
}

// FullName returns "namespace::name", or just the name for the global namespace.
func (s *Symbol) FullName() string {
	return qualify(s.Namespace, s.Name)
}

// DisplayName is FullName with the C++ name demangled where possible.
func (s *Symbol) DisplayName() string {
	return qualify(s.Namespace, demangle.Filter(s.Name))
}

func qualify(ns, name string) string {
	if ns == "" || ns == GlobalNamespace {
		return name
	}
	return ns + "::" + name
}

// Table is a read-only symbol table sorted by address.
// Every query scans the rows from the start, so a Table can be shared between goroutines.
type Table struct {
	name string
	data []byte
	cols map[string]int
}

func LoadTable(file string) (*Table, error) {
	data, err := osutil.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read symbol table: %w", err)
	}
	return ParseTable(file, data)
}

// ParseTable checks the header of a CSV symbol table.
// Rows are parsed lazily by each query.
func ParseTable(name string, data []byte) (*Table, error) {
	t := &Table{name: name, data: data}
	r := t.reader()
	hdr, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%v: failed to read header: %w", name, err)
	}
	if t.cols, err = columns(hdr, colName, colLocation); err != nil {
		return nil, fmt.Errorf("%v: %w", name, err)
	}
	return t, nil
}

func (t *Table) String() string {
	return t.name
}

func (t *Table) reader() *csv.Reader {
	r := csv.NewReader(bytes.NewReader(t.data))
	r.TrimLeadingSpace = true
	r.ReuseRecord = true
	return r
}

// scan calls fn for every row in table order until fn returns false.
func (t *Table) scan(fn func(*Symbol) bool) error {
	r := t.reader()
	if _, err := r.Read(); err != nil {
		return fmt.Errorf("%v: %w", t.name, err)
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%v: %w", t.name, err)
		}
		line, _ := r.FieldPos(0)
		addr, err := parseHex(rec[t.cols[colLocation]])
		if err != nil {
			return fmt.Errorf("%v:%v: %w", t.name, line, err)
		}
		sym := &Symbol{
			Name: strings.TrimSpace(rec[t.cols[colName]]),
			Addr: addr,
		}
		if idx, ok := t.cols[colNamespace]; ok {
			sym.Namespace = strings.TrimSpace(rec[idx])
		}
		if !fn(sym) {
			return nil
		}
	}
}

// Lookup returns the symbol with the greatest address not exceeding addr,
// or nil if the first symbol is already above addr.
// Panics if the scanned prefix of the table is not sorted.
func (t *Table) Lookup(addr uint32) (*Symbol, error) {
	var best *Symbol
	err := t.scan(func(sym *Symbol) bool {
		if best != nil && sym.Addr < best.Addr {
			panic(fmt.Sprintf("symbol table %v is not sorted: %v at 0x%08x follows %v at 0x%08x",
				t.name, sym.FullName(), sym.Addr, best.FullName(), best.Addr))
		}
		if sym.Addr > addr {
			return false
		}
		best = sym
		return true
	})
	if err != nil {
		return nil, err
	}
	return best, nil
}

// Find returns the first symbol with the given name regardless of namespace, or nil.
func (t *Table) Find(name string) (*Symbol, error) {
	var res *Symbol
	err := t.scan(func(sym *Symbol) bool {
		if sym.Name == name {
			res = sym
			return false
		}
		return true
	})
	return res, err
}

func columns(hdr []string, required ...string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, name := range hdr {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return cols, nil
}

func parseHex(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad address %q", crash.ErrInvalidField, s)
	}
	return uint32(v), nil
}

// Writer emits a symbol table in the format read by Table.
type Writer struct {
	w *csv.Writer
}

func NewWriter(w io.Writer) (*Writer, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{colName, colLocation, colNamespace}); err != nil {
		return nil, err
	}
	return &Writer{w: cw}, nil
}

func (w *Writer) WriteSymbol(name string, addr uint32) error {
	return w.w.Write([]string{name, fmt.Sprintf("%08x", addr), ""})
}

func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
