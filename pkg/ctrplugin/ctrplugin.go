// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package ctrplugin reads 3GX plugin containers: the symbol table that
// backs plugin address resolution, and the descriptive header strings.
package ctrplugin

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/rhmodding/bertram/pkg/binio"
	"github.com/rhmodding/bertram/pkg/crash"
	"github.com/rhmodding/bertram/pkg/log"
)

const format = "3gx"

var Magic = []byte("3GX$0002")

const (
	infosOffset    = 0x10
	symtableOffset = 0x78
	symbolSize     = 12
)

// TextEnd is the symbol that ends the plugin text section.
// Symbols are sorted by address, so nothing after it is of interest.
const TextEnd = "_TEXT_END"

// Sink receives extracted symbols in table order.
type Sink interface {
	WriteSymbol(name string, addr uint32) error
}

func checkMagic(r *binio.Reader) error {
	ok, err := r.Magic(Magic)
	if err != nil {
		return crash.Wrap(format, "magic", err)
	}
	if !ok {
		return &crash.DecodeError{Format: format, Err: crash.ErrNotThisFormat}
	}
	return nil
}

// ExtractSymbols writes the plugin symbols to sink and returns how many were written.
func ExtractSymbols(rs io.ReadSeeker, sink Sink) (int, error) {
	r := binio.NewReader(rs)
	if err := checkMagic(r); err != nil {
		return 0, err
	}
	if err := r.Seek(symtableOffset); err != nil {
		return 0, err
	}
	hdr, err := r.U32s(3)
	if err != nil {
		return 0, crash.Wrap(format, "symtable header", err)
	}
	count, symbols, names := hdr[0], hdr[1], hdr[2]
	log.Logf(1, "3gx: %v symbols at 0x%x, names at 0x%x", count, symbols, names)
	for i := uint32(0); i < count; i++ {
		if err := r.Seek(int64(symbols) + int64(i)*symbolSize); err != nil {
			return int(i), err
		}
		addr, err := r.U32()
		if err != nil {
			return int(i), crash.Wrap(format, "symbol address", err)
		}
		if err := r.Skip(4); err != nil {
			return int(i), crash.Wrap(format, "symbol flags", err)
		}
		nameOff, err := r.U32()
		if err != nil {
			return int(i), crash.Wrap(format, "symbol name offset", err)
		}
		if err := r.Seek(int64(names) + int64(nameOff)); err != nil {
			return int(i), err
		}
		name, err := r.CString()
		if err != nil {
			return int(i), crash.Wrap(format, "symbol name", err)
		}
		if !utf8.Valid(name) {
			return int(i), crash.InvalidField(format, "symbol name", fmt.Sprintf("%q", name))
		}
		if err := sink.WriteSymbol(string(name), addr); err != nil {
			return int(i), err
		}
		if string(name) == TextEnd {
			return int(i) + 1, nil
		}
	}
	return int(count), nil
}

// Info holds the descriptive strings of the plugin header.
type Info struct {
	Author      string
	Title       string
	Summary     string
	Description string
}

func ReadInfo(rs io.ReadSeeker) (*Info, error) {
	r := binio.NewReader(rs)
	if err := checkMagic(r); err != nil {
		return nil, err
	}
	if err := r.Seek(infosOffset); err != nil {
		return nil, err
	}
	// Pairs of (length, offset).
	fields, err := r.U32s(8)
	if err != nil {
		return nil, crash.Wrap(format, "infos", err)
	}
	info := new(Info)
	for i, dst := range []*string{&info.Author, &info.Title, &info.Summary, &info.Description} {
		size, off := fields[2*i], fields[2*i+1]
		if size == 0 {
			continue
		}
		if err := r.Seek(int64(off)); err != nil {
			return nil, err
		}
		data, err := r.Bytes(size)
		if err != nil {
			return nil, crash.Wrap(format, "info string", err)
		}
		if n := bytes.IndexByte(data, 0); n != -1 {
			data = data[:n]
		}
		if !utf8.Valid(data) {
			return nil, crash.InvalidField(format, "info string", fmt.Sprintf("%q", data))
		}
		*dst = string(data)
	}
	return info, nil
}
