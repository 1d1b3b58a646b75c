// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package binio implements little-endian primitive reads over a seekable byte source.
// All dump decoders and the plugin symbol extractor read through it.
package binio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrTruncated is returned when the source ends before a read completes.
var ErrTruncated = errors.New("truncated input")

type Reader struct {
	r   io.ReadSeeker
	buf [8]byte
}

func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{r: r}
}

func FromBytes(data []byte) *Reader {
	return NewReader(bytes.NewReader(data))
}

func (r *Reader) fill(n int) ([]byte, error) {
	if _, err := io.ReadFull(r.r, r.buf[:n]); err != nil {
		return nil, truncated(err)
	}
	return r.buf[:n], nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

func (r *Reader) U8() (uint8, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) U16() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) U32() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) U64() (uint64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Bool reads a single byte, any non-zero value is true.
func (r *Reader) Bool() (bool, error) {
	b, err := r.U8()
	return b != 0, err
}

// U32s reads n consecutive u32 values.
func (r *Reader) U32s(n int) ([]uint32, error) {
	res := make([]uint32, 0, min(n, 64))
	for i := 0; i < n; i++ {
		v, err := r.U32()
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

// Bytes reads exactly n bytes. The buffer grows with the data actually present,
// so a corrupted size field does not cause a huge upfront allocation.
func (r *Reader) Bytes(n uint32) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r.r, int64(n)))
	if err != nil {
		return nil, truncated(err)
	}
	if len(data) != int(n) {
		return nil, ErrTruncated
	}
	return data, nil
}

// Magic reads len(want) bytes and reports whether they match want.
// A short source is a mismatch rather than an error.
func (r *Reader) Magic(want []byte) (bool, error) {
	got, err := r.Bytes(uint32(len(want)))
	if err != nil {
		if errors.Is(err, ErrTruncated) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(got, want), nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int64) error {
	if _, err := io.CopyN(io.Discard, r.r, n); err != nil {
		return truncated(err)
	}
	return nil
}

// Seek moves to the absolute offset off.
func (r *Reader) Seek(off int64) error {
	if _, err := r.r.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("seek to 0x%x: %w", off, err)
	}
	return nil
}

// CString reads bytes up to and excluding a NUL terminator.
func (r *Reader) CString() ([]byte, error) {
	var res []byte
	for {
		b, err := r.U8()
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return res, nil
		}
		res = append(res, b)
	}
}
