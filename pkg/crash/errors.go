// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package crash

import (
	"errors"
	"fmt"

	"github.com/rhmodding/bertram/pkg/binio"
)

var (
	// ErrNotThisFormat means the magic did not match, another decoder may accept the input.
	ErrNotThisFormat = errors.New("not this dump format")
	ErrInvalidField  = errors.New("invalid field")
	ErrTruncated     = binio.ErrTruncated

	ErrUnknownRegion         = errors.New("unknown region")
	ErrMissingSentinelSymbol = errors.New("missing _TEXT_END symbol")
	ErrUnsupportedRegion     = errors.New("region is not supported")
)

// DecodeError is returned by all decoders. Err is one of the sentinels above.
type DecodeError struct {
	Format string
	Field  string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("%v: %v: %v", e.Format, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InvalidField builds a DecodeError for a value outside its allowed domain.
func InvalidField(format, field string, val any) error {
	return &DecodeError{
		Format: format,
		Field:  fmt.Sprintf("%v %v", field, val),
		Err:    ErrInvalidField,
	}
}

// Wrap attaches format and field context to a read error.
func Wrap(format, field string, err error) error {
	if err == nil {
		return nil
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Format: format, Field: field, Err: err}
}
