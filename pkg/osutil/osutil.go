// Copyright 2017 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package osutil contains file helpers shared by the tool and the symbol loaders.
package osutil

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

const (
	DefaultDirPerm  = 0755
	DefaultFilePerm = 0644
)

// XZSuffix marks files that are stored xz-compressed.
const XZSuffix = ".xz"

func IsExist(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// Locate returns name if it exists, otherwise its compressed variant if that exists.
// If neither exists, name is returned unchanged.
func Locate(name string) string {
	if !IsExist(name) && IsExist(name+XZSuffix) {
		return name + XZSuffix
	}
	return name
}

// ReadFile reads the whole file, transparently decompressing files ending in XZSuffix.
func ReadFile(name string) ([]byte, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(name, XZSuffix) {
		return data, nil
	}
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %v: %w", name, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %v: %w", name, err)
	}
	return out, nil
}

// WriteFile writes data, compressing it if name ends in XZSuffix.
func WriteFile(name string, data []byte) error {
	if strings.HasSuffix(name, XZSuffix) {
		buf := new(bytes.Buffer)
		w, err := xz.NewWriter(buf)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	return os.WriteFile(name, data, DefaultFilePerm)
}

func MkdirAll(dir string) error {
	return os.MkdirAll(dir, DefaultDirPerm)
}

// Abs returns an absolute version of path, or path itself if it is empty.
func Abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
