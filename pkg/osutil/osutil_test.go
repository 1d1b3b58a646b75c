// Copyright 2017 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package osutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsExist(t *testing.T) {
	if f := os.Args[0]; !IsExist(f) {
		t.Fatalf("executable %v does not exist", f)
	}
	if f := os.Args[0] + "-foo-bar-buz"; IsExist(f) {
		t.Fatalf("file %v exists", f)
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	data := []byte("Name,Location\nfoo,00100000\n")
	for _, name := range []string{"plain.csv", "packed.csv.xz"} {
		file := filepath.Join(dir, name)
		if err := WriteFile(file, data); err != nil {
			t.Fatal(err)
		}
		got, err := ReadFile(file)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != string(data) {
			t.Fatalf("%v: got %q, want %q", name, got, data)
		}
	}
	raw, err := os.ReadFile(filepath.Join(dir, "packed.csv.xz"))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) == string(data) {
		t.Fatalf("xz file is not compressed")
	}
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "a.csv")
	packed := filepath.Join(dir, "b.csv")
	if err := WriteFile(plain, nil); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(packed+XZSuffix, nil); err != nil {
		t.Fatal(err)
	}
	tests := map[string]string{
		plain:                       plain,
		packed:                      packed + XZSuffix,
		filepath.Join(dir, "c.csv"): filepath.Join(dir, "c.csv"),
	}
	for in, want := range tests {
		if got := Locate(in); got != want {
			t.Errorf("Locate(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestCorruptedXZ(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.xz")
	if err := os.WriteFile(file, []byte("not xz"), DefaultFilePerm); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(file); err == nil {
		t.Fatalf("corrupted xz file decoded")
	}
}
