// Copyright 2022 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package testutil contains helpers for randomized tests.
package testutil

import (
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

func IterCount() int {
	iters := 200
	if testing.Short() {
		iters /= 10
	}
	return iters
}

// RandSource returns a logged random source. BERTRAM_SEED fixes the seed.
func RandSource(t *testing.T) rand.Source {
	seed := time.Now().UnixNano()
	if fixed := os.Getenv("BERTRAM_SEED"); fixed != "" {
		seed, _ = strconv.ParseInt(fixed, 0, 64)
	}
	if os.Getenv("CI") != "" {
		seed = 0
	}
	t.Logf("seed=%v", seed)
	return rand.NewSource(seed)
}

// RandDump returns magic followed by up to maxLen random bytes.
// Small values are preferred so that header fields stay plausible.
func RandDump(r *rand.Rand, magic []byte, maxLen int) []byte {
	data := append([]byte{}, magic...)
	for n := r.Intn(maxLen + 1); n > 0; n-- {
		if r.Intn(4) == 0 {
			data = append(data, byte(r.Intn(256)))
		} else {
			data = append(data, byte(r.Intn(3)))
		}
	}
	return data
}
