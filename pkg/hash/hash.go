// Copyright 2016 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package hash computes stable identifiers for crashes.
package hash

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
)

type Sig [sha1.Size]byte

func Hash(pieces ...[]byte) Sig {
	h := sha1.New()
	for _, data := range pieces {
		h.Write(data)
	}
	var sig Sig
	copy(sig[:], h.Sum(nil))
	return sig
}

// Words hashes a sequence of 32-bit values in little-endian order.
func Words(vals ...uint32) Sig {
	buf := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, v)
	}
	return Hash(buf)
}

func (sig *Sig) String() string {
	return hex.EncodeToString((*sig)[:])
}

// Short returns the first 8 hex digits, enough to tell crashes apart in a report.
func (sig *Sig) Short() string {
	return sig.String()[:8]
}
