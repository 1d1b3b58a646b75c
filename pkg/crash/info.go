// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package crash

// Positions of the named registers in a raw register dump.
const (
	RegSP = 13 + iota
	RegLR
	RegPC
	RegCPSR
	RegDFSR
	RegIFSR
	RegFAR
	RegFPEXC
	RegFPINST
	RegFPINST2
	MaxRegisters
)

// NumGeneral is the number of general purpose registers r0..r12.
const NumGeneral = 13

var registerNames = [MaxRegisters]string{
	"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9", "r10", "r11", "r12",
	"sp", "lr", "pc", "cpsr", "dfsr", "ifsr", "far", "fpexc", "fpinst", "fpinst2",
}

// RegisterName returns the conventional name of the register at position i.
func RegisterName(i int) string {
	return registerNames[i]
}

// RegisterFile is a positional register dump that is present up to Len().
// Values past MaxRegisters are not interpreted.
type RegisterFile struct {
	vals [MaxRegisters]uint32
	n    int
}

func NewRegisterFile(vals []uint32) RegisterFile {
	var rf RegisterFile
	rf.n = copy(rf.vals[:], vals)
	return rf
}

func (rf *RegisterFile) Len() int {
	return rf.n
}

// Has reports whether register i was recorded.
func (rf *RegisterFile) Has(i int) bool {
	return i >= 0 && i < rf.n
}

func (rf *RegisterFile) Get(i int) (uint32, bool) {
	if !rf.Has(i) {
		return 0, false
	}
	return rf.vals[i], true
}

// Opt returns a pointer to a copy of register i, or nil if it was not recorded.
func (rf *RegisterFile) Opt(i int) *uint32 {
	v, ok := rf.Get(i)
	if !ok {
		return nil
	}
	return &v
}

// Info is the normalized crash both dump formats are converted into.
// Pointer and slice fields are nil when the source did not record them.
type Info struct {
	Engine Engine

	R    *[NumGeneral]uint32
	SP   *uint32
	LR   uint32
	PC   uint32
	CPSR uint32

	DFSR    *uint32
	IFSR    *uint32
	FAR     *uint32
	FPEXC   *uint32
	FPINST  *uint32
	FPINST2 *uint32

	Stack     []byte
	CallStack []uint32
}

func (info *Info) Region() Region {
	return info.Engine.GameRegion()
}
