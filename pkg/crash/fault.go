// Copyright 2026 syzkaller project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package crash

type FaultSource struct {
	Code uint32
	Desc string
}

// FaultStatusSources describes ARM11 fault status codes.
var FaultStatusSources = []FaultSource{
	{0b00001, "Alignment"},
	{0b00100, "Instruction cache maintenance operation fault"},
	{0b01100, "External Abort on translation - First-level"},
	{0b01110, "External Abort on translation - Second-level"},
	{0b00101, "Translation - Section"},
	{0b00111, "Translation - Page"},
	{0b00011, "Access bit - Section"},
	{0b00110, "Access bit - Page"},
	{0b01001, "Domain - Section"},
	{0b01011, "Domain - Page"},
	{0b01101, "Permission - Section"},
	{0b01111, "Permission - Page"},
	{0b01000, "Precise External Abort"},
	{0b10110, "Imprecise External Abort"},
	{0b00010, "Debug event"},
}

// FaultStatusCode extracts the fault code from the two status slots.
// Only aborts carry one.
func FaultStatusCode(exc ExcType, statusA, statusB uint32) (uint32, bool) {
	switch exc {
	case DataAbort:
		return (statusA & 0xf) + ((statusA >> 10) & 1), true
	case PrefetchAbort:
		return statusB & 0xf, true
	}
	return 0, false
}

// FaultStatus returns the description of the fault, "Invalid" for unknown codes
// and "" if the exception kind has no fault status.
func FaultStatus(exc ExcType, statusA, statusB uint32) string {
	code, ok := FaultStatusCode(exc, statusA, statusB)
	if !ok {
		return ""
	}
	for _, src := range FaultStatusSources {
		if src.Code == code {
			return src.Desc
		}
	}
	return "Invalid"
}
