package isa

import "fmt"

// NumRegisters is the size of the RV32I general-purpose register file.
const NumRegisters = 32

// abiNames maps canonical register index to its calling-convention name.
var abiNames = [NumRegisters]string{
	"zero", "ra", "sp", "gp", "tp",
	"t0", "t1", "t2",
	"s0", "s1",
	"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
	"s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11",
	"t3", "t4", "t5", "t6",
}

// nameToIndex is built once from abiNames plus the x0..x31 and fp aliases.
var nameToIndex = func() map[string]int {
	m := make(map[string]int, NumRegisters*2)
	for i, name := range abiNames {
		m[name] = i
	}
	for i := 0; i < NumRegisters; i++ {
		m[fmt.Sprintf("x%d", i)] = i
	}
	m["fp"] = 8 // alias of s0
	return m
}()

// ABIName returns the calling-convention name for a register index.
// Panics is never used; callers are expected to validate indices with
// IsValidIndex before relying on the result.
func ABIName(index int) string {
	if index < 0 || index >= NumRegisters {
		return "?"
	}
	return abiNames[index]
}

// IsValidIndex reports whether idx is a legal register index.
func IsValidIndex(idx int) bool {
	return idx >= 0 && idx < NumRegisters
}

// LookupRegister resolves a lowercased register token (ABI name or xN form)
// to its canonical index. The caller is responsible for lowercasing.
func LookupRegister(name string) (int, bool) {
	idx, ok := nameToIndex[name]
	return idx, ok
}
