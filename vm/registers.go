package vm

import (
	"github.com/r5by/rv32i-toolchain/isa"
)

// RegisterFile is the 32-entry general-purpose register store. Writes to
// x0 are silently discarded and reads always yield 0, per spec §4.5.
type RegisterFile struct {
	values [isa.NumRegisters]int32

	// lastSet/lastRead are scratch fields consumed only by the debugger's
	// register dump highlighting; they carry no semantic weight.
	lastSet  int
	lastRead int
}

// NewRegisterFile returns a zeroed register file.
func NewRegisterFile() *RegisterFile {
	return &RegisterFile{lastSet: -1, lastRead: -1}
}

// Get returns the signed 32-bit value at index i.
func (r *RegisterFile) Get(i int) int32 {
	r.lastRead = i
	if i == 0 {
		return 0
	}
	return r.values[i]
}

// Set stores v at index i. A write to x0 is a no-op.
func (r *RegisterFile) Set(i int, v int32) {
	if i == 0 {
		return
	}
	r.values[i] = v
	r.lastSet = i
}

// GetByName resolves an ABI or x-name to its value.
func (r *RegisterFile) GetByName(name string) (int32, error) {
	idx, ok := isa.LookupRegister(name)
	if !ok {
		return 0, isa.NewError(isa.InvalidRegister, "invalid register: %q", name)
	}
	return r.Get(idx), nil
}

// SetByName resolves an ABI or x-name and stores v.
func (r *RegisterFile) SetByName(name string, v int32) error {
	idx, ok := isa.LookupRegister(name)
	if !ok {
		return isa.NewError(isa.InvalidRegister, "invalid register: %q", name)
	}
	r.Set(idx, v)
	return nil
}

// LastSet returns the index most recently written, or -1 if none yet.
func (r *RegisterFile) LastSet() int { return r.lastSet }

// LastRead returns the index most recently read, or -1 if none yet.
func (r *RegisterFile) LastRead() int { return r.lastRead }

// Snapshot returns a copy of the current register values, used by the
// debugger and execution tracer to diff state across a step.
func (r *RegisterFile) Snapshot() [isa.NumRegisters]int32 {
	snap := r.values
	snap[0] = 0
	return snap
}
