package loader

import (
	"fmt"

	"github.com/r5by/rv32i-toolchain/encoder"
	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/parser"
	"github.com/r5by/rv32i-toolchain/vm"
)

// ProgramImage is the assembled output handed to the CPU and to the
// CLI's -show-encoding/-bin/-hex writers: the machine words in program
// order alongside their decoded records.
type ProgramImage struct {
	BaseAddr uint32
	Words    []uint32
	Decoded  []isa.Instruction
}

// Assemble runs the encoder over every translatable line in program and
// returns the resulting image. It stops at the first encoding failure,
// per spec §7's "encoder errors are fatal to assembly" policy.
func Assemble(program *parser.Program, descriptor *isa.Descriptor, baseAddr uint32) (*ProgramImage, error) {
	enc := encoder.NewEncoder(program.Symbols, descriptor)
	words, decoded, err := enc.EncodeProgram(program.Lines)
	if err != nil {
		return nil, fmt.Errorf("assembly failed: %w", err)
	}
	return &ProgramImage{BaseAddr: baseAddr, Words: words, Decoded: decoded}, nil
}

// LoadProgramIntoCPU populates cpu's memory unit with image's instruction
// records and sets PC to the entrypoint (baseAddr), per spec §4.4 and
// §4.6's CPU state description.
func LoadProgramIntoCPU(cpu *vm.CPU, image *ProgramImage) {
	cpu.Memory.LoadProgram(image.BaseAddr, image.Decoded)
	cpu.PC = image.BaseAddr
}
