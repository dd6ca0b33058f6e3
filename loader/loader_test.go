package loader_test

import (
	"testing"

	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/loader"
	"github.com/r5by/rv32i-toolchain/parser"
	"github.com/r5by/rv32i-toolchain/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSource = `
start:
    addi a0, zero, 1
    addi a1, zero, 2
loop:
    add  a0, a0, a1
    beq  a0, a1, loop
    ecall
`

func assembleSample(t *testing.T) (*parser.Program, *loader.ProgramImage) {
	t.Helper()
	p := parser.NewParser(sampleSource, "sample.s", 0x80100)
	prog, err := p.Parse()
	require.NoError(t, err)

	image, err := loader.Assemble(prog, isa.DefaultDescriptor(), 0x80100)
	require.NoError(t, err)
	return prog, image
}

func TestAssemble_ProducesOneWordPerLine(t *testing.T) {
	prog, image := assembleSample(t)
	assert.Equal(t, len(prog.Lines), len(image.Words))
	assert.Equal(t, len(prog.Lines), len(image.Decoded))
	assert.Equal(t, uint32(0x80100), image.BaseAddr)
}

func TestAssemble_ResolvesLabelsToAddresses(t *testing.T) {
	_, image := assembleSample(t)

	var beq *isa.Instruction
	for i := range image.Decoded {
		if image.Decoded[i].Mnemonic == "beq" {
			beq = &image.Decoded[i]
		}
	}
	require.NotNil(t, beq, "expected a decoded beq instruction")
	// loop: labels the "add" line at 0x80108 (the third translatable
	// line); beq is the fourth, at 0x8010c, so it branches back by -4.
	assert.Equal(t, int32(0x80108-0x8010c), beq.Imm.PCRel)
}

func TestAssemble_UnknownMnemonicFails(t *testing.T) {
	p := parser.NewParser("    frobnicate a0, a1, a2\n", "bad.s", 0x80100)
	prog, err := p.Parse()
	require.NoError(t, err, "parsing is mnemonic-agnostic; only assembly fails")

	_, err = loader.Assemble(prog, isa.DefaultDescriptor(), 0x80100)
	require.Error(t, err)
}

func TestLoadProgramIntoCPU_SetsEntrypointAndImage(t *testing.T) {
	_, image := assembleSample(t)
	cpu := vm.NewCPU(0x80100, 1000)

	loader.LoadProgramIntoCPU(cpu, image)
	assert.Equal(t, uint32(0x80100), cpu.PC)

	ins, err := cpu.Memory.ReadIns(0x80100)
	require.NoError(t, err)
	assert.Equal(t, "addi", ins.Mnemonic)
}

func TestLoadProgramIntoCPU_RunsToCompletion(t *testing.T) {
	_, image := assembleSample(t)
	cpu := vm.NewCPU(0x80100, 1000)
	loader.LoadProgramIntoCPU(cpu, image)

	require.NoError(t, cpu.Run())
	assert.Equal(t, vm.Halted, cpu.State)
	// a0 starts at 1, a1 at 2; add makes a0=3, so beq a0,a1 compares
	// 3 to 2, is not taken, and falls through to ecall.
	assert.Equal(t, int32(3), cpu.Registers.Get(10))
}
