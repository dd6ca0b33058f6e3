package vm

import (
	"fmt"

	"github.com/r5by/rv32i-toolchain/isa"
)

// Handler is a semantic handler for one mnemonic: it mutates the register
// file, memory, and/or PC and reports how the CPU loop should proceed.
type Handler func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error)

// DebugHook is the interface the CPU calls into when it traps on ebreak.
// Its concrete implementation (an interactive REPL) lives outside the
// core; the core only depends on this contract.
type DebugHook interface {
	// OnBreak is entered with the CPU paused at the trapping instruction.
	// It returns once the collaborator decides execution should resume.
	OnBreak(cpu *CPU)
}

// CPU is the interpreter's execution engine: register file, memory unit,
// program counter, and the mnemonic dispatch table built at construction.
type CPU struct {
	Registers *RegisterFile
	Memory    *Memory

	PC      uint32
	Cycles  uint64
	State   RunState
	HartID  uint32
	ExitCode int

	MaxCycles uint64

	dispatch map[string]Handler
	Debugger DebugHook
	Trace    *ExecutionTrace
	MemTrace *MemoryTrace
}

// NewCPU constructs a CPU with a fresh register file and memory unit, PC
// set to entrypoint, and the full RV32I handler table installed.
func NewCPU(entrypoint uint32, maxCycles uint64) *CPU {
	cpu := &CPU{
		Registers: NewRegisterFile(),
		Memory:    NewMemory(),
		PC:        entrypoint,
		State:     Running,
		MaxCycles: maxCycles,
	}
	cpu.Registers.Set(mustRegisterIndex("sp"), int32(cpu.Memory.StackTop()))
	cpu.dispatch = buildDispatchTable()
	return cpu
}

func mustRegisterIndex(name string) int {
	idx, ok := isa.LookupRegister(name)
	if !ok {
		panic("vm: unknown register " + name)
	}
	return idx
}

// AttachDebugger installs the collaborator entered on ebreak traps.
func (c *CPU) AttachDebugger(hook DebugHook) {
	c.Debugger = hook
}

// Step executes exactly one instruction following the fetch order in
// spec §4.7: fetch at PC, pre-increment PC by 4, then dispatch. Handlers
// therefore observe PC already pointing at the next instruction, which is
// why branch/jump handlers subtract 4 from their PC-relative offset.
func (c *CPU) Step() (isa.StepOutcome, error) {
	c.Cycles++
	ins, err := c.Memory.ReadIns(c.PC)
	if err != nil {
		c.State = Halted
		return isa.Halt, err
	}
	c.PC += 4

	handler, ok := c.dispatch[ins.Mnemonic]
	if !ok {
		c.State = Halted
		return isa.Halt, isa.NewError(isa.UnsupportedInstruction, "no handler for %s", ins.Mnemonic)
	}

	outcome, err := handler(c, ins)
	if c.Trace != nil {
		c.Trace.RecordInstruction(c, ins)
	}
	if err != nil {
		c.State = Halted
		return isa.Halt, err
	}

	switch outcome {
	case isa.DebugTrap:
		if c.Debugger != nil {
			c.State = DebugPaused
			c.Debugger.OnBreak(c)
			c.State = Running
			return isa.Continue, nil
		}
		c.State = Halted
		return isa.Halt, nil
	case isa.Halt:
		c.State = Halted
	}
	return outcome, nil
}

// Run drives Step until halted or MaxCycles is exceeded.
func (c *CPU) Run() error {
	for c.State != Halted {
		if c.MaxCycles > 0 && c.Cycles >= c.MaxCycles {
			c.State = Halted
			return fmt.Errorf("exceeded max cycle count %d", c.MaxCycles)
		}
		if _, err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}
