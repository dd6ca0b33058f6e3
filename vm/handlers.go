package vm

import (
	"github.com/r5by/rv32i-toolchain/isa"
)

// buildDispatchTable constructs the mnemonic -> Handler table consumed by
// CPU.Step, per spec §4.6. Arithmetic/logic handlers operate on rs1/rs2;
// immediate forms consume Imm.Abs; branch/jump handlers consume Imm.PCRel.
func buildDispatchTable() map[string]Handler {
	t := map[string]Handler{
		"add":  rHandler(func(a, b uint32) uint32 { return isa.WrappingAdd(a, b) }),
		"sub":  rHandler(func(a, b uint32) uint32 { return isa.WrappingSub(a, b) }),
		"and":  rHandler(func(a, b uint32) uint32 { return a & b }),
		"or":   rHandler(func(a, b uint32) uint32 { return a | b }),
		"xor":  rHandler(func(a, b uint32) uint32 { return a ^ b }),
		"sll":  rHandler(func(a, b uint32) uint32 { return isa.ShiftLeft(a, uint(b)) }),
		"srl":  rHandler(func(a, b uint32) uint32 { return isa.LogicalShiftRight(a, uint(b)) }),
		"sra":  rHandler(func(a, b uint32) uint32 { return isa.ArithShiftRight(a, uint(b)) }),
		"slt":  rHandler(func(a, b uint32) uint32 { return boolToWord(isa.AsSigned(a) < isa.AsSigned(b)) }),
		"sltu": rHandler(func(a, b uint32) uint32 { return boolToWord(a < b) }),

		"addi":  iHandler(func(a uint32, imm int32) uint32 { return isa.WrappingAdd(a, isa.AsUnsigned(imm)) }),
		"andi":  iHandler(func(a uint32, imm int32) uint32 { return a & isa.AsUnsigned(imm) }),
		"ori":   iHandler(func(a uint32, imm int32) uint32 { return a | isa.AsUnsigned(imm) }),
		"xori":  iHandler(func(a uint32, imm int32) uint32 { return a ^ isa.AsUnsigned(imm) }),
		"slli":  iHandler(func(a uint32, imm int32) uint32 { return isa.ShiftLeft(a, uint(imm)) }),
		"srli":  iHandler(func(a uint32, imm int32) uint32 { return isa.LogicalShiftRight(a, uint(imm)) }),
		"srai":  iHandler(func(a uint32, imm int32) uint32 { return isa.ArithShiftRight(a, uint(imm)) }),
		"slti":  iHandler(func(a uint32, imm int32) uint32 { return boolToWord(isa.AsSigned(a) < imm) }),
		"sltiu": iHandler(func(a uint32, imm int32) uint32 { return boolToWord(a < isa.AsUnsigned(imm)) }),

		"lb":  loadHandler(1, true),
		"lh":  loadHandler(2, true),
		"lw":  loadHandler(4, false),
		"lbu": loadHandler(1, false),
		"lhu": loadHandler(2, false),

		"sb": storeHandler(1),
		"sh": storeHandler(2),
		"sw": storeHandler(4),

		"beq":  branchHandler(func(a, b int32) bool { return a == b }),
		"bne":  branchHandler(func(a, b int32) bool { return a != b }),
		"blt":  branchHandler(func(a, b int32) bool { return a < b }),
		"bge":  branchHandler(func(a, b int32) bool { return a >= b }),
		"bltu": branchHandler(func(a, b int32) bool { return isa.AsUnsigned(a) < isa.AsUnsigned(b) }),
		"bgeu": branchHandler(func(a, b int32) bool { return isa.AsUnsigned(a) >= isa.AsUnsigned(b) }),

		"lui": func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error) {
			cpu.Registers.Set(ins.Rd, ins.Imm.Abs<<12)
			return isa.Continue, nil
		},
		"auipc": func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error) {
			base := ins.Address
			cpu.Registers.Set(ins.Rd, isa.AsSigned(isa.WrappingAdd(base, isa.AsUnsigned(ins.Imm.Abs<<12))))
			return isa.Continue, nil
		},
		"jal": func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error) {
			cpu.Registers.Set(ins.Rd, isa.AsSigned(cpu.PC))
			cpu.PC = isa.WrappingAdd(cpu.PC, isa.AsUnsigned(ins.Imm.PCRel-4))
			return isa.Continue, nil
		},
		"jalr": func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error) {
			link := cpu.PC
			target := isa.WrappingAdd(isa.AsUnsigned(cpu.Registers.Get(ins.Rs1)), isa.AsUnsigned(ins.Imm.Abs))
			target &^= 1
			cpu.Registers.Set(ins.Rd, isa.AsSigned(link))
			cpu.PC = target
			return isa.Continue, nil
		},
		"ecall": func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error) {
			return isa.Halt, nil
		},
		"ebreak": func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error) {
			return isa.DebugTrap, nil
		},
	}
	return t
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// rHandler builds a register-register ALU handler from a pure bit-op.
func rHandler(op func(a, b uint32) uint32) Handler {
	return func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error) {
		a := isa.AsUnsigned(cpu.Registers.Get(ins.Rs1))
		b := isa.AsUnsigned(cpu.Registers.Get(ins.Rs2))
		cpu.Registers.Set(ins.Rd, isa.AsSigned(op(a, b)))
		return isa.Continue, nil
	}
}

// iHandler builds a register-immediate ALU handler.
func iHandler(op func(a uint32, imm int32) uint32) Handler {
	return func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error) {
		a := isa.AsUnsigned(cpu.Registers.Get(ins.Rs1))
		cpu.Registers.Set(ins.Rd, isa.AsSigned(op(a, ins.Imm.Abs)))
		return isa.Continue, nil
	}
}

// branchHandler builds a comparison-and-taken-jump handler. On a taken
// branch, PC = PC + pcrel - 4, compensating for CPU.Step's pre-increment.
func branchHandler(taken func(a, b int32) bool) Handler {
	return func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error) {
		a := cpu.Registers.Get(ins.Rs1)
		b := cpu.Registers.Get(ins.Rs2)
		if taken(a, b) {
			cpu.PC = isa.WrappingAdd(cpu.PC, isa.AsUnsigned(ins.Imm.PCRel-4))
		}
		return isa.Continue, nil
	}
}

// loadHandler builds a handler for a load of the given byte width, with
// sign or zero extension per the mnemonic (lb/lh sign-extend; lbu/lhu/lw
// do not, lw being full width already).
func loadHandler(width int, signExtend bool) Handler {
	return func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error) {
		addr := isa.WrappingAdd(isa.AsUnsigned(cpu.Registers.Get(ins.Rs1)), isa.AsUnsigned(ins.Imm.Abs))
		var raw uint32
		var err error
		switch width {
		case 1:
			var b byte
			b, err = cpu.Memory.ReadByte(addr)
			raw = uint32(b)
		case 2:
			var h uint16
			h, err = cpu.Memory.ReadHalfword(addr)
			raw = uint32(h)
		case 4:
			raw, err = cpu.Memory.ReadWord(addr)
		}
		if err != nil {
			return isa.Halt, err
		}
		if cpu.MemTrace != nil {
			cpu.MemTrace.RecordRead(cpu.Cycles, ins.Address, addr, raw, memTraceSize(width))
		}
		if signExtend {
			raw = isa.SignExtend(raw, uint(width*8))
		}
		cpu.Registers.Set(ins.Rd, isa.AsSigned(raw))
		return isa.Continue, nil
	}
}

// memTraceSize maps a load/store byte width to the label MemoryTrace
// entries print.
func memTraceSize(width int) string {
	switch width {
	case 1:
		return "BYTE"
	case 2:
		return "HALF"
	default:
		return "WORD"
	}
}

// storeHandler builds a handler for a store of the given byte width. Per
// spec §4.6, the decoded record's Rd slot carries the store's source
// register.
func storeHandler(width int) Handler {
	return func(cpu *CPU, ins isa.Instruction) (isa.StepOutcome, error) {
		addr := isa.WrappingAdd(isa.AsUnsigned(cpu.Registers.Get(ins.Rs1)), isa.AsUnsigned(ins.Imm.Abs))
		value := isa.AsUnsigned(cpu.Registers.Get(ins.Rd))
		var err error
		switch width {
		case 1:
			err = cpu.Memory.WriteByte(addr, byte(value))
		case 2:
			err = cpu.Memory.WriteHalfword(addr, uint16(value))
		case 4:
			err = cpu.Memory.WriteWord(addr, value)
		}
		if err != nil {
			return isa.Halt, err
		}
		if cpu.MemTrace != nil {
			cpu.MemTrace.RecordWrite(cpu.Cycles, ins.Address, addr, value, memTraceSize(width))
		}
		return isa.Continue, nil
	}
}
