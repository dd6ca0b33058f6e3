package debugger

import (
	"fmt"
	"strings"

	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/vm"
)

// StepMode is the debugger's current single-stepping strategy.
type StepMode int

const (
	StepNone   StepMode = iota // Not stepping
	StepSingle                 // Step one instruction
	StepOver                   // Step over jal calls
	StepOut                    // Run until return to the caller
)

// Debugger is the interactive collaborator a CPU traps into on ebreak. It
// implements vm.DebugHook, so attaching one to a CPU via AttachDebugger is
// the only coupling between the core interpreter and the debugger.
type Debugger struct {
	CPU *vm.CPU

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	Running           bool
	StepMode          StepMode
	StepOverCallDepth int
	StepOverPC        uint32

	Symbols   map[string]uint32
	SourceMap map[uint32]string

	LastCommand string
	Output      strings.Builder

	// Prompt is invoked to read the next command line when running
	// interactively via RunCLI; nil when driven by the TUI event loop.
	Prompt func() (string, bool)
}

// NewDebugger constructs a Debugger attached to cpu. Call cpu.AttachDebugger
// with the result so ebreak traps enter OnBreak.
func NewDebugger(cpu *vm.CPU) *Debugger {
	return &Debugger{
		CPU:         cpu,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		StepMode:    StepNone,
		Symbols:     make(map[string]uint32),
		SourceMap:   make(map[uint32]string),
	}
}

// LoadSymbols installs the label/constant table used to resolve break
// targets and print expressions by name.
func (d *Debugger) LoadSymbols(symbols map[string]uint32) { d.Symbols = symbols }

// LoadSourceMap installs the address-to-source-line map used by the
// "list" command and the TUI source panel.
func (d *Debugger) LoadSourceMap(sourceMap map[uint32]string) { d.SourceMap = sourceMap }

// ResolveAddress resolves a label or parses a numeric (hex or decimal)
// address string.
func (d *Debugger) ResolveAddress(addrStr string) (uint32, error) {
	if addr, exists := d.Symbols[addrStr]; exists {
		return addr, nil
	}
	var addr uint32
	if strings.HasPrefix(addrStr, "0x") || strings.HasPrefix(addrStr, "0X") {
		if _, err := fmt.Sscanf(addrStr[2:], "%x", &addr); err != nil {
			return 0, fmt.Errorf("invalid address: %s", addrStr)
		}
	} else if _, err := fmt.Sscanf(addrStr, "%d", &addr); err != nil {
		return 0, fmt.Errorf("invalid address: %s", addrStr)
	}
	return addr, nil
}

// ExecuteCommand parses and runs a single command line, storing it in
// history. An empty line repeats the last command (matching gdb).
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}
	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)
	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)
	case "watch", "w":
		return d.cmdWatch(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "list", "l":
		return d.cmdList(args)
	case "set":
		return d.cmdSet(args)
	case "help", "h", "?":
		return d.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// OnBreak implements vm.DebugHook. It is entered with cpu paused at the
// trapping ebreak; it drives an interactive prompt loop until a command
// resumes execution (continue/step/next/finish), then returns.
func (d *Debugger) OnBreak(cpu *vm.CPU) {
	d.Printf("ebreak at 0x%08x\n", cpu.PC)
	d.Running = false
	for !d.Running {
		if d.Prompt == nil {
			return
		}
		line, ok := d.Prompt()
		if !ok {
			d.Running = true
			return
		}
		if err := d.ExecuteCommand(line); err != nil {
			d.Printf("error: %v\n", err)
		}
	}
}

// ShouldBreak reports whether execution should pause at the CPU's current
// PC because of an active step mode, breakpoint, or watchpoint.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.CPU.PC

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"
	case StepOver, StepOut:
		if pc == d.StepOverPC {
			d.StepMode = StepNone
			return true, "step complete"
		}
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}
		if bp.Condition != "" {
			result, err := d.Evaluator.Evaluate(bp.Condition, d.CPU, d.Symbols)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !result {
				return false, ""
			}
		}
		bp.HitCount++
		if bp.Temporary {
			_ = d.Breakpoints.DeleteBreakpoint(bp.ID)
		}
		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.CPU); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// GetOutput returns and clears the accumulated output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}

// SetStepOver arranges to run past a call (jal/jalr) rather than into it:
// if the instruction at PC is jal/jalr, the return address is PC+4;
// otherwise it degrades to a single step.
func (d *Debugger) SetStepOver() {
	ins, err := d.CPU.Memory.ReadIns(d.CPU.PC)
	if err != nil || !(ins.Mnemonic == "jal" || ins.Mnemonic == "jalr") {
		d.StepMode = StepSingle
		d.Running = true
		return
	}
	d.StepOverPC = d.CPU.PC + 4
	d.StepMode = StepOver
	d.Running = true
}

// SetStepOut runs until control returns to the address following the
// instruction that called into the current function (the return address
// currently held in ra).
func (d *Debugger) SetStepOut() {
	ra, err := d.CPU.Registers.GetByName("ra")
	if err != nil {
		d.StepMode = StepSingle
		d.Running = true
		return
	}
	d.StepOverPC = isa.AsUnsigned(ra)
	d.StepMode = StepOut
	d.Running = true
}
