package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/r5by/rv32i-toolchain/isa"
)

func (d *Debugger) cmdContinue(args []string) error {
	d.StepMode = StepNone
	d.Running = true
	d.Println("Continuing...")
	return nil
}

func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

func (d *Debugger) cmdNext(args []string) error {
	d.SetStepOver()
	return nil
}

func (d *Debugger) cmdFinish(args []string) error {
	d.SetStepOut()
	return nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label> [if <condition>]")
	}
	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}
	bp := d.Breakpoints.AddBreakpoint(address, false, condition)
	if condition != "" {
		d.Printf("Breakpoint %d at 0x%08x (condition: %s)\n", bp.ID, address, condition)
	} else {
		d.Printf("Breakpoint %d at 0x%08x\n", bp.ID, address)
	}
	return nil
}

func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>")
	}
	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(address, true, "")
	d.Printf("Temporary breakpoint %d at 0x%08x\n", bp.ID, address)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	return d.Breakpoints.EnableBreakpoint(id)
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	return d.Breakpoints.DisableBreakpoint(id)
}

func (d *Debugger) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <register|[address]>")
	}
	expr := args[0]
	var wp *Watchpoint
	if idx, ok := isa.LookupRegister(strings.ToLower(expr)); ok {
		wp = d.Watchpoints.AddWatchpoint(WatchReadWrite, expr, 0, true, idx)
	} else if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addr, err := d.ResolveAddress(strings.TrimSuffix(strings.TrimPrefix(expr, "["), "]"))
		if err != nil {
			return err
		}
		wp = d.Watchpoints.AddWatchpoint(WatchReadWrite, expr, addr, false, 0)
	} else {
		return fmt.Errorf("watch expression must be a register or [address], got %q", expr)
	}
	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.CPU); err != nil {
		return err
	}
	d.Printf("Watchpoint %d: %s\n", wp.ID, wp.Expression)
	return nil
}

func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}
	expr := strings.Join(args, " ")
	val, err := d.Evaluator.EvaluateExpression(expr, d.CPU, d.Symbols)
	if err != nil {
		return err
	}
	d.Printf("$%d = %d (0x%08x)\n", len(d.Evaluator.valueHistory), val, uint32(val))
	return nil
}

func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x <address> [count]")
	}
	addr, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	count := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err == nil && n > 0 {
			count = n
		}
	}
	for i := 0; i < count; i++ {
		word, err := d.CPU.Memory.ReadWord(addr + uint32(i*4))
		if err != nil {
			return err
		}
		d.Printf("0x%08x: 0x%08x\n", addr+uint32(i*4), word)
	}
	return nil
}

func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|watchpoints>")
	}
	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		for i := 0; i < isa.NumRegisters; i++ {
			v := d.CPU.Registers.Get(i)
			d.Printf("%-4s (x%-2d) = 0x%08x (%d)\n", isa.ABIName(i), i, uint32(v), v)
		}
		d.Printf("pc       = 0x%08x\n", d.CPU.PC)
	case "breakpoints", "break", "b":
		for _, bp := range d.Breakpoints.GetAllBreakpoints() {
			d.Printf("%d: 0x%08x enabled=%v hits=%d\n", bp.ID, bp.Address, bp.Enabled, bp.HitCount)
		}
	case "watchpoints", "watch", "w":
		for _, wp := range d.Watchpoints.GetAllWatchpoints() {
			d.Printf("%d: %s enabled=%v hits=%d\n", wp.ID, wp.Expression, wp.Enabled, wp.HitCount)
		}
	default:
		return fmt.Errorf("unknown info subcommand: %s", args[0])
	}
	return nil
}

func (d *Debugger) cmdList(args []string) error {
	addr := d.CPU.PC
	if len(args) > 0 {
		a, err := d.ResolveAddress(args[0])
		if err != nil {
			return err
		}
		addr = a
	}
	if line, ok := d.SourceMap[addr]; ok {
		d.Printf("0x%08x: %s\n", addr, line)
	} else {
		d.Printf("0x%08x: <no source mapping>\n", addr)
	}
	return nil
}

func (d *Debugger) cmdSet(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set <register> <value>")
	}
	val, err := parseExprLiteral(args[1])
	if err != nil {
		return err
	}
	return d.CPU.Registers.SetByName(strings.ToLower(args[0]), val)
}

func (d *Debugger) cmdHelp(args []string) error {
	d.Println("available commands:")
	d.Println("  continue (c), step (s), next (n), finish (fin)")
	d.Println("  break (b) <addr|label> [if <cond>], tbreak (tb) <addr|label>")
	d.Println("  delete (d) [id], enable <id>, disable <id>")
	d.Println("  watch (w) <register|[address]>")
	d.Println("  print (p) <expr>, x <addr> [count], info (i) registers|breakpoints|watchpoints")
	d.Println("  list (l) [addr], set <register> <value>, help (h)")
	return nil
}
