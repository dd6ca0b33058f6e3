package debugger

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/vm"
)

// TUI is the full-screen debugger front end: a source/disassembly panel,
// a register panel, an output log, and a command line, wired together
// with tview/tcell the way the command-line REPL is wired with bufio.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	MainLayout   *tview.Flex
	SourceView   *tview.TextView
	RegisterView *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField
}

// NewTUI builds a TUI bound to dbg but does not start the event loop.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{Debugger: dbg, App: tview.NewApplication()}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	top := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(t.SourceView, 0, 2, false).
		AddItem(t.RegisterView, 32, 0, false)

	t.MainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd != "" {
		t.executeCommand(cmd)
		t.CommandInput.SetText("")
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()
	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()
	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	if t.Debugger.Running {
		for t.Debugger.Running {
			if shouldBreak, reason := t.Debugger.ShouldBreak(); shouldBreak {
				t.Debugger.Running = false
				t.WriteOutput(fmt.Sprintf("stopped: %s at PC=0x%08x\n", reason, t.Debugger.CPU.PC))
				break
			}
			if _, runErr := t.Debugger.CPU.Step(); runErr != nil {
				t.Debugger.Running = false
				if t.Debugger.CPU.State == vm.Halted {
					t.WriteOutput(fmt.Sprintf("program exited with code %d\n", t.Debugger.CPU.ExitCode))
				} else {
					t.WriteOutput(fmt.Sprintf("runtime error: %v\n", runErr))
				}
				break
			}
			if t.Debugger.CPU.State == vm.Halted {
				t.Debugger.Running = false
				t.WriteOutput(fmt.Sprintf("program exited with code %d\n", t.Debugger.CPU.ExitCode))
				break
			}
		}
	}

	t.RefreshAll()
}

// WriteOutput appends text to the output log and scrolls to the end.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current CPU state.
func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateRegisterView()
	t.App.Draw()
}

// UpdateSourceView shows the source line mapped to the current PC, or a
// placeholder when no source map was loaded.
func (t *TUI) UpdateSourceView() {
	pc := t.Debugger.CPU.PC
	if line, ok := t.Debugger.SourceMap[pc]; ok {
		t.SourceView.SetText(fmt.Sprintf("[yellow]0x%08x[white]  %s", pc, line))
	} else {
		t.SourceView.SetText(fmt.Sprintf("[yellow]0x%08x[white]  <no source mapping>", pc))
	}
}

// UpdateRegisterView lists every general-purpose register by ABI name,
// highlighting the one most recently written.
func (t *TUI) UpdateRegisterView() {
	regs := t.Debugger.CPU.Registers
	var out string
	for i := 0; i < isa.NumRegisters; i++ {
		v := regs.Get(i)
		if i == regs.LastSet() {
			out += fmt.Sprintf("[green]%-4s x%-2d 0x%08x[white]\n", isa.ABIName(i), i, uint32(v))
		} else {
			out += fmt.Sprintf("%-4s x%-2d 0x%08x\n", isa.ABIName(i), i, uint32(v))
		}
	}
	out += fmt.Sprintf("\npc   0x%08x\n", t.Debugger.CPU.PC)
	t.RegisterView.SetText(out)
}

// Run starts the tview event loop; it blocks until the user quits
// (Ctrl+C) or the application is stopped programmatically.
func (t *TUI) Run() error {
	t.RefreshAll()
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}
