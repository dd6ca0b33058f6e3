package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/r5by/rv32i-toolchain/vm"
)

// RunCLI drives the debugger through a line-oriented REPL on stdin/stdout,
// stepping the CPU directly (rather than via AttachDebugger/OnBreak) so the
// prompt can interleave with execution between instructions.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(rv32i-dbg) ")

		if !scanner.Scan() {
			break
		}
		cmdLine := strings.TrimSpace(scanner.Text())

		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}

		if dbg.Running {
			for dbg.Running {
				if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
					dbg.Running = false
					fmt.Printf("Stopped: %s at PC=0x%08x\n", reason, dbg.CPU.PC)
					break
				}
				if _, err := dbg.CPU.Step(); err != nil {
					dbg.Running = false
					if dbg.CPU.State == vm.Halted {
						fmt.Printf("Program exited with code %d\n", dbg.CPU.ExitCode)
					} else {
						fmt.Printf("Runtime error: %v\n", err)
					}
					break
				}
				if dbg.CPU.State == vm.Halted {
					dbg.Running = false
					fmt.Printf("Program exited with code %d\n", dbg.CPU.ExitCode)
					break
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

// RunTUI drives the same Debugger through the tview-based full-screen
// interface instead of a line REPL.
func RunTUI(dbg *Debugger) error {
	return NewTUI(dbg).Run()
}
