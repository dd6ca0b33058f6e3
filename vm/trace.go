package vm

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/r5by/rv32i-toolchain/isa"
)

// TraceEntry is one recorded instruction execution.
type TraceEntry struct {
	Sequence        uint64
	Address         uint32
	Mnemonic        string
	RegisterChanges map[string]uint32
	Duration        time.Duration
}

// ExecutionTrace records register changes across CPU.Step calls, adapted
// from the teacher's ARM register tracer to RV32I's 32-entry file and
// dropped flag tracking (RV32I has no CPSR).
type ExecutionTrace struct {
	Enabled       bool
	Writer        io.Writer
	FilterRegs    map[string]bool // empty = all
	IncludeTiming bool
	MaxEntries    int

	entries      []TraceEntry
	startTime    time.Time
	lastSnapshot map[string]uint32
}

// NewExecutionTrace creates a trace writing to w.
func NewExecutionTrace(w io.Writer) *ExecutionTrace {
	return &ExecutionTrace{
		Enabled:       true,
		Writer:        w,
		FilterRegs:    make(map[string]bool),
		IncludeTiming: true,
		MaxEntries:    100000,
		entries:       make([]TraceEntry, 0, 1000),
		lastSnapshot:  make(map[string]uint32),
	}
}

// SetFilterRegisters restricts tracked registers to the given ABI/x names.
// An empty slice tracks all registers.
func (t *ExecutionTrace) SetFilterRegisters(regs []string) {
	t.FilterRegs = make(map[string]bool)
	for _, r := range regs {
		t.FilterRegs[strings.ToLower(r)] = true
	}
}

// Start resets trace state and begins timing.
func (t *ExecutionTrace) Start() {
	t.startTime = time.Now()
	t.entries = t.entries[:0]
	t.lastSnapshot = make(map[string]uint32)
}

// RecordInstruction captures register deltas after cpu executed ins.
func (t *ExecutionTrace) RecordInstruction(cpu *CPU, ins isa.Instruction) {
	if !t.Enabled {
		return
	}
	if t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries {
		return
	}

	entry := TraceEntry{
		Sequence:        cpu.Cycles,
		Address:         ins.Address,
		Mnemonic:        ins.Mnemonic,
		RegisterChanges: make(map[string]uint32),
	}
	if t.IncludeTiming {
		entry.Duration = time.Since(t.startTime)
	}

	snap := cpu.Registers.Snapshot()
	for i, v := range snap {
		name := isa.ABIName(i)
		if len(t.FilterRegs) > 0 && !t.FilterRegs[name] {
			continue
		}
		uv := isa.AsUnsigned(v)
		if old, exists := t.lastSnapshot[name]; !exists || old != uv {
			entry.RegisterChanges[name] = uv
			t.lastSnapshot[name] = uv
		}
	}

	t.entries = append(t.entries, entry)
}

// Flush writes every recorded entry to Writer.
func (t *ExecutionTrace) Flush() error {
	if t.Writer == nil {
		return nil
	}
	for _, entry := range t.entries {
		if err := t.writeEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (t *ExecutionTrace) writeEntry(entry TraceEntry) error {
	line := fmt.Sprintf("[%06d] 0x%08x: %-8s", entry.Sequence, entry.Address, entry.Mnemonic)

	if len(entry.RegisterChanges) > 0 {
		changes := make([]string, 0, len(entry.RegisterChanges))
		for name, value := range entry.RegisterChanges {
			changes = append(changes, fmt.Sprintf("%s=0x%08x", name, value))
		}
		line += " | " + strings.Join(changes, " ")
	} else {
		line += " | (no changes)"
	}

	if t.IncludeTiming {
		line += fmt.Sprintf(" | %v", entry.Duration)
	}
	line += "\n"

	_, err := t.Writer.Write([]byte(line))
	return err
}

// GetEntries returns all recorded entries.
func (t *ExecutionTrace) GetEntries() []TraceEntry { return t.entries }

// Clear discards all recorded entries.
func (t *ExecutionTrace) Clear() {
	t.entries = t.entries[:0]
	t.lastSnapshot = make(map[string]uint32)
}

// MemoryAccessEntry is one recorded load or store.
type MemoryAccessEntry struct {
	Sequence  uint64
	Address   uint32
	PC        uint32
	Type      string // "READ" or "WRITE"
	Size      string // "BYTE", "HALF", "WORD"
	Value     uint32
	Timestamp time.Duration
}

// MemoryTrace records data-memory accesses independent of register changes.
type MemoryTrace struct {
	Enabled    bool
	Writer     io.Writer
	MaxEntries int

	entries   []MemoryAccessEntry
	startTime time.Time
}

// NewMemoryTrace creates a memory trace writing to w.
func NewMemoryTrace(w io.Writer) *MemoryTrace {
	return &MemoryTrace{Enabled: true, Writer: w, MaxEntries: 100000, entries: make([]MemoryAccessEntry, 0, 1000)}
}

// Start resets and begins timing.
func (t *MemoryTrace) Start() {
	t.startTime = time.Now()
	t.entries = t.entries[:0]
}

// RecordRead appends a read access.
func (t *MemoryTrace) RecordRead(sequence uint64, pc, address, value uint32, size string) {
	if !t.Enabled || (t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries) {
		return
	}
	t.entries = append(t.entries, MemoryAccessEntry{sequence, address, pc, "READ", size, value, time.Since(t.startTime)})
}

// RecordWrite appends a write access.
func (t *MemoryTrace) RecordWrite(sequence uint64, pc, address, value uint32, size string) {
	if !t.Enabled || (t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries) {
		return
	}
	t.entries = append(t.entries, MemoryAccessEntry{sequence, address, pc, "WRITE", size, value, time.Since(t.startTime)})
}

// Flush writes every recorded access to Writer.
func (t *MemoryTrace) Flush() error {
	if t.Writer == nil {
		return nil
	}
	for _, entry := range t.entries {
		if err := t.writeEntry(entry); err != nil {
			return err
		}
	}
	return nil
}

func (t *MemoryTrace) writeEntry(entry MemoryAccessEntry) error {
	arrow := "->"
	if entry.Type == "READ" {
		arrow = "<-"
	}
	line := fmt.Sprintf("[%06d] [%-5s] 0x%08x %s [0x%08x] = 0x%08x (%s)\n",
		entry.Sequence, entry.Type, entry.PC, arrow, entry.Address, entry.Value, entry.Size)
	_, err := t.Writer.Write([]byte(line))
	return err
}

// GetEntries returns all recorded accesses.
func (t *MemoryTrace) GetEntries() []MemoryAccessEntry { return t.entries }

// Clear discards all recorded accesses.
func (t *MemoryTrace) Clear() { t.entries = t.entries[:0] }

// OpenTraceFile opens filename for writing trace output.
func OpenTraceFile(filename string) (*os.File, error) {
	return os.Create(filename) // #nosec G304 -- operator-provided trace output path
}
