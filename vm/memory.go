package vm

import (
	"github.com/r5by/rv32i-toolchain/isa"
)

// Fixed data-region layout. The code/program image floats at whatever
// base_addr the CLI selects (default 0x80100); these regions sit well
// below that default so the two never collide in practice.
const (
	DataSegmentStart  = 0x00020000
	DataSegmentSize   = 0x00010000
	HeapSegmentStart  = 0x00030000
	HeapSegmentSize   = 0x00010000
	StackSegmentStart = 0x00040000
	StackSegmentSize  = 0x00010000
)

// MemoryPermission is a bitmask of segment access rights.
type MemoryPermission byte

const (
	PermNone    MemoryPermission = 0
	PermRead    MemoryPermission = 1 << 0
	PermWrite   MemoryPermission = 1 << 1
	PermExecute MemoryPermission = 1 << 2
)

// MemorySegment is a byte-addressable region of data memory.
type MemorySegment struct {
	Start       uint32
	Size        uint32
	Data        []byte
	Permissions MemoryPermission
	Name        string
}

// Memory is the CPU's memory unit: a sparse address->Instruction program
// image for fetch (spec §4.4), plus the byte-addressable data segments
// that loads and stores actually touch.
type Memory struct {
	Segments []*MemorySegment

	image    map[uint32]isa.Instruction
	baseAddr uint32
	imgSize  uint32 // number of 4-byte slots in the image

	AccessCount uint64
	ReadCount   uint64
	WriteCount  uint64
}

// NewMemory creates a Memory with the standard data/heap/stack segments
// and an empty program image.
func NewMemory() *Memory {
	m := &Memory{
		Segments: make([]*MemorySegment, 0, 3),
		image:    make(map[uint32]isa.Instruction),
	}
	m.AddSegment("data", DataSegmentStart, DataSegmentSize, PermRead|PermWrite)
	m.AddSegment("heap", HeapSegmentStart, HeapSegmentSize, PermRead|PermWrite)
	m.AddSegment("stack", StackSegmentStart, StackSegmentSize, PermRead|PermWrite)
	return m
}

// AddSegment maps a new byte-addressable region.
func (m *Memory) AddSegment(name string, start, size uint32, perms MemoryPermission) {
	m.Segments = append(m.Segments, &MemorySegment{
		Start: start, Size: size, Data: make([]byte, size), Permissions: perms, Name: name,
	})
}

// StackTop returns the initial stack pointer value: the top of the stack
// segment, growing down.
func (m *Memory) StackTop() uint32 {
	return StackSegmentStart + StackSegmentSize
}

func (m *Memory) findSegment(address uint32) (*MemorySegment, uint32, bool) {
	for _, seg := range m.Segments {
		if address >= seg.Start && address < seg.Start+seg.Size {
			return seg, address - seg.Start, true
		}
	}
	return nil, 0, false
}

// LoadProgram populates the instruction image from encoder output. decoded
// must be in address order starting at baseAddr.
func (m *Memory) LoadProgram(baseAddr uint32, decoded []isa.Instruction) {
	m.baseAddr = baseAddr
	m.imgSize = uint32(len(decoded))
	m.image = make(map[uint32]isa.Instruction, len(decoded))
	for _, ins := range decoded {
		m.image[ins.Address] = ins
	}
}

// isValidFetchAddr implements spec §4.4's validity predicate, corrected
// per the canonical reading of the original's unparenthesized bug:
// (addr - base) / 4 < size, not addr - base >> 2 < size.
func (m *Memory) isValidFetchAddr(addr uint32) bool {
	if addr < m.baseAddr || addr&0b11 != 0 {
		return false
	}
	return (addr-m.baseAddr)/4 < m.imgSize
}

// ReadIns fetches the decoded instruction at pc, raising InvalidAddress if
// pc falls outside the program image or is misaligned.
func (m *Memory) ReadIns(pc uint32) (isa.Instruction, error) {
	if !m.isValidFetchAddr(pc) {
		return isa.Instruction{}, isa.NewError(isa.InvalidAddress, "fetch at 0x%08x outside program image", pc)
	}
	ins, ok := m.image[pc]
	if !ok {
		return isa.Instruction{}, isa.NewError(isa.InvalidAddress, "no instruction decoded at 0x%08x", pc)
	}
	return ins, nil
}

// ReadByte reads one byte of data memory.
func (m *Memory) ReadByte(address uint32) (byte, error) {
	seg, off, ok := m.findSegment(address)
	if !ok {
		return 0, isa.NewError(isa.InvalidAddress, "read at 0x%08x is not mapped", address)
	}
	if seg.Permissions&PermRead == 0 {
		return 0, isa.NewError(isa.InvalidAddress, "read permission denied for segment %q at 0x%08x", seg.Name, address)
	}
	m.AccessCount++
	m.ReadCount++
	return seg.Data[off], nil
}

// WriteByte writes one byte of data memory.
func (m *Memory) WriteByte(address uint32, value byte) error {
	seg, off, ok := m.findSegment(address)
	if !ok {
		return isa.NewError(isa.InvalidAddress, "write at 0x%08x is not mapped", address)
	}
	if seg.Permissions&PermWrite == 0 {
		return isa.NewError(isa.InvalidAddress, "write permission denied for segment %q at 0x%08x", seg.Name, address)
	}
	m.AccessCount++
	m.WriteCount++
	seg.Data[off] = value
	return nil
}

// ReadHalfword reads a little-endian 16-bit value.
func (m *Memory) ReadHalfword(address uint32) (uint16, error) {
	lo, err := m.ReadByte(address)
	if err != nil {
		return 0, err
	}
	hi, err := m.ReadByte(address + 1)
	if err != nil {
		return 0, err
	}
	return uint16(lo) | uint16(hi)<<8, nil
}

// WriteHalfword writes a little-endian 16-bit value.
func (m *Memory) WriteHalfword(address uint32, value uint16) error {
	if err := m.WriteByte(address, byte(value)); err != nil {
		return err
	}
	return m.WriteByte(address+1, byte(value>>8))
}

// ReadWord reads a little-endian 32-bit value.
func (m *Memory) ReadWord(address uint32) (uint32, error) {
	lo, err := m.ReadHalfword(address)
	if err != nil {
		return 0, err
	}
	hi, err := m.ReadHalfword(address + 2)
	if err != nil {
		return 0, err
	}
	return uint32(lo) | uint32(hi)<<16, nil
}

// WriteWord writes a little-endian 32-bit value.
func (m *Memory) WriteWord(address uint32, value uint32) error {
	if err := m.WriteHalfword(address, uint16(value)); err != nil {
		return err
	}
	return m.WriteHalfword(address+2, uint16(value>>16))
}
