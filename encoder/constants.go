package encoder

// Per-mnemonic encoding constants, table-driven per the canonical (as
// opposed to token-splitting) encoder family. Each table entry carries the
// fixed funct3/funct7/opcode bits that, together with the operand registers
// and immediate, fully determine the 32-bit word for that mnemonic.

type rEntry struct {
	funct7  uint32
	funct3  uint32
	opcode  uint32
}

var rTable = map[string]rEntry{
	"add":  {0b0000000, 0b000, 0b0110011},
	"sub":  {0b0100000, 0b000, 0b0110011},
	"sll":  {0b0000000, 0b001, 0b0110011},
	"slt":  {0b0000000, 0b010, 0b0110011},
	"sltu": {0b0000000, 0b011, 0b0110011},
	"xor":  {0b0000000, 0b100, 0b0110011},
	"srl":  {0b0000000, 0b101, 0b0110011},
	"sra":  {0b0100000, 0b101, 0b0110011},
	"or":   {0b0000000, 0b110, 0b0110011},
	"and":  {0b0000000, 0b111, 0b0110011},
}

type iEntry struct {
	funct3 uint32
	opcode uint32
	// shiftFunct7, when non-negative, marks a shift-immediate form
	// (slli/srli/srai) whose upper 7 bits are a fixed funct7 rather than
	// part of the immediate.
	shiftFunct7 int
}

var iTable = map[string]iEntry{
	"addi":  {0b000, 0b0010011, -1},
	"slti":  {0b010, 0b0010011, -1},
	"sltiu": {0b011, 0b0010011, -1},
	"xori":  {0b100, 0b0010011, -1},
	"ori":   {0b110, 0b0010011, -1},
	"andi":  {0b111, 0b0010011, -1},
	"slli":  {0b001, 0b0010011, 0b0000000},
	"srli":  {0b101, 0b0010011, 0b0000000},
	"srai":  {0b101, 0b0010011, 0b0100000},

	"lb":  {0b000, 0b0000011, -1},
	"lh":  {0b001, 0b0000011, -1},
	"lw":  {0b010, 0b0000011, -1},
	"lbu": {0b100, 0b0000011, -1},
	"lhu": {0b101, 0b0000011, -1},

	"jalr": {0b000, 0b1100111, -1},

	"ecall":  {0b000, 0b1110011, -1},
	"ebreak": {0b000, 0b1110011, -1},
}

// iFixedImm holds the fixed immediate for the two zero-operand system
// instructions.
var iFixedImm = map[string]int32{
	"ecall":  0,
	"ebreak": 1,
}

type sEntry struct {
	funct3 uint32
	opcode uint32
}

var sTable = map[string]sEntry{
	"sb": {0b000, 0b0100011},
	"sh": {0b001, 0b0100011},
	"sw": {0b010, 0b0100011},
}

type bEntry struct {
	funct3 uint32
	opcode uint32
}

var bTable = map[string]bEntry{
	"beq":  {0b000, 0b1100011},
	"bne":  {0b001, 0b1100011},
	"blt":  {0b100, 0b1100011},
	"bge":  {0b101, 0b1100011},
	"bltu": {0b110, 0b1100011},
	"bgeu": {0b111, 0b1100011},
}

var uTable = map[string]uint32{
	"lui":   0b0110111,
	"auipc": 0b0010111,
}

var jTable = map[string]uint32{
	"jal": 0b1101111,
}
