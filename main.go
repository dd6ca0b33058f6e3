package main

import (
	"bufio"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/terminfo"

	"github.com/r5by/rv32i-toolchain/config"
	"github.com/r5by/rv32i-toolchain/debugger"
	"github.com/r5by/rv32i-toolchain/isa"
	"github.com/r5by/rv32i-toolchain/loader"
	"github.com/r5by/rv32i-toolchain/parser"
	"github.com/r5by/rv32i-toolchain/tools"
	"github.com/r5by/rv32i-toolchain/vm"
)

// Version information, overridable at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		sourceFile    = flag.String("s", "", "Read assembly source from FILE")
		baseAddr      = flag.String("base", "0x80100", "Set base_addr (default 0x80100)")
		showEncoding  = flag.Bool("show-encoding", false, "Emit one line per instruction with its encoded bytes")
		writeBin      = flag.Bool("bin", false, "Write raw binary output (defaults to <source>.bin, see -bin-out)")
		binFile       = flag.String("bin-out", "", "Explicit output path for -bin")
		writeHex      = flag.Bool("hex", false, "Write hex bytes output (defaults to <source>.hex, see -hex-out)")
		hexFile       = flag.String("hex-out", "", "Explicit output path for -hex")
		runEmulator   = flag.Bool("emu", false, "After assembly, launch the emulator from the entrypoint")
		verbose       = flag.Bool("v", false, "Verbose (debug) log level")
		quiet         = flag.Bool("q", false, "Quiet (error-only) log level")
		tuiMode       = flag.Bool("tui", false, "Attach the TUI debugger before emulation (implies -emu)")
		debugMode     = flag.Bool("debug", false, "Attach the line-oriented debugger before emulation (implies -emu)")
		configPath    = flag.String("config", "", "Path to a TOML config file (defaults to the platform config path)")
		isaDescriptor = flag.String("isa", "", "Path to a JSON ISA descriptor (defaults to the built-in RV32I descriptor)")
		dumpSymbols   = flag.Bool("dump-symbols", false, "Dump the symbol table and exit")
		lint          = flag.Bool("lint", false, "Run the linter against the source and exit")
		showVersion   = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("rv32i-toolchain %s (%s, %s)\n", Version, Commit, Date)
		os.Exit(0)
	}

	if *sourceFile == "" && flag.NArg() > 0 {
		*sourceFile = flag.Arg(0)
	}
	if *sourceFile == "" {
		printUsage()
		os.Exit(-1)
	}

	logger := newLogSink(*verbose, *quiet)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(-1)
	}

	addr, err := parseAddr(*baseAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -base: %v\n", err)
		os.Exit(-1)
	}

	descriptor := isa.DefaultDescriptor()
	if *isaDescriptor != "" {
		descriptor, err = isa.LoadDescriptor(*isaDescriptor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "isa descriptor error: %v\n", err)
			os.Exit(-1)
		}
	}

	logger.Debugf("parsing %s at base 0x%x", *sourceFile, addr)
	program, pp, err := parser.ParseFile(*sourceFile, addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse error:\n%v\n", err)
		os.Exit(-1)
	}
	for _, w := range pp.Errors().Warnings {
		logger.Warnf("%s", w.String())
	}

	if *lint {
		linter := tools.NewLinter(tools.DefaultLintOptions())
		issues := linter.Lint(program)
		for _, issue := range issues {
			fmt.Println(issue.String())
		}
		if linter.HasErrors(issues) {
			os.Exit(-1)
		}
		os.Exit(0)
	}

	if *dumpSymbols {
		fmt.Print(tools.FormatCrossReference(tools.BuildCrossReference(program.Symbols)))
		os.Exit(0)
	}

	image, err := loader.Assemble(program, descriptor, addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "assembly error:\n%v\n", err)
		os.Exit(-1)
	}
	logger.Debugf("assembled %d instructions", len(image.Words))

	if *showEncoding {
		printEncoding(image)
	}

	if *binFile != "" || *writeBin {
		path := *binFile
		if path == "" {
			path = defaultOutputPath(*sourceFile, ".bin")
		}
		if err := writeBinary(path, image.Words); err != nil {
			fmt.Fprintf(os.Stderr, "error writing binary: %v\n", err)
			os.Exit(-1)
		}
		logger.Debugf("wrote binary output to %s", path)
	}

	if *hexFile != "" || *writeHex {
		path := *hexFile
		if path == "" {
			path = defaultOutputPath(*sourceFile, ".hex")
		}
		if err := writeHexFile(path, image.Words); err != nil {
			fmt.Fprintf(os.Stderr, "error writing hex: %v\n", err)
			os.Exit(-1)
		}
		logger.Debugf("wrote hex output to %s", path)
	}

	if !*runEmulator && !*tuiMode && !*debugMode {
		os.Exit(0)
	}

	maxCycles := cfg.Execution.MaxCycles
	cpu := vm.NewCPU(addr, maxCycles)
	loader.LoadProgramIntoCPU(cpu, image)

	if cfg.Execution.EnableTrace {
		traceWriter, err := os.Create(cfg.Trace.OutputFile) // #nosec G304 -- operator-configured trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating trace file: %v\n", err)
			os.Exit(-1)
		}
		defer traceWriter.Close()
		cpu.Trace = vm.NewExecutionTrace(traceWriter)
		if cfg.Trace.FilterRegs != "" {
			cpu.Trace.SetFilterRegisters(strings.Split(cfg.Trace.FilterRegs, ","))
		}
		cpu.Trace.Start()

		memTraceWriter, err := os.Create(cfg.Trace.OutputFile + ".mem") // #nosec G304 -- operator-configured trace output path
		if err != nil {
			fmt.Fprintf(os.Stderr, "error creating memory trace file: %v\n", err)
			os.Exit(-1)
		}
		defer memTraceWriter.Close()
		cpu.MemTrace = vm.NewMemoryTrace(memTraceWriter)
		cpu.MemTrace.MaxEntries = cfg.Trace.MaxEntries
		cpu.MemTrace.Start()
	}

	symbols, sourceMap := buildDebugMaps(program)

	if *tuiMode || *debugMode {
		// The REPL/TUI event loops below step the CPU directly and check
		// ShouldBreak before every instruction, so they do not need (and
		// do not install) a vm.DebugHook: a literal ebreak in the source
		// simply halts, same as when no debugger is attached at all.
		dbg := debugger.NewDebugger(cpu)
		dbg.LoadSymbols(symbols)
		dbg.LoadSourceMap(sourceMap)

		if *tuiMode {
			if err := debugger.RunTUI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "tui error: %v\n", err)
				os.Exit(-1)
			}
		} else {
			fmt.Println("rv32i debugger - type 'help' for commands")
			if err := debugger.RunCLI(dbg); err != nil {
				fmt.Fprintf(os.Stderr, "debugger error: %v\n", err)
				os.Exit(-1)
			}
		}
		os.Exit(0)
	}

	if err := cpu.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "runtime error at PC=0x%08x: %v\n", cpu.PC, err)
		os.Exit(-1)
	}

	if cpu.Trace != nil {
		if err := cpu.Trace.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "error flushing trace: %v\n", err)
		}
	}
	if cpu.MemTrace != nil {
		if err := cpu.MemTrace.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "error flushing memory trace: %v\n", err)
		}
	}

	logger.Debugf("halted after %d cycles, exit code %d", cpu.Cycles, cpu.ExitCode)
	os.Exit(cpu.ExitCode)
}

func printUsage() {
	fmt.Print(`rv32i-toolchain - RV32I assembler and interpreter

Usage: rv32i-toolchain -s FILE [options]

  -s FILE            Read assembly source from FILE
  -base ADDR         Set base_addr (default 0x80100)
  -show-encoding     Emit one line per instruction with its encoded bytes
  -bin               Write raw binary output (defaults to <source>.bin, see -bin-out)
  -bin-out FILE      Explicit output path for -bin
  -hex               Write hex bytes output (defaults to <source>.hex, see -hex-out)
  -hex-out FILE      Explicit output path for -hex
  -emu               After assembly, launch the emulator from the entrypoint
  -tui               Attach the TUI debugger before emulation
  -debug             Attach the line-oriented debugger before emulation
  -config FILE       Path to a TOML config file
  -isa FILE          Path to a JSON ISA descriptor
  -dump-symbols      Print the cross-reference report and exit
  -lint              Run the linter and exit
  -v / -q            Debug / error log levels
  -version           Show version information

Exit codes: 0 on success, -1 on assembly, parse, or runtime failure.
`)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func parseAddr(s string) (uint32, error) {
	var v uint32
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, err
		}
		v = uint32(n)
	} else {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return 0, err
		}
		v = uint32(n)
	}
	return v, nil
}

func defaultOutputPath(sourcePath, ext string) string {
	trimmed := strings.TrimSuffix(sourcePath, ".s")
	trimmed = strings.TrimSuffix(trimmed, ".asm")
	return trimmed + ext
}

// printEncoding emits "MNEMONIC \t# encoding: [0xB0,0xB1,0xB2,0xB3]" per
// instruction, bytes little-endian.
func printEncoding(image *loader.ProgramImage) {
	for i, word := range image.Words {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], word)
		fmt.Printf("%s\t# encoding: [0x%02X,0x%02X,0x%02X,0x%02X]\n",
			image.Decoded[i].Mnemonic, b[0], b[1], b[2], b[3])
	}
}

// writeBinary packs each word to 4 little-endian bytes.
func writeBinary(path string, words []uint32) error {
	f, err := os.Create(path) // #nosec G304 -- operator-specified output path
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	var b [4]byte
	for _, word := range words {
		binary.LittleEndian.PutUint32(b[:], word)
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return w.Flush()
}

// writeHexFile emits "0x%08x" per line, one word per line.
func writeHexFile(path string, words []uint32) error {
	f, err := os.Create(path) // #nosec G304 -- operator-specified output path
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, word := range words {
		if _, err := fmt.Fprintf(w, "0x%08x\n", word); err != nil {
			return err
		}
	}
	return w.Flush()
}

// buildDebugMaps flattens the symbol table into the flat maps the debugger
// expects, and reconstructs a minimal source line for each instruction
// address from its mnemonic and operand text.
func buildDebugMaps(program *parser.Program) (map[string]uint32, map[uint32]string) {
	symbols := make(map[string]uint32)
	for name, sym := range program.Symbols.GetAllSymbols() {
		if sym.Defined {
			symbols[name] = sym.Value
		}
	}
	sourceMap := make(map[uint32]string)
	for _, line := range program.Lines {
		sourceMap[line.Address] = strings.TrimSpace(line.Mnemonic + " " + line.OperandsRaw)
	}
	return symbols, sourceMap
}

// logSeverity orders the four levels a logSink understands.
type logSeverity int

const (
	severityDebug logSeverity = iota
	severityInfo
	severityWarn
	severityError
)

var severityTag = map[logSeverity]string{
	severityDebug: "DEBUG",
	severityInfo:  "INFO",
	severityWarn:  "WARN",
	severityError: "ERROR",
}

// severityColor gives each level the color tview/tcell TUI panes use for
// the same concept, so -tui and plain CLI output agree visually.
var severityColor = map[logSeverity]tcell.Color{
	severityDebug: tcell.ColorGray,
	severityInfo:  tcell.ColorGreen,
	severityWarn:  tcell.ColorYellow,
	severityError: tcell.ColorRed,
}

// logSink is the line-oriented, leveled stderr sink the -v/-q flags
// control. Color is only emitted when the terminal's terminfo entry
// reports color support, the same capability tcell probes before
// allocating a Screen.
type logSink struct {
	min   logSeverity
	color bool
}

// newLogSink builds a sink whose minimum visible level follows -v/-q:
// -v lowers it to DEBUG, -q raises it to ERROR-only, otherwise INFO.
func newLogSink(verbose, quiet bool) *logSink {
	min := severityInfo
	switch {
	case quiet:
		min = severityError
	case verbose:
		min = severityDebug
	}
	color := false
	if ti, err := terminfo.LookupTerminfo(os.Getenv("TERM")); err == nil {
		color = ti.Colors > 1
	}
	return &logSink{min: min, color: color}
}

func (l *logSink) emit(sev logSeverity, format string, args ...interface{}) {
	if sev < l.min {
		return
	}
	msg := fmt.Sprintf(format, args...)
	tag := severityTag[sev]
	if !l.color {
		fmt.Fprintf(os.Stderr, "%-5s %s\n", tag, msg)
		return
	}
	r, g, b := severityColor[sev].TrueColor().RGB()
	fmt.Fprintf(os.Stderr, "\x1b[38;2;%d;%d;%dm%-5s\x1b[0m %s\n", r, g, b, tag, msg)
}

func (l *logSink) Debugf(format string, args ...interface{}) { l.emit(severityDebug, format, args...) }
func (l *logSink) Infof(format string, args ...interface{})  { l.emit(severityInfo, format, args...) }
func (l *logSink) Warnf(format string, args ...interface{})  { l.emit(severityWarn, format, args...) }
func (l *logSink) Errorf(format string, args ...interface{}) { l.emit(severityError, format, args...) }
