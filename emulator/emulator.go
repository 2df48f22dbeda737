// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"log"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
	"github.com/ezrec/chip8/io"
)

const (
	DEFAULT_HZ = 500 // Default cycle rate.
)

var _emulator_defines = map[string]string{
	"DEFAULT_HZ": fmt.Sprintf("%v", DEFAULT_HZ),
}

// Emulator state. CPU + program + host collaborators.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Keypad  io.Keypad  // Keypad source, polled once per cycle.
	Display io.Display // Framebuffer sink, drawn when the frame changes.
	KeyMap  io.KeyMap  // Host key layout, for assembler defines.

	Hz int // Cycle rate for Run.
}

// NewEmulator creates a new emulator running the given dialect.
// If set is nil, cpu.Base is used.
func NewEmulator(set cpu.InstructionSet) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(set),
		Program: &cpu.Program{},
		Keypad:  io.NoKeys{},
		KeyMap:  io.DefaultKeyMap,
		Hz:      DEFAULT_HZ,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
		emu.KeyMap.Defines(),
	)
}

// Assemble parses source text into the program to run.
func (emu *Emulator) Assemble(source string) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	asm.PredefineAll(emu.Defines())

	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// LoadRom uses a binary image as the program to run.
func (emu *Emulator) LoadRom(rom *io.Rom) {
	emu.Program = cpu.Disassemble(rom.Data)
}

// LoadFile loads a program from a file. Files ending in '.asm' or '.s' are
// assembled; anything else is a binary image.
func (emu *Emulator) LoadFile(path string) (err error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asm", ".s":
		var source []byte
		source, err = os.ReadFile(path)
		if err != nil {
			return
		}
		err = emu.Assemble(string(source))
	default:
		var rom *io.Rom
		rom, err = io.ReadRom(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		if err != nil {
			return
		}
		emu.LoadRom(rom)
	}

	return
}

// Reset the machine, and load the program.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()

	_, err = emu.Cpu.LoadFrom(bytes.NewReader(emu.Program.Binary()))
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: reset, %d opcodes", len(emu.Program.Opcodes))
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Pc returns the current program counter.
func (emu *Emulator) Pc() int {
	return int(emu.Cpu.Pc)
}

// Code returns the instruction at the program counter.
func (emu *Emulator) Code() cpu.Code {
	st := &emu.Cpu.State
	return cpu.Code(uint16(st.Read(st.Pc))<<8 | uint16(st.Read(st.Pc+1)))
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.Opcode.LineNo
}

// Tick performs a single tick of the emulator: poll the keypad, run one
// machine cycle, and draw the frame if it changed.
// done is set when the keypad asks to quit.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	keys, ok := emu.Keypad.Poll()
	if !ok {
		done = true
		return
	}
	emu.Cpu.SetKeypad(keys)

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	if emu.Display != nil && emu.Cpu.DisplayDirty() {
		err = emu.Display.Draw(emu.Cpu.Snapshot())
		if err != nil {
			return
		}
	}

	return
}

// Run ticks the emulator at Hz until the keypad quits, the context is
// done, or limit cycles have run. A limit of zero runs forever.
func (emu *Emulator) Run(ctx context.Context, limit int) (err error) {
	hz := emu.Hz
	if hz <= 0 {
		hz = DEFAULT_HZ
	}

	ticker := time.NewTicker(time.Second / time.Duration(hz))
	defer ticker.Stop()

	for cycles := 0; limit == 0 || cycles < limit; cycles++ {
		if ctx.Err() != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}

	return
}
