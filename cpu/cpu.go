package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/chip8/internal"
)

var _cpu_defines = map[string]string{
	"REG_FLAG":    fmt.Sprintf("%#x", REG_FLAG),
	"STACK_LIMIT": fmt.Sprintf("%v", STACK_LIMIT),
	"KEY_COUNT":   fmt.Sprintf("%v", KEY_COUNT),
}

// Cpu is the instruction engine. It runs the fetch-decode-execute cycle of
// an InstructionSet against the machine State it owns.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	State                // Machine state.
	Set   InstructionSet // Instruction set dialect.

	Ticks int // Completed cycles since reset.
}

// NewCpu creates a CPU running the given dialect, or Base if set is nil.
func NewCpu(set InstructionSet) (cpu *Cpu) {
	if set == nil {
		set = Base{}
	}

	cpu = &Cpu{
		Set: set,
	}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_cpu_defines), cpu.State.Defines())
}

// Reset the CPU to its power-on state.
// - Clears registers, memory, stack, timers, keypad, and framebuffer.
// - Installs the glyph table.
// - Sets the program counter to PROGRAM_BASE.
// - Zeros the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset (%v)", cpu.Set.Name())
	}

	cpu.State.Reset()
	cpu.Ticks = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	st := &cpu.State

	text += fmt.Sprintf("% 5s: %03X\n", "pc", st.Pc)
	text += fmt.Sprintf("% 5s: %03X\n", "i", st.Index)
	for n, val := range st.Register {
		text += fmt.Sprintf("% 5s: %02X\n", fmt.Sprintf("v%X", n), val)
	}
	if val, ok := st.Stack.Peek(); ok {
		text += fmt.Sprintf("% 5s: %03X (%d)\n", "stack", val, st.Stack.Depth())
	} else {
		text += fmt.Sprintf("% 5s: ---\n", "stack")
	}
	text += fmt.Sprintf("% 5s: %02X\n", "dt", st.DelayTimer)
	text += fmt.Sprintf("% 5s: %02X\n", "st", st.SoundTimer)

	keys := ""
	for key, pressed := range st.Keypad {
		if pressed {
			keys += fmt.Sprintf("%X", key)
		} else {
			keys += "-"
		}
	}
	text += fmt.Sprintf("% 5s: %v\n", "keys", keys)

	return
}

// Fetch reads the instruction at the program counter and advances past it.
func (cpu *Cpu) Fetch() (code Code) {
	st := &cpu.State

	hi := st.Read(st.Pc)
	lo := st.Read(st.Pc + 1)
	code = Code(uint16(hi)<<8 | uint16(lo))
	st.Pc += 2

	return
}

// Execute dispatches a single instruction to the instruction set.
// Operations without a handler do nothing.
func (cpu *Cpu) Execute(code Code) (err error) {
	handler := cpu.Set.Handler(code.Op())
	if handler == nil {
		return
	}

	err = handler(&cpu.State, code)
	if err != nil {
		err = &ErrOpcode{Code: code, Err: err}
	}

	return
}

// Tick performs one machine cycle: fetch, execute, then timer decrement.
// A failing instruction aborts the cycle before the timers are touched.
func (cpu *Cpu) Tick() (err error) {
	st := &cpu.State

	ip := st.Pc
	code := cpu.Fetch()

	if cpu.Verbose {
		log.Printf("cpu: %03x: %04x %v", ip, uint16(code), code)
	}

	err = cpu.Execute(code)
	if err != nil {
		return
	}

	if st.DelayTimer > 0 {
		st.DelayTimer--
	}
	if st.SoundTimer > 0 {
		st.SoundTimer--
	}

	cpu.Ticks++

	return
}
