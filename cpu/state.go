package cpu

import (
	"fmt"
	"io"
	"iter"
	"maps"
	"math/rand/v2"
)

// Memory map and display geometry.
const (
	MEMORY_SIZE      = 0x1000                     // Addressable memory, in bytes.
	MEMORY_MASK      = MEMORY_SIZE - 1            // Address wrap mask.
	FONT_BASE        = 0x050                      // Glyph table address.
	FONT_GLYPH_SIZE  = 5                          // Bytes per glyph.
	PROGRAM_BASE     = 0x200                      // Program load address, and initial PC.
	PROGRAM_CAPACITY = MEMORY_SIZE - PROGRAM_BASE // Largest loadable program.
	FRAME_WIDTH      = 64                         // Framebuffer width, in pixels.
	FRAME_HEIGHT     = 32                         // Framebuffer height, in pixels.
	KEY_COUNT        = 16                         // Keys on the keypad.
	REG_COUNT        = 16                         // General purpose registers.
	REG_FLAG         = 0xf                        // Register overloaded as the flag register.
)

// Font is the built-in hex digit glyph table, 0 through F.
var Font = [16 * FONT_GLYPH_SIZE]uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

var _state_defines = map[string]string{
	"MEMORY_SIZE":      fmt.Sprintf("%#x", MEMORY_SIZE),
	"FONT_BASE":        fmt.Sprintf("%#x", FONT_BASE),
	"FONT_GLYPH_SIZE":  fmt.Sprintf("%v", FONT_GLYPH_SIZE),
	"PROGRAM_BASE":     fmt.Sprintf("%#x", PROGRAM_BASE),
	"PROGRAM_CAPACITY": fmt.Sprintf("%#x", PROGRAM_CAPACITY),
	"FRAME_WIDTH":      fmt.Sprintf("%v", FRAME_WIDTH),
	"FRAME_HEIGHT":     fmt.Sprintf("%v", FRAME_HEIGHT),
}

// Keys is the pressed state of each keypad key, indexed 0x0-0xF.
type Keys [KEY_COUNT]bool

// Frame is the monochrome framebuffer, row-major with the origin at top left.
type Frame [FRAME_HEIGHT][FRAME_WIDTH]bool

// Lit returns the number of pixels that are on.
func (fr *Frame) Lit() (count int) {
	for y := range fr {
		for x := range fr[y] {
			if fr[y][x] {
				count++
			}
		}
	}
	return
}

// State is the complete machine state mutated by instruction handlers.
type State struct {
	Register   [REG_COUNT]uint8   // v0-vf. vf receives carry, borrow, and collision flags.
	Memory     [MEMORY_SIZE]uint8 // Main memory.
	Index      uint16             // Index register.
	Pc         uint16             // Program counter.
	Stack      Stack              // Call stack.
	DelayTimer uint8              // Delay timer, decremented each cycle while nonzero.
	SoundTimer uint8              // Sound timer, decremented each cycle while nonzero.
	Keypad     Keys               // Keypad latch, replaced by the driver each cycle.
	Frame      Frame              // Framebuffer.

	Rand *rand.Rand // Random byte source. If nil, the global source is used.

	dirty bool // Set when the framebuffer changes.
}

// NewState creates a zeroed machine with the glyph table loaded and the
// program counter at PROGRAM_BASE.
func NewState() (st *State) {
	st = &State{}
	st.Reset()
	return
}

// Defines for the machine memory map.
func (st *State) Defines() iter.Seq2[string, string] {
	return maps.All(_state_defines)
}

// Reset the machine to its power-on state.
func (st *State) Reset() {
	rnd := st.Rand
	*st = State{Rand: rnd}

	copy(st.Memory[FONT_BASE:], Font[:])
	st.Pc = PROGRAM_BASE
}

// Load copies a program into memory at PROGRAM_BASE.
// Bytes beyond PROGRAM_CAPACITY are discarded.
func (st *State) Load(program []byte) (n int) {
	return copy(st.Memory[PROGRAM_BASE:], program)
}

// LoadFrom reads a program from a byte source into memory at PROGRAM_BASE.
// Bytes beyond PROGRAM_CAPACITY are read and discarded.
func (st *State) LoadFrom(r io.Reader) (n int, err error) {
	n, err = io.ReadFull(r, st.Memory[PROGRAM_BASE:])
	switch err {
	case io.EOF, io.ErrUnexpectedEOF:
		err = nil
		return
	case nil:
		// Full; drain the excess.
		_, err = io.Copy(io.Discard, r)
	}

	return
}

// SetKeypad replaces the keypad latch.
func (st *State) SetKeypad(keys Keys) {
	st.Keypad = keys
}

// DisplayDirty reports whether the framebuffer changed since the last call,
// and clears the indication.
func (st *State) DisplayDirty() (dirty bool) {
	dirty = st.dirty
	st.dirty = false
	return
}

// Snapshot returns a copy of the framebuffer.
func (st *State) Snapshot() Frame {
	return st.Frame
}

// Flag sets the flag register.
func (st *State) Flag(set bool) {
	if set {
		st.Register[REG_FLAG] = 1
	} else {
		st.Register[REG_FLAG] = 0
	}
}

// Skip the next instruction.
func (st *State) Skip() {
	st.Pc += 2
}

// Read a byte of memory. The address wraps at MEMORY_SIZE.
func (st *State) Read(addr uint16) uint8 {
	return st.Memory[addr&MEMORY_MASK]
}

// Write a byte of memory. The address wraps at MEMORY_SIZE.
func (st *State) Write(addr uint16, value uint8) {
	st.Memory[addr&MEMORY_MASK] = value
}

// Pressed reports the state of the key named by the low nibble of value.
func (st *State) Pressed(value uint8) bool {
	return st.Keypad[value&0xf]
}

// ClearFrame turns off every pixel.
func (st *State) ClearFrame() {
	st.Frame = Frame{}
	st.dirty = true
}

// Plot XORs a pixel onto the framebuffer, wrapping both coordinates.
// Returns true if a lit pixel was turned off.
func (st *State) Plot(x, y int, on bool) (collision bool) {
	if !on {
		return
	}

	x %= FRAME_WIDTH
	y %= FRAME_HEIGHT
	collision = st.Frame[y][x]
	st.Frame[y][x] = !collision
	st.dirty = true
	return
}

// MarkDirty flags the framebuffer as changed.
func (st *State) MarkDirty() {
	st.dirty = true
}

// random returns a uniformly distributed byte.
func (st *State) random() uint8 {
	if st.Rand != nil {
		return uint8(st.Rand.Uint32())
	}
	return uint8(rand.Uint32())
}
