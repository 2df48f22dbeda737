// Package io provides the host collaborators of the CHIP-8 emulator: keypad
// sources (Terminal, Tape), framebuffer sinks (Screen), and program images
// (Rom).
package io

import (
	"github.com/ezrec/chip8/cpu"
)

// Keypad supplies the keypad state once per machine cycle.
type Keypad interface {
	// Poll returns the keys currently held down. If ok is false, the
	// user has asked to quit and keys is meaningless.
	Poll() (keys cpu.Keys, ok bool)
}

// Display presents the framebuffer. Draw is only called when the
// framebuffer has changed.
type Display interface {
	Draw(frame cpu.Frame) error
}

// NoKeys is a keypad that never presses a key, and never quits.
type NoKeys struct{}

var _ Keypad = NoKeys{}

func (NoKeys) Poll() (keys cpu.Keys, ok bool) {
	return keys, true
}
