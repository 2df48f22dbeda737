package io

import (
	"errors"
	"io"
	"os"

	"github.com/ezrec/chip8/cpu"
)

const (
	TERMINAL_HOLD = 50 // Default polls a key stays down after its byte arrives.
)

// Terminal is a keypad read from a raw-mode terminal.
//
// Terminals report key presses but not releases, so a key is held for Hold
// polls after each byte for it arrives. Keyboard auto-repeat keeps a key
// down while it is held on the host.
type Terminal struct {
	Input  io.Reader
	KeyMap KeyMap
	Hold   int

	held    [cpu.KEY_COUNT]int
	buffer  [64]byte
	restore func() error
}

var _ Keypad = (*Terminal)(nil)

// NewTerminal puts the terminal on file into raw mode. Reads from it then
// return immediately, with or without input.
func NewTerminal(file *os.File) (term *Terminal, err error) {
	restore, err := makeRaw(int(file.Fd()))
	if err != nil {
		return
	}

	term = &Terminal{
		Input:   file,
		KeyMap:  DefaultKeyMap,
		Hold:    TERMINAL_HOLD,
		restore: restore,
	}

	return
}

// Close restores the terminal mode.
func (term *Terminal) Close() (err error) {
	if term.restore != nil {
		err = term.restore()
		term.restore = nil
	}
	return
}

// Poll reads whatever input is waiting, and returns the held keys.
// A read error other than io.EOF (no input waiting) quits.
func (term *Terminal) Poll() (keys cpu.Keys, ok bool) {
	n, err := term.Input.Read(term.buffer[:])
	if err != nil && !errors.Is(err, io.EOF) {
		return
	}
	for _, b := range term.buffer[:n] {
		if b == KEY_ESCAPE {
			return
		}
		key, mapped := term.KeyMap.Key(b)
		if mapped {
			term.held[key] = max(term.Hold, 1)
		}
	}

	for key, count := range term.held {
		if count > 0 {
			keys[key] = true
			term.held[key]--
		}
	}

	return keys, true
}
