package io

import (
	"io"
	"strconv"

	"github.com/ezrec/chip8/cpu"
)

// Tape is a scripted keypad. Each step of the script is one byte of Input:
//   - a hex digit presses that key,
//   - '.' presses nothing,
//   - whitespace is skipped,
//   - Escape quits.
//
// Each step is held for Hold polls. Any other byte is ignored.
type Tape struct {
	Input     io.Reader
	Hold      int  // Polls each step is held for. Zero is treated as one.
	QuitAtEnd bool // If set, the end of Input quits.

	keys  cpu.Keys
	left  int
	ended bool
	quit  bool
}

var _ Keypad = (*Tape)(nil)

// Poll returns the keys of the current step.
func (tp *Tape) Poll() (keys cpu.Keys, ok bool) {
	if tp.quit {
		return
	}

	if tp.left > 0 {
		tp.left--
		return tp.keys, true
	}

	tp.keys = cpu.Keys{}

	for !tp.ended {
		var one [1]byte
		_, err := io.ReadFull(tp.Input, one[:])
		if err != nil {
			tp.ended = true
			break
		}

		b := one[0]
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case KEY_ESCAPE:
			tp.quit = true
			return
		case '.':
		default:
			key, err := strconv.ParseUint(string(rune(b)), 16, 4)
			if err != nil {
				continue
			}
			tp.keys[key] = true
		}

		tp.left = max(tp.Hold, 1) - 1
		return tp.keys, true
	}

	if tp.QuitAtEnd {
		tp.quit = true
		return
	}

	return tp.keys, true
}
