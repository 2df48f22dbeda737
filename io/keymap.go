package io

import (
	"fmt"
	"iter"
	"strings"
)

const (
	KEY_ESCAPE = 0x1b // Host key that requests quit.
)

// KeyMap translates host key bytes to keypad keys.
type KeyMap map[byte]uint8

// DefaultKeyMap lays the keypad over the left of a QWERTY keyboard.
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var DefaultKeyMap = KeyMap{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// Key returns the keypad key for a host key byte. Letters match either case.
func (km KeyMap) Key(b byte) (key uint8, ok bool) {
	key, ok = km[b]
	if !ok && b >= 'A' && b <= 'Z' {
		key, ok = km[b-'A'+'a']
	}
	return
}

// Defines returns a KEY_<host key> equate for every mapped key, so programs
// can name keys by their place on the host keyboard.
func (km KeyMap) Defines() iter.Seq2[string, string] {
	return func(yield func(key, value string) bool) {
		for b, key := range km {
			name := "KEY_" + strings.ToUpper(string(rune(b)))
			if !yield(name, fmt.Sprintf("%#x", key)) {
				return
			}
		}
	}
}
