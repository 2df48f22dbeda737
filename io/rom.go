package io

import (
	"io/fs"

	"github.com/ezrec/chip8/cpu"
)

// Rom is a program image, loaded at cpu.PROGRAM_BASE.
type Rom struct {
	Name string
	Data []byte
}

// ReadRom reads a program image from a file system.
// Images larger than cpu.PROGRAM_CAPACITY are refused.
func ReadRom(fsys fs.FS, name string) (rom *Rom, err error) {
	data, err := fs.ReadFile(fsys, name)
	if err == nil {
		switch {
		case len(data) == 0:
			err = ErrRomEmpty
		case len(data) > cpu.PROGRAM_CAPACITY:
			err = ErrRomTooLarge
		}
	}
	if err != nil {
		err = &ErrRomRead{Name: name, Err: err}
		return
	}

	rom = &Rom{
		Name: name,
		Data: data,
	}

	return
}
