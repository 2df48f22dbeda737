package io

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/chip8/cpu"
)

func TestReadRom(t *testing.T) {
	assert := assert.New(t)

	fsys := fstest.MapFS{
		"roms/ibm.ch8": &fstest.MapFile{Data: []byte{0x00, 0xe0, 0xa2, 0x2a}},
	}

	rom, err := ReadRom(fsys, "roms/ibm.ch8")
	assert.NoError(err)
	if err != nil {
		return
	}
	assert.Equal("roms/ibm.ch8", rom.Name)
	assert.Equal([]byte{0x00, 0xe0, 0xa2, 0x2a}, rom.Data)
}

func TestReadRom_Errors(t *testing.T) {
	assert := assert.New(t)

	fsys := fstest.MapFS{
		"empty.ch8": &fstest.MapFile{},
		"large.ch8": &fstest.MapFile{Data: make([]byte, cpu.PROGRAM_CAPACITY+1)},
		"full.ch8":  &fstest.MapFile{Data: make([]byte, cpu.PROGRAM_CAPACITY)},
	}

	table := [](struct {
		name string
		err  error
	}){
		{"missing.ch8", fs.ErrNotExist},
		{"empty.ch8", ErrRomEmpty},
		{"large.ch8", ErrRomTooLarge},
		{"full.ch8", nil},
	}

	for _, entry := range table {
		_, err := ReadRom(fsys, entry.name)
		if entry.err == nil {
			assert.NoError(err, entry.name)
			continue
		}

		assert.ErrorIs(err, entry.err, entry.name)
		var rr *ErrRomRead
		if assert.True(errors.As(err, &rr), entry.name) {
			assert.Equal(entry.name, rr.Name)
		}
	}
}
