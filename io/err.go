package io

import (
	"errors"

	"github.com/ezrec/chip8/translate"
)

var f = translate.From

var (
	ErrRomEmpty    = errors.New(f("rom empty"))
	ErrRomTooLarge = errors.New(f("rom exceeds program capacity"))
	ErrNotTerminal = errors.New(f("input is not a terminal"))
)

// ErrRomRead reports a program image that could not be read.
type ErrRomRead struct {
	Name string
	Err  error
}

func (err *ErrRomRead) Error() string {
	return f("rom %v: %v", err.Name, err.Err)
}

func (err *ErrRomRead) Unwrap() error {
	return err.Err
}
