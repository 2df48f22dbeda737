//go:build !(linux || darwin || dragonfly || freebsd || netbsd || openbsd)

package io

func makeRaw(fd int) (restore func() error, err error) {
	err = ErrNotTerminal
	return
}
