//go:build linux || darwin || dragonfly || freebsd || netbsd || openbsd

package io

import (
	"golang.org/x/sys/unix"
)

// makeRaw disables line buffering and echo, and makes reads non-blocking.
func makeRaw(fd int) (restore func() error, err error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		err = ErrNotTerminal
		return
	}

	saved := *termios
	raw := *termios

	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL | unix.IXON
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8

	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 0

	err = unix.IoctlSetTermios(fd, ioctlSetTermios, &raw)
	if err != nil {
		return
	}

	restore = func() error {
		return unix.IoctlSetTermios(fd, ioctlSetTermios, &saved)
	}

	return
}
