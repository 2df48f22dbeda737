package io

import (
	"io"
	"strings"

	"github.com/ezrec/chip8/cpu"
)

const (
	ANSI_HOME        = "\x1b[H"
	ANSI_CLEAR       = "\x1b[2J"
	ANSI_CURSOR_HIDE = "\x1b[?25l"
	ANSI_CURSOR_SHOW = "\x1b[?25h"
)

// Screen renders the framebuffer as text.
//
// By default two pixel rows share one text row, drawn with half-block
// glyphs, and each frame is drawn over the last. In Plain mode every pixel
// is an 'x' or a space, and frames follow one another.
type Screen struct {
	Output io.Writer
	Plain  bool

	Frames int // Frames drawn.
}

var _ Display = (*Screen)(nil)

// Open clears the terminal and hides the cursor.
func (scr *Screen) Open() (err error) {
	if scr.Plain {
		return
	}

	_, err = io.WriteString(scr.Output, ANSI_CLEAR+ANSI_CURSOR_HIDE)
	return
}

// Close restores the cursor.
func (scr *Screen) Close() (err error) {
	if scr.Plain {
		return
	}

	_, err = io.WriteString(scr.Output, ANSI_CURSOR_SHOW+"\n")
	return
}

// Draw writes one frame.
func (scr *Screen) Draw(frame cpu.Frame) (err error) {
	var text string
	if scr.Plain {
		text = Plain(frame)
	} else {
		text = ANSI_HOME + HalfBlock(frame)
	}

	_, err = io.WriteString(scr.Output, text)
	if err != nil {
		return
	}

	scr.Frames++

	return
}

// Plain renders a frame with one character per pixel.
func Plain(frame cpu.Frame) string {
	var sb strings.Builder

	for y := range frame {
		for x := range frame[y] {
			if frame[y][x] {
				sb.WriteByte('x')
			} else {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// HalfBlock renders a frame with one character per pair of pixel rows.
func HalfBlock(frame cpu.Frame) string {
	var sb strings.Builder

	for y := 0; y < cpu.FRAME_HEIGHT; y += 2 {
		for x := range cpu.FRAME_WIDTH {
			top, bottom := frame[y][x], frame[y+1][x]
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}

	return sb.String()
}
