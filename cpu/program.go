package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Opcode represents a line of assembled code with its source location and generated bytes.
type Opcode struct {
	LineNo    int
	Addr      int
	Words     []string
	Data      []byte
	LinkLabel string
}

type Program struct {
	Opcodes []Opcode
}

type Debug struct {
	*Opcode
	Index int
}

// Disassemble builds a program listing from a binary image loaded at PROGRAM_BASE.
func Disassemble(binary []byte) (prog *Program) {
	prog = &Program{}

	for n := 0; n < len(binary); n += 2 {
		op := Opcode{Addr: PROGRAM_BASE + n}
		if n+1 < len(binary) {
			code := Code(uint16(binary[n])<<8 | uint16(binary[n+1]))
			op.Data = []byte{binary[n], binary[n+1]}
			op.Words = strings.Fields(strings.ReplaceAll(code.String(), ",", ""))
		} else {
			op.Data = []byte{binary[n]}
			op.Words = []string{".byte", fmt.Sprintf("0x%02x", binary[n])}
		}
		prog.Opcodes = append(prog.Opcodes, op)
	}

	return
}

// Debug finds the opcode containing the address.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Data) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Binary returns the memory image of the program, starting at PROGRAM_BASE.
func (prog *Program) Binary() (bin []byte) {
	for _, op := range prog.Opcodes {
		bin = append(bin, op.Data...)
	}

	return
}

// Codes iterates over the instruction words of the program, by address.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		bin := prog.Binary()
		for n := 0; n+1 < len(bin); n += 2 {
			code := Code(uint16(bin[n])<<8 | uint16(bin[n+1]))
			if !yield(uint16(PROGRAM_BASE+n), code) {
				return
			}
		}
	}
}

// Listing returns an address, hex, and source line for each opcode.
func (prog *Program) Listing() (lines []string) {
	for _, op := range prog.Opcodes {
		hex := ""
		for _, b := range op.Data {
			hex += fmt.Sprintf("%02x", b)
		}
		if len(hex) > 8 {
			hex = hex[:8] + "+"
		}
		lines = append(lines, fmt.Sprintf("%03x  %-9s %v", op.Addr, hex, strings.Join(op.Words, " ")))
	}

	return
}
