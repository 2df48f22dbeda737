package cpu

import (
	"fmt"
)

// CodeOp is a decoded instruction operation.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_UNKNOWN   = CodeOp(iota) // .word
	OP_CLS                      // cls
	OP_RET                      // ret
	OP_JP                       // jp
	OP_CALL                     // call
	OP_SE_IMM                   // se.imm
	OP_SNE_IMM                  // sne.imm
	OP_SE_REG                   // se.reg
	OP_LD_IMM                   // ld.imm
	OP_ADD_IMM                  // add.imm
	OP_LD_REG                   // ld.reg
	OP_OR                       // or
	OP_AND                      // and
	OP_XOR                      // xor
	OP_ADD_REG                  // add.reg
	OP_SUB                      // sub
	OP_SHR                      // shr
	OP_SUBN                     // subn
	OP_SHL                      // shl
	OP_SNE_REG                  // sne.reg
	OP_LD_I                     // ld.i
	OP_JP_V0                    // jp.v0
	OP_RND                      // rnd
	OP_DRW                      // drw
	OP_SKP                      // skp
	OP_SKNP                     // sknp
	OP_LD_VX_DT                 // ld.vx.dt
	OP_LD_VX_K                  // ld.vx.k
	OP_LD_DT_VX                 // ld.dt.vx
	OP_LD_ST_VX                 // ld.st.vx
	OP_ADD_I                    // add.i
	OP_LD_F                     // ld.f
	OP_LD_B                     // ld.b
	OP_LD_MEM_VX                // ld.mem.vx
	OP_LD_VX_MEM                // ld.vx.mem
	OP_COUNT                    // count
)

// Code is a single 16-bit instruction word.
type Code uint16

// Nibbles splits the word into four 4-bit fields, most significant first.
func (code Code) Nibbles() (n0, n1, n2, n3 uint8) {
	n0 = uint8(code>>12) & 0xf
	n1 = uint8(code>>8) & 0xf
	n2 = uint8(code>>4) & 0xf
	n3 = uint8(code>>0) & 0xf
	return
}

// X is the first register operand.
func (code Code) X() int {
	return int(code>>8) & 0xf
}

// Y is the second register operand.
func (code Code) Y() int {
	return int(code>>4) & 0xf
}

// N is the 4-bit immediate.
func (code Code) N() uint8 {
	return uint8(code) & 0xf
}

// NNN is the 12-bit address.
func (code Code) NNN() uint16 {
	return uint16(code) & 0xfff
}

// KK is the 8-bit immediate.
func (code Code) KK() uint8 {
	return uint8(code)
}

// Op decodes the operation. Unrecognized patterns decode as OP_UNKNOWN.
func (code Code) Op() (op CodeOp) {
	n0, n1, n2, n3 := code.Nibbles()

	switch n0 {
	case 0x0:
		switch {
		case n1 == 0 && n2 == 0xe && n3 == 0x0:
			op = OP_CLS
		case n1 == 0 && n2 == 0xe && n3 == 0xe:
			op = OP_RET
		}
	case 0x1:
		op = OP_JP
	case 0x2:
		op = OP_CALL
	case 0x3:
		op = OP_SE_IMM
	case 0x4:
		op = OP_SNE_IMM
	case 0x5:
		if n3 == 0 {
			op = OP_SE_REG
		}
	case 0x6:
		op = OP_LD_IMM
	case 0x7:
		op = OP_ADD_IMM
	case 0x8:
		switch n3 {
		case 0x0:
			op = OP_LD_REG
		case 0x1:
			op = OP_OR
		case 0x2:
			op = OP_AND
		case 0x3:
			op = OP_XOR
		case 0x4:
			op = OP_ADD_REG
		case 0x5:
			op = OP_SUB
		case 0x6:
			op = OP_SHR
		case 0x7:
			op = OP_SUBN
		case 0xe:
			op = OP_SHL
		}
	case 0x9:
		// The low nibble is not decoded.
		op = OP_SNE_REG
	case 0xa:
		op = OP_LD_I
	case 0xb:
		op = OP_JP_V0
	case 0xc:
		op = OP_RND
	case 0xd:
		op = OP_DRW
	case 0xe:
		switch {
		case n2 == 0x9 && n3 == 0xe:
			op = OP_SKP
		case n2 == 0xa && n3 == 0x1:
			op = OP_SKNP
		}
	case 0xf:
		switch uint8(code) {
		case 0x07:
			op = OP_LD_VX_DT
		case 0x0a:
			op = OP_LD_VX_K
		case 0x15:
			op = OP_LD_DT_VX
		case 0x18:
			op = OP_LD_ST_VX
		case 0x1e:
			op = OP_ADD_I
		case 0x29:
			op = OP_LD_F
		case 0x33:
			op = OP_LD_B
		case 0x55:
			op = OP_LD_MEM_VX
		case 0x65:
			op = OP_LD_VX_MEM
		}
	}

	return
}

// MakeCode assembles an instruction word from its operands.
// Operands not used by the operation are ignored.
func MakeCode(op CodeOp, x, y int, imm uint16) (code Code) {
	xy := func(base uint16, low uint16) Code {
		return Code(base | (uint16(x&0xf) << 8) | (uint16(y&0xf) << 4) | low)
	}
	xkk := func(base uint16) Code {
		return Code(base | (uint16(x&0xf) << 8) | (imm & 0xff))
	}
	xfn := func(low uint16) Code {
		return Code(0xf000 | (uint16(x&0xf) << 8) | low)
	}

	switch op {
	case OP_CLS:
		code = 0x00e0
	case OP_RET:
		code = 0x00ee
	case OP_JP:
		code = Code(0x1000 | (imm & 0xfff))
	case OP_CALL:
		code = Code(0x2000 | (imm & 0xfff))
	case OP_SE_IMM:
		code = xkk(0x3000)
	case OP_SNE_IMM:
		code = xkk(0x4000)
	case OP_SE_REG:
		code = xy(0x5000, 0)
	case OP_LD_IMM:
		code = xkk(0x6000)
	case OP_ADD_IMM:
		code = xkk(0x7000)
	case OP_LD_REG:
		code = xy(0x8000, 0x0)
	case OP_OR:
		code = xy(0x8000, 0x1)
	case OP_AND:
		code = xy(0x8000, 0x2)
	case OP_XOR:
		code = xy(0x8000, 0x3)
	case OP_ADD_REG:
		code = xy(0x8000, 0x4)
	case OP_SUB:
		code = xy(0x8000, 0x5)
	case OP_SHR:
		code = xy(0x8000, 0x6)
	case OP_SUBN:
		code = xy(0x8000, 0x7)
	case OP_SHL:
		code = xy(0x8000, 0xe)
	case OP_SNE_REG:
		code = xy(0x9000, 0)
	case OP_LD_I:
		code = Code(0xa000 | (imm & 0xfff))
	case OP_JP_V0:
		code = Code(0xb000 | (imm & 0xfff))
	case OP_RND:
		code = xkk(0xc000)
	case OP_DRW:
		code = xy(0xd000, imm&0xf)
	case OP_SKP:
		code = Code(0xe09e | (uint16(x&0xf) << 8))
	case OP_SKNP:
		code = Code(0xe0a1 | (uint16(x&0xf) << 8))
	case OP_LD_VX_DT:
		code = xfn(0x07)
	case OP_LD_VX_K:
		code = xfn(0x0a)
	case OP_LD_DT_VX:
		code = xfn(0x15)
	case OP_LD_ST_VX:
		code = xfn(0x18)
	case OP_ADD_I:
		code = xfn(0x1e)
	case OP_LD_F:
		code = xfn(0x29)
	case OP_LD_B:
		code = xfn(0x33)
	case OP_LD_MEM_VX:
		code = xfn(0x55)
	case OP_LD_VX_MEM:
		code = xfn(0x65)
	default:
		code = Code(imm)
	}

	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	x := code.X()
	y := code.Y()

	switch code.Op() {
	case OP_CLS:
		out = "cls"
	case OP_RET:
		out = "ret"
	case OP_JP:
		out = fmt.Sprintf("jp 0x%03x", code.NNN())
	case OP_CALL:
		out = fmt.Sprintf("call 0x%03x", code.NNN())
	case OP_SE_IMM:
		out = fmt.Sprintf("se v%x, 0x%02x", x, code.KK())
	case OP_SNE_IMM:
		out = fmt.Sprintf("sne v%x, 0x%02x", x, code.KK())
	case OP_SE_REG:
		out = fmt.Sprintf("se v%x, v%x", x, y)
	case OP_LD_IMM:
		out = fmt.Sprintf("ld v%x, 0x%02x", x, code.KK())
	case OP_ADD_IMM:
		out = fmt.Sprintf("add v%x, 0x%02x", x, code.KK())
	case OP_LD_REG:
		out = fmt.Sprintf("ld v%x, v%x", x, y)
	case OP_OR:
		out = fmt.Sprintf("or v%x, v%x", x, y)
	case OP_AND:
		out = fmt.Sprintf("and v%x, v%x", x, y)
	case OP_XOR:
		out = fmt.Sprintf("xor v%x, v%x", x, y)
	case OP_ADD_REG:
		out = fmt.Sprintf("add v%x, v%x", x, y)
	case OP_SUB:
		out = fmt.Sprintf("sub v%x, v%x", x, y)
	case OP_SHR:
		out = fmt.Sprintf("shr v%x, v%x", x, y)
	case OP_SUBN:
		out = fmt.Sprintf("subn v%x, v%x", x, y)
	case OP_SHL:
		out = fmt.Sprintf("shl v%x, v%x", x, y)
	case OP_SNE_REG:
		if code.N() != 0 {
			out = fmt.Sprintf(".word 0x%04x", uint16(code))
		} else {
			out = fmt.Sprintf("sne v%x, v%x", x, y)
		}
	case OP_LD_I:
		out = fmt.Sprintf("ld i, 0x%03x", code.NNN())
	case OP_JP_V0:
		out = fmt.Sprintf("jp v0, 0x%03x", code.NNN())
	case OP_RND:
		out = fmt.Sprintf("rnd v%x, 0x%02x", x, code.KK())
	case OP_DRW:
		out = fmt.Sprintf("drw v%x, v%x, %d", x, y, code.N())
	case OP_SKP:
		out = fmt.Sprintf("skp v%x", x)
	case OP_SKNP:
		out = fmt.Sprintf("sknp v%x", x)
	case OP_LD_VX_DT:
		out = fmt.Sprintf("ld v%x, dt", x)
	case OP_LD_VX_K:
		out = fmt.Sprintf("ld v%x, k", x)
	case OP_LD_DT_VX:
		out = fmt.Sprintf("ld dt, v%x", x)
	case OP_LD_ST_VX:
		out = fmt.Sprintf("ld st, v%x", x)
	case OP_ADD_I:
		out = fmt.Sprintf("add i, v%x", x)
	case OP_LD_F:
		out = fmt.Sprintf("ld f, v%x", x)
	case OP_LD_B:
		out = fmt.Sprintf("ld b, v%x", x)
	case OP_LD_MEM_VX:
		out = fmt.Sprintf("ld [i], v%x", x)
	case OP_LD_VX_MEM:
		out = fmt.Sprintf("ld v%x, [i]", x)
	default:
		out = fmt.Sprintf(".word 0x%04x", uint16(code))
	}

	return
}
