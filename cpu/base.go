package cpu

// Base is the standard CHIP-8 dialect.
//
// Shifts operate on vx alone, ignoring vy. Register dump and load leave the
// index register unchanged. Every flag-producing operation writes 0 or 1 to vf.
type Base struct{}

var _ InstructionSet = Base{}

var baseTable = [OP_COUNT]Handler{
	OP_CLS:       opCls,
	OP_RET:       opRet,
	OP_JP:        opJp,
	OP_CALL:      opCall,
	OP_SE_IMM:    opSeImm,
	OP_SNE_IMM:   opSneImm,
	OP_SE_REG:    opSeReg,
	OP_LD_IMM:    opLdImm,
	OP_ADD_IMM:   opAddImm,
	OP_LD_REG:    opLdReg,
	OP_OR:        opOr,
	OP_AND:       opAnd,
	OP_XOR:       opXor,
	OP_ADD_REG:   opAddReg,
	OP_SUB:       opSub,
	OP_SHR:       opShr,
	OP_SUBN:      opSubn,
	OP_SHL:       opShl,
	OP_SNE_REG:   opSneReg,
	OP_LD_I:      opLdI,
	OP_JP_V0:     opJpV0,
	OP_RND:       opRnd,
	OP_DRW:       opDrw,
	OP_SKP:       opSkp,
	OP_SKNP:      opSknp,
	OP_LD_VX_DT:  opLdVxDt,
	OP_LD_VX_K:   opLdVxK,
	OP_LD_DT_VX:  opLdDtVx,
	OP_LD_ST_VX:  opLdStVx,
	OP_ADD_I:     opAddI,
	OP_LD_F:      opLdF,
	OP_LD_B:      opLdB,
	OP_LD_MEM_VX: opLdMemVx,
	OP_LD_VX_MEM: opLdVxMem,
}

func (Base) Name() string {
	return "chip8"
}

func (Base) Handler(op CodeOp) Handler {
	if op < 0 || op >= OP_COUNT {
		return nil
	}
	return baseTable[op]
}

// cls
func opCls(st *State, code Code) error {
	st.ClearFrame()
	return nil
}

// ret
func opRet(st *State, code Code) error {
	pc, ok := st.Stack.Pop()
	if !ok {
		return ErrStackEmpty
	}
	st.Pc = pc
	return nil
}

// jp nnn
func opJp(st *State, code Code) error {
	st.Pc = code.NNN()
	return nil
}

// call nnn pushes the address of the instruction following the call.
func opCall(st *State, code Code) error {
	if !st.Stack.Push(st.Pc) {
		return ErrStackFull
	}
	st.Pc = code.NNN()
	return nil
}

func opSeImm(st *State, code Code) error {
	if st.Register[code.X()] == code.KK() {
		st.Skip()
	}
	return nil
}

func opSneImm(st *State, code Code) error {
	if st.Register[code.X()] != code.KK() {
		st.Skip()
	}
	return nil
}

func opSeReg(st *State, code Code) error {
	if st.Register[code.X()] == st.Register[code.Y()] {
		st.Skip()
	}
	return nil
}

func opLdImm(st *State, code Code) error {
	st.Register[code.X()] = code.KK()
	return nil
}

// add vx, kk wraps and leaves vf alone.
func opAddImm(st *State, code Code) error {
	st.Register[code.X()] += code.KK()
	return nil
}

func opLdReg(st *State, code Code) error {
	st.Register[code.X()] = st.Register[code.Y()]
	return nil
}

func opOr(st *State, code Code) error {
	st.Register[code.X()] |= st.Register[code.Y()]
	return nil
}

func opAnd(st *State, code Code) error {
	st.Register[code.X()] &= st.Register[code.Y()]
	return nil
}

func opXor(st *State, code Code) error {
	st.Register[code.X()] ^= st.Register[code.Y()]
	return nil
}

// add vx, vy: vf is the carry out of bit 7.
func opAddReg(st *State, code Code) error {
	x, y := code.X(), code.Y()
	sum := uint16(st.Register[x]) + uint16(st.Register[y])
	st.Register[x] = uint8(sum)
	st.Flag(sum > 0xff)
	return nil
}

// sub vx, vy: vf is set when no borrow was needed.
func opSub(st *State, code Code) error {
	x, y := code.X(), code.Y()
	vx, vy := st.Register[x], st.Register[y]
	st.Register[x] = vx - vy
	st.Flag(uint16(vx) >= uint16(vy))
	return nil
}

// subn vx, vy: vx = vy - vx, vf is set when no borrow was needed.
func opSubn(st *State, code Code) error {
	x, y := code.X(), code.Y()
	vx, vy := st.Register[x], st.Register[y]
	st.Register[x] = vy - vx
	st.Flag(uint16(vy) >= uint16(vx))
	return nil
}

func opShr(st *State, code Code) error {
	x := code.X()
	st.Register[REG_FLAG] = st.Register[x] & 0x01
	st.Register[x] >>= 1
	return nil
}

func opShl(st *State, code Code) error {
	x := code.X()
	st.Register[REG_FLAG] = (st.Register[x] >> 7) & 0x01
	st.Register[x] <<= 1
	return nil
}

func opSneReg(st *State, code Code) error {
	if st.Register[code.X()] != st.Register[code.Y()] {
		st.Skip()
	}
	return nil
}

func opLdI(st *State, code Code) error {
	st.Index = code.NNN()
	return nil
}

func opJpV0(st *State, code Code) error {
	st.Pc = code.NNN() + uint16(st.Register[0])
	return nil
}

func opRnd(st *State, code Code) error {
	st.Register[code.X()] = st.random() & code.KK()
	return nil
}

// drw vx, vy, n XORs an n-row sprite from memory at the index register onto
// the framebuffer at (vx, vy). Coordinates wrap at the frame edges. vf is
// cleared before the coordinates are read, then set if any lit pixel was
// turned off. The frame is marked dirty even when n is 0.
func opDrw(st *State, code Code) error {
	st.Register[REG_FLAG] = 0

	left := int(st.Register[code.X()])
	top := int(st.Register[code.Y()])
	rows := int(code.N())

	var collision bool
	for row := range rows {
		sprite := st.Read(st.Index + uint16(row))
		for col := range 8 {
			on := (sprite & (0x80 >> col)) != 0
			if st.Plot(left+col, top+row, on) {
				collision = true
			}
		}
	}

	st.Flag(collision)
	st.MarkDirty()
	return nil
}

func opSkp(st *State, code Code) error {
	if st.Pressed(st.Register[code.X()]) {
		st.Skip()
	}
	return nil
}

func opSknp(st *State, code Code) error {
	if !st.Pressed(st.Register[code.X()]) {
		st.Skip()
	}
	return nil
}

func opLdVxDt(st *State, code Code) error {
	st.Register[code.X()] = st.DelayTimer
	return nil
}

// ld vx, k stores the lowest pressed key. With no key pressed, the program
// counter is rewound so the instruction runs again next cycle.
func opLdVxK(st *State, code Code) error {
	for key, pressed := range st.Keypad {
		if pressed {
			st.Register[code.X()] = uint8(key)
			return nil
		}
	}

	st.Pc -= 2
	return nil
}

func opLdDtVx(st *State, code Code) error {
	st.DelayTimer = st.Register[code.X()]
	return nil
}

func opLdStVx(st *State, code Code) error {
	st.SoundTimer = st.Register[code.X()]
	return nil
}

func opAddI(st *State, code Code) error {
	st.Index += uint16(st.Register[code.X()])
	return nil
}

func opLdF(st *State, code Code) error {
	st.Index = FONT_BASE + FONT_GLYPH_SIZE*uint16(st.Register[code.X()])
	return nil
}

// ld b, vx stores the hundreds, tens, and ones digits of vx.
func opLdB(st *State, code Code) error {
	value := st.Register[code.X()]
	st.Write(st.Index+0, value/100)
	st.Write(st.Index+1, (value/10)%10)
	st.Write(st.Index+2, value%10)
	return nil
}

func opLdMemVx(st *State, code Code) error {
	for n := range code.X() + 1 {
		st.Write(st.Index+uint16(n), st.Register[n])
	}
	return nil
}

func opLdVxMem(st *State, code Code) error {
	for n := range code.X() + 1 {
		st.Register[n] = st.Read(st.Index + uint16(n))
	}
	return nil
}
