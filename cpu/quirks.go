package cpu

// Cosmac is the dialect of the original COSMAC VIP interpreter.
//
// It differs from Base in three places:
//   - shr and shl copy vy into vx before shifting.
//   - ld [i], vx and ld vx, [i] leave the index register past the last
//     register transferred.
//   - or, and, and xor clear vf.
type Cosmac struct {
	Base
}

var _ InstructionSet = Cosmac{}

var cosmacTable = map[CodeOp]Handler{
	OP_OR:        cosmacLogic(opOr),
	OP_AND:       cosmacLogic(opAnd),
	OP_XOR:       cosmacLogic(opXor),
	OP_SHR:       cosmacShr,
	OP_SHL:       cosmacShl,
	OP_LD_MEM_VX: cosmacIncrement(opLdMemVx),
	OP_LD_VX_MEM: cosmacIncrement(opLdVxMem),
}

func (Cosmac) Name() string {
	return "cosmac"
}

func (isa Cosmac) Handler(op CodeOp) Handler {
	return override(cosmacTable, isa.Base, op)
}

func cosmacLogic(handler Handler) Handler {
	return func(st *State, code Code) (err error) {
		err = handler(st, code)
		st.Register[REG_FLAG] = 0
		return
	}
}

func cosmacShr(st *State, code Code) error {
	x := code.X()
	st.Register[x] = st.Register[code.Y()]
	st.Register[REG_FLAG] = st.Register[x] & 0x01
	st.Register[x] >>= 1
	return nil
}

func cosmacShl(st *State, code Code) error {
	x := code.X()
	st.Register[x] = st.Register[code.Y()]
	st.Register[REG_FLAG] = (st.Register[x] >> 7) & 0x01
	st.Register[x] <<= 1
	return nil
}

func cosmacIncrement(handler Handler) Handler {
	return func(st *State, code Code) (err error) {
		err = handler(st, code)
		st.Index += uint16(code.X()) + 1
		return
	}
}

// Chip48 is the HP-48 CHIP-48 dialect.
//
// jp v0, nnn becomes jp vx, xnn: the jump offset register is named by the
// high nibble of the address. add i, vx sets vf when the index register
// passes the end of memory.
type Chip48 struct {
	Base
}

var _ InstructionSet = Chip48{}

var chip48Table = map[CodeOp]Handler{
	OP_JP_V0: chip48JpVx,
	OP_ADD_I: chip48AddI,
}

func (Chip48) Name() string {
	return "chip48"
}

func (isa Chip48) Handler(op CodeOp) Handler {
	return override(chip48Table, isa.Base, op)
}

func chip48JpVx(st *State, code Code) error {
	st.Pc = code.NNN() + uint16(st.Register[code.X()])
	return nil
}

func chip48AddI(st *State, code Code) error {
	sum := uint32(st.Index) + uint32(st.Register[code.X()])
	st.Index = uint16(sum)
	st.Flag(sum > MEMORY_MASK)
	return nil
}
