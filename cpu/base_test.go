package cpu

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBase_AddCarry(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		vx, vy uint8
		sum    uint8
		carry  uint8
	}){
		{0x10, 0x20, 0x30, 0},
		{0xff, 0x01, 0x00, 1},
		{0xf0, 0x20, 0x10, 1},
		{0x80, 0x7f, 0xff, 0},
	}

	for _, entry := range table {
		cpu := newTestCpu(t, nil, "add v1, v2")
		cpu.Register[1] = entry.vx
		cpu.Register[2] = entry.vy
		cpu.Register[REG_FLAG] = 0x55

		run(t, cpu, 1)
		assert.Equal(entry.sum, cpu.Register[1], entry)
		assert.Equal(entry.carry, cpu.Register[REG_FLAG], entry)
	}
}

func TestBase_AddImmediate(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil, "add v3, 0x10")
	cpu.Register[3] = 0xf8
	cpu.Register[REG_FLAG] = 0x55

	run(t, cpu, 1)
	assert.Equal(uint8(0x08), cpu.Register[3])
	// The flag register is untouched.
	assert.Equal(uint8(0x55), cpu.Register[REG_FLAG])
}

func TestBase_Sub(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line   string
		vx, vy uint8
		result uint8
		flag   uint8
	}){
		{"sub v1, v2", 0x30, 0x10, 0x20, 1},
		{"sub v1, v2", 0x10, 0x30, 0xe0, 0},
		{"sub v1, v2", 0x42, 0x42, 0x00, 1},
		{"subn v1, v2", 0x10, 0x30, 0x20, 1},
		{"subn v1, v2", 0x30, 0x10, 0xe0, 0},
		{"subn v1, v2", 0x42, 0x42, 0x00, 1},
	}

	for _, entry := range table {
		cpu := newTestCpu(t, nil, entry.line)
		cpu.Register[1] = entry.vx
		cpu.Register[2] = entry.vy

		run(t, cpu, 1)
		assert.Equal(entry.result, cpu.Register[1], entry)
		assert.Equal(entry.flag, cpu.Register[REG_FLAG], entry)
	}
}

func TestBase_Flag_Overwrites(t *testing.T) {
	assert := assert.New(t)

	// When vf is the destination, the flag wins.
	cpu := newTestCpu(t, nil, "add vf, v1")
	cpu.Register[REG_FLAG] = 0x10
	cpu.Register[1] = 0x20

	run(t, cpu, 1)
	assert.Equal(uint8(0), cpu.Register[REG_FLAG])
}

func TestBase_Logic(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line   string
		result uint8
	}){
		{"ld v1, v2", 0x0f},
		{"or v1, v2", 0x3f},
		{"and v1, v2", 0x0c},
		{"xor v1, v2", 0x33},
	}

	for _, entry := range table {
		cpu := newTestCpu(t, nil, entry.line)
		cpu.Register[1] = 0x3c
		cpu.Register[2] = 0x0f
		cpu.Register[REG_FLAG] = 0x55

		run(t, cpu, 1)
		assert.Equal(entry.result, cpu.Register[1], entry.line)
		assert.Equal(uint8(0x0f), cpu.Register[2], entry.line)
		assert.Equal(uint8(0x55), cpu.Register[REG_FLAG], entry.line)
	}
}

func TestBase_Shift(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line   string
		vx     uint8
		result uint8
		flag   uint8
	}){
		{"shr v1, v2", 0x81, 0x40, 1},
		{"shr v1, v2", 0x80, 0x40, 0},
		{"shl v1, v2", 0x81, 0x02, 1},
		{"shl v1, v2", 0x41, 0x82, 0},
	}

	for _, entry := range table {
		cpu := newTestCpu(t, nil, entry.line)
		cpu.Register[1] = entry.vx
		cpu.Register[2] = 0xaa

		run(t, cpu, 1)
		assert.Equal(entry.result, cpu.Register[1], entry)
		assert.Equal(entry.flag, cpu.Register[REG_FLAG], entry)
	}
}

func TestBase_Skip(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line    string
		skipped bool
	}){
		{"se v1, 0x12", true},
		{"se v1, 0x13", false},
		{"sne v1, 0x12", false},
		{"sne v1, 0x13", true},
		{"se v1, v2", true},
		{"se v1, v3", false},
		{"sne v1, v2", false},
		{"sne v1, v3", true},
	}

	for _, entry := range table {
		cpu := newTestCpu(t, nil, entry.line)
		cpu.Register[1] = 0x12
		cpu.Register[2] = 0x12
		cpu.Register[3] = 0x34

		run(t, cpu, 1)
		if entry.skipped {
			assert.Equal(uint16(0x204), cpu.Pc, entry.line)
		} else {
			assert.Equal(uint16(0x202), cpu.Pc, entry.line)
		}
	}
}

func TestBase_SneReg_LowNibble(t *testing.T) {
	assert := assert.New(t)

	// The low nibble of 9xyn is not decoded.
	cpu := NewCpu(nil)
	cpu.Load([]byte{0x91, 0x2f})
	cpu.Register[1] = 1

	run(t, cpu, 1)
	assert.Equal(uint16(0x204), cpu.Pc)
}

func TestBase_Jump(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil, "jp 0x345")
	run(t, cpu, 1)
	assert.Equal(uint16(0x345), cpu.Pc)

	cpu = newTestCpu(t, nil, "jp v0, 0x300")
	cpu.Register[0] = 0x22
	cpu.Register[3] = 0x11
	run(t, cpu, 1)
	assert.Equal(uint16(0x322), cpu.Pc)
}

func TestBase_CallReturn(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil,
		"      call sub",
		"      ld v1, 1",
		"sub:  ld v2, 2",
		"      ret",
	)

	run(t, cpu, 1)
	assert.Equal(uint16(0x204), cpu.Pc)
	assert.Equal(1, cpu.Stack.Depth())

	run(t, cpu, 2)
	// Control returns to the instruction after the call.
	assert.Equal(uint16(0x202), cpu.Pc)
	assert.True(cpu.Stack.Empty())

	run(t, cpu, 1)
	assert.Equal(uint8(1), cpu.Register[1])
	assert.Equal(uint8(2), cpu.Register[2])
}

func TestBase_Index(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil,
		"ld i, 0x123",
		"add i, v1",
	)
	cpu.Register[1] = 0x20
	cpu.Register[REG_FLAG] = 0x55

	run(t, cpu, 2)
	assert.Equal(uint16(0x143), cpu.Index)
	assert.Equal(uint8(0x55), cpu.Register[REG_FLAG])
}

func TestBase_Random(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil,
		"rnd v1, 0x0f",
		"rnd v2, 0x00",
	)
	cpu.Rand = rand.New(rand.NewPCG(1, 2))
	cpu.Register[2] = 0x55

	run(t, cpu, 2)
	assert.Equal(uint8(0), cpu.Register[1]&0xf0)
	assert.Equal(uint8(0), cpu.Register[2])

	// The same source produces the same sequence.
	expected := uint8(rand.New(rand.NewPCG(1, 2)).Uint32()) & 0x0f
	assert.Equal(expected, cpu.Register[1])
}

func TestBase_Cls(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil, "cls")
	cpu.Frame[3][4] = true
	cpu.Frame[31][63] = true

	assert.False(cpu.DisplayDirty())
	run(t, cpu, 1)
	assert.Equal(0, cpu.Frame.Lit())

	// The dirty indication is reported once.
	assert.True(cpu.DisplayDirty())
	assert.False(cpu.DisplayDirty())
}

func TestBase_Draw(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil,
		"      ld i, sprite",
		"      ld v1, 10",
		"      ld v2, 5",
		"      drw v1, v2, 2",
		"      drw v1, v2, 2",
		"sprite: .byte 0xc3 0x81",
	)

	run(t, cpu, 4)
	assert.Equal(uint8(0), cpu.Register[REG_FLAG])
	assert.True(cpu.DisplayDirty())
	assert.Equal(6, cpu.Frame.Lit())
	assert.True(cpu.Frame[5][10])
	assert.True(cpu.Frame[5][11])
	assert.False(cpu.Frame[5][12])
	assert.True(cpu.Frame[5][16])
	assert.True(cpu.Frame[5][17])
	assert.True(cpu.Frame[6][10])
	assert.True(cpu.Frame[6][17])

	// Drawing the same sprite again erases it, with collision.
	run(t, cpu, 1)
	assert.Equal(uint8(1), cpu.Register[REG_FLAG])
	assert.True(cpu.DisplayDirty())
	assert.Equal(0, cpu.Frame.Lit())
}

func TestBase_Draw_Wrap(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil,
		"      ld i, sprite",
		"      ld v1, 62",
		"      ld v2, 31",
		"      drw v1, v2, 2",
		"sprite: .byte 0xf0 0xf0",
	)

	run(t, cpu, 4)
	assert.Equal(8, cpu.Frame.Lit())
	assert.True(cpu.Frame[31][62])
	assert.True(cpu.Frame[31][63])
	assert.True(cpu.Frame[31][0])
	assert.True(cpu.Frame[31][1])
	assert.True(cpu.Frame[0][62])
	assert.True(cpu.Frame[0][1])
}

func TestBase_Draw_FlagCoordinate(t *testing.T) {
	assert := assert.New(t)

	// vf is cleared before the coordinates are read.
	cpu := newTestCpu(t, nil,
		"      ld i, sprite",
		"      ld vf, 7",
		"      drw vf, vf, 1",
		"sprite: .byte 0x80",
	)

	run(t, cpu, 3)
	assert.True(cpu.Frame[0][0])
	assert.False(cpu.Frame[7][7])
	assert.Equal(1, cpu.Frame.Lit())
	assert.Equal(uint8(0), cpu.Register[REG_FLAG])

	// A second draw at the cleared vf collides at the same place.
	cpu = newTestCpu(t, nil,
		"      ld i, sprite",
		"      ld vf, 7",
		"      drw vf, vf, 1",
		"      drw vf, vf, 1",
		"sprite: .byte 0x80",
	)

	run(t, cpu, 4)
	assert.Equal(0, cpu.Frame.Lit())
	assert.Equal(uint8(1), cpu.Register[REG_FLAG])
}

func TestBase_Draw_Empty(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil, "drw v0, v0, 0")
	cpu.Register[REG_FLAG] = 1

	run(t, cpu, 1)
	assert.True(cpu.DisplayDirty())
	assert.Equal(uint8(0), cpu.Register[REG_FLAG])
	assert.Equal(0, cpu.Frame.Lit())
}

func TestBase_Keys(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line    string
		key     uint8
		skipped bool
	}){
		{"skp v1", 0x5, true},
		{"skp v1", 0x6, false},
		{"sknp v1", 0x5, false},
		{"sknp v1", 0x6, true},
		{"skp v1", 0x15, true},
	}

	for _, entry := range table {
		cpu := newTestCpu(t, nil, entry.line)
		cpu.Register[1] = entry.key
		cpu.SetKeypad(Keys{5: true})

		run(t, cpu, 1)
		if entry.skipped {
			assert.Equal(uint16(0x204), cpu.Pc, entry)
		} else {
			assert.Equal(uint16(0x202), cpu.Pc, entry)
		}
	}
}

func TestBase_WaitKey(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil, "ld v3, k")
	cpu.DelayTimer = 10

	// Without a key, the instruction repeats and time still passes.
	run(t, cpu, 4)
	assert.Equal(uint16(0x200), cpu.Pc)
	assert.Equal(uint8(6), cpu.DelayTimer)

	cpu.SetKeypad(Keys{0xb: true, 0x9: true})
	run(t, cpu, 1)
	assert.Equal(uint16(0x202), cpu.Pc)
	assert.Equal(uint8(0x9), cpu.Register[3])
}

func TestBase_Timers(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil,
		"ld dt, v1",
		"ld v2, dt",
	)
	cpu.Register[1] = 0x20

	run(t, cpu, 2)
	assert.Equal(uint8(0x1f), cpu.Register[2])
	assert.Equal(uint8(0x1e), cpu.DelayTimer)
}

func TestBase_Glyph(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil, "ld f, v4")
	cpu.Register[4] = 0xa

	run(t, cpu, 1)
	assert.Equal(uint16(FONT_BASE+50), cpu.Index)
	assert.Equal([]uint8{0xf0, 0x90, 0xf0, 0x90, 0x90}, cpu.Memory[cpu.Index:cpu.Index+5])
}

func TestBase_Bcd(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil,
		"ld i, 0x300",
		"ld b, v1",
	)
	cpu.Register[1] = 254

	run(t, cpu, 2)
	assert.Equal([]uint8{2, 5, 4}, cpu.Memory[0x300:0x303])
	assert.Equal(uint16(0x300), cpu.Index)
}

func TestBase_DumpLoad(t *testing.T) {
	assert := assert.New(t)

	cpu := newTestCpu(t, nil,
		"ld i, 0x300",
		"ld [i], v3",
		"ld i, 0x400",
		"ld v2, [i]",
	)
	for n := range REG_COUNT {
		cpu.Register[n] = uint8(0x10 + n)
	}
	copy(cpu.Memory[0x400:], []uint8{0xa0, 0xa1, 0xa2, 0xa3})

	run(t, cpu, 2)
	assert.Equal([]uint8{0x10, 0x11, 0x12, 0x13, 0x00}, cpu.Memory[0x300:0x305])
	assert.Equal(uint16(0x300), cpu.Index)

	run(t, cpu, 2)
	assert.Equal([]uint8{0xa0, 0xa1, 0xa2, 0x13}, cpu.Register[0:4])
	assert.Equal(uint16(0x400), cpu.Index)
}

func TestBase_Handler(t *testing.T) {
	assert := assert.New(t)

	isa := Base{}
	assert.Nil(isa.Handler(OP_UNKNOWN))
	assert.Nil(isa.Handler(OP_COUNT))
	assert.Nil(isa.Handler(CodeOp(-1)))
	for op := OP_CLS; op < OP_COUNT; op++ {
		assert.NotNil(isa.Handler(op), op.String())
	}
}
