package cpu

import (
	"bytes"
	"errors"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

func TestState_Load(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	n := st.Load([]byte{1, 2, 3})
	assert.Equal(3, n)
	assert.Equal([]uint8{1, 2, 3, 0}, st.Memory[PROGRAM_BASE:PROGRAM_BASE+4])
	assert.Equal(uint16(PROGRAM_BASE), st.Pc)
}

func TestState_Load_Capacity(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	program := bytes.Repeat([]byte{0xaa}, PROGRAM_CAPACITY+10)
	n := st.Load(program)
	assert.Equal(PROGRAM_CAPACITY, n)
	assert.Equal(uint8(0xaa), st.Memory[MEMORY_MASK])

	// The glyph table is untouched.
	assert.Equal(Font[:], st.Memory[FONT_BASE:FONT_BASE+len(Font)])
}

func TestState_LoadFrom(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	n, err := st.LoadFrom(bytes.NewReader([]byte{0x00, 0xe0, 0x12}))
	assert.NoError(err)
	assert.Equal(3, n)
	assert.Equal([]uint8{0x00, 0xe0, 0x12}, st.Memory[PROGRAM_BASE:PROGRAM_BASE+3])

	st = NewState()
	n, err = st.LoadFrom(bytes.NewReader(nil))
	assert.NoError(err)
	assert.Equal(0, n)

	// Excess input is consumed and discarded.
	input := bytes.NewReader(bytes.Repeat([]byte{0x55}, PROGRAM_CAPACITY+100))
	n, err = st.LoadFrom(input)
	assert.NoError(err)
	assert.Equal(PROGRAM_CAPACITY, n)
	assert.Equal(0, input.Len())
}

func TestState_LoadFrom_Error(t *testing.T) {
	assert := assert.New(t)

	failure := errors.New("device failure")

	st := NewState()
	_, err := st.LoadFrom(iotest.ErrReader(failure))
	assert.ErrorIs(err, failure)
}

func TestState_Reset(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	st.Register[5] = 5
	st.Keypad[4] = true
	st.Write(0x400, 0x12)
	st.MarkDirty()

	st.Reset()
	assert.Equal(uint8(0), st.Register[5])
	assert.False(st.Keypad[4])
	assert.Equal(uint8(0), st.Read(0x400))
	assert.False(st.DisplayDirty())
	assert.Equal(Font[:], st.Memory[FONT_BASE:FONT_BASE+len(Font)])
}

func TestState_Memory_Wrap(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	st.Write(0x1005, 0x77)
	assert.Equal(uint8(0x77), st.Memory[0x005])
	assert.Equal(uint8(0x77), st.Read(0xf005))
}

func TestState_Plot(t *testing.T) {
	assert := assert.New(t)

	st := NewState()

	assert.False(st.Plot(3, 4, false))
	assert.False(st.DisplayDirty())

	assert.False(st.Plot(3, 4, true))
	assert.True(st.Frame[4][3])
	assert.True(st.DisplayDirty())

	assert.True(st.Plot(3+FRAME_WIDTH, 4+FRAME_HEIGHT, true))
	assert.False(st.Frame[4][3])
}

func TestState_Snapshot(t *testing.T) {
	assert := assert.New(t)

	st := NewState()
	st.Frame[0][0] = true

	frame := st.Snapshot()
	st.ClearFrame()

	assert.True(frame[0][0])
	assert.Equal(1, frame.Lit())
	assert.Equal(0, st.Frame.Lit())
}
