package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(Use(FALLBACK_LOCALE))
	assert.Equal("opcode 0x00ee stack empty", From("opcode 0x%04x %v", 0xee, "stack empty"))
	assert.Equal("plain", From("plain"))
}

func TestUse(t *testing.T) {
	assert := assert.New(t)
	defer Use(FALLBACK_LOCALE)

	table := [](struct {
		name string
		text string
	}){
		{"en-US", "4,096 bytes"},
		{"de-DE", "4.096 bytes"},
	}

	for _, entry := range table {
		assert.NoError(Use(entry.name), entry.name)
		assert.Equal(entry.name, Language().String(), entry.name)
		assert.Equal(entry.text, From("%d bytes", 4096), entry.name)
	}

	before := Language().String()
	assert.Error(Use("not a language!"))
	assert.Equal(before, Language().String())
}
