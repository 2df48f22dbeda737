package cpu

import (
	"iter"
	"maps"
	"slices"
)

// Handler applies one decoded instruction to the machine state.
type Handler func(st *State, code Code) error

// InstructionSet supplies the handler for every operation of a dialect.
// Implementations hold no state of their own.
type InstructionSet interface {
	// Name is the dialect's registry name.
	Name() string
	// Handler returns the handler for op, or nil if op is a no-op.
	Handler(op CodeOp) Handler
}

var instructionSets = map[string]InstructionSet{
	Base{}.Name():   Base{},
	Cosmac{}.Name(): Cosmac{},
	Chip48{}.Name(): Chip48{},
}

// LookupInstructionSet finds a dialect by name.
func LookupInstructionSet(name string) (set InstructionSet, err error) {
	set, ok := instructionSets[name]
	if !ok {
		err = ErrIsaUnknown
	}
	return
}

// InstructionSets iterates over the registered dialect names, in order.
func InstructionSets() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(instructionSets)))
}

// override returns the handler from table, or the parent's handler when the
// table has none for op.
func override(table map[CodeOp]Handler, parent InstructionSet, op CodeOp) Handler {
	handler, ok := table[op]
	if ok {
		return handler
	}
	return parent.Handler(op)
}
