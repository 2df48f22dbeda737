// Package cpu implements the CHIP-8 virtual CPU and its assembler.
//
// The machine has sixteen 8-bit registers (v0-vf, where vf doubles as the
// flag register), a 16-bit index register, 4 KiB of memory with the hex glyph
// table at FONT_BASE, a 16-level call stack, delay and sound timers, a
// 16-key keypad latch, and a 64x32 monochrome framebuffer.
//
// Cpu runs one fetch-decode-execute cycle per Tick. Instruction semantics are
// supplied by an InstructionSet, so dialects such as Cosmac and Chip48 share
// the State layout and the cycle skeleton with Base.
//
// The assembler accepts the mnemonics produced by Code.String, plus labels,
// equates, macros, and $(...) compile-time expressions.
package cpu
