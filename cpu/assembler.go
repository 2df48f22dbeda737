// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
	"HERE":   fmt.Sprintf("%#x", PROGRAM_BASE),
}

var (
	reCharacter = regexp.MustCompile(`'\\?[^']'`)
	reParen     = regexp.MustCompile(`\$\([^\$]*\)`)
	reLabel     = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
)

// Assembler is a single pass macro assembler for CHIP-8 programs.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansion int // Count of macro expansions.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// PredefineAll predefines every equate in the sequence.
func (asm *Assembler) PredefineAll(defines iter.Seq2[string, string]) {
	for equ, value := range defines {
		asm.Predefine(equ, value)
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
		if len(word) == 0 {
			err = ErrParseNumber("~")
			return
		}
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(strings.Trim(word, "'"))
		return
	}
	v64, err := strconv.ParseInt(word, 0, 33)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 <= 0xffffffff && v64 >= -int64(0x80000000) {
		if v64 < 0 {
			value = uint32(0xffffffff + (v64 + 1))
		} else {
			value = uint32(v64)
		}
	}

	if invert {
		value = ^value
	}

	return
}

// immediate returns the value of a word that must fit in limit.
// Small negative values are accepted in two's complement.
func (asm *Assembler) immediate(word string, limit uint32) (value uint16, err error) {
	v32, err := asm.valueOf(word)
	if err != nil {
		return
	}

	if v32 > limit {
		if v32 < 0xffffffff-(limit>>1) {
			err = ErrOperandRange{Value: v32, Limit: limit}
			return
		}
		v32 &= limit
	}

	value = uint16(v32)
	return
}

// address returns either the value of an address word, or the label that
// must be linked into it.
func (asm *Assembler) address(word string) (addr uint16, label string, err error) {
	addr, err = asm.immediate(word, MEMORY_MASK)
	if err == nil {
		return
	}

	if _, is_number := err.(ErrParseNumber); is_number && reLabel.MatchString(word) {
		err = nil
		label = word
	}

	return
}

// register returns the register index of a 'vN' word.
func register(word string) (reg int, ok bool) {
	word = strings.ToLower(word)
	if len(word) != 2 || word[0] != 'v' {
		return
	}

	v64, err := strconv.ParseUint(word[1:], 16, 4)
	if err != nil {
		return
	}

	return int(v64), true
}

// mustRegister returns the register index of a 'vN' word, or an error.
func mustRegister(word string) (reg int, err error) {
	reg, ok := register(word)
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// argCount validates the number of arguments.
func argCount(args []string, least int, most int) (err error) {
	switch {
	case len(args) < least:
		err = ErrOpcodeValueMissing
	case len(args) > most:
		err = ErrOpcodeExtraArgs
	}
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		if len(str) == 0 {
			continue
		}
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(int(value32))
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number and location.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)
	asm.Equate["HERE"] = fmt.Sprintf("%#x", asm.currentAddr())

	// Do 'x' evaluations
	line = reCharacter.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#v", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentAddr()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// Each expansion gets its own local label prefix.
		asm.expansion++
		local := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentAddr gets the address of the next opcode.
func (asm *Assembler) currentAddr() int {
	if len(asm.Opcode) == 0 {
		return PROGRAM_BASE
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Addr + len(last.Data)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.expansion = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		if len(op.LinkLabel) == 0 {
			continue
		}
		label := op.LinkLabel
		addr, ok := asm.Label[label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		if len(op.Data) < 2 {
			log.Fatalf("Unable to link label '%s' to line %d: %v", label, op.LineNo, op.Words)
		}
		op.Data[0] |= uint8(addr>>8) & 0x0f
		op.Data[1] |= uint8(addr)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var data []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if err != nil || len(data) == 0 {
			return
		}
		addr := asm.currentAddr()
		if addr+len(data) > MEMORY_SIZE {
			err = ErrProgramTooLarge
			return
		}
		opcode := Opcode{LineNo: lineno, Addr: addr, Words: initial_words, Data: data, LinkLabel: label}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	emit := func(code Code) {
		data = append(data, uint8(code>>8), uint8(code))
	}

	mnemonic := strings.ToLower(words[0])
	args := words[1:]

	var x, y int
	var imm uint16

	switch mnemonic {
	case "cls", "ret":
		if err = argCount(args, 0, 0); err != nil {
			return
		}
		if mnemonic == "cls" {
			emit(MakeCode(OP_CLS, 0, 0, 0))
		} else {
			emit(MakeCode(OP_RET, 0, 0, 0))
		}
	case "jp":
		if err = argCount(args, 1, 2); err != nil {
			return
		}
		op := OP_JP
		if len(args) == 2 {
			if reg, ok := register(args[0]); !ok || reg != 0 {
				err = ErrRegisterInvalid
				return
			}
			op = OP_JP_V0
			args = args[1:]
		}
		imm, label, err = asm.address(args[0])
		if err != nil {
			return
		}
		emit(MakeCode(op, 0, 0, imm))
	case "call":
		if err = argCount(args, 1, 1); err != nil {
			return
		}
		imm, label, err = asm.address(args[0])
		if err != nil {
			return
		}
		emit(MakeCode(OP_CALL, 0, 0, imm))
	case "se", "sne":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		if x, err = mustRegister(args[0]); err != nil {
			return
		}
		reg_op, imm_op := OP_SE_REG, OP_SE_IMM
		if mnemonic == "sne" {
			reg_op, imm_op = OP_SNE_REG, OP_SNE_IMM
		}
		if y, ok := register(args[1]); ok {
			emit(MakeCode(reg_op, x, y, 0))
			return
		}
		if imm, err = asm.immediate(args[1], 0xff); err != nil {
			return
		}
		emit(MakeCode(imm_op, x, 0, imm))
	case "ld":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		dst, src := strings.ToLower(args[0]), strings.ToLower(args[1])
		from_vx := map[string]CodeOp{
			"dt":  OP_LD_DT_VX,
			"st":  OP_LD_ST_VX,
			"f":   OP_LD_F,
			"b":   OP_LD_B,
			"[i]": OP_LD_MEM_VX,
		}
		to_vx := map[string]CodeOp{
			"dt":  OP_LD_VX_DT,
			"k":   OP_LD_VX_K,
			"[i]": OP_LD_VX_MEM,
		}
		if dst == "i" {
			imm, label, err = asm.address(args[1])
			if err != nil {
				return
			}
			emit(MakeCode(OP_LD_I, 0, 0, imm))
			return
		}
		if op, ok := from_vx[dst]; ok {
			if x, err = mustRegister(src); err != nil {
				return
			}
			emit(MakeCode(op, x, 0, 0))
			return
		}
		if x, err = mustRegister(dst); err != nil {
			return
		}
		if op, ok := to_vx[src]; ok {
			emit(MakeCode(op, x, 0, 0))
			return
		}
		if y, ok := register(src); ok {
			emit(MakeCode(OP_LD_REG, x, y, 0))
			return
		}
		if imm, err = asm.immediate(args[1], 0xff); err != nil {
			return
		}
		emit(MakeCode(OP_LD_IMM, x, 0, imm))
	case "add":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		if strings.ToLower(args[0]) == "i" {
			if x, err = mustRegister(args[1]); err != nil {
				return
			}
			emit(MakeCode(OP_ADD_I, x, 0, 0))
			return
		}
		if x, err = mustRegister(args[0]); err != nil {
			return
		}
		if y, ok := register(args[1]); ok {
			emit(MakeCode(OP_ADD_REG, x, y, 0))
			return
		}
		if imm, err = asm.immediate(args[1], 0xff); err != nil {
			return
		}
		emit(MakeCode(OP_ADD_IMM, x, 0, imm))
	case "or", "and", "xor", "sub", "subn", "shr", "shl":
		least := 2
		if mnemonic == "shr" || mnemonic == "shl" {
			least = 1
		}
		if err = argCount(args, least, 2); err != nil {
			return
		}
		if x, err = mustRegister(args[0]); err != nil {
			return
		}
		y = x
		if len(args) == 2 {
			if y, err = mustRegister(args[1]); err != nil {
				return
			}
		}
		op := map[string]CodeOp{
			"or":   OP_OR,
			"and":  OP_AND,
			"xor":  OP_XOR,
			"sub":  OP_SUB,
			"subn": OP_SUBN,
			"shr":  OP_SHR,
			"shl":  OP_SHL,
		}[mnemonic]
		emit(MakeCode(op, x, y, 0))
	case "rnd":
		if err = argCount(args, 2, 2); err != nil {
			return
		}
		if x, err = mustRegister(args[0]); err != nil {
			return
		}
		if imm, err = asm.immediate(args[1], 0xff); err != nil {
			return
		}
		emit(MakeCode(OP_RND, x, 0, imm))
	case "drw":
		if err = argCount(args, 3, 3); err != nil {
			return
		}
		if x, err = mustRegister(args[0]); err != nil {
			return
		}
		if y, err = mustRegister(args[1]); err != nil {
			return
		}
		if imm, err = asm.immediate(args[2], 0xf); err != nil {
			return
		}
		emit(MakeCode(OP_DRW, x, y, imm))
	case "skp", "sknp":
		if err = argCount(args, 1, 1); err != nil {
			return
		}
		if x, err = mustRegister(args[0]); err != nil {
			return
		}
		if mnemonic == "skp" {
			emit(MakeCode(OP_SKP, x, 0, 0))
		} else {
			emit(MakeCode(OP_SKNP, x, 0, 0))
		}
	case ".byte":
		if err = argCount(args, 1, len(args)); err != nil {
			return
		}
		for _, arg := range args {
			if imm, err = asm.immediate(arg, 0xff); err != nil {
				return
			}
			data = append(data, uint8(imm))
		}
	case ".word":
		if err = argCount(args, 1, len(args)); err != nil {
			return
		}
		if len(args) == 1 {
			imm, label, err = asm.address(args[0])
			if err == nil && len(label) != 0 {
				emit(0)
				return
			}
		}
		for _, arg := range args {
			if imm, err = asm.immediate(arg, 0xffff); err != nil {
				return
			}
			emit(Code(imm))
		}
	case "":
		err = ErrOpcodeMissing
	default:
		err = ErrInstructionInvalid
	}

	return
}
