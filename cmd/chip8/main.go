// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/emulator"
	"github.com/ezrec/chip8/io"
	"github.com/ezrec/chip8/translate"
)

func main() {
	var compile string
	var input string
	var output string
	var listing bool
	var isa string
	var hz int
	var cycles int
	var keys string
	var hold int
	var lang string
	var verbose bool

	isas := strings.Join(slices.Collect(cpu.InstructionSets()), ", ")

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.StringVar(&input, "i", "", ".ch8 binary to load")
	flag.StringVar(&output, "o", "", "Write the binary to a file, do not execute")
	flag.BoolVar(&listing, "d", false, "Print the program listing, do not execute")
	flag.StringVar(&isa, "isa", "chip8", fmt.Sprintf("Instruction set (%v)", isas))
	flag.IntVar(&hz, "hz", emulator.DEFAULT_HZ, "Cycles per second")
	flag.IntVar(&cycles, "cycles", 0, "Stop after this many cycles (0 = forever)")
	flag.StringVar(&keys, "keys", "", "Keypad tape file, instead of the terminal")
	flag.IntVar(&hold, "hold", io.TERMINAL_HOLD, "Cycles each key press is held")
	flag.StringVar(&lang, "lang", "", "Message language (default: host locale)")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(lang) != 0 {
		err := translate.Use(lang)
		if err != nil {
			log.Fatalf("%v: %v", lang, err)
		}
	}

	if (len(compile) == 0) == (len(input) == 0) {
		log.Fatalf("%v: exactly one of -c or -i is required", os.Args[0])
	}

	set, err := cpu.LookupInstructionSet(isa)
	if err != nil {
		log.Fatalf("%v: %v", isa, err)
	}

	emu := emulator.NewEmulator(set)
	emu.Verbose = verbose
	emu.Hz = hz

	// Load or assemble the program.
	path := compile
	if len(input) != 0 {
		path = input
	}
	if len(compile) != 0 {
		source, err := os.ReadFile(compile)
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
		err = emu.Assemble(string(source))
		if err != nil {
			log.Fatalf("%v: %v", compile, err)
		}
	} else {
		err = emu.LoadFile(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
	}

	if listing {
		for _, line := range emu.Program.Listing() {
			fmt.Println(line)
		}
		return
	}

	if len(output) != 0 {
		err = os.WriteFile(output, emu.Program.Binary(), 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	screen := &io.Screen{Output: os.Stdout}
	emu.Display = screen

	restore := func() error { return nil }

	if len(keys) != 0 {
		inf, err := os.Open(keys)
		if err != nil {
			log.Fatalf("%v: %v", keys, err)
		}
		defer inf.Close()
		emu.Keypad = &io.Tape{Input: inf, Hold: hold, QuitAtEnd: true}
		screen.Plain = true
	} else {
		term, err := io.NewTerminal(os.Stdin)
		if err != nil {
			log.Fatalf("%v: %v", os.Args[0], err)
		}
		term.Hold = hold
		restore = term.Close
		emu.Keypad = term
	}

	err = emu.Reset()
	if err == nil {
		err = run(emu, screen, cycles)
	}
	restore()

	// Leave the final frame on the terminal.
	fmt.Print(io.Plain(emu.Cpu.Snapshot()))

	if verbose {
		log.Printf("chip8: %d cycles, %d frames", emu.Ticks(), screen.Frames)
	}

	if err != nil {
		log.Print(emu.Cpu.String())
		log.Fatalf("%v: %v", path, err)
	}
}

// run executes the emulator on screen until interrupted.
func run(emu *emulator.Emulator, screen *io.Screen, cycles int) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = screen.Open()
	if err == nil {
		err = emu.Run(ctx, cycles)
	}
	screen.Close()

	return
}
