package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okto-vm/okto/internal/chip8"
)

// disasmCmd decodes a ROM and prints one mnemonic per instruction word
var disasmCmd = &cobra.Command{
	Use:   "disasm `path/to/rom`",
	Short: "print the decoded instruction stream of a ROM",
	Args:  cobra.ExactArgs(1),
	Run:   runDisasm,
}

func runDisasm(cmd *cobra.Command, args []string) {
	rom, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if len(rom) > chip8.MaxROMSize {
		fmt.Println(chip8.ErrProgramTooLarge)
		os.Exit(1)
	}

	for off := 0; off+1 < len(rom); off += 2 {
		code := uint16(rom[off])<<8 | uint16(rom[off+1])
		addr := chip8.ProgramStart + off
		in, err := chip8.Decode(code)
		if err != nil {
			// data words interleave with code in most ROMs; print them raw
			fmt.Printf("%03X  %04X  .word 0x%04X\n", addr, code, code)
			continue
		}
		fmt.Printf("%03X  %04X  %s\n", addr, code, in)
	}
}
