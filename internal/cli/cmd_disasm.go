package cli

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/nicolasleger/rubinius/internal/config"
	"github.com/nicolasleger/rubinius/pkg/bytecode"
)

func disasmCommand(cfg config.Config) *Command {
	flags := flag.NewFlagSet("disasm", flag.ContinueOnError)
	bare := flags.Bool("bare", false, "Omit literal annotations")

	return &Command{
		Flags: flags,
		Usage: "disasm <file>",
		Short: "Print the disassembly of a source file",
		Exec: func(o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("disasm takes exactly one source file")
			}

			prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			literals := prog.Literals
			if *bare || !cfg.DisasmLiterals {
				literals = nil
			}

			o.Printf("%s", bytecode.Disassemble(prog.Ops, literals))
			return nil
		},
	}
}
