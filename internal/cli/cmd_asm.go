package cli

import (
	"fmt"
	"strings"

	"github.com/natefinch/atomic"
	flag "github.com/spf13/pflag"

	"github.com/nicolasleger/rubinius/internal/config"
	"github.com/nicolasleger/rubinius/pkg/bytecode"
)

func asmCommand(cfg config.Config) *Command {
	flags := flag.NewFlagSet("asm", flag.ContinueOnError)
	output := flags.StringP("output", "o", "", "Write the listing to `file` instead of stdout")

	return &Command{
		Flags: flags,
		Usage: "asm <file> [-o listing]",
		Short: "Assemble a source file and emit its listing",
		Long: "Assemble a source file, verify the resulting program, and emit\n" +
			"the disassembly listing. With -o the listing is written atomically;\n" +
			"a crashed run never leaves a partial file behind.",
		Exec: func(o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("asm takes exactly one source file")
			}

			code, err := loadCode(args[0])
			if err != nil {
				return err
			}

			if _, err := code.Internalize(); err != nil {
				return err
			}

			var literals = code.Literals
			if !cfg.DisasmLiterals {
				literals = nil
			}
			listing := bytecode.Disassemble(code.Bytecode, literals)

			if *output == "" {
				o.Printf("%s", listing)
				return nil
			}

			if err := atomic.WriteFile(*output, strings.NewReader(listing)); err != nil {
				return fmt.Errorf("write %s: %w", *output, err)
			}

			o.Println("wrote", *output)
			return nil
		},
	}
}
