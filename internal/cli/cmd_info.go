package cli

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/nicolasleger/rubinius/internal/config"
)

func infoCommand(cfg config.Config) *Command {
	flags := flag.NewFlagSet("info", flag.ContinueOnError)

	return &Command{
		Flags: flags,
		Usage: "info <file>",
		Short: "Show a program's shape, sites and caches",
		Exec: func(o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("info takes exactly one source file")
			}

			code, err := loadCode(args[0])
			if err != nil {
				return err
			}

			sites, err := code.CallSites()
			if err != nil {
				return err
			}
			caches, err := code.ConstantCaches()
			if err != nil {
				return err
			}

			o.Printf("name:            %s\n", code.Name)
			o.Printf("file:            %s\n", code.File)
			o.Printf("words:           %d\n", len(code.Bytecode))
			o.Printf("literals:        %d\n", len(code.Literals))
			o.Printf("locals:          %d\n", code.LocalCount)
			o.Printf("args:            %d required, %d total, splat %d\n",
				code.RequiredArgs, code.TotalArgs, code.Splat)
			o.Printf("stack:           %d\n", code.StackSize)
			o.Printf("start line:      %d\n", code.StartLine())
			o.Printf("call sites:      %v\n", sites)
			o.Printf("constant caches: %v\n", caches)
			o.Printf("can specialize:  %v\n", code.CanSpecialize())

			return nil
		},
	}
}
