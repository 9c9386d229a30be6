package cli

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/nicolasleger/rubinius/internal/config"
	"github.com/nicolasleger/rubinius/pkg/ccode"
)

func execCommand(cfg config.Config) *Command {
	flags := flag.NewFlagSet("exec", flag.ContinueOnError)

	return &Command{
		Flags: flags,
		Usage: "exec <file>",
		Short: "Run a source file as a top-level script",
		Long: "Assemble a source file and run it as a top-level script against a\n" +
			"fresh root object, printing the result value.",
		Exec: func(o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exec takes exactly one source file")
			}

			code, err := loadCode(args[0])
			if err != nil {
				return err
			}

			th := ccode.NewThread()

			v, err := ccode.ExecuteScript(th, code, scriptRoot())
			if err != nil {
				return err
			}

			o.Println(format(v))
			return nil
		},
	}
}

// format renders a result value for the terminal.
func format(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}
