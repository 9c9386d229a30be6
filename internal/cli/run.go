package cli

import (
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/nicolasleger/rubinius/internal/config"
	"github.com/nicolasleger/rubinius/pkg/ccode"
)

// Run is the main entry point. Returns exit code.
func Run(in io.Reader, out, errOut io.Writer, args []string, env map[string]string) int {
	o := NewIO(in, out, errOut)

	globalFlags := flag.NewFlagSet("rbx", flag.ContinueOnError)
	globalFlags.SetInterspersed(false)
	globalFlags.Usage = func() {}
	globalFlags.SetOutput(&strings.Builder{})
	flagHelp := globalFlags.BoolP("help", "h", false, "Show help")
	flagConfig := globalFlags.StringP("config", "c", "", "Use specified config `file`")
	flagLogLevel := globalFlags.String("log-level", "", "Override the configured log level")

	if err := globalFlags.Parse(args[1:]); err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	cfg, err := config.Load(*flagConfig, env)
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	if *flagLogLevel != "" {
		cfg.LogLevel = *flagLogLevel
	}

	logger, err := cfg.Logger()
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ccode.SetLogger(logger)

	commands := allCommands(cfg)

	commandMap := make(map[string]*Command, len(commands))
	for _, cmd := range commands {
		commandMap[cmd.Name()] = cmd
	}

	commandAndArgs := globalFlags.Args()

	if *flagHelp || len(commandAndArgs) == 0 {
		printUsage(o, commands)
		if *flagHelp || globalFlags.NFlag() == 0 {
			return 0
		}
		return 1
	}

	cmdName := commandAndArgs[0]

	cmd, ok := commandMap[cmdName]
	if !ok {
		o.ErrPrintln("error: unknown command:", cmdName)
		printUsage(o, commands)
		return 1
	}

	return cmd.Run(o, commandAndArgs[1:])
}

func allCommands(cfg config.Config) []*Command {
	return []*Command{
		asmCommand(cfg),
		disasmCommand(cfg),
		execCommand(cfg),
		infoCommand(cfg),
		replCommand(cfg),
	}
}

func printUsage(o *IO, commands []*Command) {
	o.Println("Usage: rbx [global flags] <command> [args]")
	o.Println()
	o.Println("Commands:")
	for _, cmd := range commands {
		o.Println(cmd.HelpLine())
	}
	o.Println()
	o.Println("Global flags:")
	o.Println("  -c, --config file      Use specified config file")
	o.Println("      --log-level level  Override the configured log level")
	o.Println("  -h, --help             Show help")
}
