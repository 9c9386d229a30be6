package cli

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/nicolasleger/rubinius/internal/config"
	"github.com/nicolasleger/rubinius/pkg/bytecode"
	"github.com/nicolasleger/rubinius/pkg/ccode"
)

func replCommand(cfg config.Config) *Command {
	flags := flag.NewFlagSet("repl", flag.ContinueOnError)

	return &Command{
		Flags: flags,
		Usage: "repl",
		Short: "Interactively assemble and run programs",
		Long: "Accumulate instructions line by line. Commands: run (assemble and\n" +
			"execute the buffer), list, clear, help, quit.",
		Exec: func(o *IO, args []string) error {
			r := &repl{cfg: cfg, io: o}
			return r.run()
		},
	}
}

type repl struct {
	cfg    config.Config
	io     *IO
	buffer []string
	line   *liner.State
}

func (r *repl) run() error {
	r.line = liner.NewLiner()
	defer r.line.Close()

	r.line.SetCtrlCAborts(true)

	r.loadHistory()

	r.io.Println("rbx - type instructions, 'run' to execute, 'help' for commands")

	for {
		input, err := r.line.Prompt("rbx> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				r.io.Println()
				r.saveHistory()
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		r.line.AppendHistory(input)

		switch input {
		case "quit", "exit", "q":
			r.saveHistory()
			return nil

		case "help", "?":
			r.io.Println("run    assemble and execute the buffer")
			r.io.Println("list   show the buffer")
			r.io.Println("clear  discard the buffer")
			r.io.Println("quit   leave the repl")

		case "list":
			for _, l := range r.buffer {
				r.io.Println(" ", l)
			}

		case "clear":
			r.buffer = nil

		case "run":
			r.execBuffer()

		default:
			r.buffer = append(r.buffer, input)
		}
	}
}

func (r *repl) execBuffer() {
	if len(r.buffer) == 0 {
		r.io.ErrPrintln("nothing to run")
		return
	}

	src := strings.Join(r.buffer, "\n") + "\n"

	prog, err := bytecode.Assemble(src)
	if err != nil {
		r.io.ErrPrintln("error:", err)
		return
	}

	code := ccode.FromProgram("(repl)", "(repl)", prog)

	th := ccode.NewThread()
	v, err := ccode.ExecuteScript(th, code, scriptRoot())
	if err != nil {
		r.io.ErrPrintln("error:", err)
		return
	}

	r.io.Println("=>", format(v))
}

func (r *repl) historyPath() string {
	if r.cfg.HistoryFile != "" {
		return r.cfg.HistoryFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.rbx_history"
}

func (r *repl) loadHistory() {
	path := r.historyPath()
	if path == "" {
		return
	}

	if f, err := os.Open(path); err == nil {
		_, _ = r.line.ReadHistory(f)
		_ = f.Close()
	}
}

func (r *repl) saveHistory() {
	path := r.historyPath()
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		_, _ = r.line.WriteHistory(f)
		_ = f.Close()
	}
}
