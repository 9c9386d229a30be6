// Package main provides rbx, a tool for assembling, inspecting and
// running bytecode programs through the dispatch core.
package main

import (
	"os"
	"strings"

	"github.com/nicolasleger/rubinius/internal/cli"
)

func main() {
	environ := os.Environ()
	env := make(map[string]string, len(environ))

	for _, e := range environ {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, env))
}
