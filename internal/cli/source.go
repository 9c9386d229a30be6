package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nicolasleger/rubinius/pkg/bytecode"
	"github.com/nicolasleger/rubinius/pkg/ccode"
)

// loadProgram reads and assembles a source file.
func loadProgram(path string) (bytecode.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return bytecode.Program{}, fmt.Errorf("read %s: %w", path, err)
	}

	prog, err := bytecode.Assemble(string(src))
	if err != nil {
		return bytecode.Program{}, fmt.Errorf("%s: %w", path, err)
	}

	return prog, nil
}

// loadCode assembles path into a script-shaped code object.
func loadCode(path string) (*ccode.Code, error) {
	prog, err := loadProgram(path)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(path)
	return ccode.FromProgram(name, path, prog), nil
}

// scriptRoot builds the root object scripts run against.
func scriptRoot() *ccode.Instance {
	return ccode.NewInstance(ccode.NewModule("Object", 1, nil))
}
