package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nicolasleger/rubinius/internal/cli"
)

func writeSource(t *testing.T, src string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prog.rbxasm")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var out, errOut bytes.Buffer
	code := cli.Run(strings.NewReader(""), &out, &errOut, append([]string{"rbx"}, args...), map[string]string{})
	return code, out.String(), errOut.String()
}

func Test_Exec_Runs_A_Script_And_Prints_The_Result(t *testing.T) {
	path := writeSource(t, "pushint 6\npushint 7\nmul\nret\n")

	code, out, errOut := runCLI(t, "exec", path)
	if code != 0 {
		t.Fatalf("exit = %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "42") {
		t.Fatalf("stdout = %q, want the result 42", out)
	}
}

func Test_Exec_Reports_Assembly_Errors(t *testing.T) {
	path := writeSource(t, "frobnicate\n")

	code, _, errOut := runCLI(t, "exec", path)
	if code == 0 {
		t.Fatal("exit = 0 for an unassemblable program")
	}
	if !strings.Contains(errOut, "error") {
		t.Fatalf("stderr = %q, want an error line", errOut)
	}
}

func Test_Disasm_Prints_A_Listing(t *testing.T) {
	path := writeSource(t, "pushliteral :hello\nret\n")

	code, out, errOut := runCLI(t, "disasm", path)
	if code != 0 {
		t.Fatalf("exit = %d, stderr: %s", code, errOut)
	}
	if !strings.Contains(out, "pushliteral") || !strings.Contains(out, "hello") {
		t.Fatalf("listing = %q", out)
	}
}

func Test_Asm_Writes_The_Listing_Atomically(t *testing.T) {
	path := writeSource(t, "pushint 1\nret\n")
	outPath := filepath.Join(t.TempDir(), "listing.txt")

	code, _, errOut := runCLI(t, "asm", path, "-o", outPath)
	if code != 0 {
		t.Fatalf("exit = %d, stderr: %s", code, errOut)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read listing: %v", err)
	}
	if !strings.Contains(string(data), "pushint") {
		t.Fatalf("listing = %q", data)
	}
}

func Test_Info_Reports_Shape_And_Sites(t *testing.T) {
	path := writeSource(t, "pushself\nsend :work 0\nret\n")

	code, out, errOut := runCLI(t, "info", path)
	if code != 0 {
		t.Fatalf("exit = %d, stderr: %s", code, errOut)
	}
	for _, want := range []string{"call sites", "constant caches", "stack"} {
		if !strings.Contains(out, want) {
			t.Fatalf("info output missing %q:\n%s", want, out)
		}
	}
}

func Test_Unknown_Command_Fails_With_Usage(t *testing.T) {
	code, _, errOut := runCLI(t, "bogus")
	if code == 0 {
		t.Fatal("exit = 0 for an unknown command")
	}
	if !strings.Contains(errOut, "unknown command") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func Test_Help_Lists_All_Commands(t *testing.T) {
	code, out, _ := runCLI(t, "--help")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	for _, cmd := range []string{"asm", "disasm", "exec", "info", "repl"} {
		if !strings.Contains(out, cmd) {
			t.Fatalf("help missing %q:\n%s", cmd, out)
		}
	}
}
