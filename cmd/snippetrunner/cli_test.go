package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), ".env")}, args...))

	err := root.Execute()
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exit *exitError
	require.ErrorAs(t, err, &exit)
	require.Equal(t, code, exit.code)
}

func TestRunPrintsProgramOutput(t *testing.T) {
	program := writeTemp(t, t.TempDir(), "greet.ps", `
let name: string = read();
let n: number = read();
println("Hello " + name);
println(n * 2);
`)

	res := execute(t, "21\n", "run", program, "--input", "Ada")

	require.NoError(t, res.err)
	require.Equal(t, "Hello Ada\n42\n", res.stdout)
}

func TestRunReportsProgramErrors(t *testing.T) {
	program := writeTemp(t, t.TempDir(), "broken.ps", "println(1);\nprintln(1 / 0);\n")

	res := execute(t, "", "run", program)

	requireExitCode(t, res.err, 1)
	require.Equal(t, "1\n", res.stdout)
	require.Contains(t, res.stderr, "error: ")
	require.Contains(t, res.stderr, "division by zero")
}

func TestRunHonoursLanguageVersion(t *testing.T) {
	program := writeTemp(t, t.TempDir(), "const.ps", "const c: number = 1;\nprintln(c);\n")
	t.Setenv("ENGINE_VERSION", "1.0")

	res := execute(t, "", "run", program)

	requireExitCode(t, res.err, 1)
	require.Contains(t, res.stderr, "not supported in version 1.0")
}

func TestRunMissingFile(t *testing.T) {
	res := execute(t, "", "run", filepath.Join(t.TempDir(), "absent.ps"))

	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "read program")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	program := writeTemp(t, dir, "ok.ps", "println(1);\n")
	cfg := writeTemp(t, dir, "snippetrunner.yaml", "engine:\n  version: \"9.9\"\n")

	res := execute(t, "", "--config", cfg, "run", program)

	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "engine.version")
	require.Contains(t, res.stderr, "configuration rejected")
}

func TestTestCommandPassingFixture(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "double.ps", "let n: number = read();\nprintln(n * 2);\n")
	fixture := writeTemp(t, dir, "double.yaml", "id: double\nfile: double.ps\ninputs: [\"4\"]\noutputs: [\"8\"]\n")

	res := execute(t, "", "test", fixture)

	require.NoError(t, res.err)
	require.Contains(t, res.stdout, "PASS")
	require.Contains(t, res.stdout, "double")
	require.Contains(t, res.stdout, "1 passed, 0 failed")
}

func TestTestCommandFailingFixtureShowsDiff(t *testing.T) {
	dir := t.TempDir()
	fixture := writeTemp(t, dir, "hello.yaml", `program: |
  println("Hello world");
  println("bye");
outputs:
  - Hello there
  - bye
`)

	res := execute(t, "", "test", fixture)

	requireExitCode(t, res.err, 1)
	require.Contains(t, res.stdout, "FAIL")
	require.Contains(t, res.stdout, "hello")
	require.Contains(t, res.stdout, `expected "Hello there", got "Hello world"`)
	require.Contains(t, res.stdout, "-Hello there")
	require.Contains(t, res.stdout, "+Hello world")
	require.Contains(t, res.stdout, "0 passed, 1 failed")
}

func TestTestCommandExecutionError(t *testing.T) {
	dir := t.TempDir()
	fixture := writeTemp(t, dir, "exhausted.yaml", "id: exhausted\nprogram: \"let s: string = read();\"\n")

	res := execute(t, "", "test", fixture)

	requireExitCode(t, res.err, 1)
	require.Contains(t, res.stdout, "FAIL")
	require.Contains(t, res.stdout, "error: no input left to read")
}

func TestTestCommandInvalidFixture(t *testing.T) {
	fixture := writeTemp(t, t.TempDir(), "empty.yaml", "inputs: []\n")

	res := execute(t, "", "test", fixture)

	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "fixture has no program")
}
