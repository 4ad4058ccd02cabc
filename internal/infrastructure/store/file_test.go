package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	apperrors "github.com/alexisbeaulieu97/snippetrunner/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileStoreFetchesPrograms(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "hello.ps", `println("hello");`)
	s := NewFileStore(dir)

	program, err := s.FetchProgram(context.Background(), "hello", "")
	require.NoError(t, err)
	require.Equal(t, `println("hello");`, program.Source)

	_, err = s.FetchProgram(context.Background(), "missing", "")
	require.ErrorIs(t, err, domainexec.ErrNotFound)

	_, err = s.FetchProgram(context.Background(), "../hello", "")
	require.ErrorIs(t, err, domainexec.ErrNotFound)
}

func TestFileStoreFetchesFixtures(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "echo.yaml", "program: print(read())\ninputs: [hi]\noutputs: [hi]\n")
	s := NewFileStore(dir)

	tc, err := s.FetchTestCase(context.Background(), "echo", "")
	require.NoError(t, err)
	require.Equal(t, domainexec.TestCase{
		ID:      "echo",
		Source:  "print(read())",
		Inputs:  []string{"hi"},
		Outputs: []string{"hi"},
	}, tc)
}

func TestLoadTestCaseWithProgramFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "sum.ps", "println(1 + 1);\n")
	path := writeFile(t, dir, "sum.yaml", "id: sum\nfile: sum.ps\noutputs:\n  - \"2\"\n")

	tc, err := LoadTestCase(path)
	require.NoError(t, err)
	require.Equal(t, "sum", tc.ID)
	require.Equal(t, "println(1 + 1);\n", tc.Source)
	require.Empty(t, tc.Inputs)
	require.NotNil(t, tc.Inputs)
	require.Equal(t, []string{"2"}, tc.Outputs)
}

func TestLoadTestCaseErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	invalid := map[string]string{
		"empty.yaml": "inputs: []\n",
		"both.yaml":  "program: x\nfile: y.ps\n",
		"gone.yaml":  "file: nowhere.ps\n",
	}
	for name, content := range invalid {
		path := writeFile(t, dir, name, content)
		_, err := LoadTestCase(path)
		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr, name)
	}

	path := writeFile(t, dir, "bad.yaml", "program: [unclosed\n")
	_, err := LoadTestCase(path)
	var parseErr *apperrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, path, parseErr.Path)
}
