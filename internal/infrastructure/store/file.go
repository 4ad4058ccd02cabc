package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
	apperrors "github.com/alexisbeaulieu97/snippetrunner/pkg/errors"
)

// ProgramExt is the extension of program files in a FileStore.
const ProgramExt = ".ps"

// FileStore serves programs and fixtures from a local directory: program
// <id> is <dir>/<id>.ps and fixture <id> is <dir>/<id>.yaml. Credentials
// are ignored.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// FetchProgram implements ports.ProgramStore.
func (s *FileStore) FetchProgram(_ context.Context, programID, _ string) (domainexec.Program, error) {
	path, err := s.path(programID, ProgramExt)
	if err != nil {
		return domainexec.Program{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domainexec.Program{}, notFound("program", programID, err)
	}
	return domainexec.Program{ID: programID, Source: string(data)}, nil
}

// FetchTestCase implements ports.ProgramStore.
func (s *FileStore) FetchTestCase(_ context.Context, testID, _ string) (domainexec.TestCase, error) {
	path, err := s.path(testID, ".yaml")
	if err != nil {
		return domainexec.TestCase{}, err
	}
	tc, err := LoadTestCase(path)
	if err != nil {
		return domainexec.TestCase{}, notFound("test", testID, err)
	}
	if tc.ID == "" {
		tc.ID = testID
	}
	return tc, nil
}

func (s *FileStore) path(id, ext string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", domainexec.NewError(domainexec.ErrCodeNotFound, fmt.Sprintf("invalid id %q", id), nil)
	}
	return filepath.Join(s.dir, id+ext), nil
}

type fixtureFile struct {
	ID      string   `yaml:"id"`
	Program string   `yaml:"program"`
	File    string   `yaml:"file"`
	Inputs  []string `yaml:"inputs"`
	Outputs []string `yaml:"outputs"`
}

// LoadTestCase reads a YAML fixture. The program is either inline under
// "program" or in a file named by "file", relative to the fixture.
func LoadTestCase(path string) (domainexec.TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domainexec.TestCase{}, apperrors.NewParseError(path, 0, err)
	}

	var raw fixtureFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return domainexec.TestCase{}, apperrors.NewParseError(path, 0, err)
	}

	source := raw.Program
	switch {
	case raw.File != "" && raw.Program != "":
		return domainexec.TestCase{}, apperrors.NewValidationError("file", "program and file are mutually exclusive", nil)
	case raw.File != "":
		programPath := raw.File
		if !filepath.IsAbs(programPath) {
			programPath = filepath.Join(filepath.Dir(path), programPath)
		}
		content, err := os.ReadFile(programPath)
		if err != nil {
			return domainexec.TestCase{}, apperrors.NewValidationError("file", fmt.Sprintf("cannot read %s", raw.File), err)
		}
		source = string(content)
	case raw.Program == "":
		return domainexec.TestCase{}, apperrors.NewValidationError("program", "fixture has no program", nil)
	}

	return domainexec.TestCase{
		ID:      raw.ID,
		Source:  source,
		Inputs:  nonNil(raw.Inputs),
		Outputs: nonNil(raw.Outputs),
	}, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func notFound(kind, id string, err error) error {
	msg := fmt.Sprintf("%s %s not found", kind, id)
	if !errors.Is(err, fs.ErrNotExist) {
		msg = fmt.Sprintf("%s %s unreadable", kind, id)
	}
	return domainexec.NewError(domainexec.ErrCodeNotFound, msg, err)
}

var _ ports.ProgramStore = (*FileStore)(nil)
