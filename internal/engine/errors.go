package engine

import (
	"errors"
	"fmt"
)

// Stage names the phase of execution an Error was raised in.
type Stage string

const (
	StageLex     Stage = "lex"
	StageParse   Stage = "parse"
	StageRuntime Stage = "runtime"
)

// ErrProgram matches every *Error with errors.Is.
var ErrProgram = errors.New("program error")

// Error is a failure attributable to the program being run.
type Error struct {
	Stage   Stage
	Message string

	// Line and Column are 1-based. Zero means the position is unknown.
	Line   int
	Column int
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, col %d)", e.Message, e.Line, e.Column)
	}
	return e.Message
}

// Is reports whether target is ErrProgram.
func (e *Error) Is(target error) bool {
	return target == ErrProgram
}

func errorAt(stage Stage, t Token, format string, args ...any) *Error {
	return &Error{
		Stage:   stage,
		Message: fmt.Sprintf(format, args...),
		Line:    t.Line,
		Column:  t.Column,
	}
}

type errExpected struct {
	want string
	got  Token
}

func (e errExpected) toError() *Error {
	if e.got.Kind == TokError {
		return errorAt(StageLex, e.got, "%s", e.got.Val)
	}
	return errorAt(StageParse, e.got, "expected %s but got %s", e.want, e.got)
}
