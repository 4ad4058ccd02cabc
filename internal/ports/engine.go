package ports

import "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"

// Engine turns program source into a sequence of execution steps bound to a
// single execution context. Lexing and parsing are lazy: failures surface from
// the step that first needs the offending input.
type Engine interface {
	Start(source string, ectx execution.Context) (StepIterator, error)
}

// StepIterator walks a program one top-level statement at a time. Each Step
// may call Read/Emit on the bound context any number of times and may mutate
// its Memory. After Step returns an error the iterator must not be used again.
type StepIterator interface {
	HasNext() bool
	Step() error
}
