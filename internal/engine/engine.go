// Package engine implements a small PrintScript interpreter that executes a
// program one top-level statement per step against an execution.Context.
package engine

import (
	"errors"
	"os"

	"github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

// Engine starts step iterators for a fixed language version.
type Engine struct {
	version Version
	env     func(string) string
}

// Option configures an Engine.
type Option func(*Engine)

// WithVersion selects the language version programs are parsed against.
func WithVersion(v Version) Option {
	return func(e *Engine) {
		e.version = v
	}
}

// WithEnvLookup replaces the environment lookup used by readEnv.
func WithEnvLookup(lookup func(string) string) Option {
	return func(e *Engine) {
		if lookup != nil {
			e.env = lookup
		}
	}
}

// New constructs an Engine. Without options it runs version 1.1 and reads the
// process environment.
func New(opts ...Option) *Engine {
	e := &Engine{version: DefaultVersion, env: os.Getenv}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Version returns the language version in effect.
func (e *Engine) Version() Version {
	return e.version
}

// Start binds source to ectx. Nothing is lexed until the first HasNext.
func (e *Engine) Start(source string, ectx execution.Context) (ports.StepIterator, error) {
	if ectx == nil {
		return nil, errors.New("engine: nil execution context")
	}
	if ectx.Memory() == nil {
		ectx.SetMemory(execution.NewMemory())
	}
	return &iterator{
		parser: newParser(source, e.version),
		interp: &interpreter{ctx: ectx, env: e.env},
	}, nil
}

type iterator struct {
	parser *parser
	interp *interpreter
	done   bool
}

func (it *iterator) HasNext() bool {
	if it.done {
		return false
	}
	if !it.parser.more() {
		it.done = true
	}
	return !it.done
}

func (it *iterator) Step() error {
	if it.done {
		return errors.New("engine: step after end of program")
	}
	stmt, err := it.parser.statement()
	if err != nil {
		it.done = true
		return err
	}
	if stmt == nil {
		it.done = true
		return nil
	}
	if err := it.interp.exec(stmt); err != nil {
		it.done = true
		return err
	}
	return nil
}

var _ ports.Engine = (*Engine)(nil)
