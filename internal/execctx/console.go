package execctx

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
)

// Console binds an execution to a line-oriented reader and writer, such as a
// terminal. Queued inputs are served before the reader is consulted, and the
// default is returned once the reader is exhausted.
type Console struct {
	mu      sync.Mutex
	in      *bufio.Scanner
	out     io.Writer
	prompt  string
	queued  []string
	memory  *execution.Memory
	emitErr error
}

// NewConsole returns a context reading lines from in and writing lines to out.
// When prompt is non-empty it is written before every read from in.
func NewConsole(in io.Reader, out io.Writer, prompt string, queued ...string) *Console {
	return &Console{
		in:     bufio.NewScanner(in),
		out:    out,
		prompt: prompt,
		queued: append([]string(nil), queued...),
		memory: execution.NewMemory(),
	}
}

// Memory implements execution.Context.
func (c *Console) Memory() *execution.Memory {
	return c.memory
}

// SetMemory implements execution.Context.
func (c *Console) SetMemory(memory *execution.Memory) {
	c.memory = memory
}

// Emit writes text followed by a newline. The first write error is kept for
// Err and later output is dropped.
func (c *Console) Emit(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.emitErr != nil {
		return
	}
	if _, err := fmt.Fprintln(c.out, text); err != nil {
		c.emitErr = err
	}
}

// Read serves queued inputs first, then lines from the reader, then def.
func (c *Console) Read(def string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queued) > 0 {
		value := c.queued[0]
		c.queued = c.queued[1:]
		return value, nil
	}
	if c.prompt != "" {
		fmt.Fprint(c.out, c.prompt)
	}
	if c.in.Scan() {
		return strings.TrimRight(c.in.Text(), "\r"), nil
	}
	if err := c.in.Err(); err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return def, nil
}

// Err returns the first error encountered while writing output.
func (c *Console) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.emitErr
}

var _ execution.Context = (*Console)(nil)
