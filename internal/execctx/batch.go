package execctx

import (
	"sync"

	"github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
)

// Batch binds an execution to a fixed, ordered list of inputs and records
// every emitted line. It never blocks.
type Batch struct {
	mu       sync.Mutex
	inputs   []string
	consumed int
	outputs  []string
	memory   *execution.Memory
}

// NewBatch returns a context that serves inputs in order.
func NewBatch(inputs []string) *Batch {
	return &Batch{
		inputs:  append([]string(nil), inputs...),
		outputs: make([]string, 0),
		memory:  execution.NewMemory(),
	}
}

// Memory implements execution.Context.
func (b *Batch) Memory() *execution.Memory {
	return b.memory
}

// SetMemory implements execution.Context.
func (b *Batch) SetMemory(memory *execution.Memory) {
	b.memory = memory
}

// Emit appends text to the output log.
func (b *Batch) Emit(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outputs = append(b.outputs, text)
}

// Read pops the next queued input. The default is ignored: once the inputs
// run out every read fails with INPUT_EXHAUSTED.
func (b *Batch) Read(string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.consumed >= len(b.inputs) {
		return "", execution.NewInputExhaustedError(b.consumed)
	}
	value := b.inputs[b.consumed]
	b.consumed++
	return value, nil
}

// Outputs returns a copy of everything emitted so far.
func (b *Batch) Outputs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.outputs...)
}

// Remaining reports how many inputs have not been read.
func (b *Batch) Remaining() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.inputs) - b.consumed
}

var _ execution.Context = (*Batch)(nil)
