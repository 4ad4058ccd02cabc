package execctx

import (
	"sync"

	"github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
)

// pendingInput is a single-slot handoff between the goroutine that receives
// messages and the goroutine running the engine. A completion overwrites any
// value not yet taken; taking a value empties the slot in the same critical
// section, so a value is never observed twice.
type pendingInput struct {
	mu     sync.Mutex
	ready  *sync.Cond
	value  string
	filled bool
	closed bool
}

func newPendingInput() *pendingInput {
	p := &pendingInput{}
	p.ready = sync.NewCond(&p.mu)
	return p
}

// complete stores value in the slot, replacing an unread one.
func (p *pendingInput) complete(value string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.value = value
	p.filled = true
	p.ready.Signal()
}

// take blocks until the slot holds a value or the slot is closed. A value
// delivered before close is still returned.
func (p *pendingInput) take() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for !p.filled && !p.closed {
		p.ready.Wait()
	}
	if !p.filled {
		return "", execution.NewError(execution.ErrCodeConnectionClosed, "connection closed while waiting for input", nil)
	}
	value := p.value
	p.value = ""
	p.filled = false
	return value, nil
}

// close wakes any waiting take and rejects later completions.
func (p *pendingInput) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.ready.Broadcast()
}
