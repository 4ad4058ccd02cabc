package execctx

import (
	"context"

	"github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

// Interactive binds an execution to a live connection. Output is forwarded as
// one message per Emit; Read waits for the transport to Deliver the next
// inbound message.
type Interactive struct {
	conn    ports.Connection
	logger  ports.Logger
	logCtx  context.Context
	pending *pendingInput
	memory  *execution.Memory
}

// InteractiveOption configures an Interactive context.
type InteractiveOption func(*Interactive)

// WithInteractiveLogger injects the logger used to report discarded output.
func WithInteractiveLogger(logger ports.Logger) InteractiveOption {
	return func(c *Interactive) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLogContext sets the context whose correlation id is attached to log entries.
func WithLogContext(ctx context.Context) InteractiveOption {
	return func(c *Interactive) {
		if ctx != nil {
			c.logCtx = ctx
		}
	}
}

// NewInteractive returns a context bound to conn with fresh memory and an
// empty input slot.
func NewInteractive(conn ports.Connection, opts ...InteractiveOption) *Interactive {
	c := &Interactive{
		conn:    conn,
		logger:  logging.NewNoOpLogger(),
		logCtx:  context.Background(),
		pending: newPendingInput(),
		memory:  execution.NewMemory(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Memory implements execution.Context.
func (c *Interactive) Memory() *execution.Memory {
	return c.memory
}

// SetMemory implements execution.Context.
func (c *Interactive) SetMemory(memory *execution.Memory) {
	c.memory = memory
}

// Emit sends text as one outbound message. A failed send is logged and
// dropped so the execution keeps running.
func (c *Interactive) Emit(text string) {
	if err := c.conn.Send(text); err != nil {
		c.logger.Warn(c.logCtx, "discarding output", "error", err)
	}
}

// Read blocks until an inbound message is delivered and returns its payload.
// The default is not used: an interactive read always waits for the peer.
func (c *Interactive) Read(string) (string, error) {
	return c.pending.take()
}

// Deliver hands an inbound message payload to the next Read. It is called
// from the transport's dispatch goroutine and never blocks. If a previous
// payload has not been read yet it is replaced.
func (c *Interactive) Deliver(payload string) {
	c.pending.complete(payload)
}

// Close releases a Read blocked on a peer that went away. Subsequent reads
// fail with a CONNECTION_CLOSED error.
func (c *Interactive) Close() {
	c.pending.close()
}

var _ execution.Context = (*Interactive)(nil)
