package execution

import (
	"context"
	"errors"
	"fmt"

	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

// ErrStepLimit is the cause reported when a program exceeds the configured
// number of steps.
var ErrStepLimit = errors.New("step limit exceeded")

// Driver pulls steps from the engine until the program is exhausted or a
// step fails. It is stateless and safe for concurrent use.
type Driver struct {
	engine   ports.Engine
	maxSteps int
	logger   ports.Logger
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithMaxSteps stops programs after n steps. Zero disables the limit.
func WithMaxSteps(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.maxSteps = n
		}
	}
}

// WithDriverLogger injects a logger for step diagnostics.
func WithDriverLogger(logger ports.Logger) DriverOption {
	return func(d *Driver) {
		d.logger = logger
	}
}

// NewDriver constructs a Driver around engine.
func NewDriver(engine ports.Engine, opts ...DriverOption) *Driver {
	d := &Driver{engine: engine}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes source against ectx. Errors raised by the context are returned
// unchanged; every other failure becomes an EXECUTION_ERROR carrying the
// engine's message. Output emitted before the failure stays with ectx.
// Cancellation of ctx is observed between steps.
func (d *Driver) Run(ctx context.Context, source string, ectx domainexec.Context) error {
	it, err := d.engine.Start(source, ectx)
	if err != nil {
		return domainexec.NewExecutionError(err)
	}

	steps := 0
	for it.HasNext() {
		if err := ctx.Err(); err != nil {
			return domainexec.NewError(domainexec.ErrCodeCancelled, "execution cancelled", err).
				WithContext(map[string]interface{}{"steps": steps})
		}
		if d.maxSteps > 0 && steps >= d.maxSteps {
			return domainexec.NewExecutionError(fmt.Errorf("%w after %d steps", ErrStepLimit, steps))
		}
		if err := it.Step(); err != nil {
			if d.logger != nil {
				d.logger.Debug(ctx, "step failed", "step", steps+1, "error", err)
			}
			return classify(err)
		}
		steps++
	}

	if d.logger != nil {
		d.logger.Debug(ctx, "program exhausted", "steps", steps)
	}
	return nil
}

func classify(err error) error {
	var domainErr *domainexec.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return domainexec.NewExecutionError(err)
}
