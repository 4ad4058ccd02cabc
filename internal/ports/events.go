package ports

import "context"

const (
	// EventSessionOpened is emitted once an interactive connection is accepted.
	EventSessionOpened = "session.opened"
	// EventSessionRejected is emitted when a connection is refused before execution.
	EventSessionRejected = "session.rejected"
	// EventSessionClosed is emitted after the session closes its connection.
	EventSessionClosed = "session.closed"
	// EventExecutionStarted is emitted before the driver runs the first step.
	EventExecutionStarted = "execution.started"
	// EventExecutionCompleted is emitted when the engine's steps are exhausted.
	EventExecutionCompleted = "execution.completed"
	// EventExecutionFailed is emitted when a step raises.
	EventExecutionFailed = "execution.failed"
	// EventTestCompleted is emitted once a verdict is produced.
	EventTestCompleted = "test.completed"
)

// DomainEvent represents a significant occurrence within the domain or
// application layer. Events carry structured payloads that downstream
// subscribers can use for logging or integrations.
type DomainEvent interface {
	EventType() string
	Payload() interface{}
}

// EventPublisher distributes events to interested subscribers. Dispatch is
// synchronous: Publish blocks until all handlers run, so observability signals
// appear before a connection or response is closed. Handlers may spawn
// goroutines for async processing. Implementations must be thread-safe.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
	Subscribe(eventType string, handler EventHandler) (Subscription, error)
}

// EventHandler processes an event of a specific type. Handlers should avoid
// panicking; failures should be surfaced via returned errors so publishers can
// log diagnostics and continue delivering to remaining subscribers.
type EventHandler func(context.Context, DomainEvent) error

// Subscription represents a registered handler. Callers must invoke
// Unsubscribe to stop receiving events and release resources.
type Subscription interface {
	Unsubscribe()
}
