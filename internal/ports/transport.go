package ports

// Connection is the outbound half of a persistent, message-based client
// connection. Send must be safe to call from the execution goroutine while the
// transport's read loop runs elsewhere.
type Connection interface {
	// Send writes one text message. It returns an error once the connection is closed.
	Send(text string) error
	// Close ends the connection with a human-readable reason.
	Close(reason string) error
}
