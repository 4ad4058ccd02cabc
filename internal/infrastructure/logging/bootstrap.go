package logging

import (
	"context"
	"sync"

	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

const defaultBootstrapLimit = 256

type bufferedEntry struct {
	ctx    context.Context
	level  string
	msg    string
	fields []interface{}
}

// BootstrapLogger holds entries logged while configuration is still being
// loaded, before the real logger's level and format are known. Replay hands
// them to the configured logger in order.
type BootstrapLogger struct {
	state  *bootstrapState
	fields []interface{}
}

type bootstrapState struct {
	mu      sync.Mutex
	limit   int
	dropped int
	entries []bufferedEntry
}

// NewBootstrapLogger returns a buffering logger keeping at most limit entries
// (the oldest are dropped first). A non-positive limit selects the default.
func NewBootstrapLogger(limit int) *BootstrapLogger {
	if limit <= 0 {
		limit = defaultBootstrapLimit
	}
	return &BootstrapLogger{state: &bootstrapState{limit: limit}}
}

// Debug implements ports.Logger.
func (l *BootstrapLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	l.add(ctx, "debug", msg, fields)
}

// Info implements ports.Logger.
func (l *BootstrapLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	l.add(ctx, "info", msg, fields)
}

// Warn implements ports.Logger.
func (l *BootstrapLogger) Warn(ctx context.Context, msg string, fields ...interface{}) {
	l.add(ctx, "warn", msg, fields)
}

// Error implements ports.Logger.
func (l *BootstrapLogger) Error(ctx context.Context, msg string, fields ...interface{}) {
	l.add(ctx, "error", msg, fields)
}

// With implements ports.Logger.
func (l *BootstrapLogger) With(fields ...interface{}) ports.Logger {
	next := append(append([]interface{}{}, l.fields...), fields...)
	return &BootstrapLogger{state: l.state, fields: next}
}

func (l *BootstrapLogger) add(ctx context.Context, level, msg string, fields []interface{}) {
	if l == nil || l.state == nil {
		return
	}
	entry := bufferedEntry{
		ctx:    ctx,
		level:  level,
		msg:    msg,
		fields: append(append([]interface{}{}, l.fields...), fields...),
	}

	s := l.state
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.entries) == s.limit {
		copy(s.entries, s.entries[1:])
		s.entries[len(s.entries)-1] = entry
		s.dropped++
		return
	}
	s.entries = append(s.entries, entry)
}

// Replay writes the buffered entries to delegate in order and empties the
// buffer. It reports how many entries were dropped for exceeding the limit.
func (l *BootstrapLogger) Replay(delegate ports.Logger) int {
	if l == nil || l.state == nil || delegate == nil {
		return 0
	}
	s := l.state
	s.mu.Lock()
	entries := s.entries
	dropped := s.dropped
	s.entries = nil
	s.dropped = 0
	s.mu.Unlock()

	for _, entry := range entries {
		switch entry.level {
		case "debug":
			delegate.Debug(entry.ctx, entry.msg, entry.fields...)
		case "warn":
			delegate.Warn(entry.ctx, entry.msg, entry.fields...)
		case "error":
			delegate.Error(entry.ctx, entry.msg, entry.fields...)
		default:
			delegate.Info(entry.ctx, entry.msg, entry.fields...)
		}
	}
	return dropped
}

var _ ports.Logger = (*BootstrapLogger)(nil)
