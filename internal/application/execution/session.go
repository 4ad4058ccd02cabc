package execution

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/execctx"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

// Close reasons sent to the peer when a session ends.
const (
	ReasonCompleted    = "execution completed"
	ReasonFailed       = "execution failed"
	ReasonShutdown     = "server shutting down"
	ReasonDisconnected = "peer disconnected"
)

// Session ties one connection to one interactive context and the goroutine
// executing its program.
type Session struct {
	id        string
	programID string
	conn      ports.Connection
	ectx      *execctx.Interactive

	done chan struct{}
	mu   sync.Mutex
	err  error
}

func newSession(programID string, conn ports.Connection, ectx *execctx.Interactive) *Session {
	return &Session{
		id:        uuid.NewString(),
		programID: programID,
		conn:      conn,
		ectx:      ectx,
		done:      make(chan struct{}),
	}
}

// ID uniquely identifies the session.
func (s *Session) ID() string { return s.id }

// ProgramID returns the program the session runs.
func (s *Session) ProgramID() string { return s.programID }

// Deliver forwards one inbound message to the program's next read.
func (s *Session) Deliver(payload string) {
	s.ectx.Deliver(payload)
}

// Disconnect is called when the peer goes away. A read waiting for input
// fails and the program ends.
func (s *Session) Disconnect() {
	s.ectx.Close()
}

// Done is closed once the program has finished and the connection is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err returns the error the program ended with, if any. It is only
// meaningful after Done is closed.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// run executes the program and closes the connection. A failure's message is
// sent to the peer first unless the peer is already gone.
func (s *Session) run(ctx context.Context, svc *Service, source string) {
	defer close(s.done)

	stop := context.AfterFunc(ctx, s.ectx.Close)
	defer stop()

	start := svc.now()
	publishEvent(ctx, svc.events, svc.logger, ports.EventExecutionStarted, map[string]interface{}{
		"session_id": s.id,
		"program_id": s.programID,
		"mode":       "interactive",
	})

	err := s.execute(ctx, svc, source)

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()

	reason := ReasonCompleted
	switch {
	case err == nil:
		publishEvent(ctx, svc.events, svc.logger, ports.EventExecutionCompleted, map[string]interface{}{
			"session_id":  s.id,
			"program_id":  s.programID,
			"duration_ms": svc.now().Sub(start).Milliseconds(),
		})
	case isTermination(err):
		reason = ReasonShutdown
		if ctx.Err() == nil {
			reason = ReasonDisconnected
		}
	default:
		reason = ReasonFailed
		s.ectx.Emit(domainexec.MessageOf(err))
		publishEvent(ctx, svc.events, svc.logger, ports.EventExecutionFailed, map[string]interface{}{
			"session_id":  s.id,
			"program_id":  s.programID,
			"code":        string(domainexec.CodeOf(err)),
			"error":       domainexec.MessageOf(err),
			"duration_ms": svc.now().Sub(start).Milliseconds(),
		})
	}

	if closeErr := s.conn.Close(reason); closeErr != nil && svc.logger != nil {
		svc.logger.Debug(ctx, "closing connection failed", "session_id", s.id, "error", closeErr)
	}
	publishEvent(ctx, svc.events, svc.logger, ports.EventSessionClosed, map[string]interface{}{
		"session_id": s.id,
		"program_id": s.programID,
		"reason":     reason,
	})
}

func (s *Session) execute(ctx context.Context, svc *Service, source string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domainexec.NewError(domainexec.ErrCodeInternal, "internal error", fmt.Errorf("panic: %v", r))
			if svc.logger != nil {
				svc.logger.Error(ctx, "execution panicked", "session_id", s.id, "panic", r)
			}
		}
	}()
	return svc.driver.Run(ctx, source, s.ectx)
}

// Wait blocks until the session is done or timeout elapses. It reports
// whether the session finished.
func (s *Session) Wait(timeout time.Duration) bool {
	select {
	case <-s.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// isTermination reports whether err means the session was stopped from the
// outside rather than by the program.
func isTermination(err error) bool {
	switch domainexec.CodeOf(err) {
	case domainexec.ErrCodeConnectionClosed, domainexec.ErrCodeCancelled:
		return true
	}
	return false
}
