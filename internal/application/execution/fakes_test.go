package execution

import (
	"context"
	"errors"
	"sync"

	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

type stubStore struct {
	programs map[string]string
	tests    map[string]domainexec.TestCase
	err      error
	calls    int
	mu       sync.Mutex
}

func (s *stubStore) FetchProgram(_ context.Context, programID, _ string) (domainexec.Program, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return domainexec.Program{}, s.err
	}
	source, ok := s.programs[programID]
	if !ok {
		return domainexec.Program{}, domainexec.NewError(domainexec.ErrCodeNotFound, "no such program", nil)
	}
	return domainexec.Program{ID: programID, Source: source}, nil
}

func (s *stubStore) FetchTestCase(_ context.Context, testID, _ string) (domainexec.TestCase, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return domainexec.TestCase{}, s.err
	}
	tc, ok := s.tests[testID]
	if !ok {
		return domainexec.TestCase{}, domainexec.NewError(domainexec.ErrCodeNotFound, "no such test", nil)
	}
	return tc, nil
}

type recordingConn struct {
	mu     sync.Mutex
	sent   []string
	closed bool
	reason string
}

func (c *recordingConn) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *recordingConn) Close(reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.reason = reason
	return nil
}

func (c *recordingConn) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

func (c *recordingConn) closeReason() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.reason
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventRecord
}

type eventRecord struct {
	eventType     string
	payload       map[string]interface{}
	correlationID string
}

func (r *recordingPublisher) Publish(ctx context.Context, event ports.DomainEvent) error {
	payload, _ := event.Payload().(map[string]interface{})
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventRecord{
		eventType:     event.EventType(),
		payload:       payload,
		correlationID: ports.GetCorrelationID(ctx),
	})
	return nil
}

func (r *recordingPublisher) Subscribe(string, ports.EventHandler) (ports.Subscription, error) {
	return nil, errors.New("not supported")
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, evt := range r.events {
		out[i] = evt.eventType
	}
	return out
}

func (r *recordingPublisher) find(eventType string) (eventRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, evt := range r.events {
		if evt.eventType == eventType {
			return evt, true
		}
	}
	return eventRecord{}, false
}

type recordingReports struct {
	mu      sync.Mutex
	reports []domainexec.TestReport
	err     error
}

func (r *recordingReports) PublishReport(_ context.Context, report domainexec.TestReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
	return r.err
}

func (r *recordingReports) Close() error { return nil }

// scriptedEngine replays a fixed list of step results.
type scriptedEngine struct {
	steps    []func(domainexec.Context) error
	startErr error
}

func (e *scriptedEngine) Start(_ string, ectx domainexec.Context) (ports.StepIterator, error) {
	if e.startErr != nil {
		return nil, e.startErr
	}
	return &scriptedIterator{steps: e.steps, ectx: ectx}, nil
}

type scriptedIterator struct {
	steps []func(domainexec.Context) error
	ectx  domainexec.Context
	ran   int
}

func (it *scriptedIterator) HasNext() bool { return it.ran < len(it.steps) }

func (it *scriptedIterator) Step() error {
	step := it.steps[it.ran]
	it.ran++
	return step(it.ectx)
}
