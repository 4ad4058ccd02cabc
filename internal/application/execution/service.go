package execution

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/execctx"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

// InteractiveRequest describes a request to run a stored program over a
// persistent connection. Accept is invoked only after the program has been
// fetched, so a rejected request never completes the connection handshake.
type InteractiveRequest struct {
	ProgramID  string
	Credential string
	Accept     func() (ports.Connection, error)
}

// Service resolves programs from the store and runs them in interactive or
// batch mode.
type Service struct {
	store   ports.ProgramStore
	driver  *Driver
	logger  ports.Logger
	events  ports.EventPublisher
	reports ports.VerdictPublisher
	now     func() time.Time

	sessions sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithLogger injects the service logger.
func WithLogger(logger ports.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithEventPublisher injects the domain event publisher.
func WithEventPublisher(events ports.EventPublisher) Option {
	return func(s *Service) {
		s.events = events
	}
}

// WithVerdictPublisher ships every test report to publisher.
func WithVerdictPublisher(publisher ports.VerdictPublisher) Option {
	return func(s *Service) {
		s.reports = publisher
	}
}

// WithClock overrides the time source used for report timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a Service. The store may be nil when only local
// programs are run.
func NewService(store ports.ProgramStore, driver *Driver, opts ...Option) *Service {
	s := &Service{
		store:  store,
		driver: driver,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunInteractive fetches the program and, once it is available, accepts the
// connection and starts executing on a new goroutine. It returns without
// waiting for the program. ctx bounds the whole execution and should outlive
// the request that started it.
func (s *Service) RunInteractive(ctx context.Context, req InteractiveRequest) (*Session, error) {
	if err := validateIdentifiers(req.ProgramID, req.Credential); err != nil {
		s.reject(ctx, req.ProgramID, err)
		return nil, err
	}
	if req.Accept == nil {
		return nil, domainexec.NewError(domainexec.ErrCodeInternal, "no connection to accept", nil)
	}

	program, err := s.fetchProgram(ctx, req.ProgramID, req.Credential)
	if err != nil {
		s.reject(ctx, req.ProgramID, err)
		return nil, err
	}

	conn, err := req.Accept()
	if err != nil {
		if s.logger != nil {
			s.logger.Warn(ctx, "accepting connection failed", "program_id", req.ProgramID, "error", err)
		}
		return nil, domainexec.NewError(domainexec.ErrCodeInternal, "accept connection", err)
	}

	ectx := execctx.NewInteractive(conn,
		execctx.WithInteractiveLogger(s.logger),
		execctx.WithLogContext(ctx),
	)
	session := newSession(program.ID, conn, ectx)

	if s.logger != nil {
		s.logger.Info(ctx, "session opened", "session_id", session.ID(), "program_id", program.ID)
	}
	publishEvent(ctx, s.events, s.logger, ports.EventSessionOpened, map[string]interface{}{
		"session_id": session.ID(),
		"program_id": program.ID,
	})

	s.sessions.Add(1)
	go func() {
		defer s.sessions.Done()
		session.run(ctx, s, program.Source)
	}()
	return session, nil
}

// Wait blocks until every interactive session has finished.
func (s *Service) Wait() {
	s.sessions.Wait()
}

// RunTest fetches a stored fixture and runs it. Failures to resolve the
// fixture are returned as domain errors together with a FAILURE verdict
// describing them; once the program runs the verdict is the only outcome.
func (s *Service) RunTest(ctx context.Context, testID, credential string) (domainexec.Verdict, error) {
	if err := validateIdentifiers(testID, credential); err != nil {
		return domainexec.FailedVerdict(err), err
	}

	fixture, err := s.fetchTestCase(ctx, testID, credential)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn(ctx, "fixture unavailable", "test_id", testID, "code", string(domainexec.CodeOf(err)), "error", err)
		}
		return domainexec.FailedVerdict(err), err
	}
	if fixture.ID == "" {
		fixture.ID = testID
	}

	return s.TestFixture(ctx, fixture).Verdict, nil
}

// TestFixture runs a loaded fixture against a fresh batch context and
// compares its output with the expected lines.
func (s *Service) TestFixture(ctx context.Context, fixture domainexec.TestCase) domainexec.TestReport {
	start := s.now()
	publishEvent(ctx, s.events, s.logger, ports.EventExecutionStarted, map[string]interface{}{
		"test_id": fixture.ID,
		"mode":    "test",
		"inputs":  len(fixture.Inputs),
	})

	batch := execctx.NewBatch(fixture.Inputs)
	err := s.driver.Run(ctx, fixture.Source, batch)
	outputs := batch.Outputs()

	var verdict domainexec.Verdict
	if err != nil {
		verdict = domainexec.FailedVerdict(err)
		publishEvent(ctx, s.events, s.logger, ports.EventExecutionFailed, map[string]interface{}{
			"test_id": fixture.ID,
			"code":    string(domainexec.CodeOf(err)),
			"error":   verdict.ErrorMessage,
		})
	} else {
		verdict = domainexec.NewVerdict(fixture.Outputs, outputs)
		publishEvent(ctx, s.events, s.logger, ports.EventExecutionCompleted, map[string]interface{}{
			"test_id": fixture.ID,
			"outputs": len(outputs),
		})
	}

	completed := s.now()
	report := domainexec.TestReport{
		TestID:      fixture.ID,
		Verdict:     verdict,
		Outputs:     outputs,
		Duration:    completed.Sub(start),
		CompletedAt: completed,
	}

	publishEvent(ctx, s.events, s.logger, ports.EventTestCompleted, map[string]interface{}{
		"test_id":     fixture.ID,
		"result":      string(verdict.Result),
		"mismatches":  len(verdict.OutputMismatch),
		"duration_ms": report.Duration.Milliseconds(),
	})
	if s.reports != nil {
		if err := s.reports.PublishReport(ctx, report); err != nil && s.logger != nil {
			s.logger.Warn(ctx, "failed to publish test report", "test_id", fixture.ID, "error", err)
		}
	}
	return report
}

// RunSource runs a program that is already in hand against any context.
func (s *Service) RunSource(ctx context.Context, source string, ectx domainexec.Context) error {
	publishEvent(ctx, s.events, s.logger, ports.EventExecutionStarted, map[string]interface{}{
		"mode": "local",
	})
	if err := s.driver.Run(ctx, source, ectx); err != nil {
		publishEvent(ctx, s.events, s.logger, ports.EventExecutionFailed, map[string]interface{}{
			"mode":  "local",
			"code":  string(domainexec.CodeOf(err)),
			"error": domainexec.MessageOf(err),
		})
		return err
	}
	publishEvent(ctx, s.events, s.logger, ports.EventExecutionCompleted, map[string]interface{}{
		"mode": "local",
	})
	return nil
}

func (s *Service) reject(ctx context.Context, programID string, err error) {
	if s.logger != nil {
		s.logger.Warn(ctx, "session rejected", "program_id", programID, "code", string(domainexec.CodeOf(err)))
	}
	publishEvent(ctx, s.events, s.logger, ports.EventSessionRejected, map[string]interface{}{
		"program_id": programID,
		"code":       string(domainexec.CodeOf(err)),
		"error":      domainexec.MessageOf(err),
	})
}

func (s *Service) fetchProgram(ctx context.Context, programID, credential string) (domainexec.Program, error) {
	if s.store == nil {
		return domainexec.Program{}, domainexec.NewError(domainexec.ErrCodeNotFound, "no program store configured", nil)
	}
	program, err := s.store.FetchProgram(ctx, programID, credential)
	if err != nil {
		return domainexec.Program{}, asFetchError(err, programID)
	}
	if program.ID == "" {
		program.ID = programID
	}
	return program, nil
}

func (s *Service) fetchTestCase(ctx context.Context, testID, credential string) (domainexec.TestCase, error) {
	if s.store == nil {
		return domainexec.TestCase{}, domainexec.NewError(domainexec.ErrCodeNotFound, "no program store configured", nil)
	}
	fixture, err := s.store.FetchTestCase(ctx, testID, credential)
	if err != nil {
		return domainexec.TestCase{}, asFetchError(err, testID)
	}
	return fixture, nil
}

// asFetchError keeps UNAUTHORIZED and NOT_FOUND from the store and maps any
// other failure to NOT_FOUND.
func asFetchError(err error, id string) error {
	switch domainexec.CodeOf(err) {
	case domainexec.ErrCodeUnauthorized, domainexec.ErrCodeNotFound:
		return err
	}
	return domainexec.NewError(domainexec.ErrCodeNotFound, fmt.Sprintf("program %s not found", id), err)
}

func validateIdentifiers(id, credential string) error {
	if strings.TrimSpace(id) == "" {
		return domainexec.NewError(domainexec.ErrCodeMissingProgramID, "program id is required", nil)
	}
	if strings.TrimSpace(credential) == "" {
		return domainexec.NewError(domainexec.ErrCodeMissingCredential, "credential is required", nil)
	}
	return nil
}
