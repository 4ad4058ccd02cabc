// Package transport exposes the execution service over HTTP: interactive
// sessions on a WebSocket endpoint and batch tests as a REST call.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	appexec "github.com/alexisbeaulieu97/snippetrunner/internal/application/execution"
	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/snippetrunner/internal/logger"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

// Executor runs programs on behalf of the transport.
type Executor interface {
	RunInteractive(ctx context.Context, req appexec.InteractiveRequest) (*appexec.Session, error)
	RunTest(ctx context.Context, testID, credential string) (domainexec.Verdict, error)
}

// Config holds the listener and WebSocket settings.
type Config struct {
	Address         string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	WebSocketPath  string
	ReadLimit      int64
	AllowedOrigins []string
}

// Server routes requests to the executor.
type Server struct {
	cfg      Config
	executor Executor
	logger   ports.Logger
	access   *logger.Logger
	upgrader websocket.Upgrader
	base     context.Context
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger injects the structured logger.
func WithLogger(l ports.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAccessLog writes one entry per request to access.
func WithAccessLog(access *logger.Logger) ServerOption {
	return func(s *Server) {
		s.access = access
	}
}

// NewServer builds a Server. Unset paths and limits fall back to defaults.
func NewServer(cfg Config, executor Executor, opts ...ServerOption) *Server {
	if cfg.WebSocketPath == "" {
		cfg.WebSocketPath = "/execute"
	}
	cfg.WebSocketPath = "/" + strings.Trim(cfg.WebSocketPath, "/")
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		cfg:      cfg,
		executor: executor,
		logger:   logging.NewNoOpLogger(),
		base:     context.Background(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET "+s.cfg.WebSocketPath, s.handleInteractive)
	mux.HandleFunc("GET "+s.cfg.WebSocketPath+"/{id}", s.handleInteractive)
	mux.HandleFunc("POST /execute-test/{id}", s.handleTest)
	mux.HandleFunc("POST /execute-test/", s.handleTest)
	return withCorrelation(withAccessLog(s.access, mux))
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. Interactive sessions observe the same ctx and close their
// connections when it ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.base = ctx
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info(ctx, "server listening", "address", ln.Addr().String(), "websocket_path", s.cfg.WebSocketPath)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info(shutdownCtx, "server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps a domain error onto the HTTP status a rejected request
// receives.
func statusFor(err error) int {
	switch domainexec.CodeOf(err) {
	case domainexec.ErrCodeMissingProgramID:
		return http.StatusBadRequest
	case domainexec.ErrCodeMissingCredential:
		return http.StatusUnauthorized
	case domainexec.ErrCodeUnauthorized:
		return http.StatusForbidden
	case domainexec.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{
		Error:   string(domainexec.CodeOf(err)),
		Message: domainexec.MessageOf(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. Any other form yields an empty credential.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
