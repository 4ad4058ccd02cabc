package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options describes logger configuration supplied at creation time.
type Options struct {
	Level         string
	HumanReadable bool
	Writer        io.Writer
}

// Logger wraps zerolog for the HTTP access log.
type Logger struct {
	base zerolog.Logger
}

// Access is one served request.
type Access struct {
	Method        string
	Path          string
	Status        int
	Bytes         int
	Duration      time.Duration
	RemoteAddr    string
	CorrelationID string
	Upgraded      bool
}

// New creates a configured Logger instance based on Options.
func New(opts Options) (*Logger, error) {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	var output io.Writer = writer
	if opts.HumanReadable {
		console := zerolog.NewConsoleWriter()
		console.Out = writer
		console.TimeFormat = time.RFC3339
		output = console
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &Logger{base: logger}, nil
}

// WithFields returns a derived logger that always writes the supplied fields.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return nil
	}

	builder := l.base.With()
	for key, value := range fields {
		builder = builder.Interface(key, value)
	}

	derived := Logger{base: builder.Logger()}
	return &derived
}

// Request records one access entry. 5xx responses are logged at error level
// and 4xx at warn.
func (l *Logger) Request(a Access) {
	if l == nil {
		return
	}
	var event *zerolog.Event
	switch {
	case a.Status >= 500:
		event = l.base.Error()
	case a.Status >= 400:
		event = l.base.Warn()
	default:
		event = l.base.Info()
	}
	event = event.
		Str("method", a.Method).
		Str("path", a.Path).
		Int("status", a.Status).
		Int("bytes", a.Bytes).
		Int64("duration_ms", a.Duration.Milliseconds())
	if a.RemoteAddr != "" {
		event = event.Str("remote_addr", a.RemoteAddr)
	}
	if a.CorrelationID != "" {
		event = event.Str("correlation_id", a.CorrelationID)
	}
	if a.Upgraded {
		event = event.Bool("upgraded", true)
	}
	event.Msg("request")
}

// Info writes an informational log entry.
func (l *Logger) Info(msg string) {
	if l == nil {
		return
	}
	l.base.Info().Msg(msg)
}

// Error writes an error log entry including the supplied error context.
func (l *Logger) Error(err error, msg string) {
	if l == nil {
		return
	}
	event := l.base.Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}
