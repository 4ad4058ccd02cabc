package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	logginginfra "github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

func newJSONLogger(t *testing.T, buf *bytes.Buffer) ports.Logger {
	t.Helper()
	logger, err := logginginfra.New(logginginfra.Options{
		Writer:    buf,
		Level:     "info",
		Format:    "json",
		Layer:     "test",
		Component: "publisher",
	})
	require.NoError(t, err)
	return logger
}

func TestLoggingPublisherIncludesCorrelationID(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	publisher := NewLoggingPublisher(newJSONLogger(t, buf))

	ctx := logginginfra.WithCorrelationID(context.Background(), "abc-123")
	err := publisher.Publish(ctx, sampleEvent{
		eventType: ports.EventSessionOpened,
		payload:   map[string]interface{}{"program_id": "demo"},
	})
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "domain event", entry["msg"])
	require.Equal(t, "info", entry["level"])
	require.Equal(t, ports.EventSessionOpened, entry["event_type"])
	require.Equal(t, "abc-123", entry["correlation_id"])
	require.Equal(t, "demo", entry["program_id"])
}

func TestLoggingPublisherLogsFailuresAsWarnings(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	publisher := NewLoggingPublisher(newJSONLogger(t, buf))

	require.NoError(t, publisher.Publish(context.Background(), sampleEvent{eventType: ports.EventExecutionFailed}))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "warn", entry["level"])
}

func TestLoggingPublisherInvokesSubscribers(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	publisher := NewLoggingPublisher(newJSONLogger(t, buf))

	var order []string
	_, err := publisher.Subscribe(ports.EventTestCompleted, func(ctx context.Context, event ports.DomainEvent) error {
		order = append(order, "typed")
		return errors.New("sink unavailable")
	})
	require.NoError(t, err)
	sub, err := publisher.Subscribe("*", func(ctx context.Context, event ports.DomainEvent) error {
		order = append(order, "any:"+event.EventType())
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, publisher.Publish(context.Background(), sampleEvent{eventType: ports.EventTestCompleted}))
	require.Equal(t, []string{"typed", "any:" + ports.EventTestCompleted}, order)
	require.True(t, strings.Contains(buf.String(), "event handler failed"))

	sub.Unsubscribe()
	order = nil
	require.NoError(t, publisher.Publish(context.Background(), sampleEvent{eventType: ports.EventSessionClosed}))
	require.Empty(t, order)
}

type sampleEvent struct {
	eventType string
	payload   interface{}
}

func (e sampleEvent) EventType() string    { return e.eventType }
func (e sampleEvent) Payload() interface{} { return e.payload }
