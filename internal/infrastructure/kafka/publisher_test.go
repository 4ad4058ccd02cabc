package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

type fakeWriter struct {
	messages []kafkago.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNewPublisherValidation(t *testing.T) {
	t.Parallel()

	_, err := NewPublisher(PublisherConfig{Topic: "verdicts"})
	require.Error(t, err)
	_, err = NewPublisher(PublisherConfig{Brokers: []string{"localhost:9092"}})
	require.Error(t, err)

	p, err := NewPublisher(PublisherConfig{Brokers: []string{"localhost:9092"}, Topic: "verdicts"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestPublishReportWritesEnvelope(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	publisher := newPublisher(writer)
	completed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ctx := ports.WithCorrelationID(context.Background(), "corr-7")
	err := publisher.PublishReport(ctx, domainexec.TestReport{
		TestID:      "t-1",
		Verdict:     domainexec.NewVerdict([]string{"2"}, []string{"1"}),
		Outputs:     []string{"1"},
		Duration:    1500 * time.Millisecond,
		CompletedAt: completed,
	})
	require.NoError(t, err)
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	require.Equal(t, "t-1", string(msg.Key))
	require.Contains(t, msg.Headers, kafkago.Header{Key: "result", Value: []byte("FAILURE")})
	require.Contains(t, msg.Headers, kafkago.Header{Key: "correlation_id", Value: []byte("corr-7")})

	var envelope reportEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &envelope))
	require.Equal(t, domainexec.ResultFailure, envelope.Result)
	require.Equal(t, []domainexec.Mismatch{{Expected: "2", Actual: "1"}}, envelope.OutputMismatch)
	require.EqualValues(t, 1500, envelope.DurationMs)
	require.True(t, completed.Equal(envelope.Timestamp))
}

func TestPublishReportEncodesEmptyCollections(t *testing.T) {
	t.Parallel()

	payload, err := encodeReport(domainexec.TestReport{TestID: "t-2"})
	require.NoError(t, err)
	require.JSONEq(t, `{
		"test_id": "t-2",
		"result": "",
		"output_mismatch": [],
		"outputs": [],
		"duration_ms": 0,
		"timestamp": "0001-01-01T00:00:00Z"
	}`, string(payload))
}

func TestPublishReportWrapsWriterErrors(t *testing.T) {
	t.Parallel()

	publisher := newPublisher(&fakeWriter{err: errors.New("broker unavailable")})
	err := publisher.PublishReport(context.Background(), domainexec.TestReport{TestID: "t-3"})
	require.ErrorContains(t, err, "write message: broker unavailable")

	require.Error(t, (&Publisher{}).PublishReport(context.Background(), domainexec.TestReport{}))
}

func TestCloseReleasesWriter(t *testing.T) {
	t.Parallel()

	writer := &fakeWriter{}
	require.NoError(t, newPublisher(writer).Close())
	require.True(t, writer.closed)
}
