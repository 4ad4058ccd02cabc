package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/logging"
	"github.com/alexisbeaulieu97/snippetrunner/internal/ports"
)

// maxBodyBytes caps how much of a store response is read.
const maxBodyBytes = 4 << 20

// HTTPStore fetches programs and fixtures from the snippet manager service.
// Programs live at <base>/<id>, fixtures at <base>/test/<id>.
type HTTPStore struct {
	base   *url.URL
	client *http.Client
	logger ports.Logger
}

// HTTPOption configures an HTTPStore.
type HTTPOption func(*HTTPStore)

// WithHTTPClient replaces the default client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPStore) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(s *HTTPStore) {
		if timeout > 0 {
			s.client = &http.Client{Timeout: timeout}
		}
	}
}

// WithStoreLogger injects a logger.
func WithStoreLogger(logger ports.Logger) HTTPOption {
	return func(s *HTTPStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHTTPStore creates a store client rooted at baseURL.
func NewHTTPStore(baseURL string, opts ...HTTPOption) (*HTTPStore, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse store url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("store url %q must use http or https", baseURL)
	}

	s := &HTTPStore{
		base:   base,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logging.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type programResponse struct {
	Content *string `json:"content"`
}

type testCaseResponse struct {
	Snippet programResponse `json:"snippet"`
	Inputs  lines           `json:"inputs"`
	Outputs lines           `json:"outputs"`
}

// FetchProgram implements ports.ProgramStore.
func (s *HTTPStore) FetchProgram(ctx context.Context, programID, credential string) (domainexec.Program, error) {
	var body programResponse
	if err := s.get(ctx, credential, &body, programID); err != nil {
		return domainexec.Program{}, s.fail(ctx, "program", programID, err)
	}
	if body.Content == nil {
		return domainexec.Program{}, s.fail(ctx, "program", programID, errors.New("response has no content"))
	}
	return domainexec.Program{ID: programID, Source: *body.Content}, nil
}

// FetchTestCase implements ports.ProgramStore.
func (s *HTTPStore) FetchTestCase(ctx context.Context, testID, credential string) (domainexec.TestCase, error) {
	var body testCaseResponse
	if err := s.get(ctx, credential, &body, "test", testID); err != nil {
		return domainexec.TestCase{}, s.fail(ctx, "test", testID, err)
	}
	if body.Snippet.Content == nil {
		return domainexec.TestCase{}, s.fail(ctx, "test", testID, errors.New("response has no snippet content"))
	}
	return domainexec.TestCase{
		ID:      testID,
		Source:  *body.Snippet.Content,
		Inputs:  []string(body.Inputs),
		Outputs: []string(body.Outputs),
	}, nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("store responded %d", e.code)
	}
	return fmt.Sprintf("store responded %d: %s", e.code, e.body)
}

func (s *HTTPStore) get(ctx context.Context, credential string, out interface{}, segments ...string) error {
	endpoint := s.base.JoinPath(segments...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")
	if id := logging.GetCorrelationID(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	s.logger.Debug(ctx, "store request", "url", endpoint.Redacted(), "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// fail maps a fetch failure onto the domain: a refused credential is
// UNAUTHORIZED, everything else NOT_FOUND.
func (s *HTTPStore) fail(ctx context.Context, kind, id string, err error) error {
	s.logger.Warn(ctx, "store fetch failed", "kind", kind, "id", id, "error", err)

	var status *statusError
	if errors.As(err, &status) && (status.code == http.StatusUnauthorized || status.code == http.StatusForbidden) {
		return domainexec.NewError(domainexec.ErrCodeUnauthorized, "store refused credential", err).
			WithContext(map[string]interface{}{kind + "_id": id, "status": status.code})
	}
	return domainexec.NewError(domainexec.ErrCodeNotFound, fmt.Sprintf("%s %s not found", kind, id), err).
		WithContext(map[string]interface{}{kind + "_id": id})
}

// lines decodes a JSON array whose elements may be strings, numbers or
// booleans into their text form.
type lines []string

func (l *lines) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			out = append(out, text)
			continue
		}
		var number json.Number
		if err := json.Unmarshal(item, &number); err == nil {
			out = append(out, number.String())
			continue
		}
		var flag bool
		if err := json.Unmarshal(item, &flag); err == nil {
			out = append(out, strconv.FormatBool(flag))
			continue
		}
		return fmt.Errorf("unsupported line value %s", item)
	}
	*l = out
	return nil
}

var _ ports.ProgramStore = (*HTTPStore)(nil)
