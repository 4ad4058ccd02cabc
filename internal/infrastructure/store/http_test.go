package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/logging"
)

func newStoreServer(t *testing.T, handler http.HandlerFunc) *HTTPStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewHTTPStore(srv.URL+"/snippets/", WithTimeout(time.Second))
	require.NoError(t, err)
	return s
}

func TestFetchProgram(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth, gotCorrelation string
	s := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotCorrelation = r.Header.Get("X-Correlation-ID")
		_, _ = w.Write([]byte(`{"content":"println(1);","name":"ignored"}`))
	})

	ctx := logging.WithCorrelationID(context.Background(), "c-9")
	program, err := s.FetchProgram(ctx, "42", "secret")
	require.NoError(t, err)
	require.Equal(t, domainexec.Program{ID: "42", Source: "println(1);"}, program)
	require.Equal(t, "/snippets/42", gotPath)
	require.Equal(t, "Bearer secret", gotAuth)
	require.Equal(t, "c-9", gotCorrelation)
}

func TestFetchTestCase(t *testing.T) {
	t.Parallel()

	var gotPath string
	s := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"snippet":{"content":"print(read())"},"inputs":["hi", 3],"outputs":[true, "hi"]}`))
	})

	tc, err := s.FetchTestCase(context.Background(), "7", "secret")
	require.NoError(t, err)
	require.Equal(t, "/snippets/test/7", gotPath)
	require.Equal(t, "7", tc.ID)
	require.Equal(t, "print(read())", tc.Source)
	require.Equal(t, []string{"hi", "3"}, tc.Inputs)
	require.Equal(t, []string{"true", "hi"}, tc.Outputs)
}

func TestFetchErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		code   domainexec.ErrorCode
	}{
		{"unauthorized", http.StatusUnauthorized, "", domainexec.ErrCodeUnauthorized},
		{"forbidden", http.StatusForbidden, "", domainexec.ErrCodeUnauthorized},
		{"missing", http.StatusNotFound, "no such snippet", domainexec.ErrCodeNotFound},
		{"server error", http.StatusInternalServerError, "", domainexec.ErrCodeNotFound},
		{"bad json", http.StatusOK, "{not json", domainexec.ErrCodeNotFound},
		{"no content", http.StatusOK, `{"name":"x"}`, domainexec.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newStoreServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := s.FetchProgram(context.Background(), "42", "secret")
			require.Error(t, err)
			require.Equal(t, tt.code, domainexec.CodeOf(err))
		})
	}
}

func TestFetchUnreachableStoreIsNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s, err := NewHTTPStore(url, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = s.FetchTestCase(context.Background(), "1", "secret")
	require.ErrorIs(t, err, domainexec.ErrNotFound)
}

func TestNewHTTPStoreRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := NewHTTPStore("ftp://example.com")
	require.Error(t, err)
	_, err = NewHTTPStore("://nope")
	require.Error(t, err)
}
