package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/snippetrunner/internal/config"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/logging"
)

func TestBuildServerServesHealth(t *testing.T) {
	cfg := config.Default()
	cfg.Kafka.Brokers = nil

	stderr := &bytes.Buffer{}
	log, err := logging.New(logging.Options{Writer: stderr, Level: "debug"})
	require.NoError(t, err)

	stdout := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(stdout)

	server, cleanup, err := buildServer(&cfg, log, cmd)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, stdout.String(), "/healthz")
}

func TestBuildServerWithDirectoryStore(t *testing.T) {
	dir := t.TempDir()
	writeTemp(t, dir, "double.ps", "let n: number = read();\nprintln(n * 2);\n")
	writeTemp(t, dir, "double.yaml", "file: double.ps\ninputs: [\"4\"]\noutputs: [\"8\"]\n")

	cfg := config.Default()
	cfg.Store.Dir = dir

	log, err := logging.New(logging.Options{Writer: &bytes.Buffer{}})
	require.NoError(t, err)

	server, cleanup, err := buildServer(&cfg, log, &cobra.Command{})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	req := httptest.NewRequest(http.MethodPost, "/execute-test/double", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"result":"SUCCESS","outputMismatch":[]}`, rec.Body.String())
}

func TestBuildServerRejectsUnknownEngineVersion(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Version = "0.9"

	log, err := logging.New(logging.Options{Writer: &bytes.Buffer{}})
	require.NoError(t, err)

	_, _, err = buildServer(&cfg, log, &cobra.Command{})
	require.Error(t, err)
}

func TestServeFailsOnInvalidConfig(t *testing.T) {
	cfg := writeTemp(t, t.TempDir(), "snippetrunner.yaml", "store:\n  base_url: not-a-url\n")

	res := execute(t, "", "--config", cfg, "serve")

	require.Error(t, res.err)
	require.Contains(t, res.err.Error(), "store.base_url")
}
