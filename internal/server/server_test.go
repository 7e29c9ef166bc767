// ABOUTME: Tests for server wiring, health, challenge, middleware, and lifecycle
// ABOUTME: Shared test helpers for the handler test files live here

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cosmohq/cosmo-server/internal/config"
	"github.com/cosmohq/cosmo-server/internal/dispatch"
	"github.com/cosmohq/cosmo-server/internal/genai"
)

// fakeAI implements aiClient for testing
type fakeAI struct {
	configured bool
	reply      string
	replyErr   error
	image      *genai.Image
	imageErr   error
	edited     *genai.Image
	editErr    error

	lastPrompt     string
	lastEditPrompt string
	lastSource     *genai.Image
}

func (f *fakeAI) Configured() bool { return f.configured }

func (f *fakeAI) ChatComplete(ctx context.Context, history []genai.Turn, systemInstruction string, temperature, topP float64) (string, error) {
	if f.replyErr != nil {
		return "", f.replyErr
	}
	return f.reply, nil
}

func (f *fakeAI) GenerateImage(ctx context.Context, prompt string) (*genai.Image, error) {
	f.lastPrompt = prompt
	if f.imageErr != nil {
		return nil, f.imageErr
	}
	return f.image, nil
}

func (f *fakeAI) EditImage(ctx context.Context, prompt string, source *genai.Image) (*genai.Image, error) {
	f.lastEditPrompt = prompt
	f.lastSource = source
	if f.editErr != nil {
		return nil, f.editErr
	}
	return f.edited, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{
			HTTPAddr: "localhost:0",
		},
		Database: config.DatabaseConfig{
			Path: filepath.Join(t.TempDir(), "test.db"),
		},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWithConfig(t, testConfig(t))
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(cfg, logger)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	t.Cleanup(func() { srv.store.Close() })
	return srv
}

// injectFakeAI swaps the AI client, rebuilding the dispatcher around it.
func injectFakeAI(srv *Server, fake *fakeAI) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv.ai = fake
	srv.dispatcher = dispatch.New(srv.store, fake, srv.gate, srv.challenge, dispatch.Options{}, logger)
}

// doJSON runs a request through the full middleware stack.
func doJSON(t *testing.T, srv *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, false, resp["ai_configured"])
	assert.Equal(t, true, resp["db_connected"])
}

func TestHandleHealth_AIConfigured(t *testing.T) {
	cfg := testConfig(t)
	cfg.AI.APIKey = "test-key"
	srv := newTestServerWithConfig(t, cfg)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, resp["ai_configured"])
}

func TestHandleHealth_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/health", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleChallenge_InitiallyPending(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/challenge", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[map[string]any](t, rec)
	assert.Equal(t, false, resp["completed"])
	assert.Equal(t, float64(0), resp["points"])
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodOptions, "/api/tasks", nil, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-License-Key")
}

func TestRequestIDHeader(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", nil, nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_RunAndGracefulShutdown(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run(ctx)
	}()

	// Give the listener time to come up, then trigger shutdown
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}
