// ABOUTME: Tests for the license gate HTTP middleware
// ABOUTME: Verifies 403 body shape and pass-through behavior

package license

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_AllowsValidKey(t *testing.T) {
	gate := NewGate([]string{"COSMO-1234"}, nil)

	called := false
	handler := Middleware(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	req.Header.Set(HeaderName, "COSMO-1234")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.True(t, called, "handler should run for a valid key")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_RejectsMissingKey(t *testing.T) {
	gate := NewGate([]string{"COSMO-1234"}, nil)

	handler := Middleware(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without a key")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ForbiddenMessage, body["response"])
}

func TestMiddleware_RejectsWrongKey(t *testing.T) {
	gate := NewGate([]string{"COSMO-1234"}, nil)

	handler := Middleware(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with a wrong key")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	req.Header.Set(HeaderName, "WRONG")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddleware_DisabledGatePassesThrough(t *testing.T) {
	gate := NewGate(nil, nil)

	called := false
	handler := Middleware(gate)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.True(t, called, "disabled gate should pass requests through")
}
