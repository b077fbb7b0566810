// Package testutil provides reusable helpers for integration tests
// that exercise the full server stack against the in-memory store.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harikeshranjan/TodoX/internal/auth"
	"github.com/harikeshranjan/TodoX/internal/core"
	"github.com/harikeshranjan/TodoX/internal/storage"
	"github.com/harikeshranjan/TodoX/internal/web"
)

// StartServer wires a complete server (real services, in-memory store)
// and returns its handler.
func StartServer(t *testing.T) http.Handler {
	t.Helper()

	gin.SetMode(gin.TestMode)
	store := storage.NewMemoryStore()
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	authSvc := auth.New(store, issuer)
	tasks := core.NewTaskService(store)
	srv := web.NewServer(authSvc, tasks, web.Options{SecureCookies: false, CookieTTL: time.Hour})
	return srv.Handler()
}

// DoJSON performs a JSON request against the handler. A nil body sends
// an empty request; a non-nil session cookie authenticates it.
func DoJSON(t *testing.T, h http.Handler, method, path string, body any, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	buf := bytes.NewBuffer(nil)
	if body != nil {
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(session)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// RegisterAndLogin creates an account and returns its session cookie.
func RegisterAndLogin(t *testing.T, h http.Handler, username, email, password string) *http.Cookie {
	t.Helper()

	w := DoJSON(t, h, http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%s)", username, w.Code, w.Body.String())
	}

	w = DoJSON(t, h, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d (%s)", username, w.Code, w.Body.String())
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == "token" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("login %s: no session cookie returned", username)
	return nil
}

// Decode parses a JSON response body into a generic map.
func Decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}
