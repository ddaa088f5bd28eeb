package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akademix/akademix/internal/api/middleware"
)

func authedHandler(auth *middleware.APIKeyAuth) http.Handler {
	return auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("")
	if auth.Enabled() {
		t.Fatalf("Enabled() = true with no keys, want false")
	}

	rec := httptest.NewRecorder()
	authedHandler(auth).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jurusan", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d with auth disabled, want 200", rec.Code)
	}
}

func TestAPIKeyAuth_ValidKey(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("secret-key, other-key")
	h := authedHandler(auth)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jurusan", nil)
	req.Header.Set("Authorization", "Bearer secret-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("Bearer status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/jurusan", nil)
	req.Header.Set("X-API-Key", "other-key")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("X-API-Key status = %d, want 200", rec.Code)
	}
}

func TestAPIKeyAuth_InvalidKey(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("secret-key")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jurusan", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec := httptest.NewRecorder()
	authedHandler(auth).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got == "" {
		t.Errorf("WWW-Authenticate header missing")
	}
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("secret-key")

	rec := httptest.NewRecorder()
	authedHandler(auth).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jurusan", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAPIKeyAuth_PublicPaths(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("secret-key")
	h := authedHandler(auth)

	for _, path := range []string{"/health", "/version"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("status for %s = %d, want 200 without a key", path, rec.Code)
		}
	}
}

func TestAPIKeyAuth_AddRemoveKey(t *testing.T) {
	auth := middleware.NewAPIKeyAuth("")
	auth.AddKey("runtime-key")
	if !auth.Enabled() {
		t.Fatalf("Enabled() = false after AddKey, want true")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/jurusan", nil)
	req.Header.Set("X-API-Key", "runtime-key")
	rec := httptest.NewRecorder()
	authedHandler(auth).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d for added key, want 200", rec.Code)
	}

	auth.RemoveKey("runtime-key")
	if auth.Enabled() {
		t.Errorf("Enabled() = true after removing the last key, want false")
	}
}
