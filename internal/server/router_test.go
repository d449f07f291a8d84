package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRouterRegistersHealthRoute(t *testing.T) {
	router := newRouter("/api")
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json content type, got %q", ct)
	}
}

func TestNewRouterStripsTrailingSlashes(t *testing.T) {
	router := newRouter("/api")
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/settings/", nil)
	router.ServeHTTP(rr, req)

	// With no database configured the handler still owns the route.
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from the unconfigured settings route, got %d", rr.Code)
	}
}
