package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthReportsReadiness(t *testing.T) {
	ready := error(nil)
	e := NewRouter([]string{"*"}, func(context.Context) error { return ready })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	ready = errBoom
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
