package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	m := NewMiddleware()

	var seen string
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if seen == "" {
		t.Fatal("handler saw no request ID")
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status not propagated, got %d", rec.Code)
	}
	if m.TotalRequests() != 1 {
		t.Fatalf("expected 1 tracked request, got %d", m.TotalRequests())
	}
}

func TestGetRequestIDUntracedContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if id := GetRequestID(req.Context()); id != "" {
		t.Fatalf("expected empty ID, got %q", id)
	}
}
