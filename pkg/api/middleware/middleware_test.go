package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestIDGenerated(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("no request ID in context")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header %q, context %q", got, seen)
	}
}

func TestRequestIDSanitized(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "ok-id\r\nSet-Cookie: evil")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "ok-idSet-Cookieevil" {
		t.Errorf("sanitized ID = %q", seen)
	}
}

type recordedRequest struct {
	method, path, status string
}

type fakeRecorder struct {
	requests []recordedRequest
}

func (f *fakeRecorder) RecordHTTPRequest(method, path, status string, _ time.Duration) {
	f.requests = append(f.requests, recordedRequest{method, path, status})
}

func TestMetricsMiddleware(t *testing.T) {
	rec := &fakeRecorder{}
	h := Metrics(rec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/search", nil))

	if len(rec.requests) != 1 {
		t.Fatalf("recorded %d requests, want 1", len(rec.requests))
	}
	got := rec.requests[0]
	if got.method != "GET" || got.path != "/v1/search" || got.status != "418" {
		t.Errorf("recorded %+v", got)
	}
}

func TestMetricsMiddlewareNilRecorder(t *testing.T) {
	called := false
	h := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("handler not reached with nil recorder")
	}
}
