package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/servetls/internal/server/httpserver/handler"
	"github.com/yndnr/servetls/internal/telemetry/logger"
	"github.com/yndnr/servetls/internal/telemetry/metric"
)

func newBufferLogger(t *testing.T) (logger.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	return l, &buf
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("first"), mark("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got := strings.Join(order, ","); got != "first,second,handler" {
		t.Errorf("order = %s", got)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
	}))

	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{"generated", "", false},
		{"client supplied", "trace-abc-123", true},
		{"too long", strings.Repeat("x", 100), false},
		{"control chars", "bad\nid", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("X-Request-ID", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get("X-Request-ID")
			if got != seen {
				t.Errorf("header %q != context %q", got, seen)
			}
			if tt.wantSame {
				if got != tt.header {
					t.Errorf("request ID = %q, want %q", got, tt.header)
				}
				return
			}
			if _, err := ulid.ParseStrict(got); err != nil {
				t.Errorf("request ID %q is not a ULID: %v", got, err)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	log, buf := newBufferLogger(t)
	h := Recover(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "SV-SYS-5000" {
		t.Errorf("X-Error-Code = %q", got)
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Errorf("log = %s", buf.String())
	}
}

func TestRecover_AbortHandler(t *testing.T) {
	h := Recover(logger.Discard())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if r := recover(); r != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", r)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRecover_AfterPartialWrite(t *testing.T) {
	h := Recover(logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "partial")
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	func() {
		defer func() {
			if r := recover(); r != http.ErrAbortHandler {
				t.Errorf("recovered %v, want http.ErrAbortHandler", r)
			}
		}()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	}()

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want the already sent 200", rec.Code)
	}
	if got := rec.Body.String(); got != "partial" {
		t.Errorf("body = %q, want only the partial write", got)
	}
	if got := rec.Header().Get("X-Error-Code"); got != "" {
		t.Errorf("X-Error-Code = %q, want none", got)
	}
}

func TestAccessLog(t *testing.T) {
	log, buf := newBufferLogger(t)
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "nope")
	}), RequestID(), AccessLog(log))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing.txt", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["msg"] != "request completed with client error" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["path"] != "/missing.txt" || entry["method"] != "GET" {
		t.Errorf("entry = %v", entry)
	}
	if entry["status"] != float64(404) || entry["bytes"] != float64(4) {
		t.Errorf("status/bytes = %v/%v", entry["status"], entry["bytes"])
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Error("request_id missing")
	}
	if entry["client_ip"] != "192.0.2.1" {
		t.Errorf("client_ip = %v", entry["client_ip"])
	}
}

func TestMetrics(t *testing.T) {
	reg := metric.NewRegistry()
	h := Metrics(reg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "hello")
	}))

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/a", nil),
		httptest.NewRequest(http.MethodGet, "/missing", nil),
		httptest.NewRequest("BREW", "/a", nil),
	} {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	if got := testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("GET", "200")); got != 1 {
		t.Errorf("GET 200 = %v", got)
	}
	if got := testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("GET", "404")); got != 1 {
		t.Errorf("GET 404 = %v", got)
	}
	if got := testutil.ToFloat64(reg.RequestsTotal.WithLabelValues("OTHER", "200")); got != 1 {
		t.Errorf("OTHER 200 = %v", got)
	}
	if got := testutil.ToFloat64(reg.ResponseBytes); got < 10 {
		t.Errorf("response bytes = %v", got)
	}
}

func TestNetworkACL(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name   string
		allow  []string
		remote string
		want   int
	}{
		{"empty list", nil, "203.0.113.9:5000", http.StatusOK},
		{"single ip", []string{"192.0.2.1"}, "192.0.2.1:5000", http.StatusOK},
		{"cidr", []string{"10.0.0.0/8"}, "10.1.2.3:5000", http.StatusOK},
		{"ipv6", []string{"::1"}, "[::1]:5000", http.StatusOK},
		{"denied", []string{"10.0.0.0/8"}, "192.0.2.1:5000", http.StatusForbidden},
		{"only invalid entries", []string{"not-an-ip"}, "192.0.2.1:5000", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NetworkACL(&NetworkACLConfig{AllowList: tt.allow, Logger: logger.Discard()})(ok)
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			req.RemoteAddr = tt.remote
			req.Header.Set("X-Forwarded-For", "10.0.0.1")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	w := wrapResponseWriter(rec)
	if wrapResponseWriter(w) != w {
		t.Error("wrapResponseWriter should reuse an existing wrapper")
	}

	w.WriteHeader(http.StatusTeapot)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("abc"))

	if w.statusCode != http.StatusTeapot {
		t.Errorf("statusCode = %d, want first status", w.statusCode)
	}
	if w.bytes != 3 {
		t.Errorf("bytes = %d", w.bytes)
	}
	if w.Unwrap() != http.ResponseWriter(rec) {
		t.Error("Unwrap() mismatch")
	}
}

func TestNewAdminRouter(t *testing.T) {
	reg := metric.NewRegistry()
	h := NewAdminRouter(&AdminRouterConfig{Metrics: reg, Logger: logger.Discard()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp handler.Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.RequestID == "" || resp.RequestID != rec.Header().Get("X-Request-ID") {
		t.Errorf("request_id = %q, header = %q", resp.RequestID, rec.Header().Get("X-Request-ID"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "servetls_build_info") {
		t.Error("/metrics missing servetls_build_info")
	}
}

func TestNewAdminRouter_ACL(t *testing.T) {
	h := NewAdminRouter(&AdminRouterConfig{AllowList: []string{"127.0.0.1"}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 for 192.0.2.1", rec.Code)
	}
}
