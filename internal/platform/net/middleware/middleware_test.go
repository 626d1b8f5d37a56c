package middleware_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"trackerhub/internal/platform/logger"
	"trackerhub/internal/platform/net/middleware"
	kit "trackerhub/internal/platform/testkit"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

var logBuf bytes.Buffer

func init() {
	logger.Init(logger.Options{Level: "debug", Format: "json", Writer: &logBuf})
}

func TestRecoverJSON(t *testing.T) {
	h := middleware.RequestID()(middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "rid-panic")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["request_id"] != "rid-panic" || body["error"] != "panic recovered" {
		t.Fatalf("body = %v", body)
	}
	if rec.Header().Get("X-Request-ID") != "rid-panic" {
		t.Fatalf("request id header missing")
	}
}

func TestAccessLogCarriesRequestID(t *testing.T) {
	logBuf.Reset()
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, "ok")
	})
	h := middleware.RequestID()(middleware.RequestLogger(middleware.AccessLogZerolog(middleware.AccessLogOptions{})(next)))

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("X-Request-ID", "rid-log")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated || rec.Body.String() != "ok" {
		t.Fatalf("response altered: %d %q", rec.Code, rec.Body.String())
	}
	out := logBuf.String()
	kit.MustContain(t, out, `"request_id":"rid-log"`)
	kit.MustContain(t, out, `"status":201`)
	kit.MustContain(t, out, `"bytes":2`)
}

func TestMetricsRecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.Metrics)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	r.Handle("/metrics", middleware.MetricsHandler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/42", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := rec.Body.String()
	kit.MustContain(t, out, `trackerhub_http_requests_total{method="GET",route="/items/{id}",status_code="202"} 1`)
	if strings.Contains(out, `route="/items/42"`) {
		t.Fatalf("raw path leaked into labels")
	}
}

func TestCORSPreflight(t *testing.T) {
	h := middleware.CORS(middleware.CORSOptions{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/conversations/environment/staging", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" && got != "https://example.com" {
		t.Fatalf("allow origin = %q", got)
	}
}

func TestHeartbeatAndStripSlashes(t *testing.T) {
	var seen string
	h := middleware.Heartbeat("/health")(middleware.StripSlashes()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r.URL.Path
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("heartbeat = %d", rec.Code)
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a/b/", nil))
	if seen != "/a/b" {
		t.Fatalf("unexpected path %q", seen)
	}
}
