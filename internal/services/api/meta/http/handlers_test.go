package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "trackerhub/internal/platform/net/http"
	kit "trackerhub/internal/platform/testkit"
	ptime "trackerhub/internal/platform/time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func get(t *testing.T, d Deps, path string) *httptest.ResponseRecorder {
	t.Helper()
	mux := chi.NewRouter()
	phttp.AdaptChi(mux).Route("/meta", func(r phttp.Router) { Register(r, d) })
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(stdhttp.MethodGet, path, nil))
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("%s: status %d", path, rec.Code)
	}
	return rec
}

func TestHealthAndService(t *testing.T) {
	now := time.Date(2025, 9, 3, 13, 5, 0, 0, time.UTC)
	kit.Swap(t, &ptime.Now, func() time.Time { return now })
	d := Deps{ServiceName: "trackerhub-api", StartedAt: now.Add(-5 * time.Minute)}

	var h HealthResponse
	if err := json.Unmarshal(get(t, d, "/meta/health").Body.Bytes(), &h); err != nil {
		t.Fatal(err)
	}
	if !h.OK || h.Service != "trackerhub-api" || h.Now != "2025-09-03T13:05:00Z" || h.Started != "2025-09-03T13:00:00Z" {
		t.Fatalf("health = %+v", h)
	}

	var s ServiceResponse
	if err := json.Unmarshal(get(t, d, "/meta/service").Body.Bytes(), &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "trackerhub-api" || s.Uptime != 300 {
		t.Fatalf("service = %+v", s)
	}

	kit.MustContain(t, get(t, d, "/meta/version").Body.String(), `"service":"trackerhub-api"`)
}

func TestReady(t *testing.T) {
	cases := []struct {
		name string
		deps Deps
		want string
	}{
		{"nothing configured", Deps{}, "ok"},
		{"all up", Deps{PG: pinger{}, Mongo: pinger{}, CH: pinger{}}, "ok"},
		{"cannot ping", Deps{PG: pinger{}, CH: struct{}{}}, "degraded"},
		{"one down", Deps{PG: pinger{}, Mongo: pinger{err: errors.New("down")}}, "fail"},
	}
	for _, tc := range cases {
		var r ReadyResponse
		if err := json.Unmarshal(get(t, tc.deps, "/meta/ready").Body.Bytes(), &r); err != nil {
			t.Fatal(err)
		}
		if r.Status != tc.want || len(r.Checks) != 3 {
			t.Fatalf("%s: ready = %+v", tc.name, r)
		}
	}
}

func TestReadyReportsFailure(t *testing.T) {
	var r ReadyResponse
	body := get(t, Deps{CH: pinger{err: errors.New("connection refused")}}, "/meta/ready").Body.Bytes()
	if err := json.Unmarshal(body, &r); err != nil {
		t.Fatal(err)
	}
	ch := r.Checks[2]
	if ch.Name != "ch" || ch.Status != "fail" || ch.Error != "connection refused" {
		t.Fatalf("ch check = %+v", ch)
	}
	if r.Checks[0].Status != "skipped" {
		t.Fatalf("pg check = %+v", r.Checks[0])
	}
}
