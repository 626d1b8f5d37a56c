package swaggerkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "trackerhub/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

const rawDoc = `{
	"openapi": "3.1.0",
	"info": {"title": "trackerhub", "version": "0.1.0"},
	"paths": {
		"/conversations/environment/{env}": {
			"post": {"responses": {"200": {"description": "ok"}}}
		},
		"/meta/health": {
			"get": {"responses": {"500": {"description": "custom"}}}
		}
	}
}`

func TestNormalize(t *testing.T) {
	var spec map[string]any
	if err := json.Unmarshal([]byte(rawDoc), &spec); err != nil {
		t.Fatal(err)
	}
	Normalize(spec, "/api/v1")

	if spec["openapi"] != "3.0.3" {
		t.Fatalf("openapi = %v", spec["openapi"])
	}
	servers := spec["servers"].([]any)
	if servers[0].(map[string]any)["url"] != "/api/v1" {
		t.Fatalf("servers = %v", servers)
	}
	schemas := spec["components"].(map[string]any)["schemas"].(map[string]any)
	if _, ok := schemas["ErrorMessage"]; !ok {
		t.Fatal("ErrorMessage schema missing")
	}

	paths := spec["paths"].(map[string]any)
	imp := paths["/conversations/environment/{env}"].(map[string]any)["post"].(map[string]any)["responses"].(map[string]any)
	if _, ok := imp["500"]; !ok {
		t.Fatal("default 500 not injected")
	}
	health := paths["/meta/health"].(map[string]any)["get"].(map[string]any)["responses"].(map[string]any)
	if health["500"].(map[string]any)["description"] != "custom" {
		t.Fatal("existing 500 overwritten")
	}
}

func TestMountServesDocAndRedirect(t *testing.T) {
	mux := chi.NewRouter()
	Register(func(spec map[string]any) { spec["x-mutated"] = true })
	Mount(phttp.AdaptChi(mux), true, func() string { return rawDoc })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json status = %d", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["x-mutated"] != true {
		t.Fatal("mutator not applied")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	if rec.Code != http.StatusPermanentRedirect {
		t.Fatalf("redirect status = %d", rec.Code)
	}
}

func TestMountBadDoc(t *testing.T) {
	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), true, func() string { return "{" })
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMountDisabled(t *testing.T) {
	mux := chi.NewRouter()
	Mount(phttp.AdaptChi(mux), false, func() string { return rawDoc })
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/docs/doc.json", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
