package modkit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "trackerhub/internal/platform/net/http"
	mongox "trackerhub/internal/platform/store/mongo"

	"github.com/go-chi/chi/v5"
)

func TestBuildDefaults(t *testing.T) {
	t.Parallel()
	b := Build()
	if b.Name != "" || b.Prefix != "" || b.Ports != nil || len(b.Mw) != 0 {
		t.Fatalf("unexpected defaults: %+v", b)
	}
	b.Register(nil)
}

func TestBuildLaterOptionsWin(t *testing.T) {
	t.Parallel()
	type ports struct{ X int }
	b := Build(WithName("a"), WithPrefix("/a"), WithName("imports"), WithPorts(ports{X: 7}))
	if b.Name != "imports" || b.Prefix != "/a" {
		t.Fatalf("got name=%q prefix=%q", b.Name, b.Prefix)
	}
	if p, ok := b.Ports.(ports); !ok || p.X != 7 {
		t.Fatalf("ports = %#v", b.Ports)
	}
}

func TestBuildCopiesMiddleware(t *testing.T) {
	t.Parallel()
	calls := 0
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			next.ServeHTTP(w, r)
		})
	}
	src := []func(http.Handler) http.Handler{mw}
	b := Build(WithMiddlewares(src...))
	src[0] = nil
	if b.Mw[0] == nil {
		t.Fatal("Built.Mw aliases the caller slice")
	}
}

func TestBuiltMount(t *testing.T) {
	t.Parallel()
	hits := 0
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			next.ServeHTTP(w, r)
		})
	}
	extra := func(r phttp.Router) {
		r.Get("/extra", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })
	}
	b := Build(WithPrefix("/mod"), WithMiddlewares(mw), WithRegister(extra))

	mux := chi.NewRouter()
	b.Mount(phttp.AdaptChi(mux), func(r phttp.Router) {
		r.Get("/own", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	})

	for path, want := range map[string]int{"/mod/own": http.StatusOK, "/mod/extra": http.StatusAccepted} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != want {
			t.Fatalf("%s: status %d, want %d", path, rec.Code, want)
		}
	}
	if hits != 2 {
		t.Fatalf("middleware hits = %d, want 2", hits)
	}
}

func TestDepsUseMongo(t *testing.T) {
	t.Parallel()
	if (Deps{Backend: BackendMongo}).UseMongo() {
		t.Fatal("mongo backend without a client must not be selected")
	}
	if (Deps{Backend: BackendPG, Mongo: &mongox.Mongo{}}).UseMongo() {
		t.Fatal("pg backend selected mongo")
	}
	if !(Deps{Backend: BackendMongo, Mongo: &mongox.Mongo{}}).UseMongo() {
		t.Fatal("mongo backend not selected")
	}
}
