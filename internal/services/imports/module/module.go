// Package module wires imports into the API using modkit
package module

import (
	"context"
	"time"

	modkit "trackerhub/internal/modkit"
	"trackerhub/internal/modkit/httpkit"
	"trackerhub/internal/modkit/repokit"
	str "trackerhub/internal/platform/strings"
	"trackerhub/internal/services/imports/domain"
	importshttp "trackerhub/internal/services/imports/http"
	"trackerhub/internal/services/imports/repo"
	importsvc "trackerhub/internal/services/imports/service"
)

// Module implements the imports module
type Module struct {
	b     modkit.Built
	opts  Options
	svc   *importsvc.Svc
	ports Ports
}

// New constructs the imports module on the configured backend
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("imports"), modkit.WithPrefix("/conversations")}, opts...)...)
	o := FromConfig(deps.Cfg)

	st := storage(deps)
	var activity domain.ActivityWriter = st
	if o.CHMirror && deps.CH != nil {
		activity = repo.NewCHMirror(st, deps.CH, o.CHTable)
	}
	svc := importsvc.New(st, st, activity, importsvc.Config{Workers: o.Workers})

	deps.Log.Info().
		Str("module", b.Name).
		Bool("mongo", deps.UseMongo()).
		Bool("ch_mirror", o.CHMirror && deps.CH != nil).
		Int("workers", o.Workers).
		Msg("imports module ready")

	return &Module{
		b:     b,
		opts:  o,
		svc:   svc,
		ports: Ports{Importer: svc, Resolver: svc, Utterances: svc},
	}
}

func storage(deps modkit.Deps) repo.Storage {
	if !deps.UseMongo() {
		return repokit.MustBind(repo.NewPG(), deps.PG)
	}
	m := repo.NewMongo(deps.Mongo)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.EnsureIndexes(ctx); err != nil {
		deps.Log.Warn().Err(err).Msg("imports: ensure mongo indexes")
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		importshttp.Register(rr, m.svc, m.opts.MaxBody)
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }
