// Package module wires live trackers into the API using modkit
package module

import (
	modkit "trackerhub/internal/modkit"
	"trackerhub/internal/modkit/httpkit"
	"trackerhub/internal/modkit/repokit"
	str "trackerhub/internal/platform/strings"
	imports "trackerhub/internal/services/imports/domain"
	"trackerhub/internal/services/trackers/domain"
	trackershttp "trackerhub/internal/services/trackers/http"
	"trackerhub/internal/services/trackers/repo"
	trackersvc "trackerhub/internal/services/trackers/service"
)

// Module implements the trackers module
type Module struct {
	b    modkit.Built
	opts Options
	svc  *trackersvc.Svc
}

// New constructs the trackers module
// pass the imports utterance logger with modkit.WithPorts to log appended utterances
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("trackers"),
		modkit.WithPrefix("/projects/{projectId}/conversations/{senderId}"),
	}, opts...)...)
	o := FromConfig(deps.Cfg)

	var st domain.Store
	if deps.UseMongo() {
		st = repo.NewMongo(deps.Mongo)
	} else {
		st = repokit.MustBind(repo.NewPG(), deps.PG)
	}

	ul, _ := b.Ports.(imports.UtteranceLogger)
	svc := trackersvc.New(st, ul, trackersvc.Config{LogUtterances: o.LogUtterances && ul != nil})

	deps.Log.Info().
		Str("module", b.Name).
		Bool("mongo", deps.UseMongo()).
		Bool("log_utterances", o.LogUtterances && ul != nil).
		Msg("trackers module ready")

	return &Module{b: b, opts: o, svc: svc}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) {
		trackershttp.Register(rr, m.svc, m.opts.MaxBody)
	})
}

// Ports exposes the tracker service
func (m *Module) Ports() any { return domain.Service(m.svc) }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.b.Name, "module name") }
