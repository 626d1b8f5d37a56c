// Package module wires meta endpoints into the API using a tiny module
package module

import (
	modkit "trackerhub/internal/modkit"
	"trackerhub/internal/modkit/httpkit"
	str "trackerhub/internal/platform/strings"
	ptime "trackerhub/internal/platform/time"

	metahttp "trackerhub/internal/services/api/meta/http"
)

// ServiceName is reported by the health and service endpoints
const ServiceName = "trackerhub-api"

// Module implements the modkit.Module interface
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	md := metahttp.Deps{
		ServiceName: ServiceName,
		StartedAt:   ptime.Now(),
	}
	// keep typed nils out of the any fields
	if deps.PG != nil {
		md.PG = deps.PG
	}
	if deps.Mongo != nil {
		md.Mongo = deps.Mongo
	}
	if deps.CH != nil {
		md.CH = deps.CH
	}
	return &Module{b: b, deps: md}
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.b.Name, "meta") }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
