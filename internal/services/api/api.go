// Package api provides the HTTP API for the application
package api

import (
	"trackerhub/internal/platform/config"
	"trackerhub/internal/platform/logger"
	phttp "trackerhub/internal/platform/net/http"
	"trackerhub/internal/platform/net/middleware"
	"trackerhub/internal/platform/store"

	"trackerhub/internal/modkit"
	"trackerhub/internal/modkit/httpkit"
	"trackerhub/internal/modkit/module"
	"trackerhub/internal/modkit/swaggerkit"

	"trackerhub/internal/services/api/docs"
	metamod "trackerhub/internal/services/api/meta/module"
	importsmod "trackerhub/internal/services/imports/module"
	trackersmod "trackerhub/internal/services/trackers/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	Backend        string
	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.FromStore(opt.Store, opt.Config, opt.Backend)
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// imports owns the utterance logger trackers write through
	importsMod := importsmod.New(deps)
	module.RegisterAll(importsMod)
	ports, ok := module.PortsAs[importsmod.Ports](importsMod.Name())
	if !ok {
		panic("api: imports ports not registered")
	}

	mods := []module.Module{
		metamod.New(deps),
		importsMod,
		trackersmod.New(deps, modkit.WithPorts(ports.Utterances)),
	}
	module.RegisterAll(mods...)

	swaggerkit.Mount(r, opt.EnableSwagger, docs.SwaggerInfo.ReadDoc)
	phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
	if opt.EnableMetrics {
		r.Handle("/metrics", middleware.MetricsHandler())
	}

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
