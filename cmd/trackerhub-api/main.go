// @title         trackerhub API
// @version       0.1.0
// @description   Conversation import, activity back-fill and live tracker endpoints

package main

import (
	"context"

	"trackerhub/internal/modkit"
	"trackerhub/internal/modkit/repokit"
	"trackerhub/internal/platform/config"
	"trackerhub/internal/platform/logger"
	phttp "trackerhub/internal/platform/net/http"
	"trackerhub/internal/platform/store"

	"trackerhub/internal/services/api"
)

func main() {
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	backend := root.Prefix("CORE_STORE_").MayEnum("BACKEND", modkit.BackendPG, modkit.BackendPG, modkit.BackendMongo)

	l := logger.Get()

	st, err := store.Open(context.Background(), store.FromConfig(root, backend == modkit.BackendMongo, "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()
	repokit.MustGuard(context.Background(), st)

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			Backend:        backend,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			EnableMetrics:  apiCfg.MayBool("METRICS", true),
		},
	)

	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
