// Command trackerhub-import runs one conversation import from a file against the configured store
package main

import (
	"context"
	"os"

	"trackerhub/internal/modkit"
	"trackerhub/internal/modkit/module"
	"trackerhub/internal/modkit/repokit"
	"trackerhub/internal/platform/config"
	"trackerhub/internal/platform/logger"
	"trackerhub/internal/platform/store"

	imports "trackerhub/internal/services/imports/domain"
	importsmod "trackerhub/internal/services/imports/module"
)

func main() {
	root := config.New()
	backend := root.Prefix("CORE_STORE_").MayEnum("BACKEND", modkit.BackendPG, modkit.BackendPG, modkit.BackendMongo)

	l := logger.Named("import-cli")

	ctx := context.Background()
	st, err := store.Open(ctx, store.FromConfig(root, backend == modkit.BackendMongo, "import"), store.WithLogger(*l))
	if err != nil {
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	repokit.MustGuard(ctx, st)

	mod := importsmod.New(modkit.FromStore(st, root, backend))
	imp := module.MustPortsOf[imports.Importer](mod)

	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, imp)
	if err := st.Close(ctx); err != nil {
		l.Error().Err(err).Msg("failed to close store")
	}
	os.Exit(code)
}
