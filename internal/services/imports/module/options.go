package module

import (
	"trackerhub/internal/platform/config"
	importshttp "trackerhub/internal/services/imports/http"
	"trackerhub/internal/services/imports/repo"
	importsvc "trackerhub/internal/services/imports/service"
)

// Options holds configuration settings for the imports module
type Options struct {
	Workers  int
	MaxBody  int64
	CHMirror bool
	CHTable  string
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_IMPORTS_")
	return Options{
		Workers:  c.MayInt("WORKERS", importsvc.DefaultWorkers),
		MaxBody:  c.MayBytes("MAX_BODY", importshttp.DefaultMaxBody),
		CHMirror: c.MayBool("CH_MIRROR", false),
		CHTable:  c.MayString("CH_TABLE", repo.DefaultMirrorTable),
	}
}
