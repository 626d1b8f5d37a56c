package module

import (
	"trackerhub/internal/platform/config"
	trackershttp "trackerhub/internal/services/trackers/http"
)

// Options holds configuration settings for the trackers module
type Options struct {
	LogUtterances bool
	MaxBody       int64
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_TRACKERS_")
	return Options{
		LogUtterances: c.MayBool("LOG_UTTERANCES", true),
		MaxBody:       c.MayBytes("MAX_BODY", trackershttp.DefaultMaxBody),
	}
}
