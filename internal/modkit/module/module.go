// Package module holds the module contract and a process registry for cross wiring ports
package module

import (
	phttp "trackerhub/internal/platform/net/http"
)

// Module mirrors modkit.Module so callers that only wire ports avoid importing modkit
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
