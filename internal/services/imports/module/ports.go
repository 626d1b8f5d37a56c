package module

import "trackerhub/internal/services/imports/domain"

// Ports is what imports exposes to other modules and the import CLI
type Ports struct {
	Importer   domain.Importer
	Resolver   domain.ModelResolver
	Utterances domain.UtteranceLogger
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
