package modkit

import (
	"trackerhub/internal/modkit/repokit"
	"trackerhub/internal/platform/config"
	"trackerhub/internal/platform/logger"
	"trackerhub/internal/platform/store"
	mongox "trackerhub/internal/platform/store/mongo"
)

// Storage backends a deployment can select for conversations and the catalog
const (
	BackendPG    = "pg"
	BackendMongo = "mongo"
)

// Deps holds core dependencies passed to modules
// optional stores are nil when disabled
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	Backend string

	PG    repokit.TxRunner
	Mongo *mongox.Mongo
	CH    store.Clickhouse
}

// FromStore fills the storage fields from an opened store
func FromStore(st *store.Store, cfg config.Conf, backend string) Deps {
	d := Deps{Log: st.Log, Cfg: cfg, Backend: backend}
	d.PG = st.PG
	d.Mongo = st.Mongo
	d.CH = st.CH
	return d
}

// UseMongo reports whether repos should bind to the document store
func (d Deps) UseMongo() bool { return d.Backend == BackendMongo && d.Mongo != nil }
