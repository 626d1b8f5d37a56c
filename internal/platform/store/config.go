package store

import (
	"time"

	"trackerhub/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG    PGConfig
	Mongo MongoConfig
	CH    CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// ConnectRetries bounds the boot ping loop, default 20
	ConnectRetries int
	// PingTimeout bounds each boot ping, default 3s
	PingTimeout time.Duration
}

// MongoConfig configures the document store
type MongoConfig struct {
	Enabled bool
	URI     string
	DB      string
	MaxPool uint64
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
	// Role and Tag end up in the clickhouse client info (system.query_log)
	Role string
	Tag  string
}

// FromConfig reads SERVICE_PGSQL_*, SERVICE_MONGO_* and SERVICE_CLICKHOUSE_* from root
// postgres is opened unless useMongo selects the document store
func FromConfig(root config.Conf, useMongo bool, tag string) Config {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	mgCfg := root.Prefix("SERVICE_MONGO_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	c := Config{AppName: "trackerhub-" + tag}
	if useMongo {
		c.Mongo = MongoConfig{
			Enabled: true,
			URI:     mgCfg.MustString("URI"),
			DB:      mgCfg.MayString("DB", "trackerhub"),
			MaxPool: uint64(mgCfg.MayInt("MAX_POOL", 0)),
		}
	} else {
		c.PG = PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		}
	}
	if chCfg.MayBool("ENABLED", false) {
		c.CH = CHConfig{
			Enabled: true,
			URL:     chCfg.MustString("DBURL"),
			Role:    "trackerhub",
			Tag:     tag,
		}
	}
	return c
}
