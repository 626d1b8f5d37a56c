// Package mongo opens the document store used by the mongo-backed repos
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Config configures the mongo client
type Config struct {
	URI     string
	DB      string
	MaxPool uint64
	AppName string
	// Timeout bounds the boot ping, default 10s
	Timeout time.Duration
}

// Mongo holds the client and the selected database
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// Open connects and pings the primary
func Open(ctx context.Context, cfg Config) (*Mongo, error) {
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, errors.New("mongo: empty uri")
	}
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPool > 0 {
		opts.SetMaxPoolSize(cfg.MaxPool)
	}
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := cfg.DB
	if db == "" {
		db = "trackerhub"
	}
	return &Mongo{Client: client, DB: client.Database(db)}, nil
}

// Collection returns a handle on the named collection of the selected database
func (m *Mongo) Collection(name string) *mongo.Collection { return m.DB.Collection(name) }

// Ping checks the primary is reachable
func (m *Mongo) Ping(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return errors.New("mongo: nil client")
	}
	return m.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (m *Mongo) Close(ctx context.Context) error {
	if m == nil || m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}
