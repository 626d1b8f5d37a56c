//go:build integration_pg || integration_mongo

// Package storetest starts throwaway databases for integration tests
package storetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"trackerhub/internal/platform/store"
	mongox "trackerhub/internal/platform/store/mongo"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Schema is the relational layout the pg repos expect
const Schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         text PRIMARY KEY,
	project_id text NOT NULL,
	env        text,
	doc        jsonb NOT NULL,
	created_at timestamptz,
	updated_at timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS conversations_env_updated_at ON conversations (env, updated_at DESC);

CREATE TABLE IF NOT EXISTS projects (
	id         text PRIMARY KEY,
	nlu_models text[]
);

CREATE TABLE IF NOT EXISTS nlu_models (
	id       text PRIMARY KEY,
	language text
);

CREATE TABLE IF NOT EXISTS activity (
	id         uuid PRIMARY KEY,
	model_id   text NOT NULL,
	text       text NOT NULL,
	intent     text,
	confidence double precision,
	entities   jsonb,
	created_at timestamptz NOT NULL,
	updated_at timestamptz NOT NULL
);
`

// start runs image and returns host:port of the first exposed port
func start(t *testing.T, req tc.ContainerRequest, port string) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	mapped, err := c.MappedPort(ctx, port)
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}
	return fmt.Sprintf("%s:%s", host, mapped.Port())
}

// Postgres starts postgres:16-alpine, applies Schema and returns the pool seam
func Postgres(t *testing.T) store.TxRunner {
	t.Helper()
	addr := start(t, tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(2 * time.Minute),
	}, "5432/tcp")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	st, err := store.Open(ctx, store.Config{
		AppName: "trackerhub-integration",
		PG: store.PGConfig{
			Enabled: true,
			URL:     "postgres://postgres:postgres@" + addr + "/postgres?sslmode=disable",
		},
	})
	if err != nil {
		t.Fatalf("open pg: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if _, err := st.PG.Exec(ctx, Schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return st.PG
}

// Mongo starts mongo:7 and returns a client on a fresh database
func Mongo(t *testing.T) *mongox.Mongo {
	t.Helper()
	addr := start(t, tc.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(2 * time.Minute),
	}, "27017/tcp")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	m, err := mongox.Open(ctx, mongox.Config{URI: "mongodb://" + addr, DB: "trackerhub_test"})
	if err != nil {
		t.Fatalf("open mongo: %v", err)
	}
	t.Cleanup(func() { _ = m.Close(context.Background()) })
	return m
}
