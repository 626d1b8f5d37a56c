package domain

import (
	"context"
	"time"

	"trackerhub/internal/core/nlu"
	"trackerhub/internal/core/tracker"
)

// ConversationStore is where imported conversations live
type ConversationStore interface {
	// LatestUpdatedAt is the newest updatedAt in env, nil when env has no conversations
	LatestUpdatedAt(ctx context.Context, env Env) (*time.Time, error)
	// Replace writes c in full, inserting when the id is new
	Replace(ctx context.Context, c Conversation) error
}

// Catalog is the read-only view of projects and their models
type Catalog interface {
	Projects(ctx context.Context) ([]nlu.Project, error)
	Models(ctx context.Context) ([]nlu.Model, error)
	// ProjectModels lists one project's models in the project's order
	ProjectModels(ctx context.Context, projectID string) ([]nlu.Model, error)
}

// ActivityWriter appends training log entries
type ActivityWriter interface {
	// InsertMany writes recs as one bulk insert
	InsertMany(ctx context.Context, recs []ActivityRecord) error
}

// Importer runs imports and reports the env watermark
type Importer interface {
	Import(ctx context.Context, in ImportInput) (Report, error)
	Watermark(ctx context.Context, env Env) (int64, error)
}

// ModelResolver resolves a single (project, language) pair against the store
type ModelResolver interface {
	ResolveModel(ctx context.Context, projectID, language string) (modelID string, ok bool, err error)
}

// UtteranceLogger writes user utterances of a live conversation to activity
type UtteranceLogger interface {
	LogUtterances(ctx context.Context, projectID string, events []tracker.Event) (int, error)
}
