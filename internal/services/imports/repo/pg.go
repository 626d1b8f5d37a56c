// Package repo provides the import pipeline stores for postgres, mongo and the clickhouse mirror
package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trackerhub/internal/core/nlu"
	"trackerhub/internal/modkit/repokit"
	perr "trackerhub/internal/platform/errors"
	"trackerhub/internal/platform/store"
	"trackerhub/internal/services/imports/domain"
)

// Storage is everything an import reads and writes
type Storage interface {
	domain.ConversationStore
	domain.Catalog
	domain.ActivityWriter
}

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// LatestUpdatedAt implements domain.ConversationStore
func (s *pg) LatestUpdatedAt(ctx context.Context, env domain.Env) (*time.Time, error) {
	t, err := store.Scalar[*time.Time](ctx, s.q,
		`SELECT max(updated_at) FROM conversations WHERE env = $1`, string(env))
	if err != nil {
		return nil, perr.FromPostgres(err, "read latest import")
	}
	return t, nil
}

// Replace implements domain.ConversationStore
func (s *pg) Replace(ctx context.Context, c domain.Conversation) error {
	doc, err := c.Document()
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode conversation")
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO conversations (id, project_id, env, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			project_id = EXCLUDED.project_id,
			env        = EXCLUDED.env,
			doc        = EXCLUDED.doc,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at`,
		c.ID, c.ProjectID, string(c.Env), []byte(doc), c.CreatedAt, c.UpdatedAt,
	)
	return perr.FromPostgres(err, "replace conversation "+c.ID)
}

// Projects implements domain.Catalog
func (s *pg) Projects(ctx context.Context) ([]nlu.Project, error) {
	out, err := store.Many(ctx, s.q, func(r store.Row) (nlu.Project, error) {
		var p nlu.Project
		err := r.Scan(&p.ID, &p.Models)
		return p, err
	}, `SELECT id, COALESCE(nlu_models, '{}') FROM projects`)
	return out, perr.FromPostgres(err, "list projects")
}

// Models implements domain.Catalog
func (s *pg) Models(ctx context.Context) ([]nlu.Model, error) {
	out, err := store.Many(ctx, s.q, scanModel, `SELECT id, COALESCE(language, '') FROM nlu_models`)
	return out, perr.FromPostgres(err, "list models")
}

// ProjectModels implements domain.Catalog
func (s *pg) ProjectModels(ctx context.Context, projectID string) ([]nlu.Model, error) {
	out, err := store.Many(ctx, s.q, scanModel, `
		SELECT m.id, COALESCE(m.language, '')
		FROM projects p
		CROSS JOIN LATERAL unnest(p.nlu_models) WITH ORDINALITY AS pm(model_id, ord)
		JOIN nlu_models m ON m.id = pm.model_id
		WHERE p.id = $1
		ORDER BY pm.ord`, projectID)
	return out, perr.FromPostgres(err, "list project models")
}

func scanModel(r store.Row) (nlu.Model, error) {
	var m nlu.Model
	err := r.Scan(&m.ID, &m.Language)
	return m, err
}

// activityChunk keeps one statement under the bind parameter limit
const activityChunk = 1000

const activityCols = 8

// InsertMany implements domain.ActivityWriter
// batches larger than one statement run in a single transaction when the seam allows it
func (s *pg) InsertMany(ctx context.Context, recs []domain.ActivityRecord) error {
	if len(recs) == 0 {
		return nil
	}
	write := func(q repokit.Queryer) error {
		for start := 0; start < len(recs); start += activityChunk {
			end := min(start+activityChunk, len(recs))
			if err := insertActivity(ctx, q, recs[start:end]); err != nil {
				return err
			}
		}
		return nil
	}
	var err error
	if tx, ok := s.q.(repokit.TxRunner); ok && len(recs) > activityChunk {
		err = repokit.WithTx(ctx, tx, write)
	} else {
		err = write(s.q)
	}
	return perr.FromPostgres(err, "insert activity")
}

func insertActivity(ctx context.Context, q repokit.Queryer, recs []domain.ActivityRecord) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO activity
		(id, model_id, text, intent, confidence, entities, created_at, updated_at) VALUES `)

	args := make([]any, 0, len(recs)*activityCols)
	for i, r := range recs {
		if i > 0 {
			sb.WriteByte(',')
		}
		base := i*activityCols + 1
		fmt.Fprintf(&sb, "($%d,$%d,$%d,$%d,$%d,$%d::jsonb,$%d,$%d)",
			base, base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		args = append(args,
			r.ID, r.ModelID, r.Text, r.Intent, r.Confidence,
			[]byte(r.EntitiesOrEmpty()), r.CreatedAt, r.UpdatedAt,
		)
	}
	_, err := q.Exec(ctx, sb.String(), args...)
	return err
}
