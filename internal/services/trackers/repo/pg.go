// Package repo provides the live tracker stores for postgres and mongo
package repo

import (
	"context"
	"errors"

	"trackerhub/internal/modkit/repokit"
	perr "trackerhub/internal/platform/errors"
	"trackerhub/internal/platform/store"
	"trackerhub/internal/services/trackers/domain"

	"github.com/goccy/go-json"
)

type pg struct{ q repokit.Queryer }

var _ domain.Store = (*pg)(nil)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[domain.Store] {
	return repokit.BindFunc[domain.Store](func(q repokit.Queryer) domain.Store { return &pg{q: q} })
}

// Get implements domain.Store
func (s *pg) Get(ctx context.Context, id string) (domain.Stored, bool, error) {
	st, err := store.One(ctx, s.q, func(r store.Row) (domain.Stored, error) {
		var (
			st  domain.Stored
			raw []byte
		)
		err := r.Scan(&st.ProjectID, &raw)
		st.Tracker = raw
		return st, err
	}, `SELECT project_id, COALESCE(doc->'tracker', 'null'::jsonb) FROM conversations WHERE id = $1`, id)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.Stored{}, false, nil
	}
	if err != nil {
		return domain.Stored{}, false, perr.FromPostgres(err, "read conversation")
	}
	return st, true, nil
}

// Insert implements domain.Store
func (s *pg) Insert(ctx context.Context, c domain.NewConversation) error {
	doc, err := c.Document()
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode conversation")
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO conversations (id, project_id, env, doc, created_at, updated_at)
		VALUES ($1, $2, NULL, $3::jsonb, $4, $4)`,
		c.ID, c.ProjectID, []byte(doc), c.At,
	)
	return perr.FromPostgres(err, "insert conversation "+c.ID)
}

// Append implements domain.Store
func (s *pg) Append(ctx context.Context, a domain.Append) (bool, error) {
	members := a.Set
	if members == nil {
		members = map[string]json.RawMessage{}
	}
	set, err := json.Marshal(members)
	if err != nil {
		return false, perr.Wrap(err, perr.ErrorCodeJSON, "encode tracker members")
	}
	events := a.Events
	if events == nil {
		events = []json.RawMessage{}
	}
	pushed, err := json.Marshal(events)
	if err != nil {
		return false, perr.Wrap(err, perr.ErrorCodeJSON, "encode events")
	}
	tag, err := s.q.Exec(ctx, `
		UPDATE conversations c
		SET doc = jsonb_set(
				jsonb_set(c.doc, '{tracker}', COALESCE(c.doc->'tracker', '{}'::jsonb) || $2::jsonb),
				'{tracker,events}', COALESCE(c.doc->'tracker'->'events', '[]'::jsonb) || $3::jsonb
			) || jsonb_build_object('updatedAt', $4::text),
			updated_at = $5
		WHERE c.id = $1`,
		a.ID, set, pushed, a.At.UTC().Format(domain.TimeLayout), a.At,
	)
	if err != nil {
		return false, perr.FromPostgres(err, "append conversation "+a.ID)
	}
	return tag != nil && tag.RowsAffected() > 0, nil
}
