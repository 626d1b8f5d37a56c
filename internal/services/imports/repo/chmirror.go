package repo

import (
	"context"

	"trackerhub/internal/platform/logger"
	"trackerhub/internal/platform/store"
	"trackerhub/internal/services/imports/domain"
)

// DefaultMirrorTable is the clickhouse table activity is copied to
const DefaultMirrorTable = "activity"

// CHMirror copies activity written to the primary store into clickhouse
// mirror failures are logged and never fail the primary write
type CHMirror struct {
	next  domain.ActivityWriter
	ch    store.Clickhouse
	table string
}

var _ domain.ActivityWriter = (*CHMirror)(nil)

// NewCHMirror wraps next; an empty table selects DefaultMirrorTable
func NewCHMirror(next domain.ActivityWriter, ch store.Clickhouse, table string) *CHMirror {
	if table == "" {
		table = DefaultMirrorTable
	}
	return &CHMirror{next: next, ch: ch, table: table}
}

// InsertMany implements domain.ActivityWriter
func (m *CHMirror) InsertMany(ctx context.Context, recs []domain.ActivityRecord) error {
	if err := m.next.InsertMany(ctx, recs); err != nil {
		return err
	}
	if len(recs) == 0 {
		return nil
	}
	if err := m.ch.Insert(ctx, m.table, MirrorRows(recs)); err != nil {
		logger.C(ctx).Warn().Err(err).Str("table", m.table).Int("records", len(recs)).Msg("activity mirror failed")
	}
	return nil
}

// MirrorRows lays records out in clickhouse column order
func MirrorRows(recs []domain.ActivityRecord) [][]any {
	rows := make([][]any, len(recs))
	for i, r := range recs {
		rows[i] = []any{
			r.ID, r.ModelID, r.Text, r.Intent, r.Confidence,
			string(r.EntitiesOrEmpty()), r.CreatedAt,
		}
	}
	return rows
}
