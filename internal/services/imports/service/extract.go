package service

import (
	"time"

	"trackerhub/internal/core/tracker"
	"trackerhub/internal/services/imports/domain"

	"github.com/goccy/go-json"
)

// Resolver maps a (project, language) pair to a model id
type Resolver interface {
	Resolve(projectID, lang string) (string, bool)
}

// Extract scans c's tracker for candidates newer than watermark
// resolved candidates become activity drafts; misses keep their raw parse_data
// both outputs follow event order
func Extract(c domain.Conversation, watermark int64, ix Resolver, now time.Time, newID func() string) ([]domain.ActivityRecord, []json.RawMessage) {
	var (
		drafts     []domain.ActivityRecord
		unresolved []json.RawMessage
	)
	for _, ev := range tracker.Events(c.Tracker) {
		if !ev.Candidate(watermark) {
			continue
		}
		modelID, ok := ix.Resolve(c.ProjectID, ev.Parse.Language)
		if !ok {
			unresolved = append(unresolved, ev.Parse.Raw)
			continue
		}
		drafts = append(drafts, draft(modelID, ev, now, newID))
	}
	return drafts, unresolved
}

func draft(modelID string, ev tracker.Event, now time.Time, newID func() string) domain.ActivityRecord {
	rec := domain.ActivityRecord{
		ID:        newID(),
		ModelID:   modelID,
		Text:      ev.Utterance(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ev.Parse != nil {
		rec.Intent = ev.Parse.Intent.Name
		rec.Confidence = ev.Parse.Intent.Confidence
		rec.Entities = ev.Parse.Entities
	}
	return rec
}
