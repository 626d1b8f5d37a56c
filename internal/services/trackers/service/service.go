// Package service implements live tracker reads, inserts and appends
package service

import (
	"bytes"
	"context"
	"time"

	"trackerhub/internal/core/tracker"
	perr "trackerhub/internal/platform/errors"
	"trackerhub/internal/platform/logger"
	ptime "trackerhub/internal/platform/time"
	imports "trackerhub/internal/services/imports/domain"
	"trackerhub/internal/services/trackers/domain"

	"github.com/goccy/go-json"
)

// Config for the trackers service
type Config struct {
	// LogUtterances sends appended user utterances to activity
	LogUtterances bool
}

// Svc implements domain.Service
type Svc struct {
	store      domain.Store
	utterances imports.UtteranceLogger
	cfg        Config
	now        func() time.Time
}

var _ domain.Service = (*Svc)(nil)

// New constructs the service; utterances may be nil to disable logging
func New(store domain.Store, utterances imports.UtteranceLogger, cfg Config) *Svc {
	return &Svc{store: store, utterances: utterances, cfg: cfg, now: ptime.Now}
}

// Tracker implements domain.Service
func (s *Svc) Tracker(ctx context.Context, projectID, senderID string, lastN int) (json.RawMessage, error) {
	st, ok, err := s.store.Get(ctx, senderID)
	if err != nil || !ok {
		return nil, err
	}
	if st.ProjectID != projectID {
		return nil, domain.ErrProjectMismatch
	}
	doc, err := tracker.ParseDoc(st.Tracker)
	if err != nil {
		// not an object; hand it back as stored
		return st.Tracker, nil
	}
	if err := doc.Tail(lastN); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "slice events")
	}
	return doc.Marshal()
}

// Insert implements domain.Service
func (s *Svc) Insert(ctx context.Context, projectID, senderID string, body json.RawMessage) error {
	if _, err := tracker.ParseDoc(body); err != nil {
		return perr.WithField(perr.Validationf("tracker should be an object"), "tracker")
	}
	return s.store.Insert(ctx, domain.NewConversation{ID: senderID, ProjectID: projectID, Tracker: body, At: s.now()})
}

// Append implements domain.Service
// events are pushed and other members set; an unknown senderId is inserted whole
func (s *Svc) Append(ctx context.Context, projectID, senderID string, body json.RawMessage) error {
	doc, err := tracker.ParseDoc(body)
	if err != nil {
		return perr.WithField(perr.Validationf("tracker should be an object"), "tracker")
	}
	if b := bytes.TrimSpace(doc["events"]); len(b) == 0 || b[0] != '[' {
		return perr.WithField(perr.Validationf("events should be an array"), "events")
	}
	events := doc.Events()

	set := make(map[string]json.RawMessage, len(doc))
	for k, v := range doc {
		if k != "events" {
			set[k] = v
		}
	}
	now := s.now()
	matched, err := s.store.Append(ctx, domain.Append{ID: senderID, Events: events, Set: set, At: now})
	if err != nil {
		return err
	}
	if !matched {
		err = s.store.Insert(ctx, domain.NewConversation{ID: senderID, ProjectID: projectID, Tracker: body, At: now})
		if err != nil {
			return err
		}
	}
	s.logUtterances(ctx, projectID, body)
	return nil
}

// logUtterances is best effort; failures are logged and dropped
func (s *Svc) logUtterances(ctx context.Context, projectID string, body json.RawMessage) {
	if !s.cfg.LogUtterances || s.utterances == nil {
		return
	}
	n, err := s.utterances.LogUtterances(ctx, projectID, tracker.Events(body))
	log := logger.C(ctx)
	if err != nil {
		log.Warn().Err(err).Str("project_id", projectID).Msg("utterance logging failed")
		return
	}
	if n > 0 {
		log.Debug().Str("project_id", projectID).Int("utterances", n).Msg("utterances logged")
	}
}
