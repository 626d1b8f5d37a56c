package service

import (
	"context"

	"trackerhub/internal/core/nlu"
	"trackerhub/internal/core/tracker"
	perr "trackerhub/internal/platform/errors"
	"trackerhub/internal/services/imports/domain"
)

// ResolveModel finds the model of projectID serving language, reading only that project
func (s *Svc) ResolveModel(ctx context.Context, projectID, language string) (string, bool, error) {
	models, err := s.catalog.ProjectModels(ctx, projectID)
	if err != nil {
		return "", false, err
	}
	ids := make([]string, len(models))
	for i, m := range models {
		ids[i] = m.ID
	}
	ix := nlu.Build([]nlu.Project{{ID: projectID, Models: ids}}, models)
	id, ok := ix.Resolve(projectID, language)
	return id, ok, nil
}

// LogUtterances writes the user utterances among events to activity
// the model is resolved once from the language of the first utterance
func (s *Svc) LogUtterances(ctx context.Context, projectID string, events []tracker.Event) (int, error) {
	var utterances []tracker.Event
	for _, ev := range events {
		if ev.IsUtterance() && ev.Parse != nil && ev.Utterance() != "" {
			utterances = append(utterances, ev)
		}
	}
	if len(utterances) == 0 {
		return 0, nil
	}
	first := utterances[0].Parse
	if !first.HasLanguage {
		return 0, perr.Validationf("utterance has no language")
	}
	modelID, ok, err := s.ResolveModel(ctx, projectID, first.Language)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, perr.NotFoundf("no model for project %q in language %q", projectID, first.Language)
	}

	now := s.now()
	recs := make([]domain.ActivityRecord, len(utterances))
	for i, ev := range utterances {
		recs[i] = draft(modelID, ev, now, s.newID)
	}
	if err := s.activity.InsertMany(ctx, recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}
