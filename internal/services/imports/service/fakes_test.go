package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trackerhub/internal/core/nlu"
	"trackerhub/internal/services/imports/domain"
)

type memConvs struct {
	mu      sync.Mutex
	byID    map[string]domain.Conversation
	failIDs map[string]bool
	readErr error
}

func newMemConvs() *memConvs {
	return &memConvs{byID: map[string]domain.Conversation{}, failIDs: map[string]bool{}}
}

func (m *memConvs) LatestUpdatedAt(_ context.Context, env domain.Env) (*time.Time, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *time.Time
	for _, c := range m.byID {
		if c.Env != env {
			continue
		}
		if latest == nil || c.UpdatedAt.After(*latest) {
			t := c.UpdatedAt
			latest = &t
		}
	}
	return latest, nil
}

func (m *memConvs) Replace(_ context.Context, c domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failIDs[c.ID] {
		return fmt.Errorf("replace %s: connection reset", c.ID)
	}
	m.byID[c.ID] = c
	return nil
}

func (m *memConvs) get(id string) (domain.Conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	return c, ok
}

func (m *memConvs) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memCatalog struct {
	projects []nlu.Project
	models   []nlu.Model
	err      error
}

func (c *memCatalog) Projects(context.Context) ([]nlu.Project, error) { return c.projects, c.err }
func (c *memCatalog) Models(context.Context) ([]nlu.Model, error)     { return c.models, c.err }

func (c *memCatalog) ProjectModels(_ context.Context, projectID string) ([]nlu.Model, error) {
	if c.err != nil {
		return nil, c.err
	}
	byID := map[string]nlu.Model{}
	for _, m := range c.models {
		byID[m.ID] = m
	}
	var out []nlu.Model
	for _, p := range c.projects {
		if p.ID != projectID {
			continue
		}
		for _, id := range p.Models {
			if m, ok := byID[id]; ok {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

type memActivity struct {
	mu    sync.Mutex
	recs  []domain.ActivityRecord
	calls int
	err   error
}

func (a *memActivity) InsertMany(_ context.Context, recs []domain.ActivityRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.err != nil {
		return a.err
	}
	a.recs = append(a.recs, recs...)
	return nil
}

func (a *memActivity) all() []domain.ActivityRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.ActivityRecord(nil), a.recs...)
}

var errDown = errors.New("store down")

func testCatalog() *memCatalog {
	return &memCatalog{
		projects: []nlu.Project{
			{ID: "bf", Models: []string{"m-en", "m-fr"}},
			{ID: "empty"},
		},
		models: []nlu.Model{
			{ID: "m-en", Language: "en"},
			{ID: "m-fr", Language: "fr"},
		},
	}
}

type fixture struct {
	svc      *Svc
	convs    *memConvs
	catalog  *memCatalog
	activity *memActivity
	clock    time.Time
}

func newFixture() *fixture {
	f := &fixture{
		convs:    newMemConvs(),
		catalog:  testCatalog(),
		activity: &memActivity{},
		clock:    time.Date(2023, 11, 14, 22, 13, 20, 500e6, time.UTC),
	}
	f.svc = New(f.convs, f.catalog, f.activity, Config{Workers: 2})
	f.svc.now = func() time.Time { return f.clock }
	n := 0
	var mu sync.Mutex
	f.svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("act-%d", n)
	}
	return f
}
