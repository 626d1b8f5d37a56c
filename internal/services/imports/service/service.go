// Package service runs conversation imports: validate, replace, back-fill
package service

import (
	"context"
	"time"

	"trackerhub/internal/core/nlu"
	"trackerhub/internal/platform/logger"
	ptime "trackerhub/internal/platform/time"
	"trackerhub/internal/services/imports/domain"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds the fan-out when no worker count is configured
const DefaultWorkers = 8

// Config for the imports service
type Config struct {
	Workers int
}

// Svc implements domain.Importer, domain.ModelResolver and domain.UtteranceLogger
type Svc struct {
	convs    domain.ConversationStore
	catalog  domain.Catalog
	activity domain.ActivityWriter
	cfg      Config

	now   func() time.Time
	newID func() string
}

var (
	_ domain.Importer        = (*Svc)(nil)
	_ domain.ModelResolver   = (*Svc)(nil)
	_ domain.UtteranceLogger = (*Svc)(nil)
)

// New constructs the service; all three stores are required
func New(convs domain.ConversationStore, catalog domain.Catalog, activity domain.ActivityWriter, cfg Config) *Svc {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Svc{
		convs:    convs,
		catalog:  catalog,
		activity: activity,
		cfg:      cfg,
		now:      ptime.Now,
		newID:    uuid.NewString,
	}
}

// Watermark is the newest updatedAt in env, floored to seconds; 0 for an empty env
func (s *Svc) Watermark(ctx context.Context, env domain.Env) (int64, error) {
	t, err := s.convs.LatestUpdatedAt(ctx, env)
	if err != nil {
		return 0, err
	}
	return ptime.UnixSeconds(t), nil
}

type unitResult struct {
	upserted   bool
	inserted   int
	unresolved []json.RawMessage
	failures   []domain.WriteFailure
}

// Import stores a batch and back-fills activity from events past the env watermark
//
// The replace and the activity insert of one conversation are separate writes.
// A crash between them leaves the conversation stored with its activity missing;
// since the replace moves the watermark, a retry will not back-fill those events.
func (s *Svc) Import(ctx context.Context, in domain.ImportInput) (domain.Report, error) {
	start := time.Now()
	ctx = logger.WithEnv(ctx, string(in.Env))

	ix, err := s.index(ctx, in.ProcessNLU)
	if err != nil {
		return domain.Report{}, err
	}
	watermark, err := s.Watermark(ctx, in.Env)
	if err != nil {
		return domain.Report{}, err
	}

	now := s.now()
	eligible, rejected := Validate(in.Conversations, in.Env, ix, now)

	results := make([]unitResult, len(eligible))
	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i := range eligible {
		g.Go(func() error {
			results[i] = s.unit(ctx, eligible[i], in.ProcessNLU, watermark, ix, now)
			return nil
		})
	}
	_ = g.Wait()

	rep := domain.Report{Eligible: len(eligible), Rejected: rejected}
	for _, r := range results {
		if r.upserted {
			rep.Upserted++
		}
		rep.Inserted += r.inserted
		if len(r.unresolved) > 0 {
			rep.Unresolved = append(rep.Unresolved, r.unresolved)
		}
		rep.Failures = append(rep.Failures, r.failures...)
	}
	rep.Classify()

	elapsed := time.Since(start)
	observe(string(in.Env), rep.Upserted, len(rep.Rejected), rep.Eligible-rep.Upserted,
		rep.Inserted, rep.UnresolvedCount(), rep.Status.String(), elapsed.Seconds())

	logger.C(ctx).Info().
		Str("status", rep.Status.String()).
		Int("eligible", rep.Eligible).
		Int("rejected", len(rep.Rejected)).
		Int("inserted", rep.Inserted).
		Int("unresolved", rep.UnresolvedCount()).
		Int("failures", len(rep.Failures)).
		Int64("watermark", watermark).
		Dur("elapsed", elapsed).
		Msg("import finished")

	return rep, nil
}

// index loads the catalog; models are only needed when parses are back-filled
func (s *Svc) index(ctx context.Context, withModels bool) (*nlu.Index, error) {
	projects, err := s.catalog.Projects(ctx)
	if err != nil {
		return nil, err
	}
	var models []nlu.Model
	if withModels {
		if models, err = s.catalog.Models(ctx); err != nil {
			return nil, err
		}
	}
	return nlu.Build(projects, models), nil
}

func (s *Svc) unit(ctx context.Context, c domain.Conversation, processNLU bool, watermark int64, ix Resolver, now time.Time) unitResult {
	var r unitResult
	log := logger.C(ctx).With().Str("conversation_id", c.ID).Logger()

	if err := s.convs.Replace(ctx, c); err != nil {
		log.Error().Err(err).Msg("conversation replace failed")
		r.failures = append(r.failures, domain.WriteFailure{ConversationID: c.ID, Op: domain.OpUpsert, Err: err})
	} else {
		r.upserted = true
	}
	if !processNLU {
		return r
	}

	drafts, unresolved := Extract(c, watermark, ix, now, s.newID)
	r.unresolved = unresolved
	if len(drafts) == 0 {
		return r
	}
	if err := s.activity.InsertMany(ctx, drafts); err != nil {
		log.Error().Err(err).Int("records", len(drafts)).Msg("activity back-fill failed")
		r.failures = append(r.failures, domain.WriteFailure{ConversationID: c.ID, Op: domain.OpBackfill, Err: err})
		return r
	}
	r.inserted = len(drafts)
	return r
}
