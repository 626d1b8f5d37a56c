package repo

import (
	"context"
	"errors"
	"time"

	"trackerhub/internal/core/nlu"
	perr "trackerhub/internal/platform/errors"
	mongox "trackerhub/internal/platform/store/mongo"
	"trackerhub/internal/services/imports/domain"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names shared by the mongo-backed repos
const (
	CollConversations = "conversations"
	CollProjects      = "projects"
	CollModels        = "nlu_models"
	CollActivity      = "activity"
)

// Mongo is the document store implementation of Storage
type Mongo struct {
	convs    *mongo.Collection
	projects *mongo.Collection
	models   *mongo.Collection
	activity *mongo.Collection
}

var _ Storage = (*Mongo)(nil)

// NewMongo binds the import collections of m
func NewMongo(m *mongox.Mongo) *Mongo {
	return &Mongo{
		convs:    m.Collection(CollConversations),
		projects: m.Collection(CollProjects),
		models:   m.Collection(CollModels),
		activity: m.Collection(CollActivity),
	}
}

// EnsureIndexes creates the watermark index; existing indexes are left alone
func (s *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := s.convs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "env", Value: 1}, {Key: "updatedAt", Value: -1}},
		Options: options.Index().SetName("env_updatedAt"),
	})
	return perr.FromMongo(err, "ensure conversation indexes")
}

// LatestUpdatedAt implements domain.ConversationStore
func (s *Mongo) LatestUpdatedAt(ctx context.Context, env domain.Env) (*time.Time, error) {
	var doc struct {
		UpdatedAt time.Time `bson:"updatedAt"`
	}
	err := s.convs.FindOne(ctx,
		bson.D{{Key: "env", Value: string(env)}},
		options.FindOne().
			SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
			SetProjection(bson.D{{Key: "updatedAt", Value: 1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, perr.FromMongo(err, "read latest import")
	}
	t := doc.UpdatedAt.UTC()
	return &t, nil
}

// Replace implements domain.ConversationStore
func (s *Mongo) Replace(ctx context.Context, c domain.Conversation) error {
	d, err := ConversationDoc(c)
	if err != nil {
		return err
	}
	_, err = s.convs.ReplaceOne(ctx, bson.D{{Key: "_id", Value: c.ID}}, d, options.Replace().SetUpsert(true))
	return perr.FromMongo(err, "replace conversation "+c.ID)
}

// ConversationDoc converts c to BSON with its timestamps as native dates
func ConversationDoc(c domain.Conversation) (bson.D, error) {
	raw, err := c.Document()
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "encode conversation")
	}
	d, err := mongox.FromJSON(raw)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "convert conversation")
	}
	var created any
	if c.CreatedAt != nil {
		created = c.CreatedAt.UTC()
	}
	d = mongox.Set(d, "createdAt", created)
	d = mongox.Set(d, "updatedAt", c.UpdatedAt.UTC())
	return d, nil
}

type projectDoc struct {
	ID     string   `bson:"_id"`
	Models []string `bson:"nlu_models"`
}

type modelDoc struct {
	ID       string `bson:"_id"`
	Language string `bson:"language"`
}

// Projects implements domain.Catalog
func (s *Mongo) Projects(ctx context.Context) ([]nlu.Project, error) {
	cur, err := s.projects.Find(ctx, bson.D{}, options.Find().SetProjection(bson.D{{Key: "nlu_models", Value: 1}}))
	if err != nil {
		return nil, perr.FromMongo(err, "list projects")
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, perr.FromMongo(err, "list projects")
	}
	out := make([]nlu.Project, len(docs))
	for i, d := range docs {
		out[i] = nlu.Project{ID: d.ID, Models: d.Models}
	}
	return out, nil
}

// Models implements domain.Catalog
func (s *Mongo) Models(ctx context.Context) ([]nlu.Model, error) {
	return s.findModels(ctx, bson.D{})
}

// ProjectModels implements domain.Catalog
func (s *Mongo) ProjectModels(ctx context.Context, projectID string) ([]nlu.Model, error) {
	var p projectDoc
	err := s.projects.FindOne(ctx, bson.D{{Key: "_id", Value: projectID}}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, perr.FromMongo(err, "read project")
	}
	if len(p.Models) == 0 {
		return nil, nil
	}
	found, err := s.findModels(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: p.Models}}}})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]nlu.Model, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	out := make([]nlu.Model, 0, len(p.Models))
	for _, id := range p.Models {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Mongo) findModels(ctx context.Context, filter bson.D) ([]nlu.Model, error) {
	cur, err := s.models.Find(ctx, filter, options.Find().SetProjection(bson.D{{Key: "language", Value: 1}}))
	if err != nil {
		return nil, perr.FromMongo(err, "list models")
	}
	var docs []modelDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, perr.FromMongo(err, "list models")
	}
	out := make([]nlu.Model, len(docs))
	for i, d := range docs {
		out[i] = nlu.Model{ID: d.ID, Language: d.Language}
	}
	return out, nil
}

// InsertMany implements domain.ActivityWriter
func (s *Mongo) InsertMany(ctx context.Context, recs []domain.ActivityRecord) error {
	if len(recs) == 0 {
		return nil
	}
	docs := make([]any, len(recs))
	for i, r := range recs {
		d, err := ActivityDoc(r)
		if err != nil {
			return err
		}
		docs[i] = d
	}
	_, err := s.activity.InsertMany(ctx, docs)
	return perr.FromMongo(err, "insert activity")
}

// ActivityDoc is the stored shape of an activity record
func ActivityDoc(r domain.ActivityRecord) (bson.D, error) {
	entities, err := mongox.ValueFromJSON(r.EntitiesOrEmpty())
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "convert entities")
	}
	return bson.D{
		{Key: "_id", Value: r.ID},
		{Key: "modelId", Value: r.ModelID},
		{Key: "text", Value: r.Text},
		{Key: "intent", Value: r.Intent},
		{Key: "confidence", Value: r.Confidence},
		{Key: "entities", Value: entities},
		{Key: "createdAt", Value: r.CreatedAt.UTC()},
		{Key: "updatedAt", Value: r.UpdatedAt.UTC()},
	}, nil
}
