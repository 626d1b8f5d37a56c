package repo

import (
	"context"
	"errors"

	perr "trackerhub/internal/platform/errors"
	mongox "trackerhub/internal/platform/store/mongo"
	"trackerhub/internal/services/trackers/domain"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Mongo is the document store implementation of domain.Store
type Mongo struct {
	convs *mongo.Collection
}

var _ domain.Store = (*Mongo)(nil)

// NewMongo binds the conversations collection of m
func NewMongo(m *mongox.Mongo) *Mongo {
	return &Mongo{convs: m.Collection("conversations")}
}

// Get implements domain.Store
func (s *Mongo) Get(ctx context.Context, id string) (domain.Stored, bool, error) {
	var doc struct {
		ProjectID string `bson:"projectId"`
		Tracker   any    `bson:"tracker"`
	}
	err := s.convs.FindOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		options.FindOne().SetProjection(bson.D{{Key: "projectId", Value: 1}, {Key: "tracker", Value: 1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Stored{}, false, nil
	}
	if err != nil {
		return domain.Stored{}, false, perr.FromMongo(err, "read conversation")
	}
	raw, err := mongox.ToJSON(bson.D{{Key: "t", Value: doc.Tracker}})
	if err != nil {
		return domain.Stored{}, false, perr.Wrap(err, perr.ErrorCodeJSON, "render tracker")
	}
	tracker, err := member(raw)
	if err != nil {
		return domain.Stored{}, false, err
	}
	return domain.Stored{ProjectID: doc.ProjectID, Tracker: tracker}, true, nil
}

// Insert implements domain.Store
func (s *Mongo) Insert(ctx context.Context, c domain.NewConversation) error {
	tracker, err := mongox.ValueFromJSON(c.Tracker)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "convert tracker")
	}
	at := c.At.UTC()
	_, err = s.convs.InsertOne(ctx, bson.D{
		{Key: "_id", Value: c.ID},
		{Key: "tracker", Value: tracker},
		{Key: "status", Value: domain.StatusNew},
		{Key: "projectId", Value: c.ProjectID},
		{Key: "createdAt", Value: at},
		{Key: "updatedAt", Value: at},
	})
	return perr.FromMongo(err, "insert conversation "+c.ID)
}

// Append implements domain.Store
func (s *Mongo) Append(ctx context.Context, a domain.Append) (bool, error) {
	events := make(bson.A, 0, len(a.Events))
	for _, e := range a.Events {
		v, err := mongox.ValueFromJSON(e)
		if err != nil {
			return false, perr.Wrap(err, perr.ErrorCodeJSON, "convert event")
		}
		events = append(events, v)
	}
	set := bson.D{{Key: "updatedAt", Value: a.At.UTC()}}
	for k, raw := range a.Set {
		v, err := mongox.ValueFromJSON(raw)
		if err != nil {
			return false, perr.Wrap(err, perr.ErrorCodeJSON, "convert tracker member")
		}
		set = append(set, bson.E{Key: "tracker." + k, Value: v})
	}
	res, err := s.convs.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: a.ID}},
		bson.D{
			{Key: "$push", Value: bson.D{{Key: "tracker.events", Value: bson.D{{Key: "$each", Value: events}}}}},
			{Key: "$set", Value: set},
		},
	)
	if err != nil {
		return false, perr.FromMongo(err, "append conversation "+a.ID)
	}
	return res.MatchedCount > 0, nil
}

// member unwraps the single value of a {"t": ...} render
func member(raw []byte) ([]byte, error) {
	var w struct {
		T json.RawMessage `json:"t"`
	}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "render tracker")
	}
	if len(w.T) == 0 {
		return []byte("null"), nil
	}
	return w.T, nil
}
