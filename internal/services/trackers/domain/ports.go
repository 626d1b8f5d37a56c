package domain

import (
	"context"

	"github.com/goccy/go-json"
)

// Store is the conversation collection as seen by live trackers
type Store interface {
	// Get returns the conversation; ok is false when it does not exist
	Get(ctx context.Context, id string) (s Stored, ok bool, err error)
	// Insert fails with a duplicate-key error when the id exists
	Insert(ctx context.Context, c NewConversation) error
	// Append reports whether a conversation matched
	Append(ctx context.Context, a Append) (matched bool, err error)
}

// Service is the trackers use case surface
type Service interface {
	// Tracker returns the tracker, nil when the conversation is unknown
	// lastN >= 0 keeps only the last lastN events; tracker.AllEvents keeps them all
	Tracker(ctx context.Context, projectID, senderID string, lastN int) (json.RawMessage, error)
	Insert(ctx context.Context, projectID, senderID string, tracker json.RawMessage) error
	Append(ctx context.Context, projectID, senderID string, tracker json.RawMessage) error
}
