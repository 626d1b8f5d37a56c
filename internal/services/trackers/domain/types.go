// Package domain defines live tracker types and the conversation store port
package domain

import (
	"time"

	perr "trackerhub/internal/platform/errors"

	"github.com/goccy/go-json"
)

// MsgProjectMismatch is the literal 400 reply when a tracker belongs to another project
const MsgProjectMismatch = "Project ID does not match the requested tracker."

// StatusNew is the status of a conversation created from a live tracker
const StatusNew = "new"

// ErrProjectMismatch is returned when senderId exists under another project
var ErrProjectMismatch = perr.New(perr.ErrorCodeInvalidArgument, MsgProjectMismatch)

// Stored is the part of a stored conversation trackers reads
type Stored struct {
	ProjectID string
	Tracker   json.RawMessage
}

// NewConversation is a conversation first seen through the live endpoints
type NewConversation struct {
	ID        string
	ProjectID string
	Tracker   json.RawMessage
	At        time.Time
}

// Document is the stored form: {_id, tracker, status, projectId, createdAt, updatedAt}
func (c NewConversation) Document() (json.RawMessage, error) {
	at := c.At.UTC().Format(TimeLayout)
	return json.Marshal(struct {
		ID        string          `json:"_id"`
		Tracker   json.RawMessage `json:"tracker"`
		Status    string          `json:"status"`
		ProjectID string          `json:"projectId"`
		CreatedAt string          `json:"createdAt"`
		UpdatedAt string          `json:"updatedAt"`
	}{c.ID, c.Tracker, StatusNew, c.ProjectID, at, at})
}

// TimeLayout matches the stamps imports writes
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Append pushes Events onto a stored tracker and sets every other top-level member
type Append struct {
	ID     string
	Events []json.RawMessage
	Set    map[string]json.RawMessage
	At     time.Time
}
