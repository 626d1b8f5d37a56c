package service

import (
	"bytes"
	"time"

	"trackerhub/internal/services/imports/domain"

	"github.com/goccy/go-json"
)

// ProjectSet answers whether a project exists
type ProjectSet interface {
	Known(projectID string) bool
}

// Validate splits batch into eligible conversations and rejected entries
// eligible: an object with a non-empty string _id and a known string projectId
// rejected entries are returned exactly as received, in input order
func Validate(batch []json.RawMessage, env domain.Env, known ProjectSet, now time.Time) ([]domain.Conversation, []json.RawMessage) {
	var (
		eligible []domain.Conversation
		rejected []json.RawMessage
	)
	for _, raw := range batch {
		c, ok := decodeConversation(raw)
		if !ok || !known.Known(c.ProjectID) {
			rejected = append(rejected, raw)
			continue
		}
		c.Env = env
		c.UpdatedAt = now
		eligible = append(eligible, c)
	}
	return eligible, rejected
}

func decodeConversation(raw json.RawMessage) (domain.Conversation, bool) {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 || b[0] != '{' {
		return domain.Conversation{}, false
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		return domain.Conversation{}, false
	}
	id, ok := jsonString(doc["_id"])
	if !ok || id == "" {
		return domain.Conversation{}, false
	}
	projectID, ok := jsonString(doc["projectId"])
	if !ok {
		return domain.Conversation{}, false
	}
	return domain.Conversation{
		ID:        id,
		ProjectID: projectID,
		Tracker:   doc["tracker"],
		CreatedAt: domain.ParseCreatedAt(doc["createdAt"]),
		Doc:       doc,
	}, true
}

func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
