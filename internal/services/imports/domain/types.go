// Package domain defines the import pipeline types, report shapes and store ports
package domain

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	perr "trackerhub/internal/platform/errors"
	"trackerhub/internal/platform/net/http/bind"
	ptime "trackerhub/internal/platform/time"

	"github.com/goccy/go-json"
)

// Env is the deployment a conversation was captured in
type Env string

// Known environments
const (
	EnvProduction  Env = "production"
	EnvStaging     Env = "staging"
	EnvDevelopment Env = "development"
)

// ParseEnv validates a path tag; failures are perr validation errors on field "env"
func ParseEnv(s string) (Env, error) {
	if err := bind.Var("env", s, "required,oneof=production staging development"); err != nil {
		return "", err
	}
	return Env(s), nil
}

// Literal replies of the import endpoints
const (
	MsgInvalidEnv        = "environement should be one of: production, staging, developement"
	MsgMissingFields     = "the body is missing conversations or processNlu, or both"
	MsgConversationsType = "conversations should be an array"
	MsgProcessNLUType    = "processNlu should be an boolean"
	MsgImported          = "successfuly imported all conversations"
	MsgNotValids         = "some conversation were not added, either the _id is missing or projectId does not exist"
	MsgInvalidParseData  = "Some parseData have not been added to activity, the corresponding models could not be found "
)

// ImportInput is one batch as received
type ImportInput struct {
	Env           Env
	Conversations []json.RawMessage
	ProcessNLU    bool
}

// Conversation is an eligible conversation ready to store
type Conversation struct {
	ID        string
	ProjectID string
	Env       Env
	Tracker   json.RawMessage
	CreatedAt *time.Time
	UpdatedAt time.Time

	// Doc is the caller's object; unknown members are kept as sent
	Doc map[string]json.RawMessage
}

// Document returns the caller object with env, createdAt and updatedAt stamped in
// timestamps are RFC3339 with millisecond precision; a missing createdAt is null
func (c Conversation) Document() (json.RawMessage, error) {
	doc := make(map[string]json.RawMessage, len(c.Doc)+3)
	for k, v := range c.Doc {
		doc[k] = v
	}
	doc["env"] = quote(string(c.Env))
	doc["updatedAt"] = quote(c.UpdatedAt.UTC().Format(TimeLayout))
	doc["createdAt"] = json.RawMessage("null")
	if c.CreatedAt != nil {
		doc["createdAt"] = quote(c.CreatedAt.UTC().Format(TimeLayout))
	}
	return json.Marshal(doc)
}

// TimeLayout is how stamped timestamps are written into stored documents
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// ParseCreatedAt reads a caller createdAt: RFC3339 text or epoch milliseconds
// anything else, including null, yields nil
func ParseCreatedAt(raw json.RawMessage) *time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return nil
		}
		t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
		if err != nil {
			return nil
		}
		t = t.UTC()
		return &t
	case c == '-' || (c >= '0' && c <= '9'):
		var ms float64
		if json.Unmarshal(raw, &ms) != nil {
			return nil
		}
		t := ptime.FromUnixMilli(int64(ms))
		return &t
	}
	return nil
}

// ActivityRecord is one training log entry derived from a parse
type ActivityRecord struct {
	ID         string          `json:"_id"`
	ModelID    string          `json:"modelId"`
	Text       string          `json:"text"`
	Intent     string          `json:"intent"`
	Confidence float64         `json:"confidence"`
	Entities   json.RawMessage `json:"entities"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// EntitiesOrEmpty returns the entities array, [] when none were parsed
func (a ActivityRecord) EntitiesOrEmpty() json.RawMessage {
	if len(a.Entities) == 0 {
		return json.RawMessage("[]")
	}
	return a.Entities
}

// Status classifies a finished import
type Status int

// Import outcomes
const (
	StatusOK Status = iota
	StatusPartial
	StatusFailed
)

// HTTPStatus maps the outcome to its response code
func (s Status) HTTPStatus() int {
	switch s {
	case StatusPartial:
		return http.StatusPartialContent
	case StatusFailed:
		return http.StatusInternalServerError
	}
	return http.StatusOK
}

// String is the metrics label
func (s Status) String() string {
	switch s {
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	}
	return "ok"
}

// Write operations a failure can be attributed to
const (
	OpUpsert   = "upsert"
	OpBackfill = "backfill"
)

// WriteFailure is one failed store write
type WriteFailure struct {
	ConversationID string
	Op             string
	Err            error
}

// Report is the joined result of an import
type Report struct {
	Status Status

	Eligible int
	Upserted int
	Inserted int

	// Rejected keeps input order, each entry byte for byte as received
	Rejected []json.RawMessage
	// Unresolved holds one group per eligible conversation that had misses, in input order
	Unresolved [][]json.RawMessage
	Failures   []WriteFailure
}

// Classify sets Status from the collected outcomes
func (r *Report) Classify() {
	switch {
	case len(r.Failures) > 0:
		r.Status = StatusFailed
	case len(r.Rejected) > 0 || len(r.Unresolved) > 0:
		r.Status = StatusPartial
	default:
		r.Status = StatusOK
	}
}

// UnresolvedCount is the total number of unresolved parses
func (r Report) UnresolvedCount() int {
	n := 0
	for _, g := range r.Unresolved {
		n += len(g)
	}
	return n
}

// PartialBody is the 206 reply; each pair is present only when non-empty
type PartialBody struct {
	MessageConversation string              `json:"messageConversation,omitempty"`
	NotValids           []json.RawMessage   `json:"notValids,omitempty"`
	MessageParseData    string              `json:"messageParseData,omitempty"`
	InvalidParseDatas   [][]json.RawMessage `json:"invalidParseDatas,omitempty"`
}

// Body is the reply for the report's status
// 500 lists every write failure as {code, message} with the driver detail kept
func (r Report) Body() any {
	switch r.Status {
	case StatusFailed:
		out := make([]WriteErrorBody, len(r.Failures))
		for i, f := range r.Failures {
			out[i] = WriteErrorBody{Code: perr.CodeOf(f.Err), Message: f.Err.Error()}
		}
		return out
	case StatusPartial:
		var b PartialBody
		if len(r.Rejected) > 0 {
			b.MessageConversation = MsgNotValids
			b.NotValids = r.Rejected
		}
		if len(r.Unresolved) > 0 {
			b.MessageParseData = MsgInvalidParseData
			b.InvalidParseDatas = r.Unresolved
		}
		return b
	}
	return MessageBody{Message: MsgImported}
}

// WriteErrorBody is one entry of the 500 reply
type WriteErrorBody = perr.Wire

// MessageBody is the 200 reply
type MessageBody struct {
	Message string `json:"message"`
}

// WatermarkBody is the latest-imported-event reply
type WatermarkBody struct {
	Timestamp int64 `json:"timestamp"`
}

func quote(s string) json.RawMessage {
	b, _ := json.Marshal(s)
	return b
}
