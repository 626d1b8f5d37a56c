// Package tracker decodes conversation trackers without trusting their shape
//
// A tracker is a JSON object whose "events" member is an ordered array of tagged
// events. Only user events carry parse data worth training on; every other
// variant, and every malformed element, decodes to a zero Event that is never a
// candidate. Decoding never fails on content, only the Doc helpers report errors
// and only when the tracker itself is not an object.
package tracker

import (
	"bytes"
	"errors"
	"strings"

	"github.com/goccy/go-json"
)

// AllEvents asks Tail to keep the whole event list
const AllEvents = -1

// KindUser is the event tag of an utterance sent by the end user
const KindUser = "user"

// CommandPrefix marks texts that are intents sent as commands, not utterances
const CommandPrefix = "/"

// Intent is the classifier output attached to a parse
type Intent struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ParseData is the NLU parse attached to a user event
// Raw holds the payload exactly as received
type ParseData struct {
	Raw      json.RawMessage
	Language string
	// HasLanguage is false when language is absent, null or not a string
	HasLanguage bool
	Text        string
	// HasText is true when text is a string, even an empty one
	HasText  bool
	Intent   Intent
	Entities json.RawMessage
}

// Event is one decoded tracker event
type Event struct {
	Kind      string
	Text      string
	Timestamp float64
	Parse     *ParseData
}

// Utterance is the parse text when present, else the event text
// an empty parse text is kept, so such events are never candidates
func (e Event) Utterance() string {
	if e.Parse != nil && e.Parse.HasText {
		return e.Parse.Text
	}
	return e.Text
}

// IsUtterance reports a user event whose text is not a command
func (e Event) IsUtterance() bool {
	if e.Kind != KindUser {
		return false
	}
	return !strings.HasPrefix(e.Text, CommandPrefix) && !strings.HasPrefix(e.Utterance(), CommandPrefix)
}

// Candidate reports whether the event should be back-filled past watermark (seconds)
func (e Event) Candidate(watermark int64) bool {
	return e.IsUtterance() &&
		e.Parse != nil &&
		e.Parse.HasLanguage &&
		e.Utterance() != "" &&
		e.Timestamp > float64(watermark)
}

type wireEvent struct {
	Event     json.RawMessage `json:"event"`
	Text      json.RawMessage `json:"text"`
	Timestamp json.RawMessage `json:"timestamp"`
	ParseData json.RawMessage `json:"parse_data"`
}

type wireParse struct {
	Language json.RawMessage `json:"language"`
	Text     json.RawMessage `json:"text"`
	Intent   json.RawMessage `json:"intent"`
	Entities json.RawMessage `json:"entities"`
}

// DecodeEvent decodes one event; mismatched members are dropped, not reported
func DecodeEvent(raw json.RawMessage) Event {
	var w wireEvent
	if !isObject(raw) || json.Unmarshal(raw, &w) != nil {
		return Event{}
	}
	ev := Event{
		Kind:      str(w.Event),
		Text:      str(w.Text),
		Timestamp: num(w.Timestamp),
	}
	if isObject(w.ParseData) {
		ev.Parse = decodeParse(w.ParseData)
	}
	return ev
}

func decodeParse(raw json.RawMessage) *ParseData {
	var w wireParse
	if json.Unmarshal(raw, &w) != nil {
		return nil
	}
	pd := &ParseData{Raw: raw}
	pd.Text, pd.HasText = strOK(w.Text)
	if s, ok := strOK(w.Language); ok {
		pd.Language, pd.HasLanguage = s, true
	}
	if isObject(w.Intent) {
		var in struct {
			Name       json.RawMessage `json:"name"`
			Confidence json.RawMessage `json:"confidence"`
		}
		if json.Unmarshal(w.Intent, &in) == nil {
			pd.Intent = Intent{Name: str(in.Name), Confidence: num(in.Confidence)}
		}
	}
	if isArray(w.Entities) {
		pd.Entities = w.Entities
	}
	return pd
}

// Events decodes the events member of a tracker; anything else yields nil
func Events(trackerRaw json.RawMessage) []Event {
	raws := RawEvents(trackerRaw)
	if len(raws) == 0 {
		return nil
	}
	out := make([]Event, len(raws))
	for i, r := range raws {
		out[i] = DecodeEvent(r)
	}
	return out
}

// RawEvents returns the undecoded elements of the events member
func RawEvents(trackerRaw json.RawMessage) []json.RawMessage {
	if !isObject(trackerRaw) {
		return nil
	}
	var w struct {
		Events json.RawMessage `json:"events"`
	}
	if json.Unmarshal(trackerRaw, &w) != nil || !isArray(w.Events) {
		return nil
	}
	var raws []json.RawMessage
	if json.Unmarshal(w.Events, &raws) != nil {
		return nil
	}
	return raws
}

// ErrNotObject is returned when a tracker body is not a JSON object
var ErrNotObject = errors.New("tracker: not a JSON object")

// Doc is a tracker as an ordered-insensitive member map, for rewriting events
type Doc map[string]json.RawMessage

// ParseDoc decodes a tracker object
func ParseDoc(raw json.RawMessage) (Doc, error) {
	if !isObject(raw) {
		return nil, ErrNotObject
	}
	var d Doc
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// Events returns the raw events of the document, nil when missing or not an array
func (d Doc) Events() []json.RawMessage {
	v, ok := d["events"]
	if !ok || !isArray(v) {
		return nil
	}
	var raws []json.RawMessage
	if json.Unmarshal(v, &raws) != nil {
		return nil
	}
	return raws
}

// SetEvents replaces the events member
func (d Doc) SetEvents(events []json.RawMessage) error {
	if events == nil {
		events = []json.RawMessage{}
	}
	b, err := json.Marshal(events)
	if err != nil {
		return err
	}
	d["events"] = b
	return nil
}

// Tail keeps only the last n events; n < 0 or n >= len leaves the list whole
// and n == 0 empties it. A document without an events array is left untouched
func (d Doc) Tail(n int) error {
	events := d.Events()
	if events == nil || n < 0 || n >= len(events) {
		return nil
	}
	return d.SetEvents(events[len(events)-n:])
}

// Marshal encodes the document
func (d Doc) Marshal() (json.RawMessage, error) { return json.Marshal(d) }

func isObject(raw json.RawMessage) bool { return firstByte(raw) == '{' }
func isArray(raw json.RawMessage) bool  { return firstByte(raw) == '[' }

func firstByte(raw json.RawMessage) byte {
	b := bytes.TrimLeft(raw, " \t\r\n")
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func strOK(raw json.RawMessage) (string, bool) {
	if firstByte(raw) != '"' {
		return "", false
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

func str(raw json.RawMessage) string {
	s, _ := strOK(raw)
	return s
}

func num(raw json.RawMessage) float64 {
	var f float64
	if c := firstByte(raw); c != '-' && (c < '0' || c > '9') {
		return 0
	}
	if json.Unmarshal(raw, &f) != nil {
		return 0
	}
	return f
}
