package tracker

import (
	"testing"

	kit "trackerhub/internal/platform/testkit"

	"github.com/goccy/go-json"
)

func TestDecodeEventUser(t *testing.T) {
	t.Parallel()
	raw := json.RawMessage(`{
		"event": "user",
		"text": "hello there",
		"timestamp": 1550000001.5,
		"parse_data": {
			"text": "hello there",
			"language": "en",
			"intent": {"name": "greet", "confidence": 0.93},
			"entities": [{"entity": "who", "value": "there"}]
		}
	}`)
	ev := DecodeEvent(raw)
	if ev.Kind != KindUser || ev.Text != "hello there" || ev.Timestamp != 1550000001.5 {
		t.Fatalf("event = %+v", ev)
	}
	if ev.Parse == nil || !ev.Parse.HasLanguage || ev.Parse.Language != "en" {
		t.Fatalf("parse = %+v", ev.Parse)
	}
	if ev.Parse.Intent != (Intent{Name: "greet", Confidence: 0.93}) {
		t.Fatalf("intent = %+v", ev.Parse.Intent)
	}
	kit.MustJSONEqual(t, ev.Parse.Entities, []byte(`[{"entity":"who","value":"there"}]`))
	kit.MustContain(t, string(ev.Parse.Raw), `"greet"`)
}

func TestDecodeEventShapeMismatches(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"not an object":         `["user"]`,
		"event not a string":    `{"event": 3, "text": "hi", "timestamp": 2, "parse_data": {"language": "en"}}`,
		"text not a string":     `{"event": "user", "text": {"x": 1}, "timestamp": 2, "parse_data": {"language": "en"}}`,
		"timestamp a string":    `{"event": "user", "text": "hi", "timestamp": "2", "parse_data": {"language": "en"}}`,
		"parse_data an array":   `{"event": "user", "text": "hi", "timestamp": 2, "parse_data": ["en"]}`,
		"language null":         `{"event": "user", "text": "hi", "timestamp": 2, "parse_data": {"language": null}}`,
		"language a number":     `{"event": "user", "text": "hi", "timestamp": 2, "parse_data": {"language": 7}}`,
		"bot event":             `{"event": "bot", "text": "hi", "timestamp": 2, "parse_data": {"language": "en"}}`,
		"command text":          `{"event": "user", "text": "/greet", "timestamp": 2, "parse_data": {"language": "en"}}`,
		"empty text everywhere": `{"event": "user", "text": "", "timestamp": 2, "parse_data": {"language": "en", "text": ""}}`,
		"garbage":               `{"event": `,
	}
	for name, raw := range cases {
		if DecodeEvent(json.RawMessage(raw)).Candidate(0) {
			t.Errorf("%s: decoded as candidate", name)
		}
	}
}

func TestCandidateWatermarkIsStrict(t *testing.T) {
	t.Parallel()
	ev := DecodeEvent(json.RawMessage(`{"event":"user","text":"hi","timestamp":100,"parse_data":{"language":"en"}}`))
	if !ev.Candidate(99) {
		t.Fatal("event after watermark not a candidate")
	}
	if ev.Candidate(100) {
		t.Fatal("event at watermark is a candidate")
	}
	if ev.Candidate(101) {
		t.Fatal("event before watermark is a candidate")
	}
}

func TestUtteranceFallsBackToEventText(t *testing.T) {
	t.Parallel()
	ev := DecodeEvent(json.RawMessage(`{"event":"user","text":"from event","timestamp":5,"parse_data":{"language":"fr"}}`))
	if got := ev.Utterance(); got != "from event" {
		t.Fatalf("Utterance = %q", got)
	}
	ev = DecodeEvent(json.RawMessage(`{"event":"user","timestamp":5,"parse_data":{"language":"fr","text":"from parse"}}`))
	if got := ev.Utterance(); got != "from parse" || !ev.Candidate(0) {
		t.Fatalf("Utterance = %q candidate=%v", got, ev.Candidate(0))
	}
	ev = DecodeEvent(json.RawMessage(`{"event":"user","text":"hi","timestamp":5,"parse_data":{"language":"fr","text":null}}`))
	if got := ev.Utterance(); got != "hi" || !ev.Candidate(0) {
		t.Fatalf("null parse text: Utterance = %q candidate=%v", got, ev.Candidate(0))
	}
}

func TestEmptyParseTextIsNotACandidate(t *testing.T) {
	t.Parallel()
	ev := DecodeEvent(json.RawMessage(`{"event":"user","text":"hi","timestamp":5,"parse_data":{"language":"en","text":""}}`))
	if !ev.Parse.HasText || ev.Utterance() != "" {
		t.Fatalf("parse = %+v utterance = %q", ev.Parse, ev.Utterance())
	}
	if ev.Candidate(0) {
		t.Fatal("empty parse text decoded as candidate")
	}
}

func TestEvents(t *testing.T) {
	t.Parallel()
	evs := Events(json.RawMessage(`{"sender_id":"s","events":[{"event":"action"},42,{"event":"user","text":"a"}]}`))
	if len(evs) != 3 {
		t.Fatalf("len = %d", len(evs))
	}
	if evs[0].Kind != "action" || evs[1].Kind != "" || evs[2].Text != "a" {
		t.Fatalf("events = %+v", evs)
	}
	for _, raw := range []string{`[]`, `{"events":{}}`, `{}`, `null`, ``} {
		if got := Events(json.RawMessage(raw)); got != nil {
			t.Fatalf("Events(%q) = %v", raw, got)
		}
	}
}

func TestDocTail(t *testing.T) {
	t.Parallel()
	cases := []struct {
		n    int
		want string
	}{
		{AllEvents, `[1,2,3]`},
		{0, `[]`},
		{-5, `[1,2,3]`},
		{2, `[2,3]`},
		{3, `[1,2,3]`},
		{10, `[1,2,3]`},
	}
	for _, tc := range cases {
		d, err := ParseDoc(json.RawMessage(`{"sender_id":"s","events":[1,2,3]}`))
		if err != nil {
			t.Fatal(err)
		}
		if err := d.Tail(tc.n); err != nil {
			t.Fatal(err)
		}
		kit.MustJSONEqual(t, d["events"], []byte(tc.want))
		kit.MustJSONEqual(t, d["sender_id"], []byte(`"s"`))
	}
}

func TestParseDocRejectsNonObjects(t *testing.T) {
	t.Parallel()
	if _, err := ParseDoc(json.RawMessage(`[1]`)); err != ErrNotObject {
		t.Fatalf("err = %v", err)
	}
	d, err := ParseDoc(json.RawMessage(`{"latest_message":{}}`))
	if err != nil {
		t.Fatal(err)
	}
	if d.Events() != nil {
		t.Fatal("missing events decoded as non-nil")
	}
	if err := d.Tail(1); err != nil {
		t.Fatal(err)
	}
	if _, ok := d["events"]; ok {
		t.Fatal("Tail added events to a tracker without them")
	}
}
