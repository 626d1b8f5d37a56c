package service

import (
	"testing"
	"time"

	"trackerhub/internal/core/nlu"
	kit "trackerhub/internal/platform/testkit"
	"trackerhub/internal/services/imports/domain"

	"github.com/goccy/go-json"
)

func TestExtract(t *testing.T) {
	t.Parallel()
	ix := nlu.Build(testCatalog().projects, testCatalog().models)
	c := domain.Conversation{ID: "c", ProjectID: "bf", Tracker: json.RawMessage(`{"events":[
		{"event":"user","text":"old","timestamp":10,"parse_data":{"language":"en"}},
		{"event":"user","text":"hello","timestamp":101.5,"parse_data":{"language":"en","entities":[{"entity":"x"}]}},
		{"event":"user","text":"shout","timestamp":101.7,"parse_data":{"language":"EN"}},
		{"event":"user","text":"blank parse","timestamp":101.9,"parse_data":{"language":"en","text":""}},
		{"event":"bot","text":"hi","timestamp":102},
		{"event":"user","text":"hola","timestamp":103,"parse_data":{"language":"es"}},
		{"event":"user","text":"/cmd","timestamp":104,"parse_data":{"language":"en"}},
		{"event":"user","timestamp":105,"parse_data":{"language":"fr","text":"oui"}}
	]}`)}
	now := time.Unix(200, 0).UTC()
	ids := 0
	drafts, unresolved := Extract(c, 100, ix, now, func() string { ids++; return "id" })

	if len(drafts) != 2 || ids != 2 {
		t.Fatalf("drafts = %+v", drafts)
	}
	if drafts[0].Text != "hello" || drafts[0].ModelID != "m-en" || !drafts[0].CreatedAt.Equal(now) {
		t.Fatalf("drafts[0] = %+v", drafts[0])
	}
	kit.MustJSONEqual(t, drafts[0].EntitiesOrEmpty(), []byte(`[{"entity":"x"}]`))
	if drafts[1].Text != "oui" || drafts[1].ModelID != "m-fr" {
		t.Fatalf("drafts[1] = %+v", drafts[1])
	}
	kit.MustJSONEqual(t, drafts[1].EntitiesOrEmpty(), []byte(`[]`))
	if len(unresolved) != 2 || string(unresolved[0]) != `{"language":"EN"}` || string(unresolved[1]) != `{"language":"es"}` {
		t.Fatalf("unresolved = %s", unresolved)
	}
}
