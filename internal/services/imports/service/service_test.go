package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	perr "trackerhub/internal/platform/errors"
	kit "trackerhub/internal/platform/testkit"
	"trackerhub/internal/services/imports/domain"

	"github.com/goccy/go-json"
)

func raws(xs ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(xs))
	for i, x := range xs {
		out[i] = json.RawMessage(x)
	}
	return out
}

func bodyJSON(t *testing.T, rep domain.Report) []byte {
	t.Helper()
	b, err := json.Marshal(rep.Body())
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestWatermarkEmptyEnvIsZero(t *testing.T) {
	t.Parallel()
	f := newFixture()
	for _, env := range []domain.Env{domain.EnvProduction, domain.EnvStaging, domain.EnvDevelopment} {
		wm, err := f.svc.Watermark(context.Background(), env)
		if err != nil || wm != 0 {
			t.Fatalf("%s: watermark = %d, %v", env, wm, err)
		}
	}
}

func TestWatermarkIsolatedPerEnv(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	at := func(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
	_ = f.convs.Replace(ctx, domain.Conversation{ID: "a", Env: domain.EnvProduction, UpdatedAt: at(1_600_000_000_999)})
	_ = f.convs.Replace(ctx, domain.Conversation{ID: "b", Env: domain.EnvProduction, UpdatedAt: at(1_500_000_000_000)})
	_ = f.convs.Replace(ctx, domain.Conversation{ID: "c", Env: domain.EnvStaging, UpdatedAt: at(1_700_000_000_000)})

	wm, err := f.svc.Watermark(ctx, domain.EnvProduction)
	if err != nil || wm != 1_600_000_000 {
		t.Fatalf("production watermark = %d, %v", wm, err)
	}
	wm, _ = f.svc.Watermark(ctx, domain.EnvStaging)
	if wm != 1_700_000_000 {
		t.Fatalf("staging watermark = %d", wm)
	}
	wm, _ = f.svc.Watermark(ctx, domain.EnvDevelopment)
	if wm != 0 {
		t.Fatalf("development watermark = %d", wm)
	}
}

func TestImportScenarioNewAndExisting(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	_ = f.convs.Replace(ctx, domain.Conversation{
		ID: "old", ProjectID: "bf", Env: domain.EnvProduction,
		Tracker:   json.RawMessage(`{"events":[]}`),
		UpdatedAt: time.Unix(1_000, 0).UTC(),
	})

	rep, err := f.svc.Import(ctx, domain.ImportInput{
		Env:        domain.EnvProduction,
		ProcessNLU: true,
		Conversations: raws(
			`{"_id":"old","projectId":"bf","tracker":{"events":[{"event":"bot","text":"hey"}]}}`,
			`{"_id":"new","projectId":"bf","createdAt":"2020-01-02T03:04:05Z","tracker":{"events":[
				{"event":"user","text":"bonjour","timestamp":1500000000,"parse_data":{"language":"fr","intent":{"name":"greet","confidence":0.8},"entities":[]}}
			]}}`,
		),
	})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != domain.StatusOK || rep.Status.HTTPStatus() != http.StatusOK {
		t.Fatalf("status = %v, report = %+v", rep.Status, rep)
	}
	if f.convs.len() != 2 {
		t.Fatalf("stored = %d", f.convs.len())
	}
	old, _ := f.convs.get("old")
	kit.MustContain(t, string(old.Tracker), `"bot"`)
	if !old.UpdatedAt.Equal(f.clock) {
		t.Fatalf("existing updatedAt = %v", old.UpdatedAt)
	}
	nw, _ := f.convs.get("new")
	if nw.CreatedAt == nil || nw.CreatedAt.Year() != 2020 || nw.Env != domain.EnvProduction {
		t.Fatalf("new conversation = %+v", nw)
	}

	recs := f.activity.all()
	if len(recs) != 1 {
		t.Fatalf("activity = %+v", recs)
	}
	r := recs[0]
	if r.Text != "bonjour" || r.ModelID != "m-fr" || r.Intent != "greet" || r.Confidence != 0.8 || r.ID != "act-1" {
		t.Fatalf("record = %+v", r)
	}
	kit.MustJSONEqual(t, bodyJSON(t, rep), []byte(`{"message":"successfuly imported all conversations"}`))
}

func TestImportUnknownProjectIsRejected(t *testing.T) {
	t.Parallel()
	f := newFixture()
	conv := `{"_id": "x1",  "projectId": "nope", "tracker": {"events": []}}`
	rep, err := f.svc.Import(context.Background(), domain.ImportInput{
		Env:           domain.EnvStaging,
		Conversations: raws(conv),
	})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status.HTTPStatus() != http.StatusPartialContent {
		t.Fatalf("status = %v", rep.Status)
	}
	if len(rep.Rejected) != 1 || string(rep.Rejected[0]) != conv {
		t.Fatalf("rejected = %s", rep.Rejected)
	}
	if f.convs.len() != 0 {
		t.Fatal("rejected conversation was stored")
	}
	kit.MustJSONEqual(t, bodyJSON(t, rep), []byte(`{
		"messageConversation": "`+domain.MsgNotValids+`",
		"notValids": [`+conv+`]
	}`))
}

func TestImportUnresolvedLanguage(t *testing.T) {
	t.Parallel()
	f := newFixture()
	parse := `{"language": "de", "text": "hallo", "intent": {"name": "greet", "confidence": 1}}`
	rep, err := f.svc.Import(context.Background(), domain.ImportInput{
		Env:        domain.EnvProduction,
		ProcessNLU: true,
		Conversations: raws(`{"_id":"c1","projectId":"bf","tracker":{"events":[
			{"event":"user","text":"hallo","timestamp":1500000000,"parse_data":` + parse + `}
		]}}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status != domain.StatusPartial {
		t.Fatalf("status = %v", rep.Status)
	}
	if len(rep.Unresolved) != 1 || len(rep.Unresolved[0]) != 1 || string(rep.Unresolved[0][0]) != parse {
		t.Fatalf("unresolved = %s", rep.Unresolved)
	}
	if _, ok := f.convs.get("c1"); !ok {
		t.Fatal("conversation with unresolved parse not stored")
	}
	if len(f.activity.all()) != 0 || f.activity.calls != 0 {
		t.Fatal("activity written for an unresolved parse")
	}
	kit.MustJSONEqual(t, bodyJSON(t, rep), []byte(`{
		"messageParseData": "`+domain.MsgInvalidParseData+`",
		"invalidParseDatas": [[`+parse+`]]
	}`))
}

func TestImportIsAFullReplace(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	for _, tr := range []string{`{"events":[{"event":"bot","text":"one"}],"slots":{"a":1}}`, `{"events":[]}`} {
		rep, err := f.svc.Import(ctx, domain.ImportInput{
			Env:           domain.EnvDevelopment,
			Conversations: raws(`{"_id":"same","projectId":"bf","tracker":` + tr + `}`),
		})
		if err != nil || rep.Status != domain.StatusOK {
			t.Fatalf("import: %v %v", rep.Status, err)
		}
	}
	if f.convs.len() != 1 {
		t.Fatalf("stored = %d", f.convs.len())
	}
	c, _ := f.convs.get("same")
	kit.MustJSONEqual(t, c.Tracker, []byte(`{"events":[]}`))
}

func TestImportDoesNotBackfillPastWatermark(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ctx := context.Background()
	ev := func(text string, ts int64) string {
		b, _ := json.Marshal(map[string]any{
			"event": "user", "text": text, "timestamp": ts,
			"parse_data": map[string]any{"language": "en"},
		})
		return string(b)
	}
	first := `{"_id":"w","projectId":"bf","tracker":{"events":[` + ev("early", 1_500_000_000) + `]}}`
	if _, err := f.svc.Import(ctx, domain.ImportInput{Env: domain.EnvProduction, ProcessNLU: true, Conversations: raws(first)}); err != nil {
		t.Fatal(err)
	}
	if n := len(f.activity.all()); n != 1 {
		t.Fatalf("first import activity = %d", n)
	}

	// the first import stamped updatedAt = f.clock, so the watermark is its second
	wm := f.clock.Unix()
	f.clock = f.clock.Add(time.Hour)
	second := `{"_id":"w","projectId":"bf","tracker":{"events":[` +
		ev("early", 1_500_000_000) + `,` + ev("at", wm) + `,` + ev("late", wm+1) + `]}}`
	if _, err := f.svc.Import(ctx, domain.ImportInput{Env: domain.EnvProduction, ProcessNLU: true, Conversations: raws(second)}); err != nil {
		t.Fatal(err)
	}
	recs := f.activity.all()
	if len(recs) != 2 || recs[1].Text != "late" {
		t.Fatalf("activity = %+v", recs)
	}
}

func TestImportWriteFailuresAreCollected(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.convs.failIDs["bad"] = true
	f.activity.err = errDown
	ev := `{"event":"user","text":"hi","timestamp":1500000000,"parse_data":{"language":"en"}}`
	rep, err := f.svc.Import(context.Background(), domain.ImportInput{
		Env:        domain.EnvProduction,
		ProcessNLU: true,
		Conversations: raws(
			`{"_id":"bad","projectId":"bf","tracker":{"events":[]}}`,
			`{"_id":"good","projectId":"bf","tracker":{"events":[`+ev+`]}}`,
			`{"projectId":"bf"}`,
		),
	})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Status.HTTPStatus() != http.StatusInternalServerError {
		t.Fatalf("status = %v", rep.Status)
	}
	if len(rep.Failures) != 2 {
		t.Fatalf("failures = %+v", rep.Failures)
	}
	ops := map[string]string{}
	for _, fl := range rep.Failures {
		ops[fl.ConversationID] = fl.Op
	}
	if ops["bad"] != domain.OpUpsert || ops["good"] != domain.OpBackfill {
		t.Fatalf("failure ops = %v", ops)
	}
	if _, ok := f.convs.get("good"); !ok {
		t.Fatal("sibling of a failed write was not stored")
	}
	body, ok := rep.Body().([]perr.Wire)
	if !ok || len(body) != 2 {
		t.Fatalf("body = %#v", rep.Body())
	}
}

func TestImportUpsertFailureStillBackfills(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.convs.failIDs["c"] = true
	ev := `{"event":"user","text":"hi","timestamp":1500000000,"parse_data":{"language":"en"}}`
	rep, _ := f.svc.Import(context.Background(), domain.ImportInput{
		Env:           domain.EnvProduction,
		ProcessNLU:    true,
		Conversations: raws(`{"_id":"c","projectId":"bf","tracker":{"events":[` + ev + `]}}`),
	})
	if rep.Status != domain.StatusFailed || len(f.activity.all()) != 1 {
		t.Fatalf("status = %v activity = %d", rep.Status, len(f.activity.all()))
	}
}

func TestImportCatalogFailureAbortsBeforeWrites(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.catalog.err = errDown
	_, err := f.svc.Import(context.Background(), domain.ImportInput{
		Env:           domain.EnvProduction,
		Conversations: raws(`{"_id":"a","projectId":"bf"}`),
	})
	if err == nil || f.convs.len() != 0 {
		t.Fatalf("err = %v stored = %d", err, f.convs.len())
	}

	f = newFixture()
	f.convs.readErr = errDown
	if _, err := f.svc.Import(context.Background(), domain.ImportInput{Env: domain.EnvProduction}); err == nil {
		t.Fatal("watermark failure not reported")
	}
}

func TestImportSkipsNLUWhenDisabled(t *testing.T) {
	t.Parallel()
	f := newFixture()
	ev := `{"event":"user","text":"hi","timestamp":1500000000,"parse_data":{"language":"xx"}}`
	rep, err := f.svc.Import(context.Background(), domain.ImportInput{
		Env:           domain.EnvProduction,
		Conversations: raws(`{"_id":"a","projectId":"bf","tracker":{"events":[` + ev + `]}}`),
	})
	if err != nil || rep.Status != domain.StatusOK || f.activity.calls != 0 {
		t.Fatalf("status = %v err = %v calls = %d", rep.Status, err, f.activity.calls)
	}
}

func TestImportKeepsInputOrderUnderFanOut(t *testing.T) {
	t.Parallel()
	f := newFixture()
	var batch []string
	for i := 0; i < 20; i++ {
		lang := "en"
		if i%2 == 1 {
			lang = "zz"
		}
		batch = append(batch, `{"_id":"c`+string(rune('a'+i))+`","projectId":"bf","tracker":{"events":[
			{"event":"user","text":"t","timestamp":1500000000,"parse_data":{"language":"`+lang+`","text":"`+string(rune('a'+i))+`"}}
		]}}`)
		if i%5 == 0 {
			batch = append(batch, `{"_id":`+string(rune('0'+i/5))+`}`)
		}
	}
	rep, err := f.svc.Import(context.Background(), domain.ImportInput{Env: domain.EnvStaging, ProcessNLU: true, Conversations: raws(batch...)})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Rejected) != 4 || string(rep.Rejected[0]) != `{"_id":0}` || string(rep.Rejected[3]) != `{"_id":3}` {
		t.Fatalf("rejected = %s", rep.Rejected)
	}
	if len(rep.Unresolved) != 10 {
		t.Fatalf("unresolved groups = %d", len(rep.Unresolved))
	}
	for i, g := range rep.Unresolved {
		kit.MustContain(t, string(g[0]), `"text":"`+string(rune('a'+2*i+1))+`"`)
	}
}
