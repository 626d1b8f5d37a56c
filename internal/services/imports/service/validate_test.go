package service

import (
	"testing"
	"time"

	"trackerhub/internal/core/nlu"
	"trackerhub/internal/services/imports/domain"
)

func TestValidate(t *testing.T) {
	t.Parallel()
	known := nlu.Build([]nlu.Project{{ID: "p"}}, nil)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	batch := raws(
		`{"_id":"a","projectId":"p","createdAt":1700000000123}`,
		`{"_id":null,"projectId":"p"}`,
		`{"_id":"","projectId":"p"}`,
		`{"_id":"b","projectId":"q"}`,
		`{"_id":"c","projectId":"p","createdAt":"yesterday","extra":{"k":[1]}}`,
		`[1,2]`,
		`"str"`,
		`{"_id":7,"projectId":"p"}`,
	)
	eligible, rejected := Validate(batch, domain.EnvStaging, known, now)
	if len(eligible) != 2 || eligible[0].ID != "a" || eligible[1].ID != "c" {
		t.Fatalf("eligible = %+v", eligible)
	}
	for _, c := range eligible {
		if c.Env != domain.EnvStaging || !c.UpdatedAt.Equal(now) {
			t.Fatalf("not stamped: %+v", c)
		}
	}
	if eligible[0].CreatedAt == nil || eligible[0].CreatedAt.UnixMilli() != 1700000000123 {
		t.Fatalf("createdAt = %v", eligible[0].CreatedAt)
	}
	if eligible[1].CreatedAt != nil {
		t.Fatalf("unparsable createdAt kept: %v", eligible[1].CreatedAt)
	}
	want := []string{string(batch[1]), string(batch[2]), string(batch[3]), string(batch[5]), string(batch[6]), string(batch[7])}
	if len(rejected) != len(want) {
		t.Fatalf("rejected = %s", rejected)
	}
	for i := range want {
		if string(rejected[i]) != want[i] {
			t.Fatalf("rejected[%d] = %s, want %s", i, rejected[i], want[i])
		}
	}
}
