package bind

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "trackerhub/internal/platform/errors"

	"github.com/goccy/go-json"
)

type payload struct {
	Name string `json:"name" validate:"required,min=2"`
	Age  int    `json:"age" validate:"max=130"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestParseJSONStruct(t *testing.T) {
	got, err := ParseJSON[payload](post(`{"name":"Alice","age":3}`))
	if err != nil || got.Name != "Alice" || got.Age != 3 {
		t.Fatalf("got %+v err=%v", got, err)
	}
}

func TestParseJSONErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		opts []JSONOptions
		code perr.ErrorCode
	}{
		{"empty", "", nil, perr.ErrorCodeJSON},
		{"blank", "   ", nil, perr.ErrorCodeJSON},
		{"invalid", `{"name":`, nil, perr.ErrorCodeJSON},
		{"unknown field", `{"name":"Al","extra":1}`, nil, perr.ErrorCodeJSON},
		{"trailing", `{"name":"Al"} {"name":"Bo"}`, nil, perr.ErrorCodeJSON},
		{"too large", `{"name":"Alice"}`, []JSONOptions{{MaxBytes: 4}}, perr.ErrorCodeJSON},
		{"validation", `{"name":"A"}`, nil, perr.ErrorCodeValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON[payload](post(tc.body), tc.opts...)
			if perr.CodeOf(err) != tc.code {
				t.Fatalf("code = %v, want %v (err=%v)", perr.CodeOf(err), tc.code, err)
			}
		})
	}
}

func TestParseJSONAllowEmptyAndUnknown(t *testing.T) {
	got, err := ParseJSON[payload](post(""), JSONOptions{AllowEmptyBody: true})
	if err != nil || got != (payload{}) {
		t.Fatalf("allow empty: got %+v err=%v", got, err)
	}
	got, err = ParseJSON[payload](post(`{"name":"Al","extra":1}`), JSONOptions{})
	if err != nil || got.Name != "Al" {
		t.Fatalf("allow unknown: got %+v err=%v", got, err)
	}
}

func TestParseJSONMapSkipsStructValidation(t *testing.T) {
	got, err := ParseJSON[map[string]json.RawMessage](post(`{"events":[{"event":"user"}],"sender_id":"s1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got["sender_id"]) != `"s1"` || len(got["events"]) == 0 {
		t.Fatalf("got %v", got)
	}
}

func TestValidationMessageUsesJSONName(t *testing.T) {
	_, err := ParseJSON[payload](post(`{"name":"Al","age":200}`))
	e, ok := perr.As(err)
	if !ok || e.Field() != "age" {
		t.Fatalf("field = %+v", e)
	}
	if !strings.Contains(e.Error(), "age must be at most 130") {
		t.Fatalf("message = %q", e.Error())
	}
}

func TestVar(t *testing.T) {
	const tag = "required,oneof=production staging development"
	if err := Var("env", "staging", tag); err != nil {
		t.Fatalf("staging rejected: %v", err)
	}
	err := Var("env", "qa", tag)
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("qa accepted or wrong code: %v", err)
	}
	if e, _ := perr.As(err); e.Field() != "env" {
		t.Fatalf("field = %q", e.Field())
	}
	if Var("env", "", tag) == nil {
		t.Fatalf("empty env accepted")
	}
}
