// Package http provides http transport for imports
package http

import (
	"bytes"
	stdhttp "net/http"

	"trackerhub/internal/modkit/httpkit"
	"trackerhub/internal/platform/logger"
	"trackerhub/internal/platform/net/http/bind"
	"trackerhub/internal/services/imports/domain"

	"github.com/goccy/go-json"
)

// DefaultMaxBody caps an import body; batches carry whole trackers
const DefaultMaxBody = 32 << 20

// Register mounts import endpoints on the given router
func Register(r httpkit.Router, imp domain.Importer, maxBody int64) {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	h := &handlers{imp: imp, maxBody: maxBody}

	// import a batch of conversations into one environment
	r.Post("/environment/{env}", h.importBatch)

	// newest event already reflected in activity
	r.Get("/environment/{env}/latest-imported-event", h.watermark)
}

type handlers struct {
	imp     domain.Importer
	maxBody int64
}

// swagger:route POST /conversations/environment/{env} Imports importConversations
// @Summary Import conversations
// @Description Replaces conversations by _id and back-fills activity from user parses newer than the env watermark
// @Tags Imports
// @Accept json
// @Produce json
// @Param env path string true "Environment" Enums(production, staging, development)
// @Param payload body ImportRequest true "Batch"
// @Success 200 {object} domain.MessageBody "all imported"
// @Success 206 {object} domain.PartialBody "some conversations or parses skipped"
// @Failure 400 {object} httpkit.ErrorMessage "invalid request"
// @Failure 500 {array} domain.WriteErrorBody "write failures"
// @Router /conversations/environment/{env} [post]
func (h *handlers) importBatch(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	env, err := domain.ParseEnv(httpkit.Param(r, "env"))
	if err != nil {
		httpkit.BadRequest(w, domain.MsgInvalidEnv)
		return
	}

	raw, err := bind.ParseJSON[json.RawMessage](r, bind.JSONOptions{MaxBytes: h.maxBody, AllowEmptyBody: true})
	if err != nil {
		httpkit.RespondError(w, r, err)
		return
	}
	in, msg := decodeBatch(raw)
	if msg != "" {
		httpkit.BadRequest(w, msg)
		return
	}
	in.Env = env

	ctx := logger.WithEnv(r.Context(), string(env))
	rep, err := h.imp.Import(ctx, in)
	if err != nil {
		httpkit.RespondError(w, r, err)
		return
	}
	httpkit.JSON(w, rep.Status.HTTPStatus(), rep.Body())
}

// ImportRequest documents the import body
type ImportRequest struct {
	Conversations []map[string]any `json:"conversations"`
	ProcessNLU    bool             `json:"processNlu"`
}

// decodeBatch checks the body shape; msg is the literal 400 reply, empty when valid
func decodeBatch(raw json.RawMessage) (domain.ImportInput, string) {
	var in domain.ImportInput
	var body map[string]json.RawMessage
	if first(raw) != '{' || json.Unmarshal(raw, &body) != nil {
		return in, domain.MsgMissingFields
	}
	convs, hasConvs := body["conversations"]
	nlu, hasNLU := body["processNlu"]
	if !hasConvs || !hasNLU {
		return in, domain.MsgMissingFields
	}
	if first(convs) != '[' || json.Unmarshal(convs, &in.Conversations) != nil {
		return in, domain.MsgConversationsType
	}
	switch string(bytes.TrimSpace(nlu)) {
	case "true":
		in.ProcessNLU = true
	case "false":
	default:
		return in, domain.MsgProcessNLUType
	}
	return in, ""
}

// swagger:route GET /conversations/environment/{env}/latest-imported-event Imports latestImportedEvent
// @Summary Latest imported event
// @Description Seconds of the newest updatedAt among conversations of env, 0 when there are none
// @Tags Imports
// @Produce json
// @Param env path string true "Environment" Enums(production, staging, development)
// @Success 200 {object} domain.WatermarkBody "watermark"
// @Failure 400 {object} httpkit.ErrorMessage "invalid environment"
// @Router /conversations/environment/{env}/latest-imported-event [get]
func (h *handlers) watermark(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	env, err := domain.ParseEnv(httpkit.Param(r, "env"))
	if err != nil {
		httpkit.BadRequest(w, domain.MsgInvalidEnv)
		return
	}
	ts, err := h.imp.Watermark(r.Context(), env)
	if err != nil {
		httpkit.RespondError(w, r, err)
		return
	}
	httpkit.JSON(w, stdhttp.StatusOK, domain.WatermarkBody{Timestamp: ts})
}

func first(raw json.RawMessage) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
