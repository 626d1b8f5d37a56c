// Package http provides http transport for live trackers
package http

import (
	"context"
	"errors"
	stdhttp "net/http"
	"strconv"

	"trackerhub/internal/core/tracker"
	"trackerhub/internal/modkit/httpkit"
	"trackerhub/internal/platform/net/http/bind"
	"trackerhub/internal/services/trackers/domain"

	"github.com/goccy/go-json"
)

// DefaultMaxBody caps a tracker body
const DefaultMaxBody = 8 << 20

// MsgEventCount is the 400 reply for a count that is not a non-negative integer
const MsgEventCount = "eventCount should be a non-negative integer"

// Register mounts tracker endpoints; the router carries {projectId} and {senderId}
func Register(r httpkit.Router, s domain.Service, maxBody int64) {
	if maxBody <= 0 {
		maxBody = DefaultMaxBody
	}
	h := &handlers{svc: s, maxBody: maxBody}

	r.Get("/", h.tracker)
	r.Get("/{eventCount}", h.tracker)
	r.Post("/insert", h.insert)
	r.Post("/", h.append)
}

type handlers struct {
	svc     domain.Service
	maxBody int64
}

// swagger:route GET /projects/{projectId}/conversations/{senderId}/{eventCount} Trackers getTracker
// @Summary Get a tracker
// @Description null when the conversation does not exist; eventCount keeps only the last events
// @Tags Trackers
// @Produce json
// @Param projectId path string true "Project"
// @Param senderId path string true "Conversation"
// @Param eventCount path int false "Last events to return"
// @Success 200 {object} object "tracker or null"
// @Failure 400 {object} httpkit.ErrorMessage "tracker belongs to another project"
// @Router /projects/{projectId}/conversations/{senderId}/{eventCount} [get]
func (h *handlers) tracker(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	n := tracker.AllEvents
	if s := httpkit.Param(r, "eventCount"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			httpkit.BadRequest(w, MsgEventCount)
			return
		}
		n = v
	}
	raw, err := h.svc.Tracker(r.Context(), httpkit.Param(r, "projectId"), httpkit.Param(r, "senderId"), n)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if raw == nil {
		raw = json.RawMessage("null")
	}
	httpkit.JSON(w, stdhttp.StatusOK, raw)
}

// swagger:route POST /projects/{projectId}/conversations/{senderId}/insert Trackers insertTracker
// @Summary Insert a conversation
// @Tags Trackers
// @Accept json
// @Produce json
// @Param projectId path string true "Project"
// @Param senderId path string true "Conversation"
// @Param payload body object true "Tracker"
// @Success 200 {object} object "inserted"
// @Failure 409 {object} httpkit.Envelope "conversation exists"
// @Router /projects/{projectId}/conversations/{senderId}/insert [post]
func (h *handlers) insert(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	h.write(w, r, h.svc.Insert)
}

// swagger:route POST /projects/{projectId}/conversations/{senderId} Trackers appendTracker
// @Summary Append to a tracker
// @Description Pushes events and sets the other tracker members; inserts the conversation when it does not exist
// @Tags Trackers
// @Accept json
// @Produce json
// @Param projectId path string true "Project"
// @Param senderId path string true "Conversation"
// @Param payload body object true "Tracker update"
// @Success 200 {object} object "appended"
// @Router /projects/{projectId}/conversations/{senderId} [post]
func (h *handlers) append(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	h.write(w, r, h.svc.Append)
}

type writeFn func(ctx context.Context, projectID, senderID string, body json.RawMessage) error

func (h *handlers) write(w stdhttp.ResponseWriter, r *stdhttp.Request, fn writeFn) {
	body, err := bind.ParseJSON[json.RawMessage](r, bind.JSONOptions{MaxBytes: h.maxBody})
	if err != nil {
		httpkit.RespondError(w, r, err)
		return
	}
	if err := fn(r.Context(), httpkit.Param(r, "projectId"), httpkit.Param(r, "senderId"), body); err != nil {
		h.fail(w, r, err)
		return
	}
	httpkit.JSON(w, stdhttp.StatusOK, struct{}{})
}

func (h *handlers) fail(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	if errors.Is(err, domain.ErrProjectMismatch) {
		httpkit.BadRequest(w, domain.MsgProjectMismatch)
		return
	}
	httpkit.RespondError(w, r, err)
}
