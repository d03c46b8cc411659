package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hpungsan/timecapsule/internal/capsule"
	"github.com/hpungsan/timecapsule/internal/config"
	"github.com/hpungsan/timecapsule/internal/errors"
	"github.com/hpungsan/timecapsule/internal/ops"
	"github.com/hpungsan/timecapsule/internal/store"
)

// maxBodyBytes caps the POST /Capsule/ request body.
const maxBodyBytes = 8 << 20

// Route-specific NOT_FOUND details.
const (
	detailNotFound       = "Capsule Not Found"
	detailDeleteNotFound = "Capsule Not Found to delete"
)

// Handlers contains HTTP route handlers for the capsule API.
type Handlers struct {
	store    *store.Store
	cfg      *config.Config
	renderer *Renderer
	logger   *slog.Logger
}

// storeRequest is the POST /Capsule/ body. Pointer fields distinguish a
// missing key from an empty string.
type storeRequest struct {
	Message  *string `json:"message"`
	OpenDate *string `json:"open_date"`
}

// HandleWelcome handles GET /.
func (h *Handlers) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]string{"message": ops.MsgWelcome})
}

// HandleStore handles POST /Capsule/: seal a new capsule.
func (h *Handlers) HandleStore(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "request body must be a JSON object with string fields message and open_date")
		return
	}
	if req.Message == nil || req.OpenDate == nil {
		writeDetail(w, http.StatusUnprocessableEntity, "message and open_date are required")
		return
	}

	result, err := ops.Store(h.store, h.cfg, ops.StoreInput{
		Message:  *req.Message,
		OpenDate: *req.OpenDate,
	})
	if err != nil {
		renderError(w, h.logger, err, detailNotFound)
		return
	}

	renderJSON(w, http.StatusOK, map[string]string{
		"message": result.Message,
		"id":      result.ID,
	})
}

// HandleSearch handles GET /Capsule/Search: open a capsule if it is due.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.capsuleID(w, r)
	if !ok {
		return
	}

	result, err := ops.Fetch(h.store, ops.FetchInput{ID: id})
	if err != nil {
		renderError(w, h.logger, err, detailNotFound)
		return
	}

	renderJSON(w, http.StatusOK, map[string]string{"message": result.Message})
}

// HandleList handles GET /Capsule/List: every capsule's id and open date.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(h.store)
	if err != nil {
		renderError(w, h.logger, err, detailNotFound)
		return
	}

	if result.Empty {
		renderJSON(w, http.StatusOK, map[string]string{"message": result.Message})
		return
	}
	renderJSON(w, http.StatusOK, map[string][]capsule.Summary{
		"list_of_all_availiable_capsule": result.Items,
	})
}

// HandleDelete handles DELETE /Capsule/Delete: permanently remove a capsule.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.capsuleID(w, r)
	if !ok {
		return
	}

	result, err := ops.Delete(h.store, ops.DeleteInput{ID: id})
	if err != nil {
		renderError(w, h.logger, err, detailDeleteNotFound)
		return
	}

	renderJSON(w, http.StatusOK, map[string]string{"message": result.Message})
}

// HandleView handles GET /Capsule/View: HTML page for a single capsule.
func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request) {
	id, err := ops.RequireID(queryID(r))
	if err != nil {
		h.renderer.renderView(w, h.logger, http.StatusUnprocessableEntity, ViewPageData{Error: errors.As(err).Message})
		return
	}

	result, err := ops.Fetch(h.store, ops.FetchInput{ID: id})
	if err != nil {
		status, detail := errorResponse(h.logger, err, detailNotFound)
		h.renderer.renderView(w, h.logger, status, ViewPageData{Error: detail})
		return
	}

	data := ViewPageData{
		Title:    "Capsule " + result.ID,
		ID:       result.ID,
		OpenDate: result.OpenDate,
		Due:      result.Due,
	}
	if result.Due {
		data.Body = renderMarkdown(result.Message)
	} else {
		data.Notice = result.Message
	}
	h.renderer.renderView(w, h.logger, http.StatusOK, data)
}

// queryID returns the raw capsule_id query value, or nil when the parameter is
// absent. A present but empty value is kept as "".
func queryID(r *http.Request) *string {
	q := r.URL.Query()
	if !q.Has("capsule_id") {
		return nil
	}
	id := q.Get("capsule_id")
	return &id
}

// capsuleID reads the capsule_id query parameter, writing a 422 response when
// it is missing.
func (h *Handlers) capsuleID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := ops.RequireID(queryID(r))
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, errors.As(err).Message)
		return "", false
	}
	return id, true
}
