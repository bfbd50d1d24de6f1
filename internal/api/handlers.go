package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/harvest/internal/catalog"
	"github.com/starford/harvest/internal/sessionservice"
)

// maxQueryLen bounds the search text accepted from clients.
const maxQueryLen = 256

// Handler holds API route handlers.
type Handler struct {
	svc *sessionservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *sessionservice.Service) *Handler {
	return &Handler{svc: svc}
}

// pathParam returns a decoded URL parameter. chi matches against the decoded
// path unless RawPath is set (e.g. an encoded slash), so only then is the
// parameter still escaped.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func setVersion(w http.ResponseWriter, version string) {
	w.Header().Set("X-Catalog-Version", version)
}

// ListFarms handles GET /api/farms.
//
//	@Summary		Filter the farm catalog
//	@Tags			farms
//	@Produce		json
//	@Param			q	query		string		false	"Search text matched against name and description"
//	@Param			tag	query		[]string	false	"Required tag (repeatable)"
//	@Success		200	{object}	FarmListResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/farms [get]
func (h *Handler) ListFarms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if err := validation.Validate(query, validation.Length(0, maxQueryLen)); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("q: "+err.Error()))
		return
	}
	view := h.svc.Search(r.Context(), query, q["tag"])
	setVersion(w, view.Version)
	writeJSON(w, http.StatusOK, view)
}

// GetFarm handles GET /api/farms/{name}.
//
//	@Summary		Get a single farm by name
//	@Tags			farms
//	@Produce		json
//	@Param			name	path		string	true	"Farm name"
//	@Success		200		{object}	models.Farm
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/farms/{name} [get]
func (h *Handler) GetFarm(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	farm, err := h.svc.Farm(r.Context(), name)
	if err != nil {
		writeError(w, "get farm", err, slog.String("name", name))
		return
	}
	setVersion(w, h.svc.Catalog().Version())
	writeJSON(w, http.StatusOK, farm)
}

// ListTags handles GET /api/tags.
//
//	@Summary		List the tag vocabulary
//	@Tags			farms
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TagListResponse{Tags: h.svc.Tags(r.Context())})
}

// StartSession handles POST /api/sessions.
//
//	@Summary		Start a browsing session
//	@Tags			sessions
//	@Produce		json
//	@Success		201	{object}	SessionResponse
//	@Security		BearerAuth
//	@Router			/sessions [post]
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Start(r.Context())
	if err != nil {
		writeError(w, "start session", err)
		return
	}
	setVersion(w, view.Version)
	writeJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /api/sessions/{id}.
//
//	@Summary		Get the current view of a session
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	SessionResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id} [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := h.svc.View(r.Context(), id)
	if err != nil {
		writeError(w, "get session", err, slog.String("id", id))
		return
	}
	setVersion(w, view.Version)
	writeJSON(w, http.StatusOK, view)
}

// SetQuery handles PUT /api/sessions/{id}/query.
//
//	@Summary		Replace the session's search text
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Session ID"
//	@Param			body	body		SetQueryRequest	true	"Search text"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/query [put]
func (h *Handler) SetQuery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req SetQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	err := validation.ValidateStruct(&req,
		validation.Field(&req.Query, validation.NotNil, validation.Length(0, maxQueryLen)),
	)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	h.apply(w, r, catalog.SetQuery{Query: *req.Query})
}

// ToggleTag handles POST /api/sessions/{id}/tags/{tag}.
//
//	@Summary		Toggle a tag in the session's selection
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Param			tag	path		string	true	"Tag"
//	@Success		200	{object}	SessionResponse
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/tags/{tag} [post]
func (h *Handler) ToggleTag(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, catalog.ToggleTag{Tag: pathParam(r, "tag")})
}

// ClearFilters handles DELETE /api/sessions/{id}/tags.
//
//	@Summary		Clear the session's search text and tags
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	SessionResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/tags [delete]
func (h *Handler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, catalog.ClearFilters{})
}

// SetViewMode handles PUT /api/sessions/{id}/view-mode.
//
//	@Summary		Switch the session's view mode
//	@Tags			sessions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Session ID"
//	@Param			body	body		SetViewModeRequest	true	"Mode"
//	@Success		200		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/view-mode [put]
func (h *Handler) SetViewMode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	var req SetViewModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json"))
		return
	}
	mode, err := catalog.ParseViewMode(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	h.apply(w, r, catalog.SetViewMode{Mode: mode})
}

// ToggleViewMode handles POST /api/sessions/{id}/view-mode/toggle.
//
//	@Summary		Flip the session between list and map mode
//	@Tags			sessions
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	SessionResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id}/view-mode/toggle [post]
func (h *Handler) ToggleViewMode(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, catalog.ToggleViewMode{})
}

// EndSession handles DELETE /api/sessions/{id}.
//
//	@Summary		End a session
//	@Tags			sessions
//	@Param			id	path	string	true	"Session ID"
//	@Success		204
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/sessions/{id} [delete]
func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.End(r.Context(), id); err != nil {
		writeError(w, "end session", err, slog.String("id", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request, ev catalog.Event) {
	id := chi.URLParam(r, "id")
	view, err := h.svc.Apply(r.Context(), id, ev)
	if err != nil {
		writeError(w, "update session", err, slog.String("id", id))
		return
	}
	setVersion(w, view.Version)
	writeJSON(w, http.StatusOK, view)
}
