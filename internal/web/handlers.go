package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/anytrip/dashboard/internal/config"
	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/ops"
	"github.com/anytrip/dashboard/internal/record"
	"github.com/anytrip/dashboard/internal/store"
)

// Handlers contains HTTP route handlers for the dashboard API.
type Handlers struct {
	backend store.Backend
	cfg     *config.Config
	version string
}

// endpoints is the route summary served by GET /.
var endpoints = []string{
	"GET /",
	"GET /api/health",
	"GET /api/excel-sheets",
	"GET /api/website-links",
	"GET /api/tasks",
	"GET /api/categories",
	"GET /api/search",
	"GET /api/stats",
	"POST /api/clear-all",
}

// HandleRoot handles GET / with the service banner.
func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, map[string]any{
		"message":   "ERP API Server",
		"version":   h.version,
		"endpoints": endpoints,
	})
}

// healthResponse is the body of GET /api/health.
type healthResponse struct {
	Message     string                               `json:"message"`
	Status      string                               `json:"status"`
	Timestamp   time.Time                            `json:"timestamp"`
	Environment string                               `json:"environment"`
	Storage     string                               `json:"storage"`
	Version     string                               `json:"version"`
	Data        map[record.Kind]ops.CollectionHealth `json:"data"`
}

// HandleHealth handles GET /api/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Health(r.Context(), h.backend)
	if err != nil {
		renderError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, healthResponse{
		Message:     "ERP Server is running successfully!",
		Status:      out.Status,
		Timestamp:   out.Timestamp,
		Environment: h.cfg.Env,
		Storage:     out.Storage,
		Version:     h.version,
		Data:        out.Data,
	})
}

// HandleClearAll handles POST /api/clear-all.
func (h *Handlers) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	out, err := ops.ClearAll(r.Context(), h.backend)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleCategories handles GET /api/categories.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	categories := h.cfg.Categories
	if len(categories) == 0 {
		categories = config.DefaultCategories
	}
	renderJSON(w, http.StatusOK, categories)
}

// HandleSearch handles GET /api/search: one filter across collections.
// collections restricts the search, e.g. collections=tasks,links.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	input := ops.SearchInput{Filter: filter}
	if raw := r.URL.Query().Get("collections"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			kind, ok := record.ParseKind(name)
			if !ok {
				renderError(w, r, errors.NewInvalidRequest("unknown collection: "+strings.TrimSpace(name)))
				return
			}
			input.Kinds = append(input.Kinds, kind)
		}
	}

	out, err := ops.Search(r.Context(), h.backend, input)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleStats handles GET /api/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Stats(r.Context(), h.backend)
	if err != nil {
		renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, out)
}

// HandleList returns the handler for GET /api/{kind}.
func (h *Handlers) HandleList(spec record.Spec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseFilter(r)
		if err != nil {
			renderError(w, r, err)
			return
		}

		out, err := ops.List(r.Context(), h.backend, ops.ListInput{Kind: spec.Kind, Filter: filter})
		if err != nil {
			renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, out.Items)
	}
}

// HandleFetch returns the handler for GET /api/{kind}/{id}.
// render=markdown adds descriptionHtml.
func (h *Handlers) HandleFetch(spec record.Spec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := ops.Fetch(r.Context(), h.backend, ops.FetchInput{
			Kind:           spec.Kind,
			ID:             r.PathValue("id"),
			RenderMarkdown: r.URL.Query().Get("render") == "markdown",
		})
		if err != nil {
			renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, out)
	}
}

// HandleCreate returns the handler for POST /api/{kind}.
func (h *Handlers) HandleCreate(spec record.Spec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft record.Draft
		if err := decodeBody(w, r, h.cfg.MaxBodyBytes, &draft); err != nil {
			renderError(w, r, err)
			return
		}

		created, err := ops.Create(r.Context(), h.backend, ops.CreateInput{Kind: spec.Kind, Draft: draft})
		if err != nil {
			renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusCreated, created)
	}
}

// HandleUpdate returns the handler for PUT /api/{kind}/{id}. Fields absent
// from the body are left unchanged.
func (h *Handlers) HandleUpdate(spec record.Spec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch record.Patch
		if err := decodeBody(w, r, h.cfg.MaxBodyBytes, &patch); err != nil {
			renderError(w, r, err)
			return
		}

		updated, err := ops.Update(r.Context(), h.backend, ops.UpdateInput{
			Kind:  spec.Kind,
			ID:    r.PathValue("id"),
			Patch: patch,
		})
		if err != nil {
			renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, updated)
	}
}

// HandleDelete returns the handler for DELETE /api/{kind}/{id}.
func (h *Handlers) HandleDelete(spec record.Spec) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := ops.Delete(r.Context(), h.backend, ops.DeleteInput{Kind: spec.Kind, ID: r.PathValue("id")})
		if err != nil {
			renderError(w, r, err)
			return
		}
		renderJSON(w, http.StatusOK, out)
	}
}

// parseFilter reads q, category, status, pinned and tag from the query string.
func parseFilter(r *http.Request) (record.Filter, error) {
	q := r.URL.Query()
	f := record.Filter{
		Query:    q.Get("q"),
		Category: q.Get("category"),
		Status:   record.Status(q.Get("status")),
		Tag:      q.Get("tag"),
	}

	if f.Status == "all" {
		f.Status = ""
	}
	if f.Status != "" && !f.Status.Valid() {
		return f, errors.NewInvalidRequest("status must be one of: pending, completed, inactive")
	}

	switch q.Get("pinned") {
	case "":
	case "true", "1":
		v := true
		f.Pinned = &v
	case "false", "0":
		v := false
		f.Pinned = &v
	default:
		return f, errors.NewInvalidRequest("pinned must be true or false")
	}
	return f, nil
}
