package enrichment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/handlers"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/routes"
)

// Handler provides HTTP endpoints for enrichment cache operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "enrichment"),
	}
}

// Routes returns the route group definition for enrichment endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/enrichment",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/entries/{source}/{document_id}", Handler: h.Find},
			{Method: "POST", Pattern: "/invalidate", Handler: h.Invalidate},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
		},
	}
}

// Find returns the cached entry for a key, fetching it on first access.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	key := Key{
		Source:     r.PathValue("source"),
		DocumentID: r.PathValue("document_id"),
	}

	entry, err := h.sys.Get(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, entry)
}

// Invalidate deletes cached entries matching the request selectors.
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	var cmd InvalidateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrEmptySelector)
		return
	}

	removed, err := h.sys.Invalidate(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

// Stats returns cumulative cache hit/miss/fetch counters.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Stats())
}
