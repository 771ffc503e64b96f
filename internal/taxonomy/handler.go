package taxonomy

import (
	"log/slog"
	"net/http"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/handlers"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/routes"
)

// Handler provides HTTP endpoints for catalog version operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "taxonomy"),
	}
}

// Routes returns the route group definition for taxonomy endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/taxonomy",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/versions", Handler: h.Versions},
			{Method: "GET", Pattern: "/versions/{version}", Handler: h.Find},
		},
	}
}

// Versions lists stored catalog versions, newest first.
func (h *Handler) Versions(w http.ResponseWriter, r *http.Request) {
	infos, err := h.sys.Versions(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, infos)
}

// Find returns the full catalog for the given version id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.sys.Resolve(r.Context(), r.PathValue("version"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]any{
		"version":        catalog.Version(),
		"effective_date": catalog.EffectiveDate(),
		"categories":     catalog.Categories(),
	})
}
