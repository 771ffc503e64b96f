package export

import (
	"log/slog"
	"net/http"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/taxonomy"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/handlers"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/routes"
)

// Handler provides the HTTP endpoint for export generation.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "export"),
	}
}

// Routes returns the route group definition for the export endpoint.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/assessments/export",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Build},
		},
	}
}

// Build generates the export document for the requested catalog version,
// defaulting to the latest.
func (h *Handler) Build(w http.ResponseWriter, r *http.Request) {
	doc, err := h.sys.Build(r.Context(), r.URL.Query().Get("catalog_version"))
	if err != nil {
		handlers.RespondError(w, h.logger, taxonomy.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}
