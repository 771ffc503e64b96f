package api

import (
	"net/http"

	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Awards.Handler().Routes(),
		domain.Taxonomy.Handler().Routes(),
		domain.Enrichment.Handler().Routes(),
		domain.Assessments.Handler().Routes(),
		domain.Export.Handler().Routes(),
	)
}
