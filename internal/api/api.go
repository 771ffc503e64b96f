// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/config"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/infrastructure"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/middleware"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The returned Domain exposes the assembled systems for native routes such
// as the metrics endpoint.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, domain, nil
}
