package api

import (
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/config"
	"github.com/hollomancer/sbir-cet-classifier-sub001/internal/infrastructure"
	"github.com/hollomancer/sbir-cet-classifier-sub001/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Engine     config.EngineConfig
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
		},
		Pagination: cfg.API.Pagination,
		Engine:     cfg.Engine,
	}
}
