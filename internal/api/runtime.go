package api

import (
	"github.com/garunski/applymonitor/internal/config"
	"github.com/garunski/applymonitor/internal/infrastructure"
	"github.com/garunski/applymonitor/pkg/identity"
	"github.com/garunski/applymonitor/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination pagination.Config
	Signer     *identity.Signer
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
		Signer:     identity.NewSigner(cfg.Identity.Secret, cfg.Identity.Issuer, nil),
	}
}
