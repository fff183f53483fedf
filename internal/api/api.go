// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/garunski/applymonitor/internal/config"
	"github.com/garunski/applymonitor/internal/infrastructure"
	"github.com/garunski/applymonitor/pkg/middleware"
	"github.com/garunski/applymonitor/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// Every route except the OAuth callback and the OpenAPI document requires
// a session.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime, cfg)

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m, err := module.New(cfg.API.BasePath, mux)
	if err != nil {
		return nil, err
	}
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(middleware.MaxBytes(cfg.API.MaxBodySizeBytes()))

	return m, nil
}
