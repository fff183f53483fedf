package main

import (
	"net/http"

	"github.com/garunski/applymonitor/internal/api"
	"github.com/garunski/applymonitor/internal/config"
	"github.com/garunski/applymonitor/internal/infrastructure"
	"github.com/garunski/applymonitor/pkg/handlers"
	"github.com/garunski/applymonitor/pkg/module"
)

// Modules are the prefix-mounted handlers served by the router.
type Modules struct {
	API *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	return &Modules{API: apiModule}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
}

// buildRouter serves liveness and readiness probes beside the mounted
// modules. Readiness requires completed startup and a reachable database.
func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
			return
		}
		if err := infra.Database.Check(r.Context()); err != nil {
			infra.Logger.Warn("readiness check failed", "error", err)
			handlers.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}
