package api

import (
	"fmt"
	"net/http"

	"github.com/garunski/applymonitor/internal/config"
	"github.com/garunski/applymonitor/internal/enrichment"
	"github.com/garunski/applymonitor/internal/messages"
	"github.com/garunski/applymonitor/internal/prompts"
	"github.com/garunski/applymonitor/internal/results"
	"github.com/garunski/applymonitor/internal/scans"
	"github.com/garunski/applymonitor/internal/tokens"
	"github.com/garunski/applymonitor/pkg/identity"
	"github.com/garunski/applymonitor/pkg/openapi"
	"github.com/garunski/applymonitor/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	specBytes, err := buildSpec(domain, cfg)
	if err != nil {
		return err
	}

	protected := http.NewServeMux()
	routes.Register(protected, domain.Groups()...)

	auth := identity.Require(
		identity.NewSession(runtime.Signer, cfg.Identity.CookieName),
		runtime.Logger,
	)

	routes.Register(mux, domain.PublicGroups()...)
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))
	mux.Handle("/", auth(protected))

	return nil
}

func buildSpec(domain *Domain, cfg *config.Config) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(tokens.Schemas())
	spec.Components.AddSchemas(scans.Schemas())
	spec.Components.AddSchemas(messages.Schemas())
	spec.Components.AddSchemas(prompts.Schemas())
	spec.Components.AddSchemas(results.Schemas())
	spec.Components.AddSchemas(enrichment.Schemas())

	routes.Describe(spec, "", domain.PublicGroups()...)
	routes.Describe(spec, "", domain.Groups()...)

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		return nil, fmt.Errorf("openapi: %w", err)
	}
	return data, nil
}
