package api

import (
	"github.com/garunski/applymonitor/internal/backend"
	"github.com/garunski/applymonitor/internal/config"
	"github.com/garunski/applymonitor/internal/credentials"
	"github.com/garunski/applymonitor/internal/enrichment"
	"github.com/garunski/applymonitor/internal/mailbox"
	"github.com/garunski/applymonitor/internal/messages"
	"github.com/garunski/applymonitor/internal/prompts"
	"github.com/garunski/applymonitor/internal/results"
	"github.com/garunski/applymonitor/internal/scans"
	"github.com/garunski/applymonitor/internal/tokens"
	"github.com/garunski/applymonitor/pkg/routes"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Tokens     tokens.System
	Scans      scans.System
	Messages   messages.System
	Prompts    prompts.System
	Results    results.System
	Enrichment enrichment.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime, cfg *config.Config) *Domain {
	db := runtime.Database.Connection()

	credentialStore := credentials.New(db, runtime.Logger)

	tokensSystem := tokens.New(
		tokens.Config{
			OAuth:           cfg.Google.OAuth2(),
			StateTTL:        cfg.Identity.StateTTLDuration(),
			SuccessRedirect: cfg.Google.SuccessRedirect,
		},
		credentialStore,
		runtime.Signer,
		runtime.Logger,
	)

	messagesSystem := messages.New(
		db,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	var archive scans.Archive
	if cfg.Ingest.Archive && runtime.Storage != nil {
		archive = runtime.Storage
	}

	scansSystem := scans.New(
		cfg.Ingest,
		scans.NewRecords(db, runtime.Logger, runtime.Pagination),
		tokensSystem,
		mailbox.New(cfg.Google.GmailEndpoint, runtime.Logger),
		messagesSystem,
		archive,
		runtime.Logger,
		runtime.Pagination,
	)

	promptsSystem := prompts.New(
		db,
		runtime.Logger,
		runtime.Pagination,
	)

	resultsSystem := results.New(db, runtime.Logger)

	enrichmentSystem := enrichment.New(
		messagesSystem,
		promptsSystem,
		backend.New(cfg.Backend, runtime.Logger),
		resultsSystem,
		runtime.Logger,
	)

	return &Domain{
		Tokens:     tokensSystem,
		Scans:      scansSystem,
		Messages:   messagesSystem,
		Prompts:    promptsSystem,
		Results:    resultsSystem,
		Enrichment: enrichmentSystem,
	}
}

// Groups returns the session-protected route groups.
func (d *Domain) Groups() []routes.Group {
	return []routes.Group{
		d.Tokens.Handler().Routes(),
		d.Scans.Handler().Routes(),
		d.Messages.Handler().Routes(),
		d.Prompts.Handler().Routes(),
		d.Results.Handler().Routes(),
		d.Enrichment.Handler().Routes(),
	}
}

// PublicGroups returns route groups served without a session.
func (d *Domain) PublicGroups() []routes.Group {
	return []routes.Group{
		d.Tokens.Handler().PublicRoutes(),
	}
}
