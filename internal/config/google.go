package config

import (
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	EnvGoogleClientID        = "APPLYMONITOR_GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret    = "APPLYMONITOR_GOOGLE_CLIENT_SECRET"
	EnvGoogleRedirectURL     = "APPLYMONITOR_GOOGLE_REDIRECT_URL"
	EnvGoogleAuthURL         = "APPLYMONITOR_GOOGLE_AUTH_URL"
	EnvGoogleTokenURL        = "APPLYMONITOR_GOOGLE_TOKEN_URL"
	EnvGoogleGmailEndpoint   = "APPLYMONITOR_GOOGLE_GMAIL_ENDPOINT"
	EnvGoogleSuccessRedirect = "APPLYMONITOR_GOOGLE_SUCCESS_REDIRECT"

	// GmailReadonlyScope is the only scope requested from the account owner.
	GmailReadonlyScope = "https://www.googleapis.com/auth/gmail.readonly"
)

// GoogleConfig holds OAuth client settings and the Gmail API endpoint.
type GoogleConfig struct {
	ClientID        string `toml:"client_id"`
	ClientSecret    string `toml:"client_secret"`
	RedirectURL     string `toml:"redirect_url"`
	AuthURL         string `toml:"auth_url"`
	TokenURL        string `toml:"token_url"`
	GmailEndpoint   string `toml:"gmail_endpoint"`
	SuccessRedirect string `toml:"success_redirect"`
}

// OAuth2 builds the oauth2 client config. Client credentials travel in the
// form body of token requests.
func (c *GoogleConfig) OAuth2() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       []string{GmailReadonlyScope},
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.AuthURL,
			TokenURL:  c.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *GoogleConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *GoogleConfig) Merge(overlay *GoogleConfig) {
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.ClientSecret != "" {
		c.ClientSecret = overlay.ClientSecret
	}
	if overlay.RedirectURL != "" {
		c.RedirectURL = overlay.RedirectURL
	}
	if overlay.AuthURL != "" {
		c.AuthURL = overlay.AuthURL
	}
	if overlay.TokenURL != "" {
		c.TokenURL = overlay.TokenURL
	}
	if overlay.GmailEndpoint != "" {
		c.GmailEndpoint = overlay.GmailEndpoint
	}
	if overlay.SuccessRedirect != "" {
		c.SuccessRedirect = overlay.SuccessRedirect
	}
}

func (c *GoogleConfig) loadDefaults() {
	if c.AuthURL == "" {
		c.AuthURL = google.Endpoint.AuthURL
	}
	if c.TokenURL == "" {
		c.TokenURL = google.Endpoint.TokenURL
	}
	if c.GmailEndpoint == "" {
		c.GmailEndpoint = "https://gmail.googleapis.com/"
	}
	if c.SuccessRedirect == "" {
		c.SuccessRedirect = "/"
	}
}

func (c *GoogleConfig) loadEnv() {
	if v := os.Getenv(EnvGoogleClientID); v != "" {
		c.ClientID = v
	}
	if v := os.Getenv(EnvGoogleClientSecret); v != "" {
		c.ClientSecret = v
	}
	if v := os.Getenv(EnvGoogleRedirectURL); v != "" {
		c.RedirectURL = v
	}
	if v := os.Getenv(EnvGoogleAuthURL); v != "" {
		c.AuthURL = v
	}
	if v := os.Getenv(EnvGoogleTokenURL); v != "" {
		c.TokenURL = v
	}
	if v := os.Getenv(EnvGoogleGmailEndpoint); v != "" {
		c.GmailEndpoint = v
	}
	if v := os.Getenv(EnvGoogleSuccessRedirect); v != "" {
		c.SuccessRedirect = v
	}
}

func (c *GoogleConfig) validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("client_id required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("client_secret required")
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("redirect_url required")
	}
	return nil
}
