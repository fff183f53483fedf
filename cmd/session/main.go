// Command session prints a signed session token for an account, for use as
// a bearer token or session cookie against a local server.
//
// Usage:
//
//	session -account <id> [-ttl 24h]
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/garunski/applymonitor/internal/config"
	"github.com/garunski/applymonitor/pkg/identity"
)

func main() {
	account := flag.String("account", "", "Account id to embed as the token subject")
	ttl := flag.Duration("ttl", 0, "Token lifetime (defaults to identity.session_ttl)")
	flag.Parse()

	if *account == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadIdentity()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	lifetime := cfg.SessionTTLDuration()
	if *ttl > 0 {
		lifetime = *ttl
	}

	signer := identity.NewSigner(cfg.Secret, cfg.Issuer, nil)
	token, err := signer.Issue(*account, identity.AudienceSession, lifetime)
	if err != nil {
		log.Fatal("issue token:", err)
	}

	fmt.Println(token)
}
