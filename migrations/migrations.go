// Package migrations embeds the PostgreSQL schema migrations.
package migrations

import "embed"

// FS holds the ordered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
