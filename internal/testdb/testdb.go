// Package testdb opens a migrated PostgreSQL database for integration tests.
// Tests are skipped unless APPLYMONITOR_TEST_DSN holds a postgres:// URL.
package testdb

import (
	"database/sql"
	"errors"
	"os"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/garunski/applymonitor/migrations"
)

// EnvDSN names the variable holding the integration database URL.
const EnvDSN = "APPLYMONITOR_TEST_DSN"

// Open migrates the test database to the latest version and returns a pool
// closed at test cleanup. It skips the test when EnvDSN is unset.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv(EnvDSN)
	if dsn == "" {
		t.Skipf("%s not set; skipping PostgreSQL integration test", EnvDSN)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		t.Fatalf("migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		t.Fatalf("create migrator: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrate up: %v", err)
	}
	m.Close()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Ping(); err != nil {
		t.Fatalf("ping database: %v", err)
	}

	return db
}

// Account returns a unique account id so parallel packages never share rows.
func Account() string {
	return "test-" + uuid.NewString()
}
