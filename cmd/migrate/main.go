// Command migrate applies the embedded schema migrations.
//
// Usage:
//
//	migrate [-dsn <url>] up|down|version|steps N|force N
//
// Without -dsn the connection comes from APPLYMONITOR_DB_DSN, or else from
// the database section of the service configuration.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/garunski/applymonitor/internal/config"
	"github.com/garunski/applymonitor/migrations"
)

const envDSN = "APPLYMONITOR_DB_DSN"

func main() {
	dsn := flag.String("dsn", "", "Database connection URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	url, err := resolveDSN(*dsn)
	if err != nil {
		log.Fatalf("resolve dsn: %v", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatalf("migration source: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		log.Fatalf("migrator: %v", err)
	}
	defer m.Close()

	if err := run(m, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.Fatalf("%s: %v", flag.Arg(0), err)
	}
}

func run(m *migrate.Migrate, command string, args []string) error {
	switch command {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version: %d, dirty: %v\n", v, dirty)
		return nil
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return ignoreNoChange(m.Steps(n))
	case "force":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return m.Force(n)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func resolveDSN(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv(envDSN); v != "" {
		return v, nil
	}

	db, err := config.LoadDatabase()
	if err != nil {
		return "", err
	}
	return db.URL(), nil
}

func intArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expects exactly one integer argument")
	}
	return strconv.Atoi(args[0])
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate [-dsn <url>] up|down|version|steps N|force N")
	flag.PrintDefaults()
}
