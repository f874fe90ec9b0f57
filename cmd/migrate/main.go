// Command migrate applies the embedded docsys schema migrations.
//
// The connection string is taken from -dsn, then DOCSYS_DB_DSN, then the
// database section of the service configuration (config.toml, overlay and
// DOCSYS_DB_* variables).
package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"

	"github.com/tavtun/docsys/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

const envDSN = "DOCSYS_DB_DSN"

type options struct {
	dsn     string
	up      bool
	down    bool
	steps   int
	version bool
	force   int
	forced  bool
}

func main() {
	opts := parseFlags()

	dsn, err := resolveDSN(opts.dsn)
	if err != nil {
		log.Fatalf("resolve connection: %v", err)
	}

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		log.Fatalf("open embedded migrations: %v", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer m.Close()

	if err := run(m, opts); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() options {
	var opts options
	flag.StringVar(&opts.dsn, "dsn", "", "PostgreSQL connection URL")
	flag.BoolVar(&opts.up, "up", false, "Apply all pending migrations")
	flag.BoolVar(&opts.down, "down", false, "Revert all migrations")
	flag.IntVar(&opts.steps, "steps", 0, "Apply N migrations (negative reverts)")
	flag.BoolVar(&opts.version, "version", false, "Print the applied schema version")
	flag.IntVar(&opts.force, "force", -1, "Mark a version as applied without running it")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "force" {
			opts.forced = true
		}
	})
	return opts
}

func resolveDSN(flagDSN string) (string, error) {
	if flagDSN != "" {
		return flagDSN, nil
	}
	if dsn := os.Getenv(envDSN); dsn != "" {
		return dsn, nil
	}
	db, err := config.LoadDatabase()
	if err != nil {
		return "", fmt.Errorf("set -dsn, %s or DOCSYS_DB_*: %w", envDSN, err)
	}
	return db.URL(), nil
}

func run(m *migrate.Migrate, opts options) error {
	switch {
	case opts.version:
		v, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("no migrations applied")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read version: %w", err)
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
	case opts.forced:
		if err := m.Force(opts.force); err != nil {
			return fmt.Errorf("force version %d: %w", opts.force, err)
		}
		fmt.Printf("schema marked at version %d\n", opts.force)
	case opts.up:
		return report(m.Up(), "schema up to date")
	case opts.down:
		return report(m.Down(), "schema reverted")
	case opts.steps != 0:
		return report(m.Steps(opts.steps), fmt.Sprintf("moved %d step(s)", opts.steps))
	default:
		fmt.Fprintln(os.Stderr, "usage: migrate [-dsn URL] -up | -down | -steps N | -version | -force N")
		flag.PrintDefaults()
	}
	return nil
}

func report(err error, done string) error {
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	fmt.Println(done)
	return nil
}
