package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	leadmigrations "github.com/XandyNerd/BuscarLead/migrations"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

type persistenceConfig struct {
	db databaseConfig
}

func (c persistenceConfig) GetDebug() bool                { return c.db.Debug }
func (c persistenceConfig) GetDriver() string             { return c.db.Driver }
func (c persistenceConfig) GetServer() string             { return c.db.DSN }
func (c persistenceConfig) GetPingTimeout() time.Duration { return 5 * time.Second }
func (c persistenceConfig) GetOtelIdentifier() string     { return "buscarlead" }

// openPersistence opens the configured database and applies the embedded
// migrations for its dialect.
func openPersistence(ctx context.Context, cfg databaseConfig) (*persistence.Client, error) {
	var dialect schema.Dialect
	switch cfg.Driver {
	case driverPostgres:
		dialect = pgdialect.New()
	case driverSQLite:
		dialect = sqlitedialect.New()
	default:
		return nil, fmt.Errorf("leadsd: unsupported database driver %q", cfg.Driver)
	}
	source, err := leadmigrations.ForDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("leadsd: open %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == driverSQLite {
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}

	client, err := persistence.New(persistenceConfig{db: cfg}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("leadsd: persistence client: %w", err)
	}

	client.RegisterSQLMigrations(source.FS)
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("leadsd: migrate: %w", err)
	}
	return client, nil
}
