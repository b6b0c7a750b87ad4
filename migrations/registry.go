// Package migrations exposes the embedded BuscarLead schema per SQL dialect.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	buscarlead "github.com/XandyNerd/BuscarLead"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	// DefaultSourceLabel names the migration set inside go-persistence-bun.
	DefaultSourceLabel = "buscarlead"

	migrationsDir = "data/sql/migrations"
)

// Source is the migration filesystem for one dialect.
type Source struct {
	Dialect string
	Path    string
	FS      fs.FS
}

// RegisterFunc receives one dialect source; persistence clients usually
// forward fsys to RegisterSQLMigrations.
type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type registerOptions struct {
	label    string
	dialects []string
}

type Option func(*registerOptions)

func WithSourceLabel(label string) Option {
	return func(o *registerOptions) {
		if trimmed := strings.TrimSpace(label); trimmed != "" {
			o.label = trimmed
		}
	}
}

// WithDialects limits registration to the named dialects. Driver names such
// as "sqlite3" or "postgresql" are accepted.
func WithDialects(names ...string) Option {
	return func(o *registerOptions) {
		o.dialects = append(o.dialects, names...)
	}
}

// NormalizeDialect maps a dialect or database driver name onto one of the
// supported dialects.
func NormalizeDialect(name string) (string, error) {
	switch strings.TrimSpace(strings.ToLower(name)) {
	case "postgres", "postgresql", "pg", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", name)
	}
}

// Sources returns the postgres and sqlite migration filesystems found under
// root, or under the embedded filesystem when root is nil. Every up file must
// have a matching down file.
func Sources(root fs.FS) ([]Source, error) {
	if root == nil {
		root = buscarlead.GetMigrationsFS()
	}
	base, err := fs.Sub(root, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("migrations: %s not found: %w", migrationsDir, err)
	}
	sqliteFS, err := fs.Sub(base, DialectSQLite)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	sources := []Source{
		{Dialect: DialectPostgres, Path: migrationsDir, FS: base},
		{Dialect: DialectSQLite, Path: migrationsDir + "/" + DialectSQLite, FS: sqliteFS},
	}
	for _, source := range sources {
		if err := checkPairs(source); err != nil {
			return nil, err
		}
	}
	return sources, nil
}

// ForDialect returns the embedded source for a dialect or driver name.
func ForDialect(name string) (Source, error) {
	dialect, err := NormalizeDialect(name)
	if err != nil {
		return Source{}, err
	}
	sources, err := Sources(nil)
	if err != nil {
		return Source{}, err
	}
	for _, source := range sources {
		if source.Dialect == dialect {
			return source, nil
		}
	}
	return Source{}, fmt.Errorf("migrations: no source for %s", dialect)
}

// Register hands every selected embedded source to registerFn. All dialects
// are selected unless WithDialects is given.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) ([]Source, error) {
	if registerFn == nil {
		return nil, fmt.Errorf("migrations: register function is required")
	}
	options := registerOptions{label: DefaultSourceLabel}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	var selected []string
	for _, name := range options.dialects {
		dialect, err := NormalizeDialect(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(selected, dialect) {
			selected = append(selected, dialect)
		}
	}

	sources, err := Sources(nil)
	if err != nil {
		return nil, err
	}
	registered := make([]Source, 0, len(sources))
	for _, source := range sources {
		if len(selected) > 0 && !slices.Contains(selected, source.Dialect) {
			continue
		}
		if err := registerFn(ctx, source.Dialect, options.label, source.FS); err != nil {
			return registered, fmt.Errorf("migrations: register %s (%s): %w", source.Dialect, source.Path, err)
		}
		registered = append(registered, source)
	}
	return registered, nil
}

func checkPairs(source Source) error {
	ups, err := fs.Glob(source.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("migrations: glob %s %s: %w", source.Dialect, source.Path, err)
	}
	if len(ups) == 0 {
		return fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", source.Dialect, source.Path)
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(source.FS, down); err != nil {
			return fmt.Errorf("migrations: %s migration %s has no down file", source.Dialect, up)
		}
	}
	return nil
}
