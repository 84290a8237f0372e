package database

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/kdimtricp/formcheck/internal/database/migrations"
	"github.com/pressly/goose/v3"
)

// Migrator applies the embedded goose migrations.
type Migrator struct {
	db      *sql.DB
	dialect goose.Dialect
}

func NewMigrator(db *sql.DB, dbType string) (*Migrator, error) {
	var dialect goose.Dialect
	switch dbType {
	case "sqlite":
		dialect = goose.DialectSQLite3
	case "postgres":
		dialect = goose.DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	return &Migrator{db: db, dialect: dialect}, nil
}

func (m *Migrator) provider() (*goose.Provider, error) {
	p, err := goose.NewProvider(m.dialect, m.db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return p, nil
}

// Up applies all pending migrations and returns how many ran.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	p, err := m.provider()
	if err != nil {
		return 0, err
	}

	results, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migration failed: %w", err)
	}
	return len(results), nil
}

// Status writes one line per known migration to w.
func (m *Migrator) Status(ctx context.Context, w io.Writer) error {
	p, err := m.provider()
	if err != nil {
		return err
	}

	statuses, err := p.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	for _, s := range statuses {
		state := "pending"
		if s.State == goose.StateApplied {
			state = "applied"
		}
		fmt.Fprintf(w, "%05d - %s [%s]\n", s.Source.Version, s.Source.Path, state)
	}
	return nil
}

func (db *DB) RunMigrations(ctx context.Context) (int, error) {
	m, err := NewMigrator(db.conn, db.dbType)
	if err != nil {
		return 0, err
	}
	return m.Up(ctx)
}
