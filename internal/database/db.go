package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	gorm   *gorm.DB
	conn   *sql.DB
	dbType string
}

type Config struct {
	Type       string
	DSN        string
	SQLitePath string
}

func NewDB(config Config) (*DB, error) {
	var dialector gorm.Dialector

	switch config.Type {
	case "sqlite":
		// WAL with a busy timeout: concurrent requests write to the same file.
		// SQLite only enforces REFERENCES when foreign keys are switched on.
		dialector = sqlite.Open(config.SQLitePath + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	case "postgres":
		dialector = postgres.New(postgres.Config{
			DriverName: "pgx",
			DSN:        config.DSN,
		})
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	g, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn, err := g.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{gorm: g, conn: conn, dbType: config.Type}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) GORM() *gorm.DB {
	return db.gorm
}

func (db *DB) Type() string {
	return db.dbType
}

func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
