package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS SearchHistory (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	variant      TEXT NOT NULL,
	query_string TEXT NOT NULL,
	country      TEXT NOT NULL DEFAULT '',
	result_count INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_search_history_query ON SearchHistory (query_string);
`

// Open opens the sqlite database at path and makes sure the schema exists
func Open(ctx context.Context, path string, log *zap.Logger) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite allows a single writer
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info("Database initialized", zap.String("path", path))
	return conn, nil
}

// Migrate creates the tables used by the service
func Migrate(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
