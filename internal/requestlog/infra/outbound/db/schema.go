package db

import (
	"context"
	"database/sql"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS api_requests (
	id           TEXT PRIMARY KEY,
	method       TEXT NOT NULL,
	path         TEXT NOT NULL,
	status_code  INTEGER NOT NULL,
	ip_address   TEXT,
	user_agent   TEXT,
	api_token_id TEXT,
	created_at   DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_api_requests_created ON api_requests(created_at);
`

const clickhouseSchema = `
CREATE TABLE IF NOT EXISTS api_requests (
	id           String,
	method       LowCardinality(String),
	path         String,
	status_code  UInt16,
	ip_address   String,
	user_agent   String,
	api_token_id Nullable(String),
	created_at   DateTime
) ENGINE = MergeTree
ORDER BY (created_at, path)
`

// InitSQLite crea la tabla de peticiones si no existe.
func InitSQLite(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, sqliteSchema)
	return err
}

// InitClickHouse crea la tabla de peticiones en ClickHouse si no existe.
func InitClickHouse(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, clickhouseSchema)
	return err
}
