package db

import (
	"context"
	"database/sql"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS petitions (
	id              INTEGER PRIMARY KEY,
	created_at      DATETIME NOT NULL,
	updated_at      DATETIME,
	closed_at       DATETIME,
	state           TEXT NOT NULL,
	creator_name    TEXT,
	title           TEXT NOT NULL,
	summary         TEXT,
	description     TEXT,
	signature_count INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS petition_ministers_responses (
	id           INTEGER PRIMARY KEY,
	petition_id  INTEGER NOT NULL REFERENCES petitions(id),
	published_on DATE,
	summary      TEXT,
	description  TEXT
);
CREATE TABLE IF NOT EXISTS petition_debates (
	id             INTEGER PRIMARY KEY,
	petition_id    INTEGER NOT NULL REFERENCES petitions(id),
	debated_on     DATE,
	transcript_url TEXT,
	video_url      TEXT,
	overview       TEXT
);
CREATE TABLE IF NOT EXISTS petition_signatures_by_parish (
	id              INTEGER PRIMARY KEY,
	petition_id     INTEGER NOT NULL REFERENCES petitions(id),
	parish_name     TEXT NOT NULL,
	signature_count INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_responses_petition ON petition_ministers_responses(petition_id);
CREATE INDEX IF NOT EXISTS idx_debates_petition ON petition_debates(petition_id);
CREATE INDEX IF NOT EXISTS idx_signatures_petition ON petition_signatures_by_parish(petition_id);
`

// InitSQLite crea las tablas de peticiones si no existen.
func InitSQLite(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, sqliteSchema)
	return err
}
