package db

import (
	"context"
	"database/sql"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS live_parking_spaces (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	code       TEXT NOT NULL,
	spaces     INTEGER NOT NULL,
	status     TEXT,
	open       BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_live_spaces_created ON live_parking_spaces(created_at);

CREATE TABLE IF NOT EXISTS companies (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS carparks (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	live_tracking_code TEXT,
	owner_id           TEXT REFERENCES companies(id),
	latitude           REAL,
	longitude          REAL,
	spaces             INTEGER,
	disabled_spaces    INTEGER
);
CREATE INDEX IF NOT EXISTS idx_carparks_code ON carparks(live_tracking_code);

CREATE TABLE IF NOT EXISTS carpark_payment_methods (
	id             INTEGER PRIMARY KEY,
	carpark_id     TEXT NOT NULL REFERENCES carparks(id),
	payment_method TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_payment_methods_carpark ON carpark_payment_methods(carpark_id);
`

// InitSQLite crea las tablas de aparcamientos si no existen.
func InitSQLite(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, sqliteSchema)
	return err
}
