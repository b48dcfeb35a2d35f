package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	carparkDomain "github.com/glitchjsy/opendata-api/internal/carpark/domain"
	carparkRepo "github.com/glitchjsy/opendata-api/internal/carpark/infra/outbound/db"
	petitionDomain "github.com/glitchjsy/opendata-api/internal/petition/domain"
	petitionRepo "github.com/glitchjsy/opendata-api/internal/petition/infra/outbound/db"
	requestDomain "github.com/glitchjsy/opendata-api/internal/requestlog/domain"
	requestRepo "github.com/glitchjsy/opendata-api/internal/requestlog/infra/outbound/db"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS petitions (
	id              INTEGER PRIMARY KEY,
	created_at      TIMESTAMP NOT NULL,
	updated_at      TIMESTAMP,
	closed_at       TIMESTAMP,
	state           TEXT NOT NULL,
	creator_name    TEXT,
	title           TEXT NOT NULL,
	summary         TEXT,
	description     TEXT,
	signature_count INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS petition_ministers_responses (
	id           INTEGER PRIMARY KEY,
	petition_id  INTEGER NOT NULL,
	published_on DATE,
	summary      TEXT,
	description  TEXT
);
CREATE TABLE IF NOT EXISTS petition_debates (
	id             INTEGER PRIMARY KEY,
	petition_id    INTEGER NOT NULL,
	debated_on     DATE,
	transcript_url TEXT,
	video_url      TEXT,
	overview       TEXT
);
CREATE TABLE IF NOT EXISTS petition_signatures_by_parish (
	id              INTEGER PRIMARY KEY,
	petition_id     INTEGER NOT NULL,
	parish_name     TEXT NOT NULL,
	signature_count INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS live_parking_spaces (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	code       TEXT NOT NULL,
	spaces     INTEGER NOT NULL,
	status     TEXT,
	open       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS companies (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS carparks (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	live_tracking_code TEXT,
	owner_id           TEXT,
	latitude           DOUBLE PRECISION,
	longitude          DOUBLE PRECISION,
	spaces             INTEGER,
	disabled_spaces    INTEGER
);
CREATE TABLE IF NOT EXISTS carpark_payment_methods (
	id             INTEGER PRIMARY KEY,
	carpark_id     TEXT NOT NULL,
	payment_method TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS api_requests (
	id           TEXT PRIMARY KEY,
	method       TEXT NOT NULL,
	path         TEXT NOT NULL,
	status_code  INTEGER NOT NULL,
	ip_address   TEXT,
	user_agent   TEXT,
	api_token_id TEXT,
	created_at   TIMESTAMP NOT NULL
);
`

const fixtures = `
INSERT INTO petitions (id, created_at, state, title, signature_count) VALUES
	(1, '2023-05-01 10:00:00', 'closed', 'Library', 120),
	(2, '2024-02-10 09:30:00', 'open',   'Buses',   40),
	(3, '2024-06-15 12:00:00', 'closed', 'Roads',   300);
INSERT INTO petition_debates (id, petition_id, debated_on) VALUES (1, 3, '2024-07-01');
INSERT INTO petition_signatures_by_parish (id, petition_id, parish_name, signature_count) VALUES
	(1, 3, 'St Helier', 200), (2, 3, 'Trinity', 100);
INSERT INTO live_parking_spaces (id, name, code, spaces, status, open, created_at) VALUES
	(1, 'Green Street', 'GS', 0,  'FULL', TRUE, '2024-03-01 09:00:00'),
	(2, 'Green Street', 'GS', 12, NULL,   TRUE, '2024-03-01 10:00:00');
INSERT INTO companies (id, name) VALUES ('co-1', 'Government of Jersey');
INSERT INTO carparks (id, name, live_tracking_code, owner_id, spaces) VALUES
	('5f3e2d1c-8b7a-4c6d-9e0f-1a2b3c4d5e6f', 'Green Street', 'GS', 'co-1', 600),
	('9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d', 'Pier Road',    NULL, NULL,   250);
INSERT INTO carpark_payment_methods (id, carpark_id, payment_method) VALUES
	(1, '5f3e2d1c-8b7a-4c6d-9e0f-1a2b3c4d5e6f', 'Card'),
	(2, '5f3e2d1c-8b7a-4c6d-9e0f-1a2b3c4d5e6f', 'Cash');
`

// setupPostgres se conecta a Postgres, crea el esquema y limpia las tablas.
func setupPostgres(t *testing.T) *sqlstore.Executor {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		t.Skip("DATABASE_URL no está configurada, saltando test de integración con Postgres")
	}

	ctx := context.Background()
	db, err := sqlstore.Open(ctx, "pgx", connStr, sqlstore.PoolConfig{MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mustExec(t, db, postgresSchema)
	mustExec(t, db, `TRUNCATE TABLE petitions, petition_ministers_responses, petition_debates,
		petition_signatures_by_parish, live_parking_spaces, companies, carparks,
		carpark_payment_methods, api_requests`)
	mustExec(t, db, fixtures)

	return sqlstore.NewExecutor(db, sqlstore.Postgres, 5*time.Second, zap.NewNop())
}

func mustExec(t *testing.T, db *sql.DB, stmt string) {
	t.Helper()
	_, err := db.Exec(stmt)
	require.NoError(t, err)
}

func TestPetitionsPostgres(t *testing.T) {
	exec := setupPostgres(t)
	repo := petitionRepo.NewPetitionRepoSQL(exec, 4, zap.NewNop())
	ctx := context.Background()

	where, err := petitionDomain.Filters.Build(map[string]string{"state": "closed", "startDate": "2024/01/01"})
	require.NoError(t, err)
	res, err := repo.List(ctx, where, query.PageRequest{Page: 1, Limit: 10}, true)
	require.NoError(t, err)
	require.Len(t, res.Results, 1)

	data, err := json.Marshal(res.Results[0])
	require.NoError(t, err)
	var row map[string]any
	require.NoError(t, json.Unmarshal(data, &row))
	assert.Equal(t, "2024-06-15T12:00:00", row["created_at"])
	assert.Nil(t, row[petitionDomain.ExpandResponse])
	assert.NotNil(t, row[petitionDomain.ExpandDebate])
	assert.Len(t, row[petitionDomain.ExpandSignaturesByParish], 2)

	report, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, report.Complete(), "failed: %v", report.Failed)

	perYear, _ := report.Get(petitionDomain.StatPetitionsPerYear)
	data, _ = json.Marshal(perYear)
	assert.JSONEq(t, `[{"year":2023,"total":1},{"year":2024,"total":2}]`, string(data))
}

func TestCarparksPostgres(t *testing.T) {
	exec := setupPostgres(t)
	repo := carparkRepo.NewCarparkRepoSQL(exec, 4, zap.NewNop())

	report, err := repo.Stats(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, report.Complete(), "failed: %v", report.Failed)

	fullDays, _ := report.Get(carparkDomain.StatMostCommonFullDays)
	data, _ := json.Marshal(fullDays)
	assert.JSONEq(t, `[{"name":"Green Street","code":"GS","day_of_week":"Friday","full_count":1}]`, string(data))

	availability, _ := report.Get(carparkDomain.StatAvailabilityThisYear)
	data, _ = json.Marshal(availability)
	assert.JSONEq(t,
		`[{"name":"Green Street","code":"GS","year":2024,"month":3,"availability_percentage":50}]`,
		string(data))

	ctx := context.Background()
	carparks, err := repo.ListCarparks(ctx)
	require.NoError(t, err)
	require.Len(t, carparks, 2)
	owner, _ := carparks[0].Get("owner_name")
	assert.Equal(t, sqlstore.String("Government of Jersey"), owner)
	methods, _ := carparks[0].Get(carparkDomain.ExpandPaymentMethods)
	list, _ := methods.AsList()
	assert.Len(t, list, 2)

	found, err := repo.FindCarpark(ctx, carparkDomain.CarparkRef{Code: "GS"})
	require.NoError(t, err)
	name, _ := found.Get("name")
	assert.Equal(t, sqlstore.String("Green Street"), name)

	dates, err := repo.LiveSpaceDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-01"}, dates)
}

func TestRequestLogPostgres(t *testing.T) {
	exec := setupPostgres(t)
	repo := requestRepo.NewRequestRepoSQL(exec, 3, zap.NewNop())
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, requestDomain.NewRequest("GET", "/v1/petitions", 200, "1.1.1.1", "ua", "", now.Add(-time.Hour))))
	require.NoError(t, repo.Save(ctx, requestDomain.NewRequest("GET", "/v1/petitions", 200, "1.1.1.1", "ua", "tok", now.Add(-40*24*time.Hour))))

	report, err := repo.Stats(ctx, nil, now)
	require.NoError(t, err)
	totals, _ := report.Get(requestDomain.StatTotals)
	data, _ := json.Marshal(totals)
	assert.JSONEq(t, `{"total_all_time":2,"total_24_hours":1,"total_7_days":1,"total_30_days":1}`, string(data))
}
