package db

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/requestlog/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/shared/platform/stats"
)

// RequestRepoSQL guarda y agrega el registro de peticiones. Sirve tanto para
// el almacén relacional como para ClickHouse: las diferencias las resuelve
// el dialecto del Executor.
type RequestRepoSQL struct {
	exec        *sqlstore.Executor
	concurrency int
	log         *zap.Logger
}

var (
	_ domain.RequestRepository      = (*RequestRepoSQL)(nil)
	_ domain.RequestStatsRepository = (*RequestRepoSQL)(nil)
)

func NewRequestRepoSQL(exec *sqlstore.Executor, statsConcurrency int, log *zap.Logger) *RequestRepoSQL {
	return &RequestRepoSQL{exec: exec, concurrency: statsConcurrency, log: log}
}

func (r *RequestRepoSQL) Save(ctx context.Context, req domain.Request) error {
	var token any
	if req.APITokenID != nil {
		token = *req.APITokenID
	}

	q := r.exec.Builder().
		Insert(domain.RequestsTable).
		Columns("id", "method", "path", "status_code", "ip_address", "user_agent", "api_token_id", "created_at").
		Values(req.ID.String(), req.Method, req.Path, req.StatusCode, req.IPAddress, req.UserAgent, token,
			r.exec.Dialect().TimeArg(req.CreatedAt))

	_, err := r.exec.Exec(ctx, q)
	return err
}

// Stats trabaja en UTC, igual que created_at.
func (r *RequestRepoSQL) Stats(ctx context.Context, scope *domain.Scope, now time.Time) (*stats.Report, error) {
	now = now.UTC()
	month := domain.ScopeOf(now)
	if scope != nil {
		month = *scope
	}

	return stats.NewReporter(r.concurrency, r.log,
		stats.Statistic{Name: domain.StatTotals, Compute: stats.Single(r.exec, r.totals(now))},
		stats.Statistic{Name: domain.StatDailyForMonth, Compute: stats.Rows(r.exec, r.dailyForMonth(month))},
		stats.Statistic{Name: domain.StatTopEndpoints, Compute: stats.Rows(r.exec, r.topEndpoints(scope))},
	).Run(ctx)
}

func (r *RequestRepoSQL) TopEndpoints(ctx context.Context, scope *domain.Scope) ([]*sqlstore.Row, error) {
	return r.exec.Query(ctx, r.topEndpoints(scope))
}

// totals usa una sola pasada con cortes relativos a now.
func (r *RequestRepoSQL) totals(now time.Time) sq.SelectBuilder {
	d := r.exec.Dialect()
	since := func(alias string, ago time.Duration) sq.Sqlizer {
		return sq.Expr("COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0) AS "+alias,
			d.TimeArg(now.Add(-ago)))
	}

	return r.exec.Builder().
		Select("COUNT(*) AS total_all_time").
		Column(since("total_24_hours", 24*time.Hour)).
		Column(since("total_7_days", 7*24*time.Hour)).
		Column(since("total_30_days", 30*24*time.Hour)).
		From(domain.RequestsTable)
}

func (r *RequestRepoSQL) dailyForMonth(month domain.Scope) sq.SelectBuilder {
	d := r.exec.Dialect()
	day := d.Day("created_at")
	auth := "CASE WHEN api_token_id IS NULL THEN 'unauthenticated' ELSE 'authenticated' END"

	return r.inScope(r.exec.Builder().
		Select(day+" AS day", auth+" AS auth_status", "COUNT(*) AS total").
		From(domain.RequestsTable), &month).
		GroupBy(day, auth).
		OrderBy("day ASC", "auth_status ASC")
}

// topEndpoints devuelve las mismas columnas con y sin scope.
func (r *RequestRepoSQL) topEndpoints(scope *domain.Scope) sq.SelectBuilder {
	return r.inScope(r.exec.Builder().
		Select("path", "COUNT(*) AS total").
		From(domain.RequestsTable), scope).
		GroupBy("path").
		OrderBy("total DESC", "path ASC").
		Limit(domain.TopEndpointsLimit)
}

func (r *RequestRepoSQL) inScope(b sq.SelectBuilder, scope *domain.Scope) sq.SelectBuilder {
	if scope == nil {
		return b
	}
	d := r.exec.Dialect()
	from, to := scope.Range()
	return b.Where(sq.GtOrEq{"created_at": d.TimeArg(from)}).
		Where(sq.Lt{"created_at": d.TimeArg(to)})
}
