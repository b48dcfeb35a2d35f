package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/carpark/domain"
	sharedDomain "github.com/glitchjsy/opendata-api/shared/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/listing"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/shared/platform/stats"
)

// CarparkRepoSQL implementa domain.CarparkRepository sobre database/sql.
type CarparkRepoSQL struct {
	exec        *sqlstore.Executor
	lister      *listing.Lister
	expander    *listing.Expander
	concurrency int
	log         *zap.Logger
}

var _ domain.CarparkRepository = (*CarparkRepoSQL)(nil)

func NewCarparkRepoSQL(exec *sqlstore.Executor, statsConcurrency int, log *zap.Logger) *CarparkRepoSQL {
	return &CarparkRepoSQL{
		exec: exec,
		lister: listing.NewLister(exec, listing.Source{
			Table:   domain.LiveSpacesTable,
			Columns: []string{"id", "name", "code", "spaces", "status", "open", "created_at"},
			OrderBy: []query.Sort{query.Desc("created_at"), query.Desc("id")},
		}),
		expander: listing.NewExpander(exec, "id", log,
			listing.Relation{
				Name:       domain.ExpandPaymentMethods,
				Table:      domain.PaymentMethodsTable,
				ForeignKey: "carpark_id",
				Columns:    []string{"payment_method"},
				OrderBy:    []query.Sort{query.Asc("payment_method"), query.Asc("id")},
				Kind:       listing.OneToMany,
			},
		),
		concurrency: statsConcurrency,
		log:         log,
	}
}

func (r *CarparkRepoSQL) ListLiveSpaces(ctx context.Context, where sharedDomain.Criteria, page query.PageRequest) (query.PageResult[*sqlstore.Row], error) {
	return r.lister.List(ctx, where, page)
}

var carparkColumns = []string{
	"c.id AS id",
	"c.name AS name",
	"c.live_tracking_code AS live_tracking_code",
	"c.owner_id AS owner_id",
	"co.name AS owner_name",
	"c.latitude AS latitude",
	"c.longitude AS longitude",
	"c.spaces AS spaces",
	"c.disabled_spaces AS disabled_spaces",
}

func (r *CarparkRepoSQL) carparks() sq.SelectBuilder {
	return r.exec.Builder().
		Select(carparkColumns...).
		From(domain.CarparksTable + " c").
		LeftJoin(domain.CompaniesTable + " co ON co.id = c.owner_id")
}

func (r *CarparkRepoSQL) ListCarparks(ctx context.Context) ([]*sqlstore.Row, error) {
	rows, err := r.exec.Query(ctx, r.carparks().OrderBy("c.name ASC", "c.id ASC"))
	if err != nil {
		return nil, sharedDomain.NewStoreError("list carparks", err)
	}
	return r.expander.Expand(ctx, rows)
}

func (r *CarparkRepoSQL) FindCarpark(ctx context.Context, ref domain.CarparkRef) (*sqlstore.Row, error) {
	q := r.carparks()
	if ref.ID != "" {
		q = q.Where(sq.Eq{"c.id": ref.ID})
	} else {
		q = q.Where(sq.Eq{"c.live_tracking_code": ref.Code})
	}

	rows, err := r.exec.Query(ctx, q.OrderBy("c.id ASC").Limit(1))
	if err != nil {
		return nil, sharedDomain.NewStoreError("find carpark", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("carpark %s%s: %w", ref.ID, ref.Code, sharedDomain.ErrNotFound)
	}

	expanded, err := r.expander.Expand(ctx, rows)
	if err != nil {
		return nil, err
	}
	return expanded[0], nil
}

func (r *CarparkRepoSQL) LiveSpaceDates(ctx context.Context) ([]string, error) {
	day := r.exec.Dialect().Day("created_at")
	rows, err := r.exec.Query(ctx, r.exec.Builder().
		Select(day+" AS sample_date").
		Distinct().
		From(domain.LiveSpacesTable).
		OrderBy("sample_date DESC"))
	if err != nil {
		return nil, sharedDomain.NewStoreError("live space dates", err)
	}

	dates := make([]string, 0, len(rows))
	for _, row := range rows {
		v, _ := row.Get("sample_date")
		if d, ok := v.AsString(); ok {
			dates = append(dates, d)
		}
	}
	return dates, nil
}

func (r *CarparkRepoSQL) Stats(ctx context.Context, now time.Time) (*stats.Report, error) {
	return stats.NewReporter(r.concurrency, r.log, r.statistics(now.Year())...).Run(ctx)
}

// isFull: sin plazas o marcado como lleno.
var isFull = sq.Or{sq.Eq{"spaces": 0}, sq.Eq{"status": domain.StatusFull}}

func (r *CarparkRepoSQL) statistics(year int) []stats.Statistic {
	b := r.exec.Builder()
	d := r.exec.Dialect()
	weekday := d.Weekday("created_at")

	return []stats.Statistic{
		{
			Name: domain.StatBusiestCarparks,
			Compute: stats.Rows(r.exec, b.Select("name", "code", "COUNT(*) AS times_full").
				From(domain.LiveSpacesTable).
				Where(isFull).
				GroupBy("name", "code").
				OrderBy("times_full DESC", "code ASC")),
		},
		{
			Name: domain.StatMostCommonFullDays,
			Compute: stats.Rows(r.exec, b.Select("name", "code", weekday+" AS day_of_week", "COUNT(*) AS full_count").
				From(domain.LiveSpacesTable).
				Where(isFull).
				GroupBy("name", "code", weekday).
				OrderBy("name ASC", "code ASC", "full_count DESC", "day_of_week ASC")),
		},
		{Name: domain.StatAvailabilityThisYear, Compute: stats.Rows(r.exec, r.availability(year))},
		{Name: domain.StatAvailabilityLastYear, Compute: stats.Rows(r.exec, r.availability(year-1))},
	}
}

// availability: porcentaje mensual de muestras con plazas libres.
func (r *CarparkRepoSQL) availability(year int) sq.SelectBuilder {
	d := r.exec.Dialect()
	y, m := d.Year("created_at"), d.Month("created_at")
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	return r.exec.Builder().
		Select("name", "code", y+" AS year", m+" AS month",
			"ROUND(100.0 * SUM(CASE WHEN spaces > 0 THEN 1 ELSE 0 END) / COUNT(*), 2) AS availability_percentage").
		From(domain.LiveSpacesTable).
		Where(sq.GtOrEq{"created_at": d.TimeArg(from)}).
		Where(sq.Lt{"created_at": d.TimeArg(to)}).
		GroupBy("name", "code", y, m).
		OrderBy("name ASC", "code ASC", "month ASC")
}
