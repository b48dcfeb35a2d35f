package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/petition/domain"
	sharedDomain "github.com/glitchjsy/opendata-api/shared/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/listing"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/shared/platform/stats"
)

// PetitionRepoSQL implementa domain.PetitionRepository sobre database/sql.
type PetitionRepoSQL struct {
	lister   *listing.Lister
	expander *listing.Expander
	reporter *stats.Reporter
}

var _ domain.PetitionRepository = (*PetitionRepoSQL)(nil)

func NewPetitionRepoSQL(exec *sqlstore.Executor, statsConcurrency int, log *zap.Logger) *PetitionRepoSQL {
	return &PetitionRepoSQL{
		lister: listing.NewLister(exec, listing.Source{
			Table:   domain.PetitionsTable,
			OrderBy: []query.Sort{query.Desc("id")},
		}),
		expander: listing.NewExpander(exec, "id", log,
			listing.Relation{
				Name:       domain.ExpandResponse,
				Table:      domain.ResponsesTable,
				ForeignKey: "petition_id",
				OrderBy:    []query.Sort{query.Asc("id")},
				Kind:       listing.OneToOne,
			},
			listing.Relation{
				Name:       domain.ExpandDebate,
				Table:      domain.DebatesTable,
				ForeignKey: "petition_id",
				OrderBy:    []query.Sort{query.Asc("id")},
				Kind:       listing.OneToOne,
			},
			listing.Relation{
				Name:       domain.ExpandSignaturesByParish,
				Table:      domain.SignaturesByParishTable,
				ForeignKey: "petition_id",
				OrderBy:    []query.Sort{query.Asc("parish_name"), query.Asc("id")},
				Kind:       listing.OneToMany,
			},
		),
		reporter: stats.NewReporter(statsConcurrency, log, petitionStatistics(exec)...),
	}
}

func (r *PetitionRepoSQL) List(ctx context.Context, where sharedDomain.Criteria, page query.PageRequest, includeFull bool) (query.PageResult[*sqlstore.Row], error) {
	res, err := r.lister.List(ctx, where, page)
	if err != nil || !includeFull {
		return res, err
	}

	full, err := r.expander.Expand(ctx, res.Results)
	if err != nil {
		return query.PageResult[*sqlstore.Row]{}, err
	}
	res.Results = full
	return res, nil
}

func (r *PetitionRepoSQL) Stats(ctx context.Context) (*stats.Report, error) {
	return r.reporter.Run(ctx)
}

func petitionStatistics(exec *sqlstore.Executor) []stats.Statistic {
	b := exec.Builder()
	d := exec.Dialect()

	perYear := func(table, col string) sq.SelectBuilder {
		year := d.Year(col)
		return b.Select(year+" AS year", "COUNT(*) AS total").
			From(table).
			Where(col + " IS NOT NULL").
			GroupBy(year).
			OrderBy(year + " ASC")
	}

	return []stats.Statistic{
		{
			Name: domain.StatTopPetitions,
			Compute: stats.Rows(exec, b.Select("id", "title", "signature_count").
				From(domain.PetitionsTable).
				OrderBy("signature_count DESC", "id ASC").
				Limit(domain.TopPetitionsLimit)),
		},
		{
			Name: domain.StatSignaturesByParish,
			Compute: stats.Grouped(exec, b.Select("ps.parish_name AS parish_name", "CAST(SUM(ps.signature_count) AS BIGINT) AS total").
				From(domain.SignaturesByParishTable+" ps").
				Join(domain.PetitionsTable+" p ON ps.petition_id = p.id").
				GroupBy("ps.parish_name").
				OrderBy("ps.parish_name ASC"), "parish_name", "total"),
		},
		{
			Name: domain.StatPetitionsByState,
			Compute: stats.Grouped(exec, b.Select("state", "COUNT(*) AS total").
				From(domain.PetitionsTable).
				GroupBy("state").
				OrderBy("state ASC"), "state", "total"),
		},
		{
			Name: domain.StatDebatedPetitions,
			Compute: stats.Scalar(exec, b.Select("COUNT(DISTINCT petition_id)").
				From(domain.DebatesTable).
				Where("debated_on IS NOT NULL")),
		},
		{
			Name: domain.StatPetitionsWithResponses,
			Compute: stats.Scalar(exec, b.Select("COUNT(DISTINCT petition_id)").
				From(domain.ResponsesTable)),
		},
		{Name: domain.StatPetitionsPerYear, Compute: stats.Rows(exec, perYear(domain.PetitionsTable, "created_at"))},
		{Name: domain.StatResponsesPerYear, Compute: stats.Rows(exec, perYear(domain.ResponsesTable, "published_on"))},
		{Name: domain.StatDebatesPerYear, Compute: stats.Rows(exec, perYear(domain.DebatesTable, "debated_on"))},
	}
}
