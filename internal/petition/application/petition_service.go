package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/petition/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/cache"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/shared/platform/stats"
)

var statsCacheKey = cache.Key("petitions", "stats")

// PetitionService implementa los casos de uso de peticiones.
type PetitionService struct {
	repo     domain.PetitionRepository
	cache    cache.Cache
	cacheTTL time.Duration
	limits   query.Limits
	log      *zap.Logger
}

// NewPetitionService es el constructor. cache puede ser nil.
func NewPetitionService(repo domain.PetitionRepository, c cache.Cache, cacheTTL time.Duration, limits query.Limits, log *zap.Logger) *PetitionService {
	return &PetitionService{repo: repo, cache: c, cacheTTL: cacheTTL, limits: limits, log: log}
}

// ListPetitions valida filtros y paginación antes de consultar el almacén.
func (s *PetitionService) ListPetitions(ctx context.Context, filters map[string]string, page, limit *int, includeFull bool) (query.PageResult[*sqlstore.Row], error) {
	where, err := domain.Filters.Build(filters)
	if err != nil {
		return query.PageResult[*sqlstore.Row]{}, err
	}
	pr, err := query.NewPageRequest(page, limit, s.limits)
	if err != nil {
		return query.PageResult[*sqlstore.Row]{}, err
	}
	return s.repo.List(ctx, where, pr, includeFull)
}

// GetPetitionStats lee primero de caché. Sólo se cachean informes completos.
func (s *PetitionService) GetPetitionStats(ctx context.Context) (*stats.Report, error) {
	var cached stats.Report
	if cache.Lookup(ctx, s.cache, statsCacheKey, &cached, s.log) {
		return &cached, nil
	}

	report, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if report.Complete() {
		cache.AsyncCacheSet(s.cache, statsCacheKey, report, s.cacheTTL, s.log)
	}
	return report, nil
}
