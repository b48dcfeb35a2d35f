package application

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/carpark/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/cache"
	"github.com/glitchjsy/opendata-api/shared/platform/query"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/shared/platform/stats"
)

// CarparkService implementa los casos de uso de aparcamientos.
type CarparkService struct {
	repo     domain.CarparkRepository
	cache    cache.Cache
	cacheTTL time.Duration
	limits   query.Limits
	now      func() time.Time
	log      *zap.Logger
}

func NewCarparkService(repo domain.CarparkRepository, c cache.Cache, cacheTTL time.Duration, limits query.Limits, now func() time.Time, log *zap.Logger) *CarparkService {
	if now == nil {
		now = time.Now
	}
	return &CarparkService{repo: repo, cache: c, cacheTTL: cacheTTL, limits: limits, now: now, log: log}
}

func (s *CarparkService) ListLiveSpaces(ctx context.Context, filters map[string]string, page, limit *int) (query.PageResult[*sqlstore.Row], error) {
	where, err := domain.Filters.Build(filters)
	if err != nil {
		return query.PageResult[*sqlstore.Row]{}, err
	}
	pr, err := query.NewPageRequest(page, limit, s.limits)
	if err != nil {
		return query.PageResult[*sqlstore.Row]{}, err
	}
	return s.repo.ListLiveSpaces(ctx, where, pr)
}

// ListCarparks devuelve el directorio de aparcamientos con sus métodos de pago.
func (s *CarparkService) ListCarparks(ctx context.Context) ([]*sqlstore.Row, error) {
	return s.repo.ListCarparks(ctx)
}

// GetCarpark acepta un id (UUID) o un código de seguimiento.
func (s *CarparkService) GetCarpark(ctx context.Context, idOrCode string) (*sqlstore.Row, error) {
	ref, err := domain.ParseCarparkRef(idOrCode)
	if err != nil {
		return nil, err
	}
	return s.repo.FindCarpark(ctx, ref)
}

func (s *CarparkService) ListLiveSpaceDates(ctx context.Context) ([]string, error) {
	return s.repo.LiveSpaceDates(ctx)
}

// GetParkingStats cachea por año: al cambiar de año cambia la clave.
func (s *CarparkService) GetParkingStats(ctx context.Context) (*stats.Report, error) {
	now := s.now()
	key := cache.Key("carparks", "stats", strconv.Itoa(now.Year()))

	var cached stats.Report
	if cache.Lookup(ctx, s.cache, key, &cached, s.log) {
		return &cached, nil
	}

	report, err := s.repo.Stats(ctx, now)
	if err != nil {
		return nil, err
	}
	if report.Complete() {
		cache.AsyncCacheSet(s.cache, key, report, s.cacheTTL, s.log)
	}
	return report, nil
}
