package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/requestlog/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
	"github.com/glitchjsy/opendata-api/shared/platform/stats"
)

// RequestLogService registra peticiones y expone sus estadísticas.
type RequestLogService struct {
	repo      domain.RequestRepository
	statsRepo domain.RequestStatsRepository
	now       func() time.Time
	log       *zap.Logger
}

func NewRequestLogService(repo domain.RequestRepository, statsRepo domain.RequestStatsRepository, now func() time.Time, log *zap.Logger) *RequestLogService {
	if now == nil {
		now = time.Now
	}
	return &RequestLogService{repo: repo, statsRepo: statsRepo, now: now, log: log}
}

// Record guarda una petición ya recibida del bus.
func (s *RequestLogService) Record(ctx context.Context, r domain.Request) error {
	return s.repo.Save(ctx, r)
}

// GetRequestStats devuelve totales, uso diario del mes (el actual si no se
// indica) y endpoints más usados.
func (s *RequestLogService) GetRequestStats(ctx context.Context, year, month *int) (*stats.Report, error) {
	scope, err := domain.NewScope(year, month)
	if err != nil {
		return nil, err
	}
	return s.statsRepo.Stats(ctx, scope, s.now().UTC())
}

// GetTopEndpoints devuelve siempre la misma forma, con o sin año/mes.
func (s *RequestLogService) GetTopEndpoints(ctx context.Context, year, month *int) ([]*sqlstore.Row, error) {
	scope, err := domain.NewScope(year, month)
	if err != nil {
		return nil, err
	}
	return s.statsRepo.TopEndpoints(ctx, scope)
}
