package stats

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/glitchjsy/opendata-api/shared/domain"
	"github.com/glitchjsy/opendata-api/shared/platform/sqlstore"
)

// ComputeFunc calcula una estadística con nombre.
type ComputeFunc func(ctx context.Context) (sqlstore.Value, error)

// Statistic es una consulta agregada independiente.
type Statistic struct {
	Name    string
	Compute ComputeFunc
}

// Reporter lanza cada estadística en su propia goroutine y las une en un
// Report. Un fallo no cancela a las demás: la clave se omite y su nombre se
// añade a Report.Failed. Si fallan todas, devuelve ErrStoreUnavailable.
type Reporter struct {
	stats       []Statistic
	concurrency int
	log         *zap.Logger
}

// NewReporter crea un Reporter. concurrency <= 0 no limita las goroutines.
func NewReporter(concurrency int, log *zap.Logger, stats ...Statistic) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reporter{stats: stats, concurrency: concurrency, log: log}
}

type outcome struct {
	value sqlstore.Value
	err   error
}

func (r *Reporter) Run(ctx context.Context) (*Report, error) {
	results := make([]outcome, len(r.stats))

	// errgroup.Group sin WithContext: un error no cancela a los hermanos.
	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i, s := range r.stats {
		g.Go(func() error {
			results[i] = compute(ctx, s)
			return nil
		})
	}
	_ = g.Wait()

	report := NewReport()
	var errs []error
	for i, s := range r.stats {
		res := results[i]
		if res.err != nil {
			r.log.Error("statistic failed",
				zap.String("statistic", s.Name),
				zap.Error(res.err))
			report.Failed = append(report.Failed, s.Name)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, res.err))
			continue
		}
		report.Set(s.Name, res.value)
	}

	if len(r.stats) > 0 && len(errs) == len(r.stats) {
		return nil, domain.NewStoreError("statistics", errors.Join(errs...))
	}
	return report, nil
}

func compute(ctx context.Context, s Statistic) (out outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = outcome{err: fmt.Errorf("panic: %v", p)}
		}
	}()
	v, err := s.Compute(ctx)
	return outcome{value: v, err: err}
}
