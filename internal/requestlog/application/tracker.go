package application

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/requestlog/domain"
	"github.com/glitchjsy/opendata-api/shared/events"
	"github.com/glitchjsy/opendata-api/shared/platform/bus"
)

// Tracker publica las peticiones registradas desde un pool fijo de workers.
// La cola está acotada: si se llena, la petición se descarta.
type Tracker struct {
	publisher bus.EventPublisher
	queue     chan domain.Request
	workers   int
	log       *zap.Logger

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Int64
}

func NewTracker(publisher bus.EventPublisher, workers, buffer int, log *zap.Logger) *Tracker {
	if workers < 1 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Tracker{
		publisher: publisher,
		queue:     make(chan domain.Request, buffer),
		workers:   workers,
		log:       log,
	}
}

// Start lanza los workers. Terminan cuando Stop cierra la cola.
func (t *Tracker) Start(ctx context.Context) {
	for i := 0; i < t.workers; i++ {
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			for r := range t.queue {
				t.publish(ctx, r)
			}
		}()
	}
}

// Track encola sin bloquear. Devuelve false si se ha descartado.
func (t *Tracker) Track(r domain.Request) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return false
	}

	select {
	case t.queue <- r:
		return true
	default:
		t.dropped.Add(1)
		t.log.Warn("request tracking queue full, dropping",
			zap.String("path", r.Path),
			zap.Int64("dropped", t.dropped.Load()))
		return false
	}
}

// Stop deja de aceptar peticiones y espera a que se vacíe la cola.
func (t *Tracker) Stop() {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()
	t.wg.Wait()
}

func (t *Tracker) Dropped() int64 { return t.dropped.Load() }

func (t *Tracker) publish(ctx context.Context, r domain.Request) {
	evt, err := events.NewIntegrationEvent(domain.EventRequestTracked, r.PartitionKey(), r.CreatedAt, r)
	if err != nil {
		t.log.Error("request event encoding failed", zap.Error(err))
		return
	}
	if err := t.publisher.Publish(ctx, evt); err != nil {
		t.log.Error("request event publish failed",
			zap.String("path", r.Path),
			zap.Error(err))
	}
}
