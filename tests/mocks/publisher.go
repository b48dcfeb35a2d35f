package mocks

import (
	"context"
	"sync"

	"github.com/glitchjsy/opendata-api/shared/platform/bus"
)

// RecordingPublisher guarda los eventos publicados. Si Err no es nil, falla.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []interface{}
	Err    error
	// Block, si no es nil, retiene cada Publish hasta que se cierre.
	Block chan struct{}
}

var _ bus.EventPublisher = (*RecordingPublisher)(nil)

func (p *RecordingPublisher) Publish(ctx context.Context, event interface{}) error {
	if p.Block != nil {
		<-p.Block
	}
	if p.Err != nil {
		return p.Err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Events() []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]interface{}(nil), p.events...)
}
