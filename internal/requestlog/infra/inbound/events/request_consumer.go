package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/glitchjsy/opendata-api/internal/requestlog/application"
	"github.com/glitchjsy/opendata-api/internal/requestlog/domain"
	sharedEvents "github.com/glitchjsy/opendata-api/shared/events"
	"github.com/glitchjsy/opendata-api/shared/platform/bus"
	"github.com/glitchjsy/opendata-api/shared/utils"
)

// RequestConsumer persiste los eventos request.tracked que llegan del bus.
type RequestConsumer struct {
	service  *application.RequestLogService
	attempts int
	delay    time.Duration
	log      *zap.Logger
}

var _ bus.MessageHandler = (*RequestConsumer)(nil)

func NewRequestConsumer(service *application.RequestLogService, log *zap.Logger) *RequestConsumer {
	return &RequestConsumer{service: service, attempts: 3, delay: 100 * time.Millisecond, log: log}
}

func (c *RequestConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var evt sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		c.log.Error("invalid integration event", zap.String("key", key), zap.Error(err))
		return
	}
	if evt.Type != domain.EventRequestTracked {
		c.log.Debug("ignoring event", zap.String("type", evt.Type))
		return
	}

	var r domain.Request
	if err := json.Unmarshal(evt.Data, &r); err != nil {
		c.log.Error("invalid request payload", zap.String("key", key), zap.Error(err))
		return
	}

	err := utils.Retry(ctx, c.attempts, c.delay, func() error {
		return c.service.Record(ctx, r)
	})
	if err != nil {
		c.log.Error("request log write failed",
			zap.String("id", r.ID.String()),
			zap.String("path", r.Path),
			zap.Error(err))
	}
}
