package bus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaPublisher struct {
	writer *kafka.Writer
	log    *zap.Logger
}

var _ EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(writer *kafka.Writer, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, log: log}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var key []byte
	if keyer, ok := event.(Keyer); ok {
		key = []byte(keyer.PartitionKey())
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: data}); err != nil {
		p.log.Error("Error publishing to Kafka", zap.String("topic", p.writer.Topic), zap.Error(err))
		return err
	}
	return nil
}

// messageReader es la parte de *kafka.Reader que usa el consumidor.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// ConsumerAdapter lee de un topic de Kafka y delega en un MessageHandler.
// Tras un error de lectura espera antes de reintentar, duplicando la espera
// hasta maxBackoff mientras el broker siga fallando.
type ConsumerAdapter struct {
	reader     messageReader
	topic      string
	brokers    []string
	handler    MessageHandler
	log        *zap.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewConsumerAdapter(reader *kafka.Reader, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	cfg := reader.Config()
	return &ConsumerAdapter{
		reader:     reader,
		topic:      cfg.Topic,
		brokers:    cfg.Brokers,
		handler:    handler,
		log:        log,
		minBackoff: 200 * time.Millisecond,
		maxBackoff: 10 * time.Second,
	}
}

// Start lanza el bucle de consumo en una goroutine; termina al cancelar ctx.
func (c *ConsumerAdapter) Start(ctx context.Context) {
	c.log.Info("Starting Kafka consumer",
		zap.String("topic", c.topic),
		zap.Strings("brokers", c.brokers),
	)
	go c.run(ctx)
}

func (c *ConsumerAdapter) run(ctx context.Context) {
	backoff := c.minBackoff
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Kafka consumer stopped", zap.String("topic", c.topic))
				return
			}
			c.log.Error("Error reading from Kafka", zap.Duration("retry_in", backoff), zap.Error(err))

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				c.log.Info("Kafka consumer stopped", zap.String("topic", c.topic))
				return
			}
			backoff = min(backoff*2, c.maxBackoff)
			continue
		}
		backoff = c.minBackoff
		c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)
	}
}
