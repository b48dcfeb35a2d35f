package bus

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Message es lo que recibe un suscriptor del bus en memoria.
type Message struct {
	Key     string
	Payload []byte
}

// InMemoryEventBus reparte eventos de UN topic entre suscriptores locales.
// Si el buffer de un suscriptor está lleno, el mensaje se descarta para él.
type InMemoryEventBus struct {
	topic       string
	subscribers []chan Message
	mu          sync.RWMutex
	closed      bool
}

var _ EventPublisher = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(topic string) *InMemoryEventBus {
	return &InMemoryEventBus{topic: topic}
}

func (b *InMemoryEventBus) Topic() string { return b.topic }

func (b *InMemoryEventBus) Publish(ctx context.Context, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := Message{Payload: payload}
	if k, ok := event.(Keyer); ok {
		msg.Key = k.PartitionKey()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}
	for _, sub := range b.subscribers {
		select {
		case sub <- msg:
		default:
		}
	}
	return nil
}

// Subscribe registra un oyente con un buffer de bufferSize mensajes.
func (b *InMemoryEventBus) Subscribe(bufferSize int) <-chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Message, bufferSize)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Close cierra los canales de los suscriptores.
func (b *InMemoryEventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, sub := range b.subscribers {
		close(sub)
	}
}

// BackgroundConsumer entrega los mensajes del canal al handler hasta que se
// cancele el contexto o se cierre el canal. Devuelve un canal que se cierra
// al terminar.
func BackgroundConsumer(ctx context.Context, ch <-chan Message, handler MessageHandler, log *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				handler.HandleMessage(ctx, msg.Key, msg.Payload)
			case <-ctx.Done():
				log.Info("In-memory consumer stopped")
				return
			}
		}
	}()
	return done
}
