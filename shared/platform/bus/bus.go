package bus

import "context"

// Keyer permite a un evento elegir su clave de partición.
type Keyer interface {
	PartitionKey() string
}

// EventPublisher publica eventos; el topic y el formato los decide el adapter.
type EventPublisher interface {
	Publish(ctx context.Context, event interface{}) error
}

// MessageHandler procesa un mensaje ya recibido (Kafka o bus en memoria).
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}
