package events

import (
	"encoding/json"
	"time"
)

// IntegrationEvent es el sobre común de todos los eventos publicados.
type IntegrationEvent struct {
	Type      string          `json:"type"`
	Key       string          `json:"key,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewIntegrationEvent serializa data dentro del sobre.
func NewIntegrationEvent(eventType, key string, at time.Time, data interface{}) (IntegrationEvent, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return IntegrationEvent{}, err
	}
	return IntegrationEvent{Type: eventType, Key: key, Timestamp: at.UTC(), Data: raw}, nil
}

// PartitionKey agrupa en la misma partición los eventos con la misma clave.
func (e IntegrationEvent) PartitionKey() string { return e.Key }
