package outbound

import (
	"encoding/json"
	"time"
)

// Envelope is the wire shape of a broadcast event on Redis and Kafka.
type Envelope struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
	SentAt  time.Time      `json:"sentAt"`
}

func encodeEnvelope(event string, payload map[string]any, now time.Time) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Payload: payload, SentAt: now.UTC()})
}
