package messaging

import (
	"context"
)

// Broker defines the interface for message brokers. Booking notifications are
// published to a per-doctor topic; delivery fan-out is the transport's concern.
type Broker interface {
	Publish(ctx context.Context, topic string, message interface{}) error
	Subscribe(ctx context.Context, topic string) (<-chan []byte, error)
	Close() error
}
