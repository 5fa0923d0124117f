package events

import "context"

// KeyStore resolves API keys to the source they authorize. An empty source
// with a nil error means the key is unknown or bound to no source.
type KeyStore interface {
	SourceForKey(ctx context.Context, key string) (string, error)
}

// EventStore persists and retrieves event records partitioned by day.
type EventStore interface {
	PutEvent(ctx context.Context, rec Record) error
	QueryDay(ctx context.Context, tsDay int64) ([]Record, error)
}
