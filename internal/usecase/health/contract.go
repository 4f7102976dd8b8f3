package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// IndexChecker verifies that the embedding indexes are in place.
type IndexChecker interface {
	IndexExists(ctx context.Context, name string) (bool, error)
}
