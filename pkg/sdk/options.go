package visionlink

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	embedder         Embedder
	queryInstruction string

	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int

	searchK        int
	wideK          int
	retryAttempts  int
	retryBaseDelay time.Duration

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance.
// The instance must have the RedisJSON and RediSearch modules loaded.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider.
// Required for creating visions and products and for semantic search.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithQueryInstruction prepends instruction text to search queries before
// embedding. Useful with instruction-tuned embedding models that expect an
// asymmetric query prefix.
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryInstruction = instruction
	})
}

// WithVectorDimensions sets the embedding vector dimension.
// Must match the configured Embedder. Defaults to 1536.
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithLinkCandidates sets the nearest-neighbor fan-out used when linking:
// searchK for a new vision scouting products, wideK for a new product
// offering itself to visions and for backfill after deletions.
func WithLinkCandidates(searchK, wideK int) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchK = searchK
		c.wideK = wideK
	})
}

// WithLinkRetry configures the retry schedule for the product search a new
// vision runs while linking. Attempt n waits n*baseDelay before retrying.
func WithLinkRetry(attempts int, baseDelay time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.retryAttempts = attempts
		c.retryBaseDelay = baseDelay
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
