package redis

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/marchiver-labs/marchiver-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EmbeddingCache = (*EmbeddingCache)(nil)

const (
	// Key prefix for cached embeddings
	embeddingPrefix = "embedding:"

	// defaultTTL keeps entries around long enough to absorb bursts of
	// re-archiving the same pages without pinning stale vectors forever
	defaultTTL = 24 * time.Hour
)

// EmbeddingCache is a Redis-backed best-effort vector cache keyed by a
// BLAKE2b digest of the text. Cache failures are logged and reported as
// misses; the embedding chain then falls through to its providers.
type EmbeddingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewEmbeddingCache creates a new Redis-backed EmbeddingCache
func NewEmbeddingCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *EmbeddingCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Get returns the cached embedding for text, if any
func (c *EmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool) {
	data, err := c.client.Get(ctx, cacheKey(text)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("embedding cache read failed", "error", err)
		return nil, false
	}

	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		c.logger.Warn("embedding cache entry corrupt, discarding", "error", err)
		return nil, false
	}
	return vec, true
}

// Set stores the embedding for text. Failures are swallowed.
func (c *EmbeddingCache) Set(ctx context.Context, text string, embedding []float32) {
	data, err := json.Marshal(embedding)
	if err != nil {
		c.logger.Warn("embedding cache encode failed", "error", err)
		return
	}

	if err := c.client.Set(ctx, cacheKey(text), data, c.ttl).Err(); err != nil {
		c.logger.Warn("embedding cache write failed", "error", err)
	}
}

// cacheKey digests the text so arbitrarily large documents hash to a
// fixed-size key
func cacheKey(text string) string {
	digest := blake2b.Sum256([]byte(text))
	return embeddingPrefix + hex.EncodeToString(digest[:])
}
