package services

import (
	"context"
	"encoding/binary"
	"log/slog"
	"math/rand"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/marchiver-labs/marchiver-core/internal/core/domain"
	"github.com/marchiver-labs/marchiver-core/internal/core/ports/driven"
	"github.com/marchiver-labs/marchiver-core/internal/core/ports/driving"
)

// Ensure embeddingService implements EmbeddingService
var _ driving.EmbeddingService = (*embeddingService)(nil)

// DefaultDimensions is the deployment-wide embedding dimension.
const DefaultDimensions = 768

// defaultAttemptTimeout bounds each provider attempt so a hanging provider
// cannot stall the whole chain.
const defaultAttemptTimeout = 10 * time.Second

// embeddingService tries hosted providers in priority order and falls back to
// a deterministic locally-generated vector when every provider fails. Whatever
// branch produces the vector, the result is resized to exactly dimensions
// components before it leaves this service.
type embeddingService struct {
	providers      []driven.EmbeddingProvider
	cache          driven.EmbeddingCache // optional
	dimensions     int
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// EmbeddingConfig holds configuration for the embedding service.
type EmbeddingConfig struct {
	// Providers are attempted in slice order; first success wins
	Providers []driven.EmbeddingProvider

	// Cache is consulted before any provider. Optional.
	Cache driven.EmbeddingCache

	// Dimensions is the target vector length (default 768)
	Dimensions int

	// AttemptTimeout bounds each individual provider call
	AttemptTimeout time.Duration

	Logger *slog.Logger
}

// NewEmbeddingService creates a new EmbeddingService.
func NewEmbeddingService(cfg EmbeddingConfig) driving.EmbeddingService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}

	attemptTimeout := cfg.AttemptTimeout
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}

	return &embeddingService{
		providers:      cfg.Providers,
		cache:          cfg.Cache,
		dimensions:     dimensions,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// Generate returns an embedding of exactly Dimensions() components.
// It never fails: provider errors are soft and the deterministic fallback is
// unconditionally reachable.
func (s *embeddingService) Generate(ctx context.Context, text string) []float32 {
	if s.cache != nil {
		if vec, ok := s.cache.Get(ctx, text); ok {
			return domain.ResizeVector(vec, s.dimensions)
		}
	}

	for _, provider := range s.providers {
		if max := provider.MaxInputBytes(); max > 0 && len(text) > max {
			s.logger.Warn("embedding provider skipped: input exceeds payload limit",
				"provider", provider.Name(),
				"input_bytes", len(text),
				"max_bytes", max,
			)
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, s.attemptTimeout)
		vec, err := provider.Embed(attemptCtx, text)
		cancel()

		if err != nil {
			s.logger.Warn("embedding provider failed",
				"provider", provider.Name(),
				"error", err,
			)
			continue
		}
		if len(vec) == 0 {
			s.logger.Warn("embedding provider returned empty vector",
				"provider", provider.Name(),
			)
			continue
		}

		vec = domain.ResizeVector(vec, s.dimensions)
		if s.cache != nil {
			s.cache.Set(ctx, text, vec)
		}
		return vec
	}

	// Fallback vectors are not cached: a provider coming back online should
	// replace them on the next call for the same text.
	s.logger.Warn("all embedding providers unavailable, using deterministic fallback")
	return FallbackEmbedding(text, s.dimensions)
}

// Dimensions returns the deployment-wide embedding dimension.
func (s *embeddingService) Dimensions() int {
	return s.dimensions
}

// FallbackEmbedding synthesizes a deterministic unit vector for text.
// The generator is seeded from a BLAKE2b digest of the text, so the same text
// produces the same vector on any host. Components are drawn uniformly from
// [-1, 1] and the result is L2-normalized; the degenerate zero-magnitude draw
// yields the all-zero vector.
func FallbackEmbedding(text string, dim int) []float32 {
	digest := blake2b.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(digest[:8]))

	rng := rand.New(rand.NewSource(seed))
	vec := make([]float32, dim)
	for i := range vec {
		vec[i] = float32(rng.Float64()*2 - 1)
	}

	return domain.NormalizeVector(vec)
}
