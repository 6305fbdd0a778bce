package services

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marchiver-labs/marchiver-core/internal/core/ports/driven"
	"github.com/marchiver-labs/marchiver-core/internal/core/ports/driven/mocks"
)

func TestEmbeddingService_AlwaysReturnsDimensionLength(t *testing.T) {
	provider := mocks.NewMockEmbeddingProvider("primary", 1536) // native dim != D
	svc := NewEmbeddingService(EmbeddingConfig{
		Providers: []driven.EmbeddingProvider{provider},
		Logger:    slog.Default(),
	})

	vec := svc.Generate(context.Background(), "some text")
	assert.Len(t, vec, DefaultDimensions)
}

func TestEmbeddingService_FallsThroughToSecondary(t *testing.T) {
	primary := mocks.NewMockEmbeddingProvider("primary", 768)
	primary.SetFailAlways(true)
	secondary := mocks.NewMockEmbeddingProvider("secondary", 768)

	svc := NewEmbeddingService(EmbeddingConfig{
		Providers: []driven.EmbeddingProvider{primary, secondary},
	})

	vec := svc.Generate(context.Background(), "fall through")
	require.Len(t, vec, DefaultDimensions)
	assert.Equal(t, 1, primary.Calls(), "primary should be attempted once")
	assert.Equal(t, 1, secondary.Calls(), "secondary should be attempted once")
}

func TestEmbeddingService_SkipsProviderOverPayloadLimit(t *testing.T) {
	small := mocks.NewMockEmbeddingProvider("small", 768)
	small.SetMaxInputBytes(4)
	big := mocks.NewMockEmbeddingProvider("big", 768)

	svc := NewEmbeddingService(EmbeddingConfig{
		Providers: []driven.EmbeddingProvider{small, big},
	})

	svc.Generate(context.Background(), "longer than four bytes")
	assert.Equal(t, 0, small.Calls(), "size-limited provider should be skipped")
	assert.Equal(t, 1, big.Calls())
}

func TestEmbeddingService_DeterministicFallback(t *testing.T) {
	// No providers at all: only the fallback path remains.
	svc := NewEmbeddingService(EmbeddingConfig{})

	a := svc.Generate(context.Background(), "the same text")
	b := svc.Generate(context.Background(), "the same text")

	require.Len(t, a, DefaultDimensions)
	require.Len(t, b, DefaultDimensions)
	assert.Equal(t, a, b, "fallback must be deterministic for identical text")
}

func TestEmbeddingService_FallbackDistinctTexts(t *testing.T) {
	svc := NewEmbeddingService(EmbeddingConfig{})

	a := svc.Generate(context.Background(), "alpha")
	b := svc.Generate(context.Background(), "beta")

	assert.NotEqual(t, a, b, "distinct texts must produce distinct fallback vectors")
}

func TestFallbackEmbedding_UnitNorm(t *testing.T) {
	vec := FallbackEmbedding("normalize me", 768)

	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5, "fallback vector should have unit norm")
}

func TestFallbackEmbedding_CrossInstanceStability(t *testing.T) {
	a := FallbackEmbedding("stable", 64)
	b := FallbackEmbedding("stable", 64)
	assert.Equal(t, a, b)
}

func TestEmbeddingService_CacheHitSkipsProviders(t *testing.T) {
	provider := mocks.NewMockEmbeddingProvider("primary", 768)
	cache := mocks.NewMockEmbeddingCache()

	svc := NewEmbeddingService(EmbeddingConfig{
		Providers: []driven.EmbeddingProvider{provider},
		Cache:     cache,
	})

	first := svc.Generate(context.Background(), "cache me")
	require.Equal(t, 1, provider.Calls())
	require.Equal(t, 1, cache.Len(), "provider result should be cached")

	second := svc.Generate(context.Background(), "cache me")
	assert.Equal(t, 1, provider.Calls(), "cache hit should skip the provider")
	assert.Equal(t, first, second)
}

func TestEmbeddingService_FallbackNotCached(t *testing.T) {
	provider := mocks.NewMockEmbeddingProvider("flaky", 768)
	provider.SetFailAlways(true)
	cache := mocks.NewMockEmbeddingCache()

	svc := NewEmbeddingService(EmbeddingConfig{
		Providers: []driven.EmbeddingProvider{provider},
		Cache:     cache,
	})

	svc.Generate(context.Background(), "provider down")
	assert.Equal(t, 0, cache.Len(), "fallback vectors must not be cached")
}

func TestEmbeddingService_Dimensions(t *testing.T) {
	svc := NewEmbeddingService(EmbeddingConfig{Dimensions: 128})
	require.Equal(t, 128, svc.Dimensions())

	vec := svc.Generate(context.Background(), "sized")
	assert.Len(t, vec, 128)
}
