package driven

import "context"

// EmbeddingProvider is a single hosted embedding backend. Providers are tried
// in priority order by the embedding service; any error from Embed is a soft
// failure that moves the chain to the next provider.
type EmbeddingProvider interface {
	// Name identifies the provider for logging
	Name() string

	// Embed generates an embedding for the given text.
	// The output length is the provider's native dimension, which may differ
	// from the deployment dimension and is resized by the caller.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the provider's native output dimension
	Dimensions() int

	// MaxInputBytes returns the largest payload the provider accepts.
	// Zero means no declared limit.
	MaxInputBytes() int
}

// EmbeddingCache is a best-effort vector cache keyed by text digest.
// Misses and cache errors are indistinguishable to the caller: both return
// ok=false and the chain proceeds to the providers.
type EmbeddingCache interface {
	// Get returns the cached embedding for text, if any
	Get(ctx context.Context, text string) ([]float32, bool)

	// Set stores the embedding for text. Failures are swallowed.
	Set(ctx context.Context, text string, embedding []float32)
}
