package driving

import "context"

// EmbeddingService turns text into a fixed-length vector. Generate never
// fails: provider errors fall through to the next provider and ultimately to
// a deterministic locally-computed fallback, so the route layer can expose
// embedding generation without an error branch.
type EmbeddingService interface {
	// Generate returns an embedding of exactly Dimensions() components
	Generate(ctx context.Context, text string) []float32

	// Dimensions returns the deployment-wide embedding dimension
	Dimensions() int
}
