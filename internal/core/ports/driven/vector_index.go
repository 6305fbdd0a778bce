package driven

import "context"

// VectorIndex maintains (id -> embedding) entries in an external approximate
// nearest-neighbor service. Writes target the index resource, queries target
// the deployed endpoint; the two can be reachable independently, so readiness
// is split the same way.
//
// Every operation degrades instead of failing when its resource is not ready:
// writes become no-ops and queries return an empty neighbor list.
type VectorIndex interface {
	// Upsert inserts or replaces the vector for id. Idempotent.
	Upsert(ctx context.Context, id string, embedding []float32) error

	// Remove deletes the vector for id. Absence of the id is not an error.
	Remove(ctx context.Context, id string) error

	// QueryNeighbors returns up to k document IDs ordered nearest-first.
	// Returns an empty list when the endpoint is not ready.
	QueryNeighbors(ctx context.Context, embedding []float32, k int) ([]string, error)

	// ReadyForWrites reports whether the index resource accepts upserts/removes
	ReadyForWrites() bool

	// ReadyForQueries reports whether the deployed endpoint answers queries
	ReadyForQueries() bool
}
