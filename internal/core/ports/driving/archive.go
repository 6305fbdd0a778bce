package driving

import (
	"context"

	"github.com/marchiver-labs/marchiver-core/internal/core/domain"
)

// ArchiveService exposes the document archive to the route layer: CRUD plus
// the three retrieval paths. Consistency semantics:
//
//   - the record-store write is authoritative and its failure aborts the call;
//   - the vector-index write/delete is best-effort and never fails the call;
//   - search paths reconcile the two stores at read time, dropping neighbor
//     IDs that no longer resolve to a record.
type ArchiveService interface {
	// Create archives a new document, computing its embedding when content
	// is present. Returns the stored record with ID and Version assigned.
	Create(ctx context.Context, create *domain.DocumentCreate) (*domain.Document, error)

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// FindByURL returns the archived document for a URL, if any.
	// Callers use this to dedupe before re-archiving the same page.
	FindByURL(ctx context.Context, url string) (*domain.Document, error)

	// Update applies a partial update, recomputing the embedding when the
	// content changed. Version increments by exactly one per call.
	Update(ctx context.Context, id string, update *domain.DocumentUpdate) (*domain.Document, error)

	// Delete removes the record and, best-effort, its vector index entry
	Delete(ctx context.Context, id string) error

	// SemanticSearch returns documents nearest to the query text's embedding,
	// closest first. Returns an empty list when the vector index is not ready.
	SemanticSearch(ctx context.Context, query string, limit, offset int) ([]*domain.Document, error)

	// FullTextSearch matches the query against content, title and summary
	FullTextSearch(ctx context.Context, query string, limit, offset int) ([]*domain.Document, error)

	// Recent lists documents by date descending
	Recent(ctx context.Context, limit, offset int) ([]*domain.Document, error)

	// FindSimilar returns documents similar to an existing one,
	// excluding the document itself
	FindSimilar(ctx context.Context, id string, limit int) ([]*domain.Document, error)

	// Count reports the total number of archived documents
	Count(ctx context.Context) (int, error)
}
