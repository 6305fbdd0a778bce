package driven

import (
	"context"

	"github.com/marchiver-labs/marchiver-core/internal/core/domain"
)

// RecordStore is the authoritative keyed store for document records
// (PostgreSQL). Every field of a document lives here; the vector index only
// mirrors (id -> embedding) and may lag behind.
type RecordStore interface {
	// Put writes the full record for a document, creating or replacing it
	Put(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID, returning domain.ErrNotFound when absent
	Get(ctx context.Context, id string) (*domain.Document, error)

	// Patch applies a partial update and increments the version by exactly one.
	// The read-increment-write is atomic for the single record; no cross-record
	// transaction is involved. Returns domain.ErrNotFound when the id is absent.
	Patch(ctx context.Context, id string, update *domain.DocumentUpdate) (*domain.Document, error)

	// Delete removes a document, returning domain.ErrNotFound when absent
	Delete(ctx context.Context, id string) error

	// FindByField returns the first document whose field equals value,
	// or domain.ErrNotFound. Supported fields are url, category and author.
	FindByField(ctx context.Context, field, value string) (*domain.Document, error)

	// ListRecent returns documents ordered by date descending
	ListRecent(ctx context.Context, limit, offset int) ([]*domain.Document, error)

	// ListByTextMatch returns documents whose field starts with prefix.
	// Supported fields are content, title and summary.
	ListByTextMatch(ctx context.Context, field, prefix string, limit int) ([]*domain.Document, error)

	// Count returns the total document count
	Count(ctx context.Context) (int, error)
}
