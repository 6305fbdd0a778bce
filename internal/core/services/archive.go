package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/marchiver-labs/marchiver-core/internal/core/domain"
	"github.com/marchiver-labs/marchiver-core/internal/core/ports/driven"
	"github.com/marchiver-labs/marchiver-core/internal/core/ports/driving"
)

// Ensure archiveService implements ArchiveService
var _ driving.ArchiveService = (*archiveService)(nil)

const defaultSearchLimit = 10

// archiveService coordinates the record store (authoritative) and the vector
// index (best-effort) around the embedding service. Each operation is a short
// saga: the record-store write happens first and its failure aborts the call,
// while a failed vector-index write only leaves the document temporarily
// unsearchable by similarity. Deletes run the other way round, so the only
// inconsistency that can survive is a dangling vector entry, which the search
// paths filter out when its id no longer resolves to a record.
type archiveService struct {
	records    driven.RecordStore
	vectors    driven.VectorIndex
	embeddings driving.EmbeddingService
	logger     *slog.Logger
}

// NewArchiveService creates a new ArchiveService
func NewArchiveService(
	records driven.RecordStore,
	vectors driven.VectorIndex,
	embeddings driving.EmbeddingService,
	logger *slog.Logger,
) driving.ArchiveService {
	if logger == nil {
		logger = slog.Default()
	}
	return &archiveService{
		records:    records,
		vectors:    vectors,
		embeddings: embeddings,
		logger:     logger,
	}
}

// Create archives a new document. The record-store write is authoritative;
// the vector-index upsert is best-effort.
func (s *archiveService) Create(ctx context.Context, create *domain.DocumentCreate) (*domain.Document, error) {
	if create == nil {
		return nil, fmt.Errorf("%w: nil create request", domain.ErrInvalidInput)
	}

	var embedding []float32
	if create.Content != "" {
		embedding = s.embeddings.Generate(ctx, create.Content)
	}

	date := time.Now().UTC()
	if create.Date != nil {
		date = *create.Date
	}

	doc := &domain.Document{
		ID:        uuid.NewString(),
		Title:     create.Title,
		Content:   create.Content,
		URL:       create.URL,
		Summary:   create.Summary,
		Metadata:  create.Metadata,
		Tags:      create.Tags,
		Category:  create.Category,
		Embedding: embedding,
		Version:   1,
		Author:    create.Author,
		Date:      date,
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}

	if err := s.records.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("record store put: %w", err)
	}

	if len(embedding) > 0 {
		if err := s.vectors.Upsert(ctx, doc.ID, embedding); err != nil {
			s.logger.Error("vector index upsert failed, document stored without searchable vector",
				"document_id", doc.ID,
				"error", err,
			)
		}
	}

	return doc, nil
}

// Get retrieves a document by ID
func (s *archiveService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.records.Get(ctx, id)
}

// FindByURL returns the archived document for a URL, if any
func (s *archiveService) FindByURL(ctx context.Context, url string) (*domain.Document, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty url", domain.ErrInvalidInput)
	}
	return s.records.FindByField(ctx, "url", url)
}

// Update applies a partial update. When the content changes, the embedding is
// recomputed before the patch so record and vector stay in step. The version
// increments by exactly one per successful call, whatever fields changed.
func (s *archiveService) Update(ctx context.Context, id string, update *domain.DocumentUpdate) (*domain.Document, error) {
	if update == nil {
		return nil, fmt.Errorf("%w: nil update request", domain.ErrInvalidInput)
	}

	current, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := *update
	embeddingChanged := false
	if patch.Content != nil && *patch.Content != current.Content {
		patch.Embedding = s.embeddings.Generate(ctx, *patch.Content)
		embeddingChanged = true
	}

	updated, err := s.records.Patch(ctx, id, &patch)
	if err != nil {
		return nil, fmt.Errorf("record store patch: %w", err)
	}

	if embeddingChanged {
		if err := s.vectors.Upsert(ctx, id, patch.Embedding); err != nil {
			s.logger.Error("vector index upsert failed, stale vector remains for document",
				"document_id", id,
				"error", err,
			)
		}
	}

	return updated, nil
}

// Delete removes the record first, then the vector entry. The order bounds
// the possible inconsistency to a dangling vector, which semantic search
// filters out when hydration misses.
func (s *archiveService) Delete(ctx context.Context, id string) error {
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.vectors.Remove(ctx, id); err != nil {
		s.logger.Error("vector index remove failed, dangling vector entry remains",
			"document_id", id,
			"error", err,
		)
	}

	return nil
}

// SemanticSearch embeds the query and returns the nearest documents, closest
// first, in the order the index returned them. An unready index yields an
// empty result rather than an error.
func (s *archiveService) SemanticSearch(ctx context.Context, query string, limit, offset int) ([]*domain.Document, error) {
	limit, offset = normalizePage(limit, offset)

	if !s.vectors.ReadyForQueries() {
		s.logger.Warn("semantic search degraded: vector index not ready")
		return []*domain.Document{}, nil
	}

	embedding := s.embeddings.Generate(ctx, query)
	ids, err := s.vectors.QueryNeighbors(ctx, embedding, limit+offset)
	if err != nil {
		s.logger.Error("neighbor query failed", "error", err)
		return []*domain.Document{}, nil
	}

	hydrated := s.hydrate(ctx, ids, nil)
	if offset >= len(hydrated) {
		return []*domain.Document{}, nil
	}
	hydrated = hydrated[offset:]
	if len(hydrated) > limit {
		hydrated = hydrated[:limit]
	}
	return hydrated, nil
}

// FullTextSearch matches the query as a prefix against content, title and
// summary, in that order, de-duplicating by id in first-seen order.
func (s *archiveService) FullTextSearch(ctx context.Context, query string, limit, offset int) ([]*domain.Document, error) {
	limit, offset = normalizePage(limit, offset)
	want := limit + offset

	results := make([]*domain.Document, 0, want)
	seen := make(map[string]struct{}, want)

	for _, field := range []string{"content", "title", "summary"} {
		docs, err := s.records.ListByTextMatch(ctx, field, query, want)
		if err != nil {
			return nil, fmt.Errorf("text match on %s: %w", field, err)
		}
		for _, doc := range docs {
			if _, ok := seen[doc.ID]; ok {
				continue
			}
			seen[doc.ID] = struct{}{}
			results = append(results, doc)
			if len(results) >= want {
				break
			}
		}
		if len(results) >= want {
			break
		}
	}

	if offset >= len(results) {
		return []*domain.Document{}, nil
	}
	return results[offset:], nil
}

// Recent lists documents by date descending
func (s *archiveService) Recent(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
	limit, offset = normalizePage(limit, offset)
	docs, err := s.records.ListRecent(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []*domain.Document{}
	}
	return docs, nil
}

// FindSimilar returns documents nearest to an existing document's own
// embedding, excluding the document itself. The index is asked for twice the
// limit to absorb the self-match and any other excluded ids.
func (s *archiveService) FindSimilar(ctx context.Context, id string, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	doc, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	embedding := doc.Embedding
	if len(embedding) == 0 {
		if doc.Content == "" {
			return []*domain.Document{}, nil
		}
		embedding = s.embeddings.Generate(ctx, doc.Content)
	}

	if !s.vectors.ReadyForQueries() {
		s.logger.Warn("find-similar degraded: vector index not ready", "document_id", id)
		return []*domain.Document{}, nil
	}

	ids, err := s.vectors.QueryNeighbors(ctx, embedding, limit*2)
	if err != nil {
		s.logger.Error("neighbor query failed", "document_id", id, "error", err)
		return []*domain.Document{}, nil
	}

	exclude := map[string]struct{}{id: {}}
	hydrated := s.hydrate(ctx, ids, exclude)
	if len(hydrated) > limit {
		hydrated = hydrated[:limit]
	}
	return hydrated, nil
}

// Count reports the total number of archived documents
func (s *archiveService) Count(ctx context.Context) (int, error) {
	return s.records.Count(ctx)
}

// hydrate resolves neighbor ids against the record store, preserving order and
// silently dropping ids without a record. A missing record here is the
// expected residue of a delete whose vector-side cleanup failed.
func (s *archiveService) hydrate(ctx context.Context, ids []string, exclude map[string]struct{}) []*domain.Document {
	docs := make([]*domain.Document, 0, len(ids))
	for _, id := range ids {
		if _, skip := exclude[id]; skip {
			continue
		}
		doc, err := s.records.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("skipping dangling vector entry", "document_id", id)
			continue
		}
		if err != nil {
			s.logger.Error("failed to hydrate search result", "document_id", id, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
