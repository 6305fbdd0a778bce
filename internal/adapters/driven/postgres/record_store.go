package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/marchiver-labs/marchiver-core/internal/core/domain"
	"github.com/marchiver-labs/marchiver-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RecordStore = (*RecordStore)(nil)

const documentColumns = `id, title, content, url, summary, metadata, tags, category, embedding, version, author, date`

// RecordStore implements driven.RecordStore using PostgreSQL.
// It holds the authoritative copy of every document field.
type RecordStore struct {
	db *DB
}

// NewRecordStore creates a new RecordStore
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

// Put writes the full record for a document, creating or replacing it
func (s *RecordStore) Put(ctx context.Context, doc *domain.Document) error {
	metadataJSON, tagsJSON, embeddingJSON, err := encodeDocumentJSON(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			url = EXCLUDED.url,
			summary = EXCLUDED.summary,
			metadata = EXCLUDED.metadata,
			tags = EXCLUDED.tags,
			category = EXCLUDED.category,
			embedding = EXCLUDED.embedding,
			version = EXCLUDED.version,
			author = EXCLUDED.author,
			date = EXCLUDED.date
	`

	_, err = s.db.ExecContext(ctx, query,
		doc.ID,
		doc.Title,
		doc.Content,
		nullIfEmpty(doc.URL),
		nullIfEmpty(doc.Summary),
		metadataJSON,
		tagsJSON,
		nullIfEmpty(doc.Category),
		embeddingJSON,
		doc.Version,
		nullIfEmpty(doc.Author),
		doc.Date,
	)
	return err
}

// Get retrieves a document by ID
func (s *RecordStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(s.db.QueryRowContext(ctx, query, id))
}

// Patch applies a partial update inside a transaction, locking the single
// record so the version increments by exactly one even under concurrent
// patches. Two racing updates both succeed; the later write wins field-wise
// but each still moves the version forward by one.
func (s *RecordStore) Patch(ctx context.Context, id string, update *domain.DocumentUpdate) (*domain.Document, error) {
	if update == nil {
		return nil, fmt.Errorf("%w: nil update", domain.ErrInvalidInput)
	}

	var updated *domain.Document
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 FOR UPDATE`
		doc, err := scanDocument(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}

		update.Apply(doc)
		doc.Version++

		metadataJSON, tagsJSON, embeddingJSON, err := encodeDocumentJSON(doc)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE documents SET
				title = $2,
				content = $3,
				url = $4,
				summary = $5,
				metadata = $6,
				tags = $7,
				category = $8,
				embedding = $9,
				version = $10,
				author = $11,
				date = $12
			WHERE id = $1
		`,
			doc.ID,
			doc.Title,
			doc.Content,
			nullIfEmpty(doc.URL),
			nullIfEmpty(doc.Summary),
			metadataJSON,
			tagsJSON,
			nullIfEmpty(doc.Category),
			embeddingJSON,
			doc.Version,
			nullIfEmpty(doc.Author),
			doc.Date,
		)
		if err != nil {
			return err
		}

		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete deletes a document
func (s *RecordStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// findableFields are the columns FindByField accepts. The whitelist keeps
// caller input out of the SQL text.
var findableFields = map[string]struct{}{
	"url":      {},
	"category": {},
	"author":   {},
}

// FindByField returns the first document whose field equals value
func (s *RecordStore) FindByField(ctx context.Context, field, value string) (*domain.Document, error) {
	if _, ok := findableFields[field]; !ok {
		return nil, fmt.Errorf("%w: cannot find by field %q", domain.ErrInvalidInput, field)
	}

	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` + field + ` = $1 ORDER BY date DESC LIMIT 1`
	return scanDocument(s.db.QueryRowContext(ctx, query, value))
}

// ListRecent returns documents ordered by date descending
func (s *RecordStore) ListRecent(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY date DESC, id LIMIT $1 OFFSET $2`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// matchableFields are the columns ListByTextMatch accepts
var matchableFields = map[string]struct{}{
	"content": {},
	"title":   {},
	"summary": {},
}

// ListByTextMatch returns documents whose field starts with prefix
func (s *RecordStore) ListByTextMatch(ctx context.Context, field, prefix string, limit int) ([]*domain.Document, error) {
	if _, ok := matchableFields[field]; !ok {
		return nil, fmt.Errorf("%w: cannot match on field %q", domain.ErrInvalidInput, field)
	}

	query := `SELECT ` + documentColumns + ` FROM documents WHERE ` + field +
		` LIKE $1 ESCAPE '\' ORDER BY date DESC, id LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, escapeLikePrefix(prefix)+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// Count returns total document count
func (s *RecordStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// escapeLikePrefix neutralizes LIKE metacharacters in caller-supplied text
func escapeLikePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix)
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func encodeDocumentJSON(doc *domain.Document) (metadata, tags, embedding []byte, err error) {
	m := doc.Metadata
	if m == nil {
		m = map[string]any{}
	}
	metadata, err = json.Marshal(m)
	if err != nil {
		return nil, nil, nil, err
	}

	t := doc.Tags
	if t == nil {
		t = []string{}
	}
	tags, err = json.Marshal(t)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(doc.Embedding) > 0 {
		embedding, err = json.Marshal(doc.Embedding)
		if err != nil {
			return nil, nil, nil, err
		}
	}
	return metadata, tags, embedding, nil
}

// rowScanner covers both sql.Row and sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var url, summary, category, author sql.NullString
	var metadataJSON, tagsJSON, embeddingJSON []byte

	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Content,
		&url,
		&summary,
		&metadataJSON,
		&tagsJSON,
		&category,
		&embeddingJSON,
		&doc.Version,
		&author,
		&doc.Date,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	doc.URL = url.String
	doc.Summary = summary.String
	doc.Category = category.String
	doc.Author = author.String

	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &doc.Metadata); err != nil {
			return nil, err
		}
	}
	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	if len(tagsJSON) > 0 {
		if err := json.Unmarshal(tagsJSON, &doc.Tags); err != nil {
			return nil, err
		}
	}
	if len(embeddingJSON) > 0 {
		if err := json.Unmarshal(embeddingJSON, &doc.Embedding); err != nil {
			return nil, err
		}
	}

	return &doc, nil
}

func scanDocuments(rows *sql.Rows) ([]*domain.Document, error) {
	var docs []*domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}
