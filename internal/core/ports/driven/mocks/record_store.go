package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/marchiver-labs/marchiver-core/internal/core/domain"
)

// MockRecordStore is an in-memory implementation of RecordStore for testing
type MockRecordStore struct {
	mu        sync.RWMutex
	documents map[string]*domain.Document

	failPut    bool
	failDelete bool
}

// NewMockRecordStore creates a new MockRecordStore
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{
		documents: make(map[string]*domain.Document),
	}
}

func (m *MockRecordStore) Put(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return domain.ErrStoreUnavailable
	}
	copied := *doc
	m.documents[doc.ID] = &copied
	return nil
}

func (m *MockRecordStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *MockRecordStore) Patch(ctx context.Context, id string, update *domain.DocumentUpdate) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	update.Apply(&copied)
	copied.Version = doc.Version + 1
	m.documents[id] = &copied

	result := copied
	return &result, nil
}

func (m *MockRecordStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDelete {
		return domain.ErrStoreUnavailable
	}
	if _, ok := m.documents[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.documents, id)
	return nil
}

func (m *MockRecordStore) FindByField(ctx context.Context, field, value string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.sortedByDate() {
		var got string
		switch field {
		case "url":
			got = doc.URL
		case "category":
			got = doc.Category
		case "author":
			got = doc.Author
		}
		if got == value {
			copied := *doc
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockRecordStore) ListRecent(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := m.sortedByDate()
	if offset >= len(docs) {
		return nil, nil
	}
	docs = docs[offset:]
	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	out := make([]*domain.Document, len(docs))
	for i, doc := range docs {
		copied := *doc
		out[i] = &copied
	}
	return out, nil
}

func (m *MockRecordStore) ListByTextMatch(ctx context.Context, field, prefix string, limit int) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.Document
	for _, doc := range m.sortedByDate() {
		var got string
		switch field {
		case "content":
			got = doc.Content
		case "title":
			got = doc.Title
		case "summary":
			got = doc.Summary
		}
		if strings.HasPrefix(got, prefix) {
			copied := *doc
			out = append(out, &copied)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *MockRecordStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.documents), nil
}

// sortedByDate returns documents ordered by date descending, ID as tie-break.
// Callers must hold the lock.
func (m *MockRecordStore) sortedByDate() []*domain.Document {
	docs := make([]*domain.Document, 0, len(m.documents))
	for _, doc := range m.documents {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].Date.Equal(docs[j].Date) {
			return docs[i].Date.After(docs[j].Date)
		}
		return docs[i].ID < docs[j].ID
	})
	return docs
}

// Helper methods for testing

func (m *MockRecordStore) SetFailPut(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failPut = fail
}

func (m *MockRecordStore) SetFailDelete(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failDelete = fail
}
