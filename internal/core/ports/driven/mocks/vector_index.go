package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/marchiver-labs/marchiver-core/internal/core/domain"
)

// MockVectorIndex is an in-memory implementation of VectorIndex for testing.
// Neighbor queries rank by cosine similarity, nearest first.
type MockVectorIndex struct {
	mu      sync.RWMutex
	vectors map[string][]float32

	writesReady  bool
	queriesReady bool
	failUpsert   bool
	failRemove   bool

	upsertCalls int
	removeCalls int
}

// NewMockVectorIndex creates a MockVectorIndex that is fully ready
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{
		vectors:      make(map[string][]float32),
		writesReady:  true,
		queriesReady: true,
	}
}

func (m *MockVectorIndex) Upsert(ctx context.Context, id string, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertCalls++
	if !m.writesReady {
		return nil
	}
	if m.failUpsert {
		return context.DeadlineExceeded
	}
	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	m.vectors[id] = vec
	return nil
}

func (m *MockVectorIndex) Remove(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCalls++
	if !m.writesReady {
		return nil
	}
	if m.failRemove {
		return context.DeadlineExceeded
	}
	delete(m.vectors, id)
	return nil
}

func (m *MockVectorIndex) QueryNeighbors(ctx context.Context, embedding []float32, k int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.queriesReady {
		return nil, nil
	}

	type scored struct {
		id    string
		score float64
	}
	candidates := make([]scored, 0, len(m.vectors))
	for id, vec := range m.vectors {
		candidates = append(candidates, scored{
			id:    id,
			score: domain.CosineSimilarity(embedding, vec),
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})

	if k > 0 && len(candidates) > k {
		candidates = candidates[:k]
	}
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	return ids, nil
}

func (m *MockVectorIndex) ReadyForWrites() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writesReady
}

func (m *MockVectorIndex) ReadyForQueries() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queriesReady
}

// Helper methods for testing

func (m *MockVectorIndex) SetWritesReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writesReady = ready
}

func (m *MockVectorIndex) SetQueriesReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queriesReady = ready
}

func (m *MockVectorIndex) SetFailUpsert(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUpsert = fail
}

func (m *MockVectorIndex) SetFailRemove(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRemove = fail
}

// Has reports whether an id currently has a vector entry
func (m *MockVectorIndex) Has(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vectors[id]
	return ok
}

func (m *MockVectorIndex) UpsertCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.upsertCalls
}

func (m *MockVectorIndex) RemoveCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.removeCalls
}
