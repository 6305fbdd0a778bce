package mocks

import (
	"context"
	"hash/fnv"
	"sync"
)

// MockEmbeddingProvider is a mock implementation of EmbeddingProvider for
// testing. It produces deterministic hash-derived vectors.
type MockEmbeddingProvider struct {
	mu            sync.Mutex
	name          string
	dimensions    int
	maxInputBytes int
	failAlways    bool
	failNext      bool
	calls         int
}

// NewMockEmbeddingProvider creates a new MockEmbeddingProvider
func NewMockEmbeddingProvider(name string, dimensions int) *MockEmbeddingProvider {
	return &MockEmbeddingProvider{
		name:       name,
		dimensions: dimensions,
	}
}

func (m *MockEmbeddingProvider) Name() string {
	return m.name
}

func (m *MockEmbeddingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failAlways {
		return nil, context.DeadlineExceeded
	}
	if m.failNext {
		m.failNext = false
		return nil, context.DeadlineExceeded
	}
	return m.generateEmbedding(text), nil
}

func (m *MockEmbeddingProvider) Dimensions() int {
	return m.dimensions
}

func (m *MockEmbeddingProvider) MaxInputBytes() int {
	return m.maxInputBytes
}

// generateEmbedding generates a deterministic embedding based on text hash
func (m *MockEmbeddingProvider) generateEmbedding(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	embedding := make([]float32, m.dimensions)
	for i := range embedding {
		seed = seed*1103515245 + 12345
		embedding[i] = float32(seed%1000)/500.0 - 1.0
	}
	return embedding
}

// Helper methods for testing

func (m *MockEmbeddingProvider) SetFailAlways(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAlways = fail
}

func (m *MockEmbeddingProvider) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

func (m *MockEmbeddingProvider) SetMaxInputBytes(max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxInputBytes = max
}

func (m *MockEmbeddingProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockEmbeddingCache is an in-memory EmbeddingCache for testing
type MockEmbeddingCache struct {
	mu      sync.RWMutex
	entries map[string][]float32
}

// NewMockEmbeddingCache creates a new MockEmbeddingCache
func NewMockEmbeddingCache() *MockEmbeddingCache {
	return &MockEmbeddingCache{
		entries: make(map[string][]float32),
	}
}

func (m *MockEmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vec, ok := m.entries[text]
	return vec, ok
}

func (m *MockEmbeddingCache) Set(ctx context.Context, text string, embedding []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[text] = embedding
}

// Len returns the number of cached entries
func (m *MockEmbeddingCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
