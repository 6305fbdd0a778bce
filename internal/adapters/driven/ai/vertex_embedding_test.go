package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewVertexEmbedding_RequiresEndpoint(t *testing.T) {
	_, err := NewVertexEmbedding(VertexEmbeddingConfig{BaseURL: "https://example.com"})
	if err == nil {
		t.Error("expected error for missing endpoint")
	}
}

func TestNewVertexEmbedding_RequiresBaseURL(t *testing.T) {
	_, err := NewVertexEmbedding(VertexEmbeddingConfig{Endpoint: "projects/p/locations/l/endpoints/e"})
	if err == nil {
		t.Error("expected error for missing base URL")
	}
}

func TestNewVertexEmbedding_DefaultDimensions(t *testing.T) {
	v, err := NewVertexEmbedding(VertexEmbeddingConfig{
		Endpoint: "projects/p/locations/l/endpoints/e",
		BaseURL:  "https://example.com/v1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Dimensions() != 768 {
		t.Errorf("expected 768, got %d", v.Dimensions())
	}
	if v.MaxInputBytes() != 0 {
		t.Errorf("expected no declared limit, got %d", v.MaxInputBytes())
	}
}

func TestVertexEmbedding_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":predict") {
			t.Errorf("expected :predict suffix, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("unexpected authorization header: %q", got)
		}

		var req vertexPredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Instances) != 1 || req.Instances[0] != "some text" {
			t.Errorf("unexpected instances: %v", req.Instances)
		}

		_ = json.NewEncoder(w).Encode(vertexPredictResponse{
			Predictions: [][]float32{{0.5, 0.6}},
		})
	}))
	defer server.Close()

	v, err := NewVertexEmbedding(VertexEmbeddingConfig{
		Endpoint: "projects/p/locations/l/endpoints/e",
		BaseURL:  server.URL,
		Token:    "test-token",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vec, err := v.Embed(context.Background(), "some text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 || vec[1] != 0.6 {
		t.Errorf("unexpected embedding: %v", vec)
	}
}

func TestVertexEmbedding_EmbedNoPredictions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[]}`))
	}))
	defer server.Close()

	v, err := NewVertexEmbedding(VertexEmbeddingConfig{
		Endpoint: "projects/p/locations/l/endpoints/e",
		BaseURL:  server.URL,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := v.Embed(context.Background(), "anything"); err == nil {
		t.Error("expected error for empty predictions")
	}
}
