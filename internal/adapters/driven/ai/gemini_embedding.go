package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/marchiver-labs/marchiver-core/internal/core/ports/driven"
)

// Ensure GeminiEmbedding implements EmbeddingProvider
var _ driven.EmbeddingProvider = (*GeminiEmbedding)(nil)

// Native output dimensions for Gemini embedding models
var geminiModelDimensions = map[string]int{
	"embedding-001":      768,
	"text-embedding-004": 768,
}

// geminiMaxInputBytes is the documented payload ceiling for embedContent.
// Larger texts are skipped by the chain before a request is made.
const geminiMaxInputBytes = 10000

// GeminiEmbedding implements EmbeddingProvider using the Generative Language
// API's embedContent endpoint.
type GeminiEmbedding struct {
	apiKey     string
	model      string
	baseURL    string
	dimensions int
	client     *http.Client
}

// NewGeminiEmbedding creates a new Gemini embedding provider
func NewGeminiEmbedding(apiKey, model, baseURL string) (*GeminiEmbedding, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	if model == "" {
		model = "embedding-001"
	}

	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	dimensions, ok := geminiModelDimensions[model]
	if !ok {
		// Default to 768 for unknown models
		dimensions = 768
	}

	return &GeminiEmbedding{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		dimensions: dimensions,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// geminiEmbedRequest is the request body for the embedContent API
type geminiEmbedRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"taskType,omitempty"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiEmbedResponse is the response from the embedContent API
type geminiEmbedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Name identifies the provider for logging
func (g *GeminiEmbedding) Name() string {
	return "gemini"
}

// Embed generates an embedding for the given text
func (g *GeminiEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := geminiEmbedRequest{
		Model:    "models/" + g.model,
		Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType: "RETRIEVAL_DOCUMENT",
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:embedContent?key=%s",
		g.baseURL, g.model, url.QueryEscape(g.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var embResp geminiEmbedResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if embResp.Error != nil {
		return nil, fmt.Errorf("Gemini API error: %s (status: %s, code: %d)",
			embResp.Error.Message, embResp.Error.Status, embResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Gemini API returned status %d", resp.StatusCode)
	}

	if len(embResp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("Gemini API returned no embedding values")
	}

	return embResp.Embedding.Values, nil
}

// Dimensions returns the provider's native output dimension
func (g *GeminiEmbedding) Dimensions() int {
	return g.dimensions
}

// MaxInputBytes returns the largest payload the provider accepts
func (g *GeminiEmbedding) MaxInputBytes() int {
	return geminiMaxInputBytes
}
