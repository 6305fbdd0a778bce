package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/marchiver-labs/marchiver-core/internal/core/ports/driven"
)

// Ensure VertexEmbedding implements EmbeddingProvider
var _ driven.EmbeddingProvider = (*VertexEmbedding)(nil)

// VertexEmbedding implements EmbeddingProvider against a Vertex AI prediction
// endpoint serving an embedding model. It is the secondary hop in the chain:
// a different serving stack than Gemini, so one outage rarely takes out both.
type VertexEmbedding struct {
	endpoint   string // full resource name: projects/{p}/locations/{l}/endpoints/{e}
	baseURL    string
	token      string
	dimensions int
	client     *http.Client
}

// VertexEmbeddingConfig holds connection configuration for the endpoint
type VertexEmbeddingConfig struct {
	// Endpoint is the full endpoint resource name
	Endpoint string

	// BaseURL is the regional API host (e.g. https://us-central1-aiplatform.googleapis.com/v1)
	BaseURL string

	// Token is the bearer token used for authentication
	Token string

	// Dimensions is the model's declared output dimension (default 768)
	Dimensions int

	// Timeout for HTTP requests
	Timeout time.Duration
}

// NewVertexEmbedding creates a new Vertex AI embedding provider
func NewVertexEmbedding(cfg VertexEmbeddingConfig) (*VertexEmbedding, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("Vertex AI endpoint resource name is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("Vertex AI base URL is required")
	}

	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = 768
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &VertexEmbedding{
		endpoint:   cfg.Endpoint,
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// vertexPredictRequest is the request body for the predict API
type vertexPredictRequest struct {
	Instances []string `json:"instances"`
}

// vertexPredictResponse is the response from the predict API
type vertexPredictResponse struct {
	Predictions [][]float32 `json:"predictions"`
	Error       *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Name identifies the provider for logging
func (v *VertexEmbedding) Name() string {
	return "vertex"
}

// Embed generates an embedding for the given text
func (v *VertexEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(vertexPredictRequest{Instances: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:predict", v.baseURL, v.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var predResp vertexPredictResponse
	if err := json.Unmarshal(respBody, &predResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if predResp.Error != nil {
		return nil, fmt.Errorf("Vertex AI error: %s (status: %s, code: %d)",
			predResp.Error.Message, predResp.Error.Status, predResp.Error.Code)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Vertex AI returned status %d", resp.StatusCode)
	}

	if len(predResp.Predictions) == 0 || len(predResp.Predictions[0]) == 0 {
		return nil, fmt.Errorf("Vertex AI returned no predictions")
	}

	return predResp.Predictions[0], nil
}

// Dimensions returns the provider's native output dimension
func (v *VertexEmbedding) Dimensions() int {
	return v.dimensions
}

// MaxInputBytes returns zero: the endpoint declares no payload ceiling
func (v *VertexEmbedding) MaxInputBytes() int {
	return 0
}
