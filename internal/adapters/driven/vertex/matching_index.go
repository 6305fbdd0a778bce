package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/marchiver-labs/marchiver-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*MatchingIndex)(nil)

// MatchingIndex implements driven.VectorIndex against a Vertex AI Vector
// Search deployment. Two separate resources are involved: the index, which
// accepts datapoint writes, and the index endpoint, which answers neighbor
// queries for an index deployed to it. Either can be unreachable on its own,
// so readiness is tracked per resource and every operation degrades to a
// no-op or empty result when its resource is down.
type MatchingIndex struct {
	baseURL         string
	index           string // projects/{p}/locations/{l}/indexes/{i}
	endpoint        string // projects/{p}/locations/{l}/indexEndpoints/{e}
	deployedIndexID string
	token           string
	httpClient      *http.Client

	mu        sync.RWMutex
	readiness Readiness
}

// Readiness records which of the two vector-search resources responded during
// Connect. It is the adapter's capability state: writes need Index, queries
// need Endpoint.
type Readiness struct {
	Index    bool
	Endpoint bool
}

// Config holds Vertex AI Vector Search connection configuration
type Config struct {
	// BaseURL is the regional API host (e.g. https://us-central1-aiplatform.googleapis.com/v1)
	BaseURL string

	// Index is the full index resource name (write target)
	Index string

	// Endpoint is the full index endpoint resource name (query target)
	Endpoint string

	// DeployedIndexID identifies the deployment of Index on Endpoint
	DeployedIndexID string

	// Token is the bearer token used for authentication
	Token string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// NewMatchingIndex creates a new Vertex-backed MatchingIndex.
// Call Connect before use; until then every operation is a no-op.
func NewMatchingIndex(cfg Config) *MatchingIndex {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MatchingIndex{
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		index:           cfg.Index,
		endpoint:        cfg.Endpoint,
		deployedIndexID: cfg.DeployedIndexID,
		token:           cfg.Token,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

// Connect probes the index and endpoint resources independently and records
// which answered. It never fails: an unreachable resource just leaves the
// matching capability disabled.
func (m *MatchingIndex) Connect(ctx context.Context) Readiness {
	readiness := Readiness{
		Index:    m.index != "" && m.probe(ctx, m.index),
		Endpoint: m.endpoint != "" && m.deployedIndexID != "" && m.probe(ctx, m.endpoint),
	}

	m.mu.Lock()
	m.readiness = readiness
	m.mu.Unlock()

	return readiness
}

func (m *MatchingIndex) probe(ctx context.Context, resource string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/"+resource, nil)
	if err != nil {
		return false
	}
	m.authorize(req)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// datapoint mirrors the Vector Search IndexDatapoint wire format
type datapoint struct {
	DatapointID   string    `json:"datapointId"`
	FeatureVector []float32 `json:"featureVector,omitempty"`
}

// Upsert inserts or replaces the vector for id. Idempotent; a no-op when the
// index resource is not ready.
func (m *MatchingIndex) Upsert(ctx context.Context, id string, embedding []float32) error {
	if !m.ReadyForWrites() {
		return nil
	}

	body := map[string]any{
		"datapoints": []datapoint{{DatapointID: id, FeatureVector: embedding}},
	}
	return m.post(ctx, m.index+":upsertDatapoints", body, nil)
}

// Remove deletes the vector for id. Absence is not an error; a no-op when the
// index resource is not ready.
func (m *MatchingIndex) Remove(ctx context.Context, id string) error {
	if !m.ReadyForWrites() {
		return nil
	}

	body := map[string]any{"datapointIds": []string{id}}
	err := m.post(ctx, m.index+":removeDatapoints", body, nil)
	if isNotFound(err) {
		return nil
	}
	return err
}

// findNeighborsResponse is the endpoint's query response
type findNeighborsResponse struct {
	NearestNeighbors []struct {
		Neighbors []struct {
			Datapoint datapoint `json:"datapoint"`
			Distance  float64   `json:"distance"`
		} `json:"neighbors"`
	} `json:"nearestNeighbors"`
}

// QueryNeighbors returns up to k document IDs, nearest first. Returns an
// empty list when the endpoint is not ready.
func (m *MatchingIndex) QueryNeighbors(ctx context.Context, embedding []float32, k int) ([]string, error) {
	if !m.ReadyForQueries() {
		return nil, nil
	}

	body := map[string]any{
		"deployedIndexId": m.deployedIndexID,
		"queries": []map[string]any{
			{
				"datapoint":     datapoint{FeatureVector: embedding},
				"neighborCount": k,
			},
		},
	}

	var resp findNeighborsResponse
	if err := m.post(ctx, m.endpoint+":findNeighbors", body, &resp); err != nil {
		return nil, err
	}

	if len(resp.NearestNeighbors) == 0 {
		return nil, nil
	}

	neighbors := resp.NearestNeighbors[0].Neighbors
	ids := make([]string, 0, len(neighbors))
	for _, n := range neighbors {
		if n.Datapoint.DatapointID != "" {
			ids = append(ids, n.Datapoint.DatapointID)
		}
	}
	return ids, nil
}

// ReadyForWrites reports whether the index resource accepts upserts/removes
func (m *MatchingIndex) ReadyForWrites() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readiness.Index
}

// ReadyForQueries reports whether the deployed endpoint answers queries
func (m *MatchingIndex) ReadyForQueries() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.readiness.Endpoint
}

func (m *MatchingIndex) post(ctx context.Context, path string, reqBody any, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/"+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	m.authorize(req)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return &apiError{status: resp.StatusCode, body: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}

func (m *MatchingIndex) authorize(req *http.Request) {
	if m.token != "" {
		req.Header.Set("Authorization", "Bearer "+m.token)
	}
}

// apiError carries the HTTP status so callers can distinguish absence
type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("vector search request failed: status %d - %s", e.status, e.body)
}

func isNotFound(err error) bool {
	apiErr, ok := err.(*apiError)
	return ok && apiErr.status == http.StatusNotFound
}
