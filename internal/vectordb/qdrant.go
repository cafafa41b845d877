package vectordb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/civiclab/radca/internal/models"
)

// QdrantConfig configures the Qdrant REST client.
type QdrantConfig struct {
	URL        string
	APIKeyEnv  string
	Dimensions int
	Timeout    time.Duration
}

// QdrantStore is a minimal REST client to Qdrant. Each domain maps to one
// collection; collections use cosine distance and are created on demand.
type QdrantStore struct {
	url        string
	apiKey     string
	dimensions int
	client     *http.Client
}

// NewQdrantStore creates a Qdrant store. The API key, when APIKeyEnv is set,
// is read from the environment; a missing key is allowed for unauthenticated
// local deployments.
func NewQdrantStore(cfg QdrantConfig) (*QdrantStore, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	apiKey := ""
	if cfg.APIKeyEnv != "" {
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}
	return &QdrantStore{
		url:        cfg.URL,
		apiKey:     apiKey,
		dimensions: cfg.Dimensions,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Index returns the index backed by the collection named after domainID.
func (s *QdrantStore) Index(domainID string) Index {
	return &QdrantIndex{store: s, collection: domainID}
}

// Close is a no-op; the underlying HTTP client holds no resources.
func (s *QdrantStore) Close() error {
	return nil
}

// QdrantIndex is one domain's collection.
type QdrantIndex struct {
	store      *QdrantStore
	collection string
}

// Ensure creates the collection with the configured dimensionality and cosine
// distance if it does not exist. Qdrant returns 409 when the collection is
// already present, which is treated as success.
func (q *QdrantIndex) Ensure(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     q.store.dimensions,
			"distance": "Cosine",
		},
	}
	status, err := q.store.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s", q.store.url, q.collection), body, nil)
	if err != nil {
		return err
	}
	if status == http.StatusConflict {
		return nil
	}
	if status >= 300 {
		return fmt.Errorf("qdrant create collection %s failed: %d", q.collection, status)
	}
	return nil
}

// Upsert writes documents with their vectors, keyed by PointID.
func (q *QdrantIndex) Upsert(ctx context.Context, docs []models.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("documents and vectors length mismatch")
	}
	if len(docs) == 0 {
		return nil
	}
	points := make([]map[string]any, len(docs))
	for i, doc := range docs {
		points[i] = map[string]any{
			"id":     PointID(doc),
			"vector": vectors[i],
			"payload": map[string]any{
				"content": doc.Content,
				"source":  doc.Source,
			},
		}
	}
	body := map[string]any{"points": points}
	status, err := q.store.doJSON(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s/points?wait=true", q.store.url, q.collection), body, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("qdrant upsert into %s failed: %d", q.collection, status)
	}
	return nil
}

// Search returns up to k passages in descending similarity order. A missing
// collection (404) yields zero passages.
func (q *QdrantIndex) Search(ctx context.Context, query []float32, k int) ([]models.Passage, error) {
	if k <= 0 {
		k = 5
	}
	body := map[string]any{
		"vector":       query,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	status, err := q.store.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/search", q.store.url, q.collection), body, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status >= 300 {
		return nil, fmt.Errorf("qdrant search in %s failed: %d", q.collection, status)
	}
	passages := make([]models.Passage, 0, len(resp.Result))
	for _, r := range resp.Result {
		p := models.Passage{Score: r.Score}
		if v, ok := r.Payload["content"].(string); ok {
			p.Content = v
		}
		if v, ok := r.Payload["source"].(string); ok {
			p.Source = v
		}
		passages = append(passages, p)
	}
	return passages, nil
}

// Count returns the number of points in the collection; a missing collection
// counts as zero.
func (q *QdrantIndex) Count(ctx context.Context) (int, error) {
	body := map[string]any{"exact": true}
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	status, err := q.store.doJSON(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/count", q.store.url, q.collection), body, &resp)
	if err != nil {
		return 0, err
	}
	if status == http.StatusNotFound {
		return 0, nil
	}
	if status >= 300 {
		return 0, fmt.Errorf("qdrant count in %s failed: %d", q.collection, status)
	}
	return resp.Result.Count, nil
}

// doJSON issues one request and optionally decodes the response body into out
// when the status is below 300. The status code is always returned so callers
// can treat specific codes (404, 409) as non-errors.
func (s *QdrantStore) doJSON(ctx context.Context, method, url string, body any, out any) (int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
