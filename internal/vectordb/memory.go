package vectordb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/civiclab/radca/internal/models"
	"github.com/civiclab/radca/pkg/utils"
)

// MemoryStore keeps one in-memory collection per domain. Suitable for tests
// and small local datasets.
type MemoryStore struct {
	dimensions  int
	mu          sync.Mutex
	collections map[string]*MemoryIndex
}

// NewMemoryStore creates a store whose collections use brute-force cosine
// search over vectors of the given dimension.
func NewMemoryStore(dimensions int) (*MemoryStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryStore{
		dimensions:  dimensions,
		collections: make(map[string]*MemoryIndex),
	}, nil
}

// Index returns the collection for domainID, creating it on first use.
func (s *MemoryStore) Index(domainID string) Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.collections[domainID]; ok {
		return idx
	}
	idx := &MemoryIndex{dimensions: s.dimensions, points: make(map[string]memoryPoint)}
	s.collections[domainID] = idx
	return idx
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}

type memoryPoint struct {
	doc    models.Document
	vector []float32
	order  int
}

// MemoryIndex is an in-memory collection using brute-force inner product
// search. Points are keyed by PointID, so upserts are idempotent.
type MemoryIndex struct {
	dimensions int
	mu         sync.RWMutex
	points     map[string]memoryPoint
	inserted   int
}

// Ensure is a no-op: the collection exists as soon as it is referenced.
func (m *MemoryIndex) Ensure(ctx context.Context) error {
	return nil
}

// Upsert stores docs with their vectors, replacing points with the same ID.
func (m *MemoryIndex) Upsert(ctx context.Context, docs []models.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("documents and vectors length mismatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, doc := range docs {
		if len(vectors[i]) != m.dimensions {
			return fmt.Errorf("vector dimension mismatch: got %d, expected %d", len(vectors[i]), m.dimensions)
		}
		vec := make([]float32, m.dimensions)
		copy(vec, vectors[i])
		utils.NormalizeL2(vec)
		id := PointID(doc)
		order := m.inserted
		if existing, ok := m.points[id]; ok {
			order = existing.order
		} else {
			m.inserted++
		}
		m.points[id] = memoryPoint{doc: doc, vector: vec, order: order}
	}
	return nil
}

// Search returns the top-k passages by cosine similarity. Stored vectors and
// the query are L2-normalized, so the inner product is the cosine. Equal
// scores keep insertion order.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]models.Passage, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	q := make([]float32, m.dimensions)
	copy(q, query)
	utils.NormalizeL2(q)
	query = q
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.points) == 0 {
		return nil, nil
	}
	type scored struct {
		point memoryPoint
		score float64
	}
	scores := make([]scored, 0, len(m.points))
	for _, p := range m.points {
		var dot float64
		for j := 0; j < m.dimensions; j++ {
			dot += float64(query[j] * p.vector[j])
		}
		scores = append(scores, scored{point: p, score: dot})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].point.order < scores[j].point.order
	})
	if k > len(scores) {
		k = len(scores)
	}
	out := make([]models.Passage, k)
	for i := 0; i < k; i++ {
		out[i] = models.Passage{
			Content: scores[i].point.doc.Content,
			Source:  scores[i].point.doc.Source,
			Score:   scores[i].score,
		}
	}
	return out, nil
}

// Count returns the number of stored points.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points), nil
}
