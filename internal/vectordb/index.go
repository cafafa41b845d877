// Package vectordb provides per-domain vector collections with k-NN search.
package vectordb

import (
	"context"

	"github.com/google/uuid"

	"github.com/civiclab/radca/internal/models"
)

// Index is one domain's vector collection.
type Index interface {
	// Ensure creates the collection if it does not exist yet.
	Ensure(ctx context.Context) error
	// Upsert writes documents with their vectors. Point identity is derived
	// from content and source, so re-upserting the same documents is
	// idempotent.
	Upsert(ctx context.Context, docs []models.Document, vectors [][]float32) error
	// Search returns up to k passages in descending similarity order.
	// A collection that does not exist yields zero passages, not an error.
	Search(ctx context.Context, query []float32, k int) ([]models.Passage, error)
	// Count returns the number of stored points.
	Count(ctx context.Context) (int, error)
}

// Store provides access to one Index per domain.
type Store interface {
	// Index returns the index for the given domain. The same domain always
	// yields the same underlying collection.
	Index(domainID string) Index
	Close() error
}

// PointID derives a stable identifier for a document from its source and
// content. Identical documents always map to the same ID, which makes
// re-ingestion idempotent at the index level.
func PointID(doc models.Document) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(doc.Source+"\x00"+doc.Content)).String()
}
