// Package retriever fetches the passages most similar to a question.
package retriever

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/civiclab/radca/internal/models"
	"github.com/civiclab/radca/internal/provider"
	"github.com/civiclab/radca/internal/vectordb"
)

// Retriever embeds questions and searches the per-domain vector collections.
type Retriever struct {
	embedder provider.Embedder
	store    vectordb.Store
	topK     int
	logger   *zap.Logger
}

func New(embedder provider.Embedder, store vectordb.Store, topK int, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{embedder: embedder, store: store, topK: topK, logger: logger}
}

// Retrieve returns up to topK passages from the domain's collection, most
// similar first. A domain with no indexed data yields zero passages.
func (r *Retriever) Retrieve(ctx context.Context, domainID, question string) ([]models.Passage, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	passages, err := r.store.Index(domainID).Search(ctx, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", domainID, err)
	}
	r.logger.Debug("retrieved passages",
		zap.String("domain", domainID),
		zap.Int("count", len(passages)))
	return passages, nil
}
