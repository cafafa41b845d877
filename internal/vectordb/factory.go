package vectordb

import (
	"fmt"
	"time"

	"github.com/civiclab/radca/internal/config"
)

// NewStore creates a vector store of the configured type.
// Supported types: "qdrant" (default), "memory".
func NewStore(cfg config.VectorConfig) (Store, error) {
	switch cfg.Type {
	case "qdrant", "":
		return NewQdrantStore(QdrantConfig{
			URL:        cfg.Qdrant.URL,
			APIKeyEnv:  cfg.Qdrant.APIKeyEnv,
			Dimensions: cfg.Dimensions,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		})
	case "memory":
		return NewMemoryStore(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown vector store type: %s (supported: qdrant, memory)", cfg.Type)
	}
}
