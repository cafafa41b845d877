package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/civiclab/radca/internal/catalog"
	"github.com/civiclab/radca/internal/config"
	"github.com/civiclab/radca/internal/provider"
	"github.com/civiclab/radca/internal/storage"
	"github.com/civiclab/radca/internal/vectordb"
)

// Ingestor loads source files, chunks and embeds them, and upserts the
// result into the domain collections. A manifest keeps track of what was
// already ingested so unchanged files are skipped.
type Ingestor struct {
	cfg      config.IngestConfig
	catalog  *catalog.Catalog
	embedder provider.Embedder
	store    vectordb.Store
	manifest *storage.Manifest
	chunker  *Chunker
	logger   *zap.Logger
}

// FileResult describes the outcome of ingesting one file.
type FileResult struct {
	Path    string
	Domain  string
	Chunks  int
	Skipped bool
}

func NewIngestor(cfg config.IngestConfig, cat *catalog.Catalog, embedder provider.Embedder,
	store vectordb.Store, manifest *storage.Manifest, logger *zap.Logger) *Ingestor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingestor{
		cfg:      cfg,
		catalog:  cat,
		embedder: embedder,
		store:    store,
		manifest: manifest,
		chunker:  NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
		logger:   logger,
	}
}

// DomainFor returns the domain a file is mapped to, matching on the base
// filename. The second result is false when the file is not mapped.
func (ing *Ingestor) DomainFor(path string) (string, bool) {
	domain, ok := ing.cfg.Sources[filepath.Base(path)]
	return domain, ok
}

// IngestAll ingests every mapped source file, in filename order. Files that
// fail to ingest are logged and skipped; the first returned error is an
// infrastructure failure, not a per-file one.
func (ing *Ingestor) IngestAll(ctx context.Context) ([]FileResult, error) {
	names := make([]string, 0, len(ing.cfg.Sources))
	for name := range ing.cfg.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]FileResult, 0, len(names))
	for _, name := range names {
		path := filepath.Join(ing.cfg.DataDir, name)
		res, err := ing.IngestFile(ctx, path)
		if err != nil {
			ing.logger.Error("failed to ingest file",
				zap.String("path", path), zap.Error(err))
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// IngestFile ingests one file into its mapped domain. A file whose content
// hash matches the manifest entry is skipped. Re-ingesting a changed file
// overwrites its points because point identity is content-derived.
func (ing *Ingestor) IngestFile(ctx context.Context, path string) (FileResult, error) {
	domain, ok := ing.DomainFor(path)
	if !ok {
		return FileResult{}, fmt.Errorf("file %s is not mapped to any domain", filepath.Base(path))
	}
	if !ing.catalog.Has(domain) {
		return FileResult{}, fmt.Errorf("file %s maps to unknown domain %s", filepath.Base(path), domain)
	}

	hash, err := fileHash(path)
	if err != nil {
		return FileResult{}, err
	}
	if ing.manifest != nil {
		rec, err := ing.manifest.Get(ctx, path)
		if err != nil {
			return FileResult{}, fmt.Errorf("manifest lookup: %w", err)
		}
		if rec != nil && rec.Hash == hash {
			ing.logger.Debug("unchanged file skipped", zap.String("path", path))
			return FileResult{Path: path, Domain: domain, Chunks: rec.ChunkCount, Skipped: true}, nil
		}
	}

	docs, err := ReadFile(path)
	if err != nil {
		return FileResult{}, err
	}
	chunks := ing.chunker.ChunkAll(docs)

	index := ing.store.Index(domain)
	if err := index.Ensure(ctx); err != nil {
		return FileResult{}, err
	}
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}
		vectors, err := ing.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return FileResult{}, fmt.Errorf("embed %s: %w", path, err)
		}
		if err := index.Upsert(ctx, chunks, vectors); err != nil {
			return FileResult{}, err
		}
	}

	if ing.manifest != nil {
		err := ing.manifest.Put(ctx, storage.SourceRecord{
			Path:       path,
			Domain:     domain,
			Hash:       hash,
			ChunkCount: len(chunks),
		})
		if err != nil {
			return FileResult{}, fmt.Errorf("manifest update: %w", err)
		}
	}

	ing.logger.Info("ingested file",
		zap.String("path", path),
		zap.String("domain", domain),
		zap.Int("rows", len(docs)),
		zap.Int("chunks", len(chunks)))
	return FileResult{Path: path, Domain: domain, Chunks: len(chunks)}, nil
}

func fileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
