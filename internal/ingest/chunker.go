package ingest

import "github.com/civiclab/radca/internal/models"

// Chunker splits document content into overlapping character windows.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker with the given size and overlap (in
// characters). Non-positive sizes fall back to 500/50.
func NewChunker(chunkSize, chunkOverlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 50
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Chunk splits a document into chunks that all carry the document's source.
// Content at or under the chunk size passes through as a single chunk.
func (c *Chunker) Chunk(doc models.Document) []models.Document {
	runes := []rune(doc.Content)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.chunkSize {
		return []models.Document{doc}
	}
	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = 1
	}
	chunks := make([]models.Document, 0, len(runes)/step+1)
	for i := 0; i < len(runes); i += step {
		end := i + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Document{
			Content: string(runes[i:end]),
			Source:  doc.Source,
		})
		if end >= len(runes) {
			break
		}
	}
	return chunks
}

// ChunkAll flattens the chunks of every document, preserving order.
func (c *Chunker) ChunkAll(docs []models.Document) []models.Document {
	var out []models.Document
	for _, doc := range docs {
		out = append(out, c.Chunk(doc)...)
	}
	return out
}
