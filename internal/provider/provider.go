// Package provider defines the external embedding and generation capabilities
// the pipeline consumes.
package provider

import "context"

// Embedder produces vector embeddings for text. Vectors must have the same
// dimensionality the domain collections were built with.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// GenerateRequest is one generation call. Temperature 0 is a valid value and
// is what the routing call uses.
type GenerateRequest struct {
	System      string
	Prompt      string
	Temperature float64
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
