// Package embedding provides text embedding generation with multiple backend
// support. The retriever uses embeddings as its semantic similarity measure;
// any backend producing vectors of the configured dimension is acceptable.
package embedding

import (
	"context"
	"fmt"

	"github.com/mapmem/mapmem-go/internal/config"
)

// Embedder defines the interface for text embedding providers.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the name of the embedding model being used.
	Model() string

	// Dimension returns the embedding vector dimension.
	// Must match the HNSW index dimension in the SurrealDB schema.
	Dimension() int
}

// New creates an Embedder based on the provided configuration.
func New(ctx context.Context, cfg config.Config) (Embedder, error) {
	switch cfg.EmbedProvider {
	case config.ProviderOllama, "":
		return NewLangchainOllama(cfg)
	case config.ProviderOpenAI:
		return NewLangchainOpenAI(cfg)
	case config.ProviderBedrock:
		return NewBedrock(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.EmbedProvider)
	}
}
