// Package memory implements the mapping memory engine: retrieval of similar
// past episodes, success-weighted vote aggregation, schema-drift filtering,
// the confidence gate, and reflection consolidation.
package memory

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/mapmem/mapmem-go/internal/models"
)

// EventStore is the slice of the persistence layer the engine depends on.
// *db.Client satisfies it; tests use in-memory fakes.
type EventStore interface {
	AppendEpisode(ctx context.Context, in models.EpisodeInput) (*models.Episode, error)
	QueryEpisodes(ctx context.Context, namespace string, filter models.EpisodeFilter, limit int) ([]models.Episode, error)
	UpsertReflection(ctx context.Context, r models.Reflection) (*models.Reflection, error)
	QueryReflections(ctx context.Context, namespace, targetTable string, limit int) ([]models.Reflection, error)
}

// Embedder is the subset of the embedding provider the retriever needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// QueryContext describes the file shape a caller is about to import.
type QueryContext struct {
	Description   string
	FileSignature string
	TargetTable   string

	// Embedding may be precomputed by the caller; when nil the retriever
	// embeds Description itself.
	Embedding []float32
}

// ScoredEpisode pairs an episode with its retrieval score in [0,1].
type ScoredEpisode struct {
	Episode models.Episode
	Score   float64
}

const (
	// DefaultTopK bounds the ranked list handed to aggregation.
	DefaultTopK = 20

	// DefaultSignatureBoost is added when an episode's file signature
	// exactly matches the query's. Exact structural matches are a strong
	// signal that plain text similarity underweights.
	DefaultSignatureBoost = 0.6

	// candidateLimit bounds how many stored episodes one retrieval scores.
	candidateLimit = 200
)

// Retriever ranks stored episodes against a query context.
type Retriever struct {
	store    EventStore
	embedder Embedder
	boost    float64
	logger   *slog.Logger
}

// NewRetriever creates a retriever. embedder may be nil, in which case
// scoring falls back to token overlap on descriptions.
func NewRetriever(store EventStore, embedder Embedder, boost float64, logger *slog.Logger) *Retriever {
	if boost <= 0 {
		boost = DefaultSignatureBoost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{store: store, embedder: embedder, boost: boost, logger: logger}
}

// Retrieve returns the topK most similar episodes in the namespace, scored
// by semantic similarity plus the exact-signature boost, capped at 1.0.
// Ordering is deterministic: score descending, newer first on ties.
func (r *Retriever) Retrieve(ctx context.Context, namespace string, qc QueryContext, topK int) ([]ScoredEpisode, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	candidates, err := r.store.QueryEpisodes(ctx, namespace, models.EpisodeFilter{
		TargetTable: qc.TargetTable,
	}, candidateLimit)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []ScoredEpisode{}, nil
	}

	queryEmbedding := qc.Embedding
	if queryEmbedding == nil && r.embedder != nil && qc.Description != "" {
		queryEmbedding, err = r.embedder.Embed(ctx, qc.Description)
		if err != nil {
			// Retrieval degrades to lexical overlap rather than failing.
			r.logger.Warn("query embedding failed, falling back to token overlap", "error", err)
			queryEmbedding = nil
		}
	}

	scored := make([]ScoredEpisode, 0, len(candidates))
	for _, ep := range candidates {
		score := r.similarity(queryEmbedding, qc.Description, ep)
		if qc.FileSignature != "" && ep.FileSignature == qc.FileSignature {
			score += r.boost
		}
		if score > 1.0 {
			score = 1.0
		}
		scored = append(scored, ScoredEpisode{Episode: ep, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Episode.CreatedAt.Equal(scored[j].Episode.CreatedAt) {
			return scored[i].Episode.CreatedAt.After(scored[j].Episode.CreatedAt)
		}
		return scored[i].Episode.ID < scored[j].Episode.ID
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// similarity scores one candidate in [0,1]: cosine over embeddings when both
// sides have one, token overlap on descriptions otherwise.
func (r *Retriever) similarity(queryEmbedding []float32, queryText string, ep models.Episode) float64 {
	if queryEmbedding != nil && len(ep.Embedding) == len(queryEmbedding) && len(ep.Embedding) > 0 {
		return clamp01(cosine(queryEmbedding, ep.Embedding))
	}
	return tokenOverlap(queryText, ep.Description)
}

// cosine computes cosine similarity between two equal-length vectors.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// tokenOverlap computes Jaccard similarity over lowercase word sets. It is
// the embedding-free fallback; any monotonic similarity in [0,1] satisfies
// the retrieval contract.
func tokenOverlap(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if setB[tok] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == ':' || r == '_' || r == '-' || r == '.'
	})
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f != "" {
			set[f] = true
		}
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
