package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"nyayasahaya-backend/models"
)

// Embedder maps text to a query vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearcher returns the statute chunks nearest to a query vector
type ChunkSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]models.LegalChunk, error)
}

// Retriever returns the k passages most relevant to a question, best first
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]models.RetrievedPassage, error)
}

// VectorRetriever embeds the question and searches the similarity index
type VectorRetriever struct {
	embedder Embedder
	searcher ChunkSearcher
}

// NewVectorRetriever creates a retriever over the pgvector index
func NewVectorRetriever(embedder Embedder, searcher ChunkSearcher) *VectorRetriever {
	return &VectorRetriever{
		embedder: embedder,
		searcher: searcher,
	}
}

// Retrieve returns the index's ordering unchanged; rank is 1-based
func (r *VectorRetriever) Retrieve(ctx context.Context, question string, k int) ([]models.RetrievedPassage, error) {
	if r.embedder == nil || r.searcher == nil {
		return nil, errors.New("vector retriever not configured")
	}
	if k <= 0 {
		k = 3
	}

	embedding, err := r.embedder.Embed(ctx, strings.TrimSpace(question))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	chunks, err := r.searcher.SearchSimilar(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search legal chunks: %w", err)
	}

	passages := make([]models.RetrievedPassage, 0, len(chunks))
	for i, chunk := range chunks {
		passages = append(passages, models.RetrievedPassage{
			Text:    chunk.Text,
			Act:     chunk.Act,
			Section: chunk.Section,
			Rank:    i + 1,
			Score:   1 - chunk.Distance,
		})
	}
	return passages, nil
}

var ErrIndexEmpty = errors.New("similarity index is empty")

// IndexStatus reports whether the similarity index can serve queries
type IndexStatus interface {
	Ping(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// CheckIndex fails when the index is unreachable or holds no chunks
func CheckIndex(ctx context.Context, index IndexStatus) error {
	if err := index.Ping(ctx); err != nil {
		return fmt.Errorf("index unreachable: %w", err)
	}
	n, err := index.Count(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrIndexEmpty
	}
	return nil
}
