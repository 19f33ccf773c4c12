package repository

import (
	"context"
	"fmt"

	"nyayasahaya-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the vector size of the legal_chunks.embedding column
const EmbeddingDimensions = 768

// LegalChunkRepository handles database operations for legal chunks
type LegalChunkRepository struct {
	db *pgxpool.Pool
}

// NewLegalChunkRepository creates a new legal chunk repository
func NewLegalChunkRepository(db *pgxpool.Pool) *LegalChunkRepository {
	return &LegalChunkRepository{db: db}
}

// SearchSimilar returns the chunks nearest to embedding by cosine distance, nearest first
func (r *LegalChunkRepository) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]models.LegalChunk, error) {
	if len(embedding) != EmbeddingDimensions {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", EmbeddingDimensions, len(embedding))
	}

	query := `
		SELECT
			id,
			source_document,
			chunk_index,
			act,
			COALESCE(section, ''),
			COALESCE(title, ''),
			chunk_text,
			created_at,
			embedding <=> $1 AS distance
		FROM legal_chunks
		ORDER BY embedding <=> $1
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query legal chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.LegalChunk
	for rows.Next() {
		var chunk models.LegalChunk
		err := rows.Scan(
			&chunk.ID,
			&chunk.SourceDocument,
			&chunk.ChunkIndex,
			&chunk.Act,
			&chunk.Section,
			&chunk.Title,
			&chunk.Text,
			&chunk.CreatedAt,
			&chunk.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan legal chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating legal chunks: %w", err)
	}

	return chunks, nil
}

// InsertChunks stores chunks with their embeddings in one batch
func (r *LegalChunkRepository) InsertChunks(ctx context.Context, chunks []models.LegalChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	query := `
		INSERT INTO legal_chunks (
			source_document, chunk_index, act, section, title, chunk_text, embedding
		) VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		ON CONFLICT (source_document, chunk_index) DO NOTHING`

	batch := &pgx.Batch{}
	for _, chunk := range chunks {
		if len(chunk.Embedding) != EmbeddingDimensions {
			return fmt.Errorf("chunk %d of %s: embedding must be %d dimensions, got %d",
				chunk.ChunkIndex, chunk.SourceDocument, EmbeddingDimensions, len(chunk.Embedding))
		}
		batch.Queue(query,
			chunk.SourceDocument,
			chunk.ChunkIndex,
			chunk.Act,
			chunk.Section,
			chunk.Title,
			chunk.Text,
			pgvector.NewVector(chunk.Embedding),
		)
	}

	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert legal chunks: %w", err)
	}
	return nil
}

// CountByDocument returns how many chunks of a source document are indexed
func (r *LegalChunkRepository) CountByDocument(ctx context.Context, sourceDocument string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM legal_chunks WHERE source_document = $1", sourceDocument).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count legal chunks: %w", err)
	}
	return count, nil
}

// DeleteByDocument removes every chunk of a source document and returns how many were removed
func (r *LegalChunkRepository) DeleteByDocument(ctx context.Context, sourceDocument string) (int64, error) {
	tag, err := r.db.Exec(ctx, "DELETE FROM legal_chunks WHERE source_document = $1", sourceDocument)
	if err != nil {
		return 0, fmt.Errorf("failed to delete legal chunks: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the total number of indexed chunks
func (r *LegalChunkRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM legal_chunks").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count legal chunks: %w", err)
	}
	return count, nil
}

// Ping checks the database is reachable
func (r *LegalChunkRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
