package repository

import (
	"context"
	"os"
	"testing"

	"nyayasahaya-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to TEST_DATABASE_URL; the schema from cmd/create-schema must exist
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func unitVector(hot int) []float32 {
	v := make([]float32, EmbeddingDimensions)
	v[hot] = 1
	return v
}

func TestLegalChunkRepository_InsertAndSearch(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewLegalChunkRepository(pool)

	doc := "test/" + uuid.NewString() + ".txt"
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM legal_chunks WHERE source_document = $1", doc)
	})

	chunks := []models.LegalChunk{
		{SourceDocument: doc, ChunkIndex: 0, Act: "Indian Penal Code", Section: "378", Title: "Theft", Text: "theft", Embedding: unitVector(0)},
		{SourceDocument: doc, ChunkIndex: 1, Act: "Indian Penal Code", Section: "379", Text: "punishment", Embedding: unitVector(1)},
		{SourceDocument: doc, ChunkIndex: 2, Act: "Indian Penal Code", Text: "preamble", Embedding: unitVector(2)},
	}
	require.NoError(t, repo.InsertChunks(ctx, chunks))
	// Re-inserting is a no-op
	require.NoError(t, repo.InsertChunks(ctx, chunks))

	n, err := repo.CountByDocument(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	query := unitVector(1)
	query[0] = 0.5
	found, err := repo.SearchSimilar(ctx, query, 2)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "379", found[0].Section)
	assert.Equal(t, "378", found[1].Section)
	assert.LessOrEqual(t, found[0].Distance, found[1].Distance)
	assert.Equal(t, "", found[0].Title)

	removed, err := repo.DeleteByDocument(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	n, err = repo.CountByDocument(ctx, doc)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLegalChunkRepository_RejectsWrongDimensions(t *testing.T) {
	repo := &LegalChunkRepository{}
	_, err := repo.SearchSimilar(context.Background(), []float32{1, 2, 3}, 3)
	assert.Error(t, err)

	err = repo.InsertChunks(context.Background(), []models.LegalChunk{{Embedding: []float32{1}}})
	assert.Error(t, err)
}

func TestConversationRepository_Lifecycle(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewConversationRepository(pool)
	sessionID := uuid.NewString()
	t.Cleanup(func() { _ = repo.DeleteBySession(context.Background(), sessionID) })

	for _, q := range []string{"first", "second", "third"} {
		exchange := &models.ChatExchange{
			SessionID: sessionID,
			Category:  models.CategoryLegal,
			Question:  q,
			Answer:    "answer to " + q,
			Sources:   models.SourceRefs{{Act: "Indian Penal Code", Section: "379", Score: 0.9}},
		}
		require.NoError(t, repo.Create(ctx, exchange))
		assert.NotEqual(t, uuid.Nil, exchange.ID)
	}

	recent, err := repo.ListBySession(ctx, sessionID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "second", recent[0].Question)
	assert.Equal(t, "third", recent[1].Question)
	require.Len(t, recent[1].Sources, 1)
	assert.Equal(t, "379", recent[1].Sources[0].Section)

	require.NoError(t, repo.DeleteBySession(ctx, sessionID))
	recent, err = repo.ListBySession(ctx, sessionID, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
