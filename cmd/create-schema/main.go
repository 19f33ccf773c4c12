package main

import (
	"context"
	"flag"
	"fmt"

	"nyayasahaya-backend/config"
	"nyayasahaya-backend/logger"
	"nyayasahaya-backend/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "drop existing tables before creating them")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Options{Production: cfg.IsProduction()})
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	// Plain pool: the vector type cannot be registered before the extension exists
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if *reset {
		for _, table := range []string{"chat_exchanges", "legal_chunks"} {
			if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
				log.Fatal("failed to drop table", zap.String("table", table), zap.Error(err))
			}
			log.Info("dropped table", zap.String("table", table))
		}
	}

	statements := []struct {
		name string
		sql  string
	}{
		{
			name: "pgvector extension",
			sql:  "CREATE EXTENSION IF NOT EXISTS vector",
		},
		{
			name: "legal_chunks table",
			sql: fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS legal_chunks (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),

    -- Source statute and position within it
    source_document VARCHAR(255) NOT NULL,
    chunk_index INTEGER NOT NULL,

    act VARCHAR(255) NOT NULL DEFAULT '',
    section VARCHAR(32),
    title TEXT,
    chunk_text TEXT NOT NULL,

    embedding vector(%d) NOT NULL,

    created_at TIMESTAMP DEFAULT NOW(),

    CONSTRAINT chunk_order_unique UNIQUE (source_document, chunk_index)
);`, repository.EmbeddingDimensions),
		},
		{
			name: "Vector similarity search (HNSW)",
			sql: `CREATE INDEX IF NOT EXISTS idx_embedding_hnsw ON legal_chunks
USING hnsw (embedding vector_cosine_ops)
WITH (m = 16, ef_construction = 64);`,
		},
		{
			name: "Source document filtering",
			sql:  "CREATE INDEX IF NOT EXISTS idx_source_document ON legal_chunks(source_document);",
		},
		{
			name: "chat_exchanges table",
			sql: `
CREATE TABLE IF NOT EXISTS chat_exchanges (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    session_id VARCHAR(128) NOT NULL,
    category VARCHAR(64) NOT NULL,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    sources JSONB DEFAULT '[]'::jsonb,
    fallback BOOLEAN DEFAULT false,
    created_at TIMESTAMP DEFAULT NOW()
);`,
		},
		{
			name: "Session history lookup",
			sql:  "CREATE INDEX IF NOT EXISTS idx_chat_exchanges_session ON chat_exchanges(session_id, created_at);",
		},
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt.sql); err != nil {
			log.Fatal("failed to create "+stmt.name, zap.Error(err))
		}
		log.Info("✓ created", zap.String("object", stmt.name))
	}

	fmt.Println("\n✅ Database schema created successfully!")
	fmt.Println("   Tables: legal_chunks, chat_exchanges")
}
