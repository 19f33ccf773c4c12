package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nyayasahaya-backend/config"
	"nyayasahaya-backend/logger"
	"nyayasahaya-backend/repository"
	"nyayasahaya-backend/service"
	"nyayasahaya-backend/storage"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	prefix := flag.String("prefix", "", "only index corpus documents under this storage prefix")
	maxChunkChars := flag.Int("max-chunk-chars", service.DefaultMaxChunkChars, "split sections longer than this on paragraph breaks")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Options{FilePath: cfg.LogFile, Production: cfg.IsProduction()})
	defer func() { _ = log.Sync() }()

	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	chunkRepo := repository.NewLegalChunkRepository(pool)
	if _, err := chunkRepo.Count(ctx); err != nil {
		log.Fatal("legal_chunks table is not usable, run cmd/create-schema first", zap.Error(err))
	}

	corpus, err := storage.NewStorageFromEnv()
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatal("failed to initialize Gemini", zap.Error(err))
	}
	defer client.Close()

	ingest := service.NewIngestService(
		service.IngestWithStorage(corpus),
		service.IngestWithEmbedder(service.NewGeminiEmbedder(client, cfg.EmbeddingModel)),
		service.IngestWithChunkStore(chunkRepo),
		service.IngestWithLogger(log),
		service.IngestWithMaxChunkChars(*maxChunkChars),
	)

	report, err := ingest.BuildIndex(ctx, *prefix)
	if err != nil {
		log.Fatal("index build aborted", zap.Error(err))
	}

	total, err := chunkRepo.Count(ctx)
	if err != nil {
		log.Warn("failed to count indexed chunks", zap.Error(err))
	}

	fmt.Println("\n✅ Embedding build complete!")
	fmt.Printf("   Documents indexed: %d (skipped %d, failed %d)\n", report.Documents, report.Skipped, report.Failed)
	fmt.Printf("   Chunks added: %d, total in index: %d\n", report.Chunks, total)

	if report.Failed > 0 {
		_ = log.Sync()
		os.Exit(1)
	}
}
