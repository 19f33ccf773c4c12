package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nyayasahaya-backend/config"
	"nyayasahaya-backend/handlers"
	"nyayasahaya-backend/logger"
	"nyayasahaya-backend/memory"
	"nyayasahaya-backend/observability"
	"nyayasahaya-backend/repository"
	"nyayasahaya-backend/service"
	"nyayasahaya-backend/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	envLoaded := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Options{
		FilePath:   cfg.LogFile,
		Production: cfg.IsProduction(),
	})
	defer func() { _ = log.Sync() }()

	if !envLoaded {
		log.Warn("no .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// Initialize database connection
	db, err := repository.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to initialize Postgres", zap.Error(err))
	}
	defer db.Close()
	log.Info("Postgres connection established with pgvector support")

	// Initialize repositories
	chunkRepo := repository.NewLegalChunkRepository(db)
	conversationRepo := repository.NewConversationRepository(db)

	// Refuse to serve without a usable index
	if err := service.CheckIndex(ctx, chunkRepo); err != nil {
		if errors.Is(err, service.ErrIndexEmpty) {
			log.Fatal("similarity index is empty, run cmd/build-embeddings first")
		}
		log.Fatal("similarity index unavailable", zap.Error(err))
	}

	// Initialize Gemini client
	geminiClient, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		log.Fatal("failed to initialize Gemini", zap.Error(err))
	}
	defer geminiClient.Close()
	log.Info("Gemini client initialized",
		zap.String("generation_model", cfg.GenerationModel),
		zap.String("embedding_model", cfg.EmbeddingModel),
	)

	embedder := service.NewGeminiEmbedder(geminiClient, cfg.EmbeddingModel)
	generator := service.NewGeminiGenerator(geminiClient, service.GeminiGeneratorConfig{
		Model:           cfg.GenerationModel,
		Temperature:     cfg.Temperature,
		MaxOutputTokens: cfg.MaxOutputTokens,
	}, log)

	sessions := memory.NewStore(cfg.MemoryWindow, cfg.SessionTTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry, "nyayasahaya", func() float64 {
		return float64(sessions.Count())
	})

	// Initialize services
	chatService := service.NewChatService(
		service.ChatWithRetriever(service.NewVectorRetriever(embedder, chunkRepo)),
		service.ChatWithGenerator(generator),
		service.ChatWithSessionStore(sessions),
		service.ChatWithExchangeRecorder(conversationRepo),
		service.ChatWithMetrics(metrics),
		service.ChatWithLogger(log),
		service.ChatWithTopK(cfg.RetrievalK),
	)

	// Initialize handlers
	routes := handlers.Routes{
		Chat:    handlers.NewChatHandler(chatService, conversationRepo, log),
		Health:  handlers.NewHealthHandler(chunkRepo, log),
		Metrics: metrics.Handler(),
	}

	if cfg.CorpusAdminTokenHash != "" {
		corpusStorage, err := storage.NewStorageFromEnv()
		if err != nil {
			log.Fatal("failed to initialize storage", zap.Error(err))
		}
		ingestService := service.NewIngestService(
			service.IngestWithStorage(corpusStorage),
			service.IngestWithEmbedder(embedder),
			service.IngestWithChunkStore(chunkRepo),
			service.IngestWithLogger(log),
		)
		routes.Corpus = handlers.NewCorpusHandler(corpusStorage, ingestService, chunkRepo, log)
		routes.AdminTokenHash = cfg.CorpusAdminTokenHash
		log.Info("corpus admin endpoints enabled")
	}

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.GinRecovery(log), logger.GinMiddleware(log))
	r.Use(cors.New(corsConfig(cfg.CORSAllowOrigins)))
	routes.Register(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// corsConfig permits every method and header. A "*" origin is echoed back so
// credentials can still be allowed.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"*"},
		ExposeHeaders:    []string{handlers.SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		c.AllowOrigins = origins
	}
	return c
}
