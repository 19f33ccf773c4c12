package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"nyayasahaya-backend/models"
	"nyayasahaya-backend/storage"

	"go.uber.org/zap"
)

// ChunkStore persists embedded statute chunks
type ChunkStore interface {
	InsertChunks(ctx context.Context, chunks []models.LegalChunk) error
	CountByDocument(ctx context.Context, sourceDocument string) (int, error)
}

// IngestService builds the similarity index from corpus documents
type IngestService struct {
	storage       storage.Storage
	embedder      BatchEmbedder
	chunks        ChunkStore
	logger        *zap.Logger
	maxChunkChars int
}

// IngestServiceOption is a functional option for IngestService
type IngestServiceOption func(*IngestService)

// IngestWithStorage sets the corpus storage
func IngestWithStorage(s storage.Storage) IngestServiceOption {
	return func(svc *IngestService) {
		svc.storage = s
	}
}

// IngestWithEmbedder sets the document embedder
func IngestWithEmbedder(e BatchEmbedder) IngestServiceOption {
	return func(svc *IngestService) {
		svc.embedder = e
	}
}

// IngestWithChunkStore sets where embedded chunks are written
func IngestWithChunkStore(c ChunkStore) IngestServiceOption {
	return func(svc *IngestService) {
		svc.chunks = c
	}
}

// IngestWithLogger sets the logger
func IngestWithLogger(l *zap.Logger) IngestServiceOption {
	return func(svc *IngestService) {
		svc.logger = l
	}
}

// IngestWithMaxChunkChars bounds chunk size
func IngestWithMaxChunkChars(n int) IngestServiceOption {
	return func(svc *IngestService) {
		svc.maxChunkChars = n
	}
}

// NewIngestService creates a new ingest service
func NewIngestService(opts ...IngestServiceOption) *IngestService {
	s := &IngestService{maxChunkChars: DefaultMaxChunkChars}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.With(zap.String("component", "ingest_service"))
	return s
}

// IngestReport summarises an index build
type IngestReport struct {
	Documents int // Documents indexed in this run
	Skipped   int // Already indexed or unsupported
	Failed    int
	Chunks    int
}

var ErrUnsupportedDocument = errors.New("unsupported corpus document")

// BuildIndex indexes every corpus document under prefix. A failing document
// is logged and counted; only listing errors abort the run.
func (s *IngestService) BuildIndex(ctx context.Context, prefix string) (*IngestReport, error) {
	if s.storage == nil || s.embedder == nil || s.chunks == nil {
		return nil, errors.New("ingest service not configured")
	}

	paths, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	report := &IngestReport{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		log := s.logger.With(zap.String("document", path))
		n, err := s.IngestDocument(ctx, path)
		switch {
		case errors.Is(err, ErrUnsupportedDocument):
			log.Debug("skipping unsupported document")
			report.Skipped++
		case err != nil:
			log.Error("failed to index document", zap.Error(err))
			report.Failed++
		case n == 0:
			log.Info("already indexed, skipping")
			report.Skipped++
		default:
			log.Info("indexed document", zap.Int("chunks", n))
			report.Documents++
			report.Chunks += n
		}
	}
	return report, nil
}

// IngestDocument chunks, embeds and stores one document.
// It returns 0 when the document is already indexed.
func (s *IngestService) IngestDocument(ctx context.Context, path string) (int, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
	default:
		return 0, ErrUnsupportedDocument
	}

	count, err := s.chunks.CountByDocument(ctx, path)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	rc, err := s.storage.Download(ctx, path)
	if err != nil {
		return 0, err
	}
	content, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", path, err)
	}

	act := ActName(storage.DocumentName(path))
	chunks := ChunkStatute(path, act, string(content), s.maxChunkChars)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%s has no text", path)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = embeddingText(chunk)
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}

	if err := s.chunks.InsertChunks(ctx, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// embeddingText prefixes the chunk with its heading so the Act and section are searchable
func embeddingText(chunk models.LegalChunk) string {
	if heading := chunk.Heading(); heading != "" {
		return heading + "\n" + chunk.Text
	}
	return chunk.Text
}
