package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nyayasahaya-backend/memory"
	"nyayasahaya-backend/models"
	"nyayasahaya-backend/observability"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrEmptyQuestion    = errors.New("question is required")
	ErrRetrievalFailed  = errors.New("failed to retrieve legal context")
	ErrGenerationFailed = errors.New("failed to generate answer")
	ErrEmbeddingFailed  = errors.New("failed to generate embedding")
)

// ExchangeRecorder stores answered legal exchanges
type ExchangeRecorder interface {
	Create(ctx context.Context, exchange *models.ChatExchange) error
}

// ChatService answers chat questions: canned replies for conversational
// queries, retrieval plus generation for legal ones
type ChatService struct {
	retriever Retriever
	generator Generator
	prompts   *PromptBuilder
	sessions  *memory.Store
	recorder  ExchangeRecorder
	metrics   *observability.Metrics
	logger    *zap.Logger
	topK      int
}

// ChatServiceOption is a functional option for ChatService
type ChatServiceOption func(*ChatService)

// ChatWithRetriever sets the context retriever
func ChatWithRetriever(r Retriever) ChatServiceOption {
	return func(s *ChatService) {
		s.retriever = r
	}
}

// ChatWithGenerator sets the answer generator
func ChatWithGenerator(g Generator) ChatServiceOption {
	return func(s *ChatService) {
		s.generator = g
	}
}

// ChatWithPromptBuilder sets the prompt builder
func ChatWithPromptBuilder(b *PromptBuilder) ChatServiceOption {
	return func(s *ChatService) {
		s.prompts = b
	}
}

// ChatWithSessionStore sets the conversation memory
func ChatWithSessionStore(store *memory.Store) ChatServiceOption {
	return func(s *ChatService) {
		s.sessions = store
	}
}

// ChatWithExchangeRecorder records answered legal exchanges
func ChatWithExchangeRecorder(r ExchangeRecorder) ChatServiceOption {
	return func(s *ChatService) {
		s.recorder = r
	}
}

// ChatWithMetrics sets the metrics sink
func ChatWithMetrics(m *observability.Metrics) ChatServiceOption {
	return func(s *ChatService) {
		s.metrics = m
	}
}

// ChatWithLogger sets the logger
func ChatWithLogger(l *zap.Logger) ChatServiceOption {
	return func(s *ChatService) {
		s.logger = l
	}
}

// ChatWithTopK sets how many passages are retrieved per question
func ChatWithTopK(k int) ChatServiceOption {
	return func(s *ChatService) {
		s.topK = k
	}
}

// NewChatService creates a new chat service
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{
		topK: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.prompts == nil {
		s.prompts = MustPromptBuilder()
	}
	if s.sessions == nil {
		s.sessions = memory.NewStore(memory.DefaultWindowSize, memory.DefaultSessionTTL)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.With(zap.String("component", "chat_service"))
	return s
}

// ChatRequest represents a question asked within a conversation
type ChatRequest struct {
	SessionID string // Empty or not a UUID starts a new conversation
	Question  string
}

// ChatResult represents the answer to a question
type ChatResult struct {
	SessionID string
	Answer    string
	Category  models.Category
	Sources   []models.RetrievedPassage
	Fallback  bool // Generator returned blank text
}

// Answer validates, classifies and answers a question
func (s *ChatService) Answer(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		s.metrics.ObserveRequest("none", "rejected")
		return nil, ErrEmptyQuestion
	}

	sessionID := normalizeSessionID(req.SessionID)

	category := Classify(question)
	if answer, ok := Respond(category); ok {
		s.metrics.ObserveRequest(category.String(), "canned")
		return &ChatResult{
			SessionID: sessionID,
			Answer:    answer,
			Category:  category,
		}, nil
	}

	result, err := s.answerLegal(ctx, sessionID, question)
	if err != nil {
		s.metrics.ObserveRequest(category.String(), "failed")
		return nil, err
	}
	s.metrics.ObserveRequest(category.String(), "answered")
	return result, nil
}

// normalizeSessionID keeps server-issued UUIDs and mints a new one for anything else,
// so session ids stay unguessable
func normalizeSessionID(raw string) string {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.NewString()
	}
	return id.String()
}

// answerLegal holds the session lock from history read to turn append
func (s *ChatService) answerLegal(ctx context.Context, sessionID, question string) (*ChatResult, error) {
	if s.retriever == nil {
		return nil, fmt.Errorf("%w: retriever not set", ErrRetrievalFailed)
	}
	if s.generator == nil {
		return nil, fmt.Errorf("%w: generator not set", ErrGenerationFailed)
	}

	lease, err := s.sessions.Acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	start := time.Now()

	passages, err := s.retriever.Retrieve(ctx, question, s.topK)
	if err != nil {
		s.metrics.ObserveUpstreamError("retrieve")
		return nil, fmt.Errorf("%w: %v", ErrRetrievalFailed, err)
	}

	prompt, err := s.prompts.Build(JoinPassages(passages), lease.Window.AsHistoryText(), question)
	if err != nil {
		return nil, err
	}

	generated, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.metrics.ObserveUpstreamError("generate")
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	s.metrics.ObserveGeneration(time.Since(start))

	answer := strings.TrimSpace(generated)
	fallback := answer == ""
	if fallback {
		s.logger.Warn("generator returned blank answer", zap.String("session_id", sessionID))
		answer = EmptyAnswerFallback
	}

	lease.Window.Append(models.Turn{
		Question: question,
		Answer:   answer,
		At:       time.Now().UTC(),
	})

	s.record(ctx, sessionID, question, answer, passages, fallback)

	return &ChatResult{
		SessionID: sessionID,
		Answer:    answer,
		Category:  models.CategoryLegal,
		Sources:   passages,
		Fallback:  fallback,
	}, nil
}

// record stores the exchange; failures are logged and never reach the caller
func (s *ChatService) record(ctx context.Context, sessionID, question, answer string, passages []models.RetrievedPassage, fallback bool) {
	if s.recorder == nil {
		return
	}
	sources := make(models.SourceRefs, 0, len(passages))
	for _, p := range passages {
		sources = append(sources, models.SourceRef{Act: p.Act, Section: p.Section, Score: p.Score})
	}
	exchange := &models.ChatExchange{
		SessionID: sessionID,
		Category:  models.CategoryLegal,
		Question:  question,
		Answer:    answer,
		Sources:   sources,
		Fallback:  fallback,
	}
	if err := s.recorder.Create(ctx, exchange); err != nil {
		s.logger.Warn("failed to record chat exchange", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// EndSession forgets the turns remembered for a conversation
func (s *ChatService) EndSession(sessionID string) {
	s.sessions.Forget(sessionID)
}
