package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

// Generator sends a prompt to the language model and returns its text
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BatchEmbedder embeds many documents at once for the index builder
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Gemini's batchEmbedContents accepts at most 100 requests
const maxEmbedBatch = 100

// GeminiGenerator generates answers with a Gemini model
type GeminiGenerator struct {
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// GeminiGeneratorConfig holds the sampling settings for generation
type GeminiGeneratorConfig struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
}

// NewGeminiGenerator creates a generator on an existing client
func NewGeminiGenerator(client *genai.Client, cfg GeminiGeneratorConfig, logger *zap.Logger) *GeminiGenerator {
	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(cfg.Temperature)
	model.SetMaxOutputTokens(cfg.MaxOutputTokens)
	return &GeminiGenerator{
		model:  model,
		logger: logger.With(zap.String("component", "gemini_generator"), zap.String("model", cfg.Model)),
	}
}

// Generate makes a single attempt; blank text is returned as "" rather than an error
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("gemini blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	var responseText strings.Builder
	for i, candidate := range resp.Candidates {
		if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
			g.logger.Warn("candidate finished early",
				zap.Int("candidate", i),
				zap.String("finish_reason", candidate.FinishReason.String()),
			)
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				responseText.WriteString(string(text))
			}
		}
		// Only the first candidate with content is used
		if responseText.Len() > 0 {
			break
		}
	}

	return responseText.String(), nil
}

// GeminiEmbedder embeds queries and documents with a Gemini embedding model
type GeminiEmbedder struct {
	query    *genai.EmbeddingModel
	document *genai.EmbeddingModel
}

// NewGeminiEmbedder creates an embedder on an existing client
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	query := client.EmbeddingModel(model)
	query.TaskType = genai.TaskTypeRetrievalQuery
	document := client.EmbeddingModel(model)
	document.TaskType = genai.TaskTypeRetrievalDocument
	return &GeminiEmbedder{
		query:    query,
		document: document,
	}
}

// Embed returns the query embedding for text
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := e.query.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, errors.New("gemini returned an empty embedding")
	}
	return res.Embedding.Values, nil
}

// EmbedBatch returns document embeddings in input order
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := min(start+maxEmbedBatch, len(texts))

		batch := e.document.NewBatch()
		for _, text := range texts[start:end] {
			batch.AddContent(genai.Text(text))
		}

		res, err := e.document.BatchEmbedContents(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("gemini batch embed: %w", err)
		}
		if len(res.Embeddings) != end-start {
			return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(res.Embeddings), end-start)
		}
		for _, emb := range res.Embeddings {
			out = append(out, emb.Values)
		}
	}
	return out, nil
}
