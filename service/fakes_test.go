package service

import (
	"context"
	"sync"

	"nyayasahaya-backend/models"
)

type fakeRetriever struct {
	mu       sync.Mutex
	passages []models.RetrievedPassage
	err      error
	calls    int
	lastK    int
}

func (f *fakeRetriever) Retrieve(ctx context.Context, question string, k int) ([]models.RetrievedPassage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastK = k
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func (f *fakeRetriever) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGenerator struct {
	mu      sync.Mutex
	answer  string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeGenerator) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type fakeRecorder struct {
	mu        sync.Mutex
	exchanges []*models.ChatExchange
	err       error
}

func (f *fakeRecorder) Create(ctx context.Context, exchange *models.ChatExchange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.exchanges = append(f.exchanges, exchange)
	return nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
	texts  []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.texts = append(f.texts, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		f.texts = append(f.texts, texts[i])
		out[i] = f.vector
	}
	return out, nil
}

type fakeSearcher struct {
	chunks    []models.LegalChunk
	err       error
	lastLimit int
}

func (f *fakeSearcher) SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]models.LegalChunk, error) {
	f.lastLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}
