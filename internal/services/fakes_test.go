package services

import (
	"context"
	"sync"

	"google.golang.org/genai"
)

// fakeGemini implements GeminiService for tests.
type fakeGemini struct {
	mu sync.Mutex

	GenerateJSONFunc      func(ctx context.Context, prompt string) (string, error)
	GenerateEmbeddingFunc func(ctx context.Context, text string) ([]float32, error)

	prompts []string
}

func (f *fakeGemini) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if f.GenerateEmbeddingFunc != nil {
		return f.GenerateEmbeddingFunc(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeGemini) GenerateJSONWithRetry(ctx context.Context, prompt string, _ *genai.Schema) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.GenerateJSONFunc != nil {
		return f.GenerateJSONFunc(ctx, prompt)
	}
	return `{"candidate_name": "Jane Doe", "score": 75, "summary": "Good fit.", "reasoning": "**Strengths:**\n- Go\n\n**Gaps:**\n- None", "is_recommended": true}`, nil
}

func (f *fakeGemini) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}
