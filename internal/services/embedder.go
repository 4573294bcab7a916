package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"google.golang.org/genai"
)

// maxEmbedRunes keeps requests under the embedding model's input limit.
const maxEmbedRunes = 40000

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type geminiEmbedder struct {
	models     contentEmbedder
	embedModel string
}

// NewGeminiEmbedder returns an embedder whose calls fail with ErrMissingAPIKey
// when apiKey is empty.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (Embedder, error) {
	e := &geminiEmbedder{embedModel: model}

	if strings.TrimSpace(apiKey) == "" {
		return e, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	e.models = client.Models
	return e, nil
}

// GenerateEmbedding implements Embedder.
func (e *geminiEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if e.models == nil {
		return nil, fmt.Errorf("embedding: %w", ErrMissingAPIKey)
	}

	text = truncateRunes(text, maxEmbedRunes)

	result, err := e.models.EmbedContent(ctx, e.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// truncateRunes cuts s to at most limit runes without splitting a rune.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
