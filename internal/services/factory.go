package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/candidate-assistant/internal/config"
)

// NewCompletionGateway picks the chat provider named in the config.
func NewCompletionGateway(ctx context.Context, cfg *config.Config, logger *zap.Logger) (CompletionGateway, error) {
	switch cfg.Chat.Provider {
	case config.ProviderGroq:
		return NewGroqGateway(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.Model, logger)
	case config.ProviderGemini:
		return NewGeminiGateway(ctx, cfg.Gemini.APIKey, cfg.Gemini.ChatModel, logger)
	default:
		return nil, fmt.Errorf("unknown chat provider %q", cfg.Chat.Provider)
	}
}

// NewPassageIndex connects to Qdrant when configured and falls back to an
// index that stores nothing.
func NewPassageIndex(ctx context.Context, cfg *config.Config, logger *zap.Logger) (PassageIndex, error) {
	if cfg.Qdrant.URL == "" {
		logger.Info("ℹ️ QDRANT_URL not set, passage search disabled")
		return NewNoopPassageIndex(), nil
	}

	embedder, err := NewGeminiEmbedder(ctx, cfg.Gemini.APIKey, cfg.Gemini.EmbedModel)
	if err != nil {
		return nil, err
	}

	index, err := NewQdrantPassageIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, embedder, logger)
	if err != nil {
		return nil, err
	}

	if err := index.InitCollection(ctx); err != nil {
		return nil, err
	}

	return index, nil
}
