package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-assistant/internal/config"
)

func TestNewCompletionGatewayByProvider(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		Chat:   config.ChatConfig{Provider: config.ProviderGroq},
		Groq:   config.GroqConfig{Model: "llama-3.1-70b-versatile", BaseURL: "https://api.groq.com/openai/v1"},
		Gemini: config.GeminiConfig{ChatModel: "gemini-2.5-flash"},
	}

	gateway, err := NewCompletionGateway(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "llama-3.1-70b-versatile", gateway.Model())

	cfg.Chat.Provider = config.ProviderGemini
	gateway, err = NewCompletionGateway(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", gateway.Model())

	cfg.Chat.Provider = "other"
	_, err = NewCompletionGateway(ctx, cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewPassageIndexWithoutQdrant(t *testing.T) {
	index, err := NewPassageIndex(context.Background(), &config.Config{}, zap.NewNop())
	require.NoError(t, err)

	_, err = index.Search(context.Background(), uuid.Nil, "q", 1)
	assert.ErrorIs(t, err, ErrSearchDisabled)
}
