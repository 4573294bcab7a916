package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-assistant/internal/models"
)

// groqGateway talks to Groq through its OpenAI-compatible endpoint.
type groqGateway struct {
	llm       llms.Model
	modelName string
	logger    *zap.Logger
}

func NewGroqGateway(apiKey, baseURL, model string, logger *zap.Logger) (CompletionGateway, error) {
	g := &groqGateway{modelName: model, logger: logger}

	if strings.TrimSpace(apiKey) == "" {
		return g, nil
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create groq client: %w", err)
	}

	g.llm = llm
	return g, nil
}

// Complete implements CompletionGateway.
func (g *groqGateway) Complete(ctx context.Context, systemInstruction string, history []models.Message, onChunk ChunkHandler) (string, error) {
	if g.llm == nil {
		return "", fmt.Errorf("groq: %w", ErrMissingAPIKey)
	}

	content := make([]llms.MessageContent, 0, len(history)+1)
	content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, systemInstruction))
	for _, msg := range history {
		role := llms.ChatMessageTypeHuman
		if msg.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, msg.Content))
	}

	acc := &streamAccumulator{onChunk: onChunk}
	_, err := g.llm.GenerateContent(ctx, content,
		llms.WithModel(g.modelName),
		llms.WithTemperature(CompletionTemperature),
		llms.WithTopP(CompletionTopP),
		llms.WithMaxTokens(CompletionMaxTokens),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			acc.add(string(chunk))
			return nil
		}),
	)
	if err != nil {
		return "", fmt.Errorf("failed to stream groq completion: %w", err)
	}

	g.logger.Debug("groq completion finished",
		zap.String("model", g.modelName),
		zap.Int("history", len(history)),
		zap.Int("chars", len(acc.text)),
	)

	return acc.String(), nil
}

func (g *groqGateway) Model() string {
	return g.modelName
}
