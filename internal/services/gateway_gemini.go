package services

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/candidate-assistant/internal/models"
)

type contentStreamer interface {
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

type geminiGateway struct {
	models    contentStreamer
	modelName string
	logger    *zap.Logger
}

// NewGeminiGateway returns a gateway whose calls fail with ErrMissingAPIKey
// when apiKey is empty.
func NewGeminiGateway(ctx context.Context, apiKey, model string, logger *zap.Logger) (CompletionGateway, error) {
	g := &geminiGateway{modelName: model, logger: logger}

	if strings.TrimSpace(apiKey) == "" {
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	g.models = client.Models
	return g, nil
}

// Complete implements CompletionGateway.
func (g *geminiGateway) Complete(ctx context.Context, systemInstruction string, history []models.Message, onChunk ChunkHandler) (string, error) {
	if g.models == nil {
		return "", fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.RoleUser
		if msg.Role == models.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}

	temperature := float32(CompletionTemperature)
	topP := float32(CompletionTopP)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
		Temperature:       &temperature,
		TopP:              &topP,
		MaxOutputTokens:   CompletionMaxTokens,
	}

	acc := &streamAccumulator{onChunk: onChunk}
	for resp, err := range g.models.GenerateContentStream(ctx, g.modelName, contents, config) {
		if err != nil {
			return "", fmt.Errorf("failed to stream gemini completion: %w", err)
		}
		if resp == nil {
			continue
		}
		acc.add(resp.Text())
	}

	g.logger.Debug("gemini completion finished",
		zap.String("model", g.modelName),
		zap.Int("history", len(history)),
		zap.Int("chars", len(acc.text)),
	)

	return acc.String(), nil
}

func (g *geminiGateway) Model() string {
	return g.modelName
}
