package services

import (
	"context"
	"errors"

	"alfredoptarigan/candidate-assistant/internal/models"
)

// Sampling parameters sent with every completion request.
const (
	CompletionTemperature = 0.5
	CompletionTopP        = 1.0
	CompletionMaxTokens   = 400
)

var ErrMissingAPIKey = errors.New("chat provider api key is not configured")

// ChunkHandler receives each non-empty stream increment in arrival order.
type ChunkHandler func(chunk string)

// CompletionGateway streams a reply to the system instruction plus history.
// The returned text is the concatenation of every chunk passed to onChunk.
type CompletionGateway interface {
	Complete(ctx context.Context, systemInstruction string, history []models.Message, onChunk ChunkHandler) (string, error)
	Model() string
}

// streamAccumulator concatenates increments and forwards the non-empty ones.
type streamAccumulator struct {
	text    []byte
	onChunk ChunkHandler
}

func (a *streamAccumulator) add(chunk string) {
	if chunk == "" {
		return
	}
	a.text = append(a.text, chunk...)
	if a.onChunk != nil {
		a.onChunk(chunk)
	}
}

func (a *streamAccumulator) String() string {
	return string(a.text)
}
