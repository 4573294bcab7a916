package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/candidate-assistant/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// ConversationStore is the ordered transcript of one session. Messages are
// appended and never edited; only their status moves forward.
type ConversationStore interface {
	Append(ctx context.Context, msg *models.Message) error
	All(ctx context.Context) ([]models.Message, error)
	SetStatus(ctx context.Context, id uuid.UUID, status models.MessageStatus) error
	Clear(ctx context.Context) error
}

// ConversationStoreFactory returns an empty store for a new session.
type ConversationStoreFactory func(sessionID uuid.UUID) ConversationStore

type memoryConversationStore struct {
	mu        sync.RWMutex
	sessionID uuid.UUID
	messages  []models.Message
}

func NewMemoryConversationStore(sessionID uuid.UUID) ConversationStore {
	return &memoryConversationStore{sessionID: sessionID}
}

// Append implements ConversationStore.
func (s *memoryConversationStore) Append(ctx context.Context, msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepareMessage(msg, s.sessionID, len(s.messages))
	s.messages = append(s.messages, *msg)

	return nil
}

// All implements ConversationStore.
func (s *memoryConversationStore) All(ctx context.Context) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out, nil
}

// SetStatus implements ConversationStore.
func (s *memoryConversationStore) SetStatus(ctx context.Context, id uuid.UUID, status models.MessageStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Status = status
			s.messages[i].UpdatedAt = time.Now()
			return nil
		}
	}

	return fmt.Errorf("failed to update status of %s: %w", id, ErrMessageNotFound)
}

// Clear implements ConversationStore.
func (s *memoryConversationStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	return nil
}

func prepareMessage(msg *models.Message, sessionID uuid.UUID, seq int) {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.Status == "" {
		msg.Status = models.StatusPending
	}
	now := time.Now()
	msg.SessionID = sessionID
	msg.Seq = seq
	msg.CreatedAt = now
	msg.UpdatedAt = now
}
