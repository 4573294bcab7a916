package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/candidate-assistant/internal/models"
)

type gormConversationStore struct {
	db        *gorm.DB
	sessionID uuid.UUID
}

func NewGormConversationStore(db *gorm.DB, sessionID uuid.UUID) ConversationStore {
	return &gormConversationStore{db: db, sessionID: sessionID}
}

// NewGormConversationStoreFactory binds a database handle for per-session stores.
func NewGormConversationStoreFactory(db *gorm.DB) ConversationStoreFactory {
	return func(sessionID uuid.UUID) ConversationStore {
		return NewGormConversationStore(db, sessionID)
	}
}

// Append implements ConversationStore.
func (s *gormConversationStore) Append(ctx context.Context, msg *models.Message) error {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("session_id = ?", s.sessionID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}

	prepareMessage(msg, s.sessionID, int(count))

	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// All implements ConversationStore.
func (s *gormConversationStore) All(ctx context.Context) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("session_id = ?", s.sessionID).
		Order("seq ASC").
		Find(&msgs).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}

	return msgs, nil
}

// SetStatus implements ConversationStore.
func (s *gormConversationStore) SetStatus(ctx context.Context, id uuid.UUID, status models.MessageStatus) error {
	result := s.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND session_id = ?", id, s.sessionID).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update status: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update status of %s: %w", id, ErrMessageNotFound)
	}

	return nil
}

// Clear implements ConversationStore.
func (s *gormConversationStore) Clear(ctx context.Context) error {
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", s.sessionID).
		Delete(&models.Message{}).Error; err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}

	return nil
}
