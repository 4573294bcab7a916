package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-assistant/internal/repositories"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRegistry owns every live session. Sessions share no mutable state.
type SessionRegistry interface {
	Create(ctx context.Context) *Session
	Get(id uuid.UUID) (*Session, error)
	End(ctx context.Context, id uuid.UUID) error
	Sweep(ctx context.Context, now time.Time) int
	Len() int
}

type sessionRegistry struct {
	deps     SessionDeps
	newStore repositories.ConversationStoreFactory
	ttl      time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

func NewSessionRegistry(deps SessionDeps, newStore repositories.ConversationStoreFactory, ttl time.Duration) SessionRegistry {
	return &sessionRegistry{
		deps:     deps,
		newStore: newStore,
		ttl:      ttl,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create implements SessionRegistry.
func (r *sessionRegistry) Create(ctx context.Context) *Session {
	id := uuid.New()
	session := NewSession(id, r.newStore(id), r.deps)

	r.mu.Lock()
	r.sessions[id] = session
	r.mu.Unlock()

	r.deps.Logger.Info("🆕 Session created", zap.String("session_id", id.String()))
	return session
}

// Get implements SessionRegistry.
func (r *sessionRegistry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// End implements SessionRegistry.
func (r *sessionRegistry) End(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	r.deps.Logger.Info("🛑 Session ended", zap.String("session_id", id.String()))
	return session.End(ctx)
}

// Sweep implements SessionRegistry. It ends sessions idle for longer than the
// TTL and reports how many were ended.
func (r *sessionRegistry) Sweep(ctx context.Context, now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.RLock()
	var expired []uuid.UUID
	for id, session := range r.sessions {
		if now.Sub(session.LastActive()) > r.ttl {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	ended := 0
	for _, id := range expired {
		err := r.End(ctx, id)
		if errors.Is(err, ErrSessionNotFound) {
			continue
		}
		if err != nil {
			r.deps.Logger.Warn("⚠️ Failed to clean up expired session",
				zap.String("session_id", id.String()),
				zap.Error(err),
			)
		}
		ended++
	}

	return ended
}

// Len implements SessionRegistry.
func (r *sessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
