package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-assistant/internal/logger"
	"alfredoptarigan/candidate-assistant/internal/models"
	"alfredoptarigan/candidate-assistant/internal/repositories"
)

var (
	ErrCVRequired   = errors.New("the candidate's CV must be uploaded first")
	ErrEmptyInput   = errors.New("message content is required")
	ErrUnknownKind  = errors.New("unknown document kind")
	ErrSessionEnded = errors.New("session has ended")
	ErrEmptyCV      = errors.New("no text could be extracted from the CV")
)

// ExtractionError reports which document failed to extract.
type ExtractionError struct {
	Kind models.DocumentKind
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.Kind.Label(), e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// SessionDeps are the collaborators shared by every session.
type SessionDeps struct {
	Extractor DocumentExtractor
	Prompts   *PromptBuilder
	Gateway   CompletionGateway
	Index     PassageIndex
	Logger    *zap.Logger
}

// Session is one recruiter conversation. Every action holds the session lock
// for its full duration, so uploads and turns never interleave.
type Session struct {
	id    uuid.UUID
	deps  SessionDeps
	store repositories.ConversationStore

	mu        sync.Mutex
	state     models.SessionState
	documents map[models.DocumentKind]*models.UploadedDocument
	ended     bool

	activityMu   sync.Mutex
	lastActiveAt time.Time
}

func NewSession(id uuid.UUID, store repositories.ConversationStore, deps SessionDeps) *Session {
	return &Session{
		id:           id,
		deps:         deps,
		store:        store,
		state:        models.StateAwaitingCV,
		documents:    make(map[models.DocumentKind]*models.UploadedDocument),
		lastActiveAt: time.Now(),
	}
}

func (s *Session) ID() uuid.UUID {
	return s.id
}

func (s *Session) State() models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActive reports when the session last handled an action.
func (s *Session) LastActive() time.Time {
	s.activityMu.Lock()
	defer s.activityMu.Unlock()
	return s.lastActiveAt
}

func (s *Session) touch() {
	s.activityMu.Lock()
	s.lastActiveAt = time.Now()
	s.activityMu.Unlock()
}

// Documents returns the current documents in upload-field order.
func (s *Session) Documents() []models.UploadedDocument {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []models.UploadedDocument
	for _, kind := range models.DocumentKinds {
		if doc, ok := s.documents[kind]; ok {
			docs = append(docs, *doc)
		}
	}
	return docs
}

// SystemInstruction composes the instruction the next turn would send.
func (s *Session) SystemInstruction() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deps.Prompts.BuildFromDocuments(s.documents)
}

func (s *Session) Transcript(ctx context.Context) ([]models.Message, error) {
	return s.store.All(ctx)
}

// Upload extracts and stores a document. Only pdf, docx and txt files are
// accepted, and a CV must yield some text. On failure the previous document of
// that kind, if any, is kept.
func (s *Session) Upload(ctx context.Context, kind models.DocumentKind, filename string, data []byte) (*models.UploadedDocument, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.touch()

	if s.ended {
		return nil, ErrSessionEnded
	}

	declaredType := DeclaredType(filename)
	fail := func(err error) (*models.UploadedDocument, error) {
		s.deps.Logger.Warn("❌ Document extraction failed",
			zap.String("session_id", s.id.String()),
			zap.String("kind", string(kind)),
			zap.String("filename", filename),
			zap.Error(err),
		)
		return nil, &ExtractionError{Kind: kind, Err: err}
	}

	if !SupportedType(declaredType) {
		return fail(fmt.Errorf("%w: %q", ErrUnsupportedType, declaredType))
	}

	text, err := s.deps.Extractor.Extract(data, declaredType)
	if err != nil {
		return fail(err)
	}

	// The CV section must carry text; optional documents fall back to the placeholder.
	if kind == models.KindCV && strings.TrimSpace(text) == "" {
		return fail(ErrEmptyCV)
	}

	doc := &models.UploadedDocument{
		Kind:          kind,
		Filename:      filename,
		DeclaredType:  declaredType,
		Size:          int64(len(data)),
		ExtractedText: text,
		TextLength:    len([]rune(text)),
		UploadedAt:    time.Now(),
	}
	s.documents[kind] = doc

	if kind == models.KindCV && s.state == models.StateAwaitingCV {
		s.state = models.StateReady
	}

	s.deps.Logger.Info("📄 Document uploaded",
		zap.String("session_id", s.id.String()),
		zap.String("kind", string(kind)),
		zap.String("declared_type", declaredType),
		zap.Int("chars", doc.TextLength),
	)

	if err := s.deps.Index.Index(ctx, s.id, kind, text); err != nil {
		s.deps.Logger.Warn("⚠️ Failed to index passages",
			zap.String("session_id", s.id.String()),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}

	return doc, nil
}

// Ask runs one turn. The user message is stored as pending before the
// completion call and resolved to complete or failed afterwards.
func (s *Session) Ask(ctx context.Context, input string, onChunk ChunkHandler) (*models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.touch()

	if s.ended {
		return nil, ErrSessionEnded
	}
	if s.state == models.StateAwaitingCV {
		return nil, ErrCVRequired
	}
	if strings.TrimSpace(input) == "" {
		return nil, ErrEmptyInput
	}

	userMsg := &models.Message{
		Role:    models.RoleUser,
		Content: input,
		Status:  models.StatusPending,
	}
	if err := s.store.Append(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to store user message: %w", err)
	}

	prevState := s.state
	s.state = models.StateAwaitingCompletion

	turn, err := s.complete(ctx, userMsg, onChunk)
	if err != nil {
		s.state = prevState
		if statusErr := s.store.SetStatus(ctx, userMsg.ID, models.StatusFailed); statusErr != nil {
			s.deps.Logger.Error("❌ Failed to mark message as failed",
				zap.String("session_id", s.id.String()),
				zap.Error(statusErr),
			)
		}
		return nil, err
	}

	s.state = models.StateIdle
	return turn, nil
}

func (s *Session) complete(ctx context.Context, userMsg *models.Message, onChunk ChunkHandler) (*models.Turn, error) {
	systemInstruction := s.deps.Prompts.BuildFromDocuments(s.documents)

	history, err := s.history(ctx)
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("🤖 Requesting completion",
		zap.String("session_id", s.id.String()),
		zap.String("model", s.deps.Gateway.Model()),
		zap.Int("history", len(history)),
		zap.Int("system_chars", len(systemInstruction)),
		zap.String("question", logger.TruncateForLog(userMsg.Content, 80)),
	)

	reply, err := s.deps.Gateway.Complete(ctx, systemInstruction, history, onChunk)
	if err != nil {
		s.deps.Logger.Error("❌ Completion failed",
			zap.String("session_id", s.id.String()),
			zap.Error(err),
		)
		return nil, err
	}

	if err := s.store.SetStatus(ctx, userMsg.ID, models.StatusComplete); err != nil {
		return nil, fmt.Errorf("failed to complete user message: %w", err)
	}
	userMsg.Status = models.StatusComplete

	assistantMsg := &models.Message{
		Role:    models.RoleAssistant,
		Content: reply,
		Status:  models.StatusComplete,
	}
	if err := s.store.Append(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to store assistant message: %w", err)
	}

	s.deps.Logger.Info("✅ Completion received",
		zap.String("session_id", s.id.String()),
		zap.Int("chars", len(reply)),
	)

	return &models.Turn{User: *userMsg, Assistant: *assistantMsg}, nil
}

// history is the transcript sent to the gateway: failed turns are left out.
func (s *Session) history(ctx context.Context) ([]models.Message, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	history := make([]models.Message, 0, len(all))
	for _, msg := range all {
		if msg.Status == models.StatusFailed {
			continue
		}
		history = append(history, msg)
	}
	return history, nil
}

// End discards the transcript and indexed passages. It waits for any
// in-flight action to finish.
func (s *Session) End(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return nil
	}
	s.ended = true
	s.documents = make(map[models.DocumentKind]*models.UploadedDocument)

	var errs []error
	if err := s.store.Clear(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.deps.Index.DeleteSession(ctx, s.id); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
