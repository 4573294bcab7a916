package models

import "github.com/google/uuid"

type SessionState string

const (
	StateAwaitingCV         SessionState = "awaiting_cv"
	StateReady              SessionState = "ready"
	StateIdle               SessionState = "idle"
	StateAwaitingCompletion SessionState = "awaiting_completion"
)

// Turn is one user message plus its assistant reply.
type Turn struct {
	User      Message `json:"user"`
	Assistant Message `json:"assistant"`
}

type SessionResponse struct {
	ID        uuid.UUID          `json:"id"`
	State     SessionState       `json:"state"`
	Documents []UploadedDocument `json:"documents,omitempty"`
	Messages  []Message          `json:"messages,omitempty"`
}

type UploadResult struct {
	Kind     DocumentKind      `json:"kind"`
	Document *UploadedDocument `json:"document,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type UploadResponse struct {
	State     SessionState   `json:"state"`
	Documents []UploadResult `json:"documents"`
}

type ChatRequest struct {
	Content string `json:"content"`
}

type SearchResponse struct {
	Query    string    `json:"query"`
	Passages []Passage `json:"passages"`
}

type Passage struct {
	Kind  DocumentKind `json:"kind"`
	Text  string       `json:"text"`
	Score float32      `json:"score"`
}
