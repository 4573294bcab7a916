package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-assistant/internal/models"
	"alfredoptarigan/candidate-assistant/internal/repositories"
	"alfredoptarigan/candidate-assistant/internal/services"
)

func newChatSession() *services.Session {
	id := uuid.New()
	return services.NewSession(id, repositories.NewMemoryConversationStore(id), services.SessionDeps{
		Extractor: services.NewDocumentExtractor(),
		Prompts:   services.NewPromptBuilder(),
		Index:     services.NewNoopPassageIndex(),
		Logger:    zap.NewNop(),
	})
}

func setDocumentPaths(t *testing.T, paths map[models.DocumentKind]string) {
	t.Helper()

	for _, kind := range models.DocumentKinds {
		previous := *documentPaths[kind]
		*documentPaths[kind] = paths[kind]
		t.Cleanup(func() { *documentPaths[kind] = previous })
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDocumentsSkipsUnreadableOptionalFile(t *testing.T) {
	setDocumentPaths(t, map[models.DocumentKind]string{
		models.KindCV:        writeFile(t, "cv.txt", "Backend engineer, eight years of Go."),
		models.KindInterests: filepath.Join(t.TempDir(), "missing.txt"),
	})

	session := newChatSession()
	var errOut bytes.Buffer

	require.NoError(t, loadDocuments(context.Background(), session, &errOut))
	assert.Equal(t, models.StateReady, session.State())
	assert.Contains(t, errOut.String(), "Personal interests")
	assert.Contains(t, session.SystemInstruction(), "Personal interests:\n"+services.NoInfoPlaceholder)
}

func TestLoadDocumentsFailsOnUnreadableCV(t *testing.T) {
	setDocumentPaths(t, map[models.DocumentKind]string{
		models.KindCV: filepath.Join(t.TempDir(), "missing.pdf"),
	})

	session := newChatSession()
	var errOut bytes.Buffer

	err := loadDocuments(context.Background(), session, &errOut)
	assert.ErrorContains(t, err, "read CV")
	assert.Equal(t, models.StateAwaitingCV, session.State())
}

func TestLoadDocumentsReportsBadOptionalExtraction(t *testing.T) {
	setDocumentPaths(t, map[models.DocumentKind]string{
		models.KindCV:             writeFile(t, "cv.txt", "cv"),
		models.KindJobDescription: writeFile(t, "job.docx", "not a zip"),
	})

	session := newChatSession()
	var errOut bytes.Buffer

	require.NoError(t, loadDocuments(context.Background(), session, &errOut))
	assert.Contains(t, errOut.String(), "Job description")
	assert.Len(t, session.Documents(), 1)
}
