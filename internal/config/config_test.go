package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHAT_PROVIDER", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("MAX_FILE_SIZE", "")
	t.Setenv("SESSION_TTL", "")

	cfg := Load()

	assert.Equal(t, ProviderGroq, cfg.Chat.Provider)
	assert.Equal(t, "llama-3.1-70b-versatile", cfg.Groq.Model)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, int64(10485760), cfg.Storage.MaxFileSize)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CHAT_PROVIDER", "Gemini")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("MAX_FILE_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, ProviderGemini, cfg.Chat.Provider)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.Equal(t, int64(10485760), cfg.Storage.MaxFileSize)
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := &Config{
		Chat:    ChatConfig{Provider: "openai"},
		Store:   StoreConfig{Backend: BackendMemory},
		Storage: StorageConfig{MaxFileSize: 1},
	}
	assert.Error(t, cfg.Validate())

	cfg.Chat.Provider = ProviderGroq
	cfg.Store.Backend = "redis"
	assert.Error(t, cfg.Validate())
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: "5433", User: "u", Password: "p", DBName: "n",
	}}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
}
