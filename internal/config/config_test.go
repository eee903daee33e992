package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(oracleProviderEnv, "")
	t.Setenv(openRouterAPIKeyEnv, "")

	cfg := Load()
	assert.Equal(t, "openrouter", cfg.Oracle.Provider)
	assert.Equal(t, 30*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 1, cfg.Oracle.Concurrency)
	assert.Equal(t, -0.2, cfg.Analysis.SentimentCeiling)
	assert.Equal(t, 20, cfg.Analysis.MinTextLength)
	assert.Equal(t, 10, cfg.Analysis.TopK)
	assert.Equal(t, 1, cfg.Analysis.MinNGram)
	assert.Equal(t, 3, cfg.Analysis.MaxNGram)
	assert.Equal(t, "hashing", cfg.Embedding.Provider)
	assert.False(t, cfg.Notifications.Telegram.Enabled())
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: warn
taxonomy:
  path: stages.yaml
oracle:
  provider: openai
  model: gpt-4o-mini
  timeout: 5s
  requestsPerSecond: 2
  concurrency: 4
analysis:
  topK: 5
storage:
  database:
    driver: sqlite
    dsn: radar.db
`), 0o644))

	t.Setenv(configPathEnv, path)
	t.Setenv(openAIAPIKeyEnv, "sk-test")
	t.Setenv(oracleModelEnv, "gpt-4.1")
	t.Setenv(telegramTokenEnv, "tok")
	t.Setenv(telegramChatIDEnv, "chat")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(oracleProviderEnv, "")
	t.Setenv(logLevelEnv, "")

	cfg := Load()
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "stages.yaml", cfg.Taxonomy.Path)
	assert.Equal(t, "openai", cfg.Oracle.Provider)
	assert.Equal(t, "gpt-4.1", cfg.Oracle.Model)
	assert.Equal(t, "sk-test", cfg.Oracle.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Oracle.Timeout)
	assert.Equal(t, 2.0, cfg.Oracle.RequestsPerSecond)
	assert.Equal(t, 4, cfg.Oracle.Concurrency)
	assert.Equal(t, 5, cfg.Analysis.TopK)
	assert.Equal(t, 3, cfg.Analysis.MaxNGram)
	assert.Equal(t, DatabaseConfig{Driver: "sqlite", DSN: "radar.db"}, cfg.Storage.Database)
	assert.True(t, cfg.Notifications.Telegram.Enabled())
}

func TestLoadIgnoresBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("oracle: [unterminated"), 0o644))
	t.Setenv(configPathEnv, path)
	t.Setenv(oracleProviderEnv, "")

	cfg := Load()
	assert.Equal(t, Default().Oracle.Provider, cfg.Oracle.Provider)
}

func TestDatabaseDSNEnvImpliesPostgres(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "postgres://u:p@localhost/radar")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.Storage.Database.Driver)
	assert.Equal(t, "postgres://u:p@localhost/radar", cfg.Storage.Database.DSN)
}
