package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := LoadConfig(writeConfig(t, "server:\n  port: \"8080\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "json", cfg.Storage.Driver)
	assert.Equal(t, "./data/corpus.json", cfg.Storage.Path)
	assert.Equal(t, "nb", cfg.Model.Kind)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 50, cfg.Model.TopWords)
	assert.Equal(t, "off", cfg.Training.RetrainOnMutation)
	assert.True(t, cfg.InsecureSecret)
	assert.Equal(t, InsecureDefaultSecret, cfg.Auth.SecretKey)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("DATABASE_URL", "postgres://db/textorigin")
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := LoadConfig(writeConfig(t, `
storage:
  driver: postgres
notify:
  telegram_token: ${BOT_TOKEN}
training:
  retrain_on_mutation: debounced
  debounce: 2s
`))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.SecretKey)
	assert.False(t, cfg.InsecureSecret)
	assert.Equal(t, "$2a$10$abc", cfg.Auth.PasswordHash)
	assert.Equal(t, "postgres://db/textorigin", cfg.Storage.URL)
	assert.Equal(t, "123:abc", cfg.Notify.TelegramToken)
	assert.Equal(t, 2*time.Second, cfg.Training.Debounce)
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	tests := map[string]string{
		"driver":      "storage:\n  driver: cassandra\n",
		"missing url": "storage:\n  driver: mongo\n",
		"kind":        "model:\n  kind: gpt\n",
		"transformer": "model:\n  kind: transformer\n",
		"ngram":       "model:\n  ngram_min: 3\n  ngram_max: 2\n",
		"mode":        "training:\n  retrain_on_mutation: always\n",
		"denylist":    "auth:\n  denylist: redis\n",
		"yaml":        "server: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
