package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-triage/internal/config"
)

var envKeys = []string{
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "REDIRECT_URI",
	"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
	"FRONTEND_URL", "HTTP_ADDR", "REDIS_ADDR", "REDIS_PASSWORD",
	"SESSION_BACKEND", "LLM_CONCURRENCY",
}

// clearEnv unsets every variable Load reads and restores them after the test.
// godotenv never overrides a variable that is already present, even if empty.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("", "")
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, 1, cfg.LLM.Concurrency)
	assert.Equal(t, int64(10), cfg.Gmail.MaxResults)
	assert.True(t, cfg.OAuth.ValidateState)
	assert.False(t, cfg.Mail.HTMLFallback)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:5174", "http://localhost:3000"}, cfg.HTTP.AllowedOrigins)
	assert.False(t, cfg.GoogleConfigured())
	assert.False(t, cfg.OpenAIConfigured())
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "config.yaml", `
log:
  development: true
oauth:
  validate_state: false
gmail:
  max_results: 25
  call_timeout: 5s
mail:
  html_fallback: true
llm:
  concurrency: 4
  call_timeout: 10s
session:
  backend: redis
  ttl: 24h
`)

	cfg, err := config.Load(path, "")
	require.NoError(t, err)

	assert.True(t, cfg.Log.Development)
	assert.False(t, cfg.OAuth.ValidateState)
	assert.Equal(t, int64(25), cfg.Gmail.MaxResults)
	assert.Equal(t, 5*time.Second, cfg.Gmail.CallTimeout)
	assert.True(t, cfg.Mail.HTMLFallback)
	assert.Equal(t, 4, cfg.LLM.Concurrency)
	assert.Equal(t, 10*time.Second, cfg.LLM.CallTimeout)
	assert.Equal(t, config.SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "gpt-3.5-turbo", cfg.LLM.Model, "unset keys keep defaults")
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)

	path := writeFile(t, "config.yaml", "llm:\n  model: from-yaml\n")
	envFile := writeFile(t, ".env", "GOOGLE_CLIENT_ID=env-file-id\nGOOGLE_CLIENT_SECRET=env-file-secret\n")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("FRONTEND_URL", "http://app.example.com")
	t.Setenv("LLM_CONCURRENCY", "3")

	cfg, err := config.Load(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, "env-file-id", cfg.Google.ClientID)
	assert.Equal(t, "env-file-secret", cfg.Google.ClientSecret)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "http://app.example.com", cfg.HTTP.FrontendURL)
	assert.Equal(t, 3, cfg.LLM.Concurrency)
	assert.True(t, cfg.GoogleConfigured())
	assert.True(t, cfg.OpenAIConfigured())
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad yaml", yaml: "llm: [unclosed"},
		{name: "unknown backend", env: map[string]string{"SESSION_BACKEND": "postgres"}},
		{name: "zero concurrency", yaml: "llm:\n  concurrency: 0\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			path := ""
			if tc.yaml != "" {
				path = writeFile(t, "config.yaml", tc.yaml)
			}

			_, err := config.Load(path, "")
			require.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		clearEnv(t)
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), "")
		require.Error(t, err)
	})
}
