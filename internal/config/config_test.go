package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assistant.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("ASSISTANT_CONFIG_PATH", path)
}

const minimalConfig = `
confluence:
  base_url: https://example.atlassian.net/wiki
  username: bot@example.com
postgres:
  host: localhost
  user: assistant
  database: knowledge
  allowed_tables:
    - employees
bedrock:
  region: us-east-1
  model_id: anthropic.claude-3-5-sonnet-20240620-v1:0
`

func TestLoad_AppliesDefaults(t *testing.T) {
	writeConfig(t, minimalConfig)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
	if cfg.Postgres.Port != "5432" {
		t.Errorf("expected default port 5432, got %q", cfg.Postgres.Port)
	}
	if cfg.Limits.WikiResults != 5 {
		t.Errorf("expected default wiki results 5, got %d", cfg.Limits.WikiResults)
	}
	if cfg.Limits.TranslateMaxTokens != 100 {
		t.Errorf("expected default translate max tokens 100, got %d", cfg.Limits.TranslateMaxTokens)
	}
	if cfg.Limits.SynthesisMaxTokens != 500 {
		t.Errorf("expected default synthesis max tokens 500, got %d", cfg.Limits.SynthesisMaxTokens)
	}
	if cfg.Limits.RequestTimeout != 60*time.Second {
		t.Errorf("expected default request timeout 60s, got %s", cfg.Limits.RequestTimeout)
	}
	if cfg.Bedrock.MiniModelID != cfg.Bedrock.ModelID {
		t.Errorf("expected mini model to default to the main model, got %q", cfg.Bedrock.MiniModelID)
	}
	if len(cfg.Postgres.AllowedTables) != 1 || cfg.Postgres.AllowedTables[0] != "employees" {
		t.Errorf("unexpected allowed tables: %v", cfg.Postgres.AllowedTables)
	}
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	writeConfig(t, minimalConfig)
	t.Setenv("CONFLUENCE_API_TOKEN", "token-from-env")
	t.Setenv("POSTGRES_PASSWORD", "pw-from-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Confluence.APIToken != "token-from-env" {
		t.Errorf("expected confluence token from env, got %q", cfg.Confluence.APIToken)
	}
	if cfg.Postgres.Password != "pw-from-env" {
		t.Errorf("expected postgres password from env, got %q", cfg.Postgres.Password)
	}
}

func TestLoad_MissingRequiredField(t *testing.T) {
	writeConfig(t, `
postgres:
  host: localhost
  database: knowledge
bedrock:
  region: us-east-1
  model_id: some-model
`)

	if _, err := Load(); err == nil {
		t.Error("expected validation error for missing confluence.base_url")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("ASSISTANT_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	if _, err := Load(); err == nil {
		t.Error("expected error for missing config file")
	}
}
