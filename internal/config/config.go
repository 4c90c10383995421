package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete assistant configuration, loaded once at startup.
type Config struct {
	Confluence ConfluenceConfig `yaml:"confluence"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Bedrock    BedrockConfig    `yaml:"bedrock"`
	Policy     PolicyConfig     `yaml:"policy"`
	Limits     LimitsConfig     `yaml:"limits"`
	LogLevel   string           `yaml:"log_level"`
}

type ConfluenceConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	APIToken string `yaml:"api_token"`
}

type PostgresConfig struct {
	Host          string   `yaml:"host"`
	Port          string   `yaml:"port"`
	User          string   `yaml:"user"`
	Password      string   `yaml:"password"`
	Database      string   `yaml:"database"`
	SSLMode       string   `yaml:"ssl_mode"`
	AllowedTables []string `yaml:"allowed_tables"`
}

type BedrockConfig struct {
	Region      string `yaml:"region"`
	ModelID     string `yaml:"model_id"`
	MiniModelID string `yaml:"mini_model_id"`
}

// PolicyConfig holds the blocked-pattern list. The defaults ship in the
// policy package; patterns listed here are appended so operators can extend
// the set without a code change.
type PolicyConfig struct {
	BlockedPatterns []string `yaml:"blocked_patterns"`
}

type LimitsConfig struct {
	WikiResults          int    `yaml:"wiki_results"`
	TranslateMaxTokens   int    `yaml:"translate_max_tokens"`
	SynthesisMaxTokens   int    `yaml:"synthesis_max_tokens"`
	RequestTimeoutRaw    string `yaml:"request_timeout"`
	ConfluenceTimeoutRaw string `yaml:"confluence_timeout"`
	MaxIdleConns         int    `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost  int    `yaml:"max_idle_conns_per_host"`

	// Parsed from the raw duration strings during Load.
	RequestTimeout    time.Duration `yaml:"-"`
	ConfluenceTimeout time.Duration `yaml:"-"`
}

// Load reads the YAML config file, applies environment overrides for
// secrets, fills defaults and validates.
func Load() (*Config, error) {
	path := os.Getenv("ASSISTANT_CONFIG_PATH")
	if path == "" {
		path = "configs/assistant.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Secrets are taken from the environment when present so the YAML file can
// stay free of credentials.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONFLUENCE_API_TOKEN"); v != "" {
		cfg.Confluence.APIToken = v
	}
	if v := os.Getenv("CONFLUENCE_USERNAME"); v != "" {
		cfg.Confluence.Username = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Bedrock.Region = v
	}
	if v := os.Getenv("CLAUDE_MODEL_ID"); v != "" {
		cfg.Bedrock.ModelID = v
	}
	if v := os.Getenv("CLAUDE_MINI_MODEL_ID"); v != "" {
		cfg.Bedrock.MiniModelID = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Postgres.Port == "" {
		cfg.Postgres.Port = "5432"
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}
	if cfg.Bedrock.MiniModelID == "" {
		cfg.Bedrock.MiniModelID = cfg.Bedrock.ModelID
	}
	if cfg.Limits.WikiResults == 0 {
		cfg.Limits.WikiResults = 5
	}
	if cfg.Limits.TranslateMaxTokens == 0 {
		cfg.Limits.TranslateMaxTokens = 100
	}
	if cfg.Limits.SynthesisMaxTokens == 0 {
		cfg.Limits.SynthesisMaxTokens = 500
	}
	cfg.Limits.RequestTimeout = parseDuration(cfg.Limits.RequestTimeoutRaw, 60*time.Second)
	cfg.Limits.ConfluenceTimeout = parseDuration(cfg.Limits.ConfluenceTimeoutRaw, 10*time.Second)
	if cfg.Limits.MaxIdleConns == 0 {
		cfg.Limits.MaxIdleConns = 100
	}
	if cfg.Limits.MaxIdleConnsPerHost == 0 {
		cfg.Limits.MaxIdleConnsPerHost = 10
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c *Config) Validate() error {
	if c.Confluence.BaseURL == "" {
		return fmt.Errorf("confluence.base_url is required")
	}
	if c.Postgres.Host == "" {
		return fmt.Errorf("postgres.host is required")
	}
	if c.Postgres.Database == "" {
		return fmt.Errorf("postgres.database is required")
	}
	if c.Bedrock.Region == "" {
		return fmt.Errorf("bedrock.region is required (or set AWS_REGION)")
	}
	if c.Bedrock.ModelID == "" {
		return fmt.Errorf("bedrock.model_id is required (or set CLAUDE_MODEL_ID)")
	}
	return nil
}
