package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the engine. Values come from
// config.yaml with environment variable overrides; environment variables
// always win. Secrets (API keys) come only from the environment.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// LLM provider configuration
	LLM LLMConfig `yaml:"llm"`

	// Schema context configuration
	Schema SchemaConfig `yaml:"schema"`
}

// DatabaseConfig selects the SUS database to query.
type DatabaseConfig struct {
	// Type is the datasource dialect: sqlite, postgres or sqlserver.
	Type string `yaml:"type" env:"DB_TYPE" env-default:"sqlite"`
	// DSN is the connection string. For sqlite this is the file path.
	DSN string `yaml:"dsn" env:"DB_DSN" env-default:"./data/sus_database.db"`
	// MigrationsPath points at the demo-data migration files. Only applied
	// for sqlite.
	MigrationsPath string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH" env-default:"./migrations"`
}

// LLMConfig selects the model backing the SQL agent.
type LLMConfig struct {
	// Provider is "ollama", "openai" or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"ollama"`
	// Endpoint is the API base URL. Ollama serves an OpenAI-compatible
	// API under /v1.
	Endpoint string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:"http://localhost:11434/v1"`
	Model    string `yaml:"model" env:"LLM_MODEL" env-default:"qwen2.5:7b"`
	APIKey   string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML
}

// SchemaConfig selects the table described to the agent.
type SchemaConfig struct {
	Table string `yaml:"table" env:"SCHEMA_TABLE" env-default:"sus_data"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.Type == "" {
		return fmt.Errorf("database.type is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	return nil
}
