// Package config loads the process configuration: defaults, then an
// optional TOML file, then environment variable overrides (env wins).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Database DatabaseConfig `toml:"database"`
	Table    TableConfig    `toml:"table"`
	Memory   MemoryConfig   `toml:"memory"`
	Agent    AgentConfig    `toml:"agent"`
	CSV      CSVConfig      `toml:"csv"`
}

// LLMConfig selects and authenticates the LLM provider used by every
// specialized agent.
type LLMConfig struct {
	Provider string `toml:"provider"` // "anthropic" or an openai-compatible name
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"` // endpoint override; openai-compat names fall back to a known default when empty
}

// DatabaseConfig is the read-only Postgres connection the SQL tools execute
// against.
type DatabaseConfig struct {
	DSN string `toml:"dsn"`
}

// TableConfig names the one table the validator requires every statement to
// reference.
type TableConfig struct {
	Name string `toml:"name"`
}

// MemoryConfig holds the Memory Store's bounds.
type MemoryConfig struct {
	MaxMessagesPerThread     int     `toml:"max_messages_per_thread"`
	MaxConversationTokens    int     `toml:"max_conversation_tokens"`
	CompressionTriggerRatio  float64 `toml:"compression_trigger_ratio"`
	KeepRecentMessages       int     `toml:"keep_recent_messages"`
	MaxQueriesPerThread      int     `toml:"max_queries_per_thread"`
	LockIdleSweepIntervalSec int     `toml:"lock_idle_sweep_interval_seconds"`
}

// AgentConfig bounds a single agent run.
type AgentConfig struct {
	StepLimit        int `toml:"step_limit"`
	MessageTimeoutSec int `toml:"message_timeout_seconds"`
}

// CSVConfig controls where generate_csv writes export files, using a
// per-request unique filename convention.
type CSVConfig struct {
	OutputDir string `toml:"output_dir"`
}

// Default returns a Config with every documented default applied.
func Default() Config {
	return Config{
		LLM: LLMConfig{Provider: "anthropic", Model: "claude-sonnet-4-5"},
		Table: TableConfig{Name: "app_portfolio"},
		Memory: MemoryConfig{
			MaxMessagesPerThread:     10,
			MaxConversationTokens:    4000,
			CompressionTriggerRatio:  0.8,
			KeepRecentMessages:       5,
			MaxQueriesPerThread:      10,
			LockIdleSweepIntervalSec: 600,
		},
		Agent: AgentConfig{
			StepLimit:         10,
			MessageTimeoutSec: 60,
		},
		CSV: CSVConfig{OutputDir: "."},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
// A missing or unparsable file is not an error; defaults simply stand.
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "sqlbot.toml"
	}
	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	if v := os.Getenv("SQLBOT_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("SQLBOT_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("SQLBOT_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("SQLBOT_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("SQLBOT_TABLE_NAME"); v != "" {
		cfg.Table.Name = v
	}

	return cfg
}
