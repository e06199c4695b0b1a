// Package llmprovider resolves a provider-agnostic configuration into a
// concrete sqlbot.Provider, so callers never import a vendor adapter
// package directly.
package llmprovider

import (
	"fmt"

	sqlbot "github.com/kochurovskyi/sqlbot"
	"github.com/kochurovskyi/sqlbot/internal/llmprovider/anthropic"
	"github.com/kochurovskyi/sqlbot/internal/llmprovider/openaicompat"
)

// Config holds provider-agnostic configuration for creating a chat
// Provider, mirroring internal/config's LLMConfig.
type Config struct {
	Provider string // "anthropic", or an openai-compatible name
	APIKey   string
	Model    string
	BaseURL  string // endpoint override for either adapter; auto-filled for known openai-compat providers
}

// Resolve creates a sqlbot.Provider from a provider-agnostic Config.
func Resolve(cfg Config) (sqlbot.Provider, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropic.New(cfg.APIKey, cfg.Model, cfg.BaseURL, nil), nil
	case "openai", "groq", "deepseek", "together", "mistral", "ollama":
		return openaiCompatProvider(cfg), nil
	default:
		return nil, fmt.Errorf("llmprovider: unknown provider %q", cfg.Provider)
	}
}

func openaiCompatProvider(cfg Config) sqlbot.Provider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL(cfg.Provider)
	}
	return openaicompat.NewProvider(cfg.APIKey, cfg.Model, baseURL, openaicompat.WithName(cfg.Provider))
}

func defaultBaseURL(provider string) string {
	switch provider {
	case "openai":
		return "https://api.openai.com/v1"
	case "groq":
		return "https://api.groq.com/openai/v1"
	case "deepseek":
		return "https://api.deepseek.com/v1"
	case "together":
		return "https://api.together.xyz/v1"
	case "mistral":
		return "https://api.mistral.ai/v1"
	case "ollama":
		return "http://localhost:11434/v1"
	default:
		return ""
	}
}
