package sqlbot

import "context"

// Provider abstracts the LLM backend. Agents never talk to a vendor SDK
// directly; they hold a Provider.
type Provider interface {
	// Chat sends a request and returns a complete response.
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	// ChatWithTools sends a request with tool definitions; the response may
	// carry tool-call proposals instead of (or alongside) final text.
	ChatWithTools(ctx context.Context, req ChatRequest, tools []ToolDefinition) (ChatResponse, error)
	// Name returns the provider name (e.g. "anthropic", "openai").
	Name() string
}
