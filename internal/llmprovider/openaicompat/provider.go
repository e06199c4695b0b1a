package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	sqlbot "github.com/kochurovskyi/sqlbot"
)

// Provider implements sqlbot.Provider for any OpenAI-compatible API. It
// uses the shared helpers in this package (BuildBody, ParseResponse) to
// handle body building and response parsing.
//
// Works with OpenAI, OpenRouter, Groq, Together, Fireworks, DeepSeek,
// Mistral, Ollama, vLLM, LM Studio, Azure OpenAI, and any other provider
// that implements the OpenAI chat completions API.
type Provider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	name    string
}

// NewProvider creates an OpenAI-compatible chat provider.
//
// baseURL is the API base (e.g. "https://api.openai.com/v1",
// "https://api.groq.com/openai/v1", "http://localhost:11434/v1"). The
// /chat/completions path is appended automatically.
func NewProvider(apiKey, model, baseURL string, opts ...ProviderOption) *Provider {
	p := &Provider{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{},
		name:    "openai",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name (default "openai", configurable via
// WithName).
func (p *Provider) Name() string { return p.name }

// Chat sends a non-streaming chat request without tool definitions.
func (p *Provider) Chat(ctx context.Context, req sqlbot.ChatRequest) (sqlbot.ChatResponse, error) {
	return p.ChatWithTools(ctx, req, nil)
}

// ChatWithTools sends a non-streaming chat request and returns the
// complete response. When tools is non-empty, the response may carry
// ToolCalls instead of (or alongside) final text.
func (p *Provider) ChatWithTools(ctx context.Context, req sqlbot.ChatRequest, tools []sqlbot.ToolDefinition) (sqlbot.ChatResponse, error) {
	body := BuildBody(req.Messages, tools, p.model, req.ResponseSchema)
	return p.doRequest(ctx, body)
}

// doRequest sends a non-streaming request and parses the response.
func (p *Provider) doRequest(ctx context.Context, body ChatRequest) (sqlbot.ChatResponse, error) {
	resp, err := p.sendHTTP(ctx, body)
	if err != nil {
		return sqlbot.ChatResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return sqlbot.ChatResponse{}, p.httpErr(resp)
	}

	var chatResp ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return sqlbot.ChatResponse{}, &sqlbot.ErrLLM{Provider: p.name, Message: fmt.Sprintf("decode response: %v", err)}
	}

	return ParseResponse(chatResp)
}

// sendHTTP marshals the request body and sends it to the chat completions
// endpoint.
func (p *Provider) sendHTTP(ctx context.Context, body ChatRequest) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &sqlbot.ErrLLM{Provider: p.name, Message: fmt.Sprintf("marshal request: %v", err)}
	}

	url := p.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &sqlbot.ErrLLM{Provider: p.name, Message: fmt.Sprintf("create request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	return p.client.Do(httpReq)
}

// httpErr reads the response body and returns an ErrHTTP for retry
// middleware. Parses the Retry-After header when present (429/503
// responses).
func (p *Provider) httpErr(resp *http.Response) error {
	respBody, _ := io.ReadAll(resp.Body)
	return &sqlbot.ErrHTTP{
		Status:     resp.StatusCode,
		Body:       string(respBody),
		RetryAfter: sqlbot.ParseRetryAfter(resp.Header.Get("Retry-After")),
	}
}

var _ sqlbot.Provider = (*Provider)(nil)
