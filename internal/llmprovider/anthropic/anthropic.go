// Package anthropic implements sqlbot.Provider against the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	sqlbot "github.com/kochurovskyi/sqlbot"
)

const defaultMaxTokens int64 = 1024

// Provider implements sqlbot.Provider against the Anthropic Messages API.
type Provider struct {
	sdk       anthropic.Client
	model     string
	maxTokens int64
	name      string
}

// New constructs an Anthropic provider. An empty model falls back to
// Claude 3.7 Sonnet (latest); baseURL overrides the default Anthropic endpoint (useful for a gateway or
// proxy) when non-empty.
func New(apiKey, model, baseURL string, httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(apiKey)),
		option.WithHTTPClient(httpClient),
	}
	if base := strings.TrimSpace(baseURL); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}

	m := strings.TrimSpace(model)
	if m == "" {
		m = string(anthropic.ModelClaude3_7SonnetLatest)
	}

	return &Provider{
		sdk:       anthropic.NewClient(opts...),
		model:     m,
		maxTokens: defaultMaxTokens,
		name:      "anthropic",
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.name }

// Chat sends a non-streaming request without tool definitions.
func (p *Provider) Chat(ctx context.Context, req sqlbot.ChatRequest) (sqlbot.ChatResponse, error) {
	return p.ChatWithTools(ctx, req, nil)
}

// ChatWithTools sends a non-streaming request with tool definitions; the
// response may carry tool-call proposals instead of (or alongside) final
// text.
func (p *Provider) ChatWithTools(ctx context.Context, req sqlbot.ChatRequest, tools []sqlbot.ToolDefinition) (sqlbot.ChatResponse, error) {
	sys, messages, err := adaptMessages(req.Messages)
	if err != nil {
		return sqlbot.ChatResponse{}, &sqlbot.ErrLLM{Provider: p.name, Message: err.Error()}
	}
	toolDefs, err := adaptTools(tools)
	if err != nil {
		return sqlbot.ChatResponse{}, &sqlbot.ErrLLM{Provider: p.name, Message: err.Error()}
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		Messages:  messages,
		System:    sys,
		Tools:     toolDefs,
		MaxTokens: p.maxTokens,
	}

	resp, err := p.sdk.Messages.New(ctx, params)
	if err != nil {
		return sqlbot.ChatResponse{}, &sqlbot.ErrLLM{Provider: p.name, Message: fmt.Sprintf("messages.new: %v", err)}
	}

	return responseFromMessage(resp), nil
}

func adaptTools(tools []sqlbot.ToolDefinition) ([]anthropic.ToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	out := make([]anthropic.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, fmt.Errorf("tool name required")
		}

		var parsed map[string]any
		if len(t.Parameters) > 0 {
			if err := json.Unmarshal(t.Parameters, &parsed); err != nil {
				return nil, fmt.Errorf("invalid parameters for tool %s: %w", name, err)
			}
		}

		schema := anthropic.ToolInputSchemaParam{Type: constant.ValueOf[constant.Object]()}
		if props, ok := parsed["properties"]; ok {
			schema.Properties = props
		}
		if req, ok := parsed["required"].([]any); ok {
			for _, item := range req {
				if s, ok := item.(string); ok {
					schema.Required = append(schema.Required, s)
				}
			}
		}

		param := anthropic.ToolParam{Name: name, InputSchema: schema}
		if desc := strings.TrimSpace(t.Description); desc != "" {
			param.Description = anthropic.String(desc)
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &param})
	}
	return out, nil
}

func adaptMessages(msgs []sqlbot.ChatMessage) ([]anthropic.TextBlockParam, []anthropic.MessageParam, error) {
	var system []anthropic.TextBlockParam
	out := make([]anthropic.MessageParam, 0, len(msgs))
	toolResultCount := 0

	for _, m := range msgs {
		switch m.Role {
		case "system":
			if strings.TrimSpace(m.Content) != "" {
				system = append(system, anthropic.TextBlockParam{Text: m.Content})
			}
		case "user":
			if strings.TrimSpace(m.Content) != "" {
				out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
			}
		case "assistant":
			var blocks []anthropic.ContentBlockParamUnion
			if strings.TrimSpace(m.Content) != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for i, tc := range m.ToolCalls {
				id := strings.TrimSpace(tc.ID)
				if id == "" {
					id = fmt.Sprintf("call-%d", i+1)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(id, decodeArgs(tc.Args), tc.Name))
			}
			if len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case "tool":
			id := strings.TrimSpace(m.ToolCallID)
			if id == "" {
				toolResultCount++
				id = fmt.Sprintf("tool-result-%d", toolResultCount)
			}
			out = append(out, anthropic.NewUserMessage(anthropic.NewToolResultBlock(id, m.Content, false)))
		default:
			return nil, nil, fmt.Errorf("unsupported role for anthropic provider: %s", m.Role)
		}
	}
	return system, out, nil
}

func decodeArgs(raw json.RawMessage) any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err == nil {
		return m
	}
	return map[string]any{}
}

func responseFromMessage(resp *anthropic.Message) sqlbot.ChatResponse {
	if resp == nil {
		return sqlbot.ChatResponse{}
	}
	var sb strings.Builder
	var calls []sqlbot.ToolCall
	callIdx := 0

	for _, block := range resp.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			sb.WriteString(v.Text)
		case anthropic.ToolUseBlock:
			callIdx++
			id := strings.TrimSpace(v.ID)
			if id == "" {
				id = fmt.Sprintf("call-%d", callIdx)
			}
			args := json.RawMessage(v.Input)
			if len(args) == 0 {
				args = json.RawMessage("{}")
			}
			calls = append(calls, sqlbot.ToolCall{ID: id, Name: v.Name, Args: args})
		}
	}

	return sqlbot.ChatResponse{
		Content:   sb.String(),
		ToolCalls: calls,
		Usage: sqlbot.Usage{
			InputTokens:  int(resp.Usage.InputTokens + resp.Usage.CacheCreationInputTokens + resp.Usage.CacheReadInputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
			CachedTokens: int(resp.Usage.CacheReadInputTokens),
		},
	}
}

var _ sqlbot.Provider = (*Provider)(nil)
