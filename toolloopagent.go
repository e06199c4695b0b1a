package sqlbot

import (
	"context"
	"log/slog"
	"time"
)

// ToolLoopAgent is the generic Reasoning -> Tool -> Observation state
// machine every specialized tool-using agent is built from: the system
// prompt and history window become the initial turn, the LLM is invoked,
// and any requested tool calls are executed and fed back as observations
// until a final text answer or the step limit is reached.
type ToolLoopAgent struct {
	name        string
	description string
	provider    Provider
	registry    *ToolRegistry
	prompt      string
	maxIter     int
}

const defaultMaxIter = 10

// NewToolLoopAgent builds a tool-loop agent from the given provider and
// options (WithTools, WithPrompt, WithMaxIter).
func NewToolLoopAgent(name, description string, provider Provider, opts ...AgentOption) *ToolLoopAgent {
	cfg := buildConfig(opts)

	registry := NewToolRegistry()
	for _, t := range cfg.tools {
		registry.Add(t)
	}

	maxIter := cfg.maxIter
	if maxIter <= 0 {
		maxIter = defaultMaxIter
	}

	return &ToolLoopAgent{
		name:        name,
		description: description,
		provider:    provider,
		registry:    registry,
		prompt:      cfg.prompt,
		maxIter:     maxIter,
	}
}

func (a *ToolLoopAgent) Name() string        { return a.name }
func (a *ToolLoopAgent) Description() string { return a.description }

// Tools exposes the agent's registry so callers can assert tool-boundary
// invariants or inspect what was registered.
func (a *ToolLoopAgent) Tools() *ToolRegistry { return a.registry }

func (a *ToolLoopAgent) Execute(ctx context.Context, task AgentTask) (AgentResult, error) {
	messages := make([]ChatMessage, 0, len(task.History)+2)
	if a.prompt != "" {
		messages = append(messages, SystemMessage(a.prompt))
	}
	messages = append(messages, task.History...)
	messages = append(messages, UserMessage(task.Input))

	defs := a.registry.AllDefinitions()
	var usage Usage

	for step := 0; step < a.maxIter; step++ {
		if err := ctx.Err(); err != nil {
			return AgentResult{Usage: usage}, err
		}

		var resp ChatResponse
		var err error
		if len(defs) > 0 {
			resp, err = a.provider.ChatWithTools(ctx, ChatRequest{Messages: messages}, defs)
		} else {
			resp, err = a.provider.Chat(ctx, ChatRequest{Messages: messages})
		}
		if err != nil {
			return AgentResult{Usage: usage}, err
		}

		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens
		usage.CachedTokens += resp.Usage.CachedTokens

		if len(resp.ToolCalls) == 0 {
			return AgentResult{Output: resp.Content, Usage: usage}, nil
		}

		messages = append(messages, ChatMessage{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, call := range resp.ToolCalls {
			if err := ctx.Err(); err != nil {
				return AgentResult{Usage: usage}, err
			}

			start := time.Now()
			result, err := a.registry.Execute(ctx, call.Name, call.Args)
			errText := result.Error
			if err != nil {
				errText = err.Error()
			}
			slog.Debug("tool call",
				"thread_id", task.Context["thread_id"], "message_id", task.Context["message_id"],
				"agent", a.name, "tool", call.Name, "duration", time.Since(start), "error", errText)
			if err != nil {
				return AgentResult{Usage: usage}, err
			}

			observation := result.Content
			if result.Error != "" {
				observation = result.Error
			}
			messages = append(messages, ToolResultMessage(call.ID, observation))
		}
	}

	return AgentResult{
		Output: "I wasn't able to finish answering that within the allotted steps.",
		Usage:  usage,
	}, nil
}

var _ Agent = (*ToolLoopAgent)(nil)
