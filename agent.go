package sqlbot

import "context"

// Agent is a bounded tool-loop executor: system prompt + history -> LLM ->
// tool calls -> observations -> re-invoke, until a final text answer or the
// step limit is reached.
type Agent interface {
	// Name returns the agent's identifier (used in log context).
	Name() string
	// Description returns a human-readable summary of what the agent does.
	Description() string
	// Execute runs the agent on the given task and returns a result.
	Execute(ctx context.Context, task AgentTask) (AgentResult, error)
}

// AgentTask is the input to an Agent.
type AgentTask struct {
	// Input is the user's message text.
	Input string
	// History is the relevant conversation window the agent should reason
	// over (e.g. the last few turns of a thread).
	History []ChatMessage
	// Context carries metadata threaded through the call for logging
	// correlation (thread_id, message_id) and tool access (thread_id is how
	// tools reach per-thread memory state).
	Context map[string]string
}

// AgentResult is the output of an Agent.
type AgentResult struct {
	// Output is the agent's final response text.
	Output string
	// Usage tracks aggregate token usage across all LLM calls in the run.
	Usage Usage
}

// agentConfig holds shared construction options for tool-loop agents.
type agentConfig struct {
	tools   []Tool
	prompt  string
	maxIter int
}

// AgentOption configures an Agent at construction time.
type AgentOption func(*agentConfig)

// WithTools adds tools to the agent's registry.
func WithTools(tools ...Tool) AgentOption {
	return func(c *agentConfig) { c.tools = append(c.tools, tools...) }
}

// WithPrompt sets the agent's fixed system prompt.
func WithPrompt(s string) AgentOption {
	return func(c *agentConfig) { c.prompt = s }
}

// WithMaxIter sets the maximum tool-calling iterations.
func WithMaxIter(n int) AgentOption {
	return func(c *agentConfig) { c.maxIter = n }
}

func buildConfig(opts []AgentOption) agentConfig {
	var c agentConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
