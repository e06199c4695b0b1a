package agents

import (
	"context"
	"fmt"

	sqlbot "github.com/kochurovskyi/sqlbot"
)

// OffTopicAgent emits a fixed-shape, deterministic response with no tools
// and no LLM call: the routing decision already determined the message
// isn't an analytics request, so there's nothing left to reason about.
type OffTopicAgent struct {
	tableName string
}

// NewOffTopicAgent constructs the Off-Topic agent. tableName is named in
// the fixed response's opening sentence.
func NewOffTopicAgent(tableName string) *OffTopicAgent {
	return &OffTopicAgent{tableName: tableName}
}

func (a *OffTopicAgent) Name() string { return "off-topic" }

func (a *OffTopicAgent) Description() string {
	return "Responds to non-analytics messages with a fixed, specialization-stating reply"
}

func (a *OffTopicAgent) Execute(_ context.Context, _ sqlbot.AgentTask) (sqlbot.AgentResult, error) {
	return sqlbot.AgentResult{Output: a.response()}, nil
}

func (a *OffTopicAgent) response() string {
	return fmt.Sprintf(`Thanks for reaching out! I'm specialized in answering questions about your %s data rather than general conversation. Here are a few things I can help with:

- "How many apps do we have?"
- "What's total revenue by platform?"
- "Export this as a CSV"
- "What SQL did you use for that last query?"

Ask me something about your data and I'll dig in.`, a.tableName)
}

var _ sqlbot.Agent = (*OffTopicAgent)(nil)
