package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	sqlbot "github.com/kochurovskyi/sqlbot"
	"github.com/kochurovskyi/sqlbot/internal/memory"
)

// HistoryTool provides get_sql_history, the SQL-Retrieval agent's sole
// tool.
type HistoryTool struct {
	store    *memory.Store
	threadID string
}

// NewHistoryTool constructs a session-scoped tool for one SQL-Retrieval
// agent run against threadID.
func NewHistoryTool(store *memory.Store, threadID string) *HistoryTool {
	return &HistoryTool{store: store, threadID: threadID}
}

func (t *HistoryTool) Definitions() []sqlbot.ToolDefinition {
	return []sqlbot.ToolDefinition{
		{
			Name:        "get_sql_history",
			Description: "Retrieve a previously executed SQL statement from this conversation, optionally matched by a description of the original question.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"description": {
						"type": "string",
						"description": "Fragment of the original question to match against; omit for the most recent statement"
					}
				}
			}`),
		},
	}
}

type getSQLHistoryArgs struct {
	Description string `json:"description"`
}

func (t *HistoryTool) Execute(_ context.Context, name string, raw json.RawMessage) (sqlbot.ToolResult, error) {
	if name != "get_sql_history" {
		return sqlbot.ToolResult{Error: "unknown tool: " + name}, nil
	}

	var args getSQLHistoryArgs
	_ = json.Unmarshal(raw, &args)

	record := t.store.FindSQLByDescription(t.threadID, args.Description)
	if record == nil {
		return sqlbot.ToolResult{Content: "not-found: no SQL history in this conversation"}, nil
	}
	slog.Debug("get_sql_history matched record", "thread_id", t.threadID, "question", record.Question, "timestamp", record.Timestamp)

	b, _ := json.Marshal(struct {
		SQL       string `json:"sql"`
		Question  string `json:"question"`
		Timestamp string `json:"timestamp"`
	}{SQL: record.SQL, Question: record.Question, Timestamp: record.Timestamp.Format("2006-01-02T15:04:05Z07:00")})
	return sqlbot.ToolResult{Content: string(b)}, nil
}
