// Package tools implements the six named tool-layer capabilities the
// specialized agents invoke: generate_sql, execute_sql, format_result,
// generate_csv, get_sql_history, get_cached_results. Tools are the only
// path by which an agent reaches a side effect.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	sqlbot "github.com/kochurovskyi/sqlbot"
	"github.com/kochurovskyi/sqlbot/internal/memory"
	"github.com/kochurovskyi/sqlbot/internal/sqldb"
	"github.com/kochurovskyi/sqlbot/internal/validator"
)

// SQLTool provides generate_sql, execute_sql, and format_result. The three
// tools share an execution session: execute_sql's result is held so
// format_result doesn't require the LLM to echo the full row set back as a
// tool argument, and so the agent wrapper can read back (sql, question,
// result) after the loop ends to satisfy the mandatory Query Record
// storage contract (§4.5.1).
type SQLTool struct {
	provider  sqlbot.Provider
	db        *sqldb.DB
	tableName string
	history   []sqlbot.ChatMessage

	lastQuestion string
	lastSQL      string
	lastResult   *memory.QueryResult
}

// NewSQLTool constructs a session-scoped tool set for one agent run.
// history is the recent conversation window the generator reasons over.
func NewSQLTool(provider sqlbot.Provider, db *sqldb.DB, tableName string, history []sqlbot.ChatMessage) *SQLTool {
	return &SQLTool{provider: provider, db: db, tableName: tableName, history: history}
}

func (t *SQLTool) Definitions() []sqlbot.ToolDefinition {
	return []sqlbot.ToolDefinition{
		{
			Name:        "generate_sql",
			Description: "Generate a single read-only SQL SELECT statement against the " + t.tableName + " table that answers the user's question. Returns the raw SQL with no markdown fencing.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"question": {
						"type": "string",
						"description": "The natural-language question to translate into SQL"
					}
				},
				"required": ["question"]
			}`),
		},
		{
			Name:        "execute_sql",
			Description: "Validate and execute a SQL statement against the read-only database. Returns row count, columns, and data, or an error if the statement was rejected or failed.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"sql": {
						"type": "string",
						"description": "The SQL statement to execute"
					}
				},
				"required": ["sql"]
			}`),
		},
		{
			Name:        "format_result",
			Description: "Format the most recently executed query's results into chat-ready text: a scalar, a markdown table, or a not-found message.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"question": {
						"type": "string",
						"description": "The original question, used to decide whether to append an assumptions note"
					}
				},
				"required": ["question"]
			}`),
		},
	}
}

func (t *SQLTool) Execute(ctx context.Context, name string, args json.RawMessage) (sqlbot.ToolResult, error) {
	switch name {
	case "generate_sql":
		return t.generateSQL(ctx, args)
	case "execute_sql":
		return t.executeSQL(ctx, args)
	case "format_result":
		return t.formatResult(ctx, args)
	default:
		return sqlbot.ToolResult{Error: "unknown tool: " + name}, nil
	}
}

// LastExecution reports the most recently executed (sql, question, result)
// for this session, if execute_sql ran at least once. Read by the agent
// wrapper to perform the authoritative Query Record store (§4.5.1).
func (t *SQLTool) LastExecution() (sql, question string, result *memory.QueryResult, ok bool) {
	if t.lastResult == nil {
		return "", "", nil, false
	}
	return t.lastSQL, t.lastQuestion, t.lastResult, true
}

type generateSQLArgs struct {
	Question string `json:"question"`
}

func (t *SQLTool) generateSQL(ctx context.Context, raw json.RawMessage) (sqlbot.ToolResult, error) {
	var args generateSQLArgs
	if err := json.Unmarshal(raw, &args); err != nil || strings.TrimSpace(args.Question) == "" {
		return sqlbot.ToolResult{Content: "ERROR: missing question argument"}, nil
	}
	t.lastQuestion = args.Question

	messages := make([]sqlbot.ChatMessage, 0, len(t.history)+2)
	messages = append(messages, sqlbot.SystemMessage(sqlGenerationPrompt(t.tableName)))
	messages = append(messages, t.history...)
	messages = append(messages, sqlbot.UserMessage(args.Question))

	resp, err := t.provider.Chat(ctx, sqlbot.ChatRequest{Messages: messages})
	if err != nil {
		return sqlbot.ToolResult{Content: "ERROR: " + err.Error()}, nil
	}

	sql := stripSQLFence(resp.Content)
	if sql == "" {
		return sqlbot.ToolResult{Content: "ERROR: generator produced no SQL"}, nil
	}
	return sqlbot.ToolResult{Content: sql}, nil
}

func sqlGenerationPrompt(tableName string) string {
	return "You translate natural-language analytics questions into a single read-only " +
		"PostgreSQL SELECT or WITH statement against the table `" + tableName + "`. " +
		"Respond with only the SQL statement, no markdown fencing, no explanation."
}

// stripSQLFence removes a ```sql ... ``` or ``` ... ``` fence if present.
func stripSQLFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "sql")
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

type executeSQLArgs struct {
	SQL string `json:"sql"`
}

func (t *SQLTool) executeSQL(ctx context.Context, raw json.RawMessage) (sqlbot.ToolResult, error) {
	var args executeSQLArgs
	if err := json.Unmarshal(raw, &args); err != nil || strings.TrimSpace(args.SQL) == "" {
		return sqlbot.ToolResult{Error: "missing sql argument"}, nil
	}
	t.lastSQL = args.SQL

	if r := validator.Validate(args.SQL, t.tableName); !r.Ok {
		slog.Warn("sql rejected by validator", "reason", r.Reason)
		result := &memory.QueryResult{Success: false, Error: r.Reason}
		t.lastResult = result
		return sqlbot.ToolResult{Content: resultSummaryJSON(result)}, nil
	}

	columns, rows, err := t.db.Query(ctx, args.SQL)
	if err != nil {
		result := &memory.QueryResult{Success: false, Error: err.Error()}
		t.lastResult = result
		return sqlbot.ToolResult{Content: resultSummaryJSON(result)}, nil
	}

	result := &memory.QueryResult{
		Success:  true,
		Data:     rows,
		RowCount: len(rows),
		Columns:  columns,
	}
	t.lastResult = result
	return sqlbot.ToolResult{Content: resultSummaryJSON(result)}, nil
}

func resultSummaryJSON(r *memory.QueryResult) string {
	b, _ := json.Marshal(struct {
		Success  bool     `json:"success"`
		RowCount int      `json:"row_count"`
		Columns  []string `json:"columns,omitempty"`
		Error    string   `json:"error,omitempty"`
	}{Success: r.Success, RowCount: r.RowCount, Columns: r.Columns, Error: r.Error})
	return string(b)
}

type formatResultArgs struct {
	Question string `json:"question"`
}

func (t *SQLTool) formatResult(_ context.Context, raw json.RawMessage) (sqlbot.ToolResult, error) {
	var args formatResultArgs
	_ = json.Unmarshal(raw, &args)
	question := args.Question
	if question == "" {
		question = t.lastQuestion
	}

	if t.lastResult == nil {
		return sqlbot.ToolResult{Content: "No results found."}, nil
	}
	if !t.lastResult.Success {
		return sqlbot.ToolResult{Content: fmt.Sprintf("The query could not be completed: %s", t.lastResult.Error)}, nil
	}

	text := FormatQueryResult(*t.lastResult, question, t.lastSQL)
	return sqlbot.ToolResult{Content: text}, nil
}
