// Package agents implements the four specialized agents: SQL-Query,
// CSV-Export, SQL-Retrieval, and Off-Topic. Each owns a fixed system prompt
// and a tool subset, built fresh per run since the tool instances carry
// per-run session state (see DESIGN.md).
package agents

import (
	"context"

	sqlbot "github.com/kochurovskyi/sqlbot"
	"github.com/kochurovskyi/sqlbot/internal/memory"
	"github.com/kochurovskyi/sqlbot/internal/sqldb"
	"github.com/kochurovskyi/sqlbot/internal/tools"
)

const sqlQueryPrompt = `You are the SQL-Query agent for a conversational analytics bot over a single table.
Reason about the user's question and the last few turns of conversation history.
Call generate_sql to produce a SQL statement, then execute_sql to run it, then format_result
to render the result for chat. Return the formatted text as your final answer.
If generation or execution fails, explain the failure in plain language instead.`

// SQLQueryAgent executes the generate -> execute -> format trajectory and
// enforces the mandatory Query Record storage contract regardless of how
// the underlying tool loop's final text reads.
type SQLQueryAgent struct {
	provider  sqlbot.Provider
	db        *sqldb.DB
	store     *memory.Store
	tableName string
	maxIter   int
}

// NewSQLQueryAgent constructs the SQL-Query agent. maxIter is the
// configured AGENT_STEP_LIMIT.
func NewSQLQueryAgent(provider sqlbot.Provider, db *sqldb.DB, store *memory.Store, tableName string, maxIter int) *SQLQueryAgent {
	return &SQLQueryAgent{provider: provider, db: db, store: store, tableName: tableName, maxIter: maxIter}
}

func (a *SQLQueryAgent) Name() string { return "sql-query" }

func (a *SQLQueryAgent) Description() string {
	return "Answers analytics questions by generating, executing, and formatting SQL"
}

func (a *SQLQueryAgent) Execute(ctx context.Context, task sqlbot.AgentTask) (sqlbot.AgentResult, error) {
	threadID := task.Context["thread_id"]

	sqlTool := tools.NewSQLTool(a.provider, a.db, a.tableName, task.History)
	inner := sqlbot.NewToolLoopAgent(a.Name(), a.Description(), a.provider,
		sqlbot.WithTools(sqlTool),
		sqlbot.WithPrompt(sqlQueryPrompt),
		sqlbot.WithMaxIter(a.maxIter),
	)

	result, execErr := inner.Execute(ctx, task)

	// Authoritative, unconditional on the loop's outcome: if execute_sql
	// completed successfully this run, the Query Record is stored (§4.5.1,
	// §9's explicit redesign of "store only on the happy path").
	if sql, question, qr, ok := sqlTool.LastExecution(); ok && qr.Success && threadID != "" {
		a.store.StoreSQLQuery(threadID, sql, question, qr)
	}

	if execErr != nil {
		return sqlbot.AgentResult{}, execErr
	}
	return result, nil
}

var _ sqlbot.Agent = (*SQLQueryAgent)(nil)
