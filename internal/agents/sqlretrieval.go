package agents

import (
	"context"

	sqlbot "github.com/kochurovskyi/sqlbot"
	"github.com/kochurovskyi/sqlbot/internal/memory"
	"github.com/kochurovskyi/sqlbot/internal/tools"
)

const sqlRetrievalPrompt = `You are the SQL-Retrieval agent. Extract a description fragment from the user's
request (tokens after patterns like "sql for" or "sql you used to") and call get_sql_history with
it as the description argument. Present the returned SQL inside a fenced code block tagged sql.
If nothing is found, say so plainly.`

// SQLRetrievalAgent surfaces a previously executed SQL statement from the
// thread's history. Its tool subset structurally excludes generate_sql and
// execute_sql by construction.
type SQLRetrievalAgent struct {
	provider sqlbot.Provider
	store    *memory.Store
	maxIter  int
}

// NewSQLRetrievalAgent constructs the SQL-Retrieval agent.
func NewSQLRetrievalAgent(provider sqlbot.Provider, store *memory.Store, maxIter int) *SQLRetrievalAgent {
	return &SQLRetrievalAgent{provider: provider, store: store, maxIter: maxIter}
}

func (a *SQLRetrievalAgent) Name() string { return "sql-retrieval" }

func (a *SQLRetrievalAgent) Description() string {
	return "Retrieves a previously executed SQL statement for this conversation"
}

func (a *SQLRetrievalAgent) Execute(ctx context.Context, task sqlbot.AgentTask) (sqlbot.AgentResult, error) {
	threadID := task.Context["thread_id"]

	historyTool := tools.NewHistoryTool(a.store, threadID)
	inner := sqlbot.NewToolLoopAgent(a.Name(), a.Description(), a.provider,
		sqlbot.WithTools(historyTool),
		sqlbot.WithPrompt(sqlRetrievalPrompt),
		sqlbot.WithMaxIter(a.maxIter),
	)

	return inner.Execute(ctx, task)
}

var _ sqlbot.Agent = (*SQLRetrievalAgent)(nil)
