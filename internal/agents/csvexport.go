package agents

import (
	"context"

	sqlbot "github.com/kochurovskyi/sqlbot"
	"github.com/kochurovskyi/sqlbot/internal/memory"
	"github.com/kochurovskyi/sqlbot/internal/tools"
)

const csvExportPrompt = `You are the CSV-Export agent. You must never regenerate SQL or re-execute a query.
Call get_cached_results first. If it reports no prior results, respond with a message asking the
user to run a query first. Otherwise call generate_csv with the cached rows, then reply with a
terse confirmation such as "CSV report generated."`

// CSVExportAgent retrieves the thread's cached query result and writes it
// to a CSV file. Its tool subset structurally excludes generate_sql and
// execute_sql by construction rather than by runtime check.
type CSVExportAgent struct {
	provider  sqlbot.Provider
	store     *memory.Store
	tableName string
	outputDir string
	maxIter   int
}

// NewCSVExportAgent constructs the CSV-Export agent.
func NewCSVExportAgent(provider sqlbot.Provider, store *memory.Store, tableName, outputDir string, maxIter int) *CSVExportAgent {
	return &CSVExportAgent{provider: provider, store: store, tableName: tableName, outputDir: outputDir, maxIter: maxIter}
}

func (a *CSVExportAgent) Name() string { return "csv-export" }

func (a *CSVExportAgent) Description() string {
	return "Exports the most recent query result as a CSV file"
}

func (a *CSVExportAgent) Execute(ctx context.Context, task sqlbot.AgentTask) (sqlbot.AgentResult, error) {
	threadID := task.Context["thread_id"]

	csvTool := tools.NewCSVExportTool(a.store, threadID, a.tableName, a.outputDir)
	inner := sqlbot.NewToolLoopAgent(a.Name(), a.Description(), a.provider,
		sqlbot.WithTools(csvTool),
		sqlbot.WithPrompt(csvExportPrompt),
		sqlbot.WithMaxIter(a.maxIter),
	)

	return inner.Execute(ctx, task)
}

var _ sqlbot.Agent = (*CSVExportAgent)(nil)
