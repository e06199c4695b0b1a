package tools

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	sqlbot "github.com/kochurovskyi/sqlbot"
	"github.com/kochurovskyi/sqlbot/internal/memory"
)

// CSVExportTool provides get_cached_results and generate_csv. Like SQLTool,
// the two share session state: get_cached_results holds the retrieved rows
// so generate_csv doesn't require the LLM to echo the full data set back as
// a tool argument — the cached rows are the only data it ever touches,
// never a fresh query.
type CSVExportTool struct {
	store     *memory.Store
	threadID  string
	tableName string
	outputDir string

	mu     sync.Mutex
	cached *memory.QueryResult
}

// NewCSVExportTool constructs a session-scoped tool set for one CSV-Export
// agent run against threadID.
func NewCSVExportTool(store *memory.Store, threadID, tableName, outputDir string) *CSVExportTool {
	return &CSVExportTool{store: store, threadID: threadID, tableName: tableName, outputDir: outputDir}
}

func (t *CSVExportTool) Definitions() []sqlbot.ToolDefinition {
	return []sqlbot.ToolDefinition{
		{
			Name:        "get_cached_results",
			Description: "Retrieve the most recent successful query result for this conversation, if any.",
			Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
		},
		{
			Name:        "generate_csv",
			Description: "Write the cached query result to a CSV file and return its path. Requires get_cached_results to have been called first.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"filename": {
						"type": "string",
						"description": "Optional output filename; a timestamped default is used if omitted"
					}
				}
			}`),
		},
	}
}

func (t *CSVExportTool) Execute(ctx context.Context, name string, args json.RawMessage) (sqlbot.ToolResult, error) {
	switch name {
	case "get_cached_results":
		return t.getCachedResults(ctx)
	case "generate_csv":
		return t.generateCSV(ctx, args)
	default:
		return sqlbot.ToolResult{Error: "unknown tool: " + name}, nil
	}
}

func (t *CSVExportTool) getCachedResults(_ context.Context) (sqlbot.ToolResult, error) {
	result := t.store.GetLastQueryResults(t.threadID)
	t.mu.Lock()
	t.cached = result
	t.mu.Unlock()
	slog.Debug("get_cached_results", "thread_id", t.threadID, "hit", result != nil)

	if result == nil {
		return sqlbot.ToolResult{Content: "not-found: no prior query results in this conversation"}, nil
	}

	b, _ := json.Marshal(struct {
		RowCount int      `json:"row_count"`
		Columns  []string `json:"columns"`
	}{RowCount: result.RowCount, Columns: result.Columns})
	return sqlbot.ToolResult{Content: string(b)}, nil
}

type generateCSVArgs struct {
	Filename string `json:"filename"`
}

func (t *CSVExportTool) generateCSV(_ context.Context, raw json.RawMessage) (sqlbot.ToolResult, error) {
	var args generateCSVArgs
	_ = json.Unmarshal(raw, &args)

	t.mu.Lock()
	cached := t.cached
	t.mu.Unlock()

	if cached == nil || len(cached.Data) == 0 {
		return sqlbot.ToolResult{Content: "ERROR: no cached data to export"}, nil
	}

	filename := args.Filename
	if filename == "" {
		filename = defaultCSVFilename(t.tableName, time.Now())
	}
	path := filepath.Join(t.outputDir, filename)

	if err := writeCSV(path, cached.Columns, cached.Data); err != nil {
		return sqlbot.ToolResult{Content: "ERROR: " + err.Error()}, nil
	}

	return sqlbot.ToolResult{Content: path}, nil
}

// defaultCSVFilename follows the per-request unique filename convention:
// {table}_export_YYYYMMDD_HHMMSS.csv.
func defaultCSVFilename(tableName string, at time.Time) string {
	return fmt.Sprintf("%s_export_%s.csv", tableName, at.Format("20060102_150405"))
}

// writeCSV emits RFC-4180 CSV (UTF-8, CRLF line endings, quoting as
// needed) — encoding/csv's Writer handles quoting; UseCRLF gives the
// comma-separated, CRLF line endings format.
func writeCSV(path string, columns []string, rows []map[string]any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.UseCRLF = true

	if err := w.Write(columns); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = formatValue(row[col])
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
