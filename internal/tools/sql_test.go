package tools

import (
	"context"
	"testing"

	sqlbot "github.com/kochurovskyi/sqlbot"
)

func TestStripSQLFence(t *testing.T) {
	cases := map[string]string{
		"```sql\nSELECT 1\n```":    "SELECT 1",
		"```\nSELECT 1\n```":       "SELECT 1",
		"SELECT 1":                 "SELECT 1",
		"  SELECT 1  ":             "SELECT 1",
	}
	for in, want := range cases {
		if got := stripSQLFence(in); got != want {
			t.Errorf("stripSQLFence(%q) = %q, want %q", in, got, want)
		}
	}
}

// fakeProvider returns a fixed response for Chat.
type fakeProvider struct {
	content string
	err     error
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Chat(_ context.Context, _ sqlbot.ChatRequest) (sqlbot.ChatResponse, error) {
	return sqlbot.ChatResponse{Content: f.content}, f.err
}
func (f *fakeProvider) ChatWithTools(ctx context.Context, req sqlbot.ChatRequest, _ []sqlbot.ToolDefinition) (sqlbot.ChatResponse, error) {
	return f.Chat(ctx, req)
}
var _ sqlbot.Provider = (*fakeProvider)(nil)

func TestGenerateSQLStripsFenceAndSetsQuestion(t *testing.T) {
	provider := &fakeProvider{content: "```sql\nSELECT COUNT(*) FROM app_portfolio\n```"}
	tool := NewSQLTool(provider, nil, "app_portfolio", nil)

	result, err := tool.Execute(context.Background(), "generate_sql", []byte(`{"question":"how many apps?"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Content != "SELECT COUNT(*) FROM app_portfolio" {
		t.Errorf("got %q", result.Content)
	}
	if tool.lastQuestion != "how many apps?" {
		t.Errorf("expected lastQuestion to be recorded, got %q", tool.lastQuestion)
	}
}

func TestGenerateSQLMissingQuestion(t *testing.T) {
	tool := NewSQLTool(&fakeProvider{}, nil, "app_portfolio", nil)
	result, _ := tool.Execute(context.Background(), "generate_sql", []byte(`{}`))
	if result.Content != "ERROR: missing question argument" {
		t.Errorf("got %q", result.Content)
	}
}

func TestGenerateSQLProviderError(t *testing.T) {
	tool := NewSQLTool(&fakeProvider{err: &sqlbot.ErrLLM{Provider: "fake", Message: "boom"}}, nil, "app_portfolio", nil)
	result, _ := tool.Execute(context.Background(), "generate_sql", []byte(`{"question":"x"}`))
	if result.Content[:6] != "ERROR:" {
		t.Errorf("expected ERROR-prefixed content, got %q", result.Content)
	}
}

func TestExecuteSQLRejectedByValidator(t *testing.T) {
	tool := NewSQLTool(&fakeProvider{}, nil, "app_portfolio", nil)
	_, err := tool.Execute(context.Background(), "execute_sql", []byte(`{"sql":"DROP TABLE app_portfolio"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sql, question, result, ok := tool.LastExecution()
	if !ok {
		t.Fatal("expected a recorded execution even on validator rejection")
	}
	if result.Success {
		t.Error("expected unsuccessful result")
	}
	if sql != "DROP TABLE app_portfolio" {
		t.Errorf("got sql %q", sql)
	}
	_ = question
}

func TestFormatResultWithNoExecution(t *testing.T) {
	tool := NewSQLTool(&fakeProvider{}, nil, "app_portfolio", nil)
	result, _ := tool.Execute(context.Background(), "format_result", []byte(`{"question":"x"}`))
	if result.Content != "No results found." {
		t.Errorf("got %q", result.Content)
	}
}
