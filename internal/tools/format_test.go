package tools

import (
	"strings"
	"testing"

	"github.com/kochurovskyi/sqlbot/internal/memory"
)

func TestFormatQueryResultEmpty(t *testing.T) {
	got := FormatQueryResult(memory.QueryResult{}, "how many apps?", "SELECT COUNT(*) FROM app_portfolio")
	if got != "No results found." {
		t.Errorf("got %q", got)
	}
}

func TestFormatQueryResultScalar(t *testing.T) {
	result := memory.QueryResult{
		Data:     []map[string]any{{"count": int64(49)}},
		RowCount: 1,
		Columns:  []string{"count"},
	}
	got := FormatQueryResult(result, "how many apps do we have?", "SELECT COUNT(DISTINCT app_name) FROM app_portfolio")
	if !strings.HasPrefix(got, "49") {
		t.Errorf("got %q, want scalar 49 with possible note suffix", got)
	}
	if !strings.Contains(got, "*Note:*") {
		t.Errorf("expected an assumptions note for a COUNT query, got %q", got)
	}
}

func TestFormatQueryResultScalarLimitTriggersNote(t *testing.T) {
	result := memory.QueryResult{
		Data:     []map[string]any{{"name": "Acme"}},
		RowCount: 1,
		Columns:  []string{"name"},
	}
	got := FormatQueryResult(result, "what is the app name?", "SELECT app_name FROM app_portfolio LIMIT 1")
	// LIMIT alone triggers the ranking indicator even without "top"/"best"/"most".
	if !strings.HasPrefix(got, "Acme") {
		t.Errorf("got %q", got)
	}
	if !strings.Contains(got, "top subset") {
		t.Errorf("expected a ranking note for a LIMIT query, got %q", got)
	}
}

func TestFormatQueryResultTable(t *testing.T) {
	result := memory.QueryResult{
		Data: []map[string]any{
			{"platform": "iOS", "installs": int64(100)},
			{"platform": "Android", "installs": int64(200)},
		},
		RowCount: 2,
		Columns:  []string{"platform", "installs"},
	}
	got := FormatQueryResult(result, "installs by platform", "SELECT platform, installs FROM app_portfolio")
	if !strings.Contains(got, "| platform | installs |") {
		t.Errorf("missing header row: %q", got)
	}
	if !strings.Contains(got, "| --- | --- |") {
		t.Errorf("missing separator row: %q", got)
	}
	if !strings.Contains(got, "| iOS | 100 |") {
		t.Errorf("missing data row: %q", got)
	}
}

func TestFormatValueDecimalPlaces(t *testing.T) {
	if got := formatValue(3.14159); got != "3.14" {
		t.Errorf("got %q, want 3.14", got)
	}
	if got := formatValue(5.0); got != "5" {
		t.Errorf("got %q, want 5 (no trailing decimals for whole numbers)", got)
	}
}

func TestAssumptionsNoteJoinsMultipleFragments(t *testing.T) {
	note := assumptionsNote("what are the top apps by revenue?", "SELECT app_name, SUM(revenue) FROM app_portfolio ORDER BY SUM(revenue) DESC LIMIT 5")
	if !strings.Contains(note, "aggregated") || !strings.Contains(note, "ordered") || !strings.Contains(note, "top subset") {
		t.Errorf("expected all three fragments, got %q", note)
	}
}

func TestAssumptionsNoteEmptyWhenNoIndicators(t *testing.T) {
	note := assumptionsNote("what is the app name?", "SELECT app_name FROM app_portfolio")
	if note != "" {
		t.Errorf("expected no note, got %q", note)
	}
}
