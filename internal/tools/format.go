package tools

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kochurovskyi/sqlbot/internal/memory"
)

// FormatQueryResult implements the format_result decision rule: a single
// scalar or a small result renders as plain text, anything larger renders
// as a markdown table, and an assumptions note is appended when the
// question or SQL hints at aggregation, ordering, or an implicit time
// window.
func FormatQueryResult(result memory.QueryResult, question, sql string) string {
	if len(result.Data) == 0 {
		return "No results found."
	}

	var body string
	if len(result.Data) == 1 && len(result.Columns) == 1 {
		body = formatScalar(result.Data[0][result.Columns[0]])
	} else if len(result.Data) <= 1 && len(result.Columns) <= 3 {
		body = formatSimple(result)
	} else {
		body = formatTable(result)
	}

	if note := assumptionsNote(question, sql); note != "" {
		body += "\n\n" + note
	}
	return body
}

func formatScalar(v any) string {
	return formatValue(v)
}

func formatSimple(result memory.QueryResult) string {
	row := result.Data[0]
	parts := make([]string, 0, len(result.Columns))
	for _, col := range result.Columns {
		parts = append(parts, fmt.Sprintf("%s: %s", col, formatValue(row[col])))
	}
	return strings.Join(parts, ", ")
}

func formatTable(result memory.QueryResult) string {
	var b strings.Builder

	b.WriteString("| ")
	b.WriteString(strings.Join(result.Columns, " | "))
	b.WriteString(" |\n")

	b.WriteString("|")
	for range result.Columns {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, row := range result.Data {
		b.WriteString("| ")
		cells := make([]string, 0, len(result.Columns))
		for _, col := range result.Columns {
			cells = append(cells, formatValue(row[col]))
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString(" |\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatValue renders integers and whole-valued floats without decimals and
// other floats to 2 places; everything else via fmt.Sprint.
func formatValue(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float32:
		return formatFloat(float64(n))
	case float64:
		return formatFloat(n)
	case int, int32, int64:
		return fmt.Sprint(n)
	default:
		return fmt.Sprint(n)
	}
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

var (
	aggregationRe = regexp.MustCompile(`(?i)\b(SUM|AVG|COUNT)\b`)
	orderByRe     = regexp.MustCompile(`(?i)\bORDER BY\b`)
	rankingRe     = regexp.MustCompile(`(?i)\bLIMIT\b|\btop\b|\bbest\b|\bmost\b`)
	timeWindowRe  = regexp.MustCompile(`(?i)\b(this (month|week|year)|last (month|week|year)|today|yesterday|recent(ly)?)\b`)
)

// assumptionsNote scans the question and SQL for aggregation, ordering,
// ranking, or implicit time-window indicators and renders them as a single
// italicized note.
func assumptionsNote(question, sql string) string {
	haystack := question + " " + sql

	var fragments []string
	if aggregationRe.MatchString(haystack) {
		fragments = append(fragments, "result reflects an aggregated value")
	}
	if orderByRe.MatchString(haystack) {
		fragments = append(fragments, "results are ordered")
	}
	if rankingRe.MatchString(haystack) {
		fragments = append(fragments, "results are limited to a top subset")
	}
	if timeWindowRe.MatchString(haystack) {
		fragments = append(fragments, "an implicit time window was assumed")
	}

	if len(fragments) == 0 {
		return ""
	}
	return "*Note:* " + strings.Join(fragments, "; ") + "."
}
