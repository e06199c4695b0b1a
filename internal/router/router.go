// Package router classifies an inbound message into one of four intents
// using ordered keyword heuristics, deliberately without an LLM call —
// classification needs to stay cheap and fast, not reason about nuance.
package router

import (
	"regexp"
	"strings"
)

type Intent string

const (
	SQLQuery     Intent = "SQL_QUERY"
	CSVExport    Intent = "CSV_EXPORT"
	SQLRetrieval Intent = "SQL_RETRIEVAL"
	OffTopic     Intent = "OFF_TOPIC"
)

// Classification is the Router's verdict on one message.
type Classification struct {
	Intent     Intent
	Confidence float64
	Reasoning  string
}

var (
	csvExportRe = regexp.MustCompile(`(?i)export.*\bcsv\b|save as csv|download.*\bcsv\b|\bcsv file\b`)
	sqlRetrieveRe = regexp.MustCompile(`(?i)show.*\bsql\b|what sql|which sql|sql.*\bused\b|sql query`)

	offTopicMarkerRe = regexp.MustCompile(`(?i)\bhello\b|\bhi\b|how are you|\bjoke\b|\bweather\b|\bthanks\b`)
	dbKeywordRe       = regexp.MustCompile(`(?i)\bapps?\b|\brevenue\b|\binstalls?\b|\bcountry\b|\bplatform\b|\bios\b|\bandroid\b|\bsql\b|\bdata\b|\btable\b|\bcount\b|how many|\bwhat\b`)

	followUpMarkerRe = regexp.MustCompile(`(?i)^what about\b|^and\b|^how about\b|^same for\b`)
)

// History is the minimal prior-turn context the Router consults for
// follow-up disambiguation. It does not need the full Memory Store shape,
// only the last assistant message and the previously classified intent.
type History struct {
	LastAssistantMessage string
	LastIntent           Intent
}

// Classify is a total function: every non-empty message maps to exactly
// one intent with a confidence in [0,1].
func Classify(message string, history History) Classification {
	if csvExportRe.MatchString(message) {
		return Classification{Intent: CSVExport, Confidence: 0.9, Reasoning: "matched a CSV-export phrase"}
	}

	if sqlRetrieveRe.MatchString(message) {
		return Classification{Intent: SQLRetrieval, Confidence: 0.9, Reasoning: "matched a SQL-retrieval phrase"}
	}

	if offTopicMarkerRe.MatchString(message) && !dbKeywordRe.MatchString(message) {
		return Classification{Intent: OffTopic, Confidence: 0.7, Reasoning: "greeting/chitchat marker with no database keyword"}
	}

	if history.LastAssistantMessage != "" && wordCount(message) < 6 && followUpMarkerRe.MatchString(strings.TrimSpace(message)) {
		if history.LastIntent == SQLQuery || history.LastIntent == CSVExport {
			return Classification{
				Intent:     history.LastIntent,
				Confidence: 0.8,
				Reasoning:  "short follow-up inheriting the previous turn's intent",
			}
		}
	}

	return Classification{Intent: SQLQuery, Confidence: 0.8, Reasoning: "default intent"}
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
