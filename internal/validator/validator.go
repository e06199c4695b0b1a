// Package validator enforces the read-only contract on generated SQL
// before it reaches the database: single statement, SELECT/WITH only, no
// write or DDL keywords, and a required reference to the configured table.
package validator

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// blacklisted holds every keyword that disqualifies a statement regardless
// of where it appears, matched as a whole word so "created_at" doesn't trip
// on "CREATE".
var blacklisted = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "TRUNCATE", "ALTER", "CREATE",
	"REPLACE", "GRANT", "REVOKE", "ATTACH", "DETACH", "PRAGMA", "VACUUM",
	"EXEC", "EXECUTE",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Result is the outcome of Validate: either Ok, or rejected with Reason
// explaining why.
type Result struct {
	Ok     bool
	Reason string
}

func ok() Result { return Result{Ok: true} }

func reject(reason string) Result { return Result{Ok: false, Reason: reason} }

// Validate applies the whitelist-plus-blacklist layered check.
// tableName is the configured table token every accepted statement must
// reference (TABLE_NAME).
func Validate(sql, tableName string) Result {
	normalized := normalize(sql)
	if normalized == "" {
		return reject("empty statement")
	}

	if !strings.HasPrefix(normalized, "SELECT ") && !strings.HasPrefix(normalized, "SELECT") &&
		!strings.HasPrefix(normalized, "WITH ") && !strings.HasPrefix(normalized, "WITH") {
		return reject("statement must begin with SELECT or WITH")
	}

	if tok := blacklistedToken(normalized); tok != "" {
		return reject("statement contains forbidden keyword: " + tok)
	}

	if hasMultipleStatements(sql) {
		return reject("multiple statements are not permitted")
	}

	if tableName != "" && !strings.Contains(normalized, strings.ToUpper(tableName)) {
		return reject("statement does not reference required table " + tableName)
	}

	return ok()
}

// normalize uppercases and collapses the statement's internal whitespace to
// single spaces before the prefix and keyword checks run. NFKC
// normalization (by way of golang.org/x/text/unicode/norm) first folds
// compatibility and width variants (fullwidth letters, ligatures) to their
// plain forms, which a naive uppercase+trim would miss; it does not remove
// zero-width characters.
func normalize(sql string) string {
	clean := norm.NFKC.String(sql)
	clean = strings.TrimSpace(clean)
	clean = whitespaceRun.ReplaceAllString(clean, " ")
	return strings.ToUpper(clean)
}

var blacklistPatterns = compileBlacklist(blacklisted)

func compileBlacklist(tokens []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(tokens))
	for i, tok := range tokens {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(tok) + `\b`)
	}
	return patterns
}

func blacklistedToken(normalized string) string {
	for i, re := range blacklistPatterns {
		if re.MatchString(normalized) {
			return blacklisted[i]
		}
	}
	return ""
}

// hasMultipleStatements reports whether a semicolon is followed by anything
// but whitespace or a trailing SQL line comment.
func hasMultipleStatements(sql string) bool {
	idx := strings.Index(sql, ";")
	for idx != -1 {
		rest := strings.TrimSpace(sql[idx+1:])
		for strings.HasPrefix(rest, "--") {
			nl := strings.Index(rest, "\n")
			if nl == -1 {
				rest = ""
				break
			}
			rest = strings.TrimSpace(rest[nl+1:])
		}
		if rest != "" {
			return true
		}
		next := strings.Index(sql[idx+1:], ";")
		if next == -1 {
			break
		}
		idx = idx + 1 + next
	}
	return false
}
