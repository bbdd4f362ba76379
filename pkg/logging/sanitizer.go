package logging

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxQueryLogLength is the maximum length of a query to log
	MaxQueryLogLength = 160
	// MaxQuestionLogLength is the maximum length of a user question to log
	MaxQuestionLogLength = 200
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@host in URLs (postgres://, redis://)
	connStringPattern = regexp.MustCompile(`://[^:/\s]*:[^@]+@[^/\s]+`)

	// Subscriber identifiers (MSISDN, IMSI, IMEI) are long digit runs.
	subscriberIDPattern = regexp.MustCompile(`\+?\b\d{10,16}\b`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// SanitizeConnectionString removes credentials from connection strings.
// Use this before logging any Postgres or Redis address.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	return connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
}

// SanitizeError sanitizes error messages from the row store or cache.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
	return subscriberIDPattern.ReplaceAllString(sanitized, RedactedText)
}

// SanitizeQuery collapses whitespace in a generated SQL statement and truncates it.
// Literal values travel as bind parameters and never appear here.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}
	sanitized := strings.TrimSpace(whitespacePattern.ReplaceAllString(query, " "))
	return TruncateString(sanitized, MaxQueryLogLength)
}

// SanitizeQuestion masks subscriber identifiers in a user question and truncates it.
func SanitizeQuestion(question string) string {
	sanitized := subscriberIDPattern.ReplaceAllString(strings.TrimSpace(question), RedactedText)
	return TruncateString(sanitized, MaxQuestionLogLength)
}

// TruncateString shortens s to at most maxLen bytes plus an ellipsis. It never splits
// a UTF-8 character, so operator and country names stay valid in JSON logs.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := max(maxLen, 0)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
