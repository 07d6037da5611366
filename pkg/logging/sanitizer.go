package logging

import (
	"regexp"
	"strings"
)

const (
	// MaxQueryLogLength is the maximum length of a query to log
	MaxQueryLogLength = 100
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// user:pass@host in URL-style connection strings
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s?]+`)

	// "password":"xxx" inside JSON bodies echoed back in errors
	jsonPasswordPattern = regexp.MustCompile(`(?i)"password"\s*:\s*"[^"]*"`)
)

// SanitizeConnectionString removes credentials from a connection string.
// Use this before printing or logging any DSN.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
	return sanitized
}

// SanitizeError strips credentials from an error message.
// Gateway errors can echo request bodies, which may carry a database password.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeText(err.Error())
}

// SanitizeText applies every redaction pattern to free text.
func SanitizeText(text string) string {
	sanitized := passwordPattern.ReplaceAllString(text, "${1}="+RedactedText)
	sanitized = jsonPasswordPattern.ReplaceAllString(sanitized, `"password":"`+RedactedText+`"`)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)
	return sanitized
}

// SanitizeQuery truncates and sanitizes operator SQL for logging.
// Newlines are flattened so one query stays on one log line.
func SanitizeQuery(query string) string {
	if query == "" {
		return ""
	}

	sanitized := strings.Join(strings.Fields(query), " ")
	if len(sanitized) > MaxQueryLogLength {
		sanitized = sanitized[:MaxQueryLogLength] + "..."
	}
	return passwordPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
