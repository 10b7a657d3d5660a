package telemetry

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	// Strings longer than this with no spaces are treated as possible tokens
	minTokenLength = 20
	// Cell payloads are cut to this many characters in traces
	maxCellValueLength = 80
	// At most this many rows of a values grid are kept in traces
	maxTracedRows = 5
)

var apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|token|secret|password|passwd|pwd|auth|authorization)[\s:=]+["']?([^\s"']+)`)

// SanitiseArguments renders tool arguments as JSON for span attributes. Secret
// looking keys and values are redacted and large cell payloads are trimmed.
func SanitiseArguments(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}

	sanitised := make(map[string]any, len(args))
	for key, value := range args {
		if isSensitiveKey(key) {
			sanitised[key] = "[REDACTED]"
			continue
		}
		sanitised[key] = sanitiseValue(value, 0)
	}

	data, err := json.Marshal(sanitised)
	if err != nil {
		return `{"error": "failed to serialise arguments"}`
	}
	return string(data)
}

func sanitiseValue(value any, depth int) any {
	switch v := value.(type) {
	case string:
		return sanitiseString(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			if isSensitiveKey(key) {
				out[key] = "[REDACTED]"
				continue
			}
			out[key] = sanitiseValue(inner, depth+1)
		}
		return out
	case []any:
		limit := len(v)
		if depth == 0 && limit > maxTracedRows {
			limit = maxTracedRows
		}
		out := make([]any, 0, limit+1)
		for _, inner := range v[:limit] {
			out = append(out, sanitiseValue(inner, depth+1))
		}
		if limit < len(v) {
			out = append(out, "...[TRUNCATED (tracing)]")
		}
		return out
	default:
		return value
	}
}

func isSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, marker := range []string{"key", "token", "secret", "password", "credential", "auth"} {
		if strings.Contains(k, marker) {
			return true
		}
	}
	return false
}

func sanitiseString(s string) string {
	if s == "" {
		return s
	}
	if apiKeyPattern.MatchString(s) {
		return apiKeyPattern.ReplaceAllString(s, "$1=[REDACTED]")
	}
	if strings.HasPrefix(s, "ya29.") || (len(s) > 100 && isTokenLike(s)) {
		return s[:4] + "...[REDACTED]"
	}
	return TruncateString(s, maxCellValueLength)
}

// isTokenLike reports strings made only of token characters. Spreadsheet ids
// are token-like too, so only very long values are treated as secrets.
func isTokenLike(s string) bool {
	if len(s) < minTokenLength {
		return false
	}
	for _, c := range s {
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_' || c == '.'
		if !ok {
			return false
		}
	}
	return true
}

// TruncateString truncates a string to a maximum length with ellipsis
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}
