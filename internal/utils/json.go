package utils

import (
	"strings"
)

// SanitizeJSON extracts the JSON payload from raw model output.
// Models wrap answers in Markdown fences (```json ... ```) and
// sometimes add commentary before or after the fenced block; both are
// stripped. Unfenced output is returned trimmed.
func SanitizeJSON(input string) string {
	cleaned := strings.TrimSpace(input)

	open := strings.Index(cleaned, "```")
	if open == -1 {
		return cleaned
	}

	// Skip the opening fence and its optional language tag
	cleaned = cleaned[open+3:]
	if nl := strings.IndexByte(cleaned, '\n'); nl != -1 && strings.HasPrefix(strings.ToLower(strings.TrimSpace(cleaned[:nl])), "json") {
		cleaned = cleaned[nl+1:]
	} else {
		cleaned = strings.TrimPrefix(cleaned, "json")
	}

	// Drop the closing fence and anything the model appended after it
	if end := strings.Index(cleaned, "```"); end != -1 {
		cleaned = cleaned[:end]
	}

	return strings.TrimSpace(cleaned)
}
