package ai

import (
	"encoding/json"
	"strings"

	"github.com/seekwell/seekwell/errors"
)

// UnmarshalObject decodes an LLM response into v, tolerating the markdown
// code fences and surrounding prose that models sometimes emit around JSON.
// Returns errors.ErrInferenceMalformed when no JSON object can be recovered.
func UnmarshalObject(content string, v any) error {
	candidate := ExtractJSON(content)
	if candidate == "" {
		return errors.NewInferenceMalformedError("no JSON object found in response: %s", snippet(content))
	}
	if err := json.Unmarshal([]byte(candidate), v); err != nil {
		return errors.Wrap(errors.ErrInferenceMalformed, err.Error())
	}
	return nil
}

// ExtractJSON returns the JSON object or array embedded in an LLM response.
// Handles three shapes: bare JSON, JSON inside ```json fences, and JSON
// surrounded by prose. Returns "" when nothing JSON-like is present.
func ExtractJSON(content string) string {
	trimmed := strings.TrimSpace(content)

	// Fenced block takes priority: models that fence usually explain around it
	if fenced := extractFenced(trimmed, "```json"); fenced != "" {
		return fenced
	}
	if fenced := extractFenced(trimmed, "```"); fenced != "" && looksLikeJSON(fenced) {
		return fenced
	}

	if looksLikeJSON(trimmed) {
		return trimmed
	}

	// Prose around an object: take the outermost braces
	start := strings.IndexAny(trimmed, "{[")
	if start < 0 {
		return ""
	}
	var end int
	if trimmed[start] == '{' {
		end = strings.LastIndex(trimmed, "}")
	} else {
		end = strings.LastIndex(trimmed, "]")
	}
	if end <= start {
		return ""
	}
	return trimmed[start : end+1]
}

// ExtractFencedBlock returns the contents of the first fenced code block with
// the given language tag (e.g. "html"), or "" when absent.
func ExtractFencedBlock(content, lang string) string {
	return extractFenced(strings.TrimSpace(content), "```"+lang)
}

func extractFenced(content, fence string) string {
	start := strings.Index(content, fence)
	if start < 0 {
		return ""
	}
	rest := content[start+len(fence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

func looksLikeJSON(s string) bool {
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[")
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
