package tools

import (
	"encoding/json"
	"strings"
)

// NormalizeValue makes tool arguments and results JSON-friendly for
// transcripts. Strings are stripped of a surrounding markdown code fence
// and parsed as JSON when possible; anything that cannot be decoded is
// returned unchanged. The function is total and idempotent.
func NormalizeValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}

	candidate := stripCodeFence(strings.TrimSpace(s))
	if candidate == "" {
		return v
	}

	var decoded any
	if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
		return v
	}
	switch decoded.(type) {
	case map[string]any, []any:
		return decoded
	}
	// Scalars decode too ("42", "true"); keep the original string so
	// plain text replies are not silently retyped.
	return v
}

// stripCodeFence removes one surrounding triple-backtick fence, with an
// optional language tag after the opening fence. Input without a fence
// comes back untouched.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	inner := s[3 : len(s)-3]
	// Drop the language tag on the opening line, if any.
	if idx := strings.IndexByte(inner, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(inner[:idx])
		if firstLine == "" || isLanguageTag(firstLine) {
			inner = inner[idx+1:]
		}
	}
	return strings.TrimSpace(inner)
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
