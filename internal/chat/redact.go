package chat

import "strings"

// sensitiveKeys are parameter names whose values must never reach logs.
// Matching is case-insensitive.
var sensitiveKeys = map[string]struct{}{
	"api_key":       {},
	"apikey":        {},
	"authorization": {},
	"access_token":  {},
	"accesstoken":   {},
	"token":         {},
	"bearer_token":  {},
}

// Redact returns a copy of v with the values of sensitive keys replaced
// by "***". Maps and slices are walked recursively; the input is never
// modified.
func Redact(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if _, sensitive := sensitiveKeys[strings.ToLower(k)]; sensitive {
				out[k] = "***"
			} else {
				out[k] = Redact(inner)
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = Redact(inner)
		}
		return out
	default:
		return v
	}
}
