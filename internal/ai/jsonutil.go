package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON recovers a JSON document from a model response that may be
// wrapped in markdown code fences or surrounded by prose. Every structured
// call goes through this one path instead of stripping fences per callsite.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return s
	}
	// Prose around the payload: take the outermost object or array.
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return s
	}
	return s[start : end+1]
}

// unmarshalResponse extracts and decodes a model response into out.
func unmarshalResponse(raw string, out any) error {
	cleaned := extractJSON(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("decode model response: %w (raw: %.200s)", err, raw)
	}
	return nil
}
