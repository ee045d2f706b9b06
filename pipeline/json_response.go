package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseJSONResponse decodes a model response into v, tolerating an optional
// markdown code fence around the payload. When the response carries several
// fenced blocks only the first fenced segment is considered; an unclosed
// fence consumes everything after the opening marker. A leading "json"
// language tag inside the fence is stripped.
func ParseJSONResponse(raw string, v interface{}) error {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return fmt.Errorf("empty response from model")
	}

	if strings.HasPrefix(cleaned, "```") {
		parts := strings.Split(cleaned, "```")
		// parts[0] is the empty prefix before the opening fence; the first
		// fenced segment is parts[1] whether or not a closing fence exists.
		if len(parts) > 1 {
			cleaned = parts[1]
		}
		cleaned = strings.TrimPrefix(cleaned, "json")
		cleaned = strings.TrimSpace(cleaned)
	}

	if cleaned == "" {
		return fmt.Errorf("empty response from model")
	}

	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return fmt.Errorf("invalid JSON in model response: %w", err)
	}

	return nil
}
