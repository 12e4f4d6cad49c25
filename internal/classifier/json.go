package classifier

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON finds the first balanced JSON object in a model response,
// tolerating markdown fences and surrounding commentary.
func extractJSON(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}

	return ""
}

// parseAuditResponse extracts an AuditResult from a model response.
func parseAuditResponse(response string) (*AuditResult, error) {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return nil, fmt.Errorf("no JSON found in audit response")
	}

	var result AuditResult
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("audit JSON parse failed: %w", err)
	}
	return &result, nil
}

// parseNarrateResponse extracts a directive proposal from a model
// response. The concrete type lives in the directive package; this file
// only knows how to decode it.
func parseNarrateResponse(response string, out interface{}) error {
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return fmt.Errorf("no JSON found in directive response")
	}
	if err := json.Unmarshal([]byte(jsonStr), out); err != nil {
		return fmt.Errorf("directive JSON parse failed: %w", err)
	}
	return nil
}
