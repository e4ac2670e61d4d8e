package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// thinkTagPattern matches <think>...</think> blocks emitted by reasoning models.
var thinkTagPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ExtractJSON returns the first JSON object in an LLM response that may carry
// <think> blocks, markdown fences or chatter around it.
func ExtractJSON(response string) (json.RawMessage, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")

	for offset := 0; offset < len(cleaned); {
		candidate, end, ok := extractBalancedObject(cleaned[offset:])
		if !ok {
			break
		}
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
		offset += end
	}

	trimmed := strings.TrimSpace(cleaned)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	return nil, NewError(ErrorTypeResponse, "no valid JSON object in response", true, nil)
}

// extractBalancedObject finds the first balanced {...} in s and returns it with
// the index just past its end.
func extractBalancedObject(s string) (string, int, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", 0, false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], i + 1, true
			}
		}
	}

	return "", 0, false
}

// ParseJSONResponse extracts JSON from a response and unmarshals it into T.
func ParseJSONResponse[T any](response string) (T, error) {
	var result T

	raw, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return result, NewError(ErrorTypeResponse, "unmarshal JSON", true, err)
	}
	return result, nil
}
