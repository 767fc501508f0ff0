package ingestion_engine

import (
	"encoding/json"
	"errors"
	"strings"
)

// FailureKind labels why a page produced no items.
type FailureKind string

const (
	FailureNone           FailureKind = ""
	FailureLLM            FailureKind = "llm_error"
	FailureRetryExhausted FailureKind = "retry_exhausted"
	FailureMalformed      FailureKind = "malformed_response"
	FailureNonArray       FailureKind = "non_array_response"
)

var errNoJSON = errors.New("no json value found")

// StripCodeFence removes a surrounding ``` fence and its language tag.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "[{") {
		s = s[nl+1:]
	} else if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
		s = s[4:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseJSONArray decodes a model reply expected to hold a JSON array. It
// tolerates fences, leading or trailing prose around the array, and an object
// wrapping a single list. Anything else yields nil plus the failure kind.
func ParseJSONArray(raw string) ([]any, FailureKind) {
	s := StripCodeFence(raw)

	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return asArray(v)
	}

	sliced, ok := between(s, '[', ']')
	if !ok {
		return nil, FailureMalformed
	}
	if err := json.Unmarshal([]byte(sliced), &v); err != nil {
		return nil, FailureMalformed
	}
	return asArray(v)
}

func asArray(v any) ([]any, FailureKind) {
	switch t := v.(type) {
	case []any:
		return t, FailureNone
	case map[string]any:
		if list, ok := unwrapList(t); ok {
			return list, FailureNone
		}
	}
	return nil, FailureNonArray
}

// unwrapList returns the list under "structured_data", or the only value of a
// single-key object when that value is a list.
func unwrapList(m map[string]any) ([]any, bool) {
	if list, ok := m["structured_data"].([]any); ok {
		return list, true
	}
	if len(m) == 1 {
		for _, v := range m {
			list, ok := v.([]any)
			return list, ok
		}
	}
	return nil, false
}

// ParseJSONObject decodes a reply expected to hold one JSON object into dst,
// falling back to the span between the first '{' and the last '}'.
func ParseJSONObject(raw string, dst any) error {
	s := StripCodeFence(raw)
	err := json.Unmarshal([]byte(s), dst)
	if err == nil {
		return nil
	}
	sliced, ok := between(s, '{', '}')
	if !ok {
		return errors.Join(errNoJSON, err)
	}
	return json.Unmarshal([]byte(sliced), dst)
}

func between(s string, open, close byte) (string, bool) {
	i := strings.IndexByte(s, open)
	j := strings.LastIndexByte(s, close)
	if i < 0 || j <= i {
		return "", false
	}
	return s[i : j+1], true
}
