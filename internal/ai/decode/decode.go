// Package decode turns free-form generative model output into a JSON object.
//
// Model responses are semi-structured: the object may be wrapped in markdown
// fences or surrounded by prose. Decode tries progressively looser strategies
// and reports a *ParseFailure when none of them yields an object.
package decode

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseFailure is returned when no JSON object could be recovered.
type ParseFailure struct {
	Raw string
	Err error
}

func (e *ParseFailure) Error() string {
	if e.Err == nil {
		return "parse model response: no json object found"
	}
	return fmt.Sprintf("parse model response: %v", e.Err)
}

func (e *ParseFailure) Unwrap() error { return e.Err }

// Decode extracts the JSON object carried by raw. Known snake_case keys are
// renamed to their canonical camelCase form.
func Decode(raw string) (map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, &ParseFailure{Raw: raw, Err: errors.New("empty response")}
	}

	doc, err := parseObject(trimmed)
	if err == nil {
		return Canonicalize(doc), nil
	}

	if stripped := stripFences(trimmed); stripped != trimmed {
		if doc, err = parseObject(stripped); err == nil {
			return Canonicalize(doc), nil
		}
	}

	block, ok := extractObject(trimmed)
	if !ok {
		return nil, &ParseFailure{Raw: raw, Err: err}
	}

	doc, err = parseObject(block)
	if err != nil {
		return nil, &ParseFailure{Raw: raw, Err: err}
	}

	return Canonicalize(doc), nil
}

func parseObject(s string) (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("response is not a json object")
	}
	return doc, nil
}

// stripFences removes a leading ``` fence (with an optional language tag) and
// a trailing ``` fence.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if idx := strings.IndexByte(s, '\n'); idx != -1 && !strings.ContainsAny(s[:idx], "{[") {
			s = s[idx+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// extractObject returns the first balanced {...} block of s. Braces inside
// JSON strings are ignored.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}
