// Package llmjson extracts and repairs JSON from raw LLM output.
package llmjson

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/vampirenirmal/bookforge/internal/core"
)

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// Parse cleans a raw model response and returns the decoded value
// (map[string]any or []any). A structurally incomplete response fails
// with core.ErrTruncated so callers can retry with a more conservative
// prompt instead of attempting repair.
func Parse(raw string) (any, error) {
	if truncated(raw) {
		return nil, fmt.Errorf("unbalanced brackets in response: %w", core.ErrTruncated)
	}

	cleaned := Clean(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var value any
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		// Second chance: collapse raw newlines inside the payload. Models
		// occasionally emit literal line breaks inside string values.
		collapsed := strings.ReplaceAll(strings.ReplaceAll(cleaned, "\r", " "), "\n", " ")
		if err2 := json.Unmarshal([]byte(collapsed), &value); err2 != nil {
			return nil, fmt.Errorf("parsing response JSON: %w", err)
		}
	}

	return stripDashes(value), nil
}

// ParseInto parses raw into target via an intermediate re-marshal so the
// dash policy applies before decoding.
func ParseInto(raw string, target any) error {
	value, err := Parse(raw)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("re-encoding parsed value: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Clean strips fenced-code markers, extracts the outermost JSON value by
// bracket match, and repairs trailing commas.
func Clean(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	s = strings.TrimSpace(s)

	s = outermost(s)
	s = trailingCommaRe.ReplaceAllString(s, "$1")

	return strings.TrimSpace(s)
}

// outermost returns the widest substring spanning the first opening
// bracket to the last matching closer, preferring whichever of {} or
// [] appears first.
func outermost(s string) string {
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")

	start, closer := objStart, byte('}')
	if objStart < 0 || (arrStart >= 0 && arrStart < objStart) {
		start, closer = arrStart, ']'
	}
	if start < 0 {
		return ""
	}

	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

// truncated counts unescaped brackets with string awareness; an
// unbalanced response was cut off by the token limit.
func truncated(s string) bool {
	depthCurly, depthSquare := 0, 0
	inString := false
	escaped := false
	seenAny := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depthCurly++
				seenAny = true
			}
		case '}':
			if !inString {
				depthCurly--
			}
		case '[':
			if !inString {
				depthSquare++
				seenAny = true
			}
		case ']':
			if !inString {
				depthSquare--
			}
		}
	}

	if !seenAny {
		return false
	}
	return depthCurly != 0 || depthSquare != 0 || inString
}

var dashReplacer = strings.NewReplacer("—", ", ", "–", ", ")

// stripDashes recursively replaces en/em dashes in string values with
// commas. Dashes are the strongest single tell of machine prose.
func stripDashes(value any) any {
	switch v := value.(type) {
	case string:
		s := dashReplacer.Replace(v)
		s = strings.ReplaceAll(s, " , ", ", ")
		s = strings.ReplaceAll(s, ",  ", ", ")
		return s
	case map[string]any:
		for k, item := range v {
			v[k] = stripDashes(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = stripDashes(item)
		}
		return v
	default:
		return value
	}
}
