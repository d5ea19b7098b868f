// Package extract pulls a JSON object out of free-form judge text.
//
// Judge models wrap their JSON in markdown fences, preambles, or trailing
// commentary. Extraction tries, in order: fenced code blocks, the whole
// trimmed text, then brace-delimited substrings. The first candidate that
// parses wins; a parse failure on one candidate never aborts the search.
package extract

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoJSON is returned when no candidate substring parses as a JSON object.
// It is recoverable: the caller retries the whole evaluation attempt.
var ErrNoJSON = errors.New("extract: no valid JSON object in response")

var fencedBlock = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Object extracts the first parseable JSON object from raw judge text.
func Object(text string) (map[string]any, error) {
	for _, candidate := range candidates(text) {
		var obj map[string]any
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
			return obj, nil
		}
	}
	return nil, ErrNoJSON
}

// candidates returns substrings to try, in precedence order.
func candidates(text string) []string {
	var out []string
	for _, m := range fencedBlock.FindAllStringSubmatch(text, -1) {
		if c := strings.TrimSpace(m[1]); c != "" {
			out = append(out, c)
		}
	}
	if trimmed := strings.TrimSpace(text); trimmed != "" {
		out = append(out, trimmed)
	}
	out = append(out, braceSpans(text)...)
	return out
}

// braceSpans yields the widest first-{-to-last-} span, then each balanced
// top-level object found by scanning. String literals are respected so a
// brace inside a quoted value does not end a span.
func braceSpans(text string) []string {
	var out []string
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first >= 0 && last > first {
		out = append(out, text[first:last+1])
	}
	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		ch := text[i]
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
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					out = append(out, text[start:i+1])
					start = -1
				}
			}
		}
	}
	return out
}
