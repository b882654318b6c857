package utils

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?[ \t]*\r?\n(.*?)\r?\n?```")

// ExtractJSON pulls the first parseable JSON document out of free-form model
// output. Candidates are tried in order: a fenced code block, the balanced
// object/array starting at the first opener, the span from the first opener
// to the last closer, and finally the whole text.
func ExtractJSON(text string) (json.RawMessage, error) {
	for _, candidate := range jsonCandidates(text) {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}
	return nil, ErrNoJSONFound
}

// ExtractJSONInto decodes the extracted payload into v.
func ExtractJSONInto(text string, v any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: decode model payload: %v", ErrUnexpectedBehaviorOfAI, err)
	}
	return nil
}

func jsonCandidates(text string) []string {
	var candidates []string

	if m := fencedBlock.FindStringSubmatch(text); len(m) > 1 {
		candidates = append(candidates, m[1])
	}

	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")

	var start int
	var open, closer byte
	switch {
	case objStart != -1 && (arrStart == -1 || objStart < arrStart):
		start, open, closer = objStart, '{', '}'
	case arrStart != -1:
		start, open, closer = arrStart, '[', ']'
	default:
		return append(candidates, text)
	}

	if end := findMatchingClose(text, start, open, closer); end != -1 {
		candidates = append(candidates, text[start:end+1])
	}
	if end := strings.LastIndexByte(text, closer); end > start {
		candidates = append(candidates, text[start:end+1])
	}

	return append(candidates, text)
}

// findMatchingClose returns the index of the closer that balances the opener
// at start, ignoring brackets inside JSON strings. -1 when unbalanced.
func findMatchingClose(s string, start int, open, closer byte) int {
	if start >= len(s) || s[start] != open {
		return -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		ch := s[i]

		if escaped {
			escaped = false
			continue
		}
		if ch == '\\' && inString {
			escaped = true
			continue
		}
		if ch == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch ch {
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}
