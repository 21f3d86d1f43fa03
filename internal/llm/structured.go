package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// maxCandidates bounds how many bracketed blocks are tried before giving up.
const maxCandidates = 8

// SchemaValidator checks a decoded value. A non-nil error rejects the output.
type SchemaValidator[T any] func(T) error

// ExtractJSON recovers a JSON object of type T from model output. The model
// may wrap it in code fences or prose, leave comments or trailing commas in
// it, or write numbers like ".8". Blocks that do not decode are skipped in
// favor of the next one. validator, if non-nil, runs on the decoded value.
func ExtractJSON[T any](raw string, validator SchemaValidator[T]) (T, error) {
	return extract(raw, '{', '}', "object", validator)
}

// ExtractJSONArray is ExtractJSON for a top-level array, such as a list of
// suggestions.
func ExtractJSONArray[T any](raw string, validator SchemaValidator[[]T]) ([]T, error) {
	return extract(raw, '[', ']', "array", validator)
}

func extract[T any](raw string, open, close byte, kind string, validator SchemaValidator[T]) (T, error) {
	var zero T

	result, err := decodeFirst[T](stripCodeFences(raw), open, close, kind)
	if err != nil {
		return zero, err
	}
	if validator != nil {
		if err := validator(result); err != nil {
			return zero, fmt.Errorf("%w: validation failed: %v", ErrInvalidOutput, err)
		}
	}
	return result, nil
}

func decodeFirst[T any](s string, open, close byte, kind string) (T, error) {
	var zero T
	var decodeErr error

	for tries := 0; tries < maxCandidates; tries++ {
		start, block := balanced(s, open, close)
		if block == "" {
			break
		}
		var v T
		err := json.Unmarshal([]byte(repairLiterals(stripJSONComments(block))), &v)
		if err == nil {
			return v, nil
		}
		if decodeErr == nil {
			decodeErr = err
		}
		s = s[start+1:]
	}

	if decodeErr != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidOutput, decodeErr)
	}
	return zero, fmt.Errorf("%w: no JSON %s found in response", ErrInvalidOutput, kind)
}

// stripCodeFences drops markdown fence lines (```json, ```), keeping what
// they enclose.
func stripCodeFences(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// scanner tracks whether the current byte of a JSON text is inside a string
// literal.
type scanner struct {
	inString bool
	escaped  bool
}

// structural consumes c and reports whether it is outside any string
// literal. Quote characters themselves are never structural.
func (sc *scanner) structural(c byte) bool {
	switch {
	case sc.escaped:
		sc.escaped = false
		return false
	case sc.inString && c == '\\':
		sc.escaped = true
		return false
	case c == '"':
		sc.inString = !sc.inString
		return false
	}
	return !sc.inString
}

// balanced returns the first open ... close block of s and its offset, or
// "" when there is none.
func balanced(s string, open, close byte) (int, string) {
	start := strings.IndexByte(s, open)
	if start == -1 {
		return -1, ""
	}

	var sc scanner
	depth := 0
	for i := start; i < len(s); i++ {
		if !sc.structural(s[i]) {
			continue
		}
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return start, s[start : i+1]
			}
		}
	}
	return start, ""
}

// stripJSONComments removes // and /* */ comments outside string literals.
func stripJSONComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var sc scanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if sc.structural(c) && c == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				for i+1 < len(s) && s[i+1] != '\n' {
					i++
				}
				continue
			case '*':
				end := strings.Index(s[i+2:], "*/")
				if end == -1 {
					return b.String()
				}
				i += end + 3
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// repairLiterals fixes two things models get wrong: numbers written as ".8"
// or "-.3", and a trailing comma before } or ].
func repairLiterals(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	var sc scanner
	for i := 0; i < len(s); i++ {
		c := s[i]
		if sc.structural(c) {
			switch {
			case c == '.' && i+1 < len(s) && isDigit(s[i+1]) && isNumericBoundary(prevNonSpace(s, i-1)):
				b.WriteByte('0')
			case c == ',' && closesNext(s, i+1):
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func closesNext(s string, i int) bool {
	for ; i < len(s); i++ {
		switch s[i] {
		case ' ', '\n', '\r', '\t':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

func prevNonSpace(s string, i int) byte {
	for ; i >= 0; i-- {
		if s[i] != ' ' && s[i] != '\n' && s[i] != '\r' && s[i] != '\t' {
			return s[i]
		}
	}
	return 0
}

func isNumericBoundary(c byte) bool {
	switch c {
	case 0, ':', ',', '[', '{', '-':
		return true
	default:
		return false
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
