package parse

import "strings"

// quoteState tracks whether a scan is inside a double-quoted string.
// A backslash arms escaped for exactly one following character.
type quoteState struct {
	inString bool
	escaped  bool
}

// advance consumes one byte and reports whether it may be treated as a
// structural delimiter, i.e. it is neither an escape nor a quote and the scan
// is outside of a string.
func (s *quoteState) advance(c byte) bool {
	switch {
	case c == '\\' && !s.escaped:
		s.escaped = true
		return false
	case c == '"' && !s.escaped:
		s.inString = !s.inString
		return false
	}
	s.escaped = false
	return !s.inString
}

// CloseUnterminatedString appends a single double quote when text ends inside
// an open string. Escaped quotes (\") do not toggle string state, while an
// escaped backslash followed by a quote (\\") does.
func CloseUnterminatedString(text string) string {
	var state quoteState
	for i := 0; i < len(text); i++ {
		state.advance(text[i])
	}
	if state.inString {
		return text + `"`
	}
	return text
}

// BalanceDelimiters appends the closers for every '{' and '[' left open,
// innermost first. Delimiters inside strings are ignored, and a closer only
// pops the stack when it matches the most recent opener, so stray or
// mismatched closers already present in text are left untouched.
//
// The scan derives string state from scratch; it does not close strings
// itself, so callers should run CloseUnterminatedString first.
func BalanceDelimiters(text string) string {
	var state quoteState
	var expected []byte

	for i := 0; i < len(text); i++ {
		c := text[i]
		if !state.advance(c) {
			continue
		}
		switch c {
		case '{':
			expected = append(expected, '}')
		case '[':
			expected = append(expected, ']')
		case '}', ']':
			if n := len(expected); n > 0 && expected[n-1] == c {
				expected = expected[:n-1]
			}
		}
	}

	if len(expected) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + len(expected))
	b.WriteString(text)
	for i := len(expected) - 1; i >= 0; i-- {
		b.WriteByte(expected[i])
	}
	return b.String()
}

// RepairTruncated makes a possibly cut-off JSON document quote-terminated and
// bracket-balanced. It is a no-op for empty and already well-formed input.
// The result is not guaranteed to be valid JSON: a dangling comma or a key
// without a value survives the repair.
func RepairTruncated(text string) string {
	return BalanceDelimiters(CloseUnterminatedString(text))
}
