package diff

import "unicode"

type class int

const (
	classUpper class = iota
	classWord
	classSpace
	classNewline
	classOther
)

func classify(r rune) class {
	switch {
	case r == '\n':
		return classNewline
	case unicode.IsUpper(r):
		return classUpper
	case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
		return classWord
	case unicode.IsSpace(r):
		return classSpace
	default:
		return classOther
	}
}

// Tokenize splits s into word-granularity tokens. A token is a maximal run of
// uppercase letters, of other word characters, or of horizontal whitespace,
// except that an uppercase run gives its last letter to a lowercase run
// following it: HTTPServer is HTTP and Server. Every line break and every
// other rune is a token of its own. Concatenating the tokens yields s.
func Tokenize(s string) []string {
	var tokens []string
	start, last := 0, 0
	prev := class(-1)
	for i, r := range s {
		c := classify(r)
		switch {
		case i == start:
		case prev == classUpper && c == classWord && unicode.IsLower(r):
			if last > start {
				tokens = append(tokens, s[start:last])
				start = last
			}
		case c != prev || c == classNewline || c == classOther:
			tokens = append(tokens, s[start:i])
			start = i
		}
		prev, last = c, i
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}
