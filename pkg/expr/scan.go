package expr

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// topLevel marks the byte offsets of s that sit outside any bracket pair and
// outside any quoted string.
func topLevel(s string) []bool {
	mask := make([]bool, len(s))
	depth := 0
	var quote byte

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}

		switch ch {
		case '"', '\'':
			if depth == 0 {
				mask[i] = true
			}
			quote = ch
		case '(', '[', '{':
			if depth == 0 {
				mask[i] = true
			}
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				mask[i] = true
			}
		default:
			mask[i] = depth == 0
		}
	}

	return mask
}

// matchClose returns the offset of the bracket closing the one at open, or -1.
func matchClose(s string, open int) int {
	depth := 0
	var quote byte

	for i := open; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}

		switch ch {
		case '"', '\'':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// enclosedBy reports whether s is wrapped by a single bracket pair opening
// with open, i.e. the depth never returns to zero before the last byte.
func enclosedBy(s string, open byte) bool {
	return len(s) >= 2 && s[0] == open && matchClose(s, 0) == len(s)-1
}

// unwrap strips redundant fully-enclosing parentheses.
func unwrap(s string) string {
	for enclosedBy(s, '(') {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// splitTopLevel splits s on sep wherever sep is outside brackets and quotes.
func splitTopLevel(s string, sep byte) []string {
	mask := topLevel(s)
	var parts []string
	start := 0

	for i := 0; i < len(s); i++ {
		if s[i] == sep && mask[i] {
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}

	return append(parts, strings.TrimSpace(s[start:]))
}

// normalize trims and converts full-width digits to ASCII.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsFunc(s, isFullWidthDigit) {
		return s
	}

	return strings.Map(func(r rune) rune {
		if isFullWidthDigit(r) {
			return '0' + (r - '０')
		}
		return r
	}, s)
}

func isFullWidthDigit(r rune) bool {
	return r >= '０' && r <= '９'
}

var identRegex = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_]*`)

// accessChain splits `name[i][j]...` into the name and its index expressions.
// ok is false unless the brackets consume the whole string.
func accessChain(s string) (name string, indexes []string, ok bool) {
	name = identRegex.FindString(s)
	if name == "" {
		return "", nil, false
	}

	rest := s[len(name):]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := matchClose(rest, 0)
		if end < 0 || rest[end] != ']' {
			return "", nil, false
		}
		indexes = append(indexes, strings.TrimSpace(rest[1:end]))
		rest = rest[end+1:]
	}

	return name, indexes, len(indexes) > 0
}

// isPrimary reports whether s is a bare name, an indexed name, a string
// literal, or a fully parenthesised expression.
func isPrimary(s string) bool {
	if enclosedBy(s, '(') {
		return true
	}
	if _, ok := quoted(s); ok {
		return true
	}
	if identRegex.FindString(s) == s {
		return true
	}
	_, _, ok := accessChain(s)
	return ok
}

// lastRune returns the final rune of s, or utf8.RuneError when s is empty.
func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

// SplitList splits a comma-separated list, ignoring commas nested inside
// brackets or quotes.
func SplitList(s string) []string {
	return splitTopLevel(normalize(s), ',')
}

// IsIdentifier reports whether s is a valid variable name.
func IsIdentifier(s string) bool {
	return s != "" && identRegex.FindString(s) == s
}

// AccessChain splits an indexed target such as `a[i][j]` into its name and
// index expressions.
func AccessChain(s string) (name string, indexes []string, ok bool) {
	return accessChain(normalize(s))
}
