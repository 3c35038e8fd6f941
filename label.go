package mdfmt

import (
	"strings"

	"golang.org/x/text/cases"
)

// normalizeLabel maps a link label to its lookup key: surrounding
// whitespace is trimmed, inner whitespace runs become one space and the
// result is Unicode case folded, so "ẞ" and "SS" share a key.
func normalizeLabel(s string) string {
	s = strings.Trim(s, " \t\n")
	var b strings.Builder
	b.Grow(len(s))
	space := false
	ascii := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ' ', '\t', '\n', '\r':
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c >= 0x80 {
			ascii = false
		}
		b.WriteByte(c)
	}
	if ascii {
		return b.String()
	}
	// cases.Caser holds state and is not safe for concurrent use.
	return cases.Fold().String(b.String())
}
