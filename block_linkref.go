package mdfmt

import (
	"strings"
)

const maxLabelLength = 999

func parseLinkRefDefs(p *blockParser, r *LineReader) Block {
	var defs []*LinkReferenceDefinition
	for {
		def, n := matchLinkRefDef(r.lines[r.pos:])
		if def == nil {
			break
		}
		defs = append(defs, def)
		r.pos += n
	}
	if len(defs) == 0 {
		return nil
	}
	p.define(defs)
	return &LinkReferenceDefinitionBlock{Definitions: defs}
}

// matchLinkRefDef parses one definition at the start of lines and reports
// how many lines it spans.
func matchLinkRefDef(lines []string) (*LinkReferenceDefinition, int) {
	if len(lines) == 0 || leadingSpaces(lines[0]) > 3 {
		return nil, 0
	}
	// a definition never spans a blank line
	end := 1
	for end < len(lines) && !isBlank(lines[end]) {
		end++
	}
	text := strings.Join(lines[:end], "")
	i := leadingSpaces(text)

	label, i, ok := scanLinkLabel(text, i)
	if !ok || i >= len(text) || text[i] != ':' {
		return nil, 0
	}
	i = skipSpaceNewline(text, i+1)

	dest, kind, i, ok := scanLinkDest(text, i)
	if !ok || (dest == "" && kind == DestURI) {
		return nil, 0
	}
	def := &LinkReferenceDefinition{Label: label, Dest: dest, DestType: kind}

	// the definition may end right after the destination
	noTitleEnd := -1
	if j := skipSpaceTab(text, i); j >= len(text) || text[j] == '\n' {
		noTitleEnd = min(j+1, len(text))
	}
	if j := skipSpaceNewline(text, i); j > i && j < len(text) {
		if title, delim, k, ok := scanLinkTitle(text, j); ok {
			k = skipSpaceTab(text, k)
			if k >= len(text) || text[k] == '\n' {
				def.Title = title
				def.TitleDelimiter = delim
				return def, strings.Count(text[:min(k+1, len(text))], "\n")
			}
		}
	}
	if noTitleEnd < 0 {
		return nil, 0
	}
	return def, strings.Count(text[:noTitleEnd], "\n")
}

// scanLinkLabel scans "[label]" at text[i]. It returns the raw label and the
// position after the closing bracket.
func scanLinkLabel(text string, i int) (string, int, bool) {
	if i >= len(text) || text[i] != '[' {
		return "", i, false
	}
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '[':
			return "", i, false
		case ']':
			label := text[i+1 : j]
			if len(label) > maxLabelLength || strings.TrimSpace(label) == "" {
				return "", i, false
			}
			return label, j + 1, true
		}
	}
	return "", i, false
}

// scanLinkDest scans a destination written in angle brackets or as a run
// of non-space characters with balanced parentheses.
func scanLinkDest(text string, i int) (string, DestType, int, bool) {
	if i >= len(text) {
		return "", DestURI, i, false
	}
	if text[i] == '<' {
		for j := i + 1; j < len(text); j++ {
			switch text[j] {
			case '\\':
				j++
			case '\n', '<':
				return "", DestAngleURI, i, false
			case '>':
				return text[i+1 : j], DestAngleURI, j + 1, true
			}
		}
		return "", DestAngleURI, i, false
	}
	depth := 0
	j := i
loop:
	for ; j < len(text); j++ {
		c := text[j]
		switch {
		case c == '\\' && j+1 < len(text) && isASCIIPunct(text[j+1]):
			j++
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				break loop
			}
			depth--
		case c <= ' ' || c == 0x7f:
			break loop
		}
	}
	if depth != 0 {
		return "", DestURI, i, false
	}
	return text[i:j], DestURI, j, true
}

// scanLinkTitle scans a quoted or parenthesized title at text[i]. It
// returns the raw title, its opening delimiter and the position after the
// closing delimiter.
func scanLinkTitle(text string, i int) (string, byte, int, bool) {
	if i >= len(text) {
		return "", 0, i, false
	}
	open := text[i]
	closing := open
	switch open {
	case '"', '\'':
	case '(':
		closing = ')'
	default:
		return "", 0, i, false
	}
	for j := i + 1; j < len(text); j++ {
		switch c := text[j]; {
		case c == '\\':
			j++
		case c == closing:
			return text[i+1 : j], open, j + 1, true
		case open == '(' && c == '(':
			return "", 0, i, false
		case c == '\n' && j+1 < len(text) && isBlank(lineAt(text, j+1)):
			return "", 0, i, false
		}
	}
	return "", 0, i, false
}

func lineAt(text string, i int) string {
	if j := strings.IndexByte(text[i:], '\n'); j >= 0 {
		return text[i : i+j+1]
	}
	return text[i:]
}

func skipSpaceTab(text string, i int) int {
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return i
}

// skipSpaceNewline skips spaces and tabs with at most one line ending.
func skipSpaceNewline(text string, i int) int {
	i = skipSpaceTab(text, i)
	if i < len(text) && text[i] == '\n' {
		i = skipSpaceTab(text, i+1)
	}
	return i
}
