package mdfmt

import (
	"strings"
)

func parseBlankLine(_ *blockParser, r *LineReader) Block {
	line, ok := r.Peek()
	if !ok || !isBlank(line) {
		return nil
	}
	r.Next()
	return &BlankLine{}
}

func isThematicBreak(line string) bool {
	indent := leadingSpaces(line)
	if indent > 3 {
		return false
	}
	var c byte
	count := 0
	for i := indent; i < len(line); i++ {
		switch ch := line[i]; ch {
		case ' ', '\t', '\n':
		case '-', '_', '*':
			if c == 0 {
				c = ch
			}
			if ch != c {
				return false
			}
			count++
		default:
			return false
		}
	}
	return count >= 3
}

func parseThematicBreak(_ *blockParser, r *LineReader) Block {
	line, ok := r.Peek()
	if !ok || !isThematicBreak(line) {
		return nil
	}
	r.Next()
	return &ThematicBreak{Line: strings.TrimSuffix(line, "\n")}
}

// splitATXHeading parses an ATX heading line into its level, text and
// closing sequence.
func splitATXHeading(line string) (level int, text, closing string, ok bool) {
	indent := leadingSpaces(line)
	if indent > 3 {
		return 0, "", "", false
	}
	s := strings.TrimSuffix(line[indent:], "\n")
	for level < len(s) && s[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", "", false
	}
	rest := s[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", "", false
	}
	text = strings.Trim(rest, " \t")
	end := len(text)
	for end > 0 && text[end-1] == '#' {
		end--
	}
	if end < len(text) && (end == 0 || text[end-1] == ' ' || text[end-1] == '\t') {
		closing = text[end:]
		text = strings.TrimRight(text[:end], " \t")
	}
	return level, text, closing, true
}

func isATXHeading(line string) bool {
	_, _, _, ok := splitATXHeading(line)
	return ok
}

func parseATXHeading(p *blockParser, r *LineReader) Block {
	line, ok := r.Peek()
	if !ok {
		return nil
	}
	level, text, closing, ok := splitATXHeading(line)
	if !ok {
		return nil
	}
	r.Next()
	h := &Heading{Level: level, ClosingSequence: closing}
	p.inline(&h.Children, text)
	return h
}

// fenceOpen recognizes an opening code fence.
func fenceOpen(line string) (indent int, delim, info string, ok bool) {
	indent = leadingSpaces(line)
	if indent > 3 || indent >= len(line) {
		return 0, "", "", false
	}
	c := line[indent]
	if c != '`' && c != '~' {
		return 0, "", "", false
	}
	n := indent
	for n < len(line) && line[n] == c {
		n++
	}
	if n-indent < 3 {
		return 0, "", "", false
	}
	info = strings.TrimSuffix(line[n:], "\n")
	if c == '`' && strings.IndexByte(info, '`') >= 0 {
		return 0, "", "", false
	}
	return indent, line[indent:n], info, true
}

func isFenceStart(line string) bool {
	_, _, _, ok := fenceOpen(line)
	return ok
}

// closesFence reports whether line closes a fence opened with delim.
func closesFence(line, delim string) bool {
	indent := leadingSpaces(line)
	if indent > 3 {
		return false
	}
	s := strings.TrimRight(line[indent:], " \t\n")
	if len(s) < len(delim) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != delim[0] {
			return false
		}
	}
	return true
}

func parseCodeFence(_ *blockParser, r *LineReader) Block {
	line, ok := r.Peek()
	if !ok {
		return nil
	}
	indent, delim, info, ok := fenceOpen(line)
	if !ok {
		return nil
	}
	r.Next()
	var b strings.Builder
	for {
		line, ok := r.Next()
		if !ok || closesFence(line, delim) {
			break
		}
		strip := min(leadingSpaces(line), indent)
		b.WriteString(line[strip:])
	}
	return &CodeFence{
		Delimiter:   delim,
		InfoString:  info,
		Indentation: indent,
		Content:     b.String(),
	}
}

// stripCodeIndent removes four columns of indentation from line.
func stripCodeIndent(line string) (string, bool) {
	w := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			w++
		case '\t':
			next := w + 4 - w%4
			if next > 4 {
				return strings.Repeat(" ", next-4) + line[i+1:], true
			}
			w = next
		default:
			return "", false
		}
		if w == 4 {
			return line[i+1:], true
		}
	}
	return "", false
}

func parseBlockCode(_ *blockParser, r *LineReader) Block {
	line, ok := r.Peek()
	if !ok || isBlank(line) {
		return nil
	}
	if _, ok := stripCodeIndent(line); !ok {
		return nil
	}
	var content []string
	trailingBlank := 0
	for {
		line, ok := r.Peek()
		if !ok {
			break
		}
		if isBlank(line) {
			stripped, ok := stripCodeIndent(line)
			if !ok {
				stripped = "\n"
			}
			content = append(content, stripped)
			trailingBlank++
			r.Next()
			continue
		}
		stripped, ok := stripCodeIndent(line)
		if !ok {
			break
		}
		content = append(content, stripped)
		trailingBlank = 0
		r.Next()
	}
	for range trailingBlank {
		r.Backstep()
	}
	content = content[:len(content)-trailingBlank]
	return &BlockCode{Content: strings.Join(content, "")}
}
