package mdfmt

import (
	"strconv"
	"strings"
)

// quoteContent strips a block quote marker ("> ") from line.
func quoteContent(line string) (string, bool) {
	indent := leadingSpaces(line)
	if indent > 3 || indent >= len(line) || line[indent] != '>' {
		return "", false
	}
	rest := line[indent+1:]
	if strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "\t") {
		rest = rest[1:]
	}
	return rest, true
}

func isQuoteStart(line string) bool {
	_, ok := quoteContent(line)
	return ok
}

func parseQuote(p *blockParser, r *LineReader) Block {
	line, ok := r.Peek()
	if !ok {
		return nil
	}
	first, ok := quoteContent(line)
	if !ok {
		return nil
	}
	r.Next()
	inner := []string{first}
	var track paragraphTracker
	track.feed(first)
	for {
		line, ok := r.Peek()
		if !ok {
			break
		}
		if content, ok := quoteContent(line); ok {
			inner = append(inner, content)
			track.feed(content)
			r.Next()
			continue
		}
		if !track.open || p.interruptsParagraph(line) {
			break
		}
		// lazy continuation of the paragraph left open inside the quote
		inner = append(inner, line)
		r.Next()
	}
	return &Quote{Children: p.parseBlocks(inner)}
}

// paragraphTracker follows the lines fed to a container and reports
// whether a paragraph is still open at the end, which is what allows a
// lazy continuation line to join it.
type paragraphTracker struct {
	fence string
	open  bool
}

func (t *paragraphTracker) feed(line string) {
	if t.fence != "" {
		if closesFence(stripContainerMarkers(line), t.fence) {
			t.fence = ""
		}
		t.open = false
		return
	}
	rest := stripContainerMarkers(line)
	switch {
	case isBlank(rest):
		t.open = false
	case isFenceStart(rest):
		_, delim, _, _ := fenceOpen(rest)
		t.fence = delim
		t.open = false
	case !t.open && indentWidth(rest) >= 4:
	case isATXHeading(rest), isThematicBreak(rest):
		t.open = false
	case t.open && setextLevel(rest) == 1:
		t.open = false
	default:
		t.open = true
	}
}

func setextLevel(line string) int {
	level, _ := setextUnderline(line)
	return level
}

// stripContainerMarkers removes nested quote and list markers from the
// start of line.
func stripContainerMarkers(line string) string {
	for {
		if rest, ok := quoteContent(line); ok {
			line = rest
			continue
		}
		if m, ok := parseListMarker(line); ok && !m.empty && !isThematicBreak(line) {
			line = line[m.contentStart:]
			continue
		}
		return line
	}
}

type listMarker struct {
	indent       int
	leader       string
	ordered      bool
	delim        byte
	start        int
	contentStart int
	empty        bool
}

func (m listMarker) sameType(o listMarker) bool {
	return m.ordered == o.ordered && m.delim == o.delim
}

// parseListMarker recognizes a list item marker at the start of line.
func parseListMarker(line string) (listMarker, bool) {
	var m listMarker
	m.indent = leadingSpaces(line)
	if m.indent > 3 || m.indent >= len(line) {
		return m, false
	}
	i := m.indent
	switch c := line[i]; {
	case c == '-' || c == '+' || c == '*':
		m.delim = c
		i++
	case '0' <= c && c <= '9':
		j := i
		for j < len(line) && j-i < 10 && '0' <= line[j] && line[j] <= '9' {
			j++
		}
		if j-i > 9 || j >= len(line) || (line[j] != '.' && line[j] != ')') {
			return m, false
		}
		m.ordered = true
		m.start, _ = strconv.Atoi(line[i:j])
		m.delim = line[j]
		i = j + 1
	default:
		return m, false
	}
	m.leader = line[m.indent:i]
	rest := line[i:]
	if isBlank(rest) {
		m.empty = true
		m.contentStart = i + 1
		return m, true
	}
	if rest[0] != ' ' && rest[0] != '\t' {
		return m, false
	}
	spaces := 0
	for spaces < len(rest) && (rest[spaces] == ' ' || rest[spaces] == '\t') {
		spaces++
	}
	if spaces > 4 {
		spaces = 1
	}
	m.contentStart = i + spaces
	return m, true
}

// listInterrupts reports whether line starts a list item that may end a
// paragraph: a non-empty bullet item or an ordered item numbered 1.
func listInterrupts(line string) bool {
	m, ok := parseListMarker(line)
	if !ok || m.empty || isThematicBreak(line) {
		return false
	}
	return !m.ordered || m.start == 1
}

func parseList(p *blockParser, r *LineReader) Block {
	line, ok := r.Peek()
	if !ok || isThematicBreak(line) {
		return nil
	}
	first, ok := parseListMarker(line)
	if !ok {
		return nil
	}
	list := &List{Ordered: first.ordered, Start: first.start}
	for {
		line, ok := r.Peek()
		if !ok || isThematicBreak(line) {
			break
		}
		m, ok := parseListMarker(line)
		if !ok || !m.sameType(first) {
			break
		}
		r.Next()
		lines, blanks := p.readListItem(r, line, m)
		// blank lines between two items belong to the first one
		if next, ok := r.PeekAt(blanks); ok && blanks > 0 && !isThematicBreak(next) {
			if nm, ok := parseListMarker(next); ok && nm.sameType(first) {
				for range blanks {
					blank, _ := r.Next()
					lines = append(lines, blank)
				}
			}
		}
		item := &ListItem{Leader: m.leader, Indentation: m.contentStart}
		item.Children = p.parseBlocks(lines)
		for _, c := range item.Children {
			if _, ok := c.(*BlankLine); ok {
				list.Loose = true
			}
		}
		list.Items = append(list.Items, item)
	}
	return list
}

// readListItem consumes the lines of one item after its marker line. It
// returns the item content lines and the number of trailing blank lines it
// left unconsumed.
func (p *blockParser) readListItem(r *LineReader, line string, m listMarker) ([]string, int) {
	var lines []string
	var track paragraphTracker
	if !m.empty {
		lines = append(lines, expandIndent(line[m.contentStart:]))
		track.feed(lines[0])
	}
	blanks := 0
	for {
		next, ok := r.Peek()
		if !ok {
			break
		}
		if isBlank(next) {
			if len(lines) == 0 {
				break
			}
			lines = append(lines, next)
			blanks++
			track.feed(next)
			r.Next()
			continue
		}
		expanded := expandIndent(next)
		if leadingSpaces(expanded) >= m.contentStart {
			lines = append(lines, expanded[m.contentStart:])
			blanks = 0
			track.feed(expanded[m.contentStart:])
			r.Next()
			continue
		}
		if blanks > 0 || !track.open {
			break
		}
		if _, ok := parseListMarker(next); ok || p.interruptsParagraph(next) {
			break
		}
		// lazy continuation
		lines = append(lines, next)
		r.Next()
	}
	for range blanks {
		r.Backstep()
	}
	return lines[:len(lines)-blanks], blanks
}
