package mdfmt

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
)

type spanKind int

const (
	kindEscape spanKind = iota
	kindHTML
	kindStrikethrough
	kindAutoLink
	kindStrong
	kindEmphasis
	kindLink
	kindImage
	kindCode
	kindLineBreak
	kindCustom
)

// spanMatch is a candidate inline token found in a text run. inner marks
// matches whose [innerStart, innerEnd) range is tokenized into children.
type spanMatch struct {
	start, end           int
	inner                bool
	innerStart, innerEnd int
	kind                 spanKind
	precedence           int
	order                int
	children             []*spanMatch

	delim  byte
	link   *linkTail
	custom *CustomSpan
}

type linkTail struct {
	dest       string
	title      string
	titleDelim byte
	destType   DestType
	label      string
	def        *LinkReferenceDefinition
}

// spanScanner tokenizes inline text with one Syntax and one label table.
type spanScanner struct {
	syntax *Syntax
	defs   map[string]*LinkReferenceDefinition
}

func (s *spanScanner) enabled(name string) bool {
	return s.syntax.hasSpan(name)
}

func (s *spanScanner) tokenize(text string) []Span {
	if text == "" {
		return nil
	}
	var matches []*spanMatch
	for order, rule := range s.syntax.spans {
		for _, m := range rule.find(s, text) {
			if m.precedence == 0 {
				m.precedence = rule.precedence
			}
			m.order = order
			matches = append(matches, m)
		}
	}
	slices.SortStableFunc(matches, func(a, b *spanMatch) int {
		if c := cmp.Compare(a.start, b.start); c != 0 {
			return c
		}
		if c := cmp.Compare(b.end, a.end); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
	var root []*spanMatch
	for _, m := range matches {
		root = insertMatch(root, m)
	}
	return s.build(text, 0, len(text), root)
}

// insertMatch nests m into list, which holds disjoint matches ordered by
// position. A match inside another's content becomes its child; a partial
// overlap keeps whichever match has the higher precedence.
func insertMatch(list []*spanMatch, m *spanMatch) []*spanMatch {
	if len(list) == 0 {
		return append(list, m)
	}
	last := list[len(list)-1]
	switch {
	case m.start >= last.end:
		return append(list, m)
	case m.end <= last.end:
		if last.inner && m.start >= last.innerStart && m.end <= last.innerEnd {
			last.children = insertMatch(last.children, m)
		}
		return list
	default:
		if m.precedence > last.precedence {
			list[len(list)-1] = m
		}
		return list
	}
}

func (s *spanScanner) build(text string, start, end int, matches []*spanMatch) []Span {
	var out []Span
	pos := start
	for _, m := range matches {
		if m.start > pos {
			out = append(out, &RawText{Content: text[pos:m.start]})
		}
		out = append(out, s.makeSpan(text, m))
		pos = m.end
	}
	if pos < end {
		out = append(out, &RawText{Content: text[pos:end]})
	}
	return out
}

func (s *spanScanner) children(text string, m *spanMatch) []Span {
	return s.build(text, m.innerStart, m.innerEnd, m.children)
}

func (s *spanScanner) makeSpan(text string, m *spanMatch) Span {
	switch m.kind {
	case kindEscape:
		return &EscapeSequence{Char: text[m.start+1 : m.end]}
	case kindHTML:
		return &HTMLSpan{Content: text[m.start:m.end]}
	case kindStrikethrough:
		return &Strikethrough{Children: s.children(text, m)}
	case kindAutoLink:
		target := text[m.start+1 : m.end-1]
		return &AutoLink{
			Target: target,
			Mailto: strings.Contains(target, "@") && !strings.Contains(strings.ToLower(target), "mailto"),
		}
	case kindStrong:
		return &Strong{Delimiter: m.delim, Children: s.children(text, m)}
	case kindEmphasis:
		return &Emphasis{Delimiter: m.delim, Children: s.children(text, m)}
	case kindLink:
		t := m.link
		return &Link{
			Children:       s.children(text, m),
			Target:         t.dest,
			Title:          t.title,
			DestType:       t.destType,
			TitleDelimiter: t.titleDelim,
			Label:          t.label,
			Reference:      t.def,
		}
	case kindImage:
		t := m.link
		return &Image{
			Children:       s.children(text, m),
			Src:            t.dest,
			Title:          t.title,
			DestType:       t.destType,
			TitleDelimiter: t.titleDelim,
			Label:          t.label,
			Reference:      t.def,
		}
	case kindCode:
		raw := text[m.innerStart:m.innerEnd]
		return &InlineCode{
			Delimiter:  text[m.start:m.innerStart],
			RawContent: raw,
			Content:    stripCodeContent(raw),
		}
	case kindLineBreak:
		marker := text[m.start : m.end-1]
		return &LineBreak{Marker: marker, Soft: marker != "\\" && len(marker) < 2}
	case kindCustom:
		c := *m.custom
		if m.inner {
			c.Children = s.children(text, m)
		}
		return &c
	default:
		panic("mdfmt: span match without a token kind")
	}
}

func stripCodeContent(raw string) string {
	s := strings.ReplaceAll(raw, "\n", " ")
	if strings.TrimLeft(s, " ") != "" && len(s) >= 2 && s[0] == ' ' && s[len(s)-1] == ' ' {
		s = s[1 : len(s)-1]
	}
	return s
}

// isEscaped reports whether text[i] is preceded by an odd number of
// backslashes.
func isEscaped(text string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && text[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}

func findEscapes(_ *spanScanner, text string) []*spanMatch {
	var out []*spanMatch
	for i := 0; i+1 < len(text); i++ {
		if text[i] != '\\' {
			continue
		}
		if isASCIIPunct(text[i+1]) {
			out = append(out, &spanMatch{start: i, end: i + 2, kind: kindEscape})
		}
		i++
	}
	return out
}

func findStrikethrough(_ *spanScanner, text string) []*spanMatch {
	var out []*spanMatch
	for i := 0; i+1 < len(text); i++ {
		if text[i] != '~' || text[i+1] != '~' || isEscaped(text, i) {
			continue
		}
		// shortest match: the first "~~" after at least one character
		if i+3 > len(text) {
			break
		}
		j := strings.Index(text[i+3:], "~~")
		if j < 0 {
			break
		}
		j += i + 3
		out = append(out, &spanMatch{
			start: i, end: j + 2,
			inner: true, innerStart: i + 2, innerEnd: j,
			kind: kindStrikethrough,
		})
		i = j + 1
	}
	return out
}

var autoLinkPattern = regexp.MustCompile(`\A<(?:[A-Za-z][A-Za-z0-9+.-]{1,31}:[^ <>\x00-\x1f]*|[A-Za-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)*)>`)

// matchAutoLink returns the end of an autolink starting at text[i].
func matchAutoLink(text string, i int) (int, bool) {
	if i >= len(text) || text[i] != '<' {
		return 0, false
	}
	loc := autoLinkPattern.FindStringIndex(text[i:])
	if loc == nil {
		return 0, false
	}
	return i + loc[1], true
}

func findAutoLinks(_ *spanScanner, text string) []*spanMatch {
	var out []*spanMatch
	for i := 0; i < len(text); i++ {
		if text[i] != '<' || isEscaped(text, i) {
			continue
		}
		if end, ok := matchAutoLink(text, i); ok {
			out = append(out, &spanMatch{start: i, end: end, kind: kindAutoLink})
			i = end - 1
		}
	}
	return out
}

const (
	htmlTagName    = `[A-Za-z][A-Za-z0-9-]*`
	htmlAttribute  = `(?:\s+[A-Za-z_:][A-Za-z0-9_.:-]*(?:\s*=\s*(?:[^\s"'=<>` + "`" + `]+|'[^']*'|"[^"]*"))?)`
	htmlOpenTag    = `<` + htmlTagName + htmlAttribute + `*\s*/?>`
	htmlClosingTag = `</` + htmlTagName + `\s*>`
)

var htmlSpanPattern = regexp.MustCompile(`\A(?:` + htmlOpenTag + `|` + htmlClosingTag +
	`|<\?(?s:.*?)\?>|<![A-Z](?s:.*?)>|<!\[CDATA\[(?s:.*?)\]\]>)`)

// matchHTMLSpan returns the end of raw inline HTML starting at text[i].
func matchHTMLSpan(text string, i int) (int, bool) {
	if i >= len(text) || text[i] != '<' {
		return 0, false
	}
	if end, ok := matchHTMLComment(text, i); ok {
		return end, true
	}
	loc := htmlSpanPattern.FindStringIndex(text[i:])
	if loc == nil {
		return 0, false
	}
	return i + loc[1], true
}

// matchHTMLComment matches "<!-- ... -->" where the body does not start
// with ">" or "->", does not contain "--" and does not end with "-".
func matchHTMLComment(text string, i int) (int, bool) {
	rest := text[i:]
	if !strings.HasPrefix(rest, "<!--") {
		return 0, false
	}
	body := rest[4:]
	if strings.HasPrefix(body, ">") || strings.HasPrefix(body, "->") {
		return 0, false
	}
	j := strings.Index(body, "--")
	if j <= 0 || !strings.HasPrefix(body[j:], "-->") || body[j-1] == '-' {
		return 0, false
	}
	return i + 4 + j + 3, true
}

func findHTMLSpans(_ *spanScanner, text string) []*spanMatch {
	var out []*spanMatch
	for i := 0; i < len(text); i++ {
		if text[i] != '<' || isEscaped(text, i) {
			continue
		}
		if end, ok := matchHTMLSpan(text, i); ok {
			out = append(out, &spanMatch{start: i, end: end, kind: kindHTML})
			i = end - 1
		}
	}
	return out
}

// matchCodeSpan finds the closing run for the backtick run of length n at
// text[i]. It returns the start of the closing run.
func matchCodeSpan(text string, i, n int) (int, bool) {
	for j := i + n; j < len(text); {
		if text[j] != '`' {
			j++
			continue
		}
		k := j
		for k < len(text) && text[k] == '`' {
			k++
		}
		if k-j == n {
			return j, true
		}
		j = k
	}
	return 0, false
}

func backtickRun(text string, i int) int {
	n := 0
	for i+n < len(text) && text[i+n] == '`' {
		n++
	}
	return n
}

func findCodeSpans(_ *spanScanner, text string) []*spanMatch {
	var out []*spanMatch
	for i := 0; i < len(text); {
		if text[i] != '`' {
			i++
			continue
		}
		n := backtickRun(text, i)
		if isEscaped(text, i) {
			// the escaped backtick is literal; the rest of the run may open
			i++
			continue
		}
		close, ok := matchCodeSpan(text, i, n)
		if !ok {
			i += n
			continue
		}
		out = append(out, &spanMatch{
			start: i, end: close + n,
			innerStart: i + n, innerEnd: close,
			kind: kindCode,
		})
		i = close + n
	}
	return out
}

func findLineBreaks(_ *spanScanner, text string) []*spanMatch {
	var out []*spanMatch
	for j := 0; j < len(text); j++ {
		if text[j] != '\n' {
			continue
		}
		start := j
		if j > 0 && text[j-1] == '\\' && !isEscaped(text, j-1) {
			start = j - 1
		} else {
			for start > 0 && text[start-1] == ' ' {
				start--
			}
		}
		out = append(out, &spanMatch{start: start, end: j + 1, kind: kindLineBreak})
	}
	return out
}
