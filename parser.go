package mdfmt

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseOption configures a Parser.
type ParseOption func(*parseConfig)

type parseConfig struct {
	syntax      *Syntax
	frontMatter bool
}

// WithSyntax parses with a copy of s instead of DefaultSyntax.
func WithSyntax(s *Syntax) ParseOption {
	return func(cfg *parseConfig) {
		cfg.syntax = s
	}
}

// WithFrontMatter enables recognition of a leading front matter block.
func WithFrontMatter(enabled bool) ParseOption {
	return func(cfg *parseConfig) {
		cfg.frontMatter = enabled
	}
}

// Parser turns Markdown lines into a Document. A Parser never changes after
// NewParser returns and may be shared between goroutines.
type Parser struct {
	syntax      *Syntax
	frontMatter bool
}

var defaultParser = &Parser{syntax: DefaultSyntax()}

// NewParser builds a Parser from opts.
func NewParser(opts ...ParseOption) (*Parser, error) {
	cfg := parseConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	syntax := cfg.syntax
	if syntax == nil {
		syntax = DefaultSyntax()
	} else {
		syntax = syntax.Clone()
	}
	for _, r := range syntax.blocks {
		if r.parse == nil {
			return nil, fmt.Errorf("new parser: block rule %q: %w", r.name, ErrInvalidExtension)
		}
	}
	for _, r := range syntax.spans {
		if r.find == nil {
			return nil, fmt.Errorf("new parser: span rule %q: %w", r.name, ErrInvalidExtension)
		}
	}
	return &Parser{syntax: syntax, frontMatter: cfg.frontMatter}, nil
}

// Parse parses lines with the default syntax.
func Parse(lines []string) *Document {
	return defaultParser.Parse(lines)
}

// ParseString splits src into lines and parses them with the default syntax.
func ParseString(src string) *Document {
	return defaultParser.Parse(SplitLines(src))
}

// ParseString splits src into lines and parses them.
func (p *Parser) ParseString(src string) *Document {
	return p.Parse(SplitLines(src))
}

// SplitLines splits src into lines terminated by a single "\n". A final
// unterminated line gets one; "\r\n" becomes "\n".
func SplitLines(src string) []string {
	if src == "" {
		return nil
	}
	src = strings.ReplaceAll(src, "\r\n", "\n")
	lines := strings.SplitAfter(src, "\n")
	if last := lines[len(lines)-1]; last == "" {
		lines = lines[:len(lines)-1]
	} else if !strings.HasSuffix(last, "\n") {
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}

// Parse parses a document. It never fails: any line no rule accepts becomes
// paragraph text.
func (p *Parser) Parse(lines []string) *Document {
	lines = normalizeLines(lines)
	doc := &Document{Definitions: map[string]*LinkReferenceDefinition{}}
	bp := &blockParser{syntax: p.syntax, doc: doc}
	bp.interrupters = bp.collectInterrupters()
	if p.frontMatter {
		if fm, n := detectFrontMatter(lines); fm != nil {
			doc.FrontMatter = fm
			doc.Children = append(doc.Children, fm)
			lines = lines[n:]
		}
	}
	doc.Children = append(doc.Children, bp.parseBlocks(lines)...)

	// Labels are known for the whole document before any inline content is
	// tokenized, so references may point forward.
	sc := &spanScanner{syntax: p.syntax, defs: doc.Definitions}
	for _, pend := range bp.pending {
		*pend.dst = sc.tokenize(pend.text)
	}
	return doc
}

func normalizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.ReplaceAll(line, "\r\n", "\n")
		for len(line) > 0 {
			i := strings.IndexByte(line, '\n')
			if i < 0 {
				out = append(out, line+"\n")
				break
			}
			out = append(out, line[:i+1])
			line = line[i+1:]
		}
	}
	return out
}

type pendingSpans struct {
	dst  *[]Span
	text string
}

type blockParser struct {
	syntax       *Syntax
	doc          *Document
	pending      []pendingSpans
	interrupters []func(string) bool
}

func (p *blockParser) collectInterrupters() []func(string) bool {
	var out []func(string) bool
	for _, r := range p.syntax.blocks {
		if r.interrupts != nil {
			out = append(out, r.interrupts)
		}
	}
	return out
}

// inline records text to be tokenized into *dst once all link reference
// definitions are known.
func (p *blockParser) inline(dst *[]Span, text string) {
	p.pending = append(p.pending, pendingSpans{dst: dst, text: text})
}

func (p *blockParser) define(defs []*LinkReferenceDefinition) {
	for _, d := range defs {
		key := normalizeLabel(d.Label)
		if _, ok := p.doc.Definitions[key]; !ok {
			p.doc.Definitions[key] = d
		}
	}
}

func (p *blockParser) parseBlocks(lines []string) []Block {
	r := newLineReader(lines)
	var out []Block
	for !r.Done() {
		out = append(out, p.parseBlock(r))
	}
	return out
}

func (p *blockParser) parseBlock(r *LineReader) Block {
	for _, rule := range p.syntax.blocks {
		start := r.pos
		if b := rule.parse(p, r); b != nil && r.pos > start {
			return b
		}
		r.pos = start
	}
	return p.parseParagraph(r)
}

// interruptsParagraph reports whether line ends an open paragraph.
func (p *blockParser) interruptsParagraph(line string) bool {
	if isBlank(line) {
		return true
	}
	for _, f := range p.interrupters {
		if f(line) {
			return true
		}
	}
	return false
}

func (p *blockParser) parseParagraph(r *LineReader) Block {
	first, _ := r.Next()
	lines := []string{first}
	for {
		line, ok := r.Peek()
		if !ok {
			break
		}
		if level, ok := setextUnderline(line); ok {
			r.Next()
			h := &SetextHeading{Level: level, UnderlineLength: len(strings.TrimSpace(line))}
			p.inline(&h.Children, paragraphText(lines))
			return h
		}
		if p.interruptsParagraph(line) {
			break
		}
		lines = append(lines, line)
		r.Next()
	}
	para := &Paragraph{}
	p.inline(&para.Children, paragraphText(lines))
	return para
}

func paragraphText(lines []string) string {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(strings.TrimLeftFunc(line, unicode.IsSpace))
	}
	return strings.TrimSpace(b.String())
}

func setextUnderline(line string) (int, bool) {
	indent := leadingSpaces(line)
	if indent > 3 {
		return 0, false
	}
	s := strings.TrimRight(line[indent:], " \t\n")
	if s == "" {
		return 0, false
	}
	c := s[0]
	if c != '=' && c != '-' {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != c {
			return 0, false
		}
	}
	if c == '=' {
		return 1, true
	}
	return 2, true
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func leadingSpaces(line string) int {
	n := 0
	for n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

// indentWidth measures leading whitespace with tab stops of four.
func indentWidth(line string) int {
	w := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ':
			w++
		case '\t':
			w += 4 - w%4
		default:
			return w
		}
	}
	return w
}

// expandIndent rewrites leading tabs as spaces.
func expandIndent(line string) string {
	if !strings.HasPrefix(strings.TrimLeft(line, " "), "\t") {
		return line
	}
	w := 0
	i := 0
	for ; i < len(line); i++ {
		if line[i] == ' ' {
			w++
		} else if line[i] == '\t' {
			w += 4 - w%4
		} else {
			break
		}
	}
	return strings.Repeat(" ", w) + line[i:]
}
