package mdfmt

import (
	"fmt"
	"iter"
	"strings"
)

// Renderer turns a token tree back into Markdown. With a zero line length
// it reproduces the source formatting; otherwise paragraphs, setext heading
// text and link reference definitions are reflowed. A Renderer is
// immutable and may be shared between goroutines.
type Renderer struct {
	maxLineLength int
	measure       func(string) int
}

var preserveRenderer = &Renderer{measure: mustMeasure(WidthRunes)}

func mustMeasure(m WidthMode) func(string) int {
	f, ok := m.measure()
	if !ok {
		panic(fmt.Sprintf("mdfmt: unknown width mode %v", m))
	}
	return f
}

// NewRenderer builds a Renderer from opts.
func NewRenderer(opts ...RenderOption) (*Renderer, error) {
	cfg := renderConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.maxLineLength < 0 {
		return nil, fmt.Errorf("new renderer: max line length %d is negative", cfg.maxLineLength)
	}
	measure, ok := cfg.widthMode.measure()
	if !ok {
		return nil, fmt.Errorf("new renderer: unknown width mode %v", cfg.widthMode)
	}
	return &Renderer{maxLineLength: cfg.maxLineLength, measure: measure}, nil
}

// RenderMarkdown renders tok keeping the source formatting.
func RenderMarkdown(tok Token) string {
	return preserveRenderer.Render(tok)
}

// Reflow renders tok with wrap-eligible text packed into lines of at most
// maxLineLength code points where possible. It panics if maxLineLength is
// not positive.
func Reflow(tok Token, maxLineLength int) string {
	if maxLineLength < 1 {
		panic(fmt.Sprintf("mdfmt: reflow width %d is not positive", maxLineLength))
	}
	r := &Renderer{maxLineLength: maxLineLength, measure: preserveRenderer.measure}
	return r.Render(tok)
}

// Render renders tok. Every output line ends with a newline.
func (r *Renderer) Render(tok Token) string {
	var b strings.Builder
	for line := range r.RenderLines(tok) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderLines yields the output lines of tok without line terminators.
func (r *Renderer) RenderLines(tok Token) iter.Seq[string] {
	return func(yield func(string) bool) {
		var lines []string
		switch t := tok.(type) {
		case Block:
			lines = r.blockLines(t, r.maxLineLength)
		case Span:
			lines = r.spanLines([]Span{t}, r.maxLineLength)
		default:
			panic(fmt.Sprintf("mdfmt: render of unknown token %T", tok))
		}
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

func (r *Renderer) blocksLines(blocks []Block, width int) []string {
	var out []string
	for _, b := range blocks {
		out = append(out, r.blockLines(b, width)...)
	}
	return out
}

// childWidth is the budget left for nested content after a container prefix
// of n columns. It never drops below one so reflow stays enabled.
func childWidth(width, n int) int {
	if width == 0 {
		return 0
	}
	return max(width-n, 1)
}

func (r *Renderer) blockLines(b Block, width int) []string {
	switch t := b.(type) {
	case *Document:
		return r.blocksLines(t.Children, width)
	case *FrontMatter:
		return splitContent(t.Raw)
	case *Paragraph:
		return r.spanLines(t.Children, width)
	case *Heading:
		// ATX headings are never wrapped
		line := strings.Repeat("#", t.Level)
		if text := r.firstLine(t.Children); text != "" {
			line += " " + text
		}
		if t.ClosingSequence != "" {
			line += " " + t.ClosingSequence
		}
		return []string{line}
	case *SetextHeading:
		underline := "="
		if t.Level == 2 {
			underline = "-"
		}
		lines := r.spanLines(t.Children, width)
		return append(lines, strings.Repeat(underline, t.UnderlineLength))
	case *Quote:
		lines := r.blocksLines(t.Children, childWidth(width, 2))
		if len(lines) == 0 {
			lines = []string{""}
		}
		return prefixLines(lines, "> ", "> ")
	case *List:
		var out []string
		for _, item := range t.Items {
			out = append(out, r.blockLines(item, width)...)
		}
		return out
	case *ListItem:
		indent := len(t.Leader) + 1
		lines := r.blocksLines(t.Children, childWidth(width, indent))
		if len(lines) == 0 {
			lines = []string{""}
		}
		return prefixLines(lines, t.Leader+" ", strings.Repeat(" ", indent))
	case *BlockCode:
		return prefixLines(splitContent(t.Content), "    ", "    ")
	case *CodeFence:
		indent := strings.Repeat(" ", t.Indentation)
		out := []string{indent + t.Delimiter + t.InfoString}
		out = append(out, prefixLines(splitContent(t.Content), indent, indent)...)
		return append(out, indent+t.Delimiter)
	case *Table:
		return r.tableLines(t)
	case *ThematicBreak:
		return []string{t.Line}
	case *HTMLBlock:
		return strings.Split(t.Content, "\n")
	case *LinkReferenceDefinitionBlock:
		var out []string
		for _, def := range t.Definitions {
			out = append(out, r.spanLines([]Span{def}, width)...)
		}
		return out
	case *BlankLine:
		return []string{""}
	case *CustomBlock:
		if t.render != nil {
			return t.render(t.Lines)
		}
		return splitContent(strings.Join(t.Lines, ""))
	default:
		panic(fmt.Sprintf("mdfmt: render of unknown block %T", b))
	}
}

// splitContent splits newline terminated text into lines. Empty text has
// no lines.
func splitContent(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// prefixLines prepends first to the first line and following to the rest.
// A line that ends up whitespace only becomes empty.
func prefixLines(lines []string, first, following string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		p := following
		if i == 0 {
			p = first
		}
		l := p + line
		if strings.TrimSpace(l) == "" {
			l = ""
		}
		out[i] = l
	}
	return out
}

func (r *Renderer) firstLine(spans []Span) string {
	lines := r.spanLines(spans, 0)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// spanLines renders inline content. With width 0 particles are joined as
// written and split at their newlines; otherwise words are packed greedily.
func (r *Renderer) spanLines(spans []Span, width int) []string {
	if width == 0 {
		return preserveSpanLines(spans)
	}
	var out []string
	var cur string
	place := func(word string) {
		switch {
		case cur == "":
			cur = word
		case r.measure(cur)+1+r.measure(word) <= width:
			cur += " " + word
		default:
			out = append(out, cur)
			cur = word
		}
	}
	for word := range words(SpanParticles(spans)) {
		if word == "\n" {
			out = append(out, cur)
			cur = ""
			continue
		}
		// an atomic word with an embedded newline, such as a code span
		// written across lines, keeps its line structure
		segs := strings.Split(word, "\n")
		if segs[0] != "" {
			place(segs[0])
		}
		for _, seg := range segs[1:] {
			out = append(out, cur)
			cur = seg
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}

func preserveSpanLines(spans []Span) []string {
	var out []string
	var cur strings.Builder
	for p := range SpanParticles(spans) {
		if strings.IndexByte(p.Text, '\n') < 0 {
			cur.WriteString(p.Text)
			continue
		}
		parts := strings.Split(p.Text, "\n")
		cur.WriteString(parts[0])
		out = append(out, cur.String())
		out = append(out, parts[1:len(parts)-1]...)
		cur.Reset()
		cur.WriteString(parts[len(parts)-1])
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// words groups particles into unbreakable words. Wrap-eligible particles
// break at whitespace, other particles glue to their neighbours. A hard
// line break yields its marker attached to the preceding word followed by a
// lone "\n".
func words(particles iter.Seq[Particle]) iter.Seq[string] {
	return func(yield func(string) bool) {
		var word string
		for p := range particles {
			if p.Wrap {
				for i, item := range splitBreakable(p.Text) {
					if i == 0 {
						word += item
						continue
					}
					if word != "" && !yield(word) {
						return
					}
					word = item
				}
				continue
			}
			if lb, ok := p.Token.(*LineBreak); ok && !lb.Soft {
				if !yield(word+strings.TrimSuffix(p.Text, "\n")) || !yield("\n") {
					return
				}
				word = ""
				continue
			}
			word += p.Text
		}
		if word != "" {
			yield(word)
		}
	}
}

// splitBreakable splits s at runs of breakable whitespace. Like a regexp
// split, leading or trailing whitespace produces an empty first or last
// item.
func splitBreakable(s string) []string {
	var out []string
	start := 0
	inSpace := false
	for i, r := range s {
		switch {
		case isBreakable(r) && !inSpace:
			out = append(out, s[start:i])
			inSpace = true
		case !isBreakable(r) && inSpace:
			start = i
			inSpace = false
		}
	}
	if inSpace {
		return append(out, "")
	}
	return append(out, s[start:])
}

func (r *Renderer) tableLines(t *Table) []string {
	rows := make([][]string, 0, len(t.Rows)+1)
	rows = append(rows, r.cellTexts(t.Header))
	for _, row := range t.Rows {
		rows = append(rows, r.cellTexts(row))
	}
	const minColumnWidth = 3
	var widths []int
	for _, row := range rows {
		for len(widths) < len(row) {
			widths = append(widths, minColumnWidth)
		}
		for i, text := range row {
			widths[i] = max(widths[i], r.measure(text))
		}
	}
	align := func(i int) Align {
		if i < len(t.ColumnAlign) {
			return t.ColumnAlign[i]
		}
		return AlignNone
	}
	sep := make([]string, len(widths))
	for i, w := range widths {
		switch align(i) {
		case AlignCenter:
			sep[i] = ":" + strings.Repeat("-", w-2) + ":"
		case AlignRight:
			sep[i] = strings.Repeat("-", w-1) + ":"
		default:
			sep[i] = strings.Repeat("-", w)
		}
	}
	line := func(cells []string) string {
		padded := make([]string, len(widths))
		for i, w := range widths {
			var text string
			if i < len(cells) {
				text = cells[i]
			}
			padded[i] = padText(text, w, align(i), r.measure)
		}
		return "| " + strings.Join(padded, " | ") + " |"
	}
	out := make([]string, 0, len(rows)+1)
	out = append(out, line(rows[0]), "| "+strings.Join(sep, " | ")+" |")
	for _, row := range rows[1:] {
		out = append(out, line(row))
	}
	return out
}

func (r *Renderer) cellTexts(row *TableRow) []string {
	if row == nil {
		return nil
	}
	texts := make([]string, len(row.Cells))
	for i, c := range row.Cells {
		texts[i] = r.firstLine(c.Children)
	}
	return texts
}
