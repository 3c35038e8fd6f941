package mdfmt

import (
	"fmt"
	"html"
	"iter"
	"strings"
)

// Token is a node of a parsed Markdown document. The set of implementations
// is closed: every Token is either a Block or a Span defined in this package.
type Token interface {
	token()
}

// Block is a token spanning one or more whole source lines.
type Block interface {
	Token
	block()
}

// DestType classifies how a link or image destination was written.
type DestType int

const (
	// DestURI is an inline destination: [text](dest).
	DestURI DestType = iota
	// DestAngleURI is an inline destination in angle brackets: [text](<dest>).
	DestAngleURI
	// DestFull is a full reference: [text][label].
	DestFull
	// DestCollapsed is a collapsed reference: [text][].
	DestCollapsed
	// DestShortcut is a shortcut reference: [text].
	DestShortcut
)

func (d DestType) String() string {
	switch d {
	case DestURI:
		return "uri"
	case DestAngleURI:
		return "angle_uri"
	case DestFull:
		return "full"
	case DestCollapsed:
		return "collapsed"
	case DestShortcut:
		return "shortcut"
	default:
		return fmt.Sprintf("DestType(%d)", int(d))
	}
}

// Align is the alignment of a table column.
type Align int

const (
	AlignNone Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignNone:
		return "none"
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return fmt.Sprintf("Align(%d)", int(a))
	}
}

// Document is the root of a parsed tree.
type Document struct {
	Children []Block
	// Definitions maps normalized labels to the first definition carrying
	// that label anywhere in the document.
	Definitions map[string]*LinkReferenceDefinition
	// FrontMatter is also the first element of Children when present.
	FrontMatter *FrontMatter
}

// Lookup returns the link reference definition matching label.
func (d *Document) Lookup(label string) (*LinkReferenceDefinition, bool) {
	def, ok := d.Definitions[normalizeLabel(label)]
	return def, ok
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Children []Span
}

// Heading is an ATX heading ("## title ##").
type Heading struct {
	Level           int
	ClosingSequence string
	Children        []Span
}

// SetextHeading is a paragraph underlined with '=' (level 1) or '-' (level 2).
type SetextHeading struct {
	Level           int
	UnderlineLength int
	Children        []Span
}

// Quote is a block quote.
type Quote struct {
	Children []Block
}

// List is a sequence of list items sharing a marker type.
type List struct {
	Ordered bool
	// Start is the number of the first item of an ordered list.
	Start int
	Loose bool
	Items []*ListItem
}

// ListItem is one item of a List.
type ListItem struct {
	// Leader is the marker as written, for example "-", "12)" or "3.".
	Leader string
	// Indentation is the source column where the item content starts.
	// Rendering does not reuse it: continuation lines are always indented
	// by len(Leader)+1.
	Indentation int
	Children    []Block
}

// BlockCode is an indented code block. Content ends with a newline.
type BlockCode struct {
	Content string
}

// CodeFence is a fenced code block.
type CodeFence struct {
	// Delimiter is the opening fence run, for example "```" or "~~~~".
	Delimiter string
	// InfoString is everything after the opening fence, as written.
	InfoString  string
	Indentation int
	// Content holds the code lines, each terminated by a newline.
	Content string
}

// Language returns the first word of the info string.
func (c *CodeFence) Language() string {
	f := strings.Fields(c.InfoString)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// Table is a pipe table. Column widths are not stored; they are computed
// from cell content when rendering.
type Table struct {
	Header      *TableRow
	Rows        []*TableRow
	ColumnAlign []Align
}

// TableRow is a header or body row of a Table.
type TableRow struct {
	Cells []*TableCell
}

// TableCell holds the inline content of one cell.
type TableCell struct {
	Align    Align
	Children []Span
}

// HTMLBlock is raw HTML. Content has no trailing newline.
type HTMLBlock struct {
	Content string
}

// LinkReferenceDefinitionBlock is a run of consecutive link reference
// definitions.
type LinkReferenceDefinitionBlock struct {
	Definitions []*LinkReferenceDefinition
}

// ThematicBreak holds its source line verbatim.
type ThematicBreak struct {
	Line string
}

// BlankLine is one whitespace-only source line.
type BlankLine struct{}

// CustomBlock is produced by a BlockExtension.
type CustomBlock struct {
	Name string
	// Lines are the source lines read by the extension, newline terminated.
	Lines  []string
	render func([]string) []string
}

func (*Document) token()                     {}
func (*Paragraph) token()                    {}
func (*Heading) token()                      {}
func (*SetextHeading) token()                {}
func (*Quote) token()                        {}
func (*List) token()                         {}
func (*ListItem) token()                     {}
func (*BlockCode) token()                    {}
func (*CodeFence) token()                    {}
func (*Table) token()                        {}
func (*TableRow) token()                     {}
func (*TableCell) token()                    {}
func (*HTMLBlock) token()                    {}
func (*LinkReferenceDefinitionBlock) token() {}
func (*ThematicBreak) token()                {}
func (*BlankLine) token()                    {}
func (*FrontMatter) token()                  {}
func (*CustomBlock) token()                  {}

func (*Document) block()                     {}
func (*Paragraph) block()                    {}
func (*Heading) block()                      {}
func (*SetextHeading) block()                {}
func (*Quote) block()                        {}
func (*List) block()                         {}
func (*ListItem) block()                     {}
func (*BlockCode) block()                    {}
func (*CodeFence) block()                    {}
func (*Table) block()                        {}
func (*HTMLBlock) block()                    {}
func (*LinkReferenceDefinitionBlock) block() {}
func (*ThematicBreak) block()                {}
func (*BlankLine) block()                    {}
func (*FrontMatter) block()                  {}
func (*CustomBlock) block()                  {}

// RawText is literal text.
type RawText struct {
	Content string
}

// Strong is strong emphasis. Delimiter is '*' or '_'.
type Strong struct {
	Delimiter byte
	Children  []Span
}

// Emphasis is emphasis. Delimiter is '*' or '_'.
type Emphasis struct {
	Delimiter byte
	Children  []Span
}

// InlineCode is a code span.
type InlineCode struct {
	// Delimiter is the backtick run used on both sides.
	Delimiter string
	// RawContent is the text between the delimiters, untouched.
	RawContent string
	// Content is RawContent with newlines turned into spaces and one
	// padding space stripped from each side.
	Content string
}

// NewInlineCode builds a code span for content, choosing the shortest
// backtick run that does not occur in it.
func NewInlineCode(content string) *InlineCode {
	n := 1
	for hasExactRun(content, n) {
		n++
	}
	raw := content
	if strings.HasPrefix(content, "`") || strings.HasSuffix(content, "`") ||
		(strings.HasPrefix(content, " ") && strings.HasSuffix(content, " ") && strings.TrimSpace(content) != "") {
		raw = " " + content + " "
	}
	return &InlineCode{
		Delimiter:  strings.Repeat("`", n),
		RawContent: raw,
		Content:    content,
	}
}

// hasExactRun reports whether s contains a backtick run of exactly n.
func hasExactRun(s string, n int) bool {
	for i := 0; i < len(s); {
		if s[i] != '`' {
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '`' {
			j++
		}
		if j-i == n {
			return true
		}
		i = j
	}
	return false
}

// Strikethrough is text between "~~" pairs.
type Strikethrough struct {
	Children []Span
}

// Link is an inline or reference link. Which of Label and TitleDelimiter
// are set depends on DestType: Label only for DestFull, TitleDelimiter only
// for inline destinations with a title.
type Link struct {
	Children []Span
	// Target is the destination as written for inline links, or the
	// destination of the referenced definition.
	Target         string
	Title          string
	DestType       DestType
	TitleDelimiter byte
	Label          string
	// Reference is the definition a reference link resolved to.
	Reference *LinkReferenceDefinition
}

// URL returns the destination with backslash escapes and entities resolved.
func (l *Link) URL() string {
	return unescapeDest(l.Target)
}

// Image is an inline or reference image. Children hold the description.
type Image struct {
	Children       []Span
	Src            string
	Title          string
	DestType       DestType
	TitleDelimiter byte
	Label          string
	Reference      *LinkReferenceDefinition
}

// URL returns the source with backslash escapes and entities resolved.
func (i *Image) URL() string {
	return unescapeDest(i.Src)
}

// AutoLink is "<scheme:...>" or "<user@host>".
type AutoLink struct {
	Target string
	// Mailto is set for e-mail autolinks written without a mailto: scheme.
	Mailto bool
}

// EscapeSequence is a backslash-escaped ASCII punctuation character.
type EscapeSequence struct {
	Char string
}

// LineBreak ends a line inside inline content.
type LineBreak struct {
	Soft bool
	// Marker is the text before the newline: trailing spaces or a backslash.
	Marker string
}

// HTMLSpan is inline raw HTML.
type HTMLSpan struct {
	Content string
}

// LinkReferenceDefinition is one "[label]: dest 'title'" entry.
type LinkReferenceDefinition struct {
	Label          string
	Dest           string
	Title          string
	DestType       DestType
	TitleDelimiter byte
}

// CustomSpan is produced by a SpanExtension. Open and Close are the parts of
// the match surrounding the extension's group.
type CustomSpan struct {
	Name      string
	Open      string
	Close     string
	Content   string
	Children  []Span
	wrap      bool
	particles func(*CustomSpan) iter.Seq[Particle]
}

func (*RawText) token()                 {}
func (*Strong) token()                  {}
func (*Emphasis) token()                {}
func (*InlineCode) token()              {}
func (*Strikethrough) token()           {}
func (*Link) token()                    {}
func (*Image) token()                   {}
func (*AutoLink) token()                {}
func (*EscapeSequence) token()          {}
func (*LineBreak) token()               {}
func (*HTMLSpan) token()                {}
func (*LinkReferenceDefinition) token() {}
func (*CustomSpan) token()              {}

func (*RawText) span()                 {}
func (*Strong) span()                  {}
func (*Emphasis) span()                {}
func (*InlineCode) span()              {}
func (*Strikethrough) span()           {}
func (*Link) span()                    {}
func (*Image) span()                   {}
func (*AutoLink) span()                {}
func (*EscapeSequence) span()          {}
func (*LineBreak) span()               {}
func (*HTMLSpan) span()                {}
func (*LinkReferenceDefinition) span() {}
func (*CustomSpan) span()              {}

func unescapeDest(s string) string {
	if strings.IndexByte(s, '\\') >= 0 {
		var b strings.Builder
		for i := 0; i < len(s); i++ {
			if s[i] == '\\' && i+1 < len(s) && isASCIIPunct(s[i+1]) {
				i++
			}
			b.WriteByte(s[i])
		}
		s = b.String()
	}
	return html.UnescapeString(s)
}
