package mdfmt

import (
	"testing"
)

// inline returns the inline tokens of the first paragraph of src.
func inline(t *testing.T, src string) []Span {
	t.Helper()
	doc := ParseString(src)
	if len(doc.Children) == 0 {
		t.Fatalf("no blocks parsed from %q", src)
	}
	p, ok := doc.Children[0].(*Paragraph)
	if !ok {
		t.Fatalf("first block is %T, want *Paragraph", doc.Children[0])
	}
	return p.Children
}

func raw(s string) *RawText {
	return &RawText{Content: s}
}

func TestSpanTokens(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
		want []Span
	}{
		{
			name: "nested emphasis",
			src:  "*a **b** c*\n",
			want: []Span{&Emphasis{Delimiter: '*', Children: []Span{
				raw("a "),
				&Strong{Delimiter: '*', Children: []Span{raw("b")}},
				raw(" c"),
			}}},
		},
		{
			name: "rule of three keeps strong inside emphasis",
			src:  "*foo**bar**baz*\n",
			want: []Span{&Emphasis{Delimiter: '*', Children: []Span{
				raw("foo"),
				&Strong{Delimiter: '*', Children: []Span{raw("bar")}},
				raw("baz"),
			}}},
		},
		{
			name: "intraword underscores are literal",
			src:  "snake_case_name\n",
			want: []Span{raw("snake_case_name")},
		},
		{
			name: "unmatched opener stays text",
			src:  "**open only\n",
			want: []Span{raw("**open only")},
		},
		{
			name: "code span wins over emphasis",
			src:  "*a `b* c`\n",
			want: []Span{
				raw("*a "),
				&InlineCode{Delimiter: "`", RawContent: "b* c", Content: "b* c"},
			},
		},
		{
			name: "code span content loses one padding space",
			src:  "`` `tick` ``\n",
			want: []Span{&InlineCode{Delimiter: "``", RawContent: " `tick` ", Content: "`tick`"}},
		},
		{
			name: "escapes",
			src:  "\\*not\\* \\q\n",
			want: []Span{
				&EscapeSequence{Char: "*"},
				raw("not"),
				&EscapeSequence{Char: "*"},
				raw(" \\q"),
			},
		},
		{
			name: "strikethrough holds emphasis",
			src:  "~~*x*~~\n",
			want: []Span{&Strikethrough{Children: []Span{
				&Emphasis{Delimiter: '*', Children: []Span{raw("x")}},
			}}},
		},
		{
			name: "inline link with title",
			src:  "[a *b*](/u \"t\")\n",
			want: []Span{&Link{
				Children:       []Span{raw("a "), &Emphasis{Delimiter: '*', Children: []Span{raw("b")}}},
				Target:         "/u",
				Title:          "t",
				DestType:       DestURI,
				TitleDelimiter: '"',
			}},
		},
		{
			name: "links do not nest",
			src:  "[a [b](/x)](/y)\n",
			want: []Span{
				raw("[a "),
				&Link{Children: []Span{raw("b")}, Target: "/x", DestType: DestURI},
				raw("](/y)"),
			},
		},
		{
			name: "image with angle destination",
			src:  "![alt](<a b.png>)\n",
			want: []Span{&Image{Children: []Span{raw("alt")}, Src: "a b.png", DestType: DestAngleURI}},
		},
		{
			name: "title across lines drops its line break",
			src:  "[a](/u 'x\ny')\n",
			want: []Span{&Link{Children: []Span{raw("a")}, Target: "/u", Title: "x\ny", DestType: DestURI, TitleDelimiter: '\''}},
		},
		{
			name: "undefined reference is text",
			src:  "[x][nope]\n",
			want: []Span{raw("[x][nope]")},
		},
		{
			name: "autolinks",
			src:  "<me@x.org> <https://x.org/a>\n",
			want: []Span{
				&AutoLink{Target: "me@x.org", Mailto: true},
				raw(" "),
				&AutoLink{Target: "https://x.org/a"},
			},
		},
		{
			name: "html spans",
			src:  "a <b>x</b>\n",
			want: []Span{raw("a "), &HTMLSpan{Content: "<b>"}, raw("x"), &HTMLSpan{Content: "</b>"}},
		},
		{
			name: "line breaks",
			src:  "a  \nb\\\nc\nd\n",
			want: []Span{
				raw("a"),
				&LineBreak{Marker: "  "},
				raw("b"),
				&LineBreak{Marker: "\\"},
				raw("c"),
				&LineBreak{Soft: true},
				raw("d"),
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assertTree(t, inline(t, tc.src), tc.want)
		})
	}
}

func TestReferenceLinksResolveForward(t *testing.T) {
	t.Parallel()
	doc := ParseString("[Foo][BAR], [bar][] and [Bar]\n\n[bar]: /url 'T'\n[bar]: /ignored\n")
	def, ok := doc.Lookup("BAR")
	if !ok {
		t.Fatalf("definition for bar not found")
	}
	if def.Dest != "/url" {
		t.Fatalf("first definition must win, got %q", def.Dest)
	}
	want := []Span{
		&Link{Children: []Span{raw("Foo")}, Target: "/url", Title: "T", DestType: DestFull, Label: "BAR", Reference: def},
		raw(", "),
		&Link{Children: []Span{raw("bar")}, Target: "/url", Title: "T", DestType: DestCollapsed, Reference: def},
		raw(" and "),
		&Link{Children: []Span{raw("Bar")}, Target: "/url", Title: "T", DestType: DestShortcut, Reference: def},
	}
	assertTree(t, doc.Children[0].(*Paragraph).Children, want)
	assertText(t, RenderMarkdown(doc), "[Foo][BAR], [bar][] and [Bar]\n\n[bar]: /url 'T'\n[bar]: /ignored\n")
}

func TestLinkURL(t *testing.T) {
	t.Parallel()
	spans := inline(t, "[a](/a\\_b%20&amp;c) ![i](x&lt;y)\n")
	link, ok := spans[0].(*Link)
	if !ok {
		t.Fatalf("first span is %T", spans[0])
	}
	if got := link.URL(); got != "/a_b%20&c" {
		t.Fatalf("Link.URL() = %q", got)
	}
	img, ok := spans[2].(*Image)
	if !ok {
		t.Fatalf("third span is %T", spans[2])
	}
	if got := img.URL(); got != "x<y" {
		t.Fatalf("Image.URL() = %q", got)
	}
}

func TestNewInlineCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		content   string
		wantDelim string
		wantRaw   string
	}{
		{content: "plain", wantDelim: "`", wantRaw: "plain"},
		{content: "a`b", wantDelim: "``", wantRaw: "a`b"},
		{content: "a``b`c", wantDelim: "```", wantRaw: "a``b`c"},
		{content: "`tick", wantDelim: "``", wantRaw: " `tick "},
		{content: " padded ", wantDelim: "`", wantRaw: "  padded  "},
	}
	for _, tc := range tests {
		code := NewInlineCode(tc.content)
		if code.Delimiter != tc.wantDelim || code.RawContent != tc.wantRaw || code.Content != tc.content {
			t.Fatalf("NewInlineCode(%q) = %+v", tc.content, code)
		}
		// what it renders parses back to the same content
		spans := inline(t, RenderMarkdown(code))
		got, ok := spans[0].(*InlineCode)
		if !ok || got.Content != tc.content {
			t.Fatalf("reparse of %q gave %#v", tc.content, spans)
		}
	}
}
