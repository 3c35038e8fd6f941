package mdfmt

import (
	"testing"
)

func TestRoundtripPreservesFormatting(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input []string
	}{
		{name: "empty document"},
		{
			name: "line breaks",
			input: []string{
				"soft line break\n",
				"hard line break (backslash)\\\n",
				"another hard line break (double spaces)  \n",
				"that's all.\n",
			},
		},
		{name: "emphasis and strong", input: []string{"*emphasized* __strong__ _**emphasized and strong**_\n"}},
		{name: "strikethrough", input: []string{"_**emphasized and strong**_  ~~strikethrough~~\n"}},
		{name: "escapes", input: []string{"misc span tokens:  \\*escaped, not emphasized\\*  <h1>\n"}},
		{name: "html span", input: []string{"so <p>hear ye</p><h1>\n"}},
		{
			name:  "code spans",
			input: []string{"a) `code span` b) ``trailing space, double apostrophes `` c) ` leading and trailing space `\n"},
		},
		{
			name: "images and links",
			input: []string{
				"[a link](#url (title))\n",
				"[another link](<url-in-angle-brackets> '*emphasized\n",
				"title*')\n",
				"![an \\[*image*\\], escapes and emphasis](#url \"title\")\n",
				"<http://auto.link>\n",
			},
		},
		{
			name: "thematic break",
			input: []string{
				" **  * ** * ** * **\n",
				"followed by a paragraph of text\n",
			},
		},
		{
			name: "atx headings",
			input: []string{
				"## atx *heading* ##\n",
				"# another atx heading, without trailing hashes\n",
				"###\n",
				"^ empty atx heading\n",
			},
		},
		{
			name: "setext heading",
			input: []string{
				"*setext*\n",
				"heading!\n",
				"===============\n",
			},
		},
		{
			name: "bulleted list with forward reference",
			input: []string{
				"* **test case**:\n",
				"  testing a link as the first item on a continuation line\n",
				"  [links must be indented][properly].\n",
				"\n",
				"[properly]: uri\n",
			},
		},
		{
			name: "code blocks",
			input: []string{
				"    this is an indented code block\n",
				"      on two lines \n",
				"    with some extra whitespace here and there, to be preserved  \n",
				"      just as it is.\n",
				"```\n",
				"now for a fenced code block \n",
				"  where indentation is also preserved. as are the double spaces at the end of this line:  \n",
				"```\n",
				"  ~~~this is an info string: behold the fenced code block with tildes!\n",
				"  *tildes are great*\n",
				"  ~~~\n",
				"1. a list item with an embedded\n",
				"\n",
				"       indented code block.\n",
			},
		},
		{
			name: "blank line after code block",
			input: []string{
				"    code block\n",
				"\n",
				"paragraph.\n",
			},
		},
		{
			name: "html blocks",
			input: []string{
				"<h1>some text <img src='https://cdn.rawgit.com/' align='right'></h1>\n",
				"<br>\n",
				"\n",
				"+ <h1>html block embedded in list <img src='https://cdn.rawgit.com/' align='right'></h1>\n",
				"  <br>\n",
			},
		},
		{
			name: "block quotes",
			input: []string{
				"> a block quote\n",
				"> > and a nested block quote\n",
				"> 1. > and finally, a list with a nested block quote\n",
				">    > which continues on a second line.\n",
			},
		},
		{
			name: "link reference definitions",
			input: []string{
				"[label]: https://domain.com\n",
				"\n",
				"paragraph [with a link][label-2], etc, etc.\n",
				"and [a *second* link][label] as well\n",
				"shortcut [label] & collapsed [label][]\n",
				"\n",
				"[label-2]: <https://libraries.io/> 'title'\n",
				"[label-not-referred-to]: https://foo (title)\n",
			},
		},
		{
			name: "table with centered emoji column",
			input: []string{
				"| Emoji | Description               |\n",
				"| :---: | ------------------------- |\n",
				"|   📚   | Update documentation.     |\n",
				"|   🐎   | Performance improvements. |\n",
				"etc, etc\n",
			},
		},
		{
			name: "front matter lookalike without the option",
			input: []string{
				"---\n",
				"title: x\n",
				"---\n",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assertText(t, roundtrip(t, tc.input...), joinLines(tc.input...))
		})
	}
}

func TestRoundtripNormalizes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name: "final newline is added",
			input: []string{
				"Paragraph 1. Single line. Followed by two white-space-only lines.\n",
				"\n",
				"\n",
				"Paragraph 2. Two\n",
				"lines, no final line break.",
			},
			want: []string{
				"Paragraph 1. Single line. Followed by two white-space-only lines.\n",
				"\n",
				"\n",
				"Paragraph 2. Two\n",
				"lines, no final line break.\n",
			},
		},
		{
			// list item indentation is deliberately normalized to the
			// leader width plus one space
			name: "list item indentation",
			input: []string{
				"  22)  *emphasized list item*\n",
				"  96)\n",
				" 128) here begins a nested list.\n",
				"       + apples\n",
				"       +  bananas\n",
			},
			want: []string{
				"22) *emphasized list item*\n",
				"96) \n",
				"128) here begins a nested list.\n",
				"     + apples\n",
				"     + bananas\n",
			},
		},
		{
			name: "table with varying column counts",
			input: []string{
				"   |   header | x |  \n",
				"   | --- | ---: |   \n",
				"   | . | Performance improvements. | an extra column |   \n",
				"etc, etc\n",
			},
			want: []string{
				"| header |                         x |                 |\n",
				"| ------ | ------------------------: | --------------- |\n",
				"| .      | Performance improvements. | an extra column |\n",
				"etc, etc\n",
			},
		},
		{
			name: "table with narrow column",
			input: []string{
				"| xyz | ? |\n",
				"| --- | - |\n",
				"| a   | p |\n",
				"| b   | q |\n",
			},
			want: []string{
				"| xyz | ?   |\n",
				"| --- | --- |\n",
				"| a   | p   |\n",
				"| b   | q   |\n",
			},
		},
		{
			name: "left alignment renders as dashes",
			input: []string{
				"|a|b|\n",
				"|:-|-:|\n",
				"|1|2|\n",
			},
			want: []string{
				"| a   |   b |\n",
				"| --- | --: |\n",
				"| 1   |   2 |\n",
			},
		},
		{
			name:  "empty quote keeps its marker",
			input: []string{">\n"},
			want:  []string{"> \n"},
		},
		{
			name: "lazy quote continuation gains a marker",
			input: []string{
				"> quoted\n",
				"lazy\n",
			},
			want: []string{
				"> quoted\n",
				"> lazy\n",
			},
		},
		{
			name: "crlf line endings",
			input: []string{
				"one\r\n",
				"two\r\n",
			},
			want: []string{
				"one\n",
				"two\n",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assertText(t, roundtrip(t, tc.input...), joinLines(tc.want...))
		})
	}
}

func TestRenderSpanToken(t *testing.T) {
	t.Parallel()
	got := RenderMarkdown(&Strong{Delimiter: '_', Children: []Span{&RawText{Content: "bold"}}})
	assertText(t, got, "__bold__\n")

	got = RenderMarkdown(NewInlineCode("a ` tick"))
	assertText(t, got, "``a ` tick``\n")
}

func TestRenderBuiltTree(t *testing.T) {
	t.Parallel()
	def := &LinkReferenceDefinition{Label: "Home", Dest: "/", DestType: DestURI}
	doc := &Document{Children: []Block{
		&Heading{Level: 2, Children: []Span{&RawText{Content: "Built"}}},
		&Paragraph{Children: []Span{
			&RawText{Content: "see "},
			&Link{Children: []Span{&RawText{Content: "home"}}, Target: "/", DestType: DestFull, Label: "Home", Reference: def},
			&RawText{Content: " or "},
			&Image{Children: []Span{&RawText{Content: "pic"}}, Src: "a b.png", DestType: DestAngleURI, Title: "it's", TitleDelimiter: '"'},
		}},
		&List{Items: []*ListItem{
			{Leader: "-", Children: []Block{&Paragraph{Children: []Span{&RawText{Content: "x"}}}}},
			{Leader: "-"},
		}},
		&Quote{},
		&CodeFence{Delimiter: "~~~", InfoString: "sh"},
		&LinkReferenceDefinitionBlock{Definitions: []*LinkReferenceDefinition{def}},
	}}
	want := joinLines(
		"## Built\n",
		"see [home][Home] or ![pic](<a b.png> \"it's\")\n",
		"- x\n",
		"- \n",
		"> \n",
		"~~~sh\n",
		"~~~\n",
		"[Home]: /\n",
	)
	assertText(t, RenderMarkdown(doc), want)
}

func TestRenderUnknownTokenPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for a token that is neither block nor span")
		}
	}()
	RenderMarkdown(&TableRow{})
}

func TestNewRendererValidates(t *testing.T) {
	t.Parallel()
	if _, err := NewRenderer(WithMaxLineLength(-1)); err == nil {
		t.Fatalf("expected error for negative line length")
	}
	if _, err := NewRenderer(WithWidthMode(WidthMode(42))); err == nil {
		t.Fatalf("expected error for unknown width mode")
	}
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	assertText(t, r.Render(ParseString("keep\nlines\n")), "keep\nlines\n")
}

func TestRenderLinesStopsEarly(t *testing.T) {
	t.Parallel()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	var got []string
	for line := range r.RenderLines(ParseString("a\n\nb\n\nc\n")) {
		got = append(got, line)
		if len(got) == 2 {
			break
		}
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "" {
		t.Fatalf("unexpected lines: %q", got)
	}
}

func TestTableWidthModes(t *testing.T) {
	t.Parallel()
	src := "| a | b |\n| - | - |\n| 漢字 | x |\n"
	tests := []struct {
		mode WidthMode
		want string
	}{
		{
			mode: WidthRunes,
			want: "| a   | b   |\n| --- | --- |\n| 漢字  | x   |\n",
		},
		{
			mode: WidthCells,
			want: "| a    | b   |\n| ---- | --- |\n| 漢字 | x   |\n",
		},
		{
			mode: WidthGraphemes,
			want: "| a   | b   |\n| --- | --- |\n| 漢字  | x   |\n",
		},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			t.Parallel()
			r, err := NewRenderer(WithWidthMode(tc.mode))
			if err != nil {
				t.Fatalf("NewRenderer: %v", err)
			}
			assertText(t, r.Render(ParseString(src)), tc.want)
		})
	}
}
