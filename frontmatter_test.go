package mdfmt

import (
	"errors"
	"testing"
)

type postMeta struct {
	Title string
	Tags  []string
}

func parseWithFrontMatter(t *testing.T, src string) *Document {
	t.Helper()
	p, err := NewParser(WithFrontMatter(true))
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	return p.ParseString(src)
}

func TestFrontMatterDecode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		src   string
		delim string
	}{
		{
			name:  "yaml",
			src:   "---\ntitle: Post\ntags: [a, b]\n---\n# Heading\n",
			delim: FrontMatterYAML,
		},
		{
			name:  "toml",
			src:   "+++\ntitle = \"Post\"\ntags = [\"a\", \"b\"]\n+++\n# Heading\n",
			delim: FrontMatterTOML,
		},
		{
			name:  "json",
			src:   ";;;\n{\"title\": \"Post\", \"tags\": [\"a\", \"b\"]}\n;;;\n# Heading\n",
			delim: FrontMatterJSON,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc := parseWithFrontMatter(t, tc.src)
			fm := doc.FrontMatter
			if fm == nil {
				t.Fatalf("front matter not detected")
			}
			if fm.Delimiter != tc.delim {
				t.Fatalf("delimiter = %q, want %q", fm.Delimiter, tc.delim)
			}
			if doc.Children[0] != Block(fm) {
				t.Fatalf("front matter must be the first child")
			}
			if _, ok := doc.Children[1].(*Heading); !ok {
				t.Fatalf("second child is %T", doc.Children[1])
			}
			var meta postMeta
			if err := fm.Decode(&meta); err != nil {
				t.Fatalf("Decode: %v", err)
			}
			assertTree(t, meta, postMeta{Title: "Post", Tags: []string{"a", "b"}})
			assertText(t, RenderMarkdown(doc), tc.src)
		})
	}
}

func TestFrontMatterNotDetected(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{name: "prose between rules", src: "---\nplain prose\n---\n"},
		{name: "no closing delimiter", src: "---\ntitle: x\ntext\n"},
		{name: "too short", src: "---\n---\n"},
		{name: "not at the start", src: "\n---\ntitle: x\n---\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			doc := parseWithFrontMatter(t, tc.src)
			if doc.FrontMatter != nil {
				t.Fatalf("unexpected front matter %+v", doc.FrontMatter)
			}
			assertText(t, RenderMarkdown(doc), tc.src)
		})
	}
}

func TestFrontMatterBOM(t *testing.T) {
	t.Parallel()
	doc := parseWithFrontMatter(t, "\ufeff---\ntitle: x\n---\n")
	if doc.FrontMatter == nil || doc.FrontMatter.Body() != "title: x\n" {
		t.Fatalf("unexpected front matter %+v", doc.FrontMatter)
	}
}

func TestFrontMatterDecodeErrors(t *testing.T) {
	t.Parallel()
	fm := &FrontMatter{Delimiter: "~~~", Raw: "~~~\na: b\n~~~\n"}
	if err := fm.Decode(&postMeta{}); !errors.Is(err, ErrUnknownFrontMatter) {
		t.Fatalf("expected ErrUnknownFrontMatter, got %v", err)
	}
	fm = &FrontMatter{Delimiter: FrontMatterYAML, Raw: "---\ntitle: [\n---\n"}
	if err := fm.Decode(&postMeta{}); err == nil {
		t.Fatalf("expected yaml error")
	}
}
