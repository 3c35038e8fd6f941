package mdfmt

import (
	"os"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kylelemons/godebug/diff"
)

// roundtrip parses lines and renders them back keeping the formatting.
func roundtrip(t *testing.T, lines ...string) string {
	t.Helper()
	return RenderMarkdown(Parse(lines))
}

// reflow parses lines and renders them reflowed to width.
func reflow(t *testing.T, width int, lines ...string) string {
	t.Helper()
	return Reflow(Parse(lines), width)
}

func readSample(t testing.TB) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/sample.md")
	if err != nil {
		t.Fatalf("read sample.md: %v", err)
	}
	return data
}

var treeDumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// assertTree fails with a line diff of the spew dumps when got and want
// differ.
func assertTree(t *testing.T, got, want any) {
	t.Helper()
	g, w := treeDumper.Sdump(got), treeDumper.Sdump(want)
	if g != w {
		t.Fatalf("token tree mismatch (-want +got):\n%s", diff.Diff(w, g))
	}
}

func assertText(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Fatalf("output mismatch (-want +got):\n%s", diff.Diff(want, got))
	}
}

func joinLines(lines ...string) string {
	return strings.Join(lines, "")
}
