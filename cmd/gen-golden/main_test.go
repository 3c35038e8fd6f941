package main

import (
	"path/filepath"
	"testing"
)

func TestParseGoldenWidth(t *testing.T) {
	root := "testdata"
	tests := []struct {
		path      string
		wantBase  string
		wantWidth int
		wantOK    bool
	}{
		{path: filepath.Join(root, "sample.w40.golden"), wantBase: "sample", wantWidth: 40, wantOK: true},
		{path: filepath.Join(root, "sample.w0.golden"), wantBase: "sample", wantWidth: 0, wantOK: true},
		{path: filepath.Join(root, "nested__doc.w8.golden"), wantBase: "nested__doc", wantWidth: 8, wantOK: true},
		{path: filepath.Join(root, "sample.wide.golden")},
		{path: filepath.Join(root, "sample.md")},
	}
	for _, tc := range tests {
		base, width, ok := parseGoldenWidth(root, tc.path)
		if ok != tc.wantOK || base != tc.wantBase || width != tc.wantWidth {
			t.Fatalf("parseGoldenWidth(%q) = %q, %d, %v", tc.path, base, width, ok)
		}
	}
	if got := goldenBase(root, filepath.Join(root, "a", "b.md")); got != "a__b" {
		t.Fatalf("goldenBase = %q", got)
	}
}
