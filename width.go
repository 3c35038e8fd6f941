package mdfmt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/muesli/reflow/ansi"
	"github.com/rivo/uniseg"
)

// WidthMode selects a text width measure.
type WidthMode int

const (
	// WidthRunes counts code points.
	WidthRunes WidthMode = iota
	// WidthCells counts terminal cells, so wide CJK and emoji count twice.
	WidthCells
	// WidthGraphemes counts user-perceived characters.
	WidthGraphemes
)

func (m WidthMode) String() string {
	switch m {
	case WidthRunes:
		return "runes"
	case WidthCells:
		return "cells"
	case WidthGraphemes:
		return "graphemes"
	default:
		return fmt.Sprintf("WidthMode(%d)", int(m))
	}
}

// ParseWidthMode maps a WidthMode name back to its value.
func ParseWidthMode(name string) (WidthMode, error) {
	for _, m := range []WidthMode{WidthRunes, WidthCells, WidthGraphemes} {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("width mode %q: want runes, cells or graphemes", name)
}

func (m WidthMode) measure() (func(string) int, bool) {
	switch m {
	case WidthRunes:
		return utf8.RuneCountInString, true
	case WidthCells:
		return ansi.PrintableRuneWidth, true
	case WidthGraphemes:
		return uniseg.GraphemeClusterCount, true
	default:
		return nil, false
	}
}

// isBreakable reports whether the reflow renderer may break a line at r.
// No-break spaces keep their neighbours together.
func isBreakable(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0x85, 0x1680, 0x2028, 0x2029, 0x205f, 0x3000:
		return true
	case 0xa0, 0x2007, 0x202f:
		return false
	}
	return 0x2000 <= r && r <= 0x200a
}

// padText pads s to width w. Centered text puts the odd space on the right.
func padText(s string, w int, align Align, measure func(string) int) string {
	gap := w - measure(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return spaces(gap) + s
	case AlignCenter:
		left := gap / 2
		return spaces(left) + s + spaces(gap-left)
	default:
		return s + spaces(gap)
	}
}

func spaces(n int) string {
	return strings.Repeat(" ", n)
}
