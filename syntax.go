package mdfmt

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"slices"
)

var (
	// ErrInvalidExtension reports an extension missing a required field.
	ErrInvalidExtension = errors.New("invalid extension")
	// ErrDuplicateRule reports a rule name that is already registered.
	ErrDuplicateRule = errors.New("duplicate rule")
	// ErrUnknownRule reports a rule name that is not registered.
	ErrUnknownRule = errors.New("unknown rule")
	// ErrPosition reports an insertion position outside the rule list.
	ErrPosition = errors.New("position out of range")
)

// Built-in block rule names, in their default priority order.
const (
	BlockBlankLine     = "blank-line"
	BlockThematicBreak = "thematic-break"
	BlockATXHeading    = "atx-heading"
	BlockCodeFence     = "code-fence"
	BlockHTML          = "html-block"
	BlockQuote         = "quote"
	BlockList          = "list"
	BlockIndentedCode  = "block-code"
	BlockTable         = "table"
	BlockLinkRefDef    = "link-reference-definition"
)

// Built-in span rule names, in their default order.
const (
	SpanEscape        = "escape-sequence"
	SpanHTML          = "html-span"
	SpanStrikethrough = "strikethrough"
	SpanAutoLink      = "autolink"
	SpanCore          = "core"
	SpanInlineCode    = "inline-code"
	SpanLineBreak     = "line-break"
)

// BlockExtension describes a custom block rule.
type BlockExtension struct {
	Name string
	// Start reports whether line opens the block.
	Start func(line string) bool
	// Read consumes the block's lines, starting with the line that matched
	// Start. Returning no lines rejects the match.
	Read func(r *LineReader) []string
	// Interrupts lets the block end an open paragraph.
	Interrupts bool
	// Render turns the read lines into output lines. When nil the lines are
	// written back unchanged.
	Render func(lines []string) []string
}

// SpanExtension describes a custom inline rule matched by a regular
// expression.
type SpanExtension struct {
	Name    string
	Pattern *regexp.Regexp
	// Group selects the submatch holding the content; 0 is the whole match.
	Group int
	// ParseInner tokenizes the group content as inline markup.
	ParseInner bool
	// Precedence decides partial overlaps with other spans; the higher one
	// wins. Zero means 5, the precedence of most built-in spans.
	Precedence int
	// Wrap lets the reflow renderer break unparsed content at whitespace.
	Wrap bool
	// Particles flattens a matched span for both renderers. When nil the
	// span yields Open, then its children or Content, then Close.
	Particles func(*CustomSpan) iter.Seq[Particle]
}

type blockRule struct {
	name string
	// parse reads a block at the reader position or returns nil.
	parse func(p *blockParser, r *LineReader) Block
	// interrupts reports whether line ends an open paragraph.
	interrupts func(line string) bool
}

type spanRule struct {
	name       string
	precedence int
	find       func(s *spanScanner, text string) []*spanMatch
}

// Syntax is the ordered set of block and span rules a Parser applies.
// A Syntax must not be modified while a Parser is being built from it;
// parsers keep their own copy.
type Syntax struct {
	blocks []blockRule
	spans  []spanRule
}

// DefaultSyntax returns a new Syntax holding the built-in rules.
func DefaultSyntax() *Syntax {
	return &Syntax{
		blocks: []blockRule{
			{name: BlockBlankLine, parse: parseBlankLine},
			{name: BlockThematicBreak, parse: parseThematicBreak, interrupts: isThematicBreak},
			{name: BlockATXHeading, parse: parseATXHeading, interrupts: isATXHeading},
			{name: BlockCodeFence, parse: parseCodeFence, interrupts: isFenceStart},
			{name: BlockHTML, parse: parseHTMLBlock, interrupts: htmlInterrupts},
			{name: BlockQuote, parse: parseQuote, interrupts: isQuoteStart},
			{name: BlockList, parse: parseList, interrupts: listInterrupts},
			{name: BlockIndentedCode, parse: parseBlockCode},
			{name: BlockTable, parse: parseTable},
			{name: BlockLinkRefDef, parse: parseLinkRefDefs},
		},
		spans: []spanRule{
			{name: SpanEscape, precedence: 2, find: findEscapes},
			{name: SpanHTML, precedence: 5, find: findHTMLSpans},
			{name: SpanStrikethrough, precedence: 5, find: findStrikethrough},
			{name: SpanAutoLink, precedence: 5, find: findAutoLinks},
			{name: SpanCore, precedence: 3, find: findCoreTokens},
			{name: SpanInlineCode, precedence: 5, find: findCodeSpans},
			{name: SpanLineBreak, precedence: 5, find: findLineBreaks},
		},
	}
}

// Clone returns an independent copy of s.
func (s *Syntax) Clone() *Syntax {
	return &Syntax{
		blocks: slices.Clone(s.blocks),
		spans:  slices.Clone(s.spans),
	}
}

// BlockNames lists the block rules in priority order.
func (s *Syntax) BlockNames() []string {
	names := make([]string, len(s.blocks))
	for i, r := range s.blocks {
		names[i] = r.name
	}
	return names
}

// SpanNames lists the span rules in order.
func (s *Syntax) SpanNames() []string {
	names := make([]string, len(s.spans))
	for i, r := range s.spans {
		names[i] = r.name
	}
	return names
}

// AddBlock inserts ext at position pos of the block rule list. A negative
// pos appends it after the built-in rules, just before the paragraph
// fallback.
func (s *Syntax) AddBlock(ext BlockExtension, pos int) error {
	if ext.Name == "" {
		return fmt.Errorf("add block: %w: name is required", ErrInvalidExtension)
	}
	if ext.Start == nil || ext.Read == nil {
		return fmt.Errorf("add block %q: %w: Start and Read are required", ext.Name, ErrInvalidExtension)
	}
	if s.hasBlock(ext.Name) {
		return fmt.Errorf("add block %q: %w", ext.Name, ErrDuplicateRule)
	}
	if pos < 0 {
		pos = len(s.blocks)
	}
	if pos > len(s.blocks) {
		return fmt.Errorf("add block %q at %d: %w", ext.Name, pos, ErrPosition)
	}
	rule := blockRule{name: ext.Name, parse: extensionBlockParser(ext)}
	if ext.Interrupts {
		rule.interrupts = ext.Start
	}
	s.blocks = slices.Insert(s.blocks, pos, rule)
	return nil
}

// RemoveBlock removes the named block rule. The paragraph fallback is not a
// rule and cannot be removed.
func (s *Syntax) RemoveBlock(name string) error {
	for i, r := range s.blocks {
		if r.name == name {
			s.blocks = slices.Delete(s.blocks, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("remove block %q: %w", name, ErrUnknownRule)
}

// AddSpan inserts ext at position pos of the span rule list. A negative pos
// appends it.
func (s *Syntax) AddSpan(ext SpanExtension, pos int) error {
	if ext.Name == "" {
		return fmt.Errorf("add span: %w: name is required", ErrInvalidExtension)
	}
	if ext.Pattern == nil {
		return fmt.Errorf("add span %q: %w: Pattern is required", ext.Name, ErrInvalidExtension)
	}
	if ext.Group < 0 || ext.Group > ext.Pattern.NumSubexp() {
		return fmt.Errorf("add span %q: %w: group %d not in pattern", ext.Name, ErrInvalidExtension, ext.Group)
	}
	if ext.ParseInner && ext.Group == 0 {
		return fmt.Errorf("add span %q: %w: ParseInner needs a capture group", ext.Name, ErrInvalidExtension)
	}
	if ext.Precedence < 0 {
		return fmt.Errorf("add span %q: %w: negative precedence", ext.Name, ErrInvalidExtension)
	}
	if s.hasSpan(ext.Name) {
		return fmt.Errorf("add span %q: %w", ext.Name, ErrDuplicateRule)
	}
	if pos < 0 {
		pos = len(s.spans)
	}
	if pos > len(s.spans) {
		return fmt.Errorf("add span %q at %d: %w", ext.Name, pos, ErrPosition)
	}
	prec := ext.Precedence
	if prec == 0 {
		prec = 5
	}
	s.spans = slices.Insert(s.spans, pos, spanRule{
		name:       ext.Name,
		precedence: prec,
		find:       extensionSpanFinder(ext),
	})
	return nil
}

// RemoveSpan removes the named span rule. Raw text is the fallback and is
// not a rule.
func (s *Syntax) RemoveSpan(name string) error {
	for i, r := range s.spans {
		if r.name == name {
			s.spans = slices.Delete(s.spans, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("remove span %q: %w", name, ErrUnknownRule)
}

func (s *Syntax) hasBlock(name string) bool {
	return slices.ContainsFunc(s.blocks, func(r blockRule) bool { return r.name == name })
}

func (s *Syntax) hasSpan(name string) bool {
	return slices.ContainsFunc(s.spans, func(r spanRule) bool { return r.name == name })
}

func extensionBlockParser(ext BlockExtension) func(*blockParser, *LineReader) Block {
	return func(_ *blockParser, r *LineReader) Block {
		line, ok := r.Peek()
		if !ok || !ext.Start(line) {
			return nil
		}
		lines := ext.Read(r)
		if len(lines) == 0 {
			return nil
		}
		return &CustomBlock{Name: ext.Name, Lines: lines, render: ext.Render}
	}
}

func extensionSpanFinder(ext SpanExtension) func(*spanScanner, string) []*spanMatch {
	return func(_ *spanScanner, text string) []*spanMatch {
		var out []*spanMatch
		for off := 0; off < len(text); {
			loc := ext.Pattern.FindStringSubmatchIndex(text[off:])
			if loc == nil {
				break
			}
			start, end := off+loc[0], off+loc[1]
			if isEscaped(text, start) || end == start {
				off = start + 1
				continue
			}
			gs, ge := off+loc[2*ext.Group], off+loc[2*ext.Group+1]
			if loc[2*ext.Group] < 0 {
				gs, ge = start, start
			}
			m := &spanMatch{
				start:  start,
				end:    end,
				kind:   kindCustom,
				custom: &CustomSpan{Name: ext.Name, Open: text[start:gs], Close: text[ge:end], Content: text[gs:ge], wrap: ext.Wrap, particles: ext.Particles},
			}
			if ext.ParseInner {
				m.inner = true
				m.innerStart, m.innerEnd = gs, ge
			}
			out = append(out, m)
			off = end
		}
		return out
	}
}
