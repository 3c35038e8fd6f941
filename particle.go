package mdfmt

import (
	"fmt"
	"iter"
	"strings"
)

// Span is an inline token. Particles flattens the span and its children into
// the text fragments both renderers consume.
type Span interface {
	Token
	span()
	Particles() iter.Seq[Particle]
}

// Particle tags.
const (
	TagDest  = "dest_part"
	TagTitle = "title"
	TagLabel = "label"
)

// Particle is a render-time fragment of a span. Wrap reports whether the
// reflow renderer may break the text at whitespace.
type Particle struct {
	Text  string
	Token Span
	Tag   string
	Wrap  bool
}

// SpanParticles flattens a sequence of spans in order.
func SpanParticles(spans []Span) iter.Seq[Particle] {
	return func(yield func(Particle) bool) {
		for _, s := range spans {
			for p := range s.Particles() {
				if !yield(p) {
					return
				}
			}
		}
	}
}

func embed(leader Particle, children []Span, trailer Particle) iter.Seq[Particle] {
	return func(yield func(Particle) bool) {
		if !yield(leader) {
			return
		}
		for p := range SpanParticles(children) {
			if !yield(p) {
				return
			}
		}
		yield(trailer)
	}
}

func single(p ...Particle) iter.Seq[Particle] {
	return func(yield func(Particle) bool) {
		for _, item := range p {
			if !yield(item) {
				return
			}
		}
	}
}

func (t *RawText) Particles() iter.Seq[Particle] {
	return single(Particle{Text: t.Content, Token: t, Wrap: true})
}

func (t *Strong) Particles() iter.Seq[Particle] {
	d := Particle{Text: strings.Repeat(string(t.Delimiter), 2), Token: t}
	return embed(d, t.Children, d)
}

func (t *Emphasis) Particles() iter.Seq[Particle] {
	d := Particle{Text: string(t.Delimiter), Token: t}
	return embed(d, t.Children, d)
}

// Particles emits the delimiters and the raw content as atomic fragments.
func (t *InlineCode) Particles() iter.Seq[Particle] {
	return single(
		Particle{Text: t.Delimiter, Token: t},
		Particle{Text: t.RawContent, Token: t},
		Particle{Text: t.Delimiter, Token: t},
	)
}

func (t *Strikethrough) Particles() iter.Seq[Particle] {
	d := Particle{Text: "~~", Token: t}
	return embed(d, t.Children, d)
}

func (t *Link) Particles() iter.Seq[Particle] {
	return linkParticles(t, "[", t.Children, t.Target, t.Title, t.DestType, t.TitleDelimiter, t.Label)
}

func (t *Image) Particles() iter.Seq[Particle] {
	return linkParticles(t, "![", t.Children, t.Src, t.Title, t.DestType, t.TitleDelimiter, t.Label)
}

func linkParticles(tok Span, open string, children []Span, dest, title string, kind DestType, titleDelim byte, label string) iter.Seq[Particle] {
	return func(yield func(Particle) bool) {
		for p := range embed(Particle{Text: open, Token: tok}, children, Particle{Text: "]", Token: tok}) {
			if !yield(p) {
				return
			}
		}
		var tail []Particle
		switch kind {
		case DestURI, DestAngleURI:
			part := dest
			if kind == DestAngleURI {
				part = "<" + dest + ">"
			}
			tail = append(tail,
				Particle{Text: "(", Token: tok},
				Particle{Text: part, Token: tok, Tag: TagDest},
			)
			if title != "" {
				tail = append(tail, titleParticles(tok, title, titleDelim)...)
			}
			tail = append(tail, Particle{Text: ")", Token: tok})
		case DestFull:
			tail = append(tail,
				Particle{Text: "[", Token: tok},
				Particle{Text: label, Token: tok, Tag: TagLabel, Wrap: true},
				Particle{Text: "]", Token: tok},
			)
		case DestCollapsed:
			tail = append(tail, Particle{Text: "[]", Token: tok})
		case DestShortcut:
		default:
			panic(fmt.Sprintf("mdfmt: unhandled destination type %v", kind))
		}
		for _, p := range tail {
			if !yield(p) {
				return
			}
		}
	}
}

func titleParticles(tok Span, title string, delim byte) []Particle {
	closing := delim
	if delim == '(' {
		closing = ')'
	}
	return []Particle{
		{Text: " ", Token: tok, Wrap: true},
		{Text: string(delim), Token: tok},
		{Text: title, Token: tok, Tag: TagTitle, Wrap: true},
		{Text: string(closing), Token: tok},
	}
}

func (t *AutoLink) Particles() iter.Seq[Particle] {
	return single(Particle{Text: "<" + t.Target + ">", Token: t})
}

func (t *EscapeSequence) Particles() iter.Seq[Particle] {
	return single(Particle{Text: "\\" + t.Char, Token: t})
}

// Particles emits the marker and the newline as one fragment. Only soft
// breaks may be rewrapped.
func (t *LineBreak) Particles() iter.Seq[Particle] {
	return single(Particle{Text: t.Marker + "\n", Token: t, Wrap: t.Soft})
}

func (t *HTMLSpan) Particles() iter.Seq[Particle] {
	return single(Particle{Text: t.Content, Token: t})
}

func (t *LinkReferenceDefinition) Particles() iter.Seq[Particle] {
	return func(yield func(Particle) bool) {
		dest := t.Dest
		if t.DestType == DestAngleURI {
			dest = "<" + dest + ">"
		}
		ps := []Particle{
			{Text: "[", Token: t},
			{Text: t.Label, Token: t, Tag: TagLabel, Wrap: true},
			{Text: "]: ", Token: t, Wrap: true},
			{Text: dest, Token: t, Tag: TagDest},
		}
		if t.Title != "" {
			ps = append(ps, titleParticles(t, t.Title, t.TitleDelimiter)...)
		}
		for _, p := range ps {
			if !yield(p) {
				return
			}
		}
	}
}

func (t *CustomSpan) Particles() iter.Seq[Particle] {
	if t.particles != nil {
		return t.particles(t)
	}
	open := Particle{Text: t.Open, Token: t}
	closing := Particle{Text: t.Close, Token: t}
	if t.Children != nil {
		return embed(open, t.Children, closing)
	}
	return single(open, Particle{Text: t.Content, Token: t, Wrap: t.wrap}, closing)
}
