package mdfmt

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// RenderRequest configures Render.
type RenderRequest struct {
	Reader io.Reader
	Writer io.Writer
	// Width reflows wrap-eligible text to Width columns; zero keeps the
	// source formatting.
	Width int
	// FrontMatter recognizes a leading front matter block.
	FrontMatter bool
	// Syntax replaces DefaultSyntax.
	Syntax  *Syntax
	Options []RenderOption
}

// Render reads a whole Markdown document from req.Reader and writes it back
// to req.Writer formatted. Input that is not valid UTF-8 or looks binary is
// rejected before anything is written.
func Render(req RenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("render: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("render: writer is nil")
	}
	if req.Width < 0 {
		return fmt.Errorf("render: width %d is negative", req.Width)
	}
	parser, err := NewParser(WithSyntax(req.Syntax), WithFrontMatter(req.FrontMatter))
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	opts := append([]RenderOption{WithMaxLineLength(req.Width)}, req.Options...)
	renderer, err := NewRenderer(opts...)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	in := bufferPool.Get().(*bytes.Buffer)
	in.Reset()
	defer bufferPool.Put(in)
	if _, err := in.ReadFrom(req.Reader); err != nil {
		return fmt.Errorf("render: read: %w", err)
	}
	if err := ValidateInput(in.Bytes()); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	doc := parser.ParseString(in.String())

	out := bufferPool.Get().(*bytes.Buffer)
	out.Reset()
	defer bufferPool.Put(out)
	for line := range renderer.RenderLines(doc) {
		out.WriteString(line)
		out.WriteByte('\n')
	}
	if _, err := req.Writer.Write(out.Bytes()); err != nil {
		return fmt.Errorf("render: write: %w", err)
	}
	return nil
}
