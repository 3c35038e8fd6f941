// Package mdfmt parses Markdown into a token tree and renders the tree back
// to Markdown.
//
// Parsing is two-phase: block structure and link reference definitions are
// read first, then inline content is tokenized against the complete label
// table, so references may point forward. Parsing never fails; text no rule
// accepts becomes a paragraph.
//
// Rendering has two modes. The format-preserving mode reproduces the
// delimiters, markers and line breaks the author wrote, normalizing only
// list item indentation and table column widths. The reflow mode re-packs
// paragraphs, setext heading text and link reference definitions into lines
// of a given width without ever splitting a code span, a link destination
// or a hard line break.
//
// Core properties:
//   - Every token keeps the surface syntax needed to write it back
//   - Inline tokens flatten into Particles shared by both render modes
//   - Rule sets are explicit Syntax values, extended per Parser
//   - Parsers and Renderers are immutable and safe for concurrent use
//
// Example:
//
//	doc := mdfmt.ParseString("A *short* paragraph\nwith a [link][].\n\n[link]: /url\n")
//	fmt.Print(mdfmt.RenderMarkdown(doc))
//	fmt.Print(mdfmt.Reflow(doc, 20))
//
// Render and HTTPRender wrap the same pipeline for io.Reader and HTTP
// sources.
package mdfmt
