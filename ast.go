package mdfmt

import (
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DumpAST writes the token tree rooted at tok as a YAML document. Every
// token becomes a mapping with a type key, its surface attributes and a
// children sequence when it has children.
func DumpAST(w io.Writer, tok Token) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(astNode(tok)); err != nil {
		return fmt.Errorf("dump ast: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("dump ast: %w", err)
	}
	return nil
}

type astMap struct {
	node *yaml.Node
}

func newASTMap(typ string) astMap {
	m := astMap{node: &yaml.Node{Kind: yaml.MappingNode}}
	return m.str("type", typ)
}

func (m astMap) add(key string, value *yaml.Node) astMap {
	m.node.Content = append(m.node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, value)
	return m
}

func (m astMap) str(key, value string) astMap {
	return m.add(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value})
}

// optional adds a string attribute only when it is set.
func (m astMap) optional(key, value string) astMap {
	if value == "" {
		return m
	}
	return m.str(key, value)
}

func (m astMap) num(key string, value int) astMap {
	return m.add(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(value)})
}

func (m astMap) flag(key string, value bool) astMap {
	return m.add(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(value)})
}

func (m astMap) children(key string, toks ...Token) astMap {
	if len(toks) == 0 {
		return m
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, t := range toks {
		seq.Content = append(seq.Content, astNode(t))
	}
	return m.add(key, seq)
}

func tokens[T Token](xs []T) []Token {
	out := make([]Token, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func delimText(d byte) string {
	if d == 0 {
		return ""
	}
	return string(d)
}

func astNode(tok Token) *yaml.Node {
	switch t := tok.(type) {
	case *Document:
		return newASTMap("Document").children("children", tokens(t.Children)...).node
	case *FrontMatter:
		return newASTMap("FrontMatter").str("delimiter", t.Delimiter).str("raw", t.Raw).node
	case *Paragraph:
		return newASTMap("Paragraph").children("children", tokens(t.Children)...).node
	case *Heading:
		return newASTMap("Heading").num("level", t.Level).optional("closing_sequence", t.ClosingSequence).
			children("children", tokens(t.Children)...).node
	case *SetextHeading:
		return newASTMap("SetextHeading").num("level", t.Level).num("underline_length", t.UnderlineLength).
			children("children", tokens(t.Children)...).node
	case *Quote:
		return newASTMap("Quote").children("children", tokens(t.Children)...).node
	case *List:
		m := newASTMap("List").flag("ordered", t.Ordered)
		if t.Ordered {
			m = m.num("start", t.Start)
		}
		return m.flag("loose", t.Loose).children("children", tokens(t.Items)...).node
	case *ListItem:
		return newASTMap("ListItem").str("leader", t.Leader).num("indentation", t.Indentation).
			children("children", tokens(t.Children)...).node
	case *BlockCode:
		return newASTMap("BlockCode").str("content", t.Content).node
	case *CodeFence:
		return newASTMap("CodeFence").str("delimiter", t.Delimiter).optional("info_string", t.InfoString).
			num("indentation", t.Indentation).str("content", t.Content).node
	case *Table:
		m := newASTMap("Table")
		aligns := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, a := range t.ColumnAlign {
			aligns.Content = append(aligns.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: a.String()})
		}
		m = m.add("column_align", aligns)
		if t.Header != nil {
			m = m.children("header", t.Header)
		}
		return m.children("children", tokens(t.Rows)...).node
	case *TableRow:
		return newASTMap("TableRow").children("children", tokens(t.Cells)...).node
	case *TableCell:
		return newASTMap("TableCell").str("align", t.Align.String()).children("children", tokens(t.Children)...).node
	case *HTMLBlock:
		return newASTMap("HTMLBlock").str("content", t.Content).node
	case *LinkReferenceDefinitionBlock:
		return newASTMap("LinkReferenceDefinitionBlock").children("children", tokens(t.Definitions)...).node
	case *ThematicBreak:
		return newASTMap("ThematicBreak").str("line", t.Line).node
	case *BlankLine:
		return newASTMap("BlankLine").node
	case *CustomBlock:
		return newASTMap("CustomBlock").str("name", t.Name).node
	case *RawText:
		return newASTMap("RawText").str("content", t.Content).node
	case *Strong:
		return newASTMap("Strong").str("delimiter", delimText(t.Delimiter)).children("children", tokens(t.Children)...).node
	case *Emphasis:
		return newASTMap("Emphasis").str("delimiter", delimText(t.Delimiter)).children("children", tokens(t.Children)...).node
	case *InlineCode:
		return newASTMap("InlineCode").str("delimiter", t.Delimiter).str("content", t.Content).node
	case *Strikethrough:
		return newASTMap("Strikethrough").children("children", tokens(t.Children)...).node
	case *Link:
		return newASTMap("Link").str("target", t.Target).optional("title", t.Title).str("dest_type", t.DestType.String()).
			optional("title_delimiter", delimText(t.TitleDelimiter)).optional("label", t.Label).
			children("children", tokens(t.Children)...).node
	case *Image:
		return newASTMap("Image").str("src", t.Src).optional("title", t.Title).str("dest_type", t.DestType.String()).
			optional("title_delimiter", delimText(t.TitleDelimiter)).optional("label", t.Label).
			children("children", tokens(t.Children)...).node
	case *AutoLink:
		return newASTMap("AutoLink").str("target", t.Target).flag("mailto", t.Mailto).node
	case *EscapeSequence:
		return newASTMap("EscapeSequence").str("char", t.Char).node
	case *LineBreak:
		return newASTMap("LineBreak").flag("soft", t.Soft).optional("marker", t.Marker).node
	case *HTMLSpan:
		return newASTMap("HTMLSpan").str("content", t.Content).node
	case *LinkReferenceDefinition:
		return newASTMap("LinkReferenceDefinition").str("label", t.Label).str("dest", t.Dest).
			optional("title", t.Title).str("dest_type", t.DestType.String()).
			optional("title_delimiter", delimText(t.TitleDelimiter)).node
	case *CustomSpan:
		m := newASTMap("CustomSpan").str("name", t.Name)
		if t.Children != nil {
			return m.children("children", tokens(t.Children)...).node
		}
		return m.str("content", t.Content).node
	default:
		panic(fmt.Sprintf("mdfmt: dump of unknown token %T", tok))
	}
}
