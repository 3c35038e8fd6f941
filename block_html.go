package mdfmt

import (
	"regexp"
	"strings"
)

var htmlBlockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "base": true, "basefont": true,
	"blockquote": true, "body": true, "caption": true, "center": true, "col": true,
	"colgroup": true, "dd": true, "details": true, "dialog": true, "dir": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "frame": true, "frameset": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"head": true, "header": true, "hr": true, "html": true, "iframe": true,
	"legend": true, "li": true, "link": true, "main": true, "menu": true,
	"menuitem": true, "meta": true, "nav": true, "noframes": true, "ol": true,
	"optgroup": true, "option": true, "p": true, "param": true, "search": true,
	"section": true, "summary": true, "table": true, "tbody": true, "td": true,
	"tfoot": true, "th": true, "thead": true, "title": true, "tr": true,
	"track": true, "ul": true,
}

var (
	htmlRawTagStart  = regexp.MustCompile(`(?i)^<(script|pre|style|textarea)(?:[ \t>]|$)`)
	htmlRawTagEnd    = regexp.MustCompile(`(?i)</(?:script|pre|style|textarea)>`)
	htmlBlockTagName = regexp.MustCompile(`^</?([A-Za-z][A-Za-z0-9-]*)(?:[ \t>]|/>|$)`)
	htmlCompleteTag  = regexp.MustCompile(`^(?:` + htmlOpenTag + `|` + htmlClosingTag + `)[ \t]*$`)
)

// htmlBlockEnds holds the end markers of HTML block types 1 to 5.
var htmlBlockEnds = [...]string{2: "-->", 3: "?>", 4: ">", 5: "]]>"}

// htmlBlockType classifies the start of an HTML block by its CommonMark
// type, 1 to 7, or returns 0.
func htmlBlockType(line string) int {
	indent := leadingSpaces(line)
	if indent > 3 {
		return 0
	}
	s := strings.TrimRight(line[indent:], "\n")
	if !strings.HasPrefix(s, "<") {
		return 0
	}
	switch {
	case htmlRawTagStart.MatchString(s):
		return 1
	case strings.HasPrefix(s, "<!--"):
		return 2
	case strings.HasPrefix(s, "<?"):
		return 3
	case strings.HasPrefix(s, "<![CDATA["):
		return 5
	case len(s) > 2 && s[1] == '!' && isASCIILetter(s[2]):
		return 4
	}
	if m := htmlBlockTagName.FindStringSubmatch(s); m != nil && htmlBlockTags[strings.ToLower(m[1])] {
		return 6
	}
	if htmlCompleteTag.MatchString(s) {
		return 7
	}
	return 0
}

// htmlInterrupts reports whether line starts an HTML block that may end a
// paragraph; type 7 may not.
func htmlInterrupts(line string) bool {
	t := htmlBlockType(line)
	return t != 0 && t != 7
}

func htmlBlockEnded(kind int, line string) bool {
	switch kind {
	case 1:
		return htmlRawTagEnd.MatchString(line)
	case 2, 3, 4, 5:
		return strings.Contains(line, htmlBlockEnds[kind])
	default:
		return false
	}
}

func parseHTMLBlock(_ *blockParser, r *LineReader) Block {
	line, ok := r.Peek()
	if !ok {
		return nil
	}
	kind := htmlBlockType(line)
	if kind == 0 {
		return nil
	}
	var b strings.Builder
	for {
		line, ok := r.Peek()
		if !ok {
			break
		}
		if kind >= 6 && isBlank(line) {
			break
		}
		r.Next()
		b.WriteString(line)
		if htmlBlockEnded(kind, line) {
			break
		}
	}
	return &HTMLBlock{Content: strings.TrimSuffix(b.String(), "\n")}
}

func isASCIILetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
