package mdfmt

import (
	"unicode"
	"unicode/utf8"
)

// delimRun is a run of '*' or '_' that may open or close emphasis. start
// and length shrink as the run is consumed.
type delimRun struct {
	ch       byte
	start    int
	length   int
	origLen  int
	canOpen  bool
	canClose bool
}

// bracketOpener is a '[' or "![" waiting for its ']'.
type bracketOpener struct {
	pos        int
	image      bool
	active     bool
	delimIndex int
}

type coreScan struct {
	sc       *spanScanner
	text     string
	delims   []delimRun
	brackets []bracketOpener
	matches  []*spanMatch
}

// findCoreTokens resolves emphasis, strong emphasis, links and images with
// a delimiter stack: runs of '*' and '_' and link brackets are recorded
// while scanning and matched only when a valid closer is found; openers
// that never match stay literal text.
func findCoreTokens(sc *spanScanner, text string) []*spanMatch {
	c := &coreScan{sc: sc, text: text}
	c.scan()
	c.processEmphasis(0)
	return c.matches
}

func (c *coreScan) scan() {
	text := c.text
	autolinks := c.sc.enabled(SpanAutoLink)
	html := c.sc.enabled(SpanHTML)
	for i := 0; i < len(text); {
		switch ch := text[i]; ch {
		case '\\':
			if i+1 < len(text) && isASCIIPunct(text[i+1]) {
				i += 2
			} else {
				i++
			}
		case '`':
			n := backtickRun(text, i)
			if close, ok := matchCodeSpan(text, i, n); ok {
				i = close + n
			} else {
				i += n
			}
		case '<':
			if end, ok := matchAutoLink(text, i); ok && autolinks {
				i = end
			} else if end, ok := matchHTMLSpan(text, i); ok && html {
				i = end
			} else {
				i++
			}
		case '*', '_':
			i = c.pushDelimRun(i)
		case '!':
			if i+1 < len(text) && text[i+1] == '[' {
				c.brackets = append(c.brackets, bracketOpener{pos: i, image: true, active: true, delimIndex: len(c.delims)})
				i += 2
			} else {
				i++
			}
		case '[':
			c.brackets = append(c.brackets, bracketOpener{pos: i, active: true, delimIndex: len(c.delims)})
			i++
		case ']':
			i = c.closeBracket(i)
		default:
			i++
		}
	}
}

func (c *coreScan) pushDelimRun(i int) int {
	text := c.text
	ch := text[i]
	j := i
	for j < len(text) && text[j] == ch {
		j++
	}
	before, after := ' ', ' '
	if i > 0 {
		before, _ = utf8.DecodeLastRuneInString(text[:i])
	}
	if j < len(text) {
		after, _ = utf8.DecodeRuneInString(text[j:])
	}
	spaceBefore, spaceAfter := unicode.IsSpace(before), unicode.IsSpace(after)
	punctBefore, punctAfter := isPunctRune(before), isPunctRune(after)
	left := !spaceAfter && (!punctAfter || spaceBefore || punctBefore)
	right := !spaceBefore && (!punctBefore || spaceAfter || punctAfter)
	d := delimRun{ch: ch, start: i, length: j - i, origLen: j - i}
	if ch == '*' {
		d.canOpen, d.canClose = left, right
	} else {
		d.canOpen = left && (!right || punctBefore)
		d.canClose = right && (!left || punctAfter)
	}
	c.delims = append(c.delims, d)
	return j
}

func isPunctRune(r rune) bool {
	if r < utf8.RuneSelf {
		return isASCIIPunct(byte(r))
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// closeBracket handles the ']' at text[i] and returns the scan position.
func (c *coreScan) closeBracket(i int) int {
	if len(c.brackets) == 0 {
		return i + 1
	}
	top := c.brackets[len(c.brackets)-1]
	c.brackets = c.brackets[:len(c.brackets)-1]
	if !top.active {
		return i + 1
	}
	textStart := top.pos + 1
	if top.image {
		textStart++
	}
	tail, end, ok := c.linkTail(textStart, i)
	if !ok {
		return i + 1
	}
	c.processEmphasis(top.delimIndex)
	c.delims = c.delims[:top.delimIndex]
	kind := kindLink
	if top.image {
		kind = kindImage
	} else {
		for k := range c.brackets {
			if !c.brackets[k].image {
				c.brackets[k].active = false
			}
		}
	}
	c.matches = append(c.matches, &spanMatch{
		start: top.pos, end: end,
		inner: true, innerStart: textStart, innerEnd: i,
		kind: kind,
		link: tail,
	})
	return end
}

// linkTail parses what follows the link text text[textStart:close]: an
// inline destination, or a full, collapsed or shortcut reference.
func (c *coreScan) linkTail(textStart, close int) (*linkTail, int, bool) {
	text := c.text
	next := close + 1
	if next < len(text) && text[next] == '(' {
		if tail, end, ok := parseInlineTail(text, next); ok {
			return tail, end, true
		}
	}
	if next < len(text) && text[next] == '[' {
		if label, end, ok := scanLinkLabel(text, next); ok {
			def, found := c.sc.defs[normalizeLabel(label)]
			if !found {
				return nil, 0, false
			}
			return &linkTail{dest: def.Dest, title: def.Title, destType: DestFull, label: label, def: def}, end, true
		}
		if next+1 < len(text) && text[next+1] == ']' {
			if def, found := c.sc.defs[normalizeLabel(text[textStart:close])]; found && close-textStart <= maxLabelLength {
				return &linkTail{dest: def.Dest, title: def.Title, destType: DestCollapsed, def: def}, next + 2, true
			}
			return nil, 0, false
		}
	}
	if close-textStart > maxLabelLength {
		return nil, 0, false
	}
	if def, found := c.sc.defs[normalizeLabel(text[textStart:close])]; found {
		return &linkTail{dest: def.Dest, title: def.Title, destType: DestShortcut, def: def}, close + 1, true
	}
	return nil, 0, false
}

// parseInlineTail parses "(dest 'title')" starting at the '(' at text[i].
func parseInlineTail(text string, i int) (*linkTail, int, bool) {
	j := skipSpaceNewline(text, i+1)
	if j < len(text) && text[j] == ')' {
		return &linkTail{destType: DestURI}, j + 1, true
	}
	dest, kind, k, ok := scanLinkDest(text, j)
	if !ok {
		return nil, 0, false
	}
	tail := &linkTail{dest: dest, destType: kind}
	w := skipSpaceNewline(text, k)
	if w < len(text) && text[w] == ')' {
		return tail, w + 1, true
	}
	if w == k {
		return nil, 0, false
	}
	title, delim, k, ok := scanLinkTitle(text, w)
	if !ok {
		return nil, 0, false
	}
	w = skipSpaceNewline(text, k)
	if w >= len(text) || text[w] != ')' {
		return nil, 0, false
	}
	tail.title, tail.titleDelim = title, delim
	return tail, w + 1, true
}

type openerKey struct {
	ch      byte
	canOpen bool
	mod3    int
}

// processEmphasis matches delimiter runs above index bottom, innermost
// first, and records emphasis and strong emphasis matches.
func (c *coreScan) processEmphasis(bottom int) {
	openersBottom := map[openerKey]int{}
	for ci := bottom; ci < len(c.delims); {
		closer := &c.delims[ci]
		if !closer.canClose || closer.length == 0 {
			ci++
			continue
		}
		key := openerKey{closer.ch, closer.canOpen, closer.origLen % 3}
		lowest := bottom
		if v, ok := openersBottom[key]; ok && v > lowest {
			lowest = v
		}
		found := -1
		for oi := ci - 1; oi >= lowest; oi-- {
			o := &c.delims[oi]
			if o.ch != closer.ch || !o.canOpen || o.length == 0 {
				continue
			}
			if (o.canClose || closer.canOpen) && (o.origLen+closer.origLen)%3 == 0 &&
				!(o.origLen%3 == 0 && closer.origLen%3 == 0) {
				continue
			}
			found = oi
			break
		}
		if found < 0 {
			openersBottom[key] = ci
			ci++
			continue
		}
		opener := &c.delims[found]
		n := 1
		kind := kindEmphasis
		if opener.length >= 2 && closer.length >= 2 {
			n = 2
			kind = kindStrong
		}
		start := opener.start + opener.length - n
		c.matches = append(c.matches, &spanMatch{
			start: start, end: closer.start + n,
			inner: true, innerStart: start + n, innerEnd: closer.start,
			kind:  kind,
			delim: closer.ch,
		})
		opener.length -= n
		closer.start += n
		closer.length -= n
		for k := found + 1; k < ci; k++ {
			c.delims[k].length = 0
		}
		if closer.length == 0 {
			ci++
		}
	}
}
