package mdfmt

import (
	"strings"
)

// splitTableRow splits a row into trimmed cell texts. Outer pipes are
// optional and escaped pipes stay inside their cell.
func splitTableRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	if strings.HasSuffix(s, "|") && !isEscaped(s, len(s)-1) {
		s = s[:len(s)-1]
	}
	var cells []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '|' && !isEscaped(s, i) {
			cells = append(cells, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(cells, strings.TrimSpace(s[start:]))
}

// parseDelimiterRow returns the column alignments of a table delimiter row.
func parseDelimiterRow(line string) ([]Align, bool) {
	if !strings.Contains(line, "|") && !strings.Contains(line, "-") {
		return nil, false
	}
	cells := splitTableRow(line)
	aligns := make([]Align, 0, len(cells))
	for _, c := range cells {
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":") && len(c) > 1
		dashes := strings.TrimSuffix(strings.TrimPrefix(c, ":"), ":")
		if dashes == "" || strings.Trim(dashes, "-") != "" {
			return nil, false
		}
		switch {
		case left && right:
			aligns = append(aligns, AlignCenter)
		case right:
			aligns = append(aligns, AlignRight)
		case left:
			aligns = append(aligns, AlignLeft)
		default:
			aligns = append(aligns, AlignNone)
		}
	}
	return aligns, true
}

func parseTable(p *blockParser, r *LineReader) Block {
	header, ok := r.Peek()
	if !ok || !strings.Contains(header, "|") {
		return nil
	}
	delim, ok := r.PeekAt(1)
	if !ok || !strings.Contains(delim, "|") {
		return nil
	}
	aligns, ok := parseDelimiterRow(delim)
	if !ok {
		return nil
	}
	r.Next()
	r.Next()
	t := &Table{ColumnAlign: aligns}
	t.Header = p.tableRow(header, aligns)
	for {
		line, ok := r.Peek()
		if !ok || isBlank(line) || !strings.Contains(line, "|") {
			break
		}
		r.Next()
		t.Rows = append(t.Rows, p.tableRow(line, aligns))
	}
	return t
}

func (p *blockParser) tableRow(line string, aligns []Align) *TableRow {
	texts := splitTableRow(line)
	row := &TableRow{Cells: make([]*TableCell, len(texts))}
	for i, text := range texts {
		cell := &TableCell{}
		if i < len(aligns) {
			cell.Align = aligns[i]
		}
		p.inline(&cell.Children, text)
		row.Cells[i] = cell
	}
	return row
}
