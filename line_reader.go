package mdfmt

// LineReader is a cursor over the newline-terminated lines of one
// container. Block rules read from it; a rule that gives up restores the
// position it started from.
type LineReader struct {
	lines  []string
	pos    int
	anchor int
}

func newLineReader(lines []string) *LineReader {
	return &LineReader{lines: lines}
}

// Peek returns the next line without consuming it.
func (r *LineReader) Peek() (string, bool) {
	if r.pos >= len(r.lines) {
		return "", false
	}
	return r.lines[r.pos], true
}

// PeekAt returns the line n positions ahead of the cursor.
func (r *LineReader) PeekAt(n int) (string, bool) {
	i := r.pos + n
	if i < 0 || i >= len(r.lines) {
		return "", false
	}
	return r.lines[i], true
}

// Next consumes and returns the next line.
func (r *LineReader) Next() (string, bool) {
	line, ok := r.Peek()
	if ok {
		r.pos++
	}
	return line, ok
}

// Backstep un-consumes the last line.
func (r *LineReader) Backstep() {
	if r.pos > 0 {
		r.pos--
	}
}

// Anchor remembers the current position for Reset.
func (r *LineReader) Anchor() {
	r.anchor = r.pos
}

// Reset returns to the last anchored position.
func (r *LineReader) Reset() {
	r.pos = r.anchor
}

// Done reports whether all lines were consumed.
func (r *LineReader) Done() bool {
	return r.pos >= len(r.lines)
}
