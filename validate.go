package mdfmt

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrInvalidUTF8 reports invalid UTF-8 input.
	ErrInvalidUTF8 = errors.New("invalid utf-8 input")
	// ErrBinaryInput reports input that appears to be binary.
	ErrBinaryInput = errors.New("binary input detected")
)

const (
	minBinarySample = 64
	maxControlPct   = 2
)

// InputError locates the first byte that made ValidateInput reject a
// document. Line and Column are 1-based; Column counts bytes.
type InputError struct {
	Err    error
	Line   int
	Column int
}

func (e *InputError) Error() string {
	return fmt.Sprintf("line %d, column %d: %v", e.Line, e.Column, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ValidateInput rejects documents the tokenizer should not see. Invalid
// UTF-8 and NUL characters fail at their position. A document of at least
// 64 bytes fails when 2% or more of its characters are C0 or C1 controls
// other than tab, form feed and line endings; the error then points at the
// first such control.
func ValidateInput(src []byte) error {
	line, lineStart := 1, 0
	var control, chars int
	var firstControl *InputError
	for i := 0; i < len(src); {
		r, size := utf8.DecodeRune(src[i:])
		at := &InputError{Line: line, Column: i - lineStart + 1}
		switch {
		case r == utf8.RuneError && size <= 1:
			at.Err = ErrInvalidUTF8
			return at
		case r == 0:
			at.Err = ErrBinaryInput
			return at
		case r == '\n':
			line++
			lineStart = i + size
		case isControlRune(r):
			control++
			if firstControl == nil {
				at.Err = ErrBinaryInput
				firstControl = at
			}
		}
		chars++
		i += size
	}
	if len(src) >= minBinarySample && control*100 >= chars*maxControlPct {
		return firstControl
	}
	return nil
}

// isControlRune reports control characters that do not occur in text
// documents. Tab, line endings, vertical tab and form feed are whitespace to
// the tokenizer.
func isControlRune(r rune) bool {
	switch {
	case r >= 0x09 && r <= 0x0D:
		return false
	case r < 0x20, r == 0x7F:
		return true
	default:
		return r >= 0x80 && r <= 0x9F
	}
}
