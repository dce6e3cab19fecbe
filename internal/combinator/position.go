// =============================================================================
// Tag Command Parser - Input Position
// =============================================================================
//
// A Position is an immutable view into the text being parsed. Parsers never
// mutate a Position; every successful step hands back a new one that points
// at the remaining, unconsumed text.
//
// INVARIANTS:
//   - 0 <= offset <= len(input)
//   - offsets only move forward across successful parser applications
//
// =============================================================================

package combinator

import (
	"unicode/utf8"
)

// Position marks a byte offset inside the original input.
type Position struct {
	input  string
	offset int
}

// NewPosition returns a Position at the start of input.
func NewPosition(input string) Position {
	return Position{input: input}
}

// Input returns the complete original text.
func (p Position) Input() string {
	return p.input
}

// Offset returns the byte offset of the position.
func (p Position) Offset() int {
	return p.offset
}

// Remaining returns the unconsumed text.
func (p Position) Remaining() string {
	return p.input[p.offset:]
}

// AtEnd reports whether the whole input has been consumed.
func (p Position) AtEnd() bool {
	return p.offset >= len(p.input)
}

// Advance returns a new Position n bytes further on. The result is clamped to
// the input length and never moves backwards.
func (p Position) Advance(n int) Position {
	if n <= 0 {
		return p
	}
	next := p.offset + n
	if next > len(p.input) {
		next = len(p.input)
	}
	return Position{input: p.input, offset: next}
}

// LineColumn returns the 1-based line and column of the position. Columns are
// counted in runes so multi-byte characters occupy a single column.
func (p Position) LineColumn() (line, column int) {
	line, column = 1, 1
	consumed := p.input[:p.offset]
	for len(consumed) > 0 {
		r, size := utf8.DecodeRuneInString(consumed)
		consumed = consumed[size:]
		if r == '\n' {
			line++
			column = 1
			continue
		}
		column++
	}
	return line, column
}
