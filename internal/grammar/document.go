// =============================================================================
// Tag Command Parser - Document Assembler
// =============================================================================
//
//   document := (whitespace0 element)* whitespace0
//
// The assembler drives the element grammar over the whole input. It succeeds
// only when every byte has been consumed; there is no partial output.
//
// ERROR POLICY:
//   - Text that cannot open an element (anything not starting with "<", or a
//     stray closing "</") is reported as TrailingInput at its offset.
//   - Any other failure from the element grammar is reported unchanged.
//   - All failures are wrapped in a *SyntaxError carrying line and column.
//
// =============================================================================

package grammar

import (
	"fmt"
	"log/slog"

	c "github.com/ginjaninja78/tagcmd/internal/combinator"
	"github.com/ginjaninja78/tagcmd/internal/logging"
	"github.com/ginjaninja78/tagcmd/internal/types"
)

// DefaultMaxInputBytes is the input size limit used when none is configured.
const DefaultMaxInputBytes = 1 << 20

// =============================================================================
// PARSER OPTIONS
// =============================================================================

// Options configures document parsing.
type Options struct {
	// MaxInputBytes rejects larger inputs before parsing. Default: 1 MiB.
	MaxInputBytes int

	// MaxDepth limits element nesting. Default: 64.
	MaxDepth int

	// Logger receives debug traces. Default: discard.
	Logger *slog.Logger
}

// SyntaxError is the terminal failure of a document parse.
type SyntaxError struct {
	// Err is the underlying combinator failure.
	Err *c.Error

	// Line and Column locate Err.Offset (1-based).
	Line   int
	Column int
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Err.Error())
}

// Unwrap exposes the combinator failure to errors.Is and errors.As.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parser turns input text into a Document. It holds no per-parse state and
// is safe for concurrent use.
type Parser struct {
	options Options
	element c.Parser[types.Element]
	opener  c.Parser[string]
	logger  *slog.Logger
}

// New creates a document parser.
func New(opts Options) *Parser {
	if opts.MaxInputBytes <= 0 {
		opts.MaxInputBytes = DefaultMaxInputBytes
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	return &Parser{
		options: opts,
		element: ElementWithDepth(opts.MaxDepth),
		opener:  c.Right(c.Not(c.Literal("</"), "closing tag"), c.Literal("<")),
		logger:  opts.Logger.With("component", "grammar"),
	}
}

// ParseDocument parses text with default options.
func ParseDocument(text string) (types.Document, error) {
	return New(Options{}).Parse(text)
}

// Parse parses a complete document.
func (p *Parser) Parse(text string) (types.Document, error) {
	start := c.NewPosition(text)

	if len(text) > p.options.MaxInputBytes {
		return nil, p.syntaxError(start, &c.Error{
			Kind:     c.KindInputTooLarge,
			Offset:   0,
			Expected: fmt.Sprintf("%d > %d bytes", len(text), p.options.MaxInputBytes),
		})
	}

	p.logger.Debug("parsing document", "length", len(text))

	var doc types.Document
	current := start
	for {
		current = Whitespace0(current).Rest
		if c.Eof(current).OK() {
			break
		}

		r := p.element(current)
		if !r.OK() {
			if !p.opener(current).OK() {
				return nil, p.syntaxError(current, c.NewError(c.KindTrailingInput, current, "end of input"))
			}
			return nil, p.syntaxError(current, r.Err)
		}

		doc = append(doc, r.Value)
		current = r.Rest
	}

	p.logger.Debug("parsed document", "elements", len(doc))
	return doc, nil
}

func (p *Parser) syntaxError(at c.Position, err *c.Error) *SyntaxError {
	pos := c.NewPosition(at.Input()).Advance(err.Offset)
	line, column := pos.LineColumn()
	p.logger.Debug("parse failed",
		"kind", err.Kind.String(),
		"offset", err.Offset,
		"error", err)
	return &SyntaxError{Err: err, Line: line, Column: column}
}
