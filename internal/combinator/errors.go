// =============================================================================
// Tag Command Parser - Parse Failures
// =============================================================================
//
// Failures are plain values. Every combinator reports the first failure met
// along the path it tried, together with the offset where it happened and,
// where it makes sense, what was expected and what was found instead.
//
// MATCHING:
//   Error implements Is so callers can test failures by kind:
//
//     if errors.Is(err, combinator.ErrTagMismatch) { ... }
//
// =============================================================================

package combinator

import (
	"fmt"
)

// Kind classifies a parse failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindExpectedLiteral
	KindExpectedIdentifier
	KindExpectedWhitespace
	KindExpectedAtLeastOne
	KindPredicateRejected
	KindTagMismatch
	KindTrailingInput
	KindUnexpectedEOF
	KindUnexpected
	KindDepthExceeded
	KindInputTooLarge
)

var kindNames = map[Kind]string{
	KindUnknown:            "Unknown",
	KindExpectedLiteral:    "ExpectedLiteral",
	KindExpectedIdentifier: "ExpectedIdentifier",
	KindExpectedWhitespace: "ExpectedWhitespace",
	KindExpectedAtLeastOne: "ExpectedAtLeastOne",
	KindPredicateRejected:  "PredicateRejected",
	KindTagMismatch:        "TagMismatch",
	KindTrailingInput:      "TrailingInput",
	KindUnexpectedEOF:      "UnexpectedEOF",
	KindUnexpected:         "Unexpected",
	KindDepthExceeded:      "DepthExceeded",
	KindInputTooLarge:      "InputTooLarge",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrExpectedLiteral    = &Error{Kind: KindExpectedLiteral}
	ErrExpectedIdentifier = &Error{Kind: KindExpectedIdentifier}
	ErrExpectedWhitespace = &Error{Kind: KindExpectedWhitespace}
	ErrExpectedAtLeastOne = &Error{Kind: KindExpectedAtLeastOne}
	ErrPredicateRejected  = &Error{Kind: KindPredicateRejected}
	ErrTagMismatch        = &Error{Kind: KindTagMismatch}
	ErrTrailingInput      = &Error{Kind: KindTrailingInput}
	ErrUnexpectedEOF      = &Error{Kind: KindUnexpectedEOF}
	ErrUnexpected         = &Error{Kind: KindUnexpected}
	ErrDepthExceeded      = &Error{Kind: KindDepthExceeded}
	ErrInputTooLarge      = &Error{Kind: KindInputTooLarge}
)

// previewLength caps how much of the remaining input is quoted in messages.
const previewLength = 16

// Error is a parse failure.
type Error struct {
	// Kind classifies the failure.
	Kind Kind

	// Offset is the byte offset where the failure occurred.
	Offset int

	// Expected describes what the parser was looking for.
	Expected string

	// Found is the text found at Offset (truncated), or empty at end of input.
	Found string

	// Alternatives holds failures of alternatives tried before this one.
	Alternatives []*Error

	// Cause is the inner failure a labelled parser replaced.
	Cause *Error
}

// NewError builds a failure of the given kind at pos. Found is filled from
// the text remaining at pos.
func NewError(kind Kind, pos Position, expected string) *Error {
	return &Error{
		Kind:     kind,
		Offset:   pos.Offset(),
		Expected: expected,
		Found:    preview(pos.Remaining()),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	found := describeFound(e.Found)

	switch e.Kind {
	case KindExpectedLiteral:
		return fmt.Sprintf("expected %q at offset %d, found %s", e.Expected, e.Offset, found)
	case KindExpectedIdentifier:
		return fmt.Sprintf("expected identifier at offset %d, found %s", e.Offset, found)
	case KindExpectedWhitespace:
		return fmt.Sprintf("expected whitespace at offset %d, found %s", e.Offset, found)
	case KindExpectedAtLeastOne:
		return fmt.Sprintf("expected at least one %s at offset %d, found %s", orDefault(e.Expected, "match"), e.Offset, found)
	case KindPredicateRejected:
		return fmt.Sprintf("%s rejected at offset %d", orDefault(e.Expected, "value"), e.Offset)
	case KindTagMismatch:
		return fmt.Sprintf("closing tag </%s> does not match opening tag <%s> at offset %d", e.Found, e.Expected, e.Offset)
	case KindTrailingInput:
		return fmt.Sprintf("unexpected trailing input at offset %d: %s", e.Offset, found)
	case KindUnexpectedEOF:
		return fmt.Sprintf("unexpected end of input at offset %d", e.Offset)
	case KindUnexpected:
		return fmt.Sprintf("unexpected %s at offset %d", orDefault(e.Expected, found), e.Offset)
	case KindDepthExceeded:
		return fmt.Sprintf("element <%s> at offset %d exceeds the maximum nesting depth of %s", e.Found, e.Offset, e.Expected)
	case KindInputTooLarge:
		return fmt.Sprintf("input exceeds maximum length: %s", e.Expected)
	default:
		return fmt.Sprintf("parse failure at offset %d", e.Offset)
	}
}

// Unwrap returns the inner failure, if any.
func (e *Error) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// preview returns at most previewLength runes of s.
func preview(s string) string {
	count := 0
	for i := range s {
		if count == previewLength {
			return s[:i]
		}
		count++
	}
	return s
}

func describeFound(found string) string {
	if found == "" {
		return "end of input"
	}
	return fmt.Sprintf("%q", found)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
