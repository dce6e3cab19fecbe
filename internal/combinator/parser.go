// =============================================================================
// Tag Command Parser - Combinator Core
// =============================================================================
//
// This package contains the generic parsing primitives every grammar in the
// project is built from. A Parser is a plain function from a Position to a
// Result; combinators take parsers and return new parsers.
//
// RULES EVERY COMBINATOR FOLLOWS:
//   - No combinator keeps state between calls. Running the same parser twice
//     on the same position gives the same result, so parsers can be shared
//     between goroutines.
//   - On failure the Result's Rest is the position the parser was called
//     with. Nothing is consumed by a failed attempt.
//   - On success Rest is never behind the starting position.
//
// =============================================================================

package combinator

import (
	"strings"
	"unicode/utf8"
)

// =============================================================================
// PARSER AND RESULT
// =============================================================================

// Parser attempts to recognise a T at a position.
type Parser[T any] func(pos Position) Result[T]

// Parse applies the parser at pos.
func (p Parser[T]) Parse(pos Position) Result[T] {
	return p(pos)
}

// ParseString applies the parser at the start of input.
func (p Parser[T]) ParseString(input string) Result[T] {
	return p(NewPosition(input))
}

// Result is the outcome of a parser application.
type Result[T any] struct {
	// Rest is the unconsumed input on success, or the starting position on failure.
	Rest Position

	// Value is the recognised value. It is the zero value on failure.
	Value T

	// Err is nil on success.
	Err *Error
}

// OK reports whether the parser succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Ok builds a successful result.
func Ok[T any](rest Position, value T) Result[T] {
	return Result[T]{Rest: rest, Value: value}
}

// Fail builds a failed result that leaves the input at pos.
func Fail[T any](pos Position, err *Error) Result[T] {
	return Result[T]{Rest: pos, Err: err}
}

// Tuple holds the two values produced by Pair.
type Tuple[A, B any] struct {
	First  A
	Second B
}

// =============================================================================
// PRIMITIVES
// =============================================================================

// Literal matches exactly s.
func Literal(s string) Parser[string] {
	return func(pos Position) Result[string] {
		if strings.HasPrefix(pos.Remaining(), s) {
			return Ok(pos.Advance(len(s)), s)
		}
		return Fail[string](pos, NewError(KindExpectedLiteral, pos, s))
	}
}

// AnyChar consumes a single UTF-8 encoded rune.
var AnyChar Parser[rune] = func(pos Position) Result[rune] {
	if pos.AtEnd() {
		return Fail[rune](pos, NewError(KindUnexpectedEOF, pos, "any character"))
	}
	r, size := utf8.DecodeRuneInString(pos.Remaining())
	return Ok(pos.Advance(size), r)
}

// Eof succeeds only when the whole input has been consumed.
var Eof Parser[struct{}] = func(pos Position) Result[struct{}] {
	if pos.AtEnd() {
		return Ok(pos, struct{}{})
	}
	return Fail[struct{}](pos, NewError(KindTrailingInput, pos, "end of input"))
}

// =============================================================================
// SEQUENCING
// =============================================================================

// Pair runs p1 and then p2 on what p1 left over.
func Pair[A, B any](p1 Parser[A], p2 Parser[B]) Parser[Tuple[A, B]] {
	return func(pos Position) Result[Tuple[A, B]] {
		r1 := p1(pos)
		if !r1.OK() {
			return Fail[Tuple[A, B]](pos, r1.Err)
		}
		r2 := p2(r1.Rest)
		if !r2.OK() {
			return Fail[Tuple[A, B]](pos, r2.Err)
		}
		return Ok(r2.Rest, Tuple[A, B]{First: r1.Value, Second: r2.Value})
	}
}

// Left runs both parsers and keeps the value of the first.
func Left[A, B any](p1 Parser[A], p2 Parser[B]) Parser[A] {
	return Map(Pair(p1, p2), func(t Tuple[A, B]) A { return t.First })
}

// Right runs both parsers and keeps the value of the second.
func Right[A, B any](p1 Parser[A], p2 Parser[B]) Parser[B] {
	return Map(Pair(p1, p2), func(t Tuple[A, B]) B { return t.Second })
}

// AndThen passes the value of p to f and runs the parser f returns on the
// remaining input. It is used where the rest of the grammar depends on a value
// parsed earlier, such as a closing tag that must repeat the opening name.
func AndThen[A, B any](p Parser[A], f func(A) Parser[B]) Parser[B] {
	return func(pos Position) Result[B] {
		r := p(pos)
		if !r.OK() {
			return Fail[B](pos, r.Err)
		}
		next := f(r.Value)(r.Rest)
		if !next.OK() {
			return Fail[B](pos, next.Err)
		}
		return next
	}
}

// =============================================================================
// TRANSFORMATION AND FILTERING
// =============================================================================

// Map transforms the value of a successful parse.
func Map[A, B any](p Parser[A], f func(A) B) Parser[B] {
	return func(pos Position) Result[B] {
		r := p(pos)
		if !r.OK() {
			return Fail[B](pos, r.Err)
		}
		return Ok(r.Rest, f(r.Value))
	}
}

// Pred succeeds only if p succeeds and predicate accepts its value.
func Pred[T any](p Parser[T], predicate func(T) bool) Parser[T] {
	return func(pos Position) Result[T] {
		r := p(pos)
		if !r.OK() {
			return Fail[T](pos, r.Err)
		}
		if !predicate(r.Value) {
			return Fail[T](pos, NewError(KindPredicateRejected, pos, ""))
		}
		return r
	}
}

// EqualTo succeeds only if p produces exactly want. A different value fails
// with KindTagMismatch at the position p started from, with Expected set to
// want and Found set to the value p produced.
func EqualTo(p Parser[string], want string) Parser[string] {
	return func(pos Position) Result[string] {
		r := p(pos)
		if !r.OK() {
			return r
		}
		if r.Value != want {
			return Fail[string](pos, &Error{
				Kind:     KindTagMismatch,
				Offset:   pos.Offset(),
				Expected: want,
				Found:    r.Value,
			})
		}
		return r
	}
}

// Label replaces the failure of p with one of the given kind reported at the
// position p started from. The original failure is kept as Cause.
func Label[T any](p Parser[T], kind Kind, expected string) Parser[T] {
	return func(pos Position) Result[T] {
		r := p(pos)
		if r.OK() {
			return r
		}
		err := NewError(kind, pos, expected)
		err.Cause = r.Err
		return Fail[T](pos, err)
	}
}

// Not succeeds without consuming anything when p fails, and fails with
// KindUnexpected when p succeeds.
func Not[T any](p Parser[T], description string) Parser[struct{}] {
	return func(pos Position) Result[struct{}] {
		if r := p(pos); r.OK() {
			return Fail[struct{}](pos, NewError(KindUnexpected, pos, description))
		}
		return Ok(pos, struct{}{})
	}
}

// Lazy defers building a parser until it is first applied, which allows
// recursive grammars. The builder runs on every application, so it must
// itself be pure.
func Lazy[T any](build func() Parser[T]) Parser[T] {
	return func(pos Position) Result[T] {
		return build()(pos)
	}
}

// =============================================================================
// CHOICE AND REPETITION
// =============================================================================

// Either tries p1 and, if it fails, tries p2 from the same position. The
// first alternative that succeeds wins. When both fail the failure of p2 is
// returned with the failure of p1 attached as an alternative.
func Either[T any](p1, p2 Parser[T]) Parser[T] {
	return func(pos Position) Result[T] {
		r1 := p1(pos)
		if r1.OK() {
			return r1
		}
		r2 := p2(pos)
		if r2.OK() {
			return r2
		}
		combined := *r2.Err
		combined.Alternatives = append([]*Error{r1.Err}, r2.Err.Alternatives...)
		return Fail[T](pos, &combined)
	}
}

// ZeroOrMore applies p until it fails and collects the values. It never
// fails. Repetition also stops when p succeeds without consuming input; that
// zero-width value is discarded, so a parser that can match the empty string
// cannot make ZeroOrMore loop forever.
func ZeroOrMore[T any](p Parser[T]) Parser[[]T] {
	return func(pos Position) Result[[]T] {
		var values []T
		current := pos
		for {
			r := p(current)
			if !r.OK() || r.Rest.Offset() == current.Offset() {
				break
			}
			values = append(values, r.Value)
			current = r.Rest
		}
		return Ok(current, values)
	}
}

// OneOrMore is ZeroOrMore that requires a first match. When the first
// application fails the result is KindExpectedAtLeastOne wrapping that failure.
func OneOrMore[T any](p Parser[T]) Parser[[]T] {
	more := ZeroOrMore(p)
	return func(pos Position) Result[[]T] {
		first := p(pos)
		if !first.OK() {
			err := NewError(KindExpectedAtLeastOne, pos, first.Err.Expected)
			err.Cause = first.Err
			return Fail[[]T](pos, err)
		}
		rest := more(first.Rest)
		return Ok(rest.Rest, append([]T{first.Value}, rest.Value...))
	}
}

// ManyTill applies p repeatedly until end matches, returning the collected
// values and the value of end. end is tried before p at every step. If
// neither matches, the failure that got further into the input is reported;
// on a tie the failure of end wins.
func ManyTill[T, E any](p Parser[T], end Parser[E]) Parser[Tuple[[]T, E]] {
	return func(pos Position) Result[Tuple[[]T, E]] {
		var values []T
		current := pos
		for {
			re := end(current)
			if re.OK() {
				return Ok(re.Rest, Tuple[[]T, E]{First: values, Second: re.Value})
			}
			rp := p(current)
			if !rp.OK() {
				return Fail[Tuple[[]T, E]](pos, furthest(re.Err, rp.Err))
			}
			if rp.Rest.Offset() == current.Offset() {
				return Fail[Tuple[[]T, E]](pos, re.Err)
			}
			values = append(values, rp.Value)
			current = rp.Rest
		}
	}
}

// furthest returns whichever failure happened later in the input, preferring
// preferred on a tie.
func furthest(preferred, other *Error) *Error {
	if other.Offset > preferred.Offset {
		return other
	}
	return preferred
}
