// =============================================================================
// Tag Command Parser - Lexical Atoms
// =============================================================================
//
// Whitespace and tag names. Everything here is composed from combinator
// calls; there is no hand-written scanning loop.
//
//   whitespace0 := (" " | "\t" | "\n" | "\r")*
//   whitespace1 := (" " | "\t" | "\n" | "\r")+
//   identifier  := alpha (alnum | "." | "_" | "-")*
//
// Letters and digits are ASCII only.
//
// =============================================================================

package grammar

import (
	c "github.com/ginjaninja78/tagcmd/internal/combinator"
)

// WhitespaceChar matches one space, tab, newline or carriage return.
var WhitespaceChar = c.Pred(c.AnyChar, isWhitespace)

// Whitespace0 matches any amount of whitespace, including none.
var Whitespace0 = c.ZeroOrMore(WhitespaceChar)

// Whitespace1 matches at least one whitespace character.
var Whitespace1 = c.Label(c.OneOrMore(WhitespaceChar), c.KindExpectedWhitespace, "whitespace")

// Identifier matches a tag name and returns it.
var Identifier = c.Label(
	c.Map(
		c.Pair(c.Pred(c.AnyChar, isIdentifierStart), c.ZeroOrMore(c.Pred(c.AnyChar, isIdentifierRune))),
		func(t c.Tuple[rune, []rune]) string {
			return string(t.First) + string(t.Second)
		},
	),
	c.KindExpectedIdentifier,
	"identifier",
)

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return isLetter(r)
}

func isIdentifierRune(r rune) bool {
	return isLetter(r) || isDigit(r) || r == '.' || r == '_' || r == '-'
}

// IsValidName reports whether name would be accepted by Identifier as a
// complete tag name.
func IsValidName(name string) bool {
	r := Identifier.ParseString(name)
	return r.OK() && r.Rest.AtEnd()
}
