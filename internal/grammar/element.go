// =============================================================================
// Tag Command Parser - Element Grammar
// =============================================================================
//
//   element      := self_closing | container
//   self_closing := "<" identifier "/>"
//   container    := "<" identifier ">" (whitespace0 element)* whitespace0
//                   "</" identifier ">"          ; identifiers must match
//
// The closing tag of a container depends on the name read by its opening
// tag, so containers are built with AndThen: the open tag's name is passed
// into the constructor of the parser for the rest of the element.
//
// Self-closing tags are tried first. Either is first-match, so this order
// must be kept if the grammar ever grows an ambiguity.
//
// =============================================================================

package grammar

import (
	"strconv"

	c "github.com/ginjaninja78/tagcmd/internal/combinator"
	"github.com/ginjaninja78/tagcmd/internal/types"
)

// DefaultMaxDepth is the nesting limit used when none is configured.
const DefaultMaxDepth = 64

// SelfClosingTag matches <name/>.
var SelfClosingTag = c.Map(
	c.Right(c.Literal("<"), c.Left(Identifier, c.Literal("/>"))),
	types.SelfClosing,
)

// OpenTag matches <name> and returns the name.
var OpenTag = c.Right(c.Literal("<"), c.Left(Identifier, c.Literal(">")))

// CloseTag matches </expected>. A well-formed closing tag carrying any other
// name fails with KindTagMismatch at the offset of "</".
func CloseTag(expected string) c.Parser[string] {
	return c.EqualTo(
		c.Right(c.Literal("</"), c.Left(Identifier, c.Literal(">"))),
		expected,
	)
}

// ContainerTag matches <name> children </name> with the default depth limit.
var ContainerTag = containerAt(1, DefaultMaxDepth)

// Element matches a self-closing tag or a container with the default depth
// limit.
var Element = ElementWithDepth(DefaultMaxDepth)

// ElementWithDepth returns the element parser with the given nesting limit.
// A non-positive limit selects DefaultMaxDepth.
func ElementWithDepth(maxDepth int) c.Parser[types.Element] {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return elementAt(1, maxDepth)
}

// elementAt is the element parser for an element at the given depth.
// Depth is a constructor argument, not shared state, so the parser stays pure.
func elementAt(depth, maxDepth int) c.Parser[types.Element] {
	if depth > maxDepth {
		return tooDeep(maxDepth)
	}
	return c.Either(SelfClosingTag, containerAt(depth, maxDepth))
}

// containerAt builds the container parser for the given depth.
func containerAt(depth, maxDepth int) c.Parser[types.Element] {
	return c.AndThen(OpenTag, func(name string) c.Parser[types.Element] {
		child := c.Left(
			c.Right(c.Not(c.Literal("</"), "closing tag"), c.Lazy(func() c.Parser[types.Element] {
				return elementAt(depth+1, maxDepth)
			})),
			Whitespace0,
		)
		body := c.Right(Whitespace0, c.ManyTill(child, CloseTag(name)))
		return c.Map(body, func(t c.Tuple[[]types.Element, string]) types.Element {
			return types.Container(name, t.First...)
		})
	})
}

// tooDeep fails every element that starts at this depth. The failure is
// reported at the tag name so it outranks the enclosing container's search
// for its closing tag.
func tooDeep(maxDepth int) c.Parser[types.Element] {
	name := c.Right(c.Literal("<"), Identifier)
	return func(pos c.Position) c.Result[types.Element] {
		r := name(pos)
		if !r.OK() {
			return c.Fail[types.Element](pos, r.Err)
		}
		return c.Fail[types.Element](pos, &c.Error{
			Kind:     c.KindDepthExceeded,
			Offset:   pos.Offset() + 1,
			Expected: strconv.Itoa(maxDepth),
			Found:    r.Value,
		})
	}
}
