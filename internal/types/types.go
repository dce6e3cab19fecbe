// =============================================================================
// Tag Command Parser - Shared Types
// =============================================================================
//
// This package contains the types shared by the grammar, the projector, the
// renderer, the validator and the exporters, kept here to avoid import cycles.
//
//   Element  - one parsed tag (self-closing or container)
//   Document - the ordered top-level elements of one input
//   Command  - one projected CLI command
//
// =============================================================================

package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// =============================================================================
// ELEMENT TYPES
// =============================================================================

// ElementKind distinguishes the two element variants.
type ElementKind int

const (
	// SelfClosingKind is an element written <name/>.
	SelfClosingKind ElementKind = iota

	// ContainerKind is an element written <name> ... </name>.
	ContainerKind
)

// String returns the kind name used in JSON and exports.
func (k ElementKind) String() string {
	switch k {
	case SelfClosingKind:
		return "self_closing"
	case ContainerKind:
		return "container"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ElementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ElementKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "self_closing":
		*k = SelfClosingKind
	case "container":
		*k = ContainerKind
	default:
		return fmt.Errorf("unknown element kind: %s", text)
	}
	return nil
}

// Element is one parsed tag.
type Element struct {
	// Name is the tag name. Never empty for a parsed element.
	Name string `json:"name"`

	// Kind tells self-closing tags and containers apart.
	Kind ElementKind `json:"kind"`

	// Children holds the nested elements of a container, in textual order.
	// It is nil for self-closing tags and for empty containers.
	Children []Element `json:"children,omitempty"`
}

// SelfClosing returns the element <name/>.
func SelfClosing(name string) Element {
	return Element{Name: name, Kind: SelfClosingKind}
}

// Container returns the element <name>children...</name>.
func Container(name string, children ...Element) Element {
	if len(children) == 0 {
		children = nil
	}
	return Element{Name: name, Kind: ContainerKind, Children: children}
}

// IsContainer reports whether the element was written with open and close tags.
func (e Element) IsContainer() bool {
	return e.Kind == ContainerKind
}

// Depth returns the nesting depth of the element, counting itself as 1.
func (e Element) Depth() int {
	deepest := 0
	for _, child := range e.Children {
		if d := child.Depth(); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

// String returns a compact debugging form: SelfClosing(a) or Container(a, [...]).
func (e Element) String() string {
	if !e.IsContainer() {
		return fmt.Sprintf("SelfClosing(%s)", e.Name)
	}
	parts := make([]string, len(e.Children))
	for i, child := range e.Children {
		parts[i] = child.String()
	}
	return fmt.Sprintf("Container(%s, [%s])", e.Name, strings.Join(parts, ", "))
}

// Document is the ordered sequence of top-level elements of one input.
// Order is significant: it is the order commands are produced in.
type Document []Element

// Visit is one element reached by Walk.
type Visit struct {
	Element Element

	// Index is the 1-based position of the top-level element this one sits in.
	Index int

	// Path is the slash-separated chain of names from the top-level element.
	Path string

	// Depth is 1 for top-level elements.
	Depth int
}

// Walk calls fn for every element in depth-first, document order. Returning
// false from fn stops the walk; Walk then returns false.
func (d Document) Walk(fn func(Visit) bool) bool {
	var visit func(el Element, index int, path string, depth int) bool
	visit = func(el Element, index int, path string, depth int) bool {
		if !fn(Visit{Element: el, Index: index, Path: path, Depth: depth}) {
			return false
		}
		for _, child := range el.Children {
			if !visit(child, index, path+"/"+child.Name, depth+1) {
				return false
			}
		}
		return true
	}
	for i, el := range d {
		if !visit(el, i+1, el.Name, 1) {
			return false
		}
	}
	return true
}

// =============================================================================
// COMMAND TYPES
// =============================================================================

// Command is a projected CLI instruction.
type Command struct {
	// Program is the name of the program to run.
	Program string `json:"program"`

	// Args are the ordered arguments passed to Program. Nil when there are none.
	Args []string `json:"args"`
}

// MarshalJSON always encodes Args as an array, never null.
func (c Command) MarshalJSON() ([]byte, error) {
	type plain Command
	out := plain(c)
	if out.Args == nil {
		out.Args = []string{}
	}
	return json.Marshal(out)
}

// Argv returns the program followed by its arguments.
func (c Command) Argv() []string {
	return append([]string{c.Program}, c.Args...)
}

// String returns the command as a shell-like line.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}
