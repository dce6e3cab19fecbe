// =============================================================================
// Tag Command Parser - Tag Writer Module
// =============================================================================
//
// This module writes documents back out as tag text. The output is canonical:
// parsing it again yields exactly the document that was written.
//
// OUTPUT STRUCTURE (default options):
//
//   <git>                  <!-- container with children -->
//     <commit/>            <!-- self-closing tag -->
//     <amend/>
//   </git>
//   <notes></notes>        <!-- empty container stays a container -->
//   <ls/>
//
// Compact output puts the whole document on one line:
//
//   <git> <commit/> <amend/> </git> <notes></notes> <ls/>
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ginjaninja78/tagcmd/internal/grammar"
	"github.com/ginjaninja78/tagcmd/internal/types"
)

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for tag generation.
type GenerateOptions struct {
	// Indent is the string used for one level of indentation.
	// Default: "  " (two spaces)
	Indent string

	// Compact writes the document on a single line, separating tags with one
	// space. Indent is ignored.
	Compact bool

	// TrailingNewline ends the output with a newline.
	// Default: true
	TrailingNewline bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:          "  ",
		TrailingNewline: true,
	}
}

// =============================================================================
// GENERATION FUNCTIONS
// =============================================================================

// Generate writes doc with the default options.
func Generate(doc types.Document) ([]byte, error) {
	return GenerateWithOptions(doc, DefaultGenerateOptions())
}

// GenerateWithOptions writes doc as tag text. Elements whose names the
// grammar would not accept are rejected, so the output always parses.
func GenerateWithOptions(doc types.Document, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer

	for i, el := range doc {
		if err := checkNames(el); err != nil {
			return nil, err
		}
		if options.Compact && i > 0 {
			buffer.WriteString(" ")
		}
		writeElement(&buffer, el, options, 0)
	}

	if options.Compact && options.TrailingNewline && buffer.Len() > 0 {
		buffer.WriteString("\n")
	}
	if !options.Compact && !options.TrailingNewline {
		return bytes.TrimSuffix(buffer.Bytes(), []byte("\n")), nil
	}

	return buffer.Bytes(), nil
}

// GenerateCommands writes the document that projects, in element mode, to
// commands: a self-closing tag for a command without arguments and a
// container with one self-closing child per argument otherwise.
func GenerateCommands(commands []types.Command, options GenerateOptions) ([]byte, error) {
	return GenerateWithOptions(DocumentFromCommands(commands), options)
}

// DocumentFromCommands builds the document that projects to commands.
func DocumentFromCommands(commands []types.Command) types.Document {
	doc := make(types.Document, 0, len(commands))
	for _, cmd := range commands {
		if len(cmd.Args) == 0 {
			doc = append(doc, types.SelfClosing(cmd.Program))
			continue
		}
		children := make([]types.Element, len(cmd.Args))
		for i, arg := range cmd.Args {
			children[i] = types.SelfClosing(arg)
		}
		doc = append(doc, types.Container(cmd.Program, children...))
	}
	return doc
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// writeElement writes an element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element types.Element, options GenerateOptions, level int) {
	if options.Compact {
		writeCompact(buffer, element)
		return
	}

	indent := strings.Repeat(options.Indent, level)
	buffer.WriteString(indent)

	if !element.IsContainer() {
		buffer.WriteString("<" + element.Name + "/>\n")
		return
	}

	if len(element.Children) == 0 {
		buffer.WriteString("<" + element.Name + "></" + element.Name + ">\n")
		return
	}

	buffer.WriteString("<" + element.Name + ">\n")
	for _, child := range element.Children {
		writeElement(buffer, child, options, level+1)
	}
	buffer.WriteString(indent + "</" + element.Name + ">\n")
}

// writeCompact writes an element on one line with single spaces between tags.
func writeCompact(buffer *bytes.Buffer, element types.Element) {
	if !element.IsContainer() {
		buffer.WriteString("<" + element.Name + "/>")
		return
	}

	buffer.WriteString("<" + element.Name + ">")
	if len(element.Children) == 0 {
		buffer.WriteString("</" + element.Name + ">")
		return
	}
	for _, child := range element.Children {
		buffer.WriteString(" ")
		writeCompact(buffer, child)
	}
	buffer.WriteString(" </" + element.Name + ">")
}

// checkNames reports the first name in el that is not a valid identifier.
func checkNames(el types.Element) error {
	if !grammar.IsValidName(el.Name) {
		return fmt.Errorf("cannot write element with invalid name %q", el.Name)
	}
	for _, child := range el.Children {
		if err := checkNames(child); err != nil {
			return err
		}
	}
	return nil
}
