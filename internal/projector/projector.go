// =============================================================================
// Tag Command Parser - Command Projector
// =============================================================================
//
// The projector turns a parsed Document into the commands it describes.
//
// MODES:
//   element - one command per top-level element. The element name is the
//             program and the names of its direct children, in order, are
//             the arguments:
//
//               <git> <status/> </git> <ls/>   =>   git status
//                                                   ls
//
//   line    - the whole document is a single command line. The first
//             top-level name is the program and the remaining top-level
//             names are its arguments:
//
//               <vim/> <text.txt/>             =>   vim text.txt
//
// Projection never fails. An empty document yields no commands.
//
// =============================================================================

package projector

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/tagcmd/internal/types"
)

// Mode selects how a document is turned into commands.
type Mode string

const (
	// ModeElement projects one command per top-level element.
	ModeElement Mode = "element"

	// ModeLine projects the whole document as one command line.
	ModeLine Mode = "line"
)

// ParseMode converts a configuration value into a Mode. The empty string
// selects ModeElement.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeElement:
		return ModeElement, nil
	case ModeLine:
		return ModeLine, nil
	default:
		return "", fmt.Errorf("unknown projection mode %q (valid: element, line)", s)
	}
}

// Project projects doc in element mode.
func Project(doc types.Document) []types.Command {
	var commands []types.Command
	for _, el := range doc {
		commands = append(commands, ProjectElement(el))
	}
	return commands
}

// ProjectElement builds the command for a single element. Each child is
// projected in turn and donates its program name as an argument; anything
// nested below a child is dropped.
func ProjectElement(el types.Element) types.Command {
	var args []string
	for _, child := range el.Children {
		args = append(args, ProjectElement(child).Program)
	}
	return types.Command{Program: el.Name, Args: args}
}

// ProjectLine projects doc as a single command line. It returns nil for an
// empty document.
func ProjectLine(doc types.Document) []types.Command {
	if len(doc) == 0 {
		return nil
	}
	var args []string
	for _, el := range doc[1:] {
		args = append(args, el.Name)
	}
	return []types.Command{{Program: doc[0].Name, Args: args}}
}

// ProjectMode projects doc using the given mode. Unknown modes fall back to
// ModeElement.
func ProjectMode(doc types.Document, mode Mode) []types.Command {
	if mode == ModeLine {
		return ProjectLine(doc)
	}
	return Project(doc)
}
