// Command tagcmd parses XML-like tag documents and turns them into CLI
// commands. See cmd/root.go for the command tree.
package main

import (
	"github.com/ginjaninja78/tagcmd/cmd"
)

func main() {
	cmd.Execute()
}
