// =============================================================================
// Tag Command Parser - Command Export
// =============================================================================
//
// This package writes projected commands as a table, either an XLSX workbook
// or a CSV file, and reads such tables back into commands.
//
// TABLE LAYOUT:
//
//   | index | program | args          | argv              |
//   |-------|---------|---------------|-------------------|
//   | 1     | git     | commit amend  | git commit amend  |
//   | 2     | ls      |               | ls                |
//
// Arguments are joined with a single space. Tag names never contain spaces,
// so the join is reversible.
//
// =============================================================================

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ginjaninja78/tagcmd/internal/types"
)

// Format selects the table encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DefaultSheetName is used when no worksheet name is given.
const DefaultSheetName = "Commands"

// Column headers, in table order.
const (
	ColumnIndex   = "index"
	ColumnProgram = "program"
	ColumnArgs    = "args"
	ColumnArgv    = "argv"
)

// Headers returns the header row.
func Headers() []string {
	return []string{ColumnIndex, ColumnProgram, ColumnArgs, ColumnArgv}
}

// ParseFormat accepts "xlsx" or "csv" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown export format %q (valid: xlsx, csv)", s)
	}
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Options configures an export.
type Options struct {
	// SheetName is the XLSX worksheet name. Ignored for CSV.
	SheetName string
}

func (o Options) sheet() string {
	if o.SheetName == "" {
		return DefaultSheetName
	}
	return o.SheetName
}

// Rows returns the data rows for commands, without the header row.
func Rows(commands []types.Command) [][]string {
	rows := make([][]string, len(commands))
	for i, cmd := range commands {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			cmd.Program,
			strings.Join(cmd.Args, " "),
			cmd.String(),
		}
	}
	return rows
}

// Write encodes commands to w in the given format.
func Write(w io.Writer, format Format, commands []types.Command, opts Options) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, commands, opts)
	case FormatCSV:
		return WriteCSV(w, commands)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// WriteFile creates path and writes commands to it.
func WriteFile(path string, format Format, commands []types.Command, opts Options) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()

	return Write(file, format, commands, opts)
}

// Read decodes a table written by Write.
func Read(r io.Reader, format Format, opts Options) ([]types.Command, error) {
	switch format {
	case FormatXLSX:
		return ReadXLSX(r, opts)
	case FormatCSV:
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// ReadFile opens path and decodes it, choosing the format from the extension.
func ReadFile(path string, opts Options) ([]types.Command, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file, format, opts)
}

// =============================================================================
// ROW DECODING
// =============================================================================

// commandsFromRows turns a header row plus data rows into commands. Columns
// are located by header name so extra or reordered columns are tolerated.
// Only program and args are required; index and argv are informational.
func commandsFromRows(rows [][]string) ([]types.Command, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("table is empty")
	}

	programCol, argsCol := -1, -1
	for i, header := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(header)) {
		case ColumnProgram:
			programCol = i
		case ColumnArgs:
			argsCol = i
		}
	}
	if programCol < 0 {
		return nil, fmt.Errorf("missing %q column", ColumnProgram)
	}

	var commands []types.Command
	for i, row := range rows[1:] {
		if isRowEmpty(row) {
			continue
		}

		program := cell(row, programCol)
		if program == "" {
			return nil, fmt.Errorf("row %d: empty program", i+2)
		}

		cmd := types.Command{Program: program}
		if argsCol >= 0 {
			if fields := strings.Fields(cell(row, argsCol)); len(fields) > 0 {
				cmd.Args = fields
			}
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}

func cell(row []string, index int) string {
	if index < len(row) {
		return strings.TrimSpace(row[index])
	}
	return ""
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
