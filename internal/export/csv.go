package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ginjaninja78/tagcmd/internal/types"
)

// WriteCSV writes the header row and one row per command.
func WriteCSV(w io.Writer, commands []types.Command) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Headers()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(Rows(commands)); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// ReadCSV reads commands from a CSV table. The reader is lenient about
// field counts and quoting so hand-edited files load.
func ReadCSV(r io.Reader) ([]types.Command, error) {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return commandsFromRows(rows)
}
