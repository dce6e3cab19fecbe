// =============================================================================
// Tag Command Parser - Run and Export Commands
// =============================================================================
//
//   tagcmd run    [file] [--dry-run] [--mode element|line]
//   tagcmd export [file] [--format xlsx|csv] [--out path] [--sheet name]
//   tagcmd import [table] [--format xlsx|csv] [--sheet name] [--compact]
//
// run and export refuse documents that fail validation. import reads a table
// written by export and prints the tag document that projects to it.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tagcmd/internal/executor"
	"github.com/ginjaninja78/tagcmd/internal/export"
	"github.com/ginjaninja78/tagcmd/internal/xmlwriter"
)

// =============================================================================
// RUN
// =============================================================================

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		dryRun bool
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "run [file]",
		Short: "Execute the commands a document projects to",
		Long: `Execute the projected commands in order. Only programs listed in
executor.allowed_programs may run unless executor.allow_any is set. No shell
is involved: arguments reach the program exactly as written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, mainConfig, logger, err := processDocument(cmd, opts, args, withMode(mode))
			if err != nil {
				return err
			}

			runner := executor.FromConfig(mainConfig.Executor,
				executor.WithDryRun(dryRun),
				executor.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()),
				executor.WithLogger(logger),
			)

			outcomes := runner.RunAll(cmd.Context(), output.Commands, mainConfig.Executor.StopOnFailure)

			failed := 0
			for _, outcome := range outcomes {
				if !outcome.OK() {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ %s: %v\n", outcome.Command.String(), outcome.Err)
				}
			}
			if skipped := len(output.Commands) - len(outcomes); skipped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d command(s)\n", skipped)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d command(s) failed", failed, len(output.Commands))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the commands instead of running them")
	cmd.Flags().StringVar(&mode, "mode", "", "Projection mode: element or line (default from config)")
	return cmd
}

// =============================================================================
// EXPORT
// =============================================================================

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		out    string
		sheet  string
		mode   string
	)

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the projected commands to an XLSX or CSV table",
		Long: `Write one row per projected command. Without --out the table goes to
standard output. Without --format the format comes from the --out extension,
then from export.format in the configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, mainConfig, logger, err := processDocument(cmd, opts, args, withMode(mode))
			if err != nil {
				return err
			}

			chosen, err := exportFormat(format, out, mainConfig.Export.Format)
			if err != nil {
				return err
			}
			options := export.Options{SheetName: mainConfig.Export.SheetName}
			if sheet != "" {
				options.SheetName = sheet
			}

			if out == "" || out == "-" {
				return export.Write(cmd.OutOrStdout(), chosen, output.Commands, options)
			}
			if err := export.WriteFile(out, chosen, output.Commands, options); err != nil {
				return err
			}
			logger.Info("exported commands", "path", out, "format", string(chosen), "commands", len(output.Commands))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Table format: xlsx or csv")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default standard output)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name for XLSX output")
	cmd.Flags().StringVar(&mode, "mode", "", "Projection mode: element or line (default from config)")
	return cmd
}

// =============================================================================
// IMPORT
// =============================================================================

func newImportCmd(opts *rootOptions) *cobra.Command {
	var (
		format  string
		sheet   string
		compact bool
	)

	cmd := &cobra.Command{
		Use:   "import [table]",
		Short: "Turn an exported XLSX or CSV table back into a tag document",
		Long: `Read a command table written by export and print the tag document that
projects to it in element mode. A command without arguments becomes <program/>;
one with arguments becomes a container with one self-closing tag per argument.

Without an argument, or with "-", the table is read from standard input and
--format is required unless export.format in the configuration applies.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mainConfig, logger, err := opts.load(cmd)
			if err != nil {
				return err
			}

			path := ""
			if len(args) == 1 && args[0] != "-" {
				path = args[0]
			}
			chosen, err := exportFormat(format, path, mainConfig.Export.Format)
			if err != nil {
				return err
			}
			options := export.Options{SheetName: mainConfig.Export.SheetName}
			if sheet != "" {
				options.SheetName = sheet
			}

			input := cmd.InOrStdin()
			if path != "" {
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("failed to open table: %w", err)
				}
				defer file.Close()
				input = file
			}

			commands, err := export.Read(input, chosen, options)
			if err != nil {
				return err
			}
			logger.Debug("imported commands", "format", string(chosen), "commands", len(commands))

			generate := xmlwriter.DefaultGenerateOptions()
			generate.Compact = compact
			rendered, err := xmlwriter.GenerateCommands(commands, generate)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Table format: xlsx or csv (default from the file extension)")
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name for XLSX input")
	cmd.Flags().BoolVar(&compact, "compact", false, "Print every top-level element on one line")
	return cmd
}

// exportFormat picks the explicit format, then the output extension, then
// the configured default.
func exportFormat(flag, out, configured string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	if out != "" && out != "-" {
		if f, err := export.FormatFromPath(out); err == nil {
			return f, nil
		}
	}
	return export.ParseFormat(configured)
}
