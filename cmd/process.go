// =============================================================================
// Tag Command Parser - Process Command
// =============================================================================
//
// This file defines the 'process' command, which converts every document in
// the input directory.
//
// COMMAND USAGE:
//   tagcmd process [--dry-run]
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Discover tag documents in the input directory
//   3. For each file (concurrently, up to max_concurrency):
//      a. Parse the document
//      b. Project, transform and validate the commands
//      c. Write the JSON report
//      d. Archive the input
//   4. Write the summary log
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tagcmd/internal/converter"
	"github.com/ginjaninja78/tagcmd/pkg/utils"
)

func newProcessCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Convert every document in the input directory",
		Long: `The process command scans the input directory for tag documents and
converts each one into a JSON report of its commands.

Processing is done concurrently. Each file is processed independently, and
errors in one file do not affect the others unless stop_on_error is set.

On successful processing:
  - The report is placed in the output directory
  - The original document is moved to the input archive (archive_inputs)
  - A summary log is written

On error:
  - Validation findings are logged to <name>_errors.log in the output directory
  - The original document remains in the input directory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd, opts, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate processing without writing output files")
	return cmd
}

// runProcess orchestrates the batch conversion.
func runProcess(cmd *cobra.Command, opts *rootOptions, dryRun bool) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "=== Tag Command Processor ===")

	mainConfig, logger, err := opts.load(cmd)
	if err != nil {
		return err
	}
	if !dryRun {
		if err := mainConfig.EnsureDirectories(); err != nil {
			return err
		}
	}

	batch, err := converter.NewBatch(mainConfig, logger)
	if err != nil {
		return err
	}
	batch.DryRun = dryRun

	inputFiles, err := batch.Discover()
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No input files found in the input directory.")
		return nil
	}
	fmt.Fprintf(out, "Found %d file(s) to process\n", len(inputFiles))

	results := batch.Run(cmd.Context(), inputFiles)

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		switch {
		case result.Success && result.OutputFile != "":
			fmt.Fprintf(out, "  ✓ %s -> %s\n", name, filepath.Base(result.OutputFile))
		case result.Success:
			fmt.Fprintf(out, "  ✓ %s (%d command(s))\n", name, result.Stats.CommandsProjected)
		default:
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
		}
	}

	summary := batch.Summarize(startTime, time.Now(), results)

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Commands:        %d\n", summary.TotalCommands)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))

	if !dryRun {
		path, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir)
		if err != nil {
			logger.Warn("failed to write summary log", "error", err)
		} else {
			fmt.Fprintf(out, "Summary:         %s\n", path)
		}
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d file(s) failed", summary.FailedFiles)
	}
	return nil
}
