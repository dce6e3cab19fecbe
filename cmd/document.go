// =============================================================================
// Tag Command Parser - Document Commands
// =============================================================================
//
// The commands in this file work on a single document:
//
//   tagcmd parse    [file] [--json]
//   tagcmd project  [file] [--mode element|line] [--json]
//   tagcmd render   [file] [--compact]
//   tagcmd validate [file]
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tagcmd/internal/config"
	"github.com/ginjaninja78/tagcmd/internal/converter"
	"github.com/ginjaninja78/tagcmd/internal/projector"
	"github.com/ginjaninja78/tagcmd/internal/validation"
	"github.com/ginjaninja78/tagcmd/internal/xmlwriter"
)

// =============================================================================
// PARSE
// =============================================================================

func newParseCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a document and print its element tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, _, err := opts.pipeline(cmd)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			doc, err := p.Parse(text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, doc)
			}
			for _, el := range doc {
				fmt.Fprintln(out, el.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")
	return cmd
}

// =============================================================================
// PROJECT
// =============================================================================

func newProjectCmd(opts *rootOptions) *cobra.Command {
	var (
		mode   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "project [file]",
		Short: "Parse a document and print the commands it projects to",
		Long: `Parse a document and print one command per line.

Projection modes:
  element  every top-level element is a command; its children are the args
  line     the whole document is one command; the first name is the program`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _, _, err := processDocument(cmd, opts, args, withMode(mode))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, output.Commands)
			}
			for _, c := range output.Commands {
				fmt.Fprintln(out, c.String())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Projection mode: element or line (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the commands as JSON")
	_ = cmd.RegisterFlagCompletionFunc("mode", cobra.FixedCompletions(projectionModes, cobra.ShellCompDirectiveNoFileComp))
	return cmd
}

// =============================================================================
// RENDER
// =============================================================================

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Parse a document and print it in canonical form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, _, err := opts.pipeline(cmd)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			doc, err := p.Parse(text)
			if err != nil {
				return err
			}

			options := xmlwriter.DefaultGenerateOptions()
			options.Compact = compact
			rendered, err := xmlwriter.GenerateWithOptions(doc, options)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "Print every top-level element on one line")
	return cmd
}

// =============================================================================
// VALIDATE
// =============================================================================

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a document against the validation rules",
		Long: `Parse a document, project it and check the result against the
validation rules of the configuration. Warnings are printed but do not fail
the command unless treat_warnings_as_errors is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, _, _, err := opts.pipeline(cmd)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			output, err := p.Process(text)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			result := output.Validation
			if len(result.Errors) > 0 {
				fmt.Fprint(out, validation.FormatErrors(result.Errors))
			}
			if !result.IsValid {
				return fmt.Errorf("document is invalid: %d error(s)", result.ErrorCount)
			}
			fmt.Fprintf(out, "Document is valid: %d element(s), %d command(s), %d warning(s)\n",
				result.ElementsValidated, result.CommandsValidated, result.WarningCount)
			return nil
		},
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// processDocument reads the input and runs the full pipeline over it. A
// document that fails validation is an error; its findings are printed to
// the error stream first.
func processDocument(cmd *cobra.Command, opts *rootOptions, args []string, overrides ...func(*config.MainConfig)) (*converter.Output, *config.MainConfig, *slog.Logger, error) {
	p, mainConfig, logger, err := opts.pipeline(cmd, overrides...)
	if err != nil {
		return nil, nil, nil, err
	}
	text, err := readInput(cmd, args)
	if err != nil {
		return nil, nil, nil, err
	}

	output, err := p.Process(text)
	if err != nil {
		return nil, nil, nil, err
	}
	if !output.Validation.IsValid {
		fmt.Fprint(cmd.ErrOrStderr(), validation.FormatErrors(output.Validation.Errors))
		return nil, nil, nil, fmt.Errorf("document is invalid: %d error(s)", output.Validation.ErrorCount)
	}
	return output, mainConfig, logger, nil
}

// withMode overrides the projection mode when mode is set.
func withMode(mode string) func(*config.MainConfig) {
	return func(c *config.MainConfig) {
		if mode != "" {
			c.Projection.Mode = mode
		}
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// Mode names accepted by --mode, for help text and completion.
var projectionModes = []string{string(projector.ModeElement), string(projector.ModeLine)}
