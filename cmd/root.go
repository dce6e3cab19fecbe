// =============================================================================
// Tag Command Parser - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (tagcmd)
//   ├── parse     print the element tree
//   ├── project   print the projected commands
//   ├── render    print canonical tag text
//   ├── validate  check a document against the validation rules
//   ├── run       execute the projected commands
//   ├── export    write the commands to XLSX or CSV
//   ├── import    turn an exported table back into tags
//   ├── process   batch-convert the input directory
//   └── version   print build information
//
// INPUT:
//   Single-document commands read the file named by their argument, or
//   standard input when the argument is "-" or missing.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/tagcmd/internal/config"
	"github.com/ginjaninja78/tagcmd/internal/converter"
	"github.com/ginjaninja78/tagcmd/internal/logging"
)

// =============================================================================
// GLOBAL OPTIONS
// =============================================================================

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	// cfgFile is the path to the main configuration file. A missing file
	// means defaults.
	cfgFile string

	// verbose forces debug logging.
	verbose bool
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// NewRootCommand builds the command tree. Each call returns fresh flag state.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tagcmd",
		Short: "Parse XML-like tag documents into CLI commands",
		Long: `tagcmd parses a small XML-like notation of self-closing tags and matched
open/close tag pairs, and turns each top-level element into a CLI command.

Example:
  echo '<git> <commit/> <amend/> </git> <ls/>' | tagcmd project
  git commit amend
  ls

Example Usage:
  tagcmd parse doc.tag --json         # Print the element tree as JSON
  tagcmd project --mode line doc.tag  # One command from the whole document
  tagcmd run --dry-run doc.tag        # Show what would be executed
  tagcmd export --out cmds.xlsx doc.tag
  tagcmd process --config ./my.yaml   # Convert every file in the input directory`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(
		&opts.cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (YAML, or TOML with a .toml extension)",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&opts.verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.AddCommand(
		newParseCmd(opts),
		newProjectCmd(opts),
		newRenderCmd(opts),
		newValidateCmd(opts),
		newRunCmd(opts),
		newExportCmd(opts),
		newImportCmd(opts),
		newProcessCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main(). An interrupt cancels
// the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// load reads the configuration and builds the logger. Log output goes to
// the command's error stream.
func (o *rootOptions) load(cmd *cobra.Command) (*config.MainConfig, *slog.Logger, error) {
	mainConfig, err := config.LoadOrDefault(o.cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load main config: %w", err)
	}

	level, err := logging.ParseLevel(mainConfig.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if o.verbose {
		level = slog.LevelDebug
	}

	return mainConfig, logging.NewWithWriter(cmd.ErrOrStderr(), level), nil
}

// pipeline loads the configuration and builds the document pipeline.
// overrides are applied to the loaded configuration first, so flags win
// over the file.
func (o *rootOptions) pipeline(cmd *cobra.Command, overrides ...func(*config.MainConfig)) (*converter.Pipeline, *config.MainConfig, *slog.Logger, error) {
	mainConfig, logger, err := o.load(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, override := range overrides {
		override(mainConfig)
	}
	p, err := converter.NewPipeline(mainConfig, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, mainConfig, logger, nil
}

// readInput returns the document named by args, or standard input.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return string(data), nil
}
