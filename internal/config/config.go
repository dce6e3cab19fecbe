// =============================================================================
// Tag Command Parser - Configuration Module
// =============================================================================
//
// This module loads the application configuration. One file configures every
// command; single-file commands (parse, project, render, validate, run,
// export) work without any file at all and fall back to the defaults.
//
// CONFIGURATION FILES:
//   config.yaml / config.yml - decoded with gopkg.in/yaml.v3
//   config.toml              - decoded with github.com/BurntSushi/toml
//
// LOADING ORDER:
//   1. Decode the file (format chosen by extension)
//   2. applyMainConfigDefaults fills every unset option
//   3. validateMainConfig rejects values the commands cannot use
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/tagcmd/internal/grammar"
	"github.com/ginjaninja78/tagcmd/internal/logging"
	"github.com/ginjaninja78/tagcmd/internal/projector"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned by the process command for tag documents.
	// Default: "./input"
	InputDir string `yaml:"input_dir" toml:"input_dir"`

	// OutputDir receives one JSON report per processed document.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" toml:"output_dir"`

	// InputArchiveDir receives input files after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir" toml:"input_archive_dir"`

	// FileExtensions lists the input extensions picked up by the process
	// command. Default: [".tag", ".xml"]
	FileExtensions []string `yaml:"file_extensions" toml:"file_extensions"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" toml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// UUIDFormat defines the report file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {name}      - Input file name without extension
	// Default: "{name}_{uuid}.json"
	UUIDFormat string `yaml:"uuid_format" toml:"uuid_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files processed at once.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency" toml:"max_concurrency"`

	// StopOnError aborts a batch after the first failed file. By default the
	// remaining files are still processed.
	StopOnError bool `yaml:"stop_on_error" toml:"stop_on_error"`

	// ArchiveInputs moves successfully processed inputs to InputArchiveDir.
	ArchiveInputs bool `yaml:"archive_inputs" toml:"archive_inputs"`

	// =========================================================================
	// PIPELINE SETTINGS
	// =========================================================================

	Parser              ParserConfig         `yaml:"parser" toml:"parser"`
	Projection          ProjectionConfig     `yaml:"projection" toml:"projection"`
	Validation          ValidationConfig     `yaml:"validation" toml:"validation"`
	TransformationRules []TransformationRule `yaml:"transformation_rules" toml:"transformation_rules"`
	Executor            ExecutorConfig       `yaml:"executor" toml:"executor"`
	Export              ExportConfig         `yaml:"export" toml:"export"`
}

// ParserConfig bounds the work the document parser accepts.
type ParserConfig struct {
	// MaxInputBytes rejects larger documents before parsing.
	// Default: 1048576
	MaxInputBytes int `yaml:"max_input_bytes" toml:"max_input_bytes"`

	// MaxDepth limits element nesting.
	// Default: 64
	MaxDepth int `yaml:"max_depth" toml:"max_depth"`
}

// ProjectionConfig selects how documents become commands.
type ProjectionConfig struct {
	// Mode is "element" (one command per top-level element) or "line" (the
	// whole document is one command line).
	// Default: "element"
	Mode string `yaml:"mode" toml:"mode"`
}

// =============================================================================
// VALIDATION SETTINGS
// =============================================================================

// ValidationConfig holds the document and command rules checked after parsing.
// A zero value for any rule disables it.
type ValidationConfig struct {
	// AllowedPrograms restricts which program names a command may carry.
	AllowedPrograms []string `yaml:"allowed_programs" toml:"allowed_programs"`

	// ForbiddenNames are element names rejected anywhere in a document.
	ForbiddenNames []string `yaml:"forbidden_names" toml:"forbidden_names"`

	// MaxChildren limits the number of direct children of a container.
	MaxChildren int `yaml:"max_children" toml:"max_children"`

	// MaxNameLength limits the length of element names.
	MaxNameLength int `yaml:"max_name_length" toml:"max_name_length"`

	// NamePattern is a regular expression every element name must match.
	NamePattern string `yaml:"name_pattern" toml:"name_pattern"`

	// WarnOnEmptyDocument reports documents without elements as a warning.
	WarnOnEmptyDocument bool `yaml:"warn_on_empty_document" toml:"warn_on_empty_document"`

	// WarnOnDroppedNesting reports children that have children of their own.
	// Projection only keeps the names of direct children, so anything nested
	// deeper never reaches a command.
	WarnOnDroppedNesting bool `yaml:"warn_on_dropped_nesting" toml:"warn_on_dropped_nesting"`

	// StopOnFirstError stops validation after the first fatal error.
	StopOnFirstError bool `yaml:"stop_on_first_error" toml:"stop_on_first_error"`

	// TreatWarningsAsErrors makes any warning fail validation.
	TreatWarningsAsErrors bool `yaml:"treat_warnings_as_errors" toml:"treat_warnings_as_errors"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// Transformation targets.
const (
	TargetProgram = "program"
	TargetArgs    = "args"
	TargetAll     = "all"
)

// TransformationRule rewrites projected commands.
type TransformationRule struct {
	// Program limits the rule to commands whose program equals this value
	// before any rule ran. Empty matches every command.
	Program string `yaml:"program,omitempty" toml:"program,omitempty"`

	// Target is the part of the command the actions apply to: "program",
	// "args" or "all".
	// Default: "all"
	Target string `yaml:"target" toml:"target"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions" toml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is one of:
	//   "prepend_string", "append_string", "uppercase", "lowercase", "trim",
	//   "replace", "regex_replace", "lookup", "lookup_with_default"
	Type string `yaml:"type" toml:"type"`

	// Value is the string to add, the replacement, or the lookup default.
	Value string `yaml:"value" toml:"value"`

	// Find is the substring or pattern used by "replace" and "regex_replace".
	Find string `yaml:"find,omitempty" toml:"find,omitempty"`

	// LookupTable maps input values to output values for the lookup actions.
	LookupTable map[string]string `yaml:"lookup_table,omitempty" toml:"lookup_table,omitempty"`
}

// =============================================================================
// EXECUTOR AND EXPORT SETTINGS
// =============================================================================

// ExecutorConfig controls the run command.
type ExecutorConfig struct {
	// AllowedPrograms lists the programs the executor may start. An empty
	// list allows nothing unless AllowAny is set.
	AllowedPrograms []string `yaml:"allowed_programs" toml:"allowed_programs"`

	// AllowAny disables the allow-list.
	AllowAny bool `yaml:"allow_any" toml:"allow_any"`

	// Timeout bounds each command, as a Go duration string.
	// Default: "30s"
	Timeout string `yaml:"timeout" toml:"timeout"`

	// WorkingDir is the directory commands run in. Empty uses the current one.
	WorkingDir string `yaml:"working_dir" toml:"working_dir"`

	// StopOnFailure skips the remaining commands after one fails.
	StopOnFailure bool `yaml:"stop_on_failure" toml:"stop_on_failure"`
}

// TimeoutDuration returns Timeout parsed. Call it only on a validated config.
func (e ExecutorConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(e.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// ExportConfig controls the export command.
type ExportConfig struct {
	// Format is "xlsx" or "csv".
	// Default: "xlsx"
	Format string `yaml:"format" toml:"format"`

	// SheetName is the worksheet used for XLSX exports.
	// Default: "Commands"
	SheetName string `yaml:"sheet_name" toml:"sheet_name"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every option at its default value.
func Default() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the configuration from a YAML or TOML file. Files
// ending in ".toml" are decoded as TOML, anything else as YAML.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config MainConfig
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads configPath if it exists. An empty path or a missing
// file yields the defaults; any other failure is returned.
func LoadOrDefault(configPath string) (*MainConfig, error) {
	if configPath == "" {
		return Default(), nil
	}
	config, err := LoadMainConfig(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return config, err
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if len(config.FileExtensions) == 0 {
		config.FileExtensions = []string{".tag", ".xml"}
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.UUIDFormat == "" {
		config.UUIDFormat = "{name}_{uuid}.json"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.Parser.MaxInputBytes == 0 {
		config.Parser.MaxInputBytes = grammar.DefaultMaxInputBytes
	}
	if config.Parser.MaxDepth == 0 {
		config.Parser.MaxDepth = grammar.DefaultMaxDepth
	}
	if config.Projection.Mode == "" {
		config.Projection.Mode = string(projector.ModeElement)
	}
	for i := range config.TransformationRules {
		if config.TransformationRules[i].Target == "" {
			config.TransformationRules[i].Target = TargetAll
		}
	}
	if config.Executor.Timeout == "" {
		config.Executor.Timeout = "30s"
	}
	if config.Export.Format == "" {
		config.Export.Format = "xlsx"
	}
	if config.Export.SheetName == "" {
		config.Export.SheetName = "Commands"
	}
}

// validateMainConfig rejects values no command can work with.
func validateMainConfig(config *MainConfig) error {
	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}
	if config.Parser.MaxInputBytes < 0 || config.Parser.MaxDepth < 0 {
		return fmt.Errorf("parser limits must not be negative")
	}
	if _, err := logging.ParseLevel(config.LogLevel); err != nil {
		return err
	}
	if _, err := projector.ParseMode(config.Projection.Mode); err != nil {
		return err
	}
	if config.Validation.NamePattern != "" {
		if _, err := regexp.Compile(config.Validation.NamePattern); err != nil {
			return fmt.Errorf("invalid validation.name_pattern: %w", err)
		}
	}
	for i, rule := range config.TransformationRules {
		switch rule.Target {
		case TargetProgram, TargetArgs, TargetAll:
		default:
			return fmt.Errorf("transformation rule %d: unknown target %q", i+1, rule.Target)
		}
	}
	if d, err := time.ParseDuration(config.Executor.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid executor.timeout %q", config.Executor.Timeout)
	}
	switch strings.ToLower(config.Export.Format) {
	case "xlsx", "csv":
	default:
		return fmt.Errorf("unknown export format %q (valid: xlsx, csv)", config.Export.Format)
	}
	for i, ext := range config.FileExtensions {
		if !strings.HasPrefix(ext, ".") {
			config.FileExtensions[i] = "." + ext
		}
	}

	return nil
}

// EnsureDirectories creates the directories used by batch processing.
func (c *MainConfig) EnsureDirectories() error {
	dirs := []string{c.InputDir, c.OutputDir}
	if c.ArchiveInputs {
		dirs = append(dirs, c.InputArchiveDir)
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
