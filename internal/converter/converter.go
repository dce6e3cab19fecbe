// =============================================================================
// Tag Command Parser - Converter Module
// =============================================================================
//
// This module contains the batch conversion logic. A Converter carries one
// input file through the whole pipeline; a Batch runs many converters with
// bounded concurrency.
//
// CONVERSION PIPELINE:
//   1. Read the input document
//   2. Parse it into elements
//   3. Project the elements into commands
//   4. Apply transformation rules to the commands
//   5. Validate the document and the commands
//   6. Write a JSON report named from the configured UUID format
//   7. Archive the input file
//
// CONCURRENCY:
//   Converters share one Pipeline, which holds no per-document state. Each
//   file is processed in its own goroutine.
//
// =============================================================================

package converter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/tagcmd/internal/config"
	"github.com/ginjaninja78/tagcmd/internal/logging"
	"github.com/ginjaninja78/tagcmd/internal/types"
	"github.com/ginjaninja78/tagcmd/internal/validation"
	"github.com/ginjaninja78/tagcmd/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the JSON report. Empty if processing failed
	// or in dry-run mode.
	OutputFile string

	// ArchivePath is where the input was moved, if archiving is enabled.
	ArchivePath string

	// ErrorLog is the path of the validation log written for a rejected file.
	ErrorLog string

	// Success indicates whether the processing was successful.
	Success bool

	// Error is nil if processing was successful.
	Error error

	// Commands are the final commands of the document.
	Commands []types.Command

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	BytesRead          int
	ElementsParsed     int
	CommandsProjected  int
	ValidationErrors   int
	ValidationWarnings int
	ProcessingTime     time.Duration
}

// Report is the JSON document written for each processed file.
type Report struct {
	ID          string                       `json:"id"`
	RunID       string                       `json:"run_id,omitempty"`
	Source      string                       `json:"source"`
	ProcessedAt time.Time                    `json:"processed_at"`
	Mode        string                       `json:"mode"`
	Document    types.Document               `json:"document"`
	Commands    []types.Command              `json:"commands"`
	Validation  *validation.ValidationResult `json:"validation"`
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single input file.
type Converter struct {
	inputPath  string
	runID      string
	dryRun     bool
	mainConfig *config.MainConfig
	pipeline   *Pipeline
	files      *utils.FileManager
	logger     *slog.Logger
}

// New creates a Converter for one input file.
func New(inputPath string, mainConfig *config.MainConfig, pipeline *Pipeline, files *utils.FileManager, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Converter{
		inputPath:  inputPath,
		mainConfig: mainConfig,
		pipeline:   pipeline,
		files:      files,
		logger:     logger.With("file", filepath.Base(inputPath)),
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
func (c *Converter) Run(ctx context.Context) (result Result) {
	startTime := time.Now()
	result = Result{FilePath: c.inputPath}
	defer func() { result.Stats.ProcessingTime = time.Since(startTime) }()

	if err := ctx.Err(); err != nil {
		result.Error = fmt.Errorf("processing cancelled: %w", err)
		return result
	}

	c.logger.Info("processing file")

	// =========================================================================
	// STEPS 1-5: READ, PARSE, PROJECT, TRANSFORM, VALIDATE
	// =========================================================================

	data, err := os.ReadFile(c.inputPath)
	if err != nil {
		result.Error = fmt.Errorf("failed to read input: %w", err)
		return result
	}
	result.Stats.BytesRead = len(data)

	output, err := c.pipeline.Process(string(data))
	if err != nil {
		result.Error = fmt.Errorf("failed to process document: %w", err)
		return result
	}

	result.Commands = output.Commands
	result.Stats.ElementsParsed = output.Validation.ElementsValidated
	result.Stats.CommandsProjected = len(output.Commands)
	result.Stats.ValidationErrors = output.Validation.ErrorCount
	result.Stats.ValidationWarnings = output.Validation.WarningCount

	for _, finding := range output.Validation.Errors {
		c.logger.Warn("validation finding", "rule", finding.Rule, "severity", finding.Severity, "message", finding.Message)
	}

	if !output.Validation.IsValid {
		result.Error = fmt.Errorf("validation failed with %d error(s) and %d warning(s)",
			output.Validation.ErrorCount, output.Validation.WarningCount)
		if !c.dryRun {
			logPath := filepath.Join(c.mainConfig.OutputDir, utils.BaseName(c.inputPath)+"_errors.log")
			if err := validation.WriteErrorLog(output.Validation.Errors, c.inputPath, logPath); err != nil {
				c.logger.Warn("failed to write error log", "error", err)
			} else {
				result.ErrorLog = logPath
			}
		}
		return result
	}

	if c.dryRun {
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 6: WRITE REPORT
	// =========================================================================

	outputPath, err := c.writeReport(output)
	if err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = outputPath
	c.logger.Info("wrote report", "output", outputPath)

	// =========================================================================
	// STEP 7: ARCHIVE INPUT
	// =========================================================================

	if c.mainConfig.ArchiveInputs {
		archivePath, err := c.files.ArchiveInputFile(c.inputPath)
		if err != nil {
			// The report is already written; a failed archive does not fail the file.
			c.logger.Warn("failed to archive input", "error", err)
		} else {
			result.ArchivePath = archivePath
		}
	}

	result.Success = true
	return result
}

// writeReport writes the JSON report to the output directory.
func (c *Converter) writeReport(output *Output) (string, error) {
	report := Report{
		ID:          uuid.New().String(),
		RunID:       c.runID,
		Source:      c.inputPath,
		ProcessedAt: time.Now().UTC(),
		Mode:        string(c.pipeline.Mode()),
		Document:    output.Document,
		Commands:    output.Commands,
		Validation:  output.Validation,
	}
	if report.Document == nil {
		report.Document = types.Document{}
	}
	if report.Commands == nil {
		report.Commands = []types.Command{}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	fileName := utils.GenerateOutputFileName(c.mainConfig.UUIDFormat,
		map[string]string{"name": utils.BaseName(c.inputPath)}, ".json")
	outputPath := filepath.Join(c.mainConfig.OutputDir, fileName)

	if err := os.WriteFile(outputPath, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return outputPath, nil
}

// =============================================================================
// BATCH PROCESSING
// =============================================================================

// Batch processes many files with bounded concurrency.
type Batch struct {
	// RunID identifies the batch in reports and the summary log.
	RunID string

	// DryRun processes files without writing reports or archiving.
	DryRun bool

	mainConfig *config.MainConfig
	pipeline   *Pipeline
	files      *utils.FileManager
	logger     *slog.Logger
}

// NewBatch creates a batch processor for mainConfig.
func NewBatch(mainConfig *config.MainConfig, logger *slog.Logger) (*Batch, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	pipeline, err := NewPipeline(mainConfig, logger)
	if err != nil {
		return nil, err
	}
	runID := uuid.New().String()
	return &Batch{
		RunID:      runID,
		mainConfig: mainConfig,
		pipeline:   pipeline,
		files:      utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir),
		logger:     logger.With("component", "converter", "run_id", runID),
	}, nil
}

// Discover lists the input files of the configured input directory.
func (b *Batch) Discover() ([]string, error) {
	return b.files.DiscoverInputFiles(b.mainConfig.FileExtensions)
}

// Run processes files and returns one Result per file, in input order. At
// most MaxConcurrency files are processed at a time. With StopOnError set,
// files not yet started when one fails are reported as cancelled.
func (b *Batch) Run(ctx context.Context, files []string) []Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limit := b.mainConfig.MaxConcurrency
	if limit < 1 {
		limit = 1
	}
	semaphore := make(chan struct{}, limit)

	results := make([]Result, len(files))
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			conv := New(file, b.mainConfig, b.pipeline, b.files, b.logger)
			conv.runID = b.RunID
			conv.dryRun = b.DryRun
			results[i] = conv.Run(ctx)

			if !results[i].Success && b.mainConfig.StopOnError {
				cancel()
			}
		}(i, file)
	}

	wg.Wait()
	return results
}

// Summarize builds the processing summary for a finished batch.
func (b *Batch) Summarize(start, end time.Time, results []Result) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		RunID:      b.RunID,
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(results),
	}

	for _, result := range results {
		summary.TotalElements += result.Stats.ElementsParsed
		summary.TotalCommands += result.Stats.CommandsProjected
		summary.ValidationErrors += result.Stats.ValidationErrors

		if result.Success {
			summary.SuccessfulFiles++
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				OutputFile:  result.OutputFile,
				ArchivePath: result.ArchivePath,
				Elements:    result.Stats.ElementsParsed,
				Commands:    result.Stats.CommandsProjected,
				ProcessTime: result.Stats.ProcessingTime,
			})
			continue
		}

		summary.FailedFiles++
		message := "unknown error"
		if result.Error != nil {
			message = result.Error.Error()
		}
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    result.FilePath,
			ErrorMessage: message,
		})
	}

	return summary
}
