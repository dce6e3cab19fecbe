// =============================================================================
// Tag Command Parser - File Manager Utility
// =============================================================================
//
// This module provides the file handling used by batch processing:
//   - Input discovery by extension
//   - Input archival after successful processing
//   - Report file naming
//   - Processing summary logs
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to the archive directory after success
//   - Failed files remain in the input directory for another run
//   - Cross-device moves fall back to copy and delete
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for batch processing.
type FileManager struct {
	// InputDir is the directory where input documents are placed.
	InputDir string

	// OutputDir is the directory where reports are written.
	OutputDir string

	// InputArchiveDir is the directory for archived input files.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/commands.tag
	UseTimestampSubdirs bool
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles walks the input directory and returns, sorted, every
// regular file whose extension is in extensions (case-insensitive). An
// empty list matches every file.
func (fm *FileManager) DiscoverInputFiles(extensions []string) ([]string, error) {
	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var files []string
	err := filepath.WalkDir(fm.InputDir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if len(wanted) == 0 || wanted[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk input directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory and returns
// its new path.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.getArchivePath(filePath, time.Now())

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; copy and delete instead.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}

	return archivePath, nil
}

// getArchivePath returns where filePath goes in the archive. With
// UseTimestampSubdirs the file lands under a year/month/day directory.
func (fm *FileManager) getArchivePath(filePath string, now time.Time) string {
	dir := fm.InputArchiveDir
	if fm.UseTimestampSubdirs {
		dir = filepath.Join(dir, filepath.FromSlash(now.Format("2006/01/02")))
	}
	return filepath.Join(dir, filepath.Base(filePath))
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a unique output file name.
//
// Placeholders:
//
//	{uuid}      - A random UUID
//	{timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//	{date}      - Current date (YYYYMMDD)
//	{time}      - Current time (HHMMSS)
//	{key}       - Any key of params, e.g. {name}
//
// The result always ends in ext.
//
// EXAMPLE:
//
//	format: "{name}_{uuid}.json"
//	params: {"name": "deploy"}
//	output: "deploy_a1b2c3d4-e5f6-7890-abcd-ef1234567890.json"
func GenerateOutputFileName(format string, params map[string]string, ext string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID            string
	StartTime        time.Time
	EndTime          time.Time
	TotalFiles       int
	SuccessfulFiles  int
	FailedFiles      int
	TotalElements    int
	TotalCommands    int
	ValidationErrors int
	ProcessedFiles   []ProcessedFileInfo
	FailedFilesList  []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFile  string
	ArchivePath string
	Elements    int
	Commands    int
	ProcessTime time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a log file in outputDir
// and returns its path. The file is named after the run's start time.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (path string, err error) {
	path = filepath.Join(outputDir, "processing_summary_"+summary.StartTime.Format("20060102_150405")+".txt")

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close summary file: %w", cerr)
		}
	}()

	if err := summary.Write(file); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}
	return path, nil
}

// Write renders the summary as plain text: a run header, an aligned block
// of counters, then one line per file.
func (s ProcessingSummary) Write(w io.Writer) error {
	buffered := bufio.NewWriter(w)

	fmt.Fprintf(buffered, "Processing run %s\n", s.RunID)
	fmt.Fprintf(buffered, "  started  %s\n", s.StartTime.Format(time.DateTime))
	fmt.Fprintf(buffered, "  finished %s (%s)\n\n", s.EndTime.Format(time.DateTime), s.EndTime.Sub(s.StartTime))

	table := tabwriter.NewWriter(buffered, 0, 0, 2, ' ', 0)
	for _, row := range []struct {
		label string
		value int
	}{
		{"files", s.TotalFiles},
		{"succeeded", s.SuccessfulFiles},
		{"failed", s.FailedFiles},
		{"elements", s.TotalElements},
		{"commands", s.TotalCommands},
		{"validation errors", s.ValidationErrors},
	} {
		fmt.Fprintf(table, "%s\t%d\n", row.label, row.value)
	}
	if err := table.Flush(); err != nil {
		return err
	}

	if len(s.ProcessedFiles)+len(s.FailedFilesList) > 0 {
		buffered.WriteString("\n")
	}
	for _, pf := range s.ProcessedFiles {
		fmt.Fprintf(buffered, "OK   %s -> %s (%d element(s), %d command(s), %s)\n",
			pf.InputFile, pf.OutputFile, pf.Elements, pf.Commands, pf.ProcessTime.Round(time.Microsecond))
		if pf.ArchivePath != "" {
			fmt.Fprintf(buffered, "     archived to %s\n", pf.ArchivePath)
		}
	}
	for _, ff := range s.FailedFilesList {
		fmt.Fprintf(buffered, "FAIL %s: %s\n", ff.InputFile, ff.ErrorMessage)
	}

	return buffered.Flush()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// copyFile copies src to dst, keeping the source permissions.
func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	_, err = io.Copy(out, in)
	return err
}
