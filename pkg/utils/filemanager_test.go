package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("<a/>"), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "b.tag"))
	touch(t, filepath.Join(root, "a.TAG"))
	touch(t, filepath.Join(root, "nested", "c.xml"))
	touch(t, filepath.Join(root, "notes.txt"))

	fm := NewFileManager(root, "", "")

	files, err := fm.DiscoverInputFiles([]string{".tag", ".xml"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.TAG"),
		filepath.Join(root, "b.tag"),
		filepath.Join(root, "nested", "c.xml"),
	}, files)

	all, err := fm.DiscoverInputFiles(nil)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	_, err = NewFileManager(filepath.Join(root, "missing"), "", "").DiscoverInputFiles(nil)
	require.Error(t, err)
}

func TestArchiveInputFile(t *testing.T) {
	root := t.TempDir()
	input := filepath.Join(root, "in", "deploy.tag")
	touch(t, input)

	fm := NewFileManager(filepath.Join(root, "in"), "", filepath.Join(root, "archive"))
	archived, err := fm.ArchiveInputFile(input)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "archive", "deploy.tag"), archived)
	assert.FileExists(t, archived)
	assert.NoFileExists(t, input)
}

func TestGetArchivePath_TimestampSubdirs(t *testing.T) {
	fm := &FileManager{InputArchiveDir: "archive", UseTimestampSubdirs: true}
	day := time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("archive", "2024", "01", "05", "x.tag"), fm.getArchivePath("in/x.tag", day))
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("{name}_{uuid}", map[string]string{"name": "deploy"}, ".json")
	assert.Regexp(t, regexp.MustCompile(`^deploy_[0-9a-f-]{36}\.json$`), name)

	kept := GenerateOutputFileName("{date}.JSON", nil, ".json")
	assert.Regexp(t, regexp.MustCompile(`^\d{8}\.JSON$`), kept)

	first := GenerateOutputFileName("{uuid}", nil, "")
	second := GenerateOutputFileName("{uuid}", nil, "")
	assert.NotEqual(t, first, second)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "deploy", BaseName("/tmp/in/deploy.tag"))
	assert.Equal(t, "archive.tar", BaseName("archive.tar.gz"))
}

func TestWriteSummaryLog(t *testing.T) {
	start := time.Date(2024, time.March, 1, 8, 30, 0, 0, time.UTC)
	summary := ProcessingSummary{
		RunID:           "run-1",
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		TotalCommands:   3,
		ProcessedFiles:  []ProcessedFileInfo{{InputFile: "a.tag", OutputFile: "a.json", Commands: 3}},
		FailedFilesList: []FailedFileInfo{{InputFile: "b.tag", ErrorMessage: "parse error"}},
	}

	path, err := WriteSummaryLog(summary, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "processing_summary_20240301_083000.txt", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "Processing run run-1\n"))
	assert.Contains(t, content, "  finished 2024-03-01 08:30:02 (2s)")
	assert.Regexp(t, `(?m)^failed\s+1$`, content)
	assert.Regexp(t, `(?m)^commands\s+3$`, content)
	assert.Contains(t, content, "OK   a.tag -> a.json (0 element(s), 3 command(s), 0s)")
	assert.Contains(t, content, "FAIL b.tag: parse error")
}
