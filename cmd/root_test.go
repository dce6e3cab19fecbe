package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/tagcmd/internal/export"
	"github.com/ginjaninja78/tagcmd/internal/types"
)

// execute runs the CLI with args and stdin and returns what it printed.
// Without an explicit --config it points at a file that does not exist so
// the defaults apply.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	hasConfig := false
	for _, a := range args {
		if a == "--config" {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...)
	}

	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestProject(t *testing.T) {
	out, _, err := execute(t, "<git> <commit/> <amend/> </git> <ls/>", "project")
	require.NoError(t, err)
	assert.Equal(t, "git commit amend\nls\n", out)
}

func TestProject_WellFormedVimExample(t *testing.T) {
	out, _, err := execute(t, "<vim/> <text.txt> </text.txt>", "project", "-")
	require.NoError(t, err)
	assert.Equal(t, "vim\ntext.txt\n", out)
}

func TestProject_LineMode(t *testing.T) {
	out, _, err := execute(t, "<vim/> <text.txt/>", "project", "--mode", "line")
	require.NoError(t, err)
	assert.Equal(t, "vim text.txt\n", out)

	_, _, err = execute(t, "<vim/>", "project", "--mode", "bogus")
	assert.Error(t, err)
}

func TestProject_JSON(t *testing.T) {
	out, _, err := execute(t, "<ls/> <git><status/></git>", "project", "--json")
	require.NoError(t, err)

	var commands []types.Command
	require.NoError(t, json.Unmarshal([]byte(out), &commands))
	assert.Equal(t, []types.Command{
		{Program: "ls", Args: []string{}},
		{Program: "git", Args: []string{"status"}},
	}, commands)
}

func TestParse(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.tag", "<vim/> <text.txt> </text.txt>")

	out, _, err := execute(t, "", "parse", path)
	require.NoError(t, err)
	assert.Equal(t, "SelfClosing(vim)\nContainer(text.txt, [])\n", out)

	out, _, err = execute(t, "", "parse", "--json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"kind": "container"`)
}

func TestParse_StrayClosingTag(t *testing.T) {
	_, _, err := execute(t, "<vim/> <text.txt/> </text.txt>", "parse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1, column 20")
}

func TestParse_MissingFile(t *testing.T) {
	_, _, err := execute(t, "", "parse", filepath.Join(t.TempDir(), "nope.tag"))
	assert.ErrorContains(t, err, "failed to read input file")
}

func TestRender(t *testing.T) {
	out, _, err := execute(t, "<git><commit/>\n<amend/></git>   <ls/>", "render", "--compact")
	require.NoError(t, err)
	assert.Equal(t, "<git> <commit/> <amend/> </git> <ls/>\n", out)

	out, _, err = execute(t, "<git><commit/></git>", "render")
	require.NoError(t, err)
	assert.Equal(t, "<git>\n  <commit/>\n</git>\n", out)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "validation:\n  forbidden_names: [rm]\n")

	out, _, err := execute(t, "<ls/>", "--config", cfg, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Document is valid: 1 element(s), 1 command(s)")

	out, _, err = execute(t, "<rm><rf/></rm>", "--config", cfg, "validate")
	require.Error(t, err)
	assert.Contains(t, out, "forbidden_name")
}

func TestRun_DryRun(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "executor:\n  allowed_programs: [git, ls]\n")

	out, _, err := execute(t, "<git> <commit/> <amend/> </git> <ls/>", "--config", cfg, "run", "--dry-run")
	require.NoError(t, err)
	assert.Equal(t, "+ git commit amend\n+ ls\n", out)
}

func TestRun_NotAllowed(t *testing.T) {
	_, stderr, err := execute(t, "<rm/>", "run", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 command(s) failed")
	assert.Contains(t, stderr, "program not allowed")
}

func TestRun_InvalidDocumentIsRefused(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", "validation:\n  forbidden_names: [rm]\nexecutor:\n  allow_any: true\n")

	_, stderr, err := execute(t, "<rm/>", "--config", cfg, "run", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document is invalid")
	assert.Contains(t, stderr, "forbidden_name")
}

func TestExport_CSVToStdout(t *testing.T) {
	out, _, err := execute(t, "<git><commit/></git> <ls/>", "export", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "index,program,args,argv\n1,git,commit,git commit\n2,ls,,ls\n", out)
}

func TestExport_XLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.xlsx")

	_, _, err := execute(t, "<git><commit/></git> <ls/>", "export", "--out", path)
	require.NoError(t, err)

	commands, err := export.ReadFile(path, export.Options{})
	require.NoError(t, err)
	assert.Equal(t, []types.Command{
		{Program: "git", Args: []string{"commit"}},
		{Program: "ls"},
	}, commands)
}

func TestExportImport_RoundTrip(t *testing.T) {
	const doc = "<git> <commit/> <amend/> </git> <ls/>"
	path := filepath.Join(t.TempDir(), "commands.xlsx")

	_, _, err := execute(t, doc, "export", "--out", path, "--sheet", "Run")
	require.NoError(t, err)

	out, _, err := execute(t, "", "import", "--sheet", "Run", path)
	require.NoError(t, err)
	assert.Equal(t, "<git>\n  <commit/>\n  <amend/>\n</git>\n<ls/>\n", out)

	projected, _, err := execute(t, out, "project")
	require.NoError(t, err)
	assert.Equal(t, "git commit amend\nls\n", projected)
}

func TestImport_CSVFromStdin(t *testing.T) {
	table := "index,program,args,argv\n1,vim,text.txt,vim text.txt\n"

	out, _, err := execute(t, table, "import", "--format", "csv", "--compact")
	require.NoError(t, err)
	assert.Equal(t, "<vim> <text.txt/> </vim>\n", out)
}

func TestImport_Errors(t *testing.T) {
	_, _, err := execute(t, "", "import", filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorContains(t, err, "failed to open table")

	_, _, err = execute(t, "index,args\n1,a\n", "import", "--format", "csv")
	assert.ErrorContains(t, err, "program")

	_, _, err = execute(t, "program\nnot ok\n", "import", "--format", "csv")
	assert.Error(t, err)
}

func TestExportFormat(t *testing.T) {
	f, err := exportFormat("", "out.csv", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	f, err = exportFormat("", "out.dat", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, export.FormatXLSX, f)

	f, err = exportFormat("CSV", "out.xlsx", "xlsx")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in")
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(in, 0755))
	writeFile(t, in, "good.tag", "<git><status/></git>")
	writeFile(t, in, "bad.tag", "<a></b>")

	cfg := writeFile(t, dir, "config.yaml",
		"input_dir: "+in+"\n"+
			"output_dir: "+outDir+"\n"+
			"input_archive_dir: "+filepath.Join(dir, "archive")+"\n")

	out, _, err := execute(t, "", "--config", cfg, "process")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 file(s) failed")
	assert.Contains(t, out, "Found 2 file(s) to process")
	assert.Contains(t, out, "✓ good.tag -> good_")
	assert.Contains(t, out, "✗ bad.tag")
	assert.Contains(t, out, "Successful:      1")

	summaries, err := filepath.Glob(filepath.Join(outDir, "processing_summary_*.txt"))
	require.NoError(t, err)
	assert.Len(t, summaries, 1)
}

func TestProcess_NoInput(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml",
		"input_dir: "+filepath.Join(dir, "in")+"\n"+
			"output_dir: "+filepath.Join(dir, "out")+"\n"+
			"input_archive_dir: "+filepath.Join(dir, "archive")+"\n")

	out, _, err := execute(t, "", "--config", cfg, "process")
	require.NoError(t, err)
	assert.Contains(t, out, "No input files found")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    "+Version)
}
