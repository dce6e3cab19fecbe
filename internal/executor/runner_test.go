package executor

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/tagcmd/internal/config"
	"github.com/ginjaninja78/tagcmd/internal/types"
)

func requireProgram(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestRunner_NotAllowed(t *testing.T) {
	r := NewRunner(WithAllowList("echo"))

	outcome := r.Run(context.Background(), types.Command{Program: "rm", Args: []string{"-rf", "/"}})
	require.Error(t, outcome.Err)
	assert.True(t, errors.Is(outcome.Err, ErrNotAllowed))
	assert.Equal(t, -1, outcome.ExitCode)

	assert.False(t, NewRunner().Allowed("echo"), "empty allow-list allows nothing")
	assert.True(t, NewRunner(WithAllowAny(true)).Allowed("anything"))
}

func TestRunner_DryRun(t *testing.T) {
	var stdout bytes.Buffer
	r := NewRunner(WithAllowList("vim"), WithDryRun(true), WithOutput(&stdout, &stdout))

	outcome := r.Run(context.Background(), types.Command{Program: "vim", Args: []string{"text.txt"}})
	require.NoError(t, outcome.Err)
	assert.True(t, outcome.DryRun)
	assert.Equal(t, "+ vim text.txt\n", stdout.String())
}

func TestRunner_Echo(t *testing.T) {
	requireProgram(t, "echo")

	var stdout, stderr bytes.Buffer
	r := NewRunner(WithAllowList("echo"), WithOutput(&stdout, &stderr))

	outcome := r.Run(context.Background(), types.Command{Program: "echo", Args: []string{"hello", "<world>"}})
	require.NoError(t, outcome.Err)
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Equal(t, "hello <world>\n", stdout.String())
}

func TestRunner_ExitStatus(t *testing.T) {
	requireProgram(t, "false")

	r := NewRunner(WithAllowList("false"), WithOutput(&bytes.Buffer{}, &bytes.Buffer{}))
	outcome := r.Run(context.Background(), types.Command{Program: "false"})
	require.Error(t, outcome.Err)
	assert.Equal(t, 1, outcome.ExitCode)
	assert.Contains(t, outcome.Err.Error(), "exited with status 1")
}

func TestRunner_Timeout(t *testing.T) {
	requireProgram(t, "sleep")

	r := NewRunner(WithAllowList("sleep"), WithTimeout(50*time.Millisecond))
	outcome := r.Run(context.Background(), types.Command{Program: "sleep", Args: []string{"5"}})
	require.Error(t, outcome.Err)
	assert.True(t, errors.Is(outcome.Err, context.DeadlineExceeded))
	assert.Less(t, outcome.Duration, 5*time.Second)
}

func TestRunner_MissingProgram(t *testing.T) {
	r := NewRunner(WithAllowAny(true))
	outcome := r.Run(context.Background(), types.Command{Program: "definitely-not-a-program-xyz"})
	require.Error(t, outcome.Err)
	assert.Equal(t, -1, outcome.ExitCode)
}

func TestRunner_RunAll(t *testing.T) {
	var stdout bytes.Buffer
	r := NewRunner(WithAllowList("a", "c"), WithDryRun(true), WithOutput(&stdout, &stdout))
	commands := []types.Command{{Program: "a"}, {Program: "b"}, {Program: "c"}}

	all := r.RunAll(context.Background(), commands, false)
	require.Len(t, all, 3)
	assert.True(t, all[0].OK())
	assert.False(t, all[1].OK())
	assert.True(t, all[2].OK())

	stopped := r.RunAll(context.Background(), commands, true)
	assert.Len(t, stopped, 2)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default().Executor
	cfg.AllowedPrograms = []string{"ls"}

	r := FromConfig(cfg, WithDryRun(true))
	assert.True(t, r.Allowed("ls"))
	assert.False(t, r.Allowed("rm"))
	assert.Equal(t, 30*time.Second, r.timeout)
	assert.True(t, r.dryRun)
}
