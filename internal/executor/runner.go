// Package executor runs projected commands as local processes.
//
// Programs must be on an allow-list unless the runner is explicitly opened
// up. Arguments are passed to the process as-is; no shell is involved, so
// argument text is never interpreted.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/ginjaninja78/tagcmd/internal/config"
	"github.com/ginjaninja78/tagcmd/internal/logging"
	"github.com/ginjaninja78/tagcmd/internal/types"
)

// ErrNotAllowed is returned for programs missing from the allow-list.
var ErrNotAllowed = errors.New("program not allowed")

// Runner executes commands.
type Runner struct {
	allowed  map[string]bool
	allowAny bool
	dir      string
	timeout  time.Duration
	dryRun   bool
	stdout   io.Writer
	stderr   io.Writer
	logger   *slog.Logger
}

// Option configures the runner.
type Option func(*Runner)

// WithAllowList adds programs to the allow-list.
func WithAllowList(programs ...string) Option {
	return func(r *Runner) {
		for _, p := range programs {
			r.allowed[p] = true
		}
	}
}

// WithAllowAny disables the allow-list.
func WithAllowAny(allow bool) Option {
	return func(r *Runner) {
		r.allowAny = allow
	}
}

// WithWorkingDir sets the working directory for executed processes.
func WithWorkingDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithTimeout bounds each command. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithDryRun prints commands instead of running them.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// WithOutput sets where process output goes. Defaults to os.Stdout and
// os.Stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner. With no options it allows nothing.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		allowed: make(map[string]bool),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("component", "executor")
	return r
}

// FromConfig creates a runner from the executor settings. Extra options are
// applied after the configured ones.
func FromConfig(cfg config.ExecutorConfig, opts ...Option) *Runner {
	base := []Option{
		WithAllowList(cfg.AllowedPrograms...),
		WithAllowAny(cfg.AllowAny),
		WithWorkingDir(cfg.WorkingDir),
		WithTimeout(cfg.TimeoutDuration()),
	}
	return NewRunner(append(base, opts...)...)
}

// Outcome is the result of one command.
type Outcome struct {
	Command  types.Command
	DryRun   bool
	ExitCode int
	Duration time.Duration
	Err      error
}

// OK reports whether the command ran (or was printed) successfully.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Allowed reports whether program may be run.
func (r *Runner) Allowed(program string) bool {
	return r.allowAny || r.allowed[program]
}

// Run executes one command and waits for it to finish.
func (r *Runner) Run(ctx context.Context, cmd types.Command) Outcome {
	outcome := Outcome{Command: cmd}

	if !r.Allowed(cmd.Program) {
		outcome.ExitCode = -1
		outcome.Err = fmt.Errorf("%w: %s", ErrNotAllowed, cmd.Program)
		return outcome
	}

	if r.dryRun {
		outcome.DryRun = true
		fmt.Fprintf(r.stdout, "+ %s\n", cmd.String())
		return outcome
	}

	runCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	proc := exec.CommandContext(runCtx, cmd.Program, cmd.Args...)
	proc.Dir = r.dir
	proc.Stdout = r.stdout
	proc.Stderr = r.stderr

	r.logger.Debug("running command", "program", cmd.Program, "args", len(cmd.Args))
	start := time.Now()
	err := proc.Run()
	outcome.Duration = time.Since(start)

	if err == nil {
		return outcome
	}

	outcome.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		outcome.ExitCode = exitErr.ExitCode()
	}

	switch {
	case runCtx.Err() != nil:
		outcome.Err = fmt.Errorf("command %q interrupted: %w", cmd.Program, runCtx.Err())
	case outcome.ExitCode > 0:
		outcome.Err = fmt.Errorf("command %q exited with status %d: %w", cmd.Program, outcome.ExitCode, err)
	default:
		outcome.Err = fmt.Errorf("failed to run %q: %w", cmd.Program, err)
	}
	r.logger.Warn("command failed", "program", cmd.Program, "exit_code", outcome.ExitCode, "error", outcome.Err)
	return outcome
}

// RunAll runs commands in order. With stopOnFailure the first failure ends
// the run and the remaining commands are not attempted.
func (r *Runner) RunAll(ctx context.Context, commands []types.Command, stopOnFailure bool) []Outcome {
	outcomes := make([]Outcome, 0, len(commands))
	for _, cmd := range commands {
		if ctx.Err() != nil {
			break
		}
		outcome := r.Run(ctx, cmd)
		outcomes = append(outcomes, outcome)
		if !outcome.OK() && stopOnFailure {
			break
		}
	}
	return outcomes
}
