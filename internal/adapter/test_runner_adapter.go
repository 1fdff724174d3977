package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"syscall"
	"time"

	m "github.com/fission-dev/fission/internal/model"
)

// killGracePeriod bounds how long Wait blocks after the process group has
// been signalled.
const killGracePeriod = 2 * time.Second

// TestRunnerAdapter abstracts test execution for mutation testing. The
// test command is opaque: any argv whose exit code distinguishes pass
// from fail will do.
type TestRunnerAdapter interface {
	// Execute runs argv in workDir with the given timeout and returns
	// the outcome. The adapter enforces the timeout itself and owns the
	// spawned process group exclusively: on expiry or cancellation the
	// whole tree is killed, never orphaned.
	//
	// Errors: model.ErrTimedOut when the timeout expired (the outcome is
	// still valid, with Survived set), model.ErrExecutorCrash when the
	// process could not run at all, or the context error on external
	// cancellation.
	Execute(ctx context.Context, workDir string, argv []string, timeout time.Duration) (m.TestOutcome, error)
}

// LocalTestRunnerAdapter runs test commands as local child processes.
type LocalTestRunnerAdapter struct{}

// NewLocalTestRunnerAdapter constructs a LocalTestRunnerAdapter.
func NewLocalTestRunnerAdapter() *LocalTestRunnerAdapter {
	return &LocalTestRunnerAdapter{}
}

// Execute implements TestRunnerAdapter.
func (a *LocalTestRunnerAdapter) Execute(ctx context.Context, workDir string, argv []string, timeout time.Duration) (m.TestOutcome, error) {
	if len(argv) == 0 {
		return m.TestOutcome{}, fmt.Errorf("%w: empty command", m.ErrExecutorCrash)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// #nosec G204 - the test command is supplied by the session owner
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = workDir

	var output bytes.Buffer

	cmd.Stdout = &output
	cmd.Stderr = &output

	// The child gets its own process group so the whole tree can be
	// killed at once on timeout or cancellation.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = killGracePeriod

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	outcome := m.TestOutcome{
		Output:   output.String(),
		Duration: duration,
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		outcome.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case runErr == nil:
		outcome.Survived = true
		return outcome, nil

	case ctx.Err() != nil:
		// External cancellation, not a per-item timeout.
		return outcome, ctx.Err()

	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		// A mutant that hangs the suite escaped detection, so a timeout
		// is conservatively reported as survived.
		slog.Debug("test execution timed out", "workDir", workDir, "timeout", timeout)

		outcome.Survived = true

		return outcome, m.ErrTimedOut

	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// Ordinary test failure: the mutant was detected.
			outcome.Survived = false
			return outcome, nil
		}

		return outcome, fmt.Errorf("%w: %v", m.ErrExecutorCrash, runErr)
	}
}
