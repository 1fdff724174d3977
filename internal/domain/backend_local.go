package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fission-dev/fission/internal/adapter"
	m "github.com/fission-dev/fission/internal/model"
)

// LocalBackendConfig configures in-process execution.
type LocalBackendConfig struct {
	// ProjectRoot is the unmutated source tree. Every submission gets
	// its own temporary copy; the root itself is never written to.
	ProjectRoot m.Path

	// Template is the validated test command.
	Template CommandTemplate

	// Timeout bounds each test execution.
	Timeout time.Duration

	// OutputDir receives per-job result files referenced by {output}.
	OutputDir m.Path

	// Workers is the concurrency budget. 1 gives the sequential
	// baseline: deterministic, submission-order execution.
	Workers int
}

type localBackend struct {
	fs      adapter.SourceFSAdapter
	applier Applier
	runner  adapter.TestRunnerAdapter
	cfg     LocalBackendConfig
}

// NewLocalBackend builds the in-process backend used for both sequential
// (Workers = 1) and worker-pool execution.
func NewLocalBackend(fs adapter.SourceFSAdapter, applier Applier, runner adapter.TestRunnerAdapter, cfg LocalBackendConfig) (Backend, error) {
	if cfg.Workers < 1 {
		return nil, m.NewConfigError("backend workers must be at least 1, got %d", cfg.Workers)
	}

	if cfg.Timeout <= 0 {
		return nil, m.NewConfigError("mutation timeout must be positive, got %s", cfg.Timeout)
	}

	if cfg.ProjectRoot == "" {
		return nil, m.NewConfigError("backend project root is empty")
	}

	return &localBackend{fs: fs, applier: applier, runner: runner, cfg: cfg}, nil
}

func (b *localBackend) Concurrency() int {
	return b.cfg.Workers
}

// Submit executes one work item against a private checkout of the project.
func (b *localBackend) Submit(ctx context.Context, item m.WorkItem) (m.Execution, error) {
	workDir, err := b.prepareWorkspace(ctx, item)
	if workDir != "" {
		defer b.cleanupWorkspace(workDir)
	}

	if err != nil {
		if ctx.Err() != nil {
			return m.Execution{}, ctx.Err()
		}

		return erroredExecution(err), nil
	}

	if err := b.applier.Apply(ctx, workDir, item.Mutations); err != nil {
		if ctx.Err() != nil {
			return m.Execution{}, ctx.Err()
		}

		slog.Warn("mutation application failed", "jobID", item.JobID, "error", err)

		return erroredExecution(err), nil
	}

	argv := b.cfg.Template.Render(map[string]string{
		PlaceholderOutput: string(b.fs.JoinPath(string(b.cfg.OutputDir), item.JobID+".out")),
		PlaceholderDir:    string(workDir),
	})

	outcome, err := b.runner.Execute(ctx, string(workDir), argv, b.cfg.Timeout)

	switch {
	case err == nil:
		return m.Execution{Status: m.StatusComplete, Outcome: outcome}, nil

	case errors.Is(err, m.ErrTimedOut):
		return m.Execution{Status: m.StatusTimedOut, Outcome: outcome}, nil

	case ctx.Err() != nil:
		return m.Execution{}, ctx.Err()

	default:
		outcome.Output = fmt.Sprintf("%v\n%s", err, outcome.Output)
		return m.Execution{Status: m.StatusErrored, Outcome: outcome}, nil
	}
}

func (b *localBackend) prepareWorkspace(ctx context.Context, item m.WorkItem) (m.Path, error) {
	workDir, err := b.fs.CreateTempDir(ctx, "fission-mutant-*")
	if err != nil {
		return "", fmt.Errorf("creating mutant workspace: %w", err)
	}

	if err := b.fs.CopyDir(ctx, b.cfg.ProjectRoot, workDir); err != nil {
		return workDir, fmt.Errorf("copying project for %s: %w", item.JobID, err)
	}

	return workDir, nil
}

func (b *localBackend) cleanupWorkspace(workDir m.Path) {
	if err := b.fs.RemoveAll(context.Background(), workDir); err != nil {
		slog.Error("failed to clean up mutant workspace", "workDir", workDir, "error", err)
	}
}

func erroredExecution(err error) m.Execution {
	return m.Execution{
		Status:  m.StatusErrored,
		Outcome: m.TestOutcome{Output: err.Error(), ExitCode: -1},
	}
}
