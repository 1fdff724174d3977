// Package controller provides output adapters for displaying run progress
// and results.
package controller

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "github.com/fission-dev/fission/internal/model"
)

// UI displays the progress and outcome of a mutation run. Implementations
// subscribe to the scheduler's completion callback; they never touch the
// work database.
type UI interface {
	// Start announces the run and its total work item count.
	Start(ctx context.Context, total int) error

	// Completed reports one work item reaching a terminal state. Safe
	// for concurrent callers.
	Completed(ctx context.Context, report m.Report)

	// Summary renders the final kill/survive breakdown and shuts the UI
	// down.
	Summary(ctx context.Context, summary m.Summary) error
}

// IsTTY reports whether the file is attached to a terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewUI picks the interactive TUI on a terminal and the plain printer
// otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}
