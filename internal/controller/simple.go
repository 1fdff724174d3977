package controller

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "github.com/fission-dev/fission/internal/model"
)

var (
	killedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	survivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	timedOutStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	erroredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// SimpleUI prints one line per completion using the cobra command's
// output stream. Suited to CI logs and non-interactive shells.
type SimpleUI struct {
	cmd *cobra.Command
	mu  sync.Mutex
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start implements UI.
func (s *SimpleUI) Start(ctx context.Context, total int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.cmd.Printf("testing %d mutants\n", total)

	return nil
}

// Completed implements UI.
func (s *SimpleUI) Completed(ctx context.Context, report m.Report) {
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cmd.Printf("%s %s %s\n", verdictLabel(report.Execution), report.JobID, describeMutations(report.Mutations))
}

// Summary implements UI.
func (s *SimpleUI) Summary(ctx context.Context, summary m.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.cmd.Printf("\n%s", RenderSummaryTable(summary))

	return nil
}

// verdictLabel maps an execution to a colored single-word verdict.
func verdictLabel(exec m.Execution) string {
	switch exec.Status {
	case m.StatusTimedOut:
		return timedOutStyle.Render("timeout")
	case m.StatusErrored:
		return erroredStyle.Render("error")
	case m.StatusComplete:
		if exec.Outcome.Survived {
			return survivedStyle.Render("survived")
		}

		return killedStyle.Render("killed")
	default:
		return string(exec.Status)
	}
}

func describeMutations(mutations []m.Descriptor) string {
	if len(mutations) == 0 {
		return "(no mutations)"
	}

	first := mutations[0]
	label := fmt.Sprintf("%s@%s#%d/%d", first.Operator, first.ModulePath, first.Occurrence, first.Variant)

	if len(mutations) > 1 {
		label = fmt.Sprintf("%s (+%d more)", label, len(mutations)-1)
	}

	return label
}

// RenderSummaryTable renders the kill/survive breakdown with the mutation
// score as footer.
func RenderSummaryTable(summary m.Summary) string {
	var buffer bytes.Buffer

	table := tablewriter.NewWriter(&buffer)
	table.SetHeader([]string{"Verdict", "Count"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER})

	table.Append([]string{"killed", fmt.Sprintf("%d", summary.Killed)})
	table.Append([]string{"survived", fmt.Sprintf("%d", summary.Survived)})
	table.Append([]string{"timed out", fmt.Sprintf("%d", summary.TimedOut)})
	table.Append([]string{"errored", fmt.Sprintf("%d", summary.Errored)})

	if summary.Pending+summary.Running > 0 {
		table.Append([]string{"unfinished", fmt.Sprintf("%d", summary.Pending+summary.Running)})
	}

	table.SetFooter([]string{"score", fmt.Sprintf("%.1f%%", summary.Score())})
	table.Render()

	return buffer.String()
}
