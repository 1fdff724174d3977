package controller

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	m "github.com/fission-dev/fission/internal/model"
)

var tuiHeaderStyle = lipgloss.NewStyle().Bold(true)

// TUI renders an interactive progress bar while mutants execute. It wraps
// a Bubble Tea program fed by the scheduler's completion callback.
type TUI struct {
	cmd     *cobra.Command
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{cmd: cmd, done: make(chan struct{})}
}

// Start implements UI. It launches the Bubble Tea program in the
// background; completions stream in as messages.
func (t *TUI) Start(ctx context.Context, total int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	model := newRunModel(total)
	t.program = tea.NewProgram(model, tea.WithOutput(t.cmd.OutOrStdout()))

	go func() {
		defer close(t.done)

		if _, err := t.program.Run(); err != nil {
			t.cmd.PrintErrf("progress display failed: %v\n", err)
		}
	}()

	return nil
}

// Completed implements UI.
func (t *TUI) Completed(ctx context.Context, report m.Report) {
	if ctx.Err() != nil || t.program == nil {
		return
	}

	t.program.Send(completedMsg{report: report})
}

// Summary implements UI. It stops the program, waits for the final frame,
// and prints the breakdown table.
func (t *TUI) Summary(ctx context.Context, summary m.Summary) error {
	if t.program != nil {
		t.program.Send(finishedMsg{})
		<-t.done
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	t.cmd.Printf("\n%s", RenderSummaryTable(summary))

	return nil
}

type completedMsg struct {
	report m.Report
}

type finishedMsg struct{}

// runModel is the Bubble Tea model for an in-flight run.
type runModel struct {
	bar      progress.Model
	total    int
	done     int
	killed   int
	survived int
	timedOut int
	errored  int
	width    int
}

func newRunModel(total int) runModel {
	return runModel{
		bar:   progress.New(progress.WithDefaultGradient()),
		total: total,
	}
}

// Init implements tea.Model.
func (r runModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (r runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.width = msg.Width
		r.bar.Width = min(msg.Width-4, 60)

		return r, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return r, tea.Quit
		}

		return r, nil

	case completedMsg:
		r.done++
		r.tally(msg.report.Execution)

		if r.total > 0 {
			return r, r.bar.SetPercent(float64(r.done) / float64(r.total))
		}

		return r, nil

	case finishedMsg:
		return r, tea.Quit

	case progress.FrameMsg:
		barModel, cmd := r.bar.Update(msg)
		if updated, ok := barModel.(progress.Model); ok {
			r.bar = updated
		}

		return r, cmd

	default:
		return r, nil
	}
}

func (r *runModel) tally(exec m.Execution) {
	switch exec.Status {
	case m.StatusTimedOut:
		r.timedOut++
	case m.StatusErrored:
		r.errored++
	case m.StatusComplete:
		if exec.Outcome.Survived {
			r.survived++
		} else {
			r.killed++
		}
	}
}

// View implements tea.Model.
func (r runModel) View() string {
	header := tuiHeaderStyle.Render(fmt.Sprintf("fission: %d/%d mutants", r.done, r.total))
	counts := fmt.Sprintf(
		"%s %d  %s %d  %s %d  %s %d",
		killedStyle.Render("killed"), r.killed,
		survivedStyle.Render("survived"), r.survived,
		timedOutStyle.Render("timeout"), r.timedOut,
		erroredStyle.Render("error"), r.errored,
	)

	return fmt.Sprintf("%s\n%s\n%s\n", header, r.bar.View(), counts)
}
