package controller

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	m "github.com/fission-dev/fission/internal/model"
)

func completed(status m.WorkItemStatus, survived bool) completedMsg {
	return completedMsg{report: m.Report{
		Execution: m.Execution{
			Status:  status,
			Outcome: m.TestOutcome{Survived: survived},
		},
	}}
}

func TestRunModel_TalliesCompletions(t *testing.T) {
	model := newRunModel(4)

	var next tea.Model = model
	for _, msg := range []tea.Msg{
		completed(m.StatusComplete, false),
		completed(m.StatusComplete, true),
		completed(m.StatusTimedOut, true),
		completed(m.StatusErrored, false),
	} {
		next, _ = next.Update(msg)
	}

	updated, ok := next.(runModel)
	if !ok {
		t.Fatalf("Update() returned %T, want runModel", next)
	}

	if updated.done != 4 {
		t.Errorf("done = %d, want 4", updated.done)
	}

	if updated.killed != 1 || updated.survived != 1 || updated.timedOut != 1 || updated.errored != 1 {
		t.Errorf("tally = killed %d survived %d timedOut %d errored %d, want 1 each",
			updated.killed, updated.survived, updated.timedOut, updated.errored)
	}
}

func TestRunModel_ViewShowsProgress(t *testing.T) {
	model := newRunModel(10)

	next, _ := model.Update(completed(m.StatusComplete, false))

	updated, ok := next.(runModel)
	if !ok {
		t.Fatalf("Update() returned %T, want runModel", next)
	}

	view := updated.View()
	if !strings.Contains(view, "1/10") {
		t.Errorf("view should show progress count:\n%s", view)
	}
}

func TestRunModel_FinishedQuits(t *testing.T) {
	model := newRunModel(1)

	_, cmd := model.Update(finishedMsg{})
	if cmd == nil {
		t.Fatal("finishedMsg should produce a quit command")
	}

	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("finishedMsg should quit the program")
	}
}

func TestRunModel_WindowSizeClampsBar(t *testing.T) {
	model := newRunModel(1)

	next, _ := model.Update(tea.WindowSizeMsg{Width: 200, Height: 40})

	updated, ok := next.(runModel)
	if !ok {
		t.Fatalf("Update() returned %T, want runModel", next)
	}

	if updated.bar.Width != 60 {
		t.Errorf("bar width = %d, want 60", updated.bar.Width)
	}
}
