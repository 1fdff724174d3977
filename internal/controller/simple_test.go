package controller

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	m "github.com/fission-dev/fission/internal/model"
)

func newCaptureCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer

	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	return cmd, &out
}

func killedReport(jobID string) m.Report {
	return m.Report{
		JobID: jobID,
		Mutations: []m.Descriptor{{
			ModulePath: "main.go",
			Operator:   "arithmetic",
			Occurrence: 0,
			Variant:    1,
		}},
		Execution: m.Execution{
			Status:  m.StatusComplete,
			Outcome: m.TestOutcome{Survived: false, Duration: 80 * time.Millisecond, ExitCode: 1},
		},
	}
}

func TestSimpleUI_PrintsOneLinePerCompletion(t *testing.T) {
	cmd, out := newCaptureCmd()
	ui := NewSimpleUI(cmd)
	ctx := context.Background()

	if err := ui.Start(ctx, 2); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	ui.Completed(ctx, killedReport("job-1"))

	survived := killedReport("job-2")
	survived.Execution.Outcome.Survived = true
	ui.Completed(ctx, survived)

	output := out.String()

	if !strings.Contains(output, "testing 2 mutants") {
		t.Errorf("output should announce the total, got %q", output)
	}

	if !strings.Contains(output, "job-1") || !strings.Contains(output, "job-2") {
		t.Errorf("output should mention both job ids, got %q", output)
	}

	if !strings.Contains(output, "arithmetic@main.go#0/1") {
		t.Errorf("output should describe the mutation, got %q", output)
	}
}

func TestSimpleUI_CancelledContextSuppressesOutput(t *testing.T) {
	cmd, out := newCaptureCmd()
	ui := NewSimpleUI(cmd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ui.Completed(ctx, killedReport("job-1"))

	if out.Len() != 0 {
		t.Errorf("cancelled completion should print nothing, got %q", out.String())
	}

	if err := ui.Summary(ctx, m.Summary{}); err == nil {
		t.Error("Summary() should surface the context error")
	}
}

func TestSimpleUI_SummaryRendersTable(t *testing.T) {
	cmd, out := newCaptureCmd()
	ui := NewSimpleUI(cmd)

	summary := m.Summary{Total: 4, Killed: 2, Survived: 1, TimedOut: 1}

	if err := ui.Summary(context.Background(), summary); err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	output := out.String()

	for _, want := range []string{"killed", "survived", "timed out", "errored", "50.0%"} {
		if !strings.Contains(output, want) {
			t.Errorf("summary output missing %q:\n%s", want, output)
		}
	}
}

func TestRenderSummaryTable_FlagsUnfinishedItems(t *testing.T) {
	rendered := RenderSummaryTable(m.Summary{Total: 3, Killed: 1, Pending: 2})

	if !strings.Contains(rendered, "unfinished") {
		t.Errorf("table should flag unfinished items:\n%s", rendered)
	}
}

func TestDescribeMutations(t *testing.T) {
	if got := describeMutations(nil); got != "(no mutations)" {
		t.Errorf("describeMutations(nil) = %q", got)
	}

	bundle := []m.Descriptor{
		{ModulePath: "a.go", Operator: "boolean", Occurrence: 1, Variant: 0},
		{ModulePath: "b.go", Operator: "loop", Occurrence: 0, Variant: 0},
	}

	got := describeMutations(bundle)
	if !strings.Contains(got, "boolean@a.go#1/0") || !strings.Contains(got, "+1 more") {
		t.Errorf("describeMutations(bundle) = %q", got)
	}
}

func TestNewUI_PicksImplementationByTTY(t *testing.T) {
	cmd, _ := newCaptureCmd()

	if _, ok := NewUI(cmd, true).(*TUI); !ok {
		t.Error("NewUI(tty=true) should return the TUI")
	}

	if _, ok := NewUI(cmd, false).(*SimpleUI); !ok {
		t.Error("NewUI(tty=false) should return the SimpleUI")
	}
}
