package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	m "github.com/fission-dev/fission/internal/model"
	"github.com/fission-dev/fission/pkg"
)

func TestAggregator_CollectTerminalSession(t *testing.T) {
	db := seedSession(t, 4)
	ctx := context.Background()

	_, err := NewDistributor(db).Run(ctx, RunArgs{Backend: killedBackend(2)})
	require.NoError(t, err)

	reports, summary, err := NewAggregator(db).Collect(ctx)
	require.NoError(t, err)

	require.Len(t, reports, 4)
	require.Equal(t, 4, summary.Killed)
	require.InDelta(t, 100.0, summary.Score(), 0.001)
}

func TestAggregator_CollectIncludesUnfinishedItems(t *testing.T) {
	db := seedSession(t, 2)
	ctx := context.Background()

	reports, summary, err := NewAggregator(db).Collect(ctx)
	require.NoError(t, err)

	require.Len(t, reports, 2)
	require.Equal(t, 2, summary.Pending)
	require.False(t, summary.Done())
}

func TestDrainSpill_PreservesAppendOrder(t *testing.T) {
	spill, err := pkg.NewFileSpill[m.Report]()
	require.NoError(t, err)
	defer func() { _ = spill.Close() }()

	want := []m.Report{
		{JobID: "job-1", Execution: m.Execution{Status: m.StatusComplete}},
		{JobID: "job-2", Execution: m.Execution{Status: m.StatusTimedOut}},
		{JobID: "job-3", Execution: m.Execution{Status: m.StatusErrored}},
	}

	for _, report := range want {
		require.NoError(t, spill.Append(report))
	}

	got, err := DrainSpill(spill)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDrainSpill_EmptySpill(t *testing.T) {
	spill, err := pkg.NewFileSpill[m.Report]()
	require.NoError(t, err)
	defer func() { _ = spill.Close() }()

	got, err := DrainSpill(spill)
	require.NoError(t, err)
	require.Empty(t, got)
}
