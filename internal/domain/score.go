package domain

import (
	"context"

	"github.com/fission-dev/fission/internal/adapter"
	m "github.com/fission-dev/fission/internal/model"
	"github.com/fission-dev/fission/pkg"
)

// Aggregator summarizes a session's terminal state into per-job reports
// and kill/survive counts.
type Aggregator interface {
	Collect(ctx context.Context) ([]m.Report, m.Summary, error)
}

type aggregator struct {
	db adapter.WorkDB
}

// NewAggregator constructs an Aggregator over the work database.
func NewAggregator(db adapter.WorkDB) Aggregator {
	return &aggregator{db: db}
}

func (a *aggregator) Collect(ctx context.Context) ([]m.Report, m.Summary, error) {
	reports, err := a.db.Reports(ctx)
	if err != nil {
		return nil, m.Summary{}, err
	}

	summary, err := a.db.Summary(ctx)
	if err != nil {
		return nil, m.Summary{}, err
	}

	return reports, summary, nil
}

// DrainSpill collects the reports a run spilled to disk. Completions are
// appended to a spill during execution so a large session never holds all
// its test output in memory at once.
func DrainSpill(spill pkg.FileSpill[m.Report]) ([]m.Report, error) {
	reports := make([]m.Report, 0, spill.Len())

	err := spill.Range(func(_ uint64, report m.Report) error {
		reports = append(reports, report)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reports, nil
}
