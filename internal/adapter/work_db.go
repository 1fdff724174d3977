package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	m "github.com/fission-dev/fission/internal/model"
)

// WorkDB is the durable store for a mutation session. It is the single
// source of truth for whether a mutation has been processed: status
// transitions go through compare-and-swap updates so that at most one
// execution per job id is ever in flight, across goroutines and across
// process restarts.
type WorkDB interface {
	// Seed creates one pending work item per mutation bundle and returns
	// the assigned job ids. Descriptors already present in the session
	// are dropped so no mutation is ever scheduled twice.
	Seed(ctx context.Context, bundles [][]m.Descriptor) ([]string, error)

	// Pending returns the work items still awaiting dispatch, in seed
	// order. Callers may re-query after partial failure; the result
	// reflects the current state.
	Pending(ctx context.Context) ([]m.WorkItem, error)

	// MarkRunning transitions a pending item to running. Returns
	// model.ErrStateConflict when the item is already running or
	// terminal, which guards against double-dispatch.
	MarkRunning(ctx context.Context, jobID string) error

	// Requeue reverts a running item to pending for another attempt.
	Requeue(ctx context.Context, jobID string) error

	// RequeueRunning reverts every running item to pending. Called at
	// the start of a run so items stranded by a previous interrupt are
	// picked up again.
	RequeueRunning(ctx context.Context) (int64, error)

	// RecordResult transitions a running item to the terminal state in
	// the execution and attaches the outcome. Returns
	// model.ErrStateConflict when the item is not running, which guards
	// against double-completion races.
	RecordResult(ctx context.Context, jobID string, exec m.Execution) error

	// Results returns the execution for every terminal item.
	Results(ctx context.Context) (map[string]m.Execution, error)

	// Reports returns the per-job records for every item, terminal or
	// not, in seed order.
	Reports(ctx context.Context) ([]m.Report, error)

	// Summary counts items per terminal state.
	Summary(ctx context.Context) (m.Summary, error)

	Close() error
}

// workItemRow is the gorm row backing one work item.
type workItemRow struct {
	Seq       uint           `gorm:"primaryKey;autoIncrement"`
	JobID     string         `gorm:"column:job_id;uniqueIndex;not null"`
	Status    string         `gorm:"index;not null"`
	Mutations []m.Descriptor `gorm:"type:text;serializer:json"`
	Survived  bool
	Output    string
	Duration  int64 `gorm:"column:duration_ns"`
	ExitCode  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for gorm.
func (workItemRow) TableName() string {
	return "work_items"
}

// descriptorKeyRow enforces the one-work-item-per-descriptor invariant at
// the database level.
type descriptorKeyRow struct {
	Key   string `gorm:"primaryKey"`
	JobID string `gorm:"not null"`
}

// TableName specifies the table name for gorm.
func (descriptorKeyRow) TableName() string {
	return "descriptor_keys"
}

type sqliteWorkDB struct {
	db *gorm.DB
}

// Make sure we conform to the WorkDB interface.
var _ WorkDB = (*sqliteWorkDB)(nil)

// OpenWorkDB opens (creating if necessary) the session database at path.
func OpenWorkDB(path m.Path) (WorkDB, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", path)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}

	if err := db.AutoMigrate(&workItemRow{}, &descriptorKeyRow{}); err != nil {
		return nil, fmt.Errorf("migrating session database: %w", err)
	}

	return &sqliteWorkDB{db: db}, nil
}

func (s *sqliteWorkDB) Seed(ctx context.Context, bundles [][]m.Descriptor) ([]string, error) {
	jobIDs := make([]string, 0, len(bundles))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, bundle := range bundles {
			jobID := uuid.NewString()

			fresh, err := claimDescriptors(tx, jobID, bundle)
			if err != nil {
				return err
			}

			if len(fresh) == 0 {
				continue
			}

			row := workItemRow{
				JobID:     jobID,
				Status:    string(m.StatusPending),
				Mutations: fresh,
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("seeding work item: %w", err)
			}

			jobIDs = append(jobIDs, jobID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("seeded session", "workItems", len(jobIDs))

	return jobIDs, nil
}

// claimDescriptors registers the bundle's descriptor keys and returns only
// the descriptors not already owned by an earlier work item.
func claimDescriptors(tx *gorm.DB, jobID string, bundle []m.Descriptor) ([]m.Descriptor, error) {
	fresh := make([]m.Descriptor, 0, len(bundle))

	for _, descriptor := range bundle {
		keyRow := descriptorKeyRow{Key: descriptor.Key(), JobID: jobID}

		result := tx.Where("key = ?", keyRow.Key).FirstOrCreate(&keyRow)
		if result.Error != nil {
			return nil, fmt.Errorf("claiming descriptor %s: %w", keyRow.Key, result.Error)
		}

		if keyRow.JobID != jobID {
			slog.Debug("dropping duplicate descriptor", "key", keyRow.Key, "ownedBy", keyRow.JobID)
			continue
		}

		fresh = append(fresh, descriptor)
	}

	return fresh, nil
}

func (s *sqliteWorkDB) Pending(ctx context.Context) ([]m.WorkItem, error) {
	var rows []workItemRow

	result := s.db.WithContext(ctx).
		Where("status = ?", string(m.StatusPending)).
		Order("seq").
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("querying pending work: %w", result.Error)
	}

	items := make([]m.WorkItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.workItem())
	}

	return items, nil
}

func (s *sqliteWorkDB) MarkRunning(ctx context.Context, jobID string) error {
	return s.transition(ctx, jobID, []string{string(m.StatusPending)}, map[string]any{
		"status": string(m.StatusRunning),
	})
}

func (s *sqliteWorkDB) Requeue(ctx context.Context, jobID string) error {
	return s.transition(ctx, jobID, []string{string(m.StatusRunning)}, map[string]any{
		"status": string(m.StatusPending),
	})
}

func (s *sqliteWorkDB) RequeueRunning(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Model(&workItemRow{}).
		Where("status = ?", string(m.StatusRunning)).
		Update("status", string(m.StatusPending))
	if result.Error != nil {
		return 0, fmt.Errorf("requeueing running items: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (s *sqliteWorkDB) RecordResult(ctx context.Context, jobID string, exec m.Execution) error {
	if !exec.Status.Terminal() {
		return fmt.Errorf("%w: %s is not a terminal status", m.ErrStateConflict, exec.Status)
	}

	return s.transition(ctx, jobID, []string{string(m.StatusRunning)}, map[string]any{
		"status":      string(exec.Status),
		"survived":    exec.Outcome.Survived,
		"output":      exec.Outcome.Output,
		"duration_ns": int64(exec.Outcome.Duration),
		"exit_code":   exec.Outcome.ExitCode,
	})
}

// transition performs a compare-and-swap status update. Zero affected rows
// means the item was not in an expected state, which is the race the
// caller is guarding against.
func (s *sqliteWorkDB) transition(ctx context.Context, jobID string, from []string, updates map[string]any) error {
	result := s.db.WithContext(ctx).
		Model(&workItemRow{}).
		Where("job_id = ? AND status IN ?", jobID, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("updating work item %s: %w", jobID, result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: job %s", m.ErrStateConflict, jobID)
	}

	return nil
}

func (s *sqliteWorkDB) Results(ctx context.Context) (map[string]m.Execution, error) {
	rows, err := s.terminalRows(ctx)
	if err != nil {
		return nil, err
	}

	results := make(map[string]m.Execution, len(rows))
	for _, row := range rows {
		results[row.JobID] = row.execution()
	}

	return results, nil
}

func (s *sqliteWorkDB) Reports(ctx context.Context) ([]m.Report, error) {
	var rows []workItemRow

	result := s.db.WithContext(ctx).Order("seq").Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("querying work items: %w", result.Error)
	}

	reports := make([]m.Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, m.Report{
			JobID:     row.JobID,
			Mutations: row.Mutations,
			Execution: row.execution(),
		})
	}

	return reports, nil
}

func (s *sqliteWorkDB) Summary(ctx context.Context) (m.Summary, error) {
	var rows []struct {
		Status   string
		Survived bool
		Count    int
	}

	result := s.db.WithContext(ctx).
		Model(&workItemRow{}).
		Select("status, survived, count(*) as count").
		Group("status, survived").
		Find(&rows)
	if result.Error != nil {
		return m.Summary{}, fmt.Errorf("summarizing session: %w", result.Error)
	}

	var summary m.Summary

	for _, row := range rows {
		summary.Total += row.Count

		switch m.WorkItemStatus(row.Status) {
		case m.StatusPending:
			summary.Pending += row.Count
		case m.StatusRunning:
			summary.Running += row.Count
		case m.StatusTimedOut:
			summary.TimedOut += row.Count
		case m.StatusErrored:
			summary.Errored += row.Count
		case m.StatusComplete:
			if row.Survived {
				summary.Survived += row.Count
			} else {
				summary.Killed += row.Count
			}
		}
	}

	return summary, nil
}

func (s *sqliteWorkDB) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (s *sqliteWorkDB) terminalRows(ctx context.Context) ([]workItemRow, error) {
	var rows []workItemRow

	result := s.db.WithContext(ctx).
		Where("status IN ?", []string{
			string(m.StatusComplete),
			string(m.StatusTimedOut),
			string(m.StatusErrored),
		}).
		Order("seq").
		Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("querying terminal work items: %w", result.Error)
	}

	return rows, nil
}

func (row workItemRow) workItem() m.WorkItem {
	return m.WorkItem{
		JobID:     row.JobID,
		Mutations: row.Mutations,
		Status:    m.WorkItemStatus(row.Status),
	}
}

func (row workItemRow) execution() m.Execution {
	return m.Execution{
		Status: m.WorkItemStatus(row.Status),
		Outcome: m.TestOutcome{
			Survived: row.Survived,
			Output:   row.Output,
			Duration: time.Duration(row.Duration),
			ExitCode: row.ExitCode,
		},
	}
}
