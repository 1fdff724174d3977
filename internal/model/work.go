package model

import "time"

// WorkItemStatus represents the lifecycle state of a work item. Transitions
// are monotonic: pending -> running -> {complete, timed_out, errored}. A
// terminal state never reverts except through an explicit requeue.
type WorkItemStatus string

// Available WorkItemStatus values.
const (
	StatusPending  WorkItemStatus = "pending"
	StatusRunning  WorkItemStatus = "running"
	StatusComplete WorkItemStatus = "complete"
	StatusTimedOut WorkItemStatus = "timed_out"
	StatusErrored  WorkItemStatus = "errored"
)

// Terminal reports whether the status is an end state.
func (s WorkItemStatus) Terminal() bool {
	return s == StatusComplete || s == StatusTimedOut || s == StatusErrored
}

// WorkItem is the schedulable unit: one or more mutations that are applied
// and tested together under a single job identifier.
type WorkItem struct {
	JobID     string         `json:"job_id" yaml:"job_id"`
	Mutations []Descriptor   `json:"mutations" yaml:"mutations"`
	Status    WorkItemStatus `json:"status" yaml:"status"`
}

// TestOutcome is the result of running the test suite against a mutant.
// It is write-once: owned by the work item after the item reaches a
// terminal state.
type TestOutcome struct {
	// Survived is true when the tests still pass against the mutant, i.e.
	// the mutation went undetected. Timed-out mutants count as survived.
	Survived bool          `json:"survived" yaml:"survived"`
	Output   string        `json:"output" yaml:"output"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	ExitCode int           `json:"exit_code" yaml:"exit_code"`
}

// Execution pairs an outcome with the terminal status it produced.
type Execution struct {
	Status  WorkItemStatus `json:"status" yaml:"status"`
	Outcome TestOutcome    `json:"outcome" yaml:"outcome"`
}

// Report is the per-job record handed to reporting and aggregation code.
type Report struct {
	JobID     string       `json:"job_id" yaml:"job_id"`
	Mutations []Descriptor `json:"mutations" yaml:"mutations"`
	Execution Execution    `json:"execution" yaml:"execution"`
}
