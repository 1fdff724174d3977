package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the engine. Per-item failures wrap one of
// these so the scheduler can classify them without string matching.
var (
	// ErrStateConflict signals an invalid status transition, such as
	// double-dispatch of a running item or double-completion. Fatal to
	// that item's run, never to the scheduler.
	ErrStateConflict = errors.New("work item state conflict")

	// ErrSiteNotFound signals that a mutation site no longer matches at
	// apply time, typically because the source drifted between
	// enumeration and dispatch.
	ErrSiteNotFound = errors.New("mutation site not found")

	// ErrExecutorCrash signals that the test process failed to start or
	// exited abnormally, as opposed to an ordinary test failure.
	ErrExecutorCrash = errors.New("test executor crashed")

	// ErrTimedOut signals that the test process exceeded its allotted
	// time and was killed.
	ErrTimedOut = errors.New("test execution timed out")

	// ErrWorkerLost signals that a remote worker disconnected mid-job.
	// The affected item is requeued, not errored.
	ErrWorkerLost = errors.New("remote worker lost")
)

// ConfigError reports invalid configuration detected before any dispatch:
// a malformed test command template, bad backend settings, or an
// unreachable worker endpoint. It is fatal to the whole run.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// NewConfigError builds a ConfigError with a formatted reason.
func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
