package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	m "github.com/fission-dev/fission/internal/model"
)

// JobsEndpoint is the path a fission worker daemon serves job submissions
// on.
const JobsEndpoint = "/v1/jobs"

// RemoteBackendConfig configures dispatch to external worker daemons.
type RemoteBackendConfig struct {
	// Workers lists the base URLs of fission worker daemons. Each worker
	// executes one job at a time, so the backend's concurrency equals
	// the number of workers.
	Workers []string

	// RequestTimeout bounds a single job round-trip. It must exceed the
	// per-mutation test timeout configured on the workers.
	RequestTimeout time.Duration
}

type remoteBackend struct {
	client  *http.Client
	workers []string

	// slots hands out worker URLs; holding one is the right to run a
	// job on that worker.
	slots chan string
}

// NewRemoteBackend builds a backend that ships work items to fission
// worker daemons over HTTP. A worker that cannot be reached mid-job
// surfaces as model.ErrWorkerLost so the scheduler requeues the item
// instead of marking it errored.
func NewRemoteBackend(cfg RemoteBackendConfig) (Backend, error) {
	if len(cfg.Workers) == 0 {
		return nil, m.NewConfigError("remote backend needs at least one worker URL")
	}

	for _, worker := range cfg.Workers {
		parsed, err := url.Parse(worker)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return nil, m.NewConfigError("invalid worker URL %q", worker)
		}
	}

	if cfg.RequestTimeout <= 0 {
		return nil, m.NewConfigError("remote request timeout must be positive, got %s", cfg.RequestTimeout)
	}

	slots := make(chan string, len(cfg.Workers))
	for _, worker := range cfg.Workers {
		slots <- worker
	}

	return &remoteBackend{
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		workers: cfg.Workers,
		slots:   slots,
	}, nil
}

func (b *remoteBackend) Concurrency() int {
	return len(b.workers)
}

// Submit acquires a worker slot, ships the item, and decodes the terminal
// execution the worker reports.
func (b *remoteBackend) Submit(ctx context.Context, item m.WorkItem) (m.Execution, error) {
	var worker string

	select {
	case <-ctx.Done():
		return m.Execution{}, ctx.Err()
	case worker = <-b.slots:
	}

	defer func() { b.slots <- worker }()

	exec, err := b.post(ctx, worker, item)
	if err != nil {
		if ctx.Err() != nil {
			return m.Execution{}, ctx.Err()
		}

		return m.Execution{}, fmt.Errorf("%w: %s: %v", m.ErrWorkerLost, worker, err)
	}

	return exec, nil
}

func (b *remoteBackend) post(ctx context.Context, worker string, item m.WorkItem) (m.Execution, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return m.Execution{}, fmt.Errorf("encoding work item: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, worker+JobsEndpoint, bytes.NewReader(body))
	if err != nil {
		return m.Execution{}, err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return m.Execution{}, err
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return m.Execution{}, fmt.Errorf("worker returned status %d", resp.StatusCode)
	}

	var exec m.Execution
	if err := json.NewDecoder(resp.Body).Decode(&exec); err != nil {
		return m.Execution{}, fmt.Errorf("decoding worker response: %w", err)
	}

	if !exec.Status.Terminal() {
		return m.Execution{}, fmt.Errorf("worker reported non-terminal status %q", exec.Status)
	}

	return exec, nil
}
