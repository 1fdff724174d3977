package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	m "github.com/fission-dev/fission/internal/model"
)

type scriptedBackend struct {
	exec m.Execution
	err  error
	seen []m.WorkItem
}

func (b *scriptedBackend) Submit(_ context.Context, item m.WorkItem) (m.Execution, error) {
	b.seen = append(b.seen, item)
	return b.exec, b.err
}

func (b *scriptedBackend) Concurrency() int { return 1 }

func postJob(t *testing.T, handler http.Handler, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/jobs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	return recorder
}

func TestWorkerServer_ExecutesSubmittedJob(t *testing.T) {
	backend := &scriptedBackend{
		exec: m.Execution{
			Status:  m.StatusComplete,
			Outcome: m.TestOutcome{Survived: false, Output: "FAIL", ExitCode: 1},
		},
	}
	server := NewWorkerServer(backend)

	item := m.WorkItem{
		JobID: "job-1",
		Mutations: []m.Descriptor{{
			ModulePath: "main.go",
			Operator:   "boolean",
			Occurrence: 0,
			Variant:    0,
		}},
	}

	body, err := json.Marshal(item)
	require.NoError(t, err)

	recorder := postJob(t, server.Handler(), body)
	require.Equal(t, http.StatusOK, recorder.Code)

	var exec m.Execution
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&exec))
	require.Equal(t, backend.exec, exec)

	require.Len(t, backend.seen, 1)
	require.Equal(t, "job-1", backend.seen[0].JobID)
}

func TestWorkerServer_RejectsMalformedBody(t *testing.T) {
	server := NewWorkerServer(&scriptedBackend{})

	recorder := postJob(t, server.Handler(), []byte("{not json"))
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestWorkerServer_BackendFailureIsServerError(t *testing.T) {
	backend := &scriptedBackend{err: errors.New("workspace setup failed")}
	server := NewWorkerServer(backend)

	body, err := json.Marshal(m.WorkItem{JobID: "job-2"})
	require.NoError(t, err)

	recorder := postJob(t, server.Handler(), body)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}

func TestWorkerServer_Health(t *testing.T) {
	server := NewWorkerServer(&scriptedBackend{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "ok", recorder.Body.String())
}
