// Package service exposes the fission worker daemon over HTTP.
package service

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fission-dev/fission/internal/domain"
	m "github.com/fission-dev/fission/internal/model"
)

// WorkerServer serves job submissions from a remote backend. Each
// submission is executed locally through the worker's own backend against
// the worker's checkout of the project, and the terminal execution is
// returned in the response body.
type WorkerServer struct {
	backend domain.Backend
	router  chi.Router
}

// NewWorkerServer constructs a WorkerServer around a local backend.
func NewWorkerServer(backend domain.Backend) *WorkerServer {
	s := &WorkerServer{backend: backend}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Get("/healthz", s.handleHealth)
	r.Post(domain.JobsEndpoint, s.handleJob)

	s.router = r

	return s
}

// Handler returns the HTTP handler, exposed for tests.
func (s *WorkerServer) Handler() http.Handler {
	return s.router
}

// Listen blocks serving requests on addr.
func (s *WorkerServer) Listen(addr string) error {
	slog.Info("fission worker listening", "addr", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server.ListenAndServe()
}

func (s *WorkerServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *WorkerServer) handleJob(w http.ResponseWriter, r *http.Request) {
	var item m.WorkItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, "malformed work item: "+err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("executing remote job", "jobID", item.JobID, "mutations", len(item.Mutations))

	exec, err := s.backend.Submit(r.Context(), item)
	if err != nil {
		slog.Error("remote job failed", "jobID", item.JobID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(exec); err != nil {
		slog.Error("failed to encode job response", "jobID", item.JobID, "error", err)
	}
}
