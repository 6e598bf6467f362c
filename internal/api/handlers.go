package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nova-migration/migrate-go/internal/domain"
	"github.com/nova-migration/migrate-go/internal/temporal/querier"
	"github.com/nova-migration/migrate-go/internal/uischema"
)

// anonymousRequester is recorded when auth is disabled.
const anonymousRequester = "anonymous"

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartMigration(w http.ResponseWriter, r *http.Request) {
	var in domain.MigrationInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := domain.ValidateMigrationInput(in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.querier.StartMigration(r.Context(), querier.StartRequest{
		Input:       in,
		RequestedBy: requester(r),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListMigrations(w http.ResponseWriter, r *http.Request) {
	opts := querier.ListOptions{
		TaskQueue:    r.URL.Query().Get("queue"),
		StatusFilter: r.URL.Query().Get("status"),
	}

	runs, err := s.querier.ListWorkflows(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetMigration(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "workflow id required")
		return
	}

	result, err := s.querier.GetWorkflowState(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetMigrationUI(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "workflow id required")
		return
	}

	result, err := s.querier.GetWorkflowState(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, uischema.Build(result.State))
}

func (s *Server) handleRestartMigration(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "workflow id required")
		return
	}

	res, err := s.querier.RestartMigration(r.Context(), id, requester(r))
	switch {
	case errors.Is(err, querier.ErrRunInProgress):
		writeError(w, http.StatusConflict, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func requester(r *http.Request) string {
	if u := UserFromContext(r.Context()); u != "" {
		return u
	}
	return anonymousRequester
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
