package http

import (
	"net/http"

	"worklog/internal/core"
	"worklog/internal/log"
)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(s.svc.Jobs()).Write(w)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.svc.JobByID(r.PathValue("id"))
	if !ok {
		NotFoundError(r, "job not found").Write(w)
		return
	}
	NewJSONResponse().Body(job).Write(w)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	job, err := parseJobRequest(w, r, "")
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	created, err := s.svc.AddJob(r.Context(), job)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/jobs/"+created.ID).
		Body(created).
		Write(w)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	job, err := parseJobRequest(w, r, r.PathValue("id"))
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	updated, err := s.svc.UpdateJob(r.Context(), job)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(updated).Write(w)
}

// deleteJobResponse reports the entries removed with the job.
type deleteJobResponse struct {
	ID               string   `json:"id"`
	CascadedEntryIDs []string `json:"cascadedEntryIds"`
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cascaded, err := s.svc.DeleteJob(r.Context(), id)
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if cascaded == nil {
		cascaded = []string{}
	}
	NewJSONResponse().Body(deleteJobResponse{ID: id, CascadedEntryIDs: cascaded}).Write(w)
}

// entriesOrEmpty keeps list answers as JSON arrays.
func entriesOrEmpty(entries []core.WorkEntry) []core.WorkEntry {
	if entries == nil {
		return []core.WorkEntry{}
	}
	return entries
}
