package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"worklog/internal/core"
	"worklog/internal/log"
	"worklog/internal/services"
)

// handleListEntries lists the entries of one day in insertion order, or
// every entry when no date is given.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		NewJSONResponse().Body(entriesOrEmpty(s.svc.Snapshot().Entries)).Write(w)
		return
	}
	d, err := core.ParseDate(date)
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	NewJSONResponse().Body(entriesOrEmpty(s.svc.EntriesOnDate(d.String()))).Write(w)
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.svc.EntryByID(r.PathValue("id"))
	if !ok {
		NotFoundError(r, "entry not found").Write(w)
		return
	}
	NewJSONResponse().Body(entry).Write(w)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := parseEntryRequest(w, r, "")
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	created, err := s.svc.AddEntry(r.Context(), entry)
	if err != nil {
		writeError(w, r, log.OpCreate, unknownJobIsInvalid(err))
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/entries/"+created.ID).
		Body(created).
		Write(w)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.svc.EntryByID(id); !ok {
		NotFoundError(r, "entry not found").Write(w)
		return
	}
	entry, err := parseEntryRequest(w, r, id)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	updated, err := s.svc.UpdateEntry(r.Context(), entry)
	if err != nil {
		writeError(w, r, log.OpUpdate, unknownJobIsInvalid(err))
		return
	}
	NewJSONResponse().Body(updated).Write(w)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteEntry(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// unknownJobIsInvalid turns a missing job referenced by an entry body into
// a validation failure: the addressed resource is the entry, not the job.
func unknownJobIsInvalid(err error) error {
	if errors.Is(err, services.ErrJobNotFound) {
		return fmt.Errorf("%w: %v", core.ErrInvalidEntry, err)
	}
	return err
}
