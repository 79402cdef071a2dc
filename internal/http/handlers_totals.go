package http

import (
	"io"
	"net/http"

	"worklog/internal/core"
	"worklog/internal/export"
	"worklog/internal/log"
)

type boundsResponse struct {
	Period core.Period `json:"period"`
	Start  string      `json:"start"`
	End    string      `json:"end"`
	Days   int         `json:"days"`
}

func newBoundsResponse(period core.Period, b core.Bounds) boundsResponse {
	return boundsResponse{Period: period, Start: b.Start.String(), End: b.End.String(), Days: b.Days()}
}

type totalsResponse struct {
	boundsResponse
	Job    string                `json:"job"`
	Totals core.CalculatedTotals `json:"totals"`
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := parsePeriodParam(q)
	if err != nil {
		writeError(w, r, log.OpTotals, err)
		return
	}
	ref, err := parseDateParam(q, "date")
	if err != nil {
		writeError(w, r, log.OpTotals, err)
		return
	}
	filter := parseJobFilter(q)

	compute := func() core.CalculatedTotals { return s.svc.CalculateTotals(period, ref, filter) }
	var totals core.CalculatedTotals
	if s.totals != nil {
		totals = s.totals.Get(period, ref, filter, compute)
	} else {
		totals = compute()
	}

	log.FromContext(r.Context()).DebugContext(r.Context(), "Totals computed",
		log.FieldOperation, log.OpTotals,
		log.FieldPeriod, string(period),
		log.FieldDate, ref.String(),
		log.FieldJobID, filter)

	NewJSONResponse().Body(totalsResponse{
		boundsResponse: newBoundsResponse(period, core.BoundsFor(period, ref)),
		Job:            filter,
		Totals:         totals,
	}).Write(w)
}

func (s *Server) handleBounds(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period, err := parsePeriodParam(q)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	ref, err := parseDateParam(q, "date")
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().Body(newBoundsResponse(period, core.BoundsFor(period, ref))).Write(w)
}

// handleSync returns the whole work log so a client can replace its copy.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	snap := s.svc.Snapshot()
	if snap.Jobs == nil {
		snap.Jobs = []core.Job{}
	}
	snap.Entries = entriesOrEmpty(snap.Entries)
	NewJSONResponse().Body(snap).Write(w)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "csv", "text/csv; charset=utf-8", export.WriteCSV)
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	s.handleExport(w, r, "json", "application/json", export.WriteJSON)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(io.Writer, []export.Row) error) {
	f, err := parseExportFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpExport, err)
		return
	}
	rows := export.BuildRows(s.svc.Snapshot(), f)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.FileName(ext)+`"`)
	if err := write(w, rows); err != nil {
		// Headers are gone; only the log can tell.
		log.FromContext(r.Context()).WithComponent(log.ComponentExport).ErrorContext(r.Context(), "Export write failed",
			log.FieldOperation, log.OpExport,
			log.FieldError, err)
	}
}
