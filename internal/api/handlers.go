package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/sprite-ai/civtriage/internal/board"
	"github.com/sprite-ai/civtriage/internal/intake"
	"github.com/sprite-ai/civtriage/internal/model"
	"github.com/sprite-ai/civtriage/internal/triage"
)

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Classify ---

type classifyRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Category   string   `json:"category"`
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Score      int      `json:"score"`
	Matched    []string `json:"matched"`
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	c := s.engine.Classify(req.Text)
	writeJSON(w, http.StatusOK, classifyResponse{
		Category:   c.Category.String(),
		Label:      c.Category.Label(),
		Confidence: c.Confidence,
		Score:      c.Score,
		Matched:    nonNil(c.Matched),
	})
}

// --- Score ---

type scoreRequest struct {
	Category     string  `json:"category"`
	Text         string  `json:"text"`
	HoursElapsed float64 `json:"hours_elapsed"`
}

type scoreResponse struct {
	Total     int              `json:"total"`
	Level     string           `json:"level"`
	Color     string           `json:"color"`
	Breakdown triage.Breakdown `json:"breakdown"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	category, err := model.ParseCategory(req.Category)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := intake.ValidateHours(req.HoursElapsed); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sev := s.engine.Score(category, req.Text, req.HoursElapsed)
	writeJSON(w, http.StatusOK, newScoreResponse(sev))
}

func newScoreResponse(sev triage.Severity) scoreResponse {
	level := sev.Level()
	return scoreResponse{
		Total:     sev.Total,
		Level:     level.String(),
		Color:     level.Color(),
		Breakdown: sev.Breakdown,
	}
}

// --- Assess ---

type assessRequest struct {
	Text         string  `json:"text"`
	HoursElapsed float64 `json:"hours_elapsed"`
}

type assessmentJSON struct {
	triage.Assessment
	Label           string  `json:"label"`
	Color           string  `json:"color"`
	ResolutionHours float64 `json:"resolution_hours"`
}

func newAssessmentJSON(a triage.Assessment) assessmentJSON {
	a.Matched = nonNil(a.Matched)
	a.Hazards = nonNil(a.Hazards)
	return assessmentJSON{
		Assessment:      a,
		Label:           a.Category.Label(),
		Color:           a.Level.Color(),
		ResolutionHours: a.ResolutionTarget.Hours(),
	}
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	var req assessRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := intake.ValidateHours(req.HoursElapsed); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	a := s.engine.Assess(req.Text, req.HoursElapsed)
	writeJSON(w, http.StatusOK, newAssessmentJSON(a))
}

// --- Reports ---

type reportJSON struct {
	board.Report
	Assessment assessmentJSON `json:"assessment"`
	Overdue    bool           `json:"overdue"`
}

func newReportJSON(r board.Report, now time.Time) reportJSON {
	return reportJSON{
		Report:     r,
		Assessment: newAssessmentJSON(r.Assessment),
		Overdue:    r.Overdue(now),
	}
}

type listResponse struct {
	Total   int          `json:"total"`
	Reports []reportJSON `json:"reports"`
}

func (s *Server) listReports(status, severity string) (listResponse, error) {
	f, err := parseFilter(status, severity)
	if err != nil {
		return listResponse{}, err
	}
	reports := s.board.List(f)
	now := s.board.Now()
	resp := listResponse{Total: len(reports), Reports: make([]reportJSON, 0, len(reports))}
	for _, r := range reports {
		resp.Reports = append(resp.Reports, newReportJSON(r, now))
	}
	return resp, nil
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.listReports(q.Get("status"), q.Get("severity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type submitRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Location     string   `json:"location,omitempty"`
	CreatedAt    string   `json:"created_at,omitempty"`
	HoursElapsed *float64 `json:"hours_elapsed,omitempty"`
}

func (req submitRequest) record() (intake.Record, error) {
	created, err := intake.ParseTimestamp(req.CreatedAt)
	if err != nil {
		return intake.Record{}, err
	}
	return intake.Record{
		Title:        req.Title,
		Description:  req.Description,
		Location:     req.Location,
		CreatedAt:    created,
		HoursElapsed: req.HoursElapsed,
	}, nil
}

// submit waits out the analysis delay, then adds the record to the board.
func (s *Server) submit(ctx context.Context, rec intake.Record) (board.Report, error) {
	if s.delay > 0 {
		t := time.NewTimer(s.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return board.Report{}, ctx.Err()
		case <-t.C:
		}
	}
	return s.board.Submit(rec)
}

func (s *Server) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	rec, err := req.record()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.submit(r.Context(), rec)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, newReportJSON(report, s.board.Now()))
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.board.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newReportJSON(report, s.board.Now()))
}

type statusRequest struct {
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

func (req statusRequest) update() (board.Update, error) {
	st, err := model.ParseStatus(req.Status)
	if err != nil {
		return board.Update{}, err
	}
	return board.Update{Status: st, AssignedTo: req.AssignedTo, Comment: req.Comment}, nil
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	u, err := req.update()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := s.board.UpdateStatus(r.PathValue("id"), u)
	if err != nil {
		writeError(w, errStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newReportJSON(report, s.board.Now()))
}

// --- Stats ---

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.Stats())
}

// parseFilter reads list filters; empty and "all" match everything.
func parseFilter(status, severity string) (board.Filter, error) {
	var f board.Filter
	if status != "" && status != "all" {
		st, err := model.ParseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = &st
	}
	if severity != "" && severity != "all" {
		l, err := model.ParseSeverityLevel(severity)
		if err != nil {
			return f, err
		}
		f.Level = &l
	}
	return f, nil
}

func errStatus(err error) int {
	switch {
	case errors.Is(err, board.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, board.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, intake.ErrMissingField), errors.Is(err, intake.ErrInvalidElapsed):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
