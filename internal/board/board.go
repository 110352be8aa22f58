// Package board keeps the in-memory set of submitted reports and moves them
// through the response workflow.
package board

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sprite-ai/civtriage/internal/intake"
	"github.com/sprite-ai/civtriage/internal/model"
	"github.com/sprite-ai/civtriage/internal/triage"
)

var (
	// ErrNotFound is returned for an unknown report ID.
	ErrNotFound = errors.New("report not found")
	// ErrInvalidTransition is returned when a status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Timeline event names.
const (
	EventSubmitted = "Complaint submitted"
	EventAnalyzed  = "AI analysis complete"
)

// Event is one entry in a report's timeline.
type Event struct {
	Event   string    `json:"event"`
	Time    time.Time `json:"time"`
	Comment string    `json:"comment,omitempty"`
}

// Report is a triaged citizen report.
type Report struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Location    string            `json:"location,omitempty"`
	Status      model.Status      `json:"status"`
	AssignedTo  string            `json:"assigned_to,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Assessment  triage.Assessment `json:"assessment"`
	Timeline    []Event           `json:"timeline"`
}

// Overdue reports whether the report needs attention at now: a critical
// report nobody has picked up, or any open report past its resolution target.
func (r Report) Overdue(now time.Time) bool {
	if r.Status == model.StatusResolved {
		return false
	}
	if r.Assessment.Level == model.SeverityCritical && r.Status == model.StatusSubmitted {
		return true
	}
	return now.Sub(r.CreatedAt) > r.Assessment.ResolutionTarget
}

func (r Report) clone() Report {
	r.Timeline = slices.Clone(r.Timeline)
	r.Assessment.Matched = slices.Clone(r.Assessment.Matched)
	r.Assessment.Hazards = slices.Clone(r.Assessment.Hazards)
	return r
}

// Filter narrows List. Nil fields match everything.
type Filter struct {
	Status *model.Status
	Level  *model.SeverityLevel
}

func (f Filter) match(r *Report) bool {
	if f.Status != nil && r.Status != *f.Status {
		return false
	}
	if f.Level != nil && r.Assessment.Level != *f.Level {
		return false
	}
	return true
}

// Update is a status change request.
type Update struct {
	Status     model.Status
	AssignedTo string
	Comment    string
}

// Stats summarizes the board.
type Stats struct {
	Total    int            `json:"total"`
	Active   int            `json:"active"`
	Overdue  int            `json:"overdue"`
	Resolved int            `json:"resolved"`
	ByLevel  map[string]int `json:"by_level"`
}

// Board stores reports. It is safe for concurrent use.
type Board struct {
	mu      sync.RWMutex
	engine  *triage.Engine
	now     func() time.Time
	seq     int
	reports map[string]*Report
}

// Option configures a Board.
type Option func(*Board)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Board) {
		b.now = now
	}
}

// New returns an empty board that assesses submissions with engine.
func New(engine *triage.Engine, opts ...Option) *Board {
	b := &Board{
		engine:  engine,
		now:     time.Now,
		reports: make(map[string]*Report),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Now returns the board's current time.
func (b *Board) Now() time.Time {
	return b.now()
}

// Submit validates and assesses a record and adds it to the board. A record
// with no timestamp is taken as submitted now. HoursElapsed, when set, fixes
// CreatedAt so later rescoring measures age from the same instant.
//
// The engine sees the description as given; the stored copy is sanitized.
func (b *Board) Submit(rec intake.Record) (Report, error) {
	clean := intake.Clean(rec)
	if err := intake.Validate(clean); err != nil {
		return Report{}, err
	}

	now := b.now()
	hours, err := intake.Elapsed(rec, now)
	if err != nil {
		return Report{}, err
	}
	created := rec.CreatedAt
	if rec.HoursElapsed != nil || created.IsZero() {
		created = now.Add(-time.Duration(hours * float64(time.Hour)))
		hours = now.Sub(created).Hours()
	}

	a := b.engine.Assess(rec.Description, hours)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	r := &Report{
		ID:          fmt.Sprintf("CR-%05d", b.seq),
		Title:       clean.Title,
		Description: clean.Description,
		Location:    clean.Location,
		Status:      model.StatusSubmitted,
		CreatedAt:   created,
		UpdatedAt:   now,
		Assessment:  a,
		Timeline: []Event{
			{Event: EventSubmitted, Time: created},
			{Event: EventAnalyzed, Time: now},
		},
	}
	b.reports[r.ID] = r
	return r.clone(), nil
}

// Get returns a copy of the report with the given ID.
func (b *Board) Get(id string) (Report, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.reports[id]
	if !ok {
		return Report{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return r.clone(), nil
}

// List returns the matching reports, most severe first. Equal totals are
// ordered oldest first, then by ID.
func (b *Board) List(f Filter) []Report {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Report, 0, len(b.reports))
	for _, r := range b.reports {
		if f.match(r) {
			out = append(out, r.clone())
		}
	}
	slices.SortFunc(out, func(x, y Report) int {
		if c := cmp.Compare(y.Assessment.Total, x.Assessment.Total); c != 0 {
			return c
		}
		if c := x.CreatedAt.Compare(y.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(x.ID, y.ID)
	})
	return out
}

// UpdateStatus moves a report along the workflow, optionally assigning it.
// Resolved reports accept no further updates.
func (b *Board) UpdateStatus(id string, u Update) (Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.reports[id]
	if !ok {
		return Report{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if r.Status == model.StatusResolved {
		return Report{}, fmt.Errorf("%s is resolved: %w", id, ErrInvalidTransition)
	}

	assignee := intake.Sanitize(u.AssignedTo)
	comment := intake.Sanitize(u.Comment)
	statusChange := u.Status != r.Status
	if statusChange && !r.Status.CanTransition(u.Status) {
		return Report{}, fmt.Errorf("%s to %s: %w", r.Status, u.Status, ErrInvalidTransition)
	}
	assign := assignee != "" && assignee != r.AssignedTo
	if !statusChange && !assign && comment == "" {
		return Report{}, fmt.Errorf("%s already %s: %w", id, r.Status, ErrInvalidTransition)
	}

	now := b.now()
	if assign {
		r.AssignedTo = assignee
		r.Timeline = append(r.Timeline, Event{Event: "Assigned to " + assignee, Time: now})
	}
	switch {
	case statusChange:
		r.Status = u.Status
		r.Timeline = append(r.Timeline, Event{Event: "Status: " + u.Status.Title(), Time: now, Comment: comment})
	case comment != "":
		r.Timeline = append(r.Timeline, Event{Event: "Comment added", Time: now, Comment: comment})
	}
	r.UpdatedAt = now
	return r.clone(), nil
}

// Rescore recomputes the time factor of every open report as of now and
// returns how many totals changed. A report whose level rises gets an
// escalation event.
func (b *Board) Rescore(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	changed := 0
	for _, r := range b.reports {
		if r.Status == model.StatusResolved {
			continue
		}
		hours := now.Sub(r.CreatedAt).Hours()
		if intake.ValidateHours(hours) != nil {
			continue
		}
		prev := r.Assessment
		r.Assessment = b.engine.Rescore(prev, hours)
		if r.Assessment.Total == prev.Total {
			continue
		}
		changed++
		r.UpdatedAt = now
		if r.Assessment.Level > prev.Level {
			r.Timeline = append(r.Timeline, Event{
				Event: "Severity escalated to " + strings.ToUpper(r.Assessment.Level.String()),
				Time:  now,
			})
		}
	}
	return changed
}

// Stats counts reports by workflow state as of the board's clock.
func (b *Board) Stats() Stats {
	now := b.now()

	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Stats{Total: len(b.reports), ByLevel: make(map[string]int, len(model.Levels))}
	for _, l := range model.Levels {
		s.ByLevel[l.String()] = 0
	}
	for _, r := range b.reports {
		s.ByLevel[r.Assessment.Level.String()]++
		if r.Status == model.StatusResolved {
			s.Resolved++
			continue
		}
		s.Active++
		if r.Overdue(now) {
			s.Overdue++
		}
	}
	return s
}

// Len returns the number of reports on the board.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.reports)
}
