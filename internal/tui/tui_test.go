package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sprite-ai/civtriage/internal/board"
	"github.com/sprite-ai/civtriage/internal/intake"
	"github.com/sprite-ai/civtriage/internal/model"
	"github.com/sprite-ai/civtriage/internal/triage"
)

func setupModel(t *testing.T) Model {
	t.Helper()
	e := triage.New(triage.WithEstimators(triage.FixedEstimator(0.5), triage.FixedEstimator(0.5)))
	b := board.New(e)
	if _, err := board.Seed(b); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	m := New(b, 0)
	// Simulate window size
	newM, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return newM.(Model)
}

func press(t *testing.T, m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var newM tea.Model
		newM, cmd = m.Update(msg)
		m = newM.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	send  = tea.KeyMsg{Type: tea.KeyCtrlS}
	ctrlC = tea.KeyMsg{Type: tea.KeyCtrlC}
)

func TestModelInit(t *testing.T) {
	m := setupModel(t)

	if m.screen != screenHome {
		t.Errorf("expected home screen, got %s", m.screen)
	}
	if len(m.reports) != 3 {
		t.Errorf("expected 3 reports, got %d", len(m.reports))
	}
	if !strings.Contains(m.View(), "My Complaints (3)") {
		t.Error("home view should count the complaints")
	}
}

func TestViewBeforeResize(t *testing.T) {
	m := New(board.New(triage.New()), 0)
	if got := m.View(); got != "Loading..." {
		t.Errorf("got %q, want %q", got, "Loading...")
	}
}

func TestNavigation(t *testing.T) {
	m := setupModel(t)

	m, _ = press(t, m, runes("j"))
	if m.cursor != 1 {
		t.Errorf("expected cursor 1, got %d", m.cursor)
	}

	// moving past the end stays put
	m, _ = press(t, m, runes("j"), runes("j"), runes("j"))
	if m.cursor != 2 {
		t.Errorf("expected cursor 2 at end, got %d", m.cursor)
	}

	m, _ = press(t, m, runes("k"), runes("k"), runes("k"))
	if m.cursor != 0 {
		t.Errorf("expected cursor 0 at top, got %d", m.cursor)
	}
}

func TestSubmitFlow(t *testing.T) {
	m := setupModel(t)

	m, _ = press(t, m, runes("n"))
	if m.screen != screenSubmit {
		t.Fatalf("expected submit screen, got %s", m.screen)
	}
	if got := m.form.location.Value(); got != defaultLocation {
		t.Errorf("location: got %q, want %q", got, defaultLocation)
	}

	m, _ = press(t, m, runes("Big pothole"), tab, runes("Deep pothole on the road near the school"))
	rec := m.form.record()
	if rec.Title != "Big pothole" {
		t.Errorf("title: got %q", rec.Title)
	}
	if rec.Description != "Deep pothole on the road near the school" {
		t.Errorf("description: got %q", rec.Description)
	}

	m, cmd := press(t, m, send)
	if m.screen != screenAnalyzing {
		t.Fatalf("expected analyzing screen, got %s", m.screen)
	}
	if cmd == nil {
		t.Fatal("expected analysis command")
	}
	if !strings.Contains(m.View(), "analyzing") {
		t.Error("analyzing view should say so")
	}

	msg := analyze(intake.Clean(rec), 0)()
	newM, _ := m.Update(msg)
	m = newM.(Model)
	if m.screen != screenConfirmation {
		t.Fatalf("expected confirmation screen, got %s (err %q)", m.screen, m.err)
	}
	if m.current.ID != "CR-00004" {
		t.Errorf("expected CR-00004, got %q", m.current.ID)
	}
	if m.current.Assessment.Category != model.RoadInfrastructure {
		t.Errorf("category: got %s", m.current.Assessment.Category)
	}
	view := m.View()
	if !strings.Contains(view, "Report Submitted Successfully!") || !strings.Contains(view, m.current.Assessment.Explanation) {
		t.Error("confirmation view should show the result and explanation")
	}

	m, _ = press(t, m, enter)
	if m.screen != screenDetails {
		t.Fatalf("expected details screen, got %s", m.screen)
	}
	m, _ = press(t, m, esc)
	if m.screen != screenHome {
		t.Errorf("expected home after back, got %s", m.screen)
	}
	if len(m.reports) != 4 {
		t.Errorf("expected 4 reports on home, got %d", len(m.reports))
	}
}

func TestSubmitRequiresFields(t *testing.T) {
	m := setupModel(t)

	m, _ = press(t, m, runes("n"), runes("Only a title"), send)
	if m.screen != screenSubmit {
		t.Errorf("expected to stay on submit, got %s", m.screen)
	}
	if m.err == "" {
		t.Error("expected a validation error")
	}

	m, _ = press(t, m, esc)
	if m.screen != screenHome {
		t.Errorf("expected home after cancel, got %s", m.screen)
	}
	if m.board.Len() != 3 {
		t.Errorf("cancelled form should not submit, board has %d", m.board.Len())
	}
}

func TestAnalysisIgnoredOffScreen(t *testing.T) {
	m := setupModel(t)
	newM, _ := m.Update(analysisDoneMsg{rec: intake.Record{Title: "x", Description: "y"}})
	m = newM.(Model)
	if m.screen != screenHome || m.board.Len() != 3 {
		t.Error("a stray analysis result should be ignored")
	}
}

func TestAnalyzeDelay(t *testing.T) {
	rec := intake.Record{Title: "x", Description: "y"}
	if analyze(rec, 10*time.Millisecond) == nil {
		t.Error("expected a tick command")
	}
	if _, ok := analyze(rec, 0)().(analysisDoneMsg); !ok {
		t.Error("zero delay should complete immediately")
	}
}

func TestAuthorityFilters(t *testing.T) {
	m := setupModel(t)

	m, _ = press(t, m, runes("a"))
	if m.screen != screenAuthority {
		t.Fatalf("expected authority screen, got %s", m.screen)
	}
	if !strings.Contains(m.View(), "Authority Dashboard") {
		t.Error("expected dashboard title")
	}

	m, _ = press(t, m, runes("s"))
	if statusFilters[m.statusFilter] != "submitted" || len(m.reports) != 2 {
		t.Errorf("submitted filter: got %s with %d reports", statusFilters[m.statusFilter], len(m.reports))
	}

	m, _ = press(t, m, runes("s"))
	if len(m.reports) != 1 || m.reports[0].Status != model.StatusInProgress {
		t.Errorf("in_progress filter: got %d reports", len(m.reports))
	}

	m, _ = press(t, m, runes("f"))
	if levelFilters[m.levelFilter] != "critical" || len(m.reports) != 0 {
		t.Errorf("critical filter: got %s with %d reports", levelFilters[m.levelFilter], len(m.reports))
	}

	// cycle back to all
	m, _ = press(t, m, runes("s"), runes("s"), runes("f"), runes("f"), runes("f"), runes("f"))
	if m.statusFilter != 0 || m.levelFilter != 0 || len(m.reports) != 3 {
		t.Errorf("expected all reports, got %d (filters %d/%d)", len(m.reports), m.statusFilter, m.levelFilter)
	}

	m, _ = press(t, m, esc)
	if m.screen != screenHome {
		t.Errorf("expected home, got %s", m.screen)
	}
}

func TestDetailsStatusUpdates(t *testing.T) {
	m := setupModel(t)

	m, _ = press(t, m, runes("a"), enter)
	if m.screen != screenDetails {
		t.Fatalf("expected details screen, got %s", m.screen)
	}
	if m.current.Assessment.Category != model.PublicSafety {
		t.Fatalf("expected the wire report first, got %s", m.current.Title)
	}

	m, _ = press(t, m, runes("p"))
	if m.current.Status != model.StatusInProgress {
		t.Errorf("status: got %s", m.current.Status)
	}
	if m.current.AssignedTo != "Public Safety Office" {
		t.Errorf("assigned to: got %q", m.current.AssignedTo)
	}
	if !strings.Contains(m.View(), "Assigned to Public Safety Office") {
		t.Error("timeline should show the assignment")
	}

	m, _ = press(t, m, runes("r"))
	if m.current.Status != model.StatusResolved {
		t.Errorf("status: got %s", m.current.Status)
	}

	m, _ = press(t, m, runes("r"))
	if m.err == "" {
		t.Error("resolving twice should report an error")
	}

	m, _ = press(t, m, esc)
	if m.screen != screenAuthority {
		t.Errorf("details should return to authority, got %s", m.screen)
	}
	if m.board.Stats().Resolved != 1 {
		t.Error("expected one resolved report")
	}
}

func TestTransitionTable(t *testing.T) {
	if canTransition(screenHome, screenConfirmation) {
		t.Error("home must not jump to confirmation")
	}
	if canTransition(screenAnalyzing, screenHome) {
		t.Error("analysis cannot be abandoned to home")
	}
	for from, targets := range transitions {
		for _, to := range targets {
			if from == to {
				t.Errorf("%s lists itself as a target", from)
			}
		}
	}

	m := setupModel(t)
	if m.goTo(screenConfirmation) {
		t.Error("goTo should refuse a transition missing from the table")
	}
	if m.screen != screenHome {
		t.Errorf("refused transition changed screen to %s", m.screen)
	}
}

func TestQuit(t *testing.T) {
	m := setupModel(t)

	_, cmd := press(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q on home should quit")
	}

	// q is text on the form
	m, cmd = press(t, m, runes("n"), runes("q"))
	if m.form.title.Value() != "q" {
		t.Errorf("expected q typed into title, got %q", m.form.title.Value())
	}
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("q on the form should not quit")
		}
	}

	_, cmd = press(t, m, ctrlC)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should always quit")
	}
}

func TestHelpToggle(t *testing.T) {
	m := setupModel(t)

	m, _ = press(t, m, runes("?"))
	if !m.showHelp {
		t.Fatal("expected help to be shown")
	}
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Error("expected help view")
	}

	m, _ = press(t, m, runes("?"))
	if m.showHelp {
		t.Error("expected help to be hidden")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer title", 8, "a longe…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d): got %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
