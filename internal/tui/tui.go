// Package tui implements the Bubble Tea reporting console: citizens file
// reports and see their triage, authorities review and work the board.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sprite-ai/civtriage/internal/board"
	"github.com/sprite-ai/civtriage/internal/intake"
	"github.com/sprite-ai/civtriage/internal/model"
)

// Filter choices on the authority screen; index 0 means all.
var (
	statusFilters = append([]string{"all"}, statusNames()...)
	levelFilters  = []string{"all", "critical", "high", "medium", "low"}
)

func statusNames() []string {
	names := make([]string, len(model.Statuses))
	for i, s := range model.Statuses {
		names[i] = s.String()
	}
	return names
}

// departments receive reports when work starts on them.
var departments = map[model.Category]string{
	model.RoadInfrastructure:    "Road Maintenance Dept.",
	model.WasteSanitation:       "Sanitation Dept.",
	model.WaterDrainage:         "Water & Sewer Utility",
	model.PublicSafety:          "Public Safety Office",
	model.UtilitiesStreetlights: "Electric Utility",
}

// analysisDoneMsg arrives when the simulated analysis delay has passed.
type analysisDoneMsg struct {
	rec intake.Record
}

// Model is the top-level Bubble Tea model for the console.
type Model struct {
	board *board.Board
	delay time.Duration

	screen screen
	back   screen // where details returns to

	width  int
	height int

	form    reportForm
	spinner spinner.Model

	// Report list for home and authority
	reports []board.Report
	cursor  int

	statusFilter int
	levelFilter  int

	// Report shown on confirmation and details
	current board.Report

	err      string
	showHelp bool
}

// New creates a console over b. Submissions wait delay before they are
// assessed.
func New(b *board.Board, delay time.Duration) Model {
	m := Model{
		board:   b,
		delay:   delay,
		screen:  screenHome,
		form:    newReportForm(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// goTo moves to s if the transition table allows it.
func (m *Model) goTo(s screen) bool {
	if !canTransition(m.screen, s) {
		return false
	}
	if s == screenDetails && m.screen != screenDetails {
		m.back = screenHome
		if m.screen == screenAuthority {
			m.back = screenAuthority
		}
	}
	m.screen = s
	m.err = ""
	m.refresh()
	return true
}

// refresh reloads the report list for the current screen.
func (m *Model) refresh() {
	var f board.Filter
	if m.screen == screenAuthority {
		if m.statusFilter > 0 {
			st, _ := model.ParseStatus(statusFilters[m.statusFilter])
			f.Status = &st
		}
		if m.levelFilter > 0 {
			l, _ := model.ParseSeverityLevel(levelFilters[m.levelFilter])
			f.Level = &l
		}
	}
	m.reports = m.board.List(f)
	if m.cursor >= len(m.reports) {
		m.cursor = max(0, len(m.reports)-1)
	}
	if m.current.ID != "" {
		if r, err := m.board.Get(m.current.ID); err == nil {
			m.current = r
		}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form.setWidth(min(max(msg.Width-8, 20), 80))
		return m, nil

	case spinner.TickMsg:
		if m.screen != screenAnalyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case analysisDoneMsg:
		return m.finishAnalysis(msg.rec), nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceQuit) {
			return m, tea.Quit
		}
		if m.showHelp {
			if key.Matches(msg, keys.Help, keys.Back) {
				m.showHelp = false
			}
			return m, nil
		}
		switch m.screen {
		case screenHome:
			return m.updateHome(msg)
		case screenSubmit:
			return m.updateSubmit(msg)
		case screenConfirmation:
			return m.updateConfirmation(msg)
		case screenDetails:
			return m.updateDetails(msg)
		case screenAuthority:
			return m.updateAuthority(msg)
		}
	}

	return m, nil
}

func (m *Model) moveCursor(msg tea.KeyMsg) bool {
	switch {
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.reports)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	default:
		return false
	}
	return true
}

func (m *Model) openSelected() {
	if len(m.reports) == 0 {
		return
	}
	m.current = m.reports[m.cursor]
	m.goTo(screenDetails)
}

func (m Model) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Report):
		m.form = newReportForm()
		m.form.setWidth(min(max(m.width-8, 20), 80))
		m.goTo(screenSubmit)
	case key.Matches(msg, keys.Authority):
		m.cursor = 0
		m.goTo(screenAuthority)
	case key.Matches(msg, keys.Open):
		m.openSelected()
	case key.Matches(msg, keys.Help):
		m.showHelp = true
	default:
		m.moveCursor(msg)
	}
	return m, nil
}

func (m Model) updateSubmit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.goTo(screenHome)
		return m, nil
	case key.Matches(msg, keys.NextField):
		return m, m.form.setFocus(m.form.focus + 1)
	case key.Matches(msg, keys.PrevField):
		return m, m.form.setFocus(m.form.focus - 1)
	case key.Matches(msg, keys.Send):
		rec := m.form.record()
		if err := intake.Validate(intake.Clean(rec)); err != nil {
			m.err = "Please fill in all required fields (" + err.Error() + ")"
			return m, nil
		}
		m.goTo(screenAnalyzing)
		return m, tea.Batch(m.spinner.Tick, analyze(rec, m.delay))
	}
	return m, m.form.update(msg)
}

// analyze waits out the analysis delay before the record is assessed.
func analyze(rec intake.Record, delay time.Duration) tea.Cmd {
	done := func(time.Time) tea.Msg { return analysisDoneMsg{rec: rec} }
	if delay <= 0 {
		return func() tea.Msg { return done(time.Time{}) }
	}
	return tea.Tick(delay, done)
}

func (m Model) finishAnalysis(rec intake.Record) Model {
	if m.screen != screenAnalyzing {
		return m
	}
	r, err := m.board.Submit(rec)
	if err != nil {
		m.goTo(screenSubmit)
		m.err = err.Error()
		return m
	}
	m.current = r
	m.goTo(screenConfirmation)
	return m
}

func (m Model) updateConfirmation(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Open):
		m.goTo(screenDetails)
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Quit):
		m.goTo(screenHome)
	}
	return m, nil
}

func (m Model) updateDetails(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.goTo(m.back)
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.InProgress):
		m.setStatus(board.Update{
			Status:     model.StatusInProgress,
			AssignedTo: departments[m.current.Assessment.Category],
		})
	case key.Matches(msg, keys.Resolve):
		m.setStatus(board.Update{Status: model.StatusResolved})
	case key.Matches(msg, keys.Help):
		m.showHelp = true
	}
	return m, nil
}

func (m *Model) setStatus(u board.Update) {
	r, err := m.board.UpdateStatus(m.current.ID, u)
	if err != nil {
		m.err = err.Error()
		return
	}
	m.current = r
	m.err = ""
	m.refresh()
}

func (m Model) updateAuthority(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Authority):
		m.cursor = 0
		m.goTo(screenHome)
	case key.Matches(msg, keys.Status):
		m.statusFilter = (m.statusFilter + 1) % len(statusFilters)
		m.cursor = 0
		m.refresh()
	case key.Matches(msg, keys.Severity):
		m.levelFilter = (m.levelFilter + 1) % len(levelFilters)
		m.cursor = 0
		m.refresh()
	case key.Matches(msg, keys.Open):
		m.openSelected()
	case key.Matches(msg, keys.Help):
		m.showHelp = true
	default:
		m.moveCursor(msg)
	}
	return m, nil
}

// Run starts the TUI application.
func Run(b *board.Board, delay time.Duration) error {
	m := New(b, delay)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
