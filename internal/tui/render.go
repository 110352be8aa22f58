package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/civtriage/internal/board"
	"github.com/sprite-ai/civtriage/internal/render"
)

const barWidth = 20

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	var body string
	switch m.screen {
	case screenHome:
		body = m.renderHome()
	case screenSubmit:
		body = m.renderSubmit()
	case screenAnalyzing:
		body = m.renderAnalyzing()
	case screenConfirmation:
		body = m.renderConfirmation()
	case screenDetails:
		body = m.renderDetails()
	case screenAuthority:
		body = m.renderAuthority()
	}
	if m.err != "" {
		body += "\n" + errorStyle.Render(m.err)
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

func (m Model) renderHome() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Civic Reporter"))
	b.WriteByte('\n')
	b.WriteString(labelStyle.Render(fmt.Sprintf("My Complaints (%d)", len(m.reports))))
	b.WriteString("\n\n")
	if len(m.reports) == 0 {
		b.WriteString(helpBarStyle.Render("No complaints yet. Press n to report an issue."))
	} else {
		b.WriteString(m.renderReportList())
	}
	return b.String()
}

func (m Model) renderReportList() string {
	now := m.board.Now()
	lines := make([]string, 0, len(m.reports))
	for i, r := range m.reports {
		line := fmt.Sprintf("%s  %-28s %3d  %-11s %s",
			r.ID,
			truncate(r.Title, 28),
			r.Assessment.Total,
			r.Status.Title(),
			r.Assessment.Category.Label(),
		)
		style := itemStyle
		if i == m.cursor {
			style = itemSelectedStyle
		}
		row := render.Badge(r.Assessment.Level) + " " + style.Render(line)
		if r.Overdue(now) {
			row += " " + overdueStyle.Render("OVERDUE")
		}
		lines = append(lines, row)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSubmit() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Report New Issue"))
	b.WriteByte('\n')
	b.WriteString(m.form.view())
	b.WriteString(helpBarStyle.Render("tab next field • ctrl+s submit • esc cancel"))
	return b.String()
}

func (m Model) renderAnalyzing() string {
	return panelStyle.Render(fmt.Sprintf("%s AI is analyzing your report...\n\n%s",
		m.spinner.View(),
		helpBarStyle.Render("Classifying the issue and assessing severity"),
	))
}

func (m Model) renderConfirmation() string {
	r := m.current
	a := r.Assessment

	var b strings.Builder
	b.WriteString(successStyle.Render("Report Submitted Successfully!"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Complaint ID: %s\n\n", r.ID))

	b.WriteString(labelStyle.Render("AI Analysis Results"))
	b.WriteString("\n")
	b.WriteString(field("Category", fmt.Sprintf("%s (%.0f%% confidence)", a.Category.Label(), a.Confidence*100)))
	b.WriteString(field("Severity", render.Badge(a.Level)+fmt.Sprintf(" %d/100", a.Total)))
	b.WriteString(renderBreakdown(r))
	b.WriteString("\n")
	b.WriteString(explanationStyle.Render(a.Explanation))
	b.WriteString("\n\n")
	b.WriteString(field("Expected", a.ExpectedResolution))
	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("enter track complaint • esc back to home"))
	return b.String()
}

func (m Model) renderDetails() string {
	r := m.current
	a := r.Assessment

	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Title))
	b.WriteByte('\n')
	b.WriteString(field("ID", r.ID))
	b.WriteString(field("Status", r.Status.Title()))
	b.WriteString(field("Category", a.Category.Label()))
	b.WriteString(field("Severity", render.Badge(a.Level)+fmt.Sprintf(" %d/100", a.Total)))
	if r.Location != "" {
		b.WriteString(field("Location", r.Location))
	}
	if r.AssignedTo != "" {
		b.WriteString(field("Assigned To", r.AssignedTo))
	}
	b.WriteString(field("Submitted", r.CreatedAt.Format("Jan 2, 15:04")))
	b.WriteString("\n")
	b.WriteString(r.Description)
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Severity Breakdown"))
	b.WriteByte('\n')
	b.WriteString(renderBreakdown(r))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Timeline"))
	b.WriteByte('\n')
	b.WriteString(renderTimeline(r.Timeline))
	b.WriteString("\n\n")
	b.WriteString(helpBarStyle.Render("p start work • r resolve • esc back"))
	return b.String()
}

func (m Model) renderAuthority() string {
	s := m.board.Stats()

	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		statBox("Total", s.Total),
		statBox("Active", s.Active),
		statBox("Overdue", s.Overdue),
		statBox("Resolved", s.Resolved),
	)

	var b strings.Builder
	b.WriteString(titleStyle.Render("Authority Dashboard"))
	b.WriteByte('\n')
	b.WriteString(stats)
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s   %s %s\n\n",
		labelStyle.Render("Status:"), statusFilters[m.statusFilter],
		labelStyle.Render("Severity:"), levelFilters[m.levelFilter],
	))
	if len(m.reports) == 0 {
		b.WriteString(helpBarStyle.Render("No reports match the filters."))
	} else {
		b.WriteString(m.renderReportList())
	}
	b.WriteString("\n\n")
	b.WriteString(helpBarStyle.Render("s status • f severity • enter open • esc citizen view"))
	return b.String()
}

func (m Model) renderStatusBar() string {
	s := m.board.Stats()
	left := fmt.Sprintf(" %s", m.screen)
	right := fmt.Sprintf("%d reports  %d active  %d overdue  ? help ", s.Total, s.Active, s.Overdue)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("civtriage — Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, k := range []struct{ key, desc string }{
		{"↑/k ↓/j", "Move selection"},
		{"enter", "Open report"},
		{"n", "Report new issue"},
		{"a", "Authority dashboard"},
		{"s / f", "Cycle status / severity filter"},
		{"tab", "Next form field"},
		{"ctrl+s", "Submit report"},
		{"p / r", "Start work / resolve"},
		{"esc", "Back"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	} {
		b.WriteString(fmt.Sprintf("  %s  %s\n", helpKeyStyle.Width(12).Render(k.key), k.desc))
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))
	return b.String()
}

func renderBreakdown(r board.Report) string {
	bd := r.Assessment.Breakdown
	rows := []struct {
		name  string
		score int
	}{
		{"Risk Level", bd.RiskLevel},
		{"Damage Extent", bd.DamageExtent},
		{"Crowd Exposure", bd.CrowdExposure},
		{"Time Unresolved", bd.TimeUnresolved},
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %-16s %s %3d\n", row.name, render.Bar(row.score, barWidth), row.score))
	}
	return b.String()
}

func renderTimeline(events []board.Event) string {
	lines := make([]string, 0, len(events))
	for _, e := range events {
		line := timelineDotStyle.Render("●") + " " + e.Event + "  " + timelineTimeStyle.Render(e.Time.Format("Jan 2, 15:04"))
		if e.Comment != "" {
			line += "\n    " + explanationStyle.Render(e.Comment)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func field(name, value string) string {
	return fieldStyle.Render(name) + value + "\n"
}

func statBox(name string, n int) string {
	return statStyle.Render(statValueStyle.Render(fmt.Sprint(n)) + "\n" + helpBarStyle.Render(name))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
