package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sprite-ai/civtriage/internal/intake"
)

const defaultLocation = "Main St & 5th Ave, Springfield"

const (
	fieldTitle = iota
	fieldDescription
	fieldLocation
	fieldCount
)

// reportForm collects a new report: title, description, and location.
type reportForm struct {
	title       textinput.Model
	description textarea.Model
	location    textinput.Model
	focus       int
}

func newReportForm() reportForm {
	title := textinput.New()
	title.Placeholder = "Brief description of the issue"
	title.CharLimit = 120

	desc := textarea.New()
	desc.Placeholder = "Describe the issue in detail..."
	desc.ShowLineNumbers = false
	desc.SetHeight(4)

	loc := textinput.New()
	loc.SetValue(defaultLocation)
	loc.CharLimit = 200

	f := reportForm{title: title, description: desc, location: loc}
	f.setFocus(fieldTitle)
	return f
}

func (f *reportForm) setFocus(i int) tea.Cmd {
	f.focus = (i + fieldCount) % fieldCount
	f.title.Blur()
	f.description.Blur()
	f.location.Blur()
	switch f.focus {
	case fieldTitle:
		return f.title.Focus()
	case fieldDescription:
		return f.description.Focus()
	default:
		return f.location.Focus()
	}
}

func (f *reportForm) setWidth(w int) {
	f.title.Width = w
	f.description.SetWidth(w)
	f.location.Width = w
}

// update forwards a message to the focused field.
func (f *reportForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case fieldTitle:
		f.title, cmd = f.title.Update(msg)
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	default:
		f.location, cmd = f.location.Update(msg)
	}
	return cmd
}

func (f reportForm) record() intake.Record {
	return intake.Record{
		Title:       f.title.Value(),
		Description: f.description.Value(),
		Location:    f.location.Value(),
	}
}

func (f reportForm) view() string {
	var b strings.Builder
	fields := []struct {
		label string
		view  string
	}{
		{"Issue Title *", f.title.View()},
		{"Description *", f.description.View()},
		{"Location", f.location.View()},
	}
	for i, field := range fields {
		style := labelStyle
		if i == f.focus {
			style = labelFocusedStyle
		}
		b.WriteString(style.Render(field.label))
		b.WriteByte('\n')
		b.WriteString(field.view)
		b.WriteString("\n\n")
	}
	return b.String()
}
