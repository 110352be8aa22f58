// Package render formats triage results for terminals: syntax-colored JSON,
// severity badges, and score bars.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/civtriage/internal/model"
)

const styleName = "dracula"

// Line is one line of highlighted output.
type Line struct {
	Tokens []Token
}

// Token is a highlighted chunk of text.
type Token struct {
	Text  string
	Color string // hex color, empty for default
}

// Plain returns the concatenated plain text of all tokens.
func (l Line) Plain() string {
	var b strings.Builder
	for _, t := range l.Tokens {
		b.WriteString(t.Text)
	}
	return b.String()
}

// Styled renders the line with lipgloss foreground colors.
func (l Line) Styled() string {
	var b strings.Builder
	for _, t := range l.Tokens {
		if t.Color == "" {
			b.WriteString(t.Text)
			continue
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color)).Render(t.Text))
	}
	return b.String()
}

// Highlight splits source into lines of tokens using the named lexer
// ("json", "markdown", ...). Unknown lexers yield plain lines.
func Highlight(lexerName, source string) []Line {
	lines := strings.Split(source, "\n")

	lexer := lexers.Get(lexerName)
	if lexer == nil {
		return plainLines(lines)
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return plainLines(lines)
	}

	style := chromaStyle()
	result := make([]Line, 0, len(lines))
	current := Line{}

	for _, token := range iterator.Tokens() {
		// Split tokens that span multiple lines
		parts := strings.Split(token.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				result = append(result, current)
				current = Line{}
			}
			if part != "" {
				current.Tokens = append(current.Tokens, Token{
					Text:  part,
					Color: tokenColor(style, token.Type),
				})
			}
		}
	}
	result = append(result, current)

	// lexers may drop a trailing newline
	for len(result) < len(lines) {
		result = append(result, Line{})
	}
	return result[:len(lines)]
}

// JSON writes v as indented JSON. With color set the output carries ANSI
// escapes for a 256-color terminal.
func JSON(w io.Writer, v any, color bool) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	if !color {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	lexer := lexers.Get("json")
	iterator, err := lexer.Tokenise(nil, string(data))
	if err != nil {
		return fmt.Errorf("highlighting json: %w", err)
	}
	if err := formatters.TTY256.Format(w, chromaStyle(), iterator); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// Badge renders a level as a colored label such as " CRITICAL ".
func Badge(level model.SeverityLevel) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ffffff")).
		Background(lipgloss.Color(level.Color())).
		Bold(true).
		Padding(0, 1).
		Render(strings.ToUpper(level.String()))
}

// Bar renders a 0-100 score as a bar of the given width, colored by the
// level the score falls in.
func Bar(score, width int) string {
	score = max(0, min(100, score))
	filled := score * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(model.LevelFor(score).Color())).
		Render(bar)
}

func plainLines(lines []string) []Line {
	result := make([]Line, len(lines))
	for i, line := range lines {
		result[i] = Line{Tokens: []Token{{Text: line}}}
	}
	return result
}

func chromaStyle() *chroma.Style {
	if style := styles.Get(styleName); style != nil {
		return style
	}
	return styles.Fallback
}

func tokenColor(style *chroma.Style, tt chroma.TokenType) string {
	entry := style.Get(tt)
	if entry.Colour.IsSet() {
		return entry.Colour.String()
	}
	return ""
}
