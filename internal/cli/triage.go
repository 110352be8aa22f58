package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/civtriage/internal/board"
	"github.com/sprite-ai/civtriage/internal/intake"
	"github.com/sprite-ai/civtriage/internal/model"
	"github.com/sprite-ai/civtriage/internal/render"
)

var triageCmd = &cobra.Command{
	Use:   "triage <file>",
	Short: "Triage a batch of reports and print them by priority (non-interactive)",
	Long: `Read reports from a JSON array or JSONL file, assess every one, and
print them most urgent first. Useful for scripts and scheduled jobs.

Each report needs a title and a description; location, created_at
(RFC 3339) and hours_elapsed are optional.

Exit codes:
  0 — nothing above medium severity
  1 — at least one high severity report
  2 — at least one critical report`,
	Args: cobra.ExactArgs(1),
	RunE: runTriage,
}

func init() {
	triageCmd.Flags().StringP("format", "f", "text", "output format: text, json, markdown")
	triageCmd.Flags().String("at", "", "evaluate ages as of this RFC 3339 time instead of now")
}

type triageOutput struct {
	Stats   board.Stats    `json:"stats"`
	Skipped int            `json:"skipped"`
	Reports []reportOutput `json:"reports"`
}

type reportOutput struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Location   string       `json:"location,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	Overdue    bool         `json:"overdue"`
	Assessment assessOutput `json:"assessment"`
}

func runTriage(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	if format != "text" && format != "json" && format != "markdown" {
		return fmt.Errorf("unknown format %q", format)
	}

	now := time.Now()
	if at, _ := cmd.Flags().GetString("at"); at != "" {
		t, err := intake.ParseTimestamp(at)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		now = t
	}

	recs, err := intake.LoadFile(args[0])
	if err != nil {
		return err
	}
	e, _, err := newEngine(cmd)
	if err != nil {
		return err
	}

	b := board.New(e, board.WithClock(func() time.Time { return now }))
	skipped := submitAll(b, recs, cmd.ErrOrStderr())
	reports := b.List(board.Filter{})

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = writeTriageJSON(out, b, reports, skipped, colorEnabled(cmd, out))
	case "markdown":
		writeTriageMarkdown(out, b, reports)
	default:
		writeTriageText(cmd, b, reports)
	}
	if err != nil {
		return err
	}

	if code := triageExitCode(reports); code != 0 {
		os.Exit(code)
	}
	return nil
}

// submitAll adds every valid record to b and reports the rest on w.
func submitAll(b *board.Board, recs []intake.Record, w io.Writer) int {
	skipped := 0
	for i, rec := range recs {
		if _, err := b.Submit(rec); err != nil {
			fmt.Fprintf(w, "skipping report %d: %v\n", i+1, err)
			skipped++
		}
	}
	return skipped
}

func triageExitCode(reports []board.Report) int {
	code := 0
	for _, r := range reports {
		switch r.Assessment.Level {
		case model.SeverityCritical:
			return 2
		case model.SeverityHigh:
			code = 1
		}
	}
	return code
}

func writeTriageJSON(w io.Writer, b *board.Board, reports []board.Report, skipped int, color bool) error {
	out := triageOutput{
		Stats:   b.Stats(),
		Skipped: skipped,
		Reports: make([]reportOutput, 0, len(reports)),
	}
	now := b.Now()
	for _, r := range reports {
		out.Reports = append(out.Reports, reportOutput{
			ID:         r.ID,
			Title:      r.Title,
			Location:   r.Location,
			CreatedAt:  r.CreatedAt,
			Overdue:    r.Overdue(now),
			Assessment: newAssessOutput(r.Assessment),
		})
	}
	return render.JSON(w, out, color)
}

func writeTriageText(cmd *cobra.Command, b *board.Board, reports []board.Report) {
	out := cmd.OutOrStdout()
	st := b.Stats()
	fmt.Fprintf(out, "%d report(s): %d critical, %d high, %d medium, %d low\n\n",
		st.Total, st.ByLevel["critical"], st.ByLevel["high"], st.ByLevel["medium"], st.ByLevel["low"])

	if len(reports) == 0 {
		fmt.Fprintln(out, "No reports to triage.")
		return
	}

	now := b.Now()
	for _, r := range reports {
		a := r.Assessment
		flag := ""
		if r.Overdue(now) {
			flag = " OVERDUE"
		}
		fmt.Fprintf(out, "  %s %s %3d  %s%s\n", r.ID, levelLabel(cmd, a.Level), a.Total, r.Title, flag)
		fmt.Fprintf(out, "      %s · resolve in %s\n", a.Category.Label(), a.ExpectedResolution)
		if r.Location != "" {
			fmt.Fprintf(out, "      %s\n", r.Location)
		}
	}
}

func writeTriageMarkdown(w io.Writer, b *board.Board, reports []board.Report) {
	st := b.Stats()
	fmt.Fprintf(w, "## Triage Report\n\n")
	fmt.Fprintf(w, "**%d report(s)** | **Critical:** %d | **High:** %d | **Overdue:** %d\n\n",
		st.Total, st.ByLevel["critical"], st.ByLevel["high"], st.Overdue)

	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports to triage.")
		return
	}

	fmt.Fprintln(w, "| ID | Severity | Score | Category | Title | Resolve in |")
	fmt.Fprintln(w, "|----|----------|-------|----------|-------|------------|")
	for _, r := range reports {
		a := r.Assessment
		fmt.Fprintf(w, "| %s | %s | %d | %s | %s | %s |\n",
			r.ID, a.Level, a.Total, a.Category.Label(), mdEscape(r.Title), a.ExpectedResolution)
	}
}

func mdEscape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
