package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/civtriage/internal/intake"
	"github.com/sprite-ai/civtriage/internal/render"
	"github.com/sprite-ai/civtriage/internal/triage"
)

var assessCmd = &cobra.Command{
	Use:   "assess [text...]",
	Short: "Classify and score a report in one step",
	Long: `Run the full triage on a description: category, severity, resolution
window, and a one-line explanation.

Example:
  civtriage assess -H 12 "Water leaking from a burst pipe onto the sidewalk"`,
	RunE: runAssess,
}

func init() {
	assessCmd.Flags().Float64P("hours", "H", 0, "hours the issue has been unresolved")
	assessCmd.Flags().StringP("format", "f", "text", "output format: text, json")
}

type assessOutput struct {
	triage.Assessment
	Label           string  `json:"label"`
	Color           string  `json:"color"`
	ResolutionHours float64 `json:"resolution_hours"`
}

func newAssessOutput(a triage.Assessment) assessOutput {
	if a.Matched == nil {
		a.Matched = []string{}
	}
	if a.Hazards == nil {
		a.Hazards = []string{}
	}
	return assessOutput{
		Assessment:      a,
		Label:           a.Category.Label(),
		Color:           a.Level.Color(),
		ResolutionHours: a.ResolutionTarget.Hours(),
	}
}

func runAssess(cmd *cobra.Command, args []string) error {
	hours, _ := cmd.Flags().GetFloat64("hours")
	if err := intake.ValidateHours(hours); err != nil {
		return err
	}
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}
	e, _, err := newEngine(cmd)
	if err != nil {
		return err
	}

	a := e.Assess(text, hours)
	out := cmd.OutOrStdout()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		return render.JSON(out, newAssessOutput(a), colorEnabled(cmd, out))
	case "text":
		printAssessment(cmd, a)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printAssessment(cmd *cobra.Command, a triage.Assessment) {
	out := cmd.OutOrStdout()
	printClassification(cmd, a.Classification)
	fmt.Fprintf(out, "Severity:   %d/100 %s\n", a.Total, levelLabel(cmd, a.Level))
	fmt.Fprintf(out, "Resolve in: %s\n\n", a.ExpectedResolution)
	printBreakdown(cmd, a.Breakdown)
	fmt.Fprintf(out, "\n%s\n", a.Explanation)
}
