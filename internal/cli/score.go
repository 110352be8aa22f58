package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/civtriage/internal/intake"
	"github.com/sprite-ai/civtriage/internal/model"
	"github.com/sprite-ai/civtriage/internal/render"
	"github.com/sprite-ai/civtriage/internal/triage"
)

var scoreCmd = &cobra.Command{
	Use:   "score [text...]",
	Short: "Score the severity of an already-categorized report",
	Long: `Compute the 0-100 severity of a report for a given category and age.

Categories: road_infrastructure, waste_sanitation, water_drainage,
public_safety, utilities_streetlights.

Example:
  civtriage score -c public_safety -H 6 "Exposed wire hanging low"`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringP("category", "c", "", "report category (required)")
	scoreCmd.Flags().Float64P("hours", "H", 0, "hours the issue has been unresolved")
	scoreCmd.Flags().StringP("format", "f", "text", "output format: text, json")
	scoreCmd.MarkFlagRequired("category")
}

type scoreOutput struct {
	Total     int              `json:"total"`
	Level     string           `json:"level"`
	Color     string           `json:"color"`
	Breakdown triage.Breakdown `json:"breakdown"`
}

func runScore(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("category")
	category, err := model.ParseCategory(name)
	if err != nil {
		return err
	}
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

	s := e.Score(category, text, hours)
	out := cmd.OutOrStdout()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		return render.JSON(out, scoreOutput{
			Total:     s.Total,
			Level:     s.Level().String(),
			Color:     s.Level().Color(),
			Breakdown: s.Breakdown,
		}, colorEnabled(cmd, out))
	case "text":
		fmt.Fprintf(out, "Severity: %d/100 %s\n\n", s.Total, levelLabel(cmd, s.Level()))
		printBreakdown(cmd, s.Breakdown)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printBreakdown(cmd *cobra.Command, b triage.Breakdown) {
	out := cmd.OutOrStdout()
	color := colorEnabled(cmd, out)
	for _, row := range []struct {
		name  string
		score int
	}{
		{"Risk level", b.RiskLevel},
		{"Damage extent", b.DamageExtent},
		{"Crowd exposure", b.CrowdExposure},
		{"Time unresolved", b.TimeUnresolved},
	} {
		if color {
			fmt.Fprintf(out, "  %-16s %s %3d\n", row.name, render.Bar(row.score, 20), row.score)
		} else {
			fmt.Fprintf(out, "  %-16s %3d\n", row.name, row.score)
		}
	}
}

// levelLabel renders a level as a badge on terminals and plain text elsewhere.
func levelLabel(cmd *cobra.Command, l model.SeverityLevel) string {
	if colorEnabled(cmd, cmd.OutOrStdout()) {
		return render.Badge(l)
	}
	return "[" + l.String() + "]"
}
