package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/civtriage/internal/render"
	"github.com/sprite-ai/civtriage/internal/triage"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Assign a report description to a service category",
	Long: `Classify a description by keyword matching. With no arguments, or a
single "-", the description is read from standard input.

Examples:
  civtriage classify "Large pothole on Elm Street"
  echo "bin overflowing" | civtriage classify`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringP("format", "f", "text", "output format: text, json")
}

type classifyOutput struct {
	Category   string   `json:"category"`
	Label      string   `json:"label"`
	Confidence float64  `json:"confidence"`
	Score      int      `json:"score"`
	Matched    []string `json:"matched"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}
	e, _, err := newEngine(cmd)
	if err != nil {
		return err
	}

	c := e.Classify(text)
	out := cmd.OutOrStdout()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		matched := c.Matched
		if matched == nil {
			matched = []string{}
		}
		return render.JSON(out, classifyOutput{
			Category:   c.Category.String(),
			Label:      c.Category.Label(),
			Confidence: c.Confidence,
			Score:      c.Score,
			Matched:    matched,
		}, colorEnabled(cmd, out))
	case "text":
		printClassification(cmd, c)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func printClassification(cmd *cobra.Command, c triage.Classification) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Category:   %s (%s)\n", c.Category.Label(), c.Category)
	fmt.Fprintf(out, "Confidence: %.0f%%\n", c.Confidence*100)
	if len(c.Matched) > 0 {
		fmt.Fprintf(out, "Matched:    %s\n", strings.Join(c.Matched, ", "))
	} else {
		fmt.Fprintln(out, "Matched:    none (default category)")
	}
}
