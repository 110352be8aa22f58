package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/civtriage/internal/board"
	"github.com/sprite-ai/civtriage/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive reporting console",
	Long: `Open a terminal console for filing reports and working the board.

Citizens file a report and see its category, severity, and expected
resolution. The authority dashboard lists every report by priority with
filters for status and severity.`,
	RunE: runBoard,
}

func init() {
	boardCmd.Flags().Bool("demo", true, "start with sample reports")
	boardCmd.Flags().Duration("delay", 2*time.Second, "simulated analysis delay per submission")
}

func runBoard(cmd *cobra.Command, args []string) error {
	e, cfg, err := newEngine(cmd)
	if err != nil {
		return err
	}

	demo, _ := cmd.Flags().GetBool("demo")
	// CIVTRIAGE_ANALYSIS_DELAY applies only when set and --delay is not.
	delay, _ := cmd.Flags().GetDuration("delay")
	if !cmd.Flags().Changed("delay") && cfg.AnalysisDelay > 0 {
		delay = cfg.AnalysisDelay
	}

	b := board.New(e)
	if demo {
		if _, err := board.Seed(b); err != nil {
			return fmt.Errorf("seeding board: %w", err)
		}
	}
	return tui.Run(b, delay)
}
