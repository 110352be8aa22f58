// Package cli implements the civtriage command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sprite-ai/civtriage/internal/config"
	"github.com/sprite-ai/civtriage/internal/triage"
)

var rootCmd = &cobra.Command{
	Use:   "civtriage",
	Short: "Classify and prioritize citizen incident reports",
	Long: `civtriage sorts free-text civic complaints into a service category and
scores their urgency from 0 to 100, so the worst problems get fixed first.

Settings come from CIVTRIAGE_* environment variables or a .env file;
flags override them.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("estimator", "", "damage/exposure estimator: hash, random, fixed")
	rootCmd.PersistentFlags().Uint64("seed", 0, "seed for the hash estimator")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	rootCmd.AddCommand(classifyCmd, scoreCmd, assessCmd, triageCmd, serveCmd, boardCmd, versionCmd)
}

// loadConfig reads the environment, then applies any flags set on cmd.
// Flags a command does not define are never Changed.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("estimator") {
		cfg.Estimator, _ = flags.GetString("estimator")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("addr") {
		cfg.Addr, _ = flags.GetString("addr")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("delay") {
		cfg.AnalysisDelay, _ = flags.GetDuration("delay")
	}
	if flags.Changed("demo") {
		cfg.Demo, _ = flags.GetBool("demo")
	}
	if flags.Changed("rescore") {
		cfg.RescoreSchedule, _ = flags.GetString("rescore")
	}
	return cfg, nil
}

func newEngine(cmd *cobra.Command) (*triage.Engine, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, err
	}
	e, err := cfg.Engine()
	if err != nil {
		return nil, cfg, err
	}
	return e, cfg, nil
}

// readText joins the arguments into one description. A single "-" or no
// arguments reads standard input instead. The text is passed on unmodified.
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

// colorEnabled reports whether output to w should carry ANSI colors.
func colorEnabled(cmd *cobra.Command, w io.Writer) bool {
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
