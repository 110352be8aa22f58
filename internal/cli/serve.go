package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sprite-ai/civtriage/internal/api"
	"github.com/sprite-ai/civtriage/internal/board"
	"github.com/sprite-ai/civtriage/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the triage engine and the report board.

Endpoints:
  GET  /health                   — Health check
  POST /api/classify             — Classify a description
  POST /api/score                — Score a categorized report
  POST /api/assess               — Classify and score in one step
  GET  /api/reports              — List reports (?status=, ?severity=)
  POST /api/reports              — Submit a report
  GET  /api/reports/{id}         — Fetch one report
  POST /api/reports/{id}/status  — Update status / assignment
  GET  /api/stats                — Board statistics
  GET  /api/ws                   — WebSocket for live triage sessions`,
	RunE: runServe,
}

func init() {
	d := config.Defaults()
	serveCmd.Flags().StringP("addr", "a", d.Addr, "address to listen on")
	serveCmd.Flags().IntP("port", "p", d.Port, "port to listen on")
	serveCmd.Flags().Duration("delay", d.AnalysisDelay, "simulated analysis delay per submission")
	serveCmd.Flags().Bool("demo", d.Demo, "seed the board with sample reports")
	serveCmd.Flags().String("rescore", d.RescoreSchedule, `cron spec for re-scoring open reports ("" disables)`)
}

func runServe(cmd *cobra.Command, args []string) error {
	e, cfg, err := newEngine(cmd)
	if err != nil {
		return err
	}

	b := board.New(e)
	if cfg.Demo {
		if _, err := board.Seed(b); err != nil {
			return fmt.Errorf("seeding board: %w", err)
		}
	}
	if cfg.RescoreSchedule != "" {
		c, err := b.Schedule(cfg.RescoreSchedule)
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	srv := api.New(cfg.ListenAddr(), e, api.WithBoard(b), api.WithAnalysisDelay(cfg.AnalysisDelay))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Printf("shutting down")
	return srv.Shutdown(shutdownCtx)
}
