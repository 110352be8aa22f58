// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/sprite-ai/civtriage/internal/triage"
)

// ErrInvalid is returned for malformed settings.
var ErrInvalid = errors.New("invalid configuration")

// Config holds server and engine settings.
type Config struct {
	Addr string
	Port int

	Estimator string
	Seed      uint64

	AnalysisDelay   time.Duration
	RescoreSchedule string // cron spec; empty disables rescoring
	Demo            bool
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	return Config{
		Addr:            "127.0.0.1",
		Port:            6142,
		Estimator:       triage.EstimatorHash,
		RescoreSchedule: "@every 15m",
	}
}

// Load reads settings from CIVTRIAGE_* variables, loading .env first if
// present. Variables already set in the environment win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from a lookup function such as os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Defaults()

	if v, ok := lookup("CIVTRIAGE_ADDR"); ok && v != "" {
		cfg.Addr = v
	}
	if v, ok := lookup("CIVTRIAGE_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("%w: CIVTRIAGE_PORT=%q", ErrInvalid, v)
		}
		cfg.Port = port
	}
	if v, ok := lookup("CIVTRIAGE_ESTIMATOR"); ok && v != "" {
		switch v {
		case triage.EstimatorHash, triage.EstimatorRandom, triage.EstimatorFixed:
			cfg.Estimator = v
		default:
			return Config{}, fmt.Errorf("%w: CIVTRIAGE_ESTIMATOR=%q", ErrInvalid, v)
		}
	}
	if v, ok := lookup("CIVTRIAGE_SEED"); ok && v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: CIVTRIAGE_SEED=%q", ErrInvalid, v)
		}
		cfg.Seed = seed
	}
	if v, ok := lookup("CIVTRIAGE_ANALYSIS_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("%w: CIVTRIAGE_ANALYSIS_DELAY=%q", ErrInvalid, v)
		}
		cfg.AnalysisDelay = d
	}
	if v, ok := lookup("CIVTRIAGE_RESCORE_SCHEDULE"); ok {
		cfg.RescoreSchedule = v
	}
	if v, ok := lookup("CIVTRIAGE_DEMO"); ok && v != "" {
		demo, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: CIVTRIAGE_DEMO=%q", ErrInvalid, v)
		}
		cfg.Demo = demo
	}

	return cfg, nil
}

// ListenAddr returns addr:port for net.Listen.
func (c Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Addr, c.Port)
}

// Engine builds a triage engine from the estimator settings.
func (c Config) Engine() (*triage.Engine, error) {
	damage, exposure, err := triage.NewEstimators(c.Estimator, c.Seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return triage.New(triage.WithEstimators(damage, exposure)), nil
}
