package triage

import (
	"fmt"
	"strings"
	"time"

	"github.com/sprite-ai/civtriage/internal/model"
)

// Assessment is the full triage verdict for one report.
type Assessment struct {
	Classification
	Severity
	Level              model.SeverityLevel `json:"level"`
	Hazards            []string            `json:"hazards"`
	ResolutionTarget   time.Duration       `json:"-"`
	ExpectedResolution string              `json:"expected_resolution"`
	Explanation        string              `json:"explanation"`
}

// Engine runs classification and scoring in sequence.
type Engine struct {
	scorer *Scorer
}

// Option configures an Engine.
type Option func(*Engine)

// WithEstimators replaces the damage and exposure estimators.
func WithEstimators(damage, exposure Estimator) Option {
	return func(e *Engine) {
		e.scorer = NewScorer(damage, exposure)
	}
}

// New returns an engine using seed-0 hash estimators unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{scorer: NewScorer(HashEstimator{Seed: 0}, HashEstimator{Seed: 1})}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Classify assigns a category to the description.
func (e *Engine) Classify(description string) Classification {
	return Classify(description)
}

// Score computes the severity for an already-classified report.
func (e *Engine) Score(category model.Category, description string, hoursElapsed float64) Severity {
	return e.scorer.Score(category, description, hoursElapsed)
}

// Assess classifies the description, scores it, and explains the result.
func (e *Engine) Assess(description string, hoursElapsed float64) Assessment {
	c := e.Classify(description)
	s := e.Score(c.Category, description, hoursElapsed)
	return NewAssessment(c, s, Hazards(description))
}

// NewAssessment assembles an Assessment from its parts, deriving the level,
// resolution window, and explanation.
func NewAssessment(c Classification, s Severity, hazards []string) Assessment {
	level := s.Level()
	return Assessment{
		Classification:     c,
		Severity:           s,
		Level:              level,
		Hazards:            hazards,
		ResolutionTarget:   level.ResolutionTarget(),
		ExpectedResolution: level.ExpectedResolution(),
		Explanation:        Explain(c.Category, s),
	}
}

// Rescore recomputes an existing assessment for a new elapsed time. Only
// time_unresolved changes; the category and the other factors are kept.
func (e *Engine) Rescore(a Assessment, hoursElapsed float64) Assessment {
	s := e.scorer.Rescore(a.Severity, hoursElapsed)
	return NewAssessment(a.Classification, s, a.Hazards)
}

// Explain renders the one-sentence rationale shown to citizens.
func Explain(category model.Category, s Severity) string {
	return fmt.Sprintf("This %s issue received a %s severity score (%d/100) based on risk level (%d/100), damage extent (%d/100), and crowd exposure (%d/100).",
		strings.ToLower(category.Label()),
		strings.ToUpper(s.Level().String()),
		s.Total,
		s.Breakdown.RiskLevel,
		s.Breakdown.DamageExtent,
		s.Breakdown.CrowdExposure,
	)
}
