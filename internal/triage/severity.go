package triage

import (
	"math"
	"strings"

	"github.com/sprite-ai/civtriage/internal/model"
)

// Factor weights. They sum to 1.
const (
	WeightRisk     = 0.4
	WeightDamage   = 0.3
	WeightExposure = 0.2
	WeightTime     = 0.1
)

// Breakdown holds the four sub-scores behind a severity total, each rounded
// to an integer in [0, 100].
type Breakdown struct {
	RiskLevel      int `json:"risk_level"`
	DamageExtent   int `json:"damage_extent"`
	CrowdExposure  int `json:"crowd_exposure"`
	TimeUnresolved int `json:"time_unresolved"`
}

// WeightedTotal recomputes the total from the stored integers. It can differ
// from Severity.Total by one, since Total is rounded once from unrounded
// factors.
func (b Breakdown) WeightedTotal() int {
	return clampScore(WeightRisk*float64(b.RiskLevel) +
		WeightDamage*float64(b.DamageExtent) +
		WeightExposure*float64(b.CrowdExposure) +
		WeightTime*float64(b.TimeUnresolved))
}

// Severity is the scorer's result.
type Severity struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`

	// Factors keeps the unrounded inputs so a rescore moves only the time factor.
	Factors Factors `json:"-"`
}

// Factors are the unrounded time-independent factors behind a Breakdown.
type Factors struct {
	Risk     float64
	Damage   float64
	Exposure float64
}

// Level returns the band for the total.
func (s Severity) Level() model.SeverityLevel {
	return model.LevelFor(s.Total)
}

var hazardKeywords = []string{"broken", "exposed", "leaking", "dangerous", "sharp", "fall"}

const hazardBoost = 5

// Factor bands for the estimated factors: base + fraction*span.
const (
	damageBase   = 40
	damageSpan   = 30
	exposureBase = 50
	exposureSpan = 40
)

// Scorer computes severity from a category, description, and elapsed time.
// The zero value is not usable; construct with NewScorer.
type Scorer struct {
	damage   Estimator
	exposure Estimator
}

// NewScorer returns a scorer drawing damage_extent and crowd_exposure from the
// given estimators.
func NewScorer(damage, exposure Estimator) *Scorer {
	return &Scorer{damage: damage, exposure: exposure}
}

// Score computes the severity of a report. hoursElapsed must be finite and
// non-negative; validating it is the caller's job.
func (s *Scorer) Score(category model.Category, description string, hoursElapsed float64) Severity {
	return combine(Factors{
		Risk:     RiskLevel(category, description),
		Damage:   band(damageBase, damageSpan, s.damage.Estimate(category, description)),
		Exposure: band(exposureBase, exposureSpan, s.exposure.Estimate(category, description)),
	}, hoursElapsed)
}

// Rescore recomputes prev for a new elapsed time, keeping its risk, damage,
// and exposure factors.
func (s *Scorer) Rescore(prev Severity, hoursElapsed float64) Severity {
	return combine(prev.Factors, hoursElapsed)
}

func combine(f Factors, hoursElapsed float64) Severity {
	elapsed := TimeUnresolved(hoursElapsed)
	total := WeightRisk*f.Risk + WeightDamage*f.Damage + WeightExposure*f.Exposure + WeightTime*elapsed

	return Severity{
		Total: clampScore(total),
		Breakdown: Breakdown{
			RiskLevel:      clampScore(f.Risk),
			DamageExtent:   clampScore(f.Damage),
			CrowdExposure:  clampScore(f.Exposure),
			TimeUnresolved: clampScore(elapsed),
		},
		Factors: f,
	}
}

// Hazards returns the hazard keywords present in the description.
func Hazards(description string) []string {
	return matchKeywords(strings.ToLower(description), hazardKeywords)
}

// RiskLevel is the category's base weight plus 5 per distinct hazard keyword,
// capped at 100.
func RiskLevel(category model.Category, description string) float64 {
	boost := hazardBoost * len(Hazards(description))
	return math.Min(100, float64(category.BaseRisk()+boost))
}

// Time curve knots (hours, score). Between knots the score is interpolated
// linearly; past the last knot it grows by tailSlope per hour up to 100.
var timeKnots = []struct{ hours, score float64 }{
	{0, 0},
	{6, 30},
	{24, 60},
	{72, 80},
}

const tailSlope = 0.1

// TimeUnresolved scores how long a report has been open. It is
// non-decreasing in hoursElapsed and saturates at 100.
func TimeUnresolved(hoursElapsed float64) float64 {
	if hoursElapsed <= 0 {
		return 0
	}
	for i := 1; i < len(timeKnots); i++ {
		lo, hi := timeKnots[i-1], timeKnots[i]
		if hoursElapsed < hi.hours {
			slope := (hi.score - lo.score) / (hi.hours - lo.hours)
			return lo.score + slope*(hoursElapsed-lo.hours)
		}
	}
	last := timeKnots[len(timeKnots)-1]
	return math.Min(100, last.score+tailSlope*(hoursElapsed-last.hours))
}

func band(base, span, fraction float64) float64 {
	fraction = math.Max(0, math.Min(1, fraction))
	return math.Min(100, base+fraction*span)
}

func clampScore(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
