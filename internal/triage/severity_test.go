package triage

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprite-ai/civtriage/internal/model"
)

const wireReport = "Dangerous exposed electrical wire hanging low, risk of electrocution"

func fixedScorer(damage, exposure float64) *Scorer {
	return NewScorer(FixedEstimator(damage), FixedEstimator(exposure))
}

func TestScorePublicSafetyScenario(t *testing.T) {
	// 0.4*90 + 0.1*30 = 39, plus 0.3*(40+30f) + 0.2*(50+40f)
	tests := []struct {
		fraction float64
		want     int
	}{
		{0, 61},
		{0.1, 63},
		{0.25, 65},
		{0.75, 74},
		{1, 78},
	}
	for _, tt := range tests {
		s := fixedScorer(tt.fraction, tt.fraction).Score(model.PublicSafety, wireReport, 6)

		assert.Equal(t, 90, s.Breakdown.RiskLevel)
		assert.Equal(t, 30, s.Breakdown.TimeUnresolved)
		assert.Equal(t, tt.want, s.Total, "fraction %v", tt.fraction)
		assert.Equal(t, model.LevelFor(s.Total), s.Level())
		// the estimated factors cap the total at 78, so this report is never critical
		assert.Equal(t, model.SeverityHigh, s.Level(), "fraction %v", tt.fraction)
	}
}

func TestScoreFixedBreakdown(t *testing.T) {
	s := fixedScorer(0.2, 0.5).Score(model.RoadInfrastructure, "Broken pavement with a sharp edge", 0)

	// 60 base + broken + sharp
	assert.Equal(t, Breakdown{RiskLevel: 70, DamageExtent: 46, CrowdExposure: 70, TimeUnresolved: 0}, s.Breakdown)
	// 0.4*70 + 0.3*46 + 0.2*70 = 28 + 13.8 + 14 = 55.8
	assert.Equal(t, 56, s.Total)
	assert.Equal(t, model.SeverityMedium, s.Level())
}

func TestRiskLevelHazards(t *testing.T) {
	assert.Equal(t, 30.0, RiskLevel(model.WasteSanitation, "overflowing bin"))
	assert.Equal(t, 35.0, RiskLevel(model.WasteSanitation, "BROKEN bin"))
	assert.Equal(t, 35.0, RiskLevel(model.WasteSanitation, "broken broken broken"))
	assert.Equal(t, 100.0, RiskLevel(model.PublicSafety, "broken exposed leaking dangerous sharp fall"))
	assert.Equal(t, 50.0, RiskLevel(model.Category(42), ""))
}

func TestHazards(t *testing.T) {
	assert.Equal(t, []string{"exposed", "dangerous"}, Hazards(wireReport))
	assert.Empty(t, Hazards("quiet street"))
}

func TestTimeUnresolvedKnots(t *testing.T) {
	tests := []struct {
		hours float64
		want  float64
	}{
		{0, 0},
		{1, 5},
		{6, 30},
		{12, 40},
		{24, 60},
		{48, 70},
		{72, 80},
		{82, 81},
		{272, 100},
		{10000, 100},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, TimeUnresolved(tt.hours), 1e-9, "hours %v", tt.hours)
	}
}

func TestTimeUnresolvedMatchesReferenceSlopes(t *testing.T) {
	reference := func(h float64) float64 {
		switch {
		case h < 6:
			return h * 5
		case h < 24:
			return 30 + (h-6)*1.67
		case h < 72:
			return 60 + (h-24)*0.42
		default:
			return math.Min(100, 80+(h-72)*0.1)
		}
	}
	for h := 0.0; h <= 200; h += 0.5 {
		assert.InDelta(t, reference(h), TimeUnresolved(h), 0.2, "hours %v", h)
	}
}

func TestTimeMonotonicity(t *testing.T) {
	scorer := fixedScorer(0.5, 0.5)
	prev := -1.0
	prevInt := -1
	for h := 0.0; h <= 300; h += 0.25 {
		v := TimeUnresolved(h)
		require.GreaterOrEqual(t, v, prev, "hours %v", h)
		prev = v

		got := scorer.Score(model.WaterDrainage, "drain blocked", h).Breakdown.TimeUnresolved
		require.GreaterOrEqual(t, got, prevInt, "hours %v", h)
		prevInt = got
	}
}

func TestSeverityBounds(t *testing.T) {
	texts := []string{"", wireReport, "broken exposed leaking dangerous sharp fall", "quiet"}
	fractions := []float64{-1, 0, 0.5, 1, 2}
	hours := []float64{0, 3, 6, 23.9, 24, 71.9, 72, 500}

	for _, c := range model.Categories {
		for _, text := range texts {
			for _, f := range fractions {
				for _, h := range hours {
					s := fixedScorer(f, f).Score(c, text, h)
					for _, v := range []int{s.Total, s.Breakdown.RiskLevel, s.Breakdown.DamageExtent, s.Breakdown.CrowdExposure, s.Breakdown.TimeUnresolved} {
						require.GreaterOrEqual(t, v, 0)
						require.LessOrEqual(t, v, 100)
					}
					assert.InDelta(t, s.Total, s.Breakdown.WeightedTotal(), 1)
				}
			}
		}
	}
}

func TestEstimatedFactorBands(t *testing.T) {
	low := fixedScorer(0, 0).Score(model.WaterDrainage, "", 0)
	high := fixedScorer(1, 1).Score(model.WaterDrainage, "", 0)

	assert.Equal(t, 40, low.Breakdown.DamageExtent)
	assert.Equal(t, 50, low.Breakdown.CrowdExposure)
	assert.Equal(t, 70, high.Breakdown.DamageExtent)
	assert.Equal(t, 90, high.Breakdown.CrowdExposure)
}

func TestHashEstimatorDeterministic(t *testing.T) {
	h := HashEstimator{Seed: 7}
	a := h.Estimate(model.RoadInfrastructure, "Deep pothole on Main St")
	b := h.Estimate(model.RoadInfrastructure, "  deep   POTHOLE on main st ")
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0.0)
	assert.Less(t, a, 1.0)

	other := HashEstimator{Seed: 8}.Estimate(model.RoadInfrastructure, "Deep pothole on Main St")
	assert.NotEqual(t, a, other)
}

func TestRandomEstimatorRange(t *testing.T) {
	var r RandomEstimator
	for i := 0; i < 100; i++ {
		v := r.Estimate(model.PublicSafety, wireReport)
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestNewEstimators(t *testing.T) {
	for _, kind := range []string{"", EstimatorHash, EstimatorRandom, EstimatorFixed} {
		d, e, err := NewEstimators(kind, 3)
		require.NoError(t, err, "kind %q", kind)
		assert.NotNil(t, d)
		assert.NotNil(t, e)
	}

	_, _, err := NewEstimators("oracle", 0)
	assert.Error(t, err)
}

func TestEstimatorFunc(t *testing.T) {
	var called bool
	f := EstimatorFunc(func(c model.Category, d string) float64 {
		called = true
		return 1
	})
	s := NewScorer(f, FixedEstimator(0)).Score(model.WasteSanitation, "trash", 0)
	assert.True(t, called)
	assert.Equal(t, 70, s.Breakdown.DamageExtent)
}
