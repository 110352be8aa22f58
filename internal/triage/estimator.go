package triage

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/OneOfOne/xxhash"
	"github.com/sprite-ai/civtriage/internal/model"
)

// Estimator supplies the unit value behind a factor we have no sensor or
// inspection data for. Estimate returns a fraction in [0, 1]; the scorer maps
// it onto the factor's band. Implementations must be safe for concurrent use.
type Estimator interface {
	Estimate(category model.Category, description string) float64
}

// EstimatorFunc adapts a plain function to Estimator.
type EstimatorFunc func(category model.Category, description string) float64

func (f EstimatorFunc) Estimate(category model.Category, description string) float64 {
	return f(category, description)
}

// FixedEstimator always returns the same fraction.
type FixedEstimator float64

func (f FixedEstimator) Estimate(model.Category, string) float64 {
	return float64(f)
}

// HashEstimator derives a stable fraction from the normalized description,
// so the same report always gets the same estimate.
type HashEstimator struct {
	Seed uint64
}

func (h HashEstimator) Estimate(category model.Category, description string) float64 {
	d := xxhash.NewS64(h.Seed)
	d.Write([]byte(category.String()))
	d.Write([]byte{0})
	d.Write([]byte(normalize(description)))
	// top 53 bits fill a float64 mantissa exactly
	return float64(d.Sum64()>>11) / (1 << 53)
}

// RandomEstimator draws a fresh uniform fraction per call. Scores built with
// it are not reproducible.
type RandomEstimator struct{}

func (RandomEstimator) Estimate(model.Category, string) float64 {
	return rand.Float64()
}

// Estimator kinds accepted by NewEstimators.
const (
	EstimatorHash   = "hash"
	EstimatorRandom = "random"
	EstimatorFixed  = "fixed"
)

// NewEstimators builds the damage and exposure estimators for a kind. The two
// hash estimators use adjacent seeds so their outputs are independent.
func NewEstimators(kind string, seed uint64) (damage, exposure Estimator, err error) {
	switch kind {
	case EstimatorHash, "":
		return HashEstimator{Seed: seed}, HashEstimator{Seed: seed + 1}, nil
	case EstimatorRandom:
		return RandomEstimator{}, RandomEstimator{}, nil
	case EstimatorFixed:
		return FixedEstimator(0.5), FixedEstimator(0.5), nil
	default:
		return nil, nil, fmt.Errorf("unknown estimator %q (want hash, random, or fixed)", kind)
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
