// Package match implements compatibility scoring, candidate filtering, and
// insight generation for buyer/seller acquisition matchmaking.
package match

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/dealmatch/internal/config"
)

// DefaultMatchConfig returns a config.MatchConfig with the standard rule
// set. Weights sum to 100.
func DefaultMatchConfig() config.MatchConfig {
	return config.MatchConfig{
		IndustryWeight:     30,
		PriceWeight:        25,
		PricePartialWeight: 15,
		SizeWeight:         15,
		LocationWeight:     10,
		FinancialWeight:    20,

		MinScore:   0,
		MaxMatches: 0,
	}
}

// WeightSum returns the sum of the maximum sub-score weights. The partial
// price weight is an alternative award within the price sub-score, not an
// additional one, so it is excluded.
func WeightSum(c config.MatchConfig) float64 {
	return c.IndustryWeight + c.PriceWeight + c.SizeWeight +
		c.LocationWeight + c.FinancialWeight
}

// ValidateConfig checks that a MatchConfig is internally consistent.
func ValidateConfig(c config.MatchConfig) error {
	var errs []string

	weights := map[string]float64{
		"industry_weight":      c.IndustryWeight,
		"price_weight":         c.PriceWeight,
		"price_partial_weight": c.PricePartialWeight,
		"size_weight":          c.SizeWeight,
		"location_weight":      c.LocationWeight,
		"financial_weight":     c.FinancialWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	if c.PricePartialWeight > c.PriceWeight {
		errs = append(errs, "price_partial_weight must be <= price_weight")
	}

	sum := WeightSum(c)
	if sum <= 0 {
		errs = append(errs, "weight sum must be > 0")
	}
	if math.Abs(sum-100) > 1 {
		errs = append(errs, fmt.Sprintf("weights should sum to 100, got %.1f", sum))
	}

	if c.MinScore < 0 || c.MinScore > 100 {
		errs = append(errs, "min_score must be between 0 and 100")
	}
	if c.MaxMatches < 0 {
		errs = append(errs, "max_matches must be >= 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("match: config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
