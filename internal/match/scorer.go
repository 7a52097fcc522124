package match

import (
	"math"
	"strings"

	"github.com/sells-group/dealmatch/internal/config"
	"github.com/sells-group/dealmatch/internal/model"
)

const (
	// priceFlexFactor is the tolerance above a buyer's budget ceiling that
	// still earns partial price credit.
	priceFlexFactor = 1.2

	// Revenue ceilings for the seller size buckets.
	smallRevenueCeiling  = 1_000_000
	mediumRevenueCeiling = 10_000_000

	// locationScaleDivisor turns the raw 0-10 location sub-scale into
	// locationScore * (LocationWeight/100) points, at most 1 under the
	// default weights. The full LocationWeight still enters WeightSum,
	// so location is diluted relative to the other components.
	locationScaleDivisor = 100

	// financialSubScaleMax is the maximum of the raw financial-health
	// sub-scale; the raw value is rescaled to the financial weight.
	financialSubScaleMax = 100
)

// Location sub-scale values.
const (
	locationSameCity  = 10
	locationSameState = 7
	locationDifferent = 5
)

// Scorer computes 0-100 compatibility scores between buyer and seller
// profiles. It is stateless and safe for concurrent use.
type Scorer struct {
	cfg config.MatchConfig
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(cfg config.MatchConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns the compatibility score between a buyer and a seller as an
// integer in [0, 100]. Degenerate inputs (zero revenue, zero employees)
// degrade the score rather than fail; the engine assumes profiles were
// validated upstream.
func (s *Scorer) Score(buyer *model.BuyerProfile, seller *model.SellerProfile) int {
	components := s.Components(buyer, seller)

	var total float64
	for _, v := range components {
		total += v
	}

	weightSum := WeightSum(s.cfg)
	if weightSum <= 0 {
		return 0
	}
	return int(math.Round(total / weightSum * 100))
}

// Components returns the weighted contribution of each sub-score, keyed by
// sub-score name. The sum of the map values over WeightSum gives the final
// normalized score.
func (s *Scorer) Components(buyer *model.BuyerProfile, seller *model.SellerProfile) map[string]float64 {
	return map[string]float64{
		"industry":  s.scoreIndustry(buyer, seller),
		"price":     s.scorePrice(buyer, seller),
		"size":      s.scoreSize(buyer, seller),
		"location":  locationScore(buyer.Location, seller.Location) * (s.cfg.LocationWeight / locationScaleDivisor),
		"financial": FinancialHealth(seller) * (s.cfg.FinancialWeight / financialSubScaleMax),
	}
}

func (s *Scorer) scoreIndustry(buyer *model.BuyerProfile, seller *model.SellerProfile) float64 {
	if buyer.Industry == seller.Industry ||
		buyer.InterestedIn(seller.Industry) ||
		buyer.Industry == model.AnyIndustry {
		return s.cfg.IndustryWeight
	}
	return 0
}

func (s *Scorer) scorePrice(buyer *model.BuyerProfile, seller *model.SellerProfile) float64 {
	if buyer.InvestmentRange.Contains(seller.AskingPrice) {
		return s.cfg.PriceWeight
	}
	// Slight flexibility above the ceiling.
	if seller.AskingPrice < buyer.InvestmentRange.Max*priceFlexFactor {
		return s.cfg.PricePartialWeight
	}
	return 0
}

func (s *Scorer) scoreSize(buyer *model.BuyerProfile, seller *model.SellerProfile) float64 {
	size := SizeBucket(seller.Revenue)
	if buyer.PreferredBusinessSize == size || buyer.PreferredBusinessSize == model.SizeAny {
		return s.cfg.SizeWeight
	}
	return 0
}

// SizeBucket derives a seller's size category from annual revenue.
func SizeBucket(revenue float64) model.BusinessSize {
	switch {
	case revenue < smallRevenueCeiling:
		return model.SizeSmall
	case revenue < mediumRevenueCeiling:
		return model.SizeMedium
	default:
		return model.SizeLarge
	}
}

// locationScore returns the raw 0-10 location sub-scale. Locations are
// free-text "City, State" strings; the trailing comma-separated token is
// treated as the state.
func locationScore(buyerLocation, sellerLocation string) float64 {
	if buyerLocation == sellerLocation {
		return locationSameCity
	}
	if stateToken(buyerLocation) == stateToken(sellerLocation) {
		return locationSameState
	}
	return locationDifferent
}

func stateToken(location string) string {
	parts := strings.Split(location, ",")
	return strings.TrimSpace(parts[len(parts)-1])
}

// Financial-health tier contributions. The four factor maxima sum to
// exactly 100, so the cap only guards against future tier changes.
const financialHealthCap = 100

// FinancialHealth returns the 0-100 financial-health sub-scale for a
// seller: profit margin, longevity, asking-price multiple, and revenue per
// employee, each awarded in tiers. Zero revenue is treated as an infinite
// multiple and earns nothing; zero employees are clamped to one.
func FinancialHealth(seller *model.SellerProfile) float64 {
	var health float64

	switch {
	case seller.ProfitMargin > 20:
		health += 30
	case seller.ProfitMargin > 10:
		health += 20
	case seller.ProfitMargin > 5:
		health += 10
	}

	switch {
	case seller.YearsInBusiness > 10:
		health += 25
	case seller.YearsInBusiness > 5:
		health += 15
	case seller.YearsInBusiness > 2:
		health += 10
	}

	if seller.Revenue > 0 {
		multiple := seller.AskingPrice / seller.Revenue
		switch {
		case multiple < 2:
			health += 25
		case multiple < 3:
			health += 15
		case multiple < 5:
			health += 10
		}
	}

	revenuePerEmployee := seller.Revenue / math.Max(float64(seller.Employees), 1)
	switch {
	case revenuePerEmployee > 100_000:
		health += 20
	case revenuePerEmployee > 50_000:
		health += 15
	case revenuePerEmployee > 25_000:
		health += 10
	}

	return math.Min(health, financialHealthCap)
}
