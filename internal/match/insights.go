package match

import (
	"fmt"
	"strconv"

	"github.com/sells-group/dealmatch/internal/model"
)

// Insight thresholds. These are looser than the scoring tiers on purpose:
// an insight is display copy, not a score input.
const (
	insightMarginFloor    = 15
	insightLongevityFloor = 8
	insightStableYears    = 5
	insightSerialRevenue  = 1_000_000
)

// Insights derives an ordered list of human-readable compatibility
// explanations for a buyer/seller pair. Rules are evaluated in a fixed
// order and the output follows that order, not score magnitude. The result
// is never nil.
func Insights(buyer *model.BuyerProfile, seller *model.SellerProfile) []string {
	insights := []string{}

	// Industry alignment.
	if buyer.Industry == seller.Industry {
		insights = append(insights, fmt.Sprintf("Perfect industry match in %s", seller.Industry))
	} else if buyer.InterestedIn(seller.Industry) {
		insights = append(insights, fmt.Sprintf("Good industry alignment with %s", seller.Industry))
	}

	// Investment alignment.
	midpoint := buyer.InvestmentRange.Midpoint()
	if seller.AskingPrice <= midpoint {
		insights = append(insights, "Asking price is within comfortable budget range")
	} else if seller.AskingPrice <= buyer.InvestmentRange.Max {
		insights = append(insights, "Asking price is at the upper end of budget")
	}

	// Financial health.
	if seller.ProfitMargin > insightMarginFloor {
		insights = append(insights, fmt.Sprintf("Strong profit margin of %s%%", trimFloat(seller.ProfitMargin)))
	}

	if seller.YearsInBusiness > insightLongevityFloor {
		insights = append(insights, fmt.Sprintf("Established business with %s years of operation", trimFloat(seller.YearsInBusiness)))
	}

	// Experience match.
	if buyer.Experience == model.ExperienceFirstTime && seller.YearsInBusiness > insightStableYears {
		insights = append(insights, "Stable business suitable for first-time buyer")
	} else if buyer.Experience == model.ExperienceSerial && seller.Revenue > insightSerialRevenue {
		insights = append(insights, "Significant opportunity for experienced investor")
	}

	return insights
}

// trimFloat renders a float without trailing zeros (22 not 22.0, 12.5 as is).
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
