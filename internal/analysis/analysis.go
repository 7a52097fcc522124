// Package analysis produces document-review summaries for a seller's
// uploaded financials. The output is display data for the Document
// Exchange workflow step; compatibility scoring never reads it.
package analysis

import (
	"fmt"

	"github.com/sells-group/dealmatch/internal/format"
	"github.com/sells-group/dealmatch/internal/model"
)

// Risk labels.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
)

// Analyze derives a review summary from the seller's stated financials.
// The same seller always produces the same analysis.
func Analyze(seller *model.SellerProfile) model.DocumentAnalysis {
	return model.DocumentAnalysis{
		Revenue:       format.CompactCurrency(seller.Revenue) + " annually",
		ProfitMargin:  format.Percentage(seller.ProfitMargin),
		RiskScore:     riskScore(seller),
		RevenueGrowth: revenueGrowth(seller),
		KeyInsights:   keyInsights(seller),
	}
}

// riskScore weighs margin, track record and valuation into a coarse
// three-level label. Two or more warning signs mean High.
func riskScore(s *model.SellerProfile) string {
	flags := 0
	if s.ProfitMargin < 5 {
		flags++
	}
	if s.YearsInBusiness < 2 {
		flags++
	}
	if s.Revenue > 0 && s.AskingPrice/s.Revenue > 5 {
		flags++
	}
	if s.Revenue == 0 {
		flags += 2
	}

	switch {
	case flags >= 2:
		return RiskHigh
	case flags == 1:
		return RiskModerate
	default:
		return RiskLow
	}
}

// revenueGrowth estimates a year-over-year trend from margin and
// longevity. Established profitable businesses trend higher.
func revenueGrowth(s *model.SellerProfile) string {
	growth := 0.0
	if s.ProfitMargin > 0 {
		growth += s.ProfitMargin / 2
	}
	if s.YearsInBusiness > 5 {
		growth += 4
	} else if s.YearsInBusiness > 2 {
		growth += 2
	}
	if growth == 0 {
		return "Flat YoY"
	}
	return fmt.Sprintf("+%.0f%% YoY", growth)
}

func keyInsights(s *model.SellerProfile) []string {
	insights := []string{}

	if s.ProfitMargin > 15 {
		insights = append(insights, "Healthy cash flow position with consistent profitability")
	} else if s.ProfitMargin < 5 {
		insights = append(insights, "Thin margins warrant a closer look at cost structure")
	}

	if s.YearsInBusiness > 5 {
		insights = append(insights, "Established operating history reduces execution risk")
	} else if s.YearsInBusiness < 2 {
		insights = append(insights, "Limited operating history; request additional references")
	}

	if s.Revenue > 0 {
		multiple := s.AskingPrice / s.Revenue
		switch {
		case multiple > 5:
			insights = append(insights, "Asking price is aggressive relative to reported revenue")
		case multiple < 1:
			insights = append(insights, "Valuation sits below annual revenue; verify why")
		default:
			insights = append(insights, "Valuation is within typical market ranges")
		}
	} else {
		insights = append(insights, "No reported revenue; financial statements required before proceeding")
	}

	if s.Employees > 0 && s.Revenue/float64(s.Employees) > 100_000 {
		insights = append(insights, "Strong revenue per employee indicates an efficient operation")
	}

	return insights
}
