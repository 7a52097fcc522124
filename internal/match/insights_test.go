package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealmatch/internal/model"
)

func TestInsightsFixedRuleOrder(t *testing.T) {
	buyer := testBuyer()
	seller := testSeller()

	got := Insights(buyer, seller)

	// All five rules fire for the reference pair except the experience
	// rules gated on first-time/serial; order follows rule evaluation, not
	// relevance.
	require.Equal(t, []string{
		"Perfect industry match in Technology",
		"Asking price is at the upper end of budget",
		"Strong profit margin of 22%",
	}, got)
}

func TestInsightsIndustryAlignment(t *testing.T) {
	seller := &model.SellerProfile{Industry: "SaaS", AskingPrice: 10_000_000}

	exact := &model.BuyerProfile{Industry: "SaaS"}
	assert.Contains(t, Insights(exact, seller), "Perfect industry match in SaaS")

	interested := &model.BuyerProfile{Industry: "Healthcare", InterestedIndustries: []string{"SaaS"}}
	assert.Contains(t, Insights(interested, seller), "Good industry alignment with SaaS")

	neither := &model.BuyerProfile{Industry: "Healthcare"}
	for _, insight := range Insights(neither, seller) {
		assert.NotContains(t, insight, "industry")
	}
}

func TestInsightsBudgetMidpoint(t *testing.T) {
	buyer := &model.BuyerProfile{
		InvestmentRange: model.InvestmentRange{Min: 500_000, Max: 1_500_000},
	}

	tests := []struct {
		name  string
		price float64
		want  string
	}{
		{"at midpoint", 1_000_000, "Asking price is within comfortable budget range"},
		{"below midpoint", 600_000, "Asking price is within comfortable budget range"},
		{"upper end", 1_400_000, "Asking price is at the upper end of budget"},
		{"at max", 1_500_000, "Asking price is at the upper end of budget"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seller := &model.SellerProfile{AskingPrice: tt.price}
			assert.Contains(t, Insights(buyer, seller), tt.want)
		})
	}
}

func TestInsightsAboveBudgetSaysNothingAboutPrice(t *testing.T) {
	buyer := &model.BuyerProfile{
		InvestmentRange: model.InvestmentRange{Min: 100_000, Max: 200_000},
	}
	seller := &model.SellerProfile{AskingPrice: 250_000}

	for _, insight := range Insights(buyer, seller) {
		assert.NotContains(t, insight, "budget")
	}
}

func TestInsightsExperienceRules(t *testing.T) {
	stableSeller := &model.SellerProfile{YearsInBusiness: 6, Revenue: 2_000_000, AskingPrice: 1}

	firstTime := &model.BuyerProfile{Experience: model.ExperienceFirstTime}
	assert.Contains(t, Insights(firstTime, stableSeller),
		"Stable business suitable for first-time buyer")

	serial := &model.BuyerProfile{Experience: model.ExperienceSerial}
	assert.Contains(t, Insights(serial, stableSeller),
		"Significant opportunity for experienced investor")

	// First-time rule wins over the serial rule; they are an if/else pair.
	experienced := &model.BuyerProfile{Experience: model.ExperienceExperienced}
	for _, insight := range Insights(experienced, stableSeller) {
		assert.NotContains(t, insight, "buyer")
		assert.NotContains(t, insight, "investor")
	}
}

func TestInsightsNumberFormatting(t *testing.T) {
	buyer := &model.BuyerProfile{}
	seller := &model.SellerProfile{
		ProfitMargin:    17.5,
		YearsInBusiness: 9,
		AskingPrice:     10_000_000,
	}

	got := Insights(buyer, seller)
	assert.Contains(t, got, "Strong profit margin of 17.5%")
	assert.Contains(t, got, "Established business with 9 years of operation")
}

func TestInsightsNeverNil(t *testing.T) {
	buyer := &model.BuyerProfile{Industry: "Healthcare"}
	seller := &model.SellerProfile{Industry: "Mining", AskingPrice: 10_000_000}

	got := Insights(buyer, seller)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
