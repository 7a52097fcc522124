package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealmatch/internal/model"
)

func sellerRecord(id, industry string, askingPrice float64) model.Profile {
	return model.SellerRecord(&model.SellerProfile{
		ID:          id,
		Industry:    industry,
		AskingPrice: askingPrice,
	})
}

func buyerRecord(id, industry string, interested []string, maxBudget float64) model.Profile {
	return model.BuyerRecord(&model.BuyerProfile{
		ID:                   id,
		Industry:             industry,
		InterestedIndustries: interested,
		InvestmentRange:      model.InvestmentRange{Min: 0, Max: maxBudget},
	})
}

func TestFilterBuyerSide(t *testing.T) {
	requester := buyerRecord("b1", "Technology", []string{"Technology", "SaaS"}, 100_000)

	candidates := []model.Profile{
		sellerRecord("s1", "Technology", 90_000),   // keep
		sellerRecord("s2", "Technology", 120_001),  // price above max*1.2
		sellerRecord("s3", "Technology", 120_000),  // exactly max*1.2, not above -> keep
		sellerRecord("s4", "Restaurants", 50_000),  // industry not in interest list
		sellerRecord("s5", "SaaS", 110_000),        // within flex -> keep
	}

	got := Filter(candidates, requester)

	require.Len(t, got, 3)
	assert.Equal(t, "s1", got[0].ID())
	assert.Equal(t, "s3", got[1].ID())
	assert.Equal(t, "s5", got[2].ID())
}

func TestFilterBuyerSideAnySentinel(t *testing.T) {
	// Industry "Any" disables the industry exclusion entirely, even when the
	// interest list would not contain the candidate's industry.
	requester := buyerRecord("b1", model.AnyIndustry, nil, 1_000_000)

	got := Filter([]model.Profile{
		sellerRecord("s1", "Restaurants", 500_000),
		sellerRecord("s2", "Mining", 2_000_000), // still excluded on price
	}, requester)

	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID())
}

func TestFilterSellerSide(t *testing.T) {
	requester := model.SellerRecord(&model.SellerProfile{
		ID:          "s1",
		Industry:    "Technology",
		AskingPrice: 1_000_000,
	})

	candidates := []model.Profile{
		buyerRecord("b1", "Technology", nil, 900_000),                   // own industry matches -> keep
		buyerRecord("b2", "Healthcare", []string{"Technology"}, 850_000), // interest list -> keep
		buyerRecord("b3", "Healthcare", nil, 2_000_000),                 // industry mismatch
		buyerRecord("b4", "Technology", nil, 799_999),                   // budget below price*0.8
		buyerRecord("b5", "Technology", nil, 800_000),                   // exactly price*0.8 -> keep
		buyerRecord("b6", model.AnyIndustry, nil, 1_500_000),            // Any -> keep
	}

	got := Filter(candidates, requester)

	require.Len(t, got, 4)
	assert.Equal(t, "b1", got[0].ID())
	assert.Equal(t, "b2", got[1].ID())
	assert.Equal(t, "b5", got[2].ID())
	assert.Equal(t, "b6", got[3].ID())
}

// TestFilterAsymmetry documents that the two rule sets differ in leniency
// on purpose. A buyer whose own industry matches the seller's but whose
// interest list omits it survives the seller-side filter yet would NOT
// survive the buyer-side filter in the mirrored direction.
func TestFilterAsymmetry(t *testing.T) {
	buyer := &model.BuyerProfile{
		ID:              "b1",
		Industry:        "Technology",
		InvestmentRange: model.InvestmentRange{Max: 1_000_000},
		// Interest list deliberately empty.
	}
	seller := &model.SellerProfile{
		ID:          "s1",
		Industry:    "Technology",
		AskingPrice: 900_000,
	}

	// Seller filtering buyers: kept (buyer.Industry == seller.Industry).
	fromSeller := Filter([]model.Profile{model.BuyerRecord(buyer)}, model.SellerRecord(seller))
	assert.Len(t, fromSeller, 1)

	// Buyer filtering sellers: dropped (interest list does not contain the
	// industry and the buyer-side rule never consults buyer.Industry
	// equality).
	fromBuyer := Filter([]model.Profile{model.SellerRecord(seller)}, model.BuyerRecord(buyer))
	assert.Empty(t, fromBuyer)
}

func TestFilterDropsWrongRoleCandidates(t *testing.T) {
	requester := buyerRecord("b1", model.AnyIndustry, nil, 1_000_000)

	got := Filter([]model.Profile{
		buyerRecord("b2", model.AnyIndustry, nil, 500_000), // buyer among seller candidates
		sellerRecord("s1", "Technology", 500_000),
		{}, // zero value, no role
	}, requester)

	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].ID())
}

func TestFilterBuyerBudgetExclusion(t *testing.T) {
	// Buyer with max 100k excludes any seller asking over 120k.
	requester := buyerRecord("b1", model.AnyIndustry, nil, 100_000)

	got := Filter([]model.Profile{
		sellerRecord("s1", "Technology", 120_001),
		sellerRecord("s2", "Technology", 300_000),
	}, requester)

	assert.Empty(t, got)
}

func TestSortByScoreStable(t *testing.T) {
	pairs := []Scored{
		{Profile: sellerRecord("s1", "A", 1), Score: 70},
		{Profile: sellerRecord("s2", "A", 1), Score: 90},
		{Profile: sellerRecord("s3", "A", 1), Score: 70},
		{Profile: sellerRecord("s4", "A", 1), Score: 85},
	}

	SortByScore(pairs)

	require.Len(t, pairs, 4)
	assert.Equal(t, "s2", pairs[0].Profile.ID())
	assert.Equal(t, "s4", pairs[1].Profile.ID())
	// s1 and s3 tie at 70; input order preserved.
	assert.Equal(t, "s1", pairs[2].Profile.ID())
	assert.Equal(t, "s3", pairs[3].Profile.ID())
}

func TestRankPipeline(t *testing.T) {
	s := NewScorer(DefaultMatchConfig())
	requester := model.BuyerRecord(testBuyer())

	strong := testSeller()
	weak := &model.SellerProfile{
		ID:          "weak",
		Industry:    "SaaS",
		AskingPrice: 2_300_000, // above flex of 2.4M? no: 2.3M < 2.4M -> survives filter
		Revenue:     200_000,
		Location:    "Boston, MA",
	}
	excluded := &model.SellerProfile{
		ID:          "excluded",
		Industry:    "Restaurants",
		AskingPrice: 1_000_000,
	}

	got := s.Rank(requester, []model.Profile{
		model.SellerRecord(weak),
		model.SellerRecord(strong),
		model.SellerRecord(excluded),
	})

	require.Len(t, got, 2)
	assert.Equal(t, strong.ID, got[0].Profile.ID())
	assert.Equal(t, "weak", got[1].Profile.ID())
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestRankAppliesMinScoreAndLimit(t *testing.T) {
	cfg := DefaultMatchConfig()
	cfg.MinScore = 80
	cfg.MaxMatches = 1
	s := NewScorer(cfg)

	requester := model.BuyerRecord(testBuyer())
	got := s.Rank(requester, []model.Profile{
		model.SellerRecord(testSeller()),
		model.SellerRecord(&model.SellerProfile{
			ID: "low", Industry: "SaaS", AskingPrice: 2_300_000, Revenue: 100_000, Location: "Boston, MA",
		}),
	})

	require.Len(t, got, 1)
	assert.GreaterOrEqual(t, got[0].Score, 80)
}
