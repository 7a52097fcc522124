package match

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/dealmatch/internal/model"
)

// sellerBudgetFloorFactor is the fraction of a seller's asking price a
// buyer's budget ceiling must reach to survive the seller-side pre-filter.
// The buyer-side filter tolerates prices up to priceFlexFactor above the
// ceiling while the seller-side cuts at 0.8 below the asking price; this
// asymmetry is intentional and matches the production rule set.
const sellerBudgetFloorFactor = 0.8

// Filter prunes obviously incompatible candidates before scoring. The
// requester's role selects the rule set: a buyer filters seller candidates,
// a seller filters buyer candidates. Candidates not carrying the opposite
// role are dropped. Surviving candidates keep their input order.
func Filter(candidates []model.Profile, requester model.Profile) []model.Profile {
	out := make([]model.Profile, 0, len(candidates))

	switch requester.Role {
	case model.RoleBuyer:
		buyer := requester.Buyer
		if buyer == nil {
			return out
		}
		for _, c := range candidates {
			if c.Role != model.RoleSeller || c.Seller == nil {
				continue
			}
			if keepSellerForBuyer(buyer, c.Seller) {
				out = append(out, c)
			}
		}

	case model.RoleSeller:
		seller := requester.Seller
		if seller == nil {
			return out
		}
		for _, c := range candidates {
			if c.Role != model.RoleBuyer || c.Buyer == nil {
				continue
			}
			if keepBuyerForSeller(c.Buyer, seller) {
				out = append(out, c)
			}
		}
	}

	return out
}

func keepSellerForBuyer(buyer *model.BuyerProfile, seller *model.SellerProfile) bool {
	if seller.AskingPrice > buyer.InvestmentRange.Max*priceFlexFactor {
		return false
	}
	if buyer.Industry != model.AnyIndustry && !buyer.InterestedIn(seller.Industry) {
		return false
	}
	return true
}

func keepBuyerForSeller(buyer *model.BuyerProfile, seller *model.SellerProfile) bool {
	if buyer.InvestmentRange.Max < seller.AskingPrice*sellerBudgetFloorFactor {
		return false
	}
	if buyer.Industry != model.AnyIndustry &&
		buyer.Industry != seller.Industry &&
		!buyer.InterestedIn(seller.Industry) {
		return false
	}
	return true
}

// Scored pairs a candidate profile with its compatibility score.
type Scored struct {
	Profile model.Profile `json:"profile"`
	Score   int           `json:"score"`
}

// SortByScore sorts scored pairs descending by score, in place. The sort is
// stable: ties keep their input relative order.
func SortByScore(pairs []Scored) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Score > pairs[j].Score
	})
}

// Rank runs the full candidate pipeline for a requester: pre-filter, score
// each survivor, and sort descending. MinScore and MaxMatches from the
// config are applied after sorting.
func (s *Scorer) Rank(requester model.Profile, candidates []model.Profile) []Scored {
	survivors := Filter(candidates, requester)

	scored := make([]Scored, 0, len(survivors))
	for _, c := range survivors {
		var value int
		switch requester.Role {
		case model.RoleBuyer:
			value = s.Score(requester.Buyer, c.Seller)
		case model.RoleSeller:
			value = s.Score(c.Buyer, requester.Seller)
		}
		if float64(value) < s.cfg.MinScore {
			continue
		}
		scored = append(scored, Scored{Profile: c, Score: value})
	}

	SortByScore(scored)

	if s.cfg.MaxMatches > 0 && len(scored) > s.cfg.MaxMatches {
		scored = scored[:s.cfg.MaxMatches]
	}

	zap.L().Debug("match: ranked candidates",
		zap.String("requester", requester.ID()),
		zap.String("role", string(requester.Role)),
		zap.Int("candidates", len(candidates)),
		zap.Int("survivors", len(survivors)),
		zap.Int("ranked", len(scored)),
	)

	return scored
}
