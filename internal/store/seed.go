package store

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/dealmatch/internal/db"
	"github.com/sells-group/dealmatch/internal/model"
)

// Fixtures is the shape of a seed file: starter buyer and seller
// profiles loaded into an empty store.
type Fixtures struct {
	Buyers  []model.BuyerProfile  `yaml:"buyers"`
	Sellers []model.SellerProfile `yaml:"sellers"`
}

// LoadFixtures parses a YAML fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read fixtures %s", path)
	}
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "store: parse fixtures %s", path)
	}
	return &f, nil
}

// DefaultFixtures returns the built-in starter profiles used when no
// fixture file is given.
func DefaultFixtures() *Fixtures {
	return &Fixtures{
		Buyers: []model.BuyerProfile{
			{
				ID:                    "buyer-john-smith",
				Name:                  "John Smith",
				Industry:              "Technology",
				InterestedIndustries:  []string{"Technology", "Healthcare"},
				InvestmentRange:       model.InvestmentRange{Min: 500_000, Max: 2_000_000},
				Experience:            model.ExperienceExperienced,
				PreferredBusinessSize: model.SizeSmall,
				Location:              "Austin, TX",
				FundingSource:         model.FundingCombination,
				Timeline:              "3-6 months",
			},
			{
				ID:                    "buyer-sarah-johnson",
				Name:                  "Sarah Johnson",
				Industry:              "Retail",
				InterestedIndustries:  []string{"Retail", "Food & Beverage"},
				InvestmentRange:       model.InvestmentRange{Min: 200_000, Max: 800_000},
				Experience:            model.ExperienceFirstTime,
				PreferredBusinessSize: model.SizeSmall,
				Location:              "Denver, CO",
				FundingSource:         model.FundingBankLoan,
				Timeline:              "6-12 months",
			},
		},
		Sellers: []model.SellerProfile{
			{
				ID:               "seller-techcorp",
				BusinessName:     "TechCorp Solutions",
				Industry:         "Technology",
				Revenue:          850_000,
				AskingPrice:      1_200_000,
				Location:         "Austin, TX",
				YearsInBusiness:  8,
				Employees:        12,
				ProfitMargin:     22,
				Description:      "B2B software consultancy with recurring support contracts.",
				ReasonForSelling: "Founder retiring",
				BusinessModel:    "B2B services",
			},
			{
				ID:              "seller-mountain-brew",
				BusinessName:    "Mountain Brew Coffee",
				Industry:        "Food & Beverage",
				Revenue:         420_000,
				AskingPrice:     550_000,
				Location:        "Denver, CO",
				YearsInBusiness: 6,
				Employees:       9,
				ProfitMargin:    14,
				Description:     "Two-location specialty coffee roaster and cafe.",
				BusinessModel:   "Retail",
			},
		},
	}
}

// Seed writes fixture profiles into the store one at a time. Existing
// rows are left untouched; duplicate IDs surface as create errors.
func Seed(ctx context.Context, s Store, f *Fixtures) error {
	for i := range f.Buyers {
		if err := s.CreateBuyer(ctx, &f.Buyers[i]); err != nil {
			return eris.Wrapf(err, "store: seed buyer %s", f.Buyers[i].ID)
		}
	}
	for i := range f.Sellers {
		if err := s.CreateSeller(ctx, &f.Sellers[i]); err != nil {
			return eris.Wrapf(err, "store: seed seller %s", f.Sellers[i].ID)
		}
	}
	zap.L().Info("seeded fixtures",
		zap.Int("buyers", len(f.Buyers)),
		zap.Int("sellers", len(f.Sellers)))
	return nil
}

// SeedPostgres bulk-loads fixtures through the upsert path so re-running
// seed against an existing database is idempotent.
func SeedPostgres(ctx context.Context, pool db.Pool, f *Fixtures) error {
	buyerRows := make([][]any, 0, len(f.Buyers))
	for i := range f.Buyers {
		payload, err := json.Marshal(&f.Buyers[i])
		if err != nil {
			return eris.Wrapf(err, "store: marshal buyer %s", f.Buyers[i].ID)
		}
		buyerRows = append(buyerRows, []any{f.Buyers[i].ID, payload})
	}
	sellerRows := make([][]any, 0, len(f.Sellers))
	for i := range f.Sellers {
		payload, err := json.Marshal(&f.Sellers[i])
		if err != nil {
			return eris.Wrapf(err, "store: marshal seller %s", f.Sellers[i].ID)
		}
		sellerRows = append(sellerRows, []any{f.Sellers[i].ID, payload})
	}

	n, err := db.BulkUpsert(ctx, pool, db.UpsertConfig{
		Table:        "buyers",
		Columns:      []string{"id", "profile"},
		ConflictKeys: []string{"id"},
	}, buyerRows)
	if err != nil {
		return eris.Wrap(err, "store: seed buyers")
	}
	m, err := db.BulkUpsert(ctx, pool, db.UpsertConfig{
		Table:        "sellers",
		Columns:      []string{"id", "profile"},
		ConflictKeys: []string{"id"},
	}, sellerRows)
	if err != nil {
		return eris.Wrap(err, "store: seed sellers")
	}

	zap.L().Info("seeded fixtures",
		zap.Int64("buyers", n),
		zap.Int64("sellers", m))
	return nil
}
