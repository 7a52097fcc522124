package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/dealmatch/internal/model"
)

func validBuyer() *model.BuyerProfile {
	return &model.BuyerProfile{
		ID:                    "buyer-1",
		Name:                  "John Smith",
		Industry:              "Technology",
		InterestedIndustries:  []string{"Technology"},
		InvestmentRange:       model.InvestmentRange{Min: 500_000, Max: 2_000_000},
		Experience:            model.ExperienceExperienced,
		PreferredBusinessSize: model.SizeSmall,
		Location:              "Austin, TX",
	}
}

func validSeller() *model.SellerProfile {
	return &model.SellerProfile{
		ID:              "seller-1",
		BusinessName:    "TechCorp Solutions",
		Industry:        "Technology",
		Revenue:         850_000,
		AskingPrice:     1_200_000,
		Location:        "Austin, TX",
		YearsInBusiness: 8,
		Employees:       12,
		ProfitMargin:    22,
	}
}

func TestBuyerValid(t *testing.T) {
	require.NoError(t, New().Buyer(validBuyer()))
}

func TestBuyerHardFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.BuyerProfile)
		wantErr string
	}{
		{
			name:    "missing industry",
			mutate:  func(b *model.BuyerProfile) { b.Industry = "" },
			wantErr: "validate: buyer",
		},
		{
			name:    "bad experience enum",
			mutate:  func(b *model.BuyerProfile) { b.Experience = "expert" },
			wantErr: "validate: buyer",
		},
		{
			name:    "inverted range",
			mutate:  func(b *model.BuyerProfile) { b.InvestmentRange = model.InvestmentRange{Min: 900_000, Max: 100_000} },
			wantErr: "greater than minimum",
		},
		{
			name:    "unrealistic maximum",
			mutate:  func(b *model.BuyerProfile) { b.InvestmentRange.Max = 200_000_000 },
			wantErr: "seems unrealistic",
		},
		{
			name:    "bio too short",
			mutate:  func(b *model.BuyerProfile) { b.Bio = "I buy things." },
			wantErr: "at least 50 characters",
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBuyer()
			tt.mutate(b)
			err := v.Buyer(b)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSellerHardFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.SellerProfile)
		wantErr string
	}{
		{
			name:    "short business name",
			mutate:  func(s *model.SellerProfile) { s.BusinessName = "X" },
			wantErr: "validate: seller",
		},
		{
			name:    "zero revenue",
			mutate:  func(s *model.SellerProfile) { s.Revenue = 0 },
			wantErr: "revenue must be greater than 0",
		},
		{
			name:    "unrealistic revenue",
			mutate:  func(s *model.SellerProfile) { s.Revenue = 2_000_000_000 },
			wantErr: "revenue seems unrealistic",
		},
		{
			name:    "margin out of bounds",
			mutate:  func(s *model.SellerProfile) { s.ProfitMargin = 120 },
			wantErr: "validate: seller",
		},
		{
			name:    "unrealistic years",
			mutate:  func(s *model.SellerProfile) { s.YearsInBusiness = 200 },
			wantErr: "years in business",
		},
		{
			name:    "unrealistic employees",
			mutate:  func(s *model.SellerProfile) { s.Employees = 2_000_000 },
			wantErr: "employee count",
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSeller()
			tt.mutate(s)
			err := v.Seller(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSellerAdvisories(t *testing.T) {
	t.Run("reasonable multiple is quiet", func(t *testing.T) {
		assert.Empty(t, SellerAdvisories(validSeller()))
	})

	t.Run("high multiple", func(t *testing.T) {
		s := validSeller()
		s.AskingPrice = s.Revenue * 11
		notes := SellerAdvisories(s)
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0], "high relative to revenue")
	})

	t.Run("low multiple", func(t *testing.T) {
		s := validSeller()
		s.AskingPrice = s.Revenue * 0.4
		notes := SellerAdvisories(s)
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0], "low relative to revenue")
	})
}

func TestBioBounds(t *testing.T) {
	assert.Error(t, Bio("short"))
	assert.NoError(t, Bio(strings.Repeat("a", 50)))
	assert.NoError(t, Bio(strings.Repeat("a", 2000)))
	assert.Error(t, Bio(strings.Repeat("a", 2001)))
	// Trimmed length is what counts.
	assert.Error(t, Bio("   "+strings.Repeat("a", 30)+"   "))
}
