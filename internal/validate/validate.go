// Package validate checks profile input before it reaches the store.
// The scoring engine itself never validates; degraded scores are the
// contract for bad data, so these checks sit at the onboarding edge.
package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"

	"github.com/sells-group/dealmatch/internal/model"
)

const (
	maxInvestment  = 100_000_000
	maxRevenue     = 1_000_000_000
	maxAskingPrice = 1_000_000_000
	maxYears       = 150
	maxEmployees   = 1_000_000
	bioMinLength   = 50
	bioMaxLength   = 2000

	// Asking prices outside this revenue-multiple window draw an advisory.
	multipleHighWater = 10
	multipleLowWater  = 0.5
)

// Validator checks profiles with struct tags plus cross-field rules the
// tags cannot express.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Buyer returns an error describing the first hard failure in a buyer
// profile, or nil.
func (val *Validator) Buyer(b *model.BuyerProfile) error {
	if err := val.v.Struct(b); err != nil {
		return eris.Wrap(err, "validate: buyer")
	}
	if err := InvestmentRange(b.InvestmentRange.Min, b.InvestmentRange.Max); err != nil {
		return err
	}
	if b.Bio != "" {
		if err := Bio(b.Bio); err != nil {
			return err
		}
	}
	return nil
}

// Seller returns an error describing the first hard failure in a seller
// profile, or nil. Advisory findings are reported separately by
// SellerAdvisories.
func (val *Validator) Seller(s *model.SellerProfile) error {
	if err := val.v.Struct(s); err != nil {
		return eris.Wrap(err, "validate: seller")
	}
	if err := Revenue(s.Revenue); err != nil {
		return err
	}
	if s.AskingPrice > maxAskingPrice {
		return eris.New("validate: asking price seems unrealistic")
	}
	if s.YearsInBusiness > maxYears {
		return eris.New("validate: years in business seems unrealistic")
	}
	if s.Employees > maxEmployees {
		return eris.New("validate: employee count seems unrealistic")
	}
	return nil
}

// SellerAdvisories flags listing values that are legal but suspicious,
// such as an asking price far outside the usual revenue-multiple window.
// The listing is still accepted; the caller decides how to surface these.
func SellerAdvisories(s *model.SellerProfile) []string {
	var notes []string
	if s.Revenue > 0 {
		multiple := s.AskingPrice / s.Revenue
		if multiple > multipleHighWater {
			notes = append(notes, "asking price seems high relative to revenue")
		} else if multiple < multipleLowWater {
			notes = append(notes, "asking price seems low relative to revenue")
		}
	}
	return notes
}

// InvestmentRange checks a buyer budget window.
func InvestmentRange(min, max float64) error {
	switch {
	case min <= 0:
		return eris.New("validate: minimum investment must be greater than 0")
	case max <= 0:
		return eris.New("validate: maximum investment must be greater than 0")
	case min >= max:
		return eris.New("validate: maximum investment must be greater than minimum")
	case max > maxInvestment:
		return eris.New("validate: maximum investment seems unrealistic")
	}
	return nil
}

// Revenue checks a seller's annual revenue figure.
func Revenue(revenue float64) error {
	switch {
	case revenue < 0:
		return eris.New("validate: revenue cannot be negative")
	case revenue == 0:
		return eris.New("validate: revenue must be greater than 0")
	case revenue > maxRevenue:
		return eris.New("validate: revenue seems unrealistic")
	}
	return nil
}

// Bio checks a free-text bio or description length after trimming.
func Bio(bio string) error {
	n := len(strings.TrimSpace(bio))
	if n < bioMinLength {
		return eris.Errorf("validate: bio must be at least %d characters long", bioMinLength)
	}
	if n > bioMaxLength {
		return eris.Errorf("validate: bio must be less than %d characters long", bioMaxLength)
	}
	return nil
}
