package model

// Role identifies which side of an acquisition a profile represents.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
)

// AnyIndustry is the sentinel industry meaning no restriction.
const AnyIndustry = "Any"

// Experience describes a buyer's acquisition track record.
type Experience string

const (
	ExperienceFirstTime   Experience = "first-time"
	ExperienceExperienced Experience = "experienced"
	ExperienceSerial      Experience = "serial"
)

// BusinessSize is a revenue-derived size bucket, or the "any" wildcard
// in a buyer's preference.
type BusinessSize string

const (
	SizeSmall  BusinessSize = "small"
	SizeMedium BusinessSize = "medium"
	SizeLarge  BusinessSize = "large"
	SizeAny    BusinessSize = "any"
)

// FundingSource describes how a buyer intends to finance an acquisition.
type FundingSource string

const (
	FundingPersonalSavings FundingSource = "personal-savings"
	FundingBankLoan        FundingSource = "bank-loan"
	FundingInvestors       FundingSource = "investors"
	FundingCombination     FundingSource = "combination"
)

// InvestmentRange is a buyer's budget window. Min < Max is enforced at
// onboarding input, not re-validated by the scoring engine.
type InvestmentRange struct {
	Min float64 `json:"min" validate:"gte=0" yaml:"min"`
	Max float64 `json:"max" validate:"gte=0" yaml:"max"`
}

// Midpoint returns the center of the range.
func (r InvestmentRange) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// Contains reports whether price falls inside the range, boundaries inclusive.
func (r InvestmentRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

// BuyerProfile is an immutable buyer record created at onboarding completion.
type BuyerProfile struct {
	ID                    string          `json:"id" validate:"required" yaml:"id"`
	Name                  string          `json:"name" yaml:"name"`
	Industry              string          `json:"industry" validate:"required" yaml:"industry"`
	InterestedIndustries  []string        `json:"interested_industries" yaml:"interested_industries"`
	InvestmentRange       InvestmentRange `json:"investment_range" yaml:"investment_range"`
	Experience            Experience      `json:"experience" validate:"oneof=first-time experienced serial" yaml:"experience"`
	PreferredBusinessSize BusinessSize    `json:"preferred_business_size" validate:"oneof=small medium large any" yaml:"preferred_business_size"`
	Location              string          `json:"location" yaml:"location"`
	FundingSource         FundingSource   `json:"funding_source,omitempty" yaml:"funding_source,omitempty"`
	Timeline              string          `json:"timeline,omitempty" yaml:"timeline,omitempty"`
	Bio                   string          `json:"bio,omitempty" yaml:"bio,omitempty"`
}

// InterestedIn reports whether industry appears in the buyer's interest list.
func (b *BuyerProfile) InterestedIn(industry string) bool {
	for _, ind := range b.InterestedIndustries {
		if ind == industry {
			return true
		}
	}
	return false
}

// SellerProfile is an immutable seller record created at onboarding completion.
type SellerProfile struct {
	ID               string   `json:"id" validate:"required" yaml:"id"`
	BusinessName     string   `json:"business_name" validate:"min=2,max=100" yaml:"business_name"`
	Industry         string   `json:"industry" validate:"required" yaml:"industry"`
	Revenue          float64  `json:"revenue" validate:"gte=0" yaml:"revenue"`
	AskingPrice      float64  `json:"asking_price" validate:"gt=0" yaml:"asking_price"`
	Location         string   `json:"location" yaml:"location"`
	YearsInBusiness  float64  `json:"years_in_business" validate:"gte=0" yaml:"years_in_business"`
	Employees        int      `json:"employees" validate:"gte=0" yaml:"employees"`
	Description      string   `json:"description,omitempty" yaml:"description,omitempty"`
	ProfitMargin     float64  `json:"profit_margin" validate:"gte=-100,lte=100" yaml:"profit_margin"`
	ReasonForSelling string   `json:"reason_for_selling,omitempty" yaml:"reason_for_selling,omitempty"`
	Assets           []string `json:"assets,omitempty" yaml:"assets,omitempty"`
	BusinessModel    string   `json:"business_model,omitempty" yaml:"business_model,omitempty"`
}

// Profile is a tagged union over the two profile kinds. Exactly one of
// Buyer or Seller is set, matching Role.
type Profile struct {
	Role   Role           `json:"role" yaml:"role"`
	Buyer  *BuyerProfile  `json:"buyer,omitempty" yaml:"buyer,omitempty"`
	Seller *SellerProfile `json:"seller,omitempty" yaml:"seller,omitempty"`
}

// BuyerRecord wraps a buyer profile in the tagged union.
func BuyerRecord(b *BuyerProfile) Profile {
	return Profile{Role: RoleBuyer, Buyer: b}
}

// SellerRecord wraps a seller profile in the tagged union.
func SellerRecord(s *SellerProfile) Profile {
	return Profile{Role: RoleSeller, Seller: s}
}

// ID returns the identifier of whichever profile kind is set.
func (p Profile) ID() string {
	switch p.Role {
	case RoleBuyer:
		if p.Buyer != nil {
			return p.Buyer.ID
		}
	case RoleSeller:
		if p.Seller != nil {
			return p.Seller.ID
		}
	}
	return ""
}

// DisplayName returns the buyer name or seller business name.
func (p Profile) DisplayName() string {
	switch p.Role {
	case RoleBuyer:
		if p.Buyer != nil {
			return p.Buyer.Name
		}
	case RoleSeller:
		if p.Seller != nil {
			return p.Seller.BusinessName
		}
	}
	return ""
}
