// Package format renders profile and match values for table and API
// output.
package format

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sells-group/dealmatch/internal/model"
)

// Currency renders a dollar amount with thousands separators and no
// fraction digits, e.g. "$1,200,000".
func Currency(amount float64) string {
	neg := amount < 0
	whole := int64(math.Round(math.Abs(amount)))

	s := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

// CompactCurrency renders an amount in compact notation, e.g. "$1.2M",
// "$500K".
func CompactCurrency(amount float64) string {
	abs := math.Abs(amount)
	sign := ""
	if amount < 0 {
		sign = "-"
	}
	switch {
	case abs >= 1_000_000_000:
		return sign + "$" + trimZero(abs/1_000_000_000) + "B"
	case abs >= 1_000_000:
		return sign + "$" + trimZero(abs/1_000_000) + "M"
	case abs >= 1_000:
		return sign + "$" + trimZero(abs/1_000) + "K"
	default:
		return sign + "$" + trimZero(abs)
	}
}

// trimZero formats with one decimal place, dropping a trailing ".0".
func trimZero(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}

// Percentage renders a 0-100 value as a percent string with up to one
// decimal place, e.g. "22%", "17.5%".
func Percentage(value float64) string {
	return trimZero(value) + "%"
}

// ValuationMultiple renders asking price as a revenue multiple, e.g.
// "1.4x revenue". Zero revenue yields "N/A".
func ValuationMultiple(askingPrice, revenue float64) string {
	if revenue == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1fx revenue", askingPrice/revenue)
}

// BusinessSize labels a revenue figure with the same buckets the scorer
// uses.
func BusinessSize(revenue float64) string {
	switch {
	case revenue < 1_000_000:
		return "Small Business"
	case revenue < 10_000_000:
		return "Medium Business"
	default:
		return "Large Enterprise"
	}
}

// Experience returns the display label for a buyer experience level.
// Unknown values pass through unchanged.
func Experience(e model.Experience) string {
	switch e {
	case model.ExperienceFirstTime:
		return "First-Time Buyer"
	case model.ExperienceExperienced:
		return "Experienced Buyer"
	case model.ExperienceSerial:
		return "Serial Entrepreneur"
	default:
		return string(e)
	}
}

// FundingSource returns the display label for a funding source.
// Unknown values pass through unchanged.
func FundingSource(f model.FundingSource) string {
	switch f {
	case model.FundingPersonalSavings:
		return "Personal Savings"
	case model.FundingBankLoan:
		return "Bank Loan"
	case model.FundingInvestors:
		return "Investor Funding"
	case model.FundingCombination:
		return "Multiple Sources"
	default:
		return string(f)
	}
}

// RelativeTime renders how long ago t was relative to now, falling back
// to an absolute date past thirty days.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour") + " ago"
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day") + " ago"
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Truncate shortens text to maxLen runes, appending an ellipsis when cut.
func Truncate(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
