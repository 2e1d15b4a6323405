// Package pricing turns a base amount and a discount percentage into the
// final amount charged for a reservation.
//
// All rounding is half-to-even (banker's rounding) to 2 decimal places, the
// same rule applied to every monetary and hours value in the service.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stayandpark/service-frontdesk/internal/domain"
)

// Places is the number of fractional digits kept for amounts and percentages.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round applies the service-wide rounding rule.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Places)
}

// ComputeFinalAmount returns base minus base*discountPercent/100.
// The discount amount is rounded before it is subtracted, then the result is
// rounded again. A negative base or a percentage outside [0, 100] is rejected,
// so the final amount always lies in [0, base].
func ComputeFinalAmount(base, discountPercent decimal.Decimal) (decimal.Decimal, error) {
	if base.IsNegative() {
		return decimal.Zero, domain.NewValidationError("base amount must not be negative")
	}
	if err := ValidatePercent(discountPercent); err != nil {
		return decimal.Zero, err
	}
	return Round(base.Sub(DiscountAmount(base, discountPercent))), nil
}

// ValidatePercent rejects a discount percentage outside [0, 100].
func ValidatePercent(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return domain.NewValidationError("discount percent must be between 0 and 100")
	}
	return nil
}

// DiscountAmount returns the rounded amount removed from base.
func DiscountAmount(base, discountPercent decimal.Decimal) decimal.Decimal {
	return Round(base.Mul(discountPercent).Div(hundred))
}

// ParseAmount parses a caller-supplied monetary value.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := parse(raw, "amount")
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, domain.NewValidationError("amount must not be negative")
	}
	return d, nil
}

// ParsePercent parses a caller-supplied discount percentage. An empty value
// means no discount.
func ParsePercent(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	d, err := parse(raw, "discount percent")
	if err != nil {
		return decimal.Zero, err
	}
	if err := ValidatePercent(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

func parse(raw, field string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, domain.NewValidationError(field + " is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field + " is not a valid number")
	}
	return d, nil
}
