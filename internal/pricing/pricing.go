// Package pricing computes subscription prices from a package's per-category
// daily prices, the daily composition, the duration and an optional discount code.
package pricing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
)

// DefaultDecimalPlaces is the rounding applied when a Calculator has none configured.
const DefaultDecimalPlaces int32 = 2

// Quote is the pricing input for a candidate or existing subscription.
type Quote struct {
	PackageID    uuid.UUID
	Composition  []enums.MealCategory
	Duration     enums.Duration
	DiscountCode string
}

// Result is the priced breakdown. Discount is the amount actually taken off,
// never more than Subtotal.
type Result struct {
	DailyPrice  decimal.Decimal
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	Final       decimal.Decimal
	AppliedCode string
}

// Calculator prices quotes. The zero value rounds to DefaultDecimalPlaces.
type Calculator struct {
	places int32
	set    bool
}

// NewCalculator returns a Calculator rounding results to places decimals.
func NewCalculator(places int32) Calculator {
	if places < 0 {
		places = DefaultDecimalPlaces
	}
	return Calculator{places: places, set: true}
}

func (c Calculator) decimalPlaces() int32 {
	if !c.set {
		return DefaultDecimalPlaces
	}
	return c.places
}

// Calculate prices q against pkg and the known discount codes. A nil package
// prices at zero. Unknown, inapplicable or tier-less codes leave the subtotal untouched.
func (c Calculator) Calculate(q Quote, pkg *models.Package, codes []models.DiscountCode) Result {
	places := c.decimalPlaces()
	if pkg == nil {
		return Result{
			DailyPrice: decimal.Zero,
			Subtotal:   decimal.Zero,
			Discount:   decimal.Zero,
			Final:      decimal.Zero,
		}
	}

	daily := DailyPrice(*pkg, q.Composition)
	subtotal := daily.Mul(decimal.NewFromInt(int64(q.Duration.Days())))

	result := Result{
		DailyPrice: daily.Round(places),
		Subtotal:   subtotal.Round(places),
		Discount:   decimal.Zero,
		Final:      subtotal.Round(places),
	}

	code, ok := FindCode(codes, q.DiscountCode)
	if !ok || !code.AppliesTo(pkg.ID) {
		return result
	}
	amount, ok := code.Tiers.For(q.Duration)
	if !ok {
		return result
	}

	final := subtotal.Sub(amount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	result.Final = final.Round(places)
	result.Discount = result.Subtotal.Sub(result.Final)
	result.AppliedCode = code.Code
	return result
}

// ForSubscription prices an existing subscription using the package it references.
func (c Calculator) ForSubscription(sub models.Subscription, packages []models.Package, codes []models.DiscountCode) Result {
	q := Quote{
		PackageID:   sub.PackageID,
		Composition: sub.Composition,
		Duration:    sub.Duration,
	}
	if sub.DiscountCode != nil {
		q.DiscountCode = *sub.DiscountCode
	}
	return c.Calculate(q, FindPackage(packages, sub.PackageID), codes)
}

// DailyPrice sums the package price of every category in the composition.
// Repeated categories are charged once per occurrence.
func DailyPrice(pkg models.Package, composition []enums.MealCategory) decimal.Decimal {
	total := decimal.Zero
	for _, category := range composition {
		total = total.Add(pkg.Price(category))
	}
	return total
}

// FindCode looks a code up case-insensitively.
func FindCode(codes []models.DiscountCode, raw string) (models.DiscountCode, bool) {
	needle := NormalizeCode(raw)
	if needle == "" {
		return models.DiscountCode{}, false
	}
	for _, code := range codes {
		if NormalizeCode(code.Code) == needle {
			return code, true
		}
	}
	return models.DiscountCode{}, false
}

// NormalizeCode is the canonical stored form of a discount code.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// FindPackage returns the package with id, or nil.
func FindPackage(packages []models.Package, id uuid.UUID) *models.Package {
	for i := range packages {
		if packages[i].ID == id {
			return &packages[i]
		}
	}
	return nil
}
