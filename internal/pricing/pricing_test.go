package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
)

func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return d
}

func ptr(d decimal.Decimal) *decimal.Decimal { return &d }

func lunchDinnerPackage(t *testing.T) models.Package {
	pkg := models.Package{ID: uuid.New(), Name: "Balanced"}
	pkg.SetPrice(enums.MealCategoryLunch, dec(t, "0.80"))
	pkg.SetPrice(enums.MealCategoryDinner, dec(t, "0.90"))
	return pkg
}

func TestCalculateWorkedExample(t *testing.T) {
	pkg := lunchDinnerPackage(t)
	codes := []models.DiscountCode{{
		ID:          uuid.New(),
		Code:        "SAVE10",
		AllPackages: true,
		Tiers:       models.DiscountTiers{Days30: ptr(dec(t, "10"))},
	}}

	q := Quote{
		PackageID:    pkg.ID,
		Composition:  []enums.MealCategory{enums.MealCategoryLunch, enums.MealCategoryDinner},
		Duration:     enums.Duration30,
		DiscountCode: "save10",
	}
	res := Calculator{}.Calculate(q, &pkg, codes)

	assert.Equal(t, "51.00", res.Subtotal.StringFixed(2))
	assert.Equal(t, "41.00", res.Final.StringFixed(2))
	assert.Equal(t, "10.00", res.Discount.StringFixed(2))
	assert.Equal(t, "SAVE10", res.AppliedCode)
}

func TestCalculateWithoutCodeIsDurationTimesDaily(t *testing.T) {
	pkg := models.Package{ID: uuid.New()}
	pkg.SetPrice(enums.MealCategoryBreakfast, dec(t, "0.65"))
	pkg.SetPrice(enums.MealCategoryLunch, dec(t, "0.80"))
	pkg.SetPrice(enums.MealCategorySoup, dec(t, "0.35"))

	compositions := [][]enums.MealCategory{
		{enums.MealCategoryLunch},
		{enums.MealCategoryLunch, enums.MealCategoryLunch},
		{enums.MealCategoryBreakfast, enums.MealCategoryLunch, enums.MealCategorySoup},
		{enums.MealCategoryDessert},
	}
	durations := []enums.Duration{enums.Duration6, enums.Duration12, enums.Duration20, enums.Duration26, enums.Duration30}

	for _, comp := range compositions {
		for _, d := range durations {
			expected := decimal.Zero
			for _, c := range comp {
				expected = expected.Add(pkg.Price(c))
			}
			expected = expected.Mul(decimal.NewFromInt(int64(d))).Round(2)

			res := Calculator{}.Calculate(Quote{PackageID: pkg.ID, Composition: comp, Duration: d}, &pkg, nil)
			assert.Truef(t, expected.Equal(res.Final), "composition %v duration %d: want %s got %s", comp, d, expected, res.Final)
			assert.True(t, res.Discount.IsZero())
		}
	}
}

func TestRepeatedCategoryChargedPerOccurrence(t *testing.T) {
	pkg := lunchDinnerPackage(t)
	daily := DailyPrice(pkg, []enums.MealCategory{enums.MealCategoryLunch, enums.MealCategoryLunch, enums.MealCategoryDinner})
	assert.Equal(t, "2.50", daily.StringFixed(2))
}

func TestDiscountFallbacks(t *testing.T) {
	pkg := lunchDinnerPackage(t)
	other := uuid.New()
	codes := []models.DiscountCode{
		{Code: "TIER20", AllPackages: true, Tiers: models.DiscountTiers{Days20: ptr(dec(t, "5"))}},
		{Code: "OTHERPKG", PackageIDs: []uuid.UUID{other}, Tiers: models.DiscountTiers{Days30: ptr(dec(t, "5"))}},
		{Code: "MINE", PackageIDs: []uuid.UUID{pkg.ID}, Tiers: models.DiscountTiers{Days30: ptr(dec(t, "7.5"))}},
		{Code: "ZERO", AllPackages: true, Tiers: models.DiscountTiers{Days26: ptr(decimal.Zero)}},
	}
	comp := []enums.MealCategory{enums.MealCategoryLunch, enums.MealCategoryDinner}

	tests := []struct {
		name     string
		code     string
		duration enums.Duration
		final    string
		applied  string
	}{
		{name: "unknown code", code: "NOPE", duration: enums.Duration30, final: "51.00"},
		{name: "no tier for duration", code: "TIER20", duration: enums.Duration30, final: "51.00"},
		{name: "tier matches", code: "TIER20", duration: enums.Duration20, final: "29.00", applied: "TIER20"},
		{name: "six days never discounted", code: "TIER20", duration: enums.Duration6, final: "10.20"},
		{name: "package not in set", code: "OTHERPKG", duration: enums.Duration30, final: "51.00"},
		{name: "package in set", code: " mine ", duration: enums.Duration30, final: "43.50", applied: "MINE"},
		{name: "zero tier is no discount", code: "ZERO", duration: enums.Duration26, final: "44.20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Calculator{}.Calculate(Quote{PackageID: pkg.ID, Composition: comp, Duration: tt.duration, DiscountCode: tt.code}, &pkg, codes)
			assert.Equal(t, tt.final, res.Final.StringFixed(2))
			assert.Equal(t, tt.applied, res.AppliedCode)
		})
	}
}

func TestDiscountFloorsAtZero(t *testing.T) {
	pkg := lunchDinnerPackage(t)
	codes := []models.DiscountCode{{Code: "FREE", AllPackages: true, Tiers: models.DiscountTiers{Days26: ptr(dec(t, "1000"))}}}
	res := Calculator{}.Calculate(Quote{
		PackageID:    pkg.ID,
		Composition:  []enums.MealCategory{enums.MealCategoryLunch},
		Duration:     enums.Duration26,
		DiscountCode: "free",
	}, &pkg, codes)

	assert.True(t, res.Final.IsZero())
	assert.Equal(t, res.Subtotal.String(), res.Discount.String())
}

func TestMissingPackagePricesAtZero(t *testing.T) {
	res := Calculator{}.Calculate(Quote{Duration: enums.Duration30, Composition: []enums.MealCategory{enums.MealCategoryLunch}}, nil, nil)
	assert.True(t, res.Final.IsZero())
}

func TestForSubscriptionUsesStoredCode(t *testing.T) {
	pkg := lunchDinnerPackage(t)
	code := "save10"
	sub := models.Subscription{
		PackageID:    pkg.ID,
		Composition:  []enums.MealCategory{enums.MealCategoryLunch, enums.MealCategoryDinner},
		Duration:     enums.Duration30,
		DiscountCode: &code,
	}
	codes := []models.DiscountCode{{Code: "SAVE10", AllPackages: true, Tiers: models.DiscountTiers{Days30: ptr(dec(t, "10"))}}}

	res := NewCalculator(3).ForSubscription(sub, []models.Package{pkg}, codes)
	assert.Equal(t, "41.000", res.Final.StringFixed(3))
}

func TestRoundingPlaces(t *testing.T) {
	pkg := models.Package{ID: uuid.New()}
	pkg.SetPrice(enums.MealCategorySalad, dec(t, "0.333"))
	res := NewCalculator(2).Calculate(Quote{PackageID: pkg.ID, Composition: []enums.MealCategory{enums.MealCategorySalad}, Duration: enums.Duration6}, &pkg, nil)
	assert.Equal(t, "2", res.Final.String())
	res = NewCalculator(1).Calculate(Quote{PackageID: pkg.ID, Composition: []enums.MealCategory{enums.MealCategorySalad}, Duration: enums.Duration6}, &pkg, nil)
	assert.Equal(t, "2", res.Final.String())
	res = NewCalculator(3).Calculate(Quote{PackageID: pkg.ID, Composition: []enums.MealCategory{enums.MealCategorySalad}, Duration: enums.Duration6}, &pkg, nil)
	assert.Equal(t, "1.998", res.Final.String())
}
