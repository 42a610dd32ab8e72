package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/angelmondragon/mealprep-backend/pkg/enums"
)

// DiscountTiers holds the fixed discount for each duration that can carry one.
// Durations outside this set (6 and 12 days) never receive a discount.
type DiscountTiers struct {
	Days20 *decimal.Decimal `gorm:"column:days_20;type:numeric(12,3)"`
	Days26 *decimal.Decimal `gorm:"column:days_26;type:numeric(12,3)"`
	Days30 *decimal.Decimal `gorm:"column:days_30;type:numeric(12,3)"`
}

// For returns the discount configured for d, if any. A zero amount counts as no tier.
func (t DiscountTiers) For(d enums.Duration) (decimal.Decimal, bool) {
	var amount *decimal.Decimal
	switch d {
	case enums.Duration20:
		amount = t.Days20
	case enums.Duration26:
		amount = t.Days26
	case enums.Duration30:
		amount = t.Days30
	}
	if amount == nil || amount.IsZero() {
		return decimal.Zero, false
	}
	return *amount, true
}

// DiscountCode is a promo code. Code is stored upper-cased so lookups are case-insensitive.
type DiscountCode struct {
	ID          uuid.UUID                      `gorm:"column:id;type:uuid;primaryKey"`
	Code        string                         `gorm:"column:code;not null;uniqueIndex"`
	Tiers       DiscountTiers                  `gorm:"embedded;embeddedPrefix:tier_"`
	AllPackages bool                           `gorm:"column:all_packages;not null"`
	PackageIDs  datatypes.JSONSlice[uuid.UUID] `gorm:"column:package_ids"`
	CreatedAt   time.Time                      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                      `gorm:"column:updated_at;autoUpdateTime"`
}

// AppliesTo reports whether the code can be used with the package.
func (d DiscountCode) AppliesTo(packageID uuid.UUID) bool {
	if d.AllPackages {
		return true
	}
	for _, id := range d.PackageIDs {
		if id == packageID {
			return true
		}
	}
	return false
}
