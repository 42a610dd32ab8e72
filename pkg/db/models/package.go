package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mealprep-backend/pkg/enums"
)

// Package is a priced meal plan. Each category carries its own per-unit daily price.
type Package struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name           string          `gorm:"column:name;not null"`
	Description    string          `gorm:"column:description;not null;default:''"`
	PriceBreakfast decimal.Decimal `gorm:"column:price_breakfast;type:numeric(12,3);not null;default:0"`
	PriceLunch     decimal.Decimal `gorm:"column:price_lunch;type:numeric(12,3);not null;default:0"`
	PriceDinner    decimal.Decimal `gorm:"column:price_dinner;type:numeric(12,3);not null;default:0"`
	PriceSalad     decimal.Decimal `gorm:"column:price_salad;type:numeric(12,3);not null;default:0"`
	PriceDessert   decimal.Decimal `gorm:"column:price_dessert;type:numeric(12,3);not null;default:0"`
	PriceSoup      decimal.Decimal `gorm:"column:price_soup;type:numeric(12,3);not null;default:0"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Price returns the daily unit price for a category; unknown categories cost nothing.
func (p Package) Price(category enums.MealCategory) decimal.Decimal {
	switch category {
	case enums.MealCategoryBreakfast:
		return p.PriceBreakfast
	case enums.MealCategoryLunch:
		return p.PriceLunch
	case enums.MealCategoryDinner:
		return p.PriceDinner
	case enums.MealCategorySalad:
		return p.PriceSalad
	case enums.MealCategoryDessert:
		return p.PriceDessert
	case enums.MealCategorySoup:
		return p.PriceSoup
	default:
		return decimal.Zero
	}
}

// SetPrice assigns the daily unit price for a category.
func (p *Package) SetPrice(category enums.MealCategory, price decimal.Decimal) {
	switch category {
	case enums.MealCategoryBreakfast:
		p.PriceBreakfast = price
	case enums.MealCategoryLunch:
		p.PriceLunch = price
	case enums.MealCategoryDinner:
		p.PriceDinner = price
	case enums.MealCategorySalad:
		p.PriceSalad = price
	case enums.MealCategoryDessert:
		p.PriceDessert = price
	case enums.MealCategorySoup:
		p.PriceSoup = price
	}
}
