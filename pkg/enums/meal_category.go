package enums

import (
	"fmt"
	"strings"
)

// MealCategory groups meals on the menu and in a subscriber's daily composition.
type MealCategory string

const (
	MealCategoryBreakfast MealCategory = "breakfast"
	MealCategoryLunch     MealCategory = "lunch"
	MealCategoryDinner    MealCategory = "dinner"
	MealCategorySalad     MealCategory = "salad"
	MealCategoryDessert   MealCategory = "dessert"
	MealCategorySoup      MealCategory = "soup"
)

// MealCategoryOrder is the fixed display order used by every kitchen report.
var MealCategoryOrder = []MealCategory{
	MealCategoryBreakfast,
	MealCategoryLunch,
	MealCategoryDinner,
	MealCategorySalad,
	MealCategoryDessert,
	MealCategorySoup,
}

// String implements fmt.Stringer.
func (c MealCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known MealCategory.
func (c MealCategory) IsValid() bool {
	return c.Rank() >= 0
}

// Rank returns the position of the category in MealCategoryOrder, or -1.
func (c MealCategory) Rank() int {
	for i, candidate := range MealCategoryOrder {
		if candidate == c {
			return i
		}
	}
	return -1
}

// ParseMealCategory converts raw input into a MealCategory.
func ParseMealCategory(value string) (MealCategory, error) {
	normalized := MealCategory(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid meal category %q", value)
}
