package reports

import (
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// MealCount is how many portions of one meal the kitchen makes.
// Dislikes counts, per ingredient, the subscribers behind those portions who
// asked to leave it out.
type MealCount struct {
	MealID   uuid.UUID                        `json:"meal_id"`
	Name     string                           `json:"name"`
	Category enums.MealCategory               `json:"category"`
	Count    int                              `json:"count"`
	Dislikes map[enums.DislikedIngredient]int `json:"dislikes,omitempty"`

	meal  models.Meal
	known bool
}

// CategoryProduction is one category block of the production report.
type CategoryProduction struct {
	Category enums.MealCategory `json:"category"`
	Meals    []MealCount        `json:"meals"`
	Total    int                `json:"total"`
}

// Production is the per-meal cooking plan of a day.
type Production struct {
	Date       types.Date           `json:"date"`
	Categories []CategoryProduction `json:"categories"`
	Total      int                  `json:"total"`
}

// BuildProduction counts every selected meal of every served subscriber.
// Categories follow the fixed category order; meals without portions are left out.
func BuildProduction(s *Snapshot) Production {
	counts := map[uuid.UUID]*MealCount{}
	for _, sub := range s.Served() {
		dislikes := s.Subscribers[sub.SubscriberID].DislikedIngredients
		for _, p := range s.picks(sub) {
			mc, ok := counts[p.mealID]
			if !ok {
				mc = &MealCount{MealID: p.mealID, Name: p.name(), Category: p.category, meal: p.meal, known: p.known}
				counts[p.mealID] = mc
			}
			mc.Count++
			for _, ingredient := range dislikes {
				if mc.Dislikes == nil {
					mc.Dislikes = map[enums.DislikedIngredient]int{}
				}
				mc.Dislikes[ingredient]++
			}
		}
	}

	byCategory := map[enums.MealCategory][]MealCount{}
	for _, mc := range counts {
		byCategory[mc.Category] = append(byCategory[mc.Category], *mc)
	}

	less := s.mealLess()
	out := Production{Date: s.Date, Categories: []CategoryProduction{}}
	for _, category := range enums.MealCategoryOrder {
		meals := byCategory[category]
		if len(meals) == 0 {
			continue
		}
		sort.Slice(meals, func(i, j int) bool { return less(meals[i].MealID, meals[j].MealID) })
		block := CategoryProduction{Category: category, Meals: meals}
		for _, m := range meals {
			block.Total += m.Count
		}
		out.Total += block.Total
		out.Categories = append(out.Categories, block)
	}
	return out
}
