package selections

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// State is the completeness of one subscriber's day.
type State string

const (
	StatePaused    State = "PAUSED"
	StateSelecting State = "SELECTING"
	StateComplete  State = "COMPLETE"
)

// Slot is one occurrence of a category in the daily composition.
type Slot struct {
	Key      string             `json:"key"`
	Category enums.MealCategory `json:"category"`
	Index    int                `json:"index"`
}

// SlotKey builds the key of the index-th occurrence of category, e.g. "lunch-1".
func SlotKey(category enums.MealCategory, index int) string {
	return fmt.Sprintf("%s-%d", category, index)
}

// ParseSlotKey splits a slot key into its category and occurrence index.
func ParseSlotKey(key string) (enums.MealCategory, int, error) {
	sep := strings.LastIndex(key, "-")
	if sep <= 0 || sep == len(key)-1 {
		return "", 0, fmt.Errorf("invalid slot key %q", key)
	}
	category, err := enums.ParseMealCategory(key[:sep])
	if err != nil {
		return "", 0, fmt.Errorf("invalid slot key %q: %w", key, err)
	}
	index, err := strconv.Atoi(key[sep+1:])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("invalid slot key %q", key)
	}
	return category, index, nil
}

// Slots enumerates the slots of a composition in composition order.
func Slots(composition []enums.MealCategory) []Slot {
	seen := make(map[enums.MealCategory]int, len(composition))
	slots := make([]Slot, 0, len(composition))
	for _, category := range composition {
		idx := seen[category]
		seen[category] = idx + 1
		slots = append(slots, Slot{Key: SlotKey(category, idx), Category: category, Index: idx})
	}
	return slots
}

// SlotKeys is Slots reduced to the keys.
func SlotKeys(composition []enums.MealCategory) []string {
	slots := Slots(composition)
	keys := make([]string, len(slots))
	for i, s := range slots {
		keys[i] = s.Key
	}
	return keys
}

// FindSlot returns the slot with key in the composition.
func FindSlot(composition []enums.MealCategory, key string) (Slot, bool) {
	for _, s := range Slots(composition) {
		if s.Key == key {
			return s, true
		}
	}
	return Slot{}, false
}

// Select toggles mealID in slotKey: choosing the meal already in the slot
// clears it, anything else overwrites. The input map is not modified.
func Select(sel types.Selections, slotKey string, mealID uuid.UUID) types.Selections {
	next := sel.Clone()
	if current, ok := next[slotKey]; ok && current == mealID {
		delete(next, slotKey)
		return next
	}
	next[slotKey] = mealID
	return next
}

// DayState derives the completeness of date. A paused date is PAUSED whatever
// has been selected.
func DayState(sub models.Subscription, date types.Date, sel types.Selections) State {
	if sub.IsPaused(date) {
		return StatePaused
	}
	if Filled(sub.Composition, sel) < len(sub.Composition) {
		return StateSelecting
	}
	return StateComplete
}

// Filled counts the selections that land on a slot of the composition.
func Filled(composition []enums.MealCategory, sel types.Selections) int {
	n := 0
	for _, key := range SlotKeys(composition) {
		if _, ok := sel[key]; ok {
			n++
		}
	}
	return n
}

// NutritionTotals sums the macros of every selected meal. Meals missing from
// the catalog contribute nothing.
func NutritionTotals(sel types.Selections, meals map[uuid.UUID]models.Meal) models.Macros {
	var total models.Macros
	for _, id := range sel {
		if meal, ok := meals[id]; ok {
			total = total.Add(meal.Macros)
		}
	}
	return total
}
