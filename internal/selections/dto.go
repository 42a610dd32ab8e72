package selections

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/internal/catalog"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// SlotView is one slot of the day with its current pick and the menu options for its category.
type SlotView struct {
	Slot
	MealID  *uuid.UUID        `json:"meal_id,omitempty"`
	Meal    *catalog.MealDTO  `json:"meal,omitempty"`
	Options []catalog.MealDTO `json:"options"`
}

// DayView is a subscriber's day as the selection screen needs it.
type DayView struct {
	SubscriberID uuid.UUID         `json:"subscriber_id"`
	Date         types.Date        `json:"date"`
	State        State             `json:"state"`
	Required     int               `json:"required"`
	Selected     int               `json:"selected"`
	Selections   types.Selections  `json:"selections"`
	Slots        []SlotView        `json:"slots"`
	Nutrition    catalog.MacrosDTO `json:"nutrition"`
}

// SelectInput toggles one meal in one slot.
type SelectInput struct {
	SlotKey string    `json:"slot_key" validate:"required"`
	MealID  uuid.UUID `json:"meal_id" validate:"required"`
}

// SaveInput replaces the whole day's selections.
type SaveInput struct {
	Selections map[string]uuid.UUID `json:"selections"`
}
