package enums

import "fmt"

// DislikedIngredient is one of the ingredients a subscriber can ask the kitchen to leave out.
type DislikedIngredient string

const (
	DislikedGarlic      DislikedIngredient = "garlic"
	DislikedOnion       DislikedIngredient = "onion"
	DislikedSpicy       DislikedIngredient = "spicy"
	DislikedFish        DislikedIngredient = "fish"
	DislikedMeat        DislikedIngredient = "meat"
	DislikedZucchini    DislikedIngredient = "zucchini"
	DislikedEggplant    DislikedIngredient = "eggplant"
	DislikedCabbage     DislikedIngredient = "cabbage"
	DislikedBroccoli    DislikedIngredient = "broccoli"
	DislikedCauliflower DislikedIngredient = "cauliflower"
	DislikedBeetroot    DislikedIngredient = "beetroot"
	DislikedMushroom    DislikedIngredient = "mushroom"
)

var validDislikedIngredients = []DislikedIngredient{
	DislikedGarlic,
	DislikedOnion,
	DislikedSpicy,
	DislikedFish,
	DislikedMeat,
	DislikedZucchini,
	DislikedEggplant,
	DislikedCabbage,
	DislikedBroccoli,
	DislikedCauliflower,
	DislikedBeetroot,
	DislikedMushroom,
}

// IsValid reports whether the value is a known DislikedIngredient.
func (d DislikedIngredient) IsValid() bool {
	for _, candidate := range validDislikedIngredients {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDislikedIngredient converts raw input into a DislikedIngredient.
func ParseDislikedIngredient(value string) (DislikedIngredient, error) {
	for _, candidate := range validDislikedIngredients {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid disliked ingredient %q", value)
}
