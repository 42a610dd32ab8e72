package reports

import (
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// PackedMeal is one meal in a subscriber's bag.
type PackedMeal struct {
	MealID uuid.UUID `json:"meal_id"`
	Name   string    `json:"name"`
	Count  int       `json:"count"`
}

// PackedCategory groups a bag's meals by category.
type PackedCategory struct {
	Category enums.MealCategory `json:"category"`
	Meals    []PackedMeal       `json:"meals"`
}

// PackingEntry is the bag of one served subscriber.
type PackingEntry struct {
	SubscriberID uuid.UUID                  `json:"subscriber_id"`
	Name         string                     `json:"name"`
	Phone        string                     `json:"phone"`
	PackageID    uuid.UUID                  `json:"package_id"`
	PackageName  string                     `json:"package_name"`
	Shift        enums.DeliveryShift        `json:"shift"`
	Dislikes     []enums.DislikedIngredient `json:"dislikes"`
	Categories   []PackedCategory           `json:"categories"`
	Total        int                        `json:"total"`
}

// PackingList is the bagging sheet of a day.
type PackingList struct {
	Date    types.Date     `json:"date"`
	Entries []PackingEntry `json:"entries"`
}

// BuildPackingList lists every served subscriber, with or without picks,
// ordered by name. Meals inside a bag follow the fixed category order.
func BuildPackingList(s *Snapshot) PackingList {
	out := PackingList{Date: s.Date, Entries: []PackingEntry{}}
	less := s.mealLess()

	for _, sub := range s.Served() {
		subscriber := s.Subscribers[sub.SubscriberID]
		entry := PackingEntry{
			SubscriberID: sub.SubscriberID,
			Name:         subscriber.Name,
			Phone:        subscriber.Phone,
			PackageID:    sub.PackageID,
			PackageName:  s.packageName(sub.PackageID),
			Shift:        sub.DeliveryShift,
			Dislikes:     append([]enums.DislikedIngredient{}, subscriber.DislikedIngredients...),
			Categories:   []PackedCategory{},
		}

		grouped := map[enums.MealCategory]map[uuid.UUID]*PackedMeal{}
		for _, p := range s.picks(sub) {
			if grouped[p.category] == nil {
				grouped[p.category] = map[uuid.UUID]*PackedMeal{}
			}
			meal := grouped[p.category][p.mealID]
			if meal == nil {
				meal = &PackedMeal{MealID: p.mealID, Name: p.name()}
				grouped[p.category][p.mealID] = meal
			}
			meal.Count++
			entry.Total++
		}
		for _, category := range enums.MealCategoryOrder {
			if len(grouped[category]) == 0 {
				continue
			}
			pc := PackedCategory{Category: category}
			for _, meal := range grouped[category] {
				pc.Meals = append(pc.Meals, *meal)
			}
			sort.Slice(pc.Meals, func(i, j int) bool { return less(pc.Meals[i].MealID, pc.Meals[j].MealID) })
			entry.Categories = append(entry.Categories, pc)
		}
		out.Entries = append(out.Entries, entry)
	}

	sort.SliceStable(out.Entries, func(i, j int) bool {
		a, b := out.Entries[i], out.Entries[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.SubscriberID.String() < b.SubscriberID.String()
	})
	return out
}
