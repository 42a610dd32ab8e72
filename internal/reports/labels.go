package reports

import (
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/internal/catalog"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// ShelfLifeDays is how long a cooked meal keeps.
const ShelfLifeDays = 1

// ExpiryLabel is printed on one container.
type ExpiryLabel struct {
	MealID     uuid.UUID          `json:"meal_id"`
	Name       string             `json:"name"`
	Category   enums.MealCategory `json:"category"`
	Macros     catalog.MacrosDTO  `json:"macros"`
	ProducedOn types.Date         `json:"produced_on"`
	ExpiresOn  types.Date         `json:"expires_on"`
}

// BuildExpiryLabels explodes the production counts into one label per portion.
func BuildExpiryLabels(s *Snapshot) []ExpiryLabel {
	production := BuildProduction(s)
	out := make([]ExpiryLabel, 0, production.Total)
	for _, block := range production.Categories {
		for _, mc := range block.Meals {
			label := ExpiryLabel{
				MealID:     mc.MealID,
				Name:       mc.Name,
				Category:   mc.Category,
				ProducedOn: s.Date,
				ExpiresOn:  s.Date.AddDays(ShelfLifeDays),
			}
			if mc.known {
				label.Macros = catalog.MacrosToDTO(mc.meal.Macros)
			}
			for i := 0; i < mc.Count; i++ {
				out = append(out, label)
			}
		}
	}
	return out
}

// DeliveryLabel is stuck on one subscriber's bag.
type DeliveryLabel struct {
	SubscriberID uuid.UUID           `json:"subscriber_id"`
	Name         string              `json:"name"`
	Phone        string              `json:"phone"`
	Address      string              `json:"address"`
	PackageName  string              `json:"package_name"`
	AreaName     string              `json:"area_name"`
	Shift        enums.DeliveryShift `json:"shift"`
	StartDate    types.Date          `json:"start_date"`
	EndDate      types.Date          `json:"end_date"`
	MealsPerDay  int                 `json:"meals_per_day"`
}

// BuildDeliveryLabels emits one label per served subscriber, ordered by area,
// shift and name.
func BuildDeliveryLabels(s *Snapshot) []DeliveryLabel {
	served := s.Served()
	out := make([]DeliveryLabel, 0, len(served))
	for _, sub := range served {
		subscriber := s.Subscribers[sub.SubscriberID]
		out = append(out, DeliveryLabel{
			SubscriberID: sub.SubscriberID,
			Name:         subscriber.Name,
			Phone:        subscriber.Phone,
			Address:      subscriber.Address.Label(),
			PackageName:  s.packageName(sub.PackageID),
			AreaName:     s.areaName(sub.AreaID),
			Shift:        sub.DeliveryShift,
			StartDate:    sub.StartDate,
			EndDate:      sub.EndDate(),
			MealsPerDay:  len(sub.Composition),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AreaName != b.AreaName {
			return a.AreaName < b.AreaName
		}
		if a.Shift != b.Shift {
			return a.Shift < b.Shift
		}
		return a.Name < b.Name
	})
	return out
}
