// Package dispatch matches subscribers to drivers by delivery area and shift.
//
// Overlapping coverage is allowed: when several drivers cover the same area
// and shift, the one listed first in the roster serves it.
package dispatch

import (
	"sort"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
)

// VacuumShift is the shift every vacuum order ships on.
const VacuumShift = enums.DeliveryShiftMorning

// Assignment is the driver and shift serving a delivery.
type Assignment struct {
	DriverID   uuid.UUID           `json:"driver_id"`
	DriverName string              `json:"driver_name"`
	Shift      enums.DeliveryShift `json:"shift"`
}

// SortRoster orders drivers by roster position, breaking ties by creation time then id.
func SortRoster(drivers []models.Driver) {
	sort.SliceStable(drivers, func(i, j int) bool {
		a, b := drivers[i], drivers[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// Resolve scans drivers in the given order and returns the first one with an
// assignment covering area during shift.
func Resolve(drivers []models.Driver, areaID uuid.UUID, shift enums.DeliveryShift) (Assignment, bool) {
	for _, driver := range drivers {
		for _, assignment := range driver.Assignments {
			if assignment.Covers(areaID, shift) {
				return Assignment{DriverID: driver.ID, DriverName: driver.Name, Shift: shift}, true
			}
		}
	}
	return Assignment{}, false
}

// ForSubscription resolves using the subscription's own area and shift.
func ForSubscription(sub models.Subscription, drivers []models.Driver) (Assignment, bool) {
	return Resolve(drivers, sub.AreaID, sub.DeliveryShift)
}

// ForVacuumOrder resolves a vacuum delivery to area, always on the morning shift.
func ForVacuumOrder(areaID uuid.UUID, drivers []models.Driver) (Assignment, bool) {
	return Resolve(drivers, areaID, VacuumShift)
}
