package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/angelmondragon/mealprep-backend/pkg/enums"
)

// Area is a delivery zone.
type Area struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// DriverAssignment is the set of areas a driver covers in one shift.
type DriverAssignment struct {
	Shift   enums.DeliveryShift `json:"shift"`
	AreaIDs []uuid.UUID         `json:"area_ids"`
}

// Covers reports whether the assignment serves area during shift.
func (a DriverAssignment) Covers(areaID uuid.UUID, shift enums.DeliveryShift) bool {
	if a.Shift != shift {
		return false
	}
	for _, id := range a.AreaIDs {
		if id == areaID {
			return true
		}
	}
	return false
}

// Driver is a courier. Position fixes roster order.
type Driver struct {
	ID          uuid.UUID                             `gorm:"column:id;type:uuid;primaryKey"`
	Name        string                                `gorm:"column:name;not null"`
	Position    int                                   `gorm:"column:position;not null;index"`
	Assignments datatypes.JSONSlice[DriverAssignment] `gorm:"column:assignments"`
	CreatedAt   time.Time                             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                             `gorm:"column:updated_at;autoUpdateTime"`
}

// References reports whether any assignment includes area.
func (d Driver) References(areaID uuid.UUID) bool {
	for _, a := range d.Assignments {
		for _, id := range a.AreaIDs {
			if id == areaID {
				return true
			}
		}
	}
	return false
}
