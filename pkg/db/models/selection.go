package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// MealSelection holds one subscriber's picks for one day. A row exists only while at least one slot is filled.
type MealSelection struct {
	SubscriberID uuid.UUID        `gorm:"column:subscriber_id;type:uuid;primaryKey"`
	Date         types.Date       `gorm:"column:date;primaryKey"`
	Selections   types.Selections `gorm:"column:selections;not null"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// DeliveryRecord marks a subscriber's delivery state for a day.
type DeliveryRecord struct {
	SubscriberID uuid.UUID            `gorm:"column:subscriber_id;type:uuid;primaryKey"`
	Date         types.Date           `gorm:"column:date;primaryKey"`
	Status       enums.DeliveryStatus `gorm:"column:status;type:text;not null"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
