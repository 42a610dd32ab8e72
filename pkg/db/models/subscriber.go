package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// Subscriber is a customer account. A subscriber owns at most one subscription,
// linked through Subscription.SubscriberID.
type Subscriber struct {
	ID                  uuid.UUID                                     `gorm:"column:id;type:uuid;primaryKey"`
	Name                string                                        `gorm:"column:name;not null"`
	Phone               string                                        `gorm:"column:phone;not null;uniqueIndex"`
	Address             types.Address                                 `gorm:"column:address;not null"`
	DislikedIngredients datatypes.JSONSlice[enums.DislikedIngredient] `gorm:"column:disliked_ingredients"`
	FavoriteMealIDs     datatypes.JSONSlice[uuid.UUID]                `gorm:"column:favorite_meal_ids"`
	CreatedAt           time.Time                                     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                                     `gorm:"column:updated_at;autoUpdateTime"`
}

// Subscription is the fulfillment contract: what is delivered, from when, for how long and where.
type Subscription struct {
	ID                 uuid.UUID                               `gorm:"column:id;type:uuid;primaryKey"`
	SubscriberID       uuid.UUID                               `gorm:"column:subscriber_id;type:uuid;not null;uniqueIndex"`
	PackageID          uuid.UUID                               `gorm:"column:package_id;type:uuid;not null;index"`
	Composition        datatypes.JSONSlice[enums.MealCategory] `gorm:"column:composition;not null"`
	StartDate          types.Date                              `gorm:"column:start_date;not null"`
	Duration           enums.Duration                          `gorm:"column:duration_days;not null"`
	Status             enums.SubscriptionStatus                `gorm:"column:status;type:text;not null;default:'active'"`
	PaymentDate        types.Date                              `gorm:"column:payment_date;not null"`
	PaymentMethod      enums.PaymentMethod                     `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus      enums.PaymentStatus                     `gorm:"column:payment_status;type:text;not null"`
	DiscountCode       *string                                 `gorm:"column:discount_code"`
	DeliveryShift      enums.DeliveryShift                     `gorm:"column:delivery_shift;type:text;not null"`
	AreaID             uuid.UUID                               `gorm:"column:area_id;type:uuid;not null;index"`
	PausedDays         datatypes.JSONSlice[types.Date]         `gorm:"column:paused_days"`
	PauseDaysAvailable int                                     `gorm:"column:pause_days_available;not null"`
	Version            int                                     `gorm:"column:version;not null;default:1"`
	CreatedAt          time.Time                               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                               `gorm:"column:updated_at;autoUpdateTime"`
}

// EndDate is the first day after the subscription window.
func (s Subscription) EndDate() types.Date {
	return s.StartDate.AddDays(s.Duration.Days())
}

// IsPaused reports whether deliveries are paused on d.
func (s Subscription) IsPaused(d types.Date) bool {
	for _, day := range s.PausedDays {
		if day == d {
			return true
		}
	}
	return false
}
