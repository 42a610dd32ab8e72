package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// VacuumPackage is a vacuum-sealed marinated meat product sold by weight.
type VacuumPackage struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name        string               `gorm:"column:name;not null"`
	MeatType    enums.VacuumMeatType `gorm:"column:meat_type;type:text;not null"`
	WeightGrams int                  `gorm:"column:weight_grams;not null"`
	PricePerKg  decimal.Decimal      `gorm:"column:price_per_kg;type:numeric(12,3);not null"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// Marinade is a recipe applied to vacuum packages.
type Marinade struct {
	ID                 uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name               string    `gorm:"column:name;not null"`
	Description        string    `gorm:"column:description;not null;default:''"`
	Ingredients        string    `gorm:"column:ingredients;not null;default:''"`
	Instructions       string    `gorm:"column:instructions;not null;default:''"`
	RefrigerationHours int       `gorm:"column:refrigeration_hours;not null;default:0"`
	CookingMethod      string    `gorm:"column:cooking_method;not null;default:''"`
	CookingTime        string    `gorm:"column:cooking_time;not null;default:''"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime"`
}

// VacuumOrderItem is one line of a vacuum order.
type VacuumOrderItem struct {
	PackageID  uuid.UUID       `json:"package_id"`
	MarinadeID uuid.UUID       `json:"marinade_id"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
}

// VacuumOrder is a one-off order on the vacuum product line.
type VacuumOrder struct {
	ID              uuid.UUID                            `gorm:"column:id;type:uuid;primaryKey"`
	SubscriberID    uuid.UUID                            `gorm:"column:subscriber_id;type:uuid;not null;index"`
	SubscriberName  string                               `gorm:"column:subscriber_name;not null"`
	OrderDate       types.Date                           `gorm:"column:order_date;not null;index"`
	DeliveryDate    types.Date                           `gorm:"column:delivery_date;not null;index"`
	Items           datatypes.JSONSlice[VacuumOrderItem] `gorm:"column:items;not null"`
	TotalPrice      decimal.Decimal                      `gorm:"column:total_price;type:numeric(12,3);not null"`
	PaymentMethod   enums.PaymentMethod                  `gorm:"column:payment_method;type:text;not null"`
	Status          enums.VacuumOrderStatus              `gorm:"column:status;type:text;not null;default:'pending'"`
	DeliveryAddress types.Address                        `gorm:"column:delivery_address;not null"`
	CreatedAt       time.Time                            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time                            `gorm:"column:updated_at;autoUpdateTime"`
}
