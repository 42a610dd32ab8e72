package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// InventoryItem is a stocked ingredient or supply.
type InventoryItem struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name      string              `gorm:"column:name;not null"`
	Unit      enums.InventoryUnit `gorm:"column:unit;type:text;not null"`
	MinStock  decimal.Decimal     `gorm:"column:min_stock;type:numeric(12,3);not null;default:0"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// InventoryTransaction is a stock movement. Balances are always derived from these rows.
type InventoryTransaction struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	ItemID    uuid.UUID             `gorm:"column:item_id;type:uuid;not null;index"`
	Type      enums.TransactionType `gorm:"column:type;type:text;not null"`
	Quantity  decimal.Decimal       `gorm:"column:quantity;type:numeric(12,3);not null"`
	Date      types.Date            `gorm:"column:date;not null"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
}
