package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// LedgerEntry records money leaving the business: an expense, a supplier
// invoice payment or a partner withdrawal.
type LedgerEntry struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Type        enums.LedgerEntryType `gorm:"column:type;type:text;not null;index" json:"type"`
	Amount      decimal.Decimal       `gorm:"column:amount;type:numeric(12,3);not null" json:"amount"`
	Date        types.Date            `gorm:"column:date;not null;index" json:"date"`
	Description string                `gorm:"column:description;not null;default:''" json:"description"`
	Reference   string                `gorm:"column:reference;not null;default:''" json:"reference"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
