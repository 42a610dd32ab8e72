package enums

import "fmt"

// InventoryUnit is the unit an inventory item is counted in.
type InventoryUnit string

const (
	InventoryUnitKg    InventoryUnit = "kg"
	InventoryUnitGram  InventoryUnit = "g"
	InventoryUnitLiter InventoryUnit = "liter"
	InventoryUnitMl    InventoryUnit = "ml"
	InventoryUnitPiece InventoryUnit = "piece"
)

var validInventoryUnits = []InventoryUnit{
	InventoryUnitKg,
	InventoryUnitGram,
	InventoryUnitLiter,
	InventoryUnitMl,
	InventoryUnitPiece,
}

// IsValid reports whether the value is a known InventoryUnit.
func (u InventoryUnit) IsValid() bool {
	for _, candidate := range validInventoryUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// TransactionType is the direction of an inventory movement.
type TransactionType string

const (
	TransactionAdd      TransactionType = "add"
	TransactionWithdraw TransactionType = "withdraw"
)

// IsValid reports whether the value is a known TransactionType.
func (t TransactionType) IsValid() bool {
	return t == TransactionAdd || t == TransactionWithdraw
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	t := TransactionType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid inventory transaction type %q", value)
	}
	return t, nil
}
