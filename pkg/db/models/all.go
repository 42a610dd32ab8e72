package models

// All lists every persisted model, in dependency order, for sqlite auto-migration.
func All() []any {
	return []any{
		&Package{},
		&DiscountCode{},
		&Area{},
		&Driver{},
		&Meal{},
		&MenuItem{},
		&Subscriber{},
		&Subscription{},
		&MealSelection{},
		&DeliveryRecord{},
		&VacuumPackage{},
		&Marinade{},
		&VacuumOrder{},
		&InventoryItem{},
		&InventoryTransaction{},
		&LedgerEntry{},
	}
}
