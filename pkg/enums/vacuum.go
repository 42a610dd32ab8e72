package enums

import "fmt"

// VacuumMeatType is the protein a vacuum package contains.
type VacuumMeatType string

const (
	VacuumMeatChicken VacuumMeatType = "chicken"
	VacuumMeatBeef    VacuumMeatType = "beef"
)

// IsValid reports whether the value is a known VacuumMeatType.
func (t VacuumMeatType) IsValid() bool {
	return t == VacuumMeatChicken || t == VacuumMeatBeef
}

// VacuumOrderStatus tracks a vacuum order through the kitchen.
type VacuumOrderStatus string

const (
	VacuumOrderPending   VacuumOrderStatus = "pending"
	VacuumOrderPreparing VacuumOrderStatus = "preparing"
	VacuumOrderDelivered VacuumOrderStatus = "delivered"
)

var validVacuumOrderStatuses = []VacuumOrderStatus{
	VacuumOrderPending,
	VacuumOrderPreparing,
	VacuumOrderDelivered,
}

// String implements fmt.Stringer.
func (s VacuumOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known VacuumOrderStatus.
func (s VacuumOrderStatus) IsValid() bool {
	for _, candidate := range validVacuumOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseVacuumOrderStatus converts raw input into a VacuumOrderStatus.
func ParseVacuumOrderStatus(value string) (VacuumOrderStatus, error) {
	for _, candidate := range validVacuumOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vacuum order status %q", value)
}
