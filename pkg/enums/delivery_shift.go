package enums

import "fmt"

// DeliveryShift is the delivery slot a subscriber or vacuum order is served in.
type DeliveryShift string

const (
	DeliveryShiftMorning DeliveryShift = "morning"
	DeliveryShiftEvening DeliveryShift = "evening"
)

var validDeliveryShifts = []DeliveryShift{
	DeliveryShiftMorning,
	DeliveryShiftEvening,
}

// String implements fmt.Stringer.
func (s DeliveryShift) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DeliveryShift.
func (s DeliveryShift) IsValid() bool {
	for _, candidate := range validDeliveryShifts {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDeliveryShift converts raw input into a DeliveryShift.
func ParseDeliveryShift(value string) (DeliveryShift, error) {
	for _, candidate := range validDeliveryShifts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery shift %q", value)
}
