package enums

// DeliveryStatus marks whether a subscriber's box went out on a given day.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
)

// IsValid reports whether the value is a known DeliveryStatus.
func (s DeliveryStatus) IsValid() bool {
	return s == DeliveryStatusPending || s == DeliveryStatusDelivered
}
