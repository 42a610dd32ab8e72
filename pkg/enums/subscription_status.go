package enums

import (
	"fmt"
	"strings"
)

// SubscriptionStatus is the lifecycle of a meal subscription. Per-day pauses
// are tracked on the subscription itself, never as a status. The only
// transition is active to expired, made by the expiry job once the window ends.
type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) String() string { return string(s) }

func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusExpired:
		return true
	}
	return false
}

// ParseSubscriptionStatus accepts any casing and surrounding whitespace.
func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	s := SubscriptionStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid subscription status %q", value)
	}
	return s, nil
}
