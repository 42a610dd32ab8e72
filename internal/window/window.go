// Package window decides whether a subscription is in service on a calendar day.
package window

import (
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// EndDate is the first day after a window of duration days starting at start.
func EndDate(start types.Date, duration enums.Duration) types.Date {
	return start.AddDays(duration.Days())
}

// Contains reports whether date falls in [start, start+duration).
func Contains(start types.Date, duration enums.Duration, date types.Date) bool {
	if date.Before(start) {
		return false
	}
	return date.Before(EndDate(start, duration))
}

// IsActiveOn reports whether sub is active and date is inside its window.
// Paused days stay inside the window.
func IsActiveOn(date types.Date, sub models.Subscription) bool {
	if sub.Status != enums.SubscriptionStatusActive {
		return false
	}
	return Contains(sub.StartDate, sub.Duration, date)
}

// IsActivePaidOn is IsActiveOn restricted to paid subscriptions.
func IsActivePaidOn(date types.Date, sub models.Subscription) bool {
	return sub.PaymentStatus == enums.PaymentStatusPaid && IsActiveOn(date, sub)
}

// ActiveOn filters subs down to those active on date, keeping input order.
func ActiveOn(date types.Date, subs []models.Subscription, paidOnly bool) []models.Subscription {
	check := IsActiveOn
	if paidOnly {
		check = IsActivePaidOn
	}
	out := make([]models.Subscription, 0, len(subs))
	for _, sub := range subs {
		if check(date, sub) {
			out = append(out, sub)
		}
	}
	return out
}

// Days lists every date of the window in order.
func Days(sub models.Subscription) []types.Date {
	n := sub.Duration.Days()
	if n <= 0 {
		return nil
	}
	days := make([]types.Date, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, sub.StartDate.AddDays(i))
	}
	return days
}

// Expired reports whether the window of an active subscription has fully elapsed by today.
func Expired(today types.Date, sub models.Subscription) bool {
	if sub.Status != enums.SubscriptionStatusActive {
		return false
	}
	return !today.Before(sub.EndDate())
}
