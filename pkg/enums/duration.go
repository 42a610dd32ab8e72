package enums

import "fmt"

// Duration is a subscription length in days.
type Duration int

const (
	Duration6  Duration = 6
	Duration12 Duration = 12
	Duration20 Duration = 20
	Duration26 Duration = 26
	Duration30 Duration = 30
)

// DefaultDuration is used when signup omits a duration.
const DefaultDuration = Duration30

var validDurations = []Duration{
	Duration6,
	Duration12,
	Duration20,
	Duration26,
	Duration30,
}

// Days returns the duration as a day count.
func (d Duration) Days() int {
	return int(d)
}

// IsValid reports whether the value is an offered duration.
func (d Duration) IsValid() bool {
	for _, candidate := range validDurations {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDuration converts a day count into a Duration.
func ParseDuration(days int) (Duration, error) {
	for _, candidate := range validDurations {
		if int(candidate) == days {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("invalid subscription duration %d", days)
}
