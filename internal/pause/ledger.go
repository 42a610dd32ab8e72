// Package pause keeps the per-day pause set of a subscription in step with its pause-day budget.
package pause

import (
	"sort"

	"github.com/angelmondragon/mealprep-backend/internal/window"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// Outcome says which way a toggle went.
type Outcome string

const (
	OutcomePaused  Outcome = "paused"
	OutcomeResumed Outcome = "resumed"
)

var (
	// ErrNoPauseDaysLeft rejects a pause once the budget is spent.
	ErrNoPauseDaysLeft = pkgerrors.New(pkgerrors.CodeStateConflict, "no pause days left")
	// ErrOutsideWindow rejects dates the subscription does not cover.
	ErrOutsideWindow = pkgerrors.New(pkgerrors.CodeValidation, "date is outside the subscription window")
)

// Toggle pauses date on sub, or resumes it when already paused. Resuming
// refunds one day to the budget. On error sub is left untouched.
func Toggle(sub *models.Subscription, date types.Date) (Outcome, error) {
	if !window.Contains(sub.StartDate, sub.Duration, date) {
		return "", ErrOutsideWindow
	}

	for i, day := range sub.PausedDays {
		if day == date {
			days := make([]types.Date, 0, len(sub.PausedDays)-1)
			days = append(days, sub.PausedDays[:i]...)
			days = append(days, sub.PausedDays[i+1:]...)
			sub.PausedDays = days
			sub.PauseDaysAvailable++
			return OutcomeResumed, nil
		}
	}

	if sub.PauseDaysAvailable <= 0 {
		return "", ErrNoPauseDaysLeft
	}

	days := append(append([]types.Date(nil), sub.PausedDays...), date)
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	sub.PausedDays = days
	sub.PauseDaysAvailable--
	return OutcomePaused, nil
}
