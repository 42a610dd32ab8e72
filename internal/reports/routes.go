package reports

import (
	"github.com/angelmondragon/mealprep-backend/internal/dispatch"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
)

// BuildRouteSheet hands the snapshot to the dispatcher with the roster sorted.
func BuildRouteSheet(s *Snapshot) dispatch.RouteSheet {
	drivers := append([]models.Driver(nil), s.Drivers...)
	dispatch.SortRoster(drivers)
	return dispatch.BuildRouteSheet(dispatch.RouteInput{
		Date:          s.Date,
		Subscriptions: s.Subscriptions,
		Subscribers:   s.Subscribers,
		VacuumOrders:  s.OrdersDue,
		Drivers:       drivers,
		Statuses:      s.Statuses,
	})
}
