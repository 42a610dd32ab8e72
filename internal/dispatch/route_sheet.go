package dispatch

import (
	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/internal/window"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// Stop is one doorstep on a route. A stop can carry the daily meals, a vacuum order or both.
type Stop struct {
	SubscriberID   uuid.UUID            `json:"subscriber_id"`
	Name           string               `json:"name"`
	Phone          string               `json:"phone"`
	Address        string               `json:"address"`
	AreaID         uuid.UUID            `json:"area_id"`
	Shift          enums.DeliveryShift  `json:"shift"`
	Meals          bool                 `json:"meals"`
	IsVacuum       bool                 `json:"is_vacuum"`
	VacuumOrderIDs []uuid.UUID          `json:"vacuum_order_ids,omitempty"`
	Status         enums.DeliveryStatus `json:"status"`
}

// Route is the ordered stop list of one driver for one shift.
type Route struct {
	Assignment
	Stops []Stop `json:"stops"`
}

// RouteSheet is the day's dispatch plan. Unassigned stops need manual dispatch.
type RouteSheet struct {
	Date       types.Date `json:"date"`
	Routes     []Route    `json:"routes"`
	Unassigned []Stop     `json:"unassigned"`
}

// RouteInput is everything needed to build a route sheet. Drivers must already be in roster order.
type RouteInput struct {
	Date          types.Date
	Subscriptions []models.Subscription
	Subscribers   map[uuid.UUID]models.Subscriber
	VacuumOrders  []models.VacuumOrder
	Drivers       []models.Driver
	Statuses      map[uuid.UUID]enums.DeliveryStatus
}

type routeKey struct {
	driver uuid.UUID
	shift  enums.DeliveryShift
}

// BuildRouteSheet groups the day's deliveries by driver and shift. Subscribers
// paused on the date get no meal stop. Vacuum orders delivering on the date
// join the morning route of the subscriber's area, merging into a stop already
// there for the same subscriber.
func BuildRouteSheet(in RouteInput) RouteSheet {
	sheet := RouteSheet{Date: in.Date, Routes: []Route{}, Unassigned: []Stop{}}
	index := map[routeKey]int{}
	areaBySubscriber := make(map[uuid.UUID]uuid.UUID, len(in.Subscriptions))

	add := func(a Assignment, ok bool, stop Stop) {
		if !ok {
			sheet.Unassigned = append(sheet.Unassigned, stop)
			return
		}
		key := routeKey{driver: a.DriverID, shift: a.Shift}
		i, exists := index[key]
		if !exists {
			sheet.Routes = append(sheet.Routes, Route{Assignment: a})
			i = len(sheet.Routes) - 1
			index[key] = i
		}
		route := &sheet.Routes[i]
		for s := range route.Stops {
			if route.Stops[s].SubscriberID == stop.SubscriberID {
				merge(&route.Stops[s], stop)
				return
			}
		}
		route.Stops = append(route.Stops, stop)
	}

	for _, sub := range in.Subscriptions {
		areaBySubscriber[sub.SubscriberID] = sub.AreaID
		if !window.IsActiveOn(in.Date, sub) || sub.IsPaused(in.Date) {
			continue
		}
		stop := in.stopFor(sub.SubscriberID, sub.AreaID, sub.DeliveryShift)
		stop.Meals = true
		a, ok := ForSubscription(sub, in.Drivers)
		add(a, ok, stop)
	}

	for _, order := range in.VacuumOrders {
		if order.DeliveryDate != in.Date {
			continue
		}
		areaID, known := areaBySubscriber[order.SubscriberID]
		stop := in.stopFor(order.SubscriberID, areaID, VacuumShift)
		if stop.Name == "" {
			stop.Name = order.SubscriberName
		}
		if stop.Address == "" {
			stop.Address = order.DeliveryAddress.Label()
		}
		stop.IsVacuum = true
		stop.VacuumOrderIDs = []uuid.UUID{order.ID}
		if !known {
			add(Assignment{}, false, stop)
			continue
		}
		a, ok := ForVacuumOrder(areaID, in.Drivers)
		add(a, ok, stop)
	}

	return sheet
}

func (in RouteInput) stopFor(subscriberID, areaID uuid.UUID, shift enums.DeliveryShift) Stop {
	stop := Stop{
		SubscriberID: subscriberID,
		AreaID:       areaID,
		Shift:        shift,
		Status:       enums.DeliveryStatusPending,
	}
	if subscriber, ok := in.Subscribers[subscriberID]; ok {
		stop.Name = subscriber.Name
		stop.Phone = subscriber.Phone
		stop.Address = subscriber.Address.Label()
	}
	if status, ok := in.Statuses[subscriberID]; ok {
		stop.Status = status
	}
	return stop
}

func merge(dst *Stop, src Stop) {
	dst.Meals = dst.Meals || src.Meals
	dst.IsVacuum = dst.IsVacuum || src.IsVacuum
	dst.VacuumOrderIDs = append(dst.VacuumOrderIDs, src.VacuumOrderIDs...)
}
