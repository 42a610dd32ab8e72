package dispatch

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

func activeSub(subscriberID, area uuid.UUID, shift enums.DeliveryShift, start types.Date) models.Subscription {
	return models.Subscription{
		ID:            uuid.New(),
		SubscriberID:  subscriberID,
		AreaID:        area,
		DeliveryShift: shift,
		StartDate:     start,
		Duration:      enums.Duration30,
		Status:        enums.SubscriptionStatusActive,
	}
}

func TestBuildRouteSheet(t *testing.T) {
	day := types.NewDate(2024, time.June, 10)
	north, south := uuid.New(), uuid.New()
	d1 := driver("Ali", 0,
		models.DriverAssignment{Shift: enums.DeliveryShiftMorning, AreaIDs: []uuid.UUID{north}},
		models.DriverAssignment{Shift: enums.DeliveryShiftEvening, AreaIDs: []uuid.UUID{north}},
	)

	alice, bob, carol, dave := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	subscribers := map[uuid.UUID]models.Subscriber{
		alice: {ID: alice, Name: "Alice", Phone: "5000"},
		bob:   {ID: bob, Name: "Bob"},
		carol: {ID: carol, Name: "Carol"},
		dave:  {ID: dave, Name: "Dave"},
	}

	paused := activeSub(dave, north, enums.DeliveryShiftMorning, day.AddDays(-3))
	paused.PausedDays = []types.Date{day}

	in := RouteInput{
		Date: day,
		Subscriptions: []models.Subscription{
			activeSub(alice, north, enums.DeliveryShiftMorning, day.AddDays(-1)),
			activeSub(bob, north, enums.DeliveryShiftEvening, day.AddDays(-1)),
			activeSub(carol, south, enums.DeliveryShiftMorning, day.AddDays(-1)),
			paused,
			activeSub(uuid.New(), north, enums.DeliveryShiftMorning, day.AddDays(1)),
		},
		Subscribers: subscribers,
		VacuumOrders: []models.VacuumOrder{
			{ID: uuid.New(), SubscriberID: alice, DeliveryDate: day},
			{ID: uuid.New(), SubscriberID: bob, DeliveryDate: day},
			{ID: uuid.New(), SubscriberID: alice, DeliveryDate: day.AddDays(1)},
		},
		Drivers:  []models.Driver{d1},
		Statuses: map[uuid.UUID]enums.DeliveryStatus{alice: enums.DeliveryStatusDelivered},
	}

	sheet := BuildRouteSheet(in)
	require.Len(t, sheet.Routes, 2)

	morning := sheet.Routes[0]
	assert.Equal(t, enums.DeliveryShiftMorning, morning.Shift)
	require.Len(t, morning.Stops, 2)
	assert.Equal(t, alice, morning.Stops[0].SubscriberID)
	assert.True(t, morning.Stops[0].Meals)
	assert.True(t, morning.Stops[0].IsVacuum, "vacuum order merges into the existing stop")
	assert.Len(t, morning.Stops[0].VacuumOrderIDs, 1)
	assert.Equal(t, enums.DeliveryStatusDelivered, morning.Stops[0].Status)

	assert.Equal(t, bob, morning.Stops[1].SubscriberID, "vacuum orders ride the morning shift")
	assert.False(t, morning.Stops[1].Meals)
	assert.True(t, morning.Stops[1].IsVacuum)

	evening := sheet.Routes[1]
	assert.Equal(t, enums.DeliveryShiftEvening, evening.Shift)
	require.Len(t, evening.Stops, 1)
	assert.Equal(t, bob, evening.Stops[0].SubscriberID)
	assert.Equal(t, enums.DeliveryStatusPending, evening.Stops[0].Status)

	require.Len(t, sheet.Unassigned, 1)
	assert.Equal(t, carol, sheet.Unassigned[0].SubscriberID)
}

func TestVacuumOrderWithoutSubscriptionIsUnassigned(t *testing.T) {
	day := types.NewDate(2024, time.June, 10)
	order := models.VacuumOrder{
		ID:              uuid.New(),
		SubscriberID:    uuid.New(),
		SubscriberName:  "Walk-in",
		DeliveryDate:    day,
		DeliveryAddress: types.Address{Governorate: "Hawalli", Area: "Salmiya", Block: "2", Street: "10", HouseNumber: "7"},
	}
	sheet := BuildRouteSheet(RouteInput{Date: day, VacuumOrders: []models.VacuumOrder{order}})
	require.Len(t, sheet.Unassigned, 1)
	assert.Equal(t, "Walk-in", sheet.Unassigned[0].Name)
	assert.Contains(t, sheet.Unassigned[0].Address, "Salmiya")
	assert.Empty(t, sheet.Routes)
}
