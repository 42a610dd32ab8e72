// Package reports folds one day of subscriptions, selections and orders into
// kitchen and dispatch reports. Every report is recomputed from raw rows on
// each call; nothing here keeps counters.
package reports

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/mealprep-backend/internal/selections"
	"github.com/angelmondragon/mealprep-backend/internal/vacuum"
	"github.com/angelmondragon/mealprep-backend/internal/window"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

const (
	UnknownMeal    = "unknown meal"
	UnknownPackage = "unknown package"
	UnknownArea    = "unknown area"
)

// SubscriberSource reads subscribers, their subscriptions and daily delivery marks.
type SubscriberSource interface {
	ListSubscribers(ctx context.Context) ([]models.Subscriber, error)
	ListSubscriptions(ctx context.Context, status enums.SubscriptionStatus) ([]models.Subscription, error)
	ListDeliveryStatuses(ctx context.Context, date types.Date) (map[uuid.UUID]enums.DeliveryStatus, error)
}

// CatalogSource reads the lookup tables.
type CatalogSource interface {
	ListMeals(ctx context.Context, category enums.MealCategory) ([]models.Meal, error)
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
	ListPackages(ctx context.Context) ([]models.Package, error)
	ListAreas(ctx context.Context) ([]models.Area, error)
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	ListVacuumPackages(ctx context.Context) ([]models.VacuumPackage, error)
	ListMarinades(ctx context.Context) ([]models.Marinade, error)
}

// SelectionSource reads every selection row of a day.
type SelectionSource interface {
	ListForDate(ctx context.Context, date types.Date) (map[uuid.UUID]types.Selections, error)
}

// OrderSource reads vacuum orders.
type OrderSource interface {
	List(ctx context.Context, f vacuum.ListFilter) ([]models.VacuumOrder, error)
}

// Snapshot is everything the reports of one day read.
type Snapshot struct {
	Date           types.Date
	Subscriptions  []models.Subscription
	Subscribers    map[uuid.UUID]models.Subscriber
	Selections     map[uuid.UUID]types.Selections
	Meals          map[uuid.UUID]models.Meal
	Menu           []models.MenuItem
	Packages       []models.Package
	Areas          map[uuid.UUID]models.Area
	Drivers        []models.Driver
	OrdersPlaced   []models.VacuumOrder
	OrdersDue      []models.VacuumOrder
	VacuumPackages map[uuid.UUID]models.VacuumPackage
	Marinades      map[uuid.UUID]models.Marinade
	Statuses       map[uuid.UUID]enums.DeliveryStatus
}

// Loader reads a Snapshot with one query per table, run concurrently.
type Loader struct {
	Subscribers SubscriberSource
	Catalog     CatalogSource
	Selections  SelectionSource
	Orders      OrderSource
}

// Load reads the snapshot for date. The first failing query cancels the rest.
func (l Loader) Load(ctx context.Context, date types.Date) (*Snapshot, error) {
	var (
		subscriptions  []models.Subscription
		subscribers    []models.Subscriber
		meals          []models.Meal
		areas          []models.Area
		vacuumPackages []models.VacuumPackage
		marinades      []models.Marinade
	)
	snap := &Snapshot{Date: date}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		subscriptions, err = l.Subscribers.ListSubscriptions(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		subscribers, err = l.Subscribers.ListSubscribers(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Statuses, err = l.Subscribers.ListDeliveryStatuses(gctx, date)
		return err
	})
	g.Go(func() (err error) {
		snap.Selections, err = l.Selections.ListForDate(gctx, date)
		return err
	})
	g.Go(func() (err error) {
		meals, err = l.Catalog.ListMeals(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		snap.Menu, err = l.Catalog.ListMenu(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Packages, err = l.Catalog.ListPackages(gctx)
		return err
	})
	g.Go(func() (err error) {
		areas, err = l.Catalog.ListAreas(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.Drivers, err = l.Catalog.ListDrivers(gctx)
		return err
	})
	g.Go(func() (err error) {
		vacuumPackages, err = l.Catalog.ListVacuumPackages(gctx)
		return err
	})
	g.Go(func() (err error) {
		marinades, err = l.Catalog.ListMarinades(gctx)
		return err
	})
	g.Go(func() (err error) {
		snap.OrdersPlaced, err = l.Orders.List(gctx, vacuum.ListFilter{OrderDate: date})
		return err
	})
	g.Go(func() (err error) {
		snap.OrdersDue, err = l.Orders.List(gctx, vacuum.ListFilter{DeliveryDate: date})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.Subscriptions = subscriptions
	snap.Subscribers = indexBy(subscribers, func(s models.Subscriber) uuid.UUID { return s.ID })
	snap.Meals = indexBy(meals, func(m models.Meal) uuid.UUID { return m.ID })
	snap.Areas = indexBy(areas, func(a models.Area) uuid.UUID { return a.ID })
	snap.VacuumPackages = indexBy(vacuumPackages, func(p models.VacuumPackage) uuid.UUID { return p.ID })
	snap.Marinades = indexBy(marinades, func(m models.Marinade) uuid.UUID { return m.ID })
	return snap, nil
}

func indexBy[T any](items []T, key func(T) uuid.UUID) map[uuid.UUID]T {
	out := make(map[uuid.UUID]T, len(items))
	for _, item := range items {
		out[key(item)] = item
	}
	return out
}

// Served lists the subscriptions that receive meals on the snapshot date:
// active on the date, paid or not, and not paused.
func (s *Snapshot) Served() []models.Subscription {
	out := make([]models.Subscription, 0, len(s.Subscriptions))
	for _, sub := range window.ActiveOn(s.Date, s.Subscriptions, false) {
		if !sub.IsPaused(s.Date) {
			out = append(out, sub)
		}
	}
	return out
}

// pick is one filled slot of one served subscriber.
type pick struct {
	sub      models.Subscription
	slot     string
	category enums.MealCategory
	mealID   uuid.UUID
	meal     models.Meal
	known    bool
}

func (p pick) name() string {
	if !p.known {
		return UnknownMeal
	}
	return p.meal.Name
}

// picks flattens the selections of served subscribers in slot-key order.
// A meal missing from the catalog keeps the category of its slot.
func (s *Snapshot) picks(sub models.Subscription) []pick {
	sel := s.Selections[sub.SubscriberID]
	keys := make([]string, 0, len(sel))
	for key := range sel {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]pick, 0, len(keys))
	for _, key := range keys {
		p := pick{sub: sub, slot: key, mealID: sel[key]}
		p.meal, p.known = s.Meals[p.mealID]
		if p.known {
			p.category = p.meal.Category
		} else {
			category, _, err := selections.ParseSlotKey(key)
			if err != nil {
				continue
			}
			p.category = category
		}
		out = append(out, p)
	}
	return out
}

// mealLess orders meals within a category: menu position first, then
// off-menu meals by id.
func (s *Snapshot) mealLess() func(a, b uuid.UUID) bool {
	position := make(map[uuid.UUID]int, len(s.Menu))
	for _, item := range s.Menu {
		position[item.MealID] = item.Position
	}
	return func(a, b uuid.UUID) bool {
		pa, aOn := position[a]
		pb, bOn := position[b]
		switch {
		case aOn && bOn && pa != pb:
			return pa < pb
		case aOn != bOn:
			return aOn
		default:
			return a.String() < b.String()
		}
	}
}

func (s *Snapshot) packageName(id uuid.UUID) string {
	for _, p := range s.Packages {
		if p.ID == id {
			return p.Name
		}
	}
	return UnknownPackage
}

func (s *Snapshot) areaName(id uuid.UUID) string {
	if a, ok := s.Areas[id]; ok {
		return a.Name
	}
	return UnknownArea
}
