package selections

import (
	"context"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/internal/catalog"
	"github.com/angelmondragon/mealprep-backend/internal/locks"
	"github.com/angelmondragon/mealprep-backend/internal/repo"
	"github.com/angelmondragon/mealprep-backend/internal/window"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	"github.com/angelmondragon/mealprep-backend/pkg/metrics"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// ErrOutsideWindow rejects writes for a date the subscription does not cover.
var ErrOutsideWindow = pkgerrors.New(pkgerrors.CodeValidation, "date is outside the subscription window")

// SubscriptionReader loads the subscription a day belongs to.
type SubscriptionReader interface {
	FindSubscription(ctx context.Context, subscriberID uuid.UUID) (*models.Subscription, error)
}

// MealCatalog is the part of the catalog selection screens read.
type MealCatalog interface {
	ListMeals(ctx context.Context, category enums.MealCategory) ([]models.Meal, error)
	ListMenu(ctx context.Context) ([]models.MenuItem, error)
}

// Service reads and writes a subscriber's daily meal picks.
type Service interface {
	Day(ctx context.Context, subscriberID uuid.UUID, date types.Date) (*DayView, error)
	Select(ctx context.Context, subscriberID uuid.UUID, date types.Date, input SelectInput) (*DayView, error)
	Save(ctx context.Context, subscriberID uuid.UUID, date types.Date, input SaveInput) (*DayView, error)
}

// ServiceParams groups dependencies for the selections service.
type ServiceParams struct {
	Repo          *Repository
	Subscriptions SubscriptionReader
	Catalog       MealCatalog
	Locker        locks.Locker
	Metrics       *metrics.EngineMetrics
	Logger        *logger.Logger
}

type service struct {
	repo    *Repository
	subs    SubscriptionReader
	catalog MealCatalog
	locker  locks.Locker
	metrics *metrics.EngineMetrics
	logg    *logger.Logger
}

// NewService builds the selections service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selections repository required")
	case params.Subscriptions == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription reader required")
	case params.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "meal catalog required")
	case params.Locker == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "locker required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:    params.Repo,
		subs:    params.Subscriptions,
		catalog: params.Catalog,
		locker:  params.Locker,
		metrics: params.Metrics,
		logg:    logg,
	}, nil
}

func (s *service) Day(ctx context.Context, subscriberID uuid.UUID, date types.Date) (*DayView, error) {
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	sub, err := s.subs.FindSubscription(ctx, subscriberID)
	if err != nil {
		return nil, repo.Classify(err, "subscription")
	}
	sel, err := s.repo.Find(ctx, subscriberID, date)
	if err != nil {
		return nil, repo.Classify(err, "selections")
	}
	return s.view(ctx, *sub, date, sel)
}

func (s *service) Select(ctx context.Context, subscriberID uuid.UUID, date types.Date, input SelectInput) (*DayView, error) {
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	meals, err := s.mealIndex(ctx)
	if err != nil {
		return nil, err
	}

	var (
		sub  *models.Subscription
		next types.Selections
	)
	err = locks.WithLock(ctx, s.locker, locks.SubscriberKey(subscriberID), func(ctx context.Context) error {
		found, err := s.subs.FindSubscription(ctx, subscriberID)
		if err != nil {
			return repo.Classify(err, "subscription")
		}
		sub = found
		current, err := s.repo.Find(ctx, subscriberID, date)
		if err != nil {
			return repo.Classify(err, "selections")
		}
		if sub.IsPaused(date) {
			next = current
			s.metrics.IncSelectionWrite("skipped")
			return nil
		}
		if err := checkWindow(*sub, date); err != nil {
			return err
		}
		// clearing a slot must work even if its meal has left the catalog
		if current[input.SlotKey] != input.MealID {
			if err := checkPick(sub.Composition, input.SlotKey, input.MealID, meals); err != nil {
				return err
			}
		}
		next = Select(current, input.SlotKey, input.MealID)
		if err := s.repo.Put(ctx, subscriberID, date, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store selections")
		}
		s.metrics.IncSelectionWrite("select")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *sub, date, next)
}

func (s *service) Save(ctx context.Context, subscriberID uuid.UUID, date types.Date, input SaveInput) (*DayView, error) {
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	meals, err := s.mealIndex(ctx)
	if err != nil {
		return nil, err
	}

	var (
		sub  *models.Subscription
		next types.Selections
	)
	err = locks.WithLock(ctx, s.locker, locks.SubscriberKey(subscriberID), func(ctx context.Context) error {
		found, err := s.subs.FindSubscription(ctx, subscriberID)
		if err != nil {
			return repo.Classify(err, "subscription")
		}
		sub = found
		if sub.IsPaused(date) {
			current, err := s.repo.Find(ctx, subscriberID, date)
			if err != nil {
				return repo.Classify(err, "selections")
			}
			next = current
			s.metrics.IncSelectionWrite("skipped")
			return nil
		}
		if err := checkWindow(*sub, date); err != nil {
			return err
		}
		next = make(types.Selections, len(input.Selections))
		for key, mealID := range input.Selections {
			if err := checkPick(sub.Composition, key, mealID, meals); err != nil {
				return err
			}
			next[key] = mealID
		}
		if err := s.repo.Put(ctx, subscriberID, date, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store selections")
		}
		op := "save"
		if len(next) == 0 {
			op = "clear"
		}
		s.metrics.IncSelectionWrite(op)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *sub, date, next)
}

func checkWindow(sub models.Subscription, date types.Date) error {
	if !window.Contains(sub.StartDate, sub.Duration, date) {
		return ErrOutsideWindow
	}
	return nil
}

// checkPick requires the slot to exist in the composition and the meal to be of the slot's category.
func checkPick(composition []enums.MealCategory, slotKey string, mealID uuid.UUID, meals map[uuid.UUID]models.Meal) error {
	slot, ok := FindSlot(composition, slotKey)
	if !ok {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "slot %q is not part of the composition", slotKey)
	}
	meal, ok := meals[mealID]
	if !ok {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown meal %s", mealID)
	}
	if meal.Category != slot.Category {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "meal %s is not a %s", meal.Name, slot.Category)
	}
	return nil
}

func (s *service) mealIndex(ctx context.Context) (map[uuid.UUID]models.Meal, error) {
	list, err := s.catalog.ListMeals(ctx, "")
	if err != nil {
		return nil, repo.Classify(err, "meals")
	}
	out := make(map[uuid.UUID]models.Meal, len(list))
	for _, m := range list {
		out[m.ID] = m
	}
	return out, nil
}

func (s *service) view(ctx context.Context, sub models.Subscription, date types.Date, sel types.Selections) (*DayView, error) {
	meals, err := s.mealIndex(ctx)
	if err != nil {
		return nil, err
	}
	menu, err := s.catalog.ListMenu(ctx)
	if err != nil {
		return nil, repo.Classify(err, "menu")
	}
	options := make(map[enums.MealCategory][]catalog.MealDTO)
	for _, item := range menu {
		if meal, ok := meals[item.MealID]; ok {
			options[item.Category] = append(options[item.Category], catalog.MealToDTO(meal))
		}
	}

	if sel == nil {
		sel = types.Selections{}
	}
	slots := Slots(sub.Composition)
	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		v := SlotView{Slot: slot, Options: options[slot.Category]}
		if v.Options == nil {
			v.Options = []catalog.MealDTO{}
		}
		if id, ok := sel[slot.Key]; ok {
			id := id
			v.MealID = &id
			if meal, ok := meals[id]; ok {
				dto := catalog.MealToDTO(meal)
				v.Meal = &dto
			}
		}
		views = append(views, v)
	}

	return &DayView{
		SubscriberID: sub.SubscriberID,
		Date:         date,
		State:        DayState(sub, date, sel),
		Required:     len(sub.Composition),
		Selected:     Filled(sub.Composition, sel),
		Selections:   sel,
		Slots:        views,
		Nutrition:    catalog.MacrosToDTO(NutritionTotals(sel, meals)),
	}, nil
}
