package subscribers

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mealprep-backend/internal/dispatch"
	"github.com/angelmondragon/mealprep-backend/internal/locks"
	"github.com/angelmondragon/mealprep-backend/internal/pause"
	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	"github.com/angelmondragon/mealprep-backend/internal/repo"
	"github.com/angelmondragon/mealprep-backend/internal/window"
	"github.com/angelmondragon/mealprep-backend/pkg/db"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	"github.com/angelmondragon/mealprep-backend/pkg/metrics"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// DefaultComposition is used when signup omits a composition.
var DefaultComposition = []enums.MealCategory{enums.MealCategoryLunch, enums.MealCategoryDinner}

// ErrPhoneTaken rejects a signup for a phone that already has an account.
var ErrPhoneTaken = pkgerrors.New(pkgerrors.CodeConflict, "phone number already registered")

// Catalog is the read side of the catalog the subscriber flows depend on.
type Catalog interface {
	ListPackages(ctx context.Context) ([]models.Package, error)
	ListDiscountCodes(ctx context.Context) ([]models.DiscountCode, error)
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	FindPackage(ctx context.Context, id uuid.UUID) (*models.Package, error)
	FindArea(ctx context.Context, id uuid.UUID) (*models.Area, error)
	FindMeal(ctx context.Context, id uuid.UUID) (*models.Meal, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service runs the subscriber lifecycle: signup, edits, per-day pauses,
// favorites, delivery marks, pricing and dispatch lookups.
type Service interface {
	Signup(ctx context.Context, input SignupInput) (*SubscriberView, error)
	Get(ctx context.Context, id uuid.UUID) (*SubscriberView, error)
	List(ctx context.Context, filter ListFilter) ([]SubscriberView, error)
	UpdateSubscription(ctx context.Context, id uuid.UUID, input UpdateSubscriptionInput) (*SubscriberView, error)
	TogglePause(ctx context.Context, id uuid.UUID, date types.Date) (*PauseResult, error)
	ToggleFavorite(ctx context.Context, id, mealID uuid.UUID) (*SubscriberView, error)
	SetDeliveryStatus(ctx context.Context, id uuid.UUID, date types.Date, status enums.DeliveryStatus) error
	Price(ctx context.Context, id uuid.UUID) (*PriceView, error)
	Quote(ctx context.Context, q pricing.Quote) (*PriceView, error)
	Dispatch(ctx context.Context, id uuid.UUID) (*DispatchView, error)
	ExpireEnded(ctx context.Context) (int64, error)
}

// ServiceParams groups dependencies for the subscribers service.
type ServiceParams struct {
	Repo             *Repository
	Catalog          Catalog
	Tx               txRunner
	Locker           locks.Locker
	Calculator       pricing.Calculator
	Metrics          *metrics.EngineMetrics
	Logger           *logger.Logger
	DefaultPauseDays int
	Location         *time.Location
	Now              func() time.Time
}

type service struct {
	repo        *Repository
	catalog     Catalog
	tx          txRunner
	locker      locks.Locker
	calc        pricing.Calculator
	metrics     *metrics.EngineMetrics
	logg        *logger.Logger
	pauseBudget int
	location    *time.Location
	now         func() time.Time
}

// NewService builds the subscribers service.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Repo == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscribers repository required")
	case params.Catalog == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog reader required")
	case params.Tx == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner required")
	case params.Locker == nil:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "locker required")
	}
	if params.DefaultPauseDays < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "default pause days must not be negative")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        params.Repo,
		catalog:     params.Catalog,
		tx:          params.Tx,
		locker:      params.Locker,
		calc:        params.Calculator,
		metrics:     params.Metrics,
		logg:        logg,
		pauseBudget: params.DefaultPauseDays,
		location:    loc,
		now:         now,
	}, nil
}

func (s *service) today() types.Date {
	return types.Today(s.now(), s.location)
}

// pricingInputs loads the package and code lists every price is computed from.
func (s *service) pricingInputs(ctx context.Context) ([]models.Package, []models.DiscountCode, error) {
	pkgs, err := s.catalog.ListPackages(ctx)
	if err != nil {
		return nil, nil, repo.Classify(err, "packages")
	}
	codes, err := s.catalog.ListDiscountCodes(ctx)
	if err != nil {
		return nil, nil, repo.Classify(err, "discount codes")
	}
	return pkgs, codes, nil
}

func (s *service) Signup(ctx context.Context, input SignupInput) (*SubscriberView, error) {
	name := strings.TrimSpace(input.Name)
	phone := strings.TrimSpace(input.Phone)
	if name == "" || phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name and phone are required")
	}
	if err := validateAddress(input.Address); err != nil {
		return nil, err
	}
	for _, d := range input.DislikedIngredients {
		if !d.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid disliked ingredient %q", d)
		}
	}

	composition := input.Composition
	if len(composition) == 0 {
		composition = DefaultComposition
	}
	if err := validateComposition(composition); err != nil {
		return nil, err
	}
	duration := input.Duration
	if duration == 0 {
		duration = enums.DefaultDuration
	}
	if !duration.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid subscription duration %d", duration)
	}
	if !input.DeliveryShift.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid delivery shift %q", input.DeliveryShift)
	}
	method := input.PaymentMethod
	if method == "" {
		method = enums.PaymentMethodLink
	}
	if !method.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", method)
	}
	if err := s.requireReferences(ctx, &input.PackageID, &input.AreaID); err != nil {
		return nil, err
	}

	today := s.today()
	start := input.StartDate
	if start.IsZero() {
		start = today
	}

	pkgs, codes, err := s.pricingInputs(ctx)
	if err != nil {
		return nil, err
	}
	quote := pricing.Quote{PackageID: input.PackageID, Composition: composition, Duration: duration, DiscountCode: input.DiscountCode}
	price := s.calc.Calculate(quote, pricing.FindPackage(pkgs, input.PackageID), codes)

	subscriber := &models.Subscriber{
		ID:                  uuid.New(),
		Name:                name,
		Phone:               phone,
		Address:             input.Address,
		DislikedIngredients: append([]enums.DislikedIngredient{}, input.DislikedIngredients...),
		FavoriteMealIDs:     []uuid.UUID{},
	}
	subscription := &models.Subscription{
		ID:                 uuid.New(),
		SubscriberID:       subscriber.ID,
		PackageID:          input.PackageID,
		Composition:        append([]enums.MealCategory{}, composition...),
		StartDate:          start,
		Duration:           duration,
		Status:             enums.SubscriptionStatusActive,
		PaymentDate:        today,
		PaymentMethod:      method,
		PaymentStatus:      enums.PaymentStatusPending,
		DeliveryShift:      input.DeliveryShift,
		AreaID:             input.AreaID,
		PausedDays:         []types.Date{},
		PauseDaysAvailable: s.pauseBudget,
		Version:            1,
	}
	if price.AppliedCode != "" {
		code := price.AppliedCode
		subscription.DiscountCode = &code
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if err := r.CreateSubscriber(ctx, subscriber); err != nil {
			if db.IsUniqueViolation(err, "") {
				return ErrPhoneTaken
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscriber")
		}
		if err := r.CreateSubscription(ctx, subscription); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithSubscriberID(ctx, subscriber.ID.String())
	s.logg.Info(ctx, "subscriber signed up")

	view := subscriberToView(*subscriber, subscriptionToView(*subscription, price))
	return &view, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*SubscriberView, error) {
	subscriber, err := s.repo.FindSubscriber(ctx, id)
	if err != nil {
		return nil, repo.Classify(err, "subscriber")
	}
	pkgs, codes, err := s.pricingInputs(ctx)
	if err != nil {
		return nil, err
	}

	var subView *SubscriptionView
	sub, err := s.repo.FindSubscription(ctx, id)
	switch {
	case err == nil:
		subView = subscriptionToView(*sub, s.calc.ForSubscription(*sub, pkgs, codes))
	case !db.IsNotFound(err):
		return nil, repo.Classify(err, "subscription")
	}
	view := subscriberToView(*subscriber, subView)
	return &view, nil
}

// List returns every subscriber, or only those active on filter.Date when it is set.
func (s *service) List(ctx context.Context, filter ListFilter) ([]SubscriberView, error) {
	subscribers, err := s.repo.ListSubscribers(ctx)
	if err != nil {
		return nil, repo.Classify(err, "subscribers")
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown subscription status %q", filter.Status)
	}
	subs, err := s.repo.ListSubscriptions(ctx, filter.Status)
	if err != nil {
		return nil, repo.Classify(err, "subscriptions")
	}
	pkgs, codes, err := s.pricingInputs(ctx)
	if err != nil {
		return nil, err
	}

	if !filter.Date.IsZero() {
		subs = window.ActiveOn(filter.Date, subs, filter.PaidOnly)
	}
	bySubscriber := make(map[uuid.UUID]models.Subscription, len(subs))
	for _, sub := range subs {
		bySubscriber[sub.SubscriberID] = sub
	}

	out := make([]SubscriberView, 0, len(subscribers))
	for _, subscriber := range subscribers {
		sub, ok := bySubscriber[subscriber.ID]
		if !ok && (!filter.Date.IsZero() || filter.Status != "") {
			continue
		}
		var subView *SubscriptionView
		if ok {
			subView = subscriptionToView(sub, s.calc.ForSubscription(sub, pkgs, codes))
		}
		out = append(out, subscriberToView(subscriber, subView))
	}
	return out, nil
}

func (s *service) UpdateSubscription(ctx context.Context, id uuid.UUID, input UpdateSubscriptionInput) (*SubscriberView, error) {
	if input.Composition != nil {
		if err := validateComposition(input.Composition); err != nil {
			return nil, err
		}
	}
	if err := s.requireReferences(ctx, input.PackageID, input.AreaID); err != nil {
		return nil, err
	}

	err := locks.WithLock(ctx, s.locker, locks.SubscriberKey(id), func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			r := s.repo.WithTx(tx)
			sub, err := r.FindSubscription(ctx, id)
			if err != nil {
				return repo.Classify(err, "subscription")
			}
			if input.Version != nil && *input.Version != sub.Version {
				return ErrVersionConflict
			}
			if err := applyUpdate(sub, input); err != nil {
				return err
			}
			return versioned(r.UpdateSubscription(ctx, sub))
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func applyUpdate(sub *models.Subscription, input UpdateSubscriptionInput) error {
	if input.PackageID != nil {
		sub.PackageID = *input.PackageID
	}
	if input.Composition != nil {
		sub.Composition = append([]enums.MealCategory{}, input.Composition...)
	}
	if input.StartDate != nil {
		if input.StartDate.IsZero() {
			return pkgerrors.New(pkgerrors.CodeValidation, "start date is required")
		}
		sub.StartDate = *input.StartDate
	}
	if input.Duration != nil {
		if !input.Duration.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid subscription duration %d", *input.Duration)
		}
		sub.Duration = *input.Duration
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid subscription status %q", *input.Status)
		}
		sub.Status = *input.Status
	}
	if input.PaymentDate != nil {
		sub.PaymentDate = *input.PaymentDate
	}
	if input.PaymentMethod != nil {
		if !input.PaymentMethod.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", *input.PaymentMethod)
		}
		sub.PaymentMethod = *input.PaymentMethod
	}
	if input.PaymentStatus != nil {
		if !input.PaymentStatus.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment status %q", *input.PaymentStatus)
		}
		sub.PaymentStatus = *input.PaymentStatus
	}
	if input.DeliveryShift != nil {
		if !input.DeliveryShift.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid delivery shift %q", *input.DeliveryShift)
		}
		sub.DeliveryShift = *input.DeliveryShift
	}
	if input.AreaID != nil {
		sub.AreaID = *input.AreaID
	}
	dropPausesOutsideWindow(sub)
	return nil
}

// dropPausesOutsideWindow refunds paused days a moved or shortened window no longer covers.
func dropPausesOutsideWindow(sub *models.Subscription) {
	kept := sub.PausedDays[:0:0]
	for _, d := range sub.PausedDays {
		if window.Contains(sub.StartDate, sub.Duration, d) {
			kept = append(kept, d)
			continue
		}
		sub.PauseDaysAvailable++
	}
	sub.PausedDays = kept
}

func (s *service) TogglePause(ctx context.Context, id uuid.UUID, date types.Date) (*PauseResult, error) {
	if date.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	pkgs, codes, err := s.pricingInputs(ctx)
	if err != nil {
		return nil, err
	}

	var (
		outcome pause.Outcome
		updated *models.Subscription
	)
	err = locks.WithLock(ctx, s.locker, locks.SubscriberKey(id), func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			r := s.repo.WithTx(tx)
			sub, err := r.FindSubscription(ctx, id)
			if err != nil {
				return repo.Classify(err, "subscription")
			}
			outcome, err = pause.Toggle(sub, date)
			if err != nil {
				return err
			}
			if err := versioned(r.UpdateSubscription(ctx, sub)); err != nil {
				return err
			}
			updated = sub
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, pause.ErrNoPauseDaysLeft) {
			s.metrics.IncPauseToggle("rejected")
		}
		return nil, err
	}
	s.metrics.IncPauseToggle(string(outcome))

	ctx = s.logg.WithFields(ctx, map[string]any{"subscriber_id": id.String(), "date": date.String(), "outcome": string(outcome)})
	s.logg.Info(ctx, "pause toggled")

	view := subscriptionToView(*updated, s.calc.ForSubscription(*updated, pkgs, codes))
	return &PauseResult{
		Date:               date,
		Outcome:            outcome,
		PauseDaysAvailable: updated.PauseDaysAvailable,
		PausedDays:         view.PausedDays,
		Subscription:       view,
	}, nil
}

func (s *service) ToggleFavorite(ctx context.Context, id, mealID uuid.UUID) (*SubscriberView, error) {
	if _, err := s.catalog.FindMeal(ctx, mealID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown meal %s", mealID)
		}
		return nil, repo.Classify(err, "meal")
	}

	err := locks.WithLock(ctx, s.locker, locks.SubscriberKey(id), func(ctx context.Context) error {
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			r := s.repo.WithTx(tx)
			subscriber, err := r.FindSubscriber(ctx, id)
			if err != nil {
				return repo.Classify(err, "subscriber")
			}
			favorites := toggleID(subscriber.FavoriteMealIDs, mealID)
			if err := r.SaveFavorites(ctx, id, favorites); err != nil {
				return repo.Classify(err, "subscriber")
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func toggleID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids)+1)
	found := false
	for _, existing := range ids {
		if existing == id {
			found = true
			continue
		}
		out = append(out, existing)
	}
	if !found {
		out = append(out, id)
	}
	return out
}

func (s *service) SetDeliveryStatus(ctx context.Context, id uuid.UUID, date types.Date, status enums.DeliveryStatus) error {
	if date.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	if !status.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid delivery status %q", status)
	}
	if _, err := s.repo.FindSubscriber(ctx, id); err != nil {
		return repo.Classify(err, "subscriber")
	}
	rec := &models.DeliveryRecord{SubscriberID: id, Date: date, Status: status}
	if err := s.repo.UpsertDeliveryStatus(ctx, rec); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record delivery status")
	}
	return nil
}

func (s *service) Price(ctx context.Context, id uuid.UUID) (*PriceView, error) {
	sub, err := s.repo.FindSubscription(ctx, id)
	if err != nil {
		return nil, repo.Classify(err, "subscription")
	}
	pkgs, codes, err := s.pricingInputs(ctx)
	if err != nil {
		return nil, err
	}
	view := PriceToView(s.calc.ForSubscription(*sub, pkgs, codes))
	return &view, nil
}

// Quote prices a candidate subscription without persisting anything.
func (s *service) Quote(ctx context.Context, q pricing.Quote) (*PriceView, error) {
	if err := validateComposition(q.Composition); err != nil {
		return nil, err
	}
	if !q.Duration.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid subscription duration %d", q.Duration)
	}
	pkgs, codes, err := s.pricingInputs(ctx)
	if err != nil {
		return nil, err
	}
	view := PriceToView(s.calc.Calculate(q, pricing.FindPackage(pkgs, q.PackageID), codes))
	return &view, nil
}

func (s *service) Dispatch(ctx context.Context, id uuid.UUID) (*DispatchView, error) {
	sub, err := s.repo.FindSubscription(ctx, id)
	if err != nil {
		return nil, repo.Classify(err, "subscription")
	}
	drivers, err := s.catalog.ListDrivers(ctx)
	if err != nil {
		return nil, repo.Classify(err, "drivers")
	}
	dispatch.SortRoster(drivers)

	view := &DispatchView{SubscriberID: id, AreaID: sub.AreaID, Shift: sub.DeliveryShift}
	if a, ok := dispatch.ForSubscription(*sub, drivers); ok {
		view.Assigned = true
		view.Assignment = &a
	}
	return view, nil
}

// ExpireEnded moves every active subscription whose window has elapsed to expired.
func (s *service) ExpireEnded(ctx context.Context) (int64, error) {
	subs, err := s.repo.ListSubscriptions(ctx, enums.SubscriptionStatusActive)
	if err != nil {
		return 0, repo.Classify(err, "subscriptions")
	}
	today := s.today()
	var ids []uuid.UUID
	for _, sub := range subs {
		if window.Expired(today, sub) {
			ids = append(ids, sub.ID)
		}
	}
	n, err := s.repo.MarkExpired(ctx, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark subscriptions expired")
	}
	return n, nil
}

// requireReferences checks that the referenced package and area exist. Nil ids are skipped.
func (s *service) requireReferences(ctx context.Context, packageID, areaID *uuid.UUID) error {
	if packageID != nil {
		if _, err := s.catalog.FindPackage(ctx, *packageID); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown package %s", *packageID)
			}
			return repo.Classify(err, "package")
		}
	}
	if areaID != nil {
		if _, err := s.catalog.FindArea(ctx, *areaID); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown area %s", *areaID)
			}
			return repo.Classify(err, "area")
		}
	}
	return nil
}

func validateComposition(composition []enums.MealCategory) error {
	if len(composition) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "composition needs at least one meal")
	}
	for _, cat := range composition {
		if !cat.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid meal category %q", cat)
		}
	}
	return nil
}

func validateAddress(a types.Address) error {
	var missing []string
	for field, value := range map[string]string{
		"governorate":  a.Governorate,
		"area":         a.Area,
		"block":        a.Block,
		"street":       a.Street,
		"house_number": a.HouseNumber,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return pkgerrors.New(pkgerrors.CodeValidation, "address is incomplete").WithDetails(map[string]any{"missing": missing})
	}
	return nil
}

// versioned passes repository errors through typed; ErrVersionConflict is already typed.
func versioned(err error) error {
	if err == nil || pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
}
