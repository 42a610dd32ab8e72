package subscribers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mealprep-backend/internal/catalog"
	"github.com/angelmondragon/mealprep-backend/internal/locks"
	"github.com/angelmondragon/mealprep-backend/internal/pause"
	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	"github.com/angelmondragon/mealprep-backend/pkg/db"
	"github.com/angelmondragon/mealprep-backend/pkg/db/dbtest"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/metrics"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

type fixture struct {
	svc    Service
	client *db.Client
	reg    *prometheus.Registry
	pkg    models.Package
	area   models.Area
	today  types.Date
}

func newFixture(t *testing.T, pauseDays int) *fixture {
	t.Helper()
	client := dbtest.Open(t)
	reg := prometheus.NewRegistry()
	m := metrics.NewEngineMetrics(reg)
	cat := catalog.NewRepository(client.DB())

	pkg := models.Package{ID: uuid.New(), Name: "Classic"}
	pkg.SetPrice(enums.MealCategoryLunch, decimal.NewFromInt(10))
	pkg.SetPrice(enums.MealCategoryDinner, decimal.NewFromInt(8))
	require.NoError(t, client.DB().Create(&pkg).Error)
	area := models.Area{ID: uuid.New(), Name: "Salmiya"}
	require.NoError(t, client.DB().Create(&area).Error)

	now := time.Date(2024, time.March, 10, 8, 0, 0, 0, time.UTC)
	svc, err := NewService(ServiceParams{
		Repo:             NewRepository(client.DB()),
		Catalog:          cat,
		Tx:               client,
		Locker:           locks.NewLocalLocker(2*time.Second, m),
		Calculator:       pricing.NewCalculator(2),
		Metrics:          m,
		DefaultPauseDays: pauseDays,
		Now:              func() time.Time { return now },
	})
	require.NoError(t, err)
	return &fixture{svc: svc, client: client, reg: reg, pkg: pkg, area: area, today: types.DateOf(now)}
}

func (f *fixture) signup(t *testing.T, phone string, mutate func(*SignupInput)) *SubscriberView {
	t.Helper()
	input := SignupInput{
		Name:          "Noor",
		Phone:         phone,
		Address:       types.Address{Governorate: "Hawalli", Area: "Salmiya", Block: "10", Street: "5", HouseNumber: "12"},
		PackageID:     f.pkg.ID,
		DeliveryShift: enums.DeliveryShiftMorning,
		AreaID:        f.area.ID,
	}
	if mutate != nil {
		mutate(&input)
	}
	view, err := f.svc.Signup(context.Background(), input)
	require.NoError(t, err)
	return view
}

func TestSignupAppliesDefaults(t *testing.T) {
	f := newFixture(t, 3)
	view := f.signup(t, "+96550000001", nil)

	sub := view.Subscription
	require.NotNil(t, sub)
	assert.Equal(t, enums.Duration30, sub.Duration)
	assert.Equal(t, []enums.MealCategory{enums.MealCategoryLunch, enums.MealCategoryDinner}, sub.Composition)
	assert.Equal(t, 3, sub.PauseDaysAvailable)
	assert.Equal(t, enums.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, enums.PaymentStatusPending, sub.PaymentStatus)
	assert.Equal(t, enums.PaymentMethodLink, sub.PaymentMethod)
	assert.Equal(t, f.today, sub.StartDate)
	assert.Equal(t, f.today.AddDays(30), sub.EndDate)
	assert.Nil(t, sub.DiscountCode)
	assert.True(t, sub.Price.Final.Equal(decimal.NewFromInt(540)), "got %s", sub.Price.Final)
}

func TestSignupStoresCodeOnlyWhenDiscountApplied(t *testing.T) {
	f := newFixture(t, 3)
	five := decimal.NewFromInt(5)
	code := models.DiscountCode{ID: uuid.New(), Code: "SAVE5", AllPackages: true, Tiers: models.DiscountTiers{Days30: &five}}
	require.NoError(t, f.client.DB().Create(&code).Error)

	withCode := f.signup(t, "+96550000002", func(in *SignupInput) { in.DiscountCode = "save5" })
	require.NotNil(t, withCode.Subscription.DiscountCode)
	assert.Equal(t, "SAVE5", *withCode.Subscription.DiscountCode)
	assert.True(t, withCode.Subscription.Price.Final.Equal(decimal.NewFromInt(535)))

	short := f.signup(t, "+96550000003", func(in *SignupInput) {
		in.DiscountCode = "SAVE5"
		in.Duration = enums.Duration6
	})
	assert.Nil(t, short.Subscription.DiscountCode)
}

func TestSignupRejectsDuplicatePhoneAndBadReferences(t *testing.T) {
	f := newFixture(t, 3)
	f.signup(t, "+96550000004", nil)

	_, err := f.svc.Signup(context.Background(), SignupInput{
		Name: "Other", Phone: "+96550000004", PackageID: f.pkg.ID, AreaID: f.area.ID, DeliveryShift: enums.DeliveryShiftEvening,
		Address: types.Address{Governorate: "G", Area: "A", Block: "1", Street: "2", HouseNumber: "3"},
	})
	require.True(t, errors.Is(err, ErrPhoneTaken), "got %v", err)

	_, err = f.svc.Signup(context.Background(), SignupInput{
		Name: "Other", Phone: "+96550000005", PackageID: uuid.New(), AreaID: f.area.ID, DeliveryShift: enums.DeliveryShiftEvening,
		Address: types.Address{Governorate: "G", Area: "A", Block: "1", Street: "2", HouseNumber: "3"},
	})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Signup(context.Background(), SignupInput{Name: "x", Phone: "y", PackageID: f.pkg.ID, AreaID: f.area.ID, DeliveryShift: enums.DeliveryShiftMorning})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestTogglePauseRoundTripAndBudget(t *testing.T) {
	f := newFixture(t, 1)
	view := f.signup(t, "+96550000006", nil)
	ctx := context.Background()
	day1, day2 := f.today.AddDays(1), f.today.AddDays(2)

	res, err := f.svc.TogglePause(ctx, view.ID, day1)
	require.NoError(t, err)
	assert.Equal(t, pause.OutcomePaused, res.Outcome)
	assert.Equal(t, 0, res.PauseDaysAvailable)
	assert.Equal(t, []types.Date{day1}, res.PausedDays)
	assert.Equal(t, 2, res.Subscription.Version)

	_, err = f.svc.TogglePause(ctx, view.ID, day2)
	require.True(t, errors.Is(err, pause.ErrNoPauseDaysLeft), "got %v", err)

	res, err = f.svc.TogglePause(ctx, view.ID, day1)
	require.NoError(t, err)
	assert.Equal(t, pause.OutcomeResumed, res.Outcome)
	assert.Equal(t, 1, res.PauseDaysAvailable)
	assert.Empty(t, res.PausedDays)

	_, err = f.svc.TogglePause(ctx, view.ID, f.today.AddDays(30))
	require.True(t, errors.Is(err, pause.ErrOutsideWindow), "got %v", err)

	series, err := testutil.GatherAndCount(f.reg, "mealprep_pause_toggles_total")
	require.NoError(t, err)
	assert.Equal(t, 3, series)
}

func TestTogglePauseConcurrentRequestsShareTheBudget(t *testing.T) {
	f := newFixture(t, 1)
	view := f.signup(t, "+96550000007", nil)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 1; i <= 4; i++ {
		wg.Add(1)
		go func(day types.Date) {
			defer wg.Done()
			_, err := f.svc.TogglePause(context.Background(), view.ID, day)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, pause.ErrNoPauseDaysLeft):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(f.today.AddDays(i))
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 3, rejected)

	got, err := f.svc.Get(context.Background(), view.ID)
	require.NoError(t, err)
	assert.Len(t, got.Subscription.PausedDays, 1)
	assert.Equal(t, 0, got.Subscription.PauseDaysAvailable)
}

func TestUpdateSubscriptionVersionCheckAndPauseRefund(t *testing.T) {
	f := newFixture(t, 3)
	view := f.signup(t, "+96550000008", nil)
	ctx := context.Background()

	_, err := f.svc.TogglePause(ctx, view.ID, f.today.AddDays(20))
	require.NoError(t, err)

	stale := 1
	_, err = f.svc.UpdateSubscription(ctx, view.ID, UpdateSubscriptionInput{Version: &stale})
	require.True(t, errors.Is(err, ErrVersionConflict), "got %v", err)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	shorter := enums.Duration12
	paid := enums.PaymentStatusPaid
	updated, err := f.svc.UpdateSubscription(ctx, view.ID, UpdateSubscriptionInput{Duration: &shorter, PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, enums.Duration12, updated.Subscription.Duration)
	assert.Equal(t, enums.PaymentStatusPaid, updated.Subscription.PaymentStatus)
	assert.Empty(t, updated.Subscription.PausedDays)
	assert.Equal(t, 3, updated.Subscription.PauseDaysAvailable)
	assert.Equal(t, 3, updated.Subscription.Version)

	bad := enums.Duration(7)
	_, err = f.svc.UpdateSubscription(ctx, view.ID, UpdateSubscriptionInput{Duration: &bad})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRepositoryUpdateSubscriptionDetectsLostUpdate(t *testing.T) {
	f := newFixture(t, 3)
	view := f.signup(t, "+96550000009", nil)
	r := NewRepository(f.client.DB())
	ctx := context.Background()

	first, err := r.FindSubscription(ctx, view.ID)
	require.NoError(t, err)
	second, err := r.FindSubscription(ctx, view.ID)
	require.NoError(t, err)

	first.PauseDaysAvailable = 0
	require.NoError(t, r.UpdateSubscription(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.PauseDaysAvailable = 1
	require.ErrorIs(t, r.UpdateSubscription(ctx, second), ErrVersionConflict)
}

func TestListFiltersByActiveDateAndPayment(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	current := f.signup(t, "+96550000010", nil)
	f.signup(t, "+96550000011", func(in *SignupInput) { in.StartDate = f.today.AddDays(-40) })

	all, err := f.svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := f.svc.List(ctx, ListFilter{Date: f.today})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, current.ID, active[0].ID)

	paid, err := f.svc.List(ctx, ListFilter{Date: f.today, PaidOnly: true})
	require.NoError(t, err)
	assert.Empty(t, paid)
}

func TestToggleFavorite(t *testing.T) {
	f := newFixture(t, 3)
	view := f.signup(t, "+96550000012", nil)
	meal := models.Meal{ID: uuid.New(), Name: "Kabsa", Category: enums.MealCategoryLunch}
	require.NoError(t, f.client.DB().Create(&meal).Error)
	ctx := context.Background()

	got, err := f.svc.ToggleFavorite(ctx, view.ID, meal.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{meal.ID}, got.FavoriteMealIDs)

	got, err = f.svc.ToggleFavorite(ctx, view.ID, meal.ID)
	require.NoError(t, err)
	assert.Empty(t, got.FavoriteMealIDs)

	_, err = f.svc.ToggleFavorite(ctx, view.ID, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSetDeliveryStatusUpserts(t *testing.T) {
	f := newFixture(t, 3)
	view := f.signup(t, "+96550000013", nil)
	ctx := context.Background()

	require.NoError(t, f.svc.SetDeliveryStatus(ctx, view.ID, f.today, enums.DeliveryStatusPending))
	require.NoError(t, f.svc.SetDeliveryStatus(ctx, view.ID, f.today, enums.DeliveryStatusDelivered))

	statuses, err := NewRepository(f.client.DB()).ListDeliveryStatuses(ctx, f.today)
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryStatusDelivered, statuses[view.ID])

	require.True(t, pkgerrors.IsCode(f.svc.SetDeliveryStatus(ctx, uuid.New(), f.today, enums.DeliveryStatusDelivered), pkgerrors.CodeNotFound))
	require.True(t, pkgerrors.IsCode(f.svc.SetDeliveryStatus(ctx, view.ID, f.today, "lost"), pkgerrors.CodeValidation))
}

func TestDispatchResolvesFirstDriverInRoster(t *testing.T) {
	f := newFixture(t, 3)
	view := f.signup(t, "+96550000014", nil)
	cover := models.DriverAssignment{Shift: enums.DeliveryShiftMorning, AreaIDs: []uuid.UUID{f.area.ID}}
	second := models.Driver{ID: uuid.New(), Name: "Second", Position: 1, Assignments: []models.DriverAssignment{cover}}
	first := models.Driver{ID: uuid.New(), Name: "First", Position: 0, Assignments: []models.DriverAssignment{cover}}
	require.NoError(t, f.client.DB().Create(&second).Error)
	require.NoError(t, f.client.DB().Create(&first).Error)

	got, err := f.svc.Dispatch(context.Background(), view.ID)
	require.NoError(t, err)
	require.True(t, got.Assigned)
	assert.Equal(t, first.ID, got.Assignment.DriverID)
}

func TestDispatchUnassignedWhenNoDriverCovers(t *testing.T) {
	f := newFixture(t, 3)
	view := f.signup(t, "+96550000015", func(in *SignupInput) { in.DeliveryShift = enums.DeliveryShiftEvening })

	got, err := f.svc.Dispatch(context.Background(), view.ID)
	require.NoError(t, err)
	assert.False(t, got.Assigned)
	assert.Nil(t, got.Assignment)
}

func TestQuoteAndPrice(t *testing.T) {
	f := newFixture(t, 3)
	view := f.signup(t, "+96550000016", func(in *SignupInput) { in.Duration = enums.Duration6 })
	ctx := context.Background()

	price, err := f.svc.Price(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, price.Final.Equal(decimal.NewFromInt(108)))

	quote, err := f.svc.Quote(ctx, pricing.Quote{PackageID: f.pkg.ID, Composition: []enums.MealCategory{enums.MealCategoryLunch, enums.MealCategoryLunch}, Duration: enums.Duration12})
	require.NoError(t, err)
	assert.True(t, quote.DailyPrice.Equal(decimal.NewFromInt(20)))
	assert.True(t, quote.Final.Equal(decimal.NewFromInt(240)))

	_, err = f.svc.Quote(ctx, pricing.Quote{PackageID: f.pkg.ID, Duration: enums.Duration12})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestExpireEnded(t *testing.T) {
	f := newFixture(t, 3)
	ended := f.signup(t, "+96550000017", func(in *SignupInput) {
		in.StartDate = f.today.AddDays(-6)
		in.Duration = enums.Duration6
	})
	running := f.signup(t, "+96550000018", nil)
	ctx := context.Background()

	n, err := f.svc.ExpireEnded(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := f.svc.Get(ctx, ended.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SubscriptionStatusExpired, got.Subscription.Status)

	got, err = f.svc.Get(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.SubscriptionStatusActive, got.Subscription.Status)

	n, err = f.svc.ExpireEnded(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	expired, err := f.svc.List(ctx, ListFilter{Status: enums.SubscriptionStatusExpired})
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, ended.ID, expired[0].ID)

	_, err = f.svc.List(ctx, ListFilter{Status: "paused"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
