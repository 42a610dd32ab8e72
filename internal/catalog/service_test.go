package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	"github.com/angelmondragon/mealprep-backend/pkg/db"
	"github.com/angelmondragon/mealprep-backend/pkg/db/dbtest"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		Repo: NewRepository(client.DB()),
		Tx:   client,
		Now:  func() time.Time { return time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return svc, client
}

func seedSubscription(t *testing.T, client *db.Client, pkgID, areaID uuid.UUID, shift enums.DeliveryShift, start types.Date) models.Subscription {
	t.Helper()
	sub := models.Subscription{
		ID:                 uuid.New(),
		SubscriberID:       uuid.New(),
		PackageID:          pkgID,
		Composition:        []enums.MealCategory{enums.MealCategoryLunch},
		StartDate:          start,
		Duration:           enums.Duration6,
		Status:             enums.SubscriptionStatusActive,
		PaymentDate:        start,
		PaymentMethod:      enums.PaymentMethodCash,
		PaymentStatus:      enums.PaymentStatusPaid,
		DeliveryShift:      shift,
		AreaID:             areaID,
		PauseDaysAvailable: 3,
		Version:            1,
	}
	require.NoError(t, client.DB().Create(&sub).Error)
	return sub
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)

	client := dbtest.Open(t)
	_, err = NewService(ServiceParams{Repo: NewRepository(client.DB())})
	require.Error(t, err)
}

func TestCreatePackageDefaultsMissingPricesToZero(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pkg, err := svc.CreatePackage(ctx, PackageInput{
		Name:   "  Classic ",
		Prices: map[enums.MealCategory]decimal.Decimal{enums.MealCategoryLunch: decimal.NewFromInt(5)},
	})
	require.NoError(t, err)
	assert.Equal(t, "Classic", pkg.Name)
	assert.True(t, pkg.Prices[enums.MealCategoryLunch].Equal(decimal.NewFromInt(5)))
	assert.True(t, pkg.Prices[enums.MealCategorySoup].IsZero())

	_, err = svc.CreatePackage(ctx, PackageInput{Name: "bad", Prices: map[enums.MealCategory]decimal.Decimal{"brunch": decimal.NewFromInt(1)}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	updated, err := svc.UpdatePackage(ctx, pkg.ID, PackageInput{Name: "Classic+", Prices: map[enums.MealCategory]decimal.Decimal{enums.MealCategoryDinner: decimal.NewFromInt(7)}})
	require.NoError(t, err)
	assert.True(t, updated.Prices[enums.MealCategoryLunch].IsZero())
	assert.True(t, updated.Prices[enums.MealCategoryDinner].Equal(decimal.NewFromInt(7)))
}

func TestDeletePackageRefusedWhileReferenced(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	pkg, err := svc.CreatePackage(ctx, PackageInput{Name: "Classic"})
	require.NoError(t, err)
	seedSubscription(t, client, pkg.ID, uuid.New(), enums.DeliveryShiftMorning, types.NewDate(2023, time.January, 1))

	err = svc.DeletePackage(ctx, pkg.ID)
	require.True(t, errors.Is(err, ErrPackageInUse), "got %v", err)

	unused, err := svc.CreatePackage(ctx, PackageInput{Name: "Unused"})
	require.NoError(t, err)
	require.NoError(t, svc.DeletePackage(ctx, unused.ID))
	require.True(t, pkgerrors.IsCode(svc.DeletePackage(ctx, unused.ID), pkgerrors.CodeNotFound))
}

func TestCreateDiscountCodeNormalizesAndRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	ten := decimal.NewFromInt(10)

	code, err := svc.CreateDiscountCode(ctx, DiscountCodeInput{Code: " save10 ", Tiers: TiersDTO{Days30: &ten}})
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", code.Code)
	assert.Empty(t, code.PackageIDs)

	_, err = svc.CreateDiscountCode(ctx, DiscountCodeInput{Code: "Save10"})
	require.True(t, errors.Is(err, ErrDuplicateCode), "got %v", err)

	_, err = svc.CreateDiscountCode(ctx, DiscountCodeInput{Code: "SCOPED", PackageIDs: []uuid.UUID{uuid.New()}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRestrictedDiscountCodeSkipsOtherPackages(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()
	prices := map[enums.MealCategory]decimal.Decimal{enums.MealCategoryLunch: decimal.NewFromInt(1)}

	pkgA, err := svc.CreatePackage(ctx, PackageInput{Name: "A", Prices: prices})
	require.NoError(t, err)
	pkgB, err := svc.CreatePackage(ctx, PackageInput{Name: "B", Prices: prices})
	require.NoError(t, err)

	ten := decimal.NewFromInt(10)
	_, err = svc.CreateDiscountCode(ctx, DiscountCodeInput{Code: "onlya", Tiers: TiersDTO{Days30: &ten}, PackageIDs: []uuid.UUID{pkgA.ID}})
	require.NoError(t, err)

	repo := NewRepository(client.DB())
	codes, err := repo.ListDiscountCodes(ctx)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.False(t, codes[0].AllPackages)
	assert.True(t, codes[0].AppliesTo(pkgA.ID))
	assert.False(t, codes[0].AppliesTo(pkgB.ID))

	stored, err := repo.FindPackage(ctx, pkgB.ID)
	require.NoError(t, err)
	quote := pricing.Quote{
		PackageID:    pkgB.ID,
		Composition:  []enums.MealCategory{enums.MealCategoryLunch},
		Duration:     enums.Duration30,
		DiscountCode: "ONLYA",
	}
	res := pricing.NewCalculator(3).Calculate(quote, stored, codes)
	assert.True(t, res.Final.Equal(decimal.NewFromInt(30)), "final %s", res.Final)
	assert.Empty(t, res.AppliedCode)

	quote.PackageID = pkgA.ID
	stored, err = repo.FindPackage(ctx, pkgA.ID)
	require.NoError(t, err)
	res = pricing.NewCalculator(3).Calculate(quote, stored, codes)
	assert.True(t, res.Final.Equal(decimal.NewFromInt(20)), "final %s", res.Final)
}

func TestReplaceMenuValidatesCategory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	lunch, err := svc.CreateMeal(ctx, MealInput{Name: "Chicken rice", Category: enums.MealCategoryLunch, Macros: MacrosDTO{Calories: 500}})
	require.NoError(t, err)
	soup, err := svc.CreateMeal(ctx, MealInput{Name: "Lentil", Category: enums.MealCategorySoup})
	require.NoError(t, err)

	_, err = svc.ReplaceMenu(ctx, MenuInput{Meals: map[enums.MealCategory][]uuid.UUID{enums.MealCategoryLunch: {soup.ID}}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	menu, err := svc.ReplaceMenu(ctx, MenuInput{Meals: map[enums.MealCategory][]uuid.UUID{
		enums.MealCategoryLunch: {lunch.ID},
		enums.MealCategorySoup:  {soup.ID},
	}})
	require.NoError(t, err)
	require.Len(t, menu.Categories, len(enums.MealCategoryOrder))
	assert.Equal(t, enums.MealCategoryBreakfast, menu.Categories[0].Category)
	assert.Empty(t, menu.Categories[0].Meals)
	require.Len(t, menu.Categories[1].Meals, 1)
	assert.Equal(t, lunch.ID, menu.Categories[1].Meals[0].ID)

	require.NoError(t, svc.DeleteMeal(ctx, lunch.ID))
	menu, err = svc.Menu(ctx)
	require.NoError(t, err)
	assert.Empty(t, menu.Categories[1].Meals)
}

func TestDeleteAreaRefusedWhileAssigned(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	area, err := svc.CreateArea(ctx, AreaInput{Name: "Salmiya"})
	require.NoError(t, err)
	driver, err := svc.CreateDriver(ctx, DriverInput{Name: "Ali", Assignments: []AssignmentDTO{{Shift: enums.DeliveryShiftMorning, AreaIDs: []uuid.UUID{area.ID}}}})
	require.NoError(t, err)

	err = svc.DeleteArea(ctx, area.ID)
	require.True(t, errors.Is(err, ErrAreaInUse), "got %v", err)
	require.NotNil(t, pkgerrors.As(err).Details())
	assert.Nil(t, ErrAreaInUse.Details())

	_, err = svc.UpdateDriver(ctx, driver.ID, DriverInput{Name: "Ali"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteArea(ctx, area.ID))
}

func TestCreateDriverRejectsUnknownArea(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateDriver(context.Background(), DriverInput{Name: "Ali", Assignments: []AssignmentDTO{{Shift: enums.DeliveryShiftMorning, AreaIDs: []uuid.UUID{uuid.New()}}}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateDriverAppendsToRoster(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateDriver(ctx, DriverInput{Name: "First"})
	require.NoError(t, err)
	second, err := svc.CreateDriver(ctx, DriverInput{Name: "Second"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 1, second.Position)

	roster, err := svc.ListDrivers(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "First", roster[0].Name)
}

func TestDeleteDriverRefusedWhileServingActiveSubscriber(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	area, err := svc.CreateArea(ctx, AreaInput{Name: "Hawally"})
	require.NoError(t, err)
	morning := []AssignmentDTO{{Shift: enums.DeliveryShiftMorning, AreaIDs: []uuid.UUID{area.ID}}}
	first, err := svc.CreateDriver(ctx, DriverInput{Name: "First", Assignments: morning})
	require.NoError(t, err)
	second, err := svc.CreateDriver(ctx, DriverInput{Name: "Second", Assignments: morning})
	require.NoError(t, err)

	// Clock is 2024-03-10; a 6-day window from 03-08 is active.
	seedSubscription(t, client, uuid.New(), area.ID, enums.DeliveryShiftMorning, types.NewDate(2024, time.March, 8))

	err = svc.DeleteDriver(ctx, first.ID)
	require.True(t, errors.Is(err, ErrDriverInUse), "got %v", err)

	// The second driver is shadowed by the first, so nobody resolves to it.
	require.NoError(t, svc.DeleteDriver(ctx, second.ID))
}

func TestDeleteDriverIgnoresEndedSubscriptions(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	area, err := svc.CreateArea(ctx, AreaInput{Name: "Jabriya"})
	require.NoError(t, err)
	driver, err := svc.CreateDriver(ctx, DriverInput{Name: "Only", Assignments: []AssignmentDTO{{Shift: enums.DeliveryShiftEvening, AreaIDs: []uuid.UUID{area.ID}}}})
	require.NoError(t, err)

	// Window 2024-03-04 .. 03-09 ended the day before the clock.
	seedSubscription(t, client, uuid.New(), area.ID, enums.DeliveryShiftEvening, types.NewDate(2024, time.March, 4))

	require.NoError(t, svc.DeleteDriver(ctx, driver.ID))
}

func TestVacuumCatalogValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateVacuumPackage(ctx, VacuumPackageInput{Name: "Tikka", MeatType: enums.VacuumMeatChicken, WeightGrams: 120, PricePerKg: decimal.NewFromInt(4)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	pkg, err := svc.CreateVacuumPackage(ctx, VacuumPackageInput{Name: "Tikka", MeatType: enums.VacuumMeatChicken, WeightGrams: 150, PricePerKg: decimal.NewFromInt(4)})
	require.NoError(t, err)

	marinade, err := svc.CreateMarinade(ctx, MarinadeInput{Name: " Lemon herb ", RefrigerationHours: 12})
	require.NoError(t, err)
	assert.Equal(t, "Lemon herb", marinade.Name)

	list, err := svc.ListVacuumPackages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.DeleteVacuumPackage(ctx, pkg.ID))
	require.NoError(t, svc.DeleteMarinade(ctx, marinade.ID))
}
