package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/mealprep-backend/internal/dispatch"
	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	"github.com/angelmondragon/mealprep-backend/internal/repo"
	"github.com/angelmondragon/mealprep-backend/internal/window"
	"github.com/angelmondragon/mealprep-backend/pkg/db"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

var (
	ErrPackageInUse  = pkgerrors.New(pkgerrors.CodeStateConflict, "package is referenced by a subscription")
	ErrAreaInUse     = pkgerrors.New(pkgerrors.CodeStateConflict, "area is assigned to a driver")
	ErrDriverInUse   = pkgerrors.New(pkgerrors.CodeStateConflict, "driver serves an active subscriber")
	ErrDuplicateCode = pkgerrors.New(pkgerrors.CodeConflict, "discount code already exists")
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages the catalog and enforces the reference guards on deletes.
type Service interface {
	ListPackages(ctx context.Context) ([]PackageDTO, error)
	CreatePackage(ctx context.Context, input PackageInput) (*PackageDTO, error)
	UpdatePackage(ctx context.Context, id uuid.UUID, input PackageInput) (*PackageDTO, error)
	DeletePackage(ctx context.Context, id uuid.UUID) error

	ListDiscountCodes(ctx context.Context) ([]DiscountCodeDTO, error)
	CreateDiscountCode(ctx context.Context, input DiscountCodeInput) (*DiscountCodeDTO, error)
	DeleteDiscountCode(ctx context.Context, id uuid.UUID) error

	ListMeals(ctx context.Context, category enums.MealCategory) ([]MealDTO, error)
	CreateMeal(ctx context.Context, input MealInput) (*MealDTO, error)
	DeleteMeal(ctx context.Context, id uuid.UUID) error

	Menu(ctx context.Context) (*MenuDTO, error)
	ReplaceMenu(ctx context.Context, input MenuInput) (*MenuDTO, error)

	ListAreas(ctx context.Context) ([]AreaDTO, error)
	CreateArea(ctx context.Context, input AreaInput) (*AreaDTO, error)
	DeleteArea(ctx context.Context, id uuid.UUID) error

	ListDrivers(ctx context.Context) ([]DriverDTO, error)
	CreateDriver(ctx context.Context, input DriverInput) (*DriverDTO, error)
	UpdateDriver(ctx context.Context, id uuid.UUID, input DriverInput) (*DriverDTO, error)
	DeleteDriver(ctx context.Context, id uuid.UUID) error

	ListVacuumPackages(ctx context.Context) ([]VacuumPackageDTO, error)
	CreateVacuumPackage(ctx context.Context, input VacuumPackageInput) (*VacuumPackageDTO, error)
	DeleteVacuumPackage(ctx context.Context, id uuid.UUID) error

	ListMarinades(ctx context.Context) ([]MarinadeDTO, error)
	CreateMarinade(ctx context.Context, input MarinadeInput) (*MarinadeDTO, error)
	DeleteMarinade(ctx context.Context, id uuid.UUID) error
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo     *Repository
	Tx       txRunner
	Location *time.Location
	Now      func() time.Time
}

type service struct {
	repo     *Repository
	tx       txRunner
	location *time.Location
	now      func() time.Time
}

// NewService builds a catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repository required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transaction runner required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, tx: params.Tx, location: loc, now: now}, nil
}

func (s *service) today() types.Date {
	return types.Today(s.now(), s.location)
}

func (s *service) ListPackages(ctx context.Context) ([]PackageDTO, error) {
	pkgs, err := s.repo.ListPackages(ctx)
	if err != nil {
		return nil, repo.Classify(err, "packages")
	}
	out := make([]PackageDTO, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, packageToDTO(p))
	}
	return out, nil
}

func (s *service) CreatePackage(ctx context.Context, input PackageInput) (*PackageDTO, error) {
	pkg := &models.Package{ID: uuid.New()}
	if err := applyPackageInput(pkg, input); err != nil {
		return nil, err
	}
	if err := s.repo.SavePackage(ctx, pkg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create package")
	}
	dto := packageToDTO(*pkg)
	return &dto, nil
}

func (s *service) UpdatePackage(ctx context.Context, id uuid.UUID, input PackageInput) (*PackageDTO, error) {
	pkg, err := s.repo.FindPackage(ctx, id)
	if err != nil {
		return nil, repo.Classify(err, "package")
	}
	if err := applyPackageInput(pkg, input); err != nil {
		return nil, err
	}
	if err := s.repo.SavePackage(ctx, pkg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update package")
	}
	dto := packageToDTO(*pkg)
	return &dto, nil
}

func applyPackageInput(pkg *models.Package, input PackageInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "package name is required")
	}
	pkg.Name = name
	pkg.Description = strings.TrimSpace(input.Description)
	for _, cat := range enums.MealCategoryOrder {
		pkg.SetPrice(cat, decimal.Zero)
	}
	for cat, price := range input.Prices {
		if !cat.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid meal category %q", cat)
		}
		if price.IsNegative() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "price for %s must not be negative", cat)
		}
		pkg.SetPrice(cat, price)
	}
	return nil
}

func (s *service) DeletePackage(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		n, err := r.CountPackageSubscriptions(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count package subscriptions")
		}
		if n > 0 {
			return ErrPackageInUse
		}
		return deleted(r.DeletePackage(ctx, id))("package")
	})
}

func (s *service) ListDiscountCodes(ctx context.Context) ([]DiscountCodeDTO, error) {
	codes, err := s.repo.ListDiscountCodes(ctx)
	if err != nil {
		return nil, repo.Classify(err, "discount codes")
	}
	out := make([]DiscountCodeDTO, 0, len(codes))
	for _, c := range codes {
		out = append(out, discountCodeToDTO(c))
	}
	return out, nil
}

func (s *service) CreateDiscountCode(ctx context.Context, input DiscountCodeInput) (*DiscountCodeDTO, error) {
	code := pricing.NormalizeCode(input.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	for _, amount := range []*decimal.Decimal{input.Tiers.Days20, input.Tiers.Days26, input.Tiers.Days30} {
		if amount != nil && amount.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount amounts must not be negative")
		}
	}
	for _, id := range input.PackageIDs {
		if _, err := s.repo.FindPackage(ctx, id); err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown package %s", id)
			}
			return nil, repo.Classify(err, "package")
		}
	}

	dc := &models.DiscountCode{
		ID:          uuid.New(),
		Code:        code,
		Tiers:       models.DiscountTiers{Days20: input.Tiers.Days20, Days26: input.Tiers.Days26, Days30: input.Tiers.Days30},
		AllPackages: len(input.PackageIDs) == 0,
		PackageIDs:  input.PackageIDs,
	}
	if err := s.repo.CreateDiscountCode(ctx, dc); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ErrDuplicateCode
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount code")
	}
	dto := discountCodeToDTO(*dc)
	return &dto, nil
}

func (s *service) DeleteDiscountCode(ctx context.Context, id uuid.UUID) error {
	return deleted(s.repo.DeleteDiscountCode(ctx, id))("discount code")
}

func (s *service) ListMeals(ctx context.Context, category enums.MealCategory) ([]MealDTO, error) {
	if category != "" && !category.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid meal category %q", category)
	}
	meals, err := s.repo.ListMeals(ctx, category)
	if err != nil {
		return nil, repo.Classify(err, "meals")
	}
	out := make([]MealDTO, 0, len(meals))
	for _, m := range meals {
		out = append(out, MealToDTO(m))
	}
	return out, nil
}

func (s *service) CreateMeal(ctx context.Context, input MealInput) (*MealDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "meal name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid meal category %q", input.Category)
	}
	meal := &models.Meal{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		Macros: models.Macros{
			Calories: input.Macros.Calories,
			Protein:  input.Macros.Protein,
			Carbs:    input.Macros.Carbs,
			Fat:      input.Macros.Fat,
		},
	}
	if err := s.repo.CreateMeal(ctx, meal); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create meal")
	}
	dto := MealToDTO(*meal)
	return &dto, nil
}

func (s *service) DeleteMeal(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return deleted(s.repo.WithTx(tx).DeleteMeal(ctx, id))("meal")
	})
}

func (s *service) Menu(ctx context.Context) (*MenuDTO, error) {
	items, err := s.repo.ListMenu(ctx)
	if err != nil {
		return nil, repo.Classify(err, "menu")
	}
	meals, err := s.repo.ListMeals(ctx, "")
	if err != nil {
		return nil, repo.Classify(err, "meals")
	}
	return buildMenu(items, meals), nil
}

func buildMenu(items []models.MenuItem, meals []models.Meal) *MenuDTO {
	byID := make(map[uuid.UUID]models.Meal, len(meals))
	for _, m := range meals {
		byID[m.ID] = m
	}
	perCategory := make(map[enums.MealCategory][]MealDTO)
	for _, item := range items {
		meal, ok := byID[item.MealID]
		if !ok {
			continue
		}
		perCategory[item.Category] = append(perCategory[item.Category], MealToDTO(meal))
	}
	menu := &MenuDTO{Categories: make([]MenuCategoryDTO, 0, len(enums.MealCategoryOrder))}
	for _, cat := range enums.MealCategoryOrder {
		list := perCategory[cat]
		if list == nil {
			list = []MealDTO{}
		}
		menu.Categories = append(menu.Categories, MenuCategoryDTO{Category: cat, Meals: list})
	}
	return menu
}

func (s *service) ReplaceMenu(ctx context.Context, input MenuInput) (*MenuDTO, error) {
	var items []models.MenuItem
	seen := make(map[uuid.UUID]bool)
	for _, cat := range enums.MealCategoryOrder {
		for pos, mealID := range input.Meals[cat] {
			if seen[mealID] {
				return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "meal %s listed twice", mealID)
			}
			seen[mealID] = true
			items = append(items, models.MenuItem{MealID: mealID, Category: cat, Position: pos})
		}
	}
	for cat := range input.Meals {
		if !cat.IsValid() {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid meal category %q", cat)
		}
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		for _, item := range items {
			meal, err := r.FindMeal(ctx, item.MealID)
			if err != nil {
				if db.IsNotFound(err) {
					return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown meal %s", item.MealID)
				}
				return repo.Classify(err, "meal")
			}
			if meal.Category != item.Category {
				return pkgerrors.Newf(pkgerrors.CodeValidation, "meal %s is not a %s", meal.Name, item.Category)
			}
		}
		if err := r.ReplaceMenu(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace menu")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Menu(ctx)
}

func (s *service) ListAreas(ctx context.Context) ([]AreaDTO, error) {
	areas, err := s.repo.ListAreas(ctx)
	if err != nil {
		return nil, repo.Classify(err, "areas")
	}
	out := make([]AreaDTO, 0, len(areas))
	for _, a := range areas {
		out = append(out, AreaDTO{ID: a.ID, Name: a.Name})
	}
	return out, nil
}

func (s *service) CreateArea(ctx context.Context, input AreaInput) (*AreaDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "area name is required")
	}
	area := &models.Area{ID: uuid.New(), Name: name}
	if err := s.repo.CreateArea(ctx, area); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create area")
	}
	return &AreaDTO{ID: area.ID, Name: area.Name}, nil
}

func (s *service) DeleteArea(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		drivers, err := r.ListDrivers(ctx)
		if err != nil {
			return repo.Classify(err, "drivers")
		}
		for _, d := range drivers {
			if d.References(id) {
				return withDetails(ErrAreaInUse, map[string]any{"driver_id": d.ID, "driver_name": d.Name})
			}
		}
		return deleted(r.DeleteArea(ctx, id))("area")
	})
}

func (s *service) ListDrivers(ctx context.Context) ([]DriverDTO, error) {
	drivers, err := s.repo.ListDrivers(ctx)
	if err != nil {
		return nil, repo.Classify(err, "drivers")
	}
	dispatch.SortRoster(drivers)
	out := make([]DriverDTO, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, driverToDTO(d))
	}
	return out, nil
}

func (s *service) CreateDriver(ctx context.Context, input DriverInput) (*DriverDTO, error) {
	driver := &models.Driver{ID: uuid.New()}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if err := s.applyDriverInput(ctx, r, driver, input); err != nil {
			return err
		}
		if input.Position == nil {
			next, err := r.NextDriverPosition(ctx)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "next roster position")
			}
			driver.Position = next
		}
		if err := r.SaveDriver(ctx, driver); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create driver")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := driverToDTO(*driver)
	return &dto, nil
}

func (s *service) UpdateDriver(ctx context.Context, id uuid.UUID, input DriverInput) (*DriverDTO, error) {
	var driver *models.Driver
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		found, err := r.FindDriver(ctx, id)
		if err != nil {
			return repo.Classify(err, "driver")
		}
		if err := s.applyDriverInput(ctx, r, found, input); err != nil {
			return err
		}
		if err := r.SaveDriver(ctx, found); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update driver")
		}
		driver = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := driverToDTO(*driver)
	return &dto, nil
}

func (s *service) applyDriverInput(ctx context.Context, r *Repository, driver *models.Driver, input DriverInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "driver name is required")
	}
	areas, err := r.ListAreas(ctx)
	if err != nil {
		return repo.Classify(err, "areas")
	}
	known := make(map[uuid.UUID]bool, len(areas))
	for _, a := range areas {
		known[a.ID] = true
	}

	assignments := make([]models.DriverAssignment, 0, len(input.Assignments))
	for _, a := range input.Assignments {
		if !a.Shift.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid delivery shift %q", a.Shift)
		}
		for _, areaID := range a.AreaIDs {
			if !known[areaID] {
				return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown area %s", areaID)
			}
		}
		assignments = append(assignments, models.DriverAssignment{Shift: a.Shift, AreaIDs: append([]uuid.UUID{}, a.AreaIDs...)})
	}

	driver.Name = name
	driver.Assignments = assignments
	if input.Position != nil {
		driver.Position = *input.Position
	}
	return nil
}

// DeleteDriver refuses while any subscription active today is routed to the driver.
func (s *service) DeleteDriver(ctx context.Context, id uuid.UUID) error {
	today := s.today()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		drivers, err := r.ListDrivers(ctx)
		if err != nil {
			return repo.Classify(err, "drivers")
		}
		subs, err := r.ListActiveSubscriptions(ctx)
		if err != nil {
			return repo.Classify(err, "subscriptions")
		}
		dispatch.SortRoster(drivers)
		for _, sub := range window.ActiveOn(today, subs, false) {
			if a, ok := dispatch.ForSubscription(sub, drivers); ok && a.DriverID == id {
				return withDetails(ErrDriverInUse, map[string]any{"subscriber_id": sub.SubscriberID})
			}
		}
		return deleted(r.DeleteDriver(ctx, id))("driver")
	})
}

func (s *service) ListVacuumPackages(ctx context.Context) ([]VacuumPackageDTO, error) {
	pkgs, err := s.repo.ListVacuumPackages(ctx)
	if err != nil {
		return nil, repo.Classify(err, "vacuum packages")
	}
	out := make([]VacuumPackageDTO, 0, len(pkgs))
	for _, p := range pkgs {
		out = append(out, vacuumPackageToDTO(p))
	}
	return out, nil
}

func (s *service) CreateVacuumPackage(ctx context.Context, input VacuumPackageInput) (*VacuumPackageDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vacuum package name is required")
	}
	if !input.MeatType.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid meat type %q", input.MeatType)
	}
	switch input.WeightGrams {
	case 100, 150, 200:
	default:
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "weight must be 100, 150 or 200 grams, got %d", input.WeightGrams)
	}
	if !input.PricePerKg.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price per kg must be positive")
	}
	pkg := &models.VacuumPackage{
		ID:          uuid.New(),
		Name:        name,
		MeatType:    input.MeatType,
		WeightGrams: input.WeightGrams,
		PricePerKg:  input.PricePerKg,
	}
	if err := s.repo.CreateVacuumPackage(ctx, pkg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vacuum package")
	}
	dto := vacuumPackageToDTO(*pkg)
	return &dto, nil
}

func (s *service) DeleteVacuumPackage(ctx context.Context, id uuid.UUID) error {
	return deleted(s.repo.DeleteVacuumPackage(ctx, id))("vacuum package")
}

func (s *service) ListMarinades(ctx context.Context) ([]MarinadeDTO, error) {
	list, err := s.repo.ListMarinades(ctx)
	if err != nil {
		return nil, repo.Classify(err, "marinades")
	}
	out := make([]MarinadeDTO, 0, len(list))
	for _, m := range list {
		out = append(out, marinadeToDTO(m))
	}
	return out, nil
}

func (s *service) CreateMarinade(ctx context.Context, input MarinadeInput) (*MarinadeDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "marinade name is required")
	}
	if input.RefrigerationHours < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refrigeration hours must not be negative")
	}
	m := &models.Marinade{
		ID:                 uuid.New(),
		Name:               name,
		Description:        strings.TrimSpace(input.Description),
		Ingredients:        strings.TrimSpace(input.Ingredients),
		Instructions:       strings.TrimSpace(input.Instructions),
		RefrigerationHours: input.RefrigerationHours,
		CookingMethod:      strings.TrimSpace(input.CookingMethod),
		CookingTime:        strings.TrimSpace(input.CookingTime),
	}
	if err := s.repo.CreateMarinade(ctx, m); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create marinade")
	}
	dto := marinadeToDTO(*m)
	return &dto, nil
}

func (s *service) DeleteMarinade(ctx context.Context, id uuid.UUID) error {
	return deleted(s.repo.DeleteMarinade(ctx, id))("marinade")
}

// deleted turns a (rows affected, error) pair into a typed error.
func deleted(ok bool, err error) func(what string) error {
	return func(what string) error {
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete "+what)
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
		}
		return nil
	}
}

// withDetails copies a sentinel before attaching details so the shared value stays untouched.
func withDetails(sentinel *pkgerrors.Error, details any) error {
	return pkgerrors.New(sentinel.Code(), sentinel.Message()).WithDetails(details)
}
