package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mealprep-backend/internal/repo"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
)

// Repository persists the catalog: packages, discount codes, meals, the daily
// menu, areas, drivers and the vacuum product line.
type Repository struct {
	repo.Base
}

// NewRepository constructs a catalog repository bound to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.Tx(tx)}
}

func (r *Repository) ListPackages(ctx context.Context) ([]models.Package, error) {
	var out []models.Package
	return out, r.DB(ctx).Order("name ASC").Find(&out).Error
}

func (r *Repository) FindPackage(ctx context.Context, id uuid.UUID) (*models.Package, error) {
	var pkg models.Package
	if err := r.DB(ctx).Where("id = ?", id).First(&pkg).Error; err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *Repository) SavePackage(ctx context.Context, pkg *models.Package) error {
	return r.DB(ctx).Save(pkg).Error
}

func (r *Repository) DeletePackage(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Package{})
	return res.RowsAffected > 0, res.Error
}

// CountPackageSubscriptions counts subscriptions referencing the package, whatever their status.
func (r *Repository) CountPackageSubscriptions(ctx context.Context, packageID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Subscription{}).Where("package_id = ?", packageID).Count(&n).Error
	return n, err
}

func (r *Repository) ListDiscountCodes(ctx context.Context) ([]models.DiscountCode, error) {
	var out []models.DiscountCode
	return out, r.DB(ctx).Order("code ASC").Find(&out).Error
}

func (r *Repository) CreateDiscountCode(ctx context.Context, code *models.DiscountCode) error {
	return r.DB(ctx).Create(code).Error
}

func (r *Repository) DeleteDiscountCode(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.DiscountCode{})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) ListMeals(ctx context.Context, category enums.MealCategory) ([]models.Meal, error) {
	q := r.DB(ctx).Order("name ASC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var out []models.Meal
	return out, q.Find(&out).Error
}

func (r *Repository) FindMeal(ctx context.Context, id uuid.UUID) (*models.Meal, error) {
	var meal models.Meal
	if err := r.DB(ctx).Where("id = ?", id).First(&meal).Error; err != nil {
		return nil, err
	}
	return &meal, nil
}

func (r *Repository) CreateMeal(ctx context.Context, meal *models.Meal) error {
	return r.DB(ctx).Create(meal).Error
}

// DeleteMeal removes the meal and pulls it off the menu. Past selections keep
// the dangling id and render as an unknown meal.
func (r *Repository) DeleteMeal(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.DB(ctx).Where("meal_id = ?", id).Delete(&models.MenuItem{}).Error; err != nil {
		return false, err
	}
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Meal{})
	return res.RowsAffected > 0, res.Error
}

// ListMenu returns today's menu ordered by category then position.
func (r *Repository) ListMenu(ctx context.Context) ([]models.MenuItem, error) {
	var out []models.MenuItem
	return out, r.DB(ctx).Order("category ASC").Order("position ASC").Find(&out).Error
}

// ReplaceMenu swaps the whole menu. Run it inside a transaction.
func (r *Repository) ReplaceMenu(ctx context.Context, items []models.MenuItem) error {
	if err := r.DB(ctx).Where("1 = 1").Delete(&models.MenuItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&items).Error
}

func (r *Repository) ListAreas(ctx context.Context) ([]models.Area, error) {
	var out []models.Area
	return out, r.DB(ctx).Order("name ASC").Find(&out).Error
}

func (r *Repository) FindArea(ctx context.Context, id uuid.UUID) (*models.Area, error) {
	var area models.Area
	if err := r.DB(ctx).Where("id = ?", id).First(&area).Error; err != nil {
		return nil, err
	}
	return &area, nil
}

func (r *Repository) CreateArea(ctx context.Context, area *models.Area) error {
	return r.DB(ctx).Create(area).Error
}

func (r *Repository) DeleteArea(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Area{})
	return res.RowsAffected > 0, res.Error
}

// ListDrivers returns the roster in dispatch order.
func (r *Repository) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	var out []models.Driver
	return out, r.DB(ctx).Order("position ASC").Order("created_at ASC").Find(&out).Error
}

func (r *Repository) FindDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error) {
	var driver models.Driver
	if err := r.DB(ctx).Where("id = ?", id).First(&driver).Error; err != nil {
		return nil, err
	}
	return &driver, nil
}

// NextDriverPosition is one past the last roster position.
func (r *Repository) NextDriverPosition(ctx context.Context) (int, error) {
	var max sql.NullInt64
	if err := r.DB(ctx).Model(&models.Driver{}).Select("MAX(position)").Row().Scan(&max); err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

func (r *Repository) SaveDriver(ctx context.Context, driver *models.Driver) error {
	return r.DB(ctx).Save(driver).Error
}

func (r *Repository) DeleteDriver(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Driver{})
	return res.RowsAffected > 0, res.Error
}

// ListActiveSubscriptions returns subscriptions still flagged active; window checks happen in Go.
func (r *Repository) ListActiveSubscriptions(ctx context.Context) ([]models.Subscription, error) {
	var out []models.Subscription
	return out, r.DB(ctx).Where("status = ?", enums.SubscriptionStatusActive).Find(&out).Error
}

func (r *Repository) ListVacuumPackages(ctx context.Context) ([]models.VacuumPackage, error) {
	var out []models.VacuumPackage
	return out, r.DB(ctx).Order("meat_type ASC").Order("weight_grams ASC").Find(&out).Error
}

func (r *Repository) CreateVacuumPackage(ctx context.Context, pkg *models.VacuumPackage) error {
	return r.DB(ctx).Create(pkg).Error
}

func (r *Repository) DeleteVacuumPackage(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.VacuumPackage{})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) ListMarinades(ctx context.Context) ([]models.Marinade, error) {
	var out []models.Marinade
	return out, r.DB(ctx).Order("name ASC").Find(&out).Error
}

func (r *Repository) CreateMarinade(ctx context.Context, m *models.Marinade) error {
	return r.DB(ctx).Create(m).Error
}

func (r *Repository) DeleteMarinade(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB(ctx).Where("id = ?", id).Delete(&models.Marinade{})
	return res.RowsAffected > 0, res.Error
}
