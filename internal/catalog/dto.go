package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
)

// PackageDTO is the API shape of a package.
type PackageDTO struct {
	ID          uuid.UUID                              `json:"id"`
	Name        string                                 `json:"name"`
	Description string                                 `json:"description"`
	Prices      map[enums.MealCategory]decimal.Decimal `json:"prices"`
	CreatedAt   time.Time                              `json:"created_at"`
}

// PackageInput creates or replaces a package. Categories missing from Prices cost 0.
type PackageInput struct {
	Name        string                                 `json:"name" validate:"required"`
	Description string                                 `json:"description"`
	Prices      map[enums.MealCategory]decimal.Decimal `json:"prices"`
}

// TiersDTO carries the fixed discount per duration; absent tiers grant nothing.
type TiersDTO struct {
	Days20 *decimal.Decimal `json:"20,omitempty"`
	Days26 *decimal.Decimal `json:"26,omitempty"`
	Days30 *decimal.Decimal `json:"30,omitempty"`
}

// DiscountCodeDTO is the API shape of a discount code.
type DiscountCodeDTO struct {
	ID         uuid.UUID   `json:"id"`
	Code       string      `json:"code"`
	Tiers      TiersDTO    `json:"tiers"`
	PackageIDs []uuid.UUID `json:"package_ids"`
}

// DiscountCodeInput creates a discount code. An empty PackageIDs applies the code to every package.
type DiscountCodeInput struct {
	Code       string      `json:"code" validate:"required"`
	Tiers      TiersDTO    `json:"tiers"`
	PackageIDs []uuid.UUID `json:"package_ids"`
}

// MealDTO is the API shape of a meal.
type MealDTO struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Category    enums.MealCategory `json:"category"`
	Macros      MacrosDTO          `json:"macros"`
}

// MacrosDTO mirrors models.Macros on the wire.
type MacrosDTO struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// MealInput creates a meal.
type MealInput struct {
	Name        string             `json:"name" validate:"required"`
	Description string             `json:"description"`
	Category    enums.MealCategory `json:"category" validate:"required"`
	Macros      MacrosDTO          `json:"macros"`
}

// MenuDTO is today's menu, keyed by category in display order.
type MenuDTO struct {
	Categories []MenuCategoryDTO `json:"categories"`
}

// MenuCategoryDTO lists the meals offered for one category.
type MenuCategoryDTO struct {
	Category enums.MealCategory `json:"category"`
	Meals    []MealDTO          `json:"meals"`
}

// MenuInput replaces today's menu. Meal order within a category is kept.
type MenuInput struct {
	Meals map[enums.MealCategory][]uuid.UUID `json:"meals"`
}

// AreaDTO is the API shape of an area.
type AreaDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// AreaInput creates an area.
type AreaInput struct {
	Name string `json:"name" validate:"required"`
}

// AssignmentDTO is one shift of a driver's coverage.
type AssignmentDTO struct {
	Shift   enums.DeliveryShift `json:"shift" validate:"required"`
	AreaIDs []uuid.UUID         `json:"area_ids"`
}

// DriverDTO is the API shape of a driver.
type DriverDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Position    int             `json:"position"`
	Assignments []AssignmentDTO `json:"assignments"`
}

// DriverInput creates a driver or replaces its assignments. A nil Position
// appends a new driver to the end of the roster and keeps an existing one in place.
type DriverInput struct {
	Name        string          `json:"name" validate:"required"`
	Position    *int            `json:"position,omitempty" validate:"omitempty,gte=0"`
	Assignments []AssignmentDTO `json:"assignments" validate:"dive"`
}

// VacuumPackageDTO is the API shape of a vacuum package.
type VacuumPackageDTO struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	MeatType    enums.VacuumMeatType `json:"meat_type"`
	WeightGrams int                  `json:"weight_grams"`
	PricePerKg  decimal.Decimal      `json:"price_per_kg"`
}

// VacuumPackageInput creates a vacuum package.
type VacuumPackageInput struct {
	Name        string               `json:"name" validate:"required"`
	MeatType    enums.VacuumMeatType `json:"meat_type" validate:"required"`
	WeightGrams int                  `json:"weight_grams" validate:"oneof=100 150 200"`
	PricePerKg  decimal.Decimal      `json:"price_per_kg"`
}

// MarinadeDTO is the API shape of a marinade recipe.
type MarinadeDTO struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Ingredients        string    `json:"ingredients"`
	Instructions       string    `json:"instructions"`
	RefrigerationHours int       `json:"refrigeration_hours"`
	CookingMethod      string    `json:"cooking_method"`
	CookingTime        string    `json:"cooking_time"`
}

// MarinadeInput creates a marinade.
type MarinadeInput struct {
	Name               string `json:"name" validate:"required"`
	Description        string `json:"description"`
	Ingredients        string `json:"ingredients"`
	Instructions       string `json:"instructions"`
	RefrigerationHours int    `json:"refrigeration_hours" validate:"gte=0"`
	CookingMethod      string `json:"cooking_method"`
	CookingTime        string `json:"cooking_time"`
}

func packageToDTO(p models.Package) PackageDTO {
	prices := make(map[enums.MealCategory]decimal.Decimal, len(enums.MealCategoryOrder))
	for _, cat := range enums.MealCategoryOrder {
		prices[cat] = p.Price(cat)
	}
	return PackageDTO{ID: p.ID, Name: p.Name, Description: p.Description, Prices: prices, CreatedAt: p.CreatedAt}
}

func discountCodeToDTO(c models.DiscountCode) DiscountCodeDTO {
	ids := []uuid.UUID{}
	if !c.AllPackages {
		ids = append(ids, c.PackageIDs...)
	}
	return DiscountCodeDTO{
		ID:         c.ID,
		Code:       c.Code,
		Tiers:      TiersDTO{Days20: c.Tiers.Days20, Days26: c.Tiers.Days26, Days30: c.Tiers.Days30},
		PackageIDs: ids,
	}
}

// MealToDTO maps a meal for the wire.
func MealToDTO(m models.Meal) MealDTO {
	return MealDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Category:    m.Category,
		Macros:      MacrosToDTO(m.Macros),
	}
}

// MacrosToDTO maps macros for the wire.
func MacrosToDTO(m models.Macros) MacrosDTO {
	return MacrosDTO{Calories: m.Calories, Protein: m.Protein, Carbs: m.Carbs, Fat: m.Fat}
}

func driverToDTO(d models.Driver) DriverDTO {
	assignments := make([]AssignmentDTO, 0, len(d.Assignments))
	for _, a := range d.Assignments {
		assignments = append(assignments, AssignmentDTO{Shift: a.Shift, AreaIDs: append([]uuid.UUID{}, a.AreaIDs...)})
	}
	return DriverDTO{ID: d.ID, Name: d.Name, Position: d.Position, Assignments: assignments}
}

func vacuumPackageToDTO(p models.VacuumPackage) VacuumPackageDTO {
	return VacuumPackageDTO{ID: p.ID, Name: p.Name, MeatType: p.MeatType, WeightGrams: p.WeightGrams, PricePerKg: p.PricePerKg}
}

func marinadeToDTO(m models.Marinade) MarinadeDTO {
	return MarinadeDTO{
		ID:                 m.ID,
		Name:               m.Name,
		Description:        m.Description,
		Ingredients:        m.Ingredients,
		Instructions:       m.Instructions,
		RefrigerationHours: m.RefrigerationHours,
		CookingMethod:      m.CookingMethod,
		CookingTime:        m.CookingTime,
	}
}
