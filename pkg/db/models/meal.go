package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/mealprep-backend/pkg/enums"
)

// Macros are the nutrition facts of one serving.
type Macros struct {
	Calories float64 `gorm:"column:calories;not null;default:0"`
	Protein  float64 `gorm:"column:protein;not null;default:0"`
	Carbs    float64 `gorm:"column:carbs;not null;default:0"`
	Fat      float64 `gorm:"column:fat;not null;default:0"`
}

// Add returns the sum of two macro sets.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

// Meal is a dish. It belongs to exactly one category.
type Meal struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name        string             `gorm:"column:name;not null"`
	Description string             `gorm:"column:description;not null;default:''"`
	Category    enums.MealCategory `gorm:"column:category;type:text;not null;index"`
	Macros      Macros             `gorm:"embedded"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// MenuItem places a meal on today's menu. Position orders meals within a category.
type MenuItem struct {
	MealID    uuid.UUID          `gorm:"column:meal_id;type:uuid;primaryKey"`
	Category  enums.MealCategory `gorm:"column:category;type:text;not null"`
	Position  int                `gorm:"column:position;not null"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
