package selections

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/mealprep-backend/internal/repo"
	"github.com/angelmondragon/mealprep-backend/pkg/db"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// Repository stores one selection row per subscriber and day.
type Repository struct {
	repo.Base
}

// NewRepository constructs a selections repository bound to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Find returns the selections of a day; a missing row is an empty map.
func (r *Repository) Find(ctx context.Context, subscriberID uuid.UUID, date types.Date) (types.Selections, error) {
	var row models.MealSelection
	err := r.DB(ctx).Where("subscriber_id = ? AND date = ?", subscriberID, date).First(&row).Error
	if db.IsNotFound(err) {
		return types.Selections{}, nil
	}
	if err != nil {
		return nil, err
	}
	if row.Selections == nil {
		return types.Selections{}, nil
	}
	return row.Selections, nil
}

// Put writes the day's selections, deleting the row when nothing is selected.
func (r *Repository) Put(ctx context.Context, subscriberID uuid.UUID, date types.Date, sel types.Selections) error {
	if len(sel) == 0 {
		return r.DB(ctx).
			Where("subscriber_id = ? AND date = ?", subscriberID, date).
			Delete(&models.MealSelection{}).Error
	}
	row := &models.MealSelection{SubscriberID: subscriberID, Date: date, Selections: sel}
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subscriber_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"selections", "updated_at"}),
	}).Create(row).Error
}

// ListForDate returns every selection row of date keyed by subscriber.
func (r *Repository) ListForDate(ctx context.Context, date types.Date) (map[uuid.UUID]types.Selections, error) {
	var rows []models.MealSelection
	if err := r.DB(ctx).Where("date = ?", date).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]types.Selections, len(rows))
	for _, row := range rows {
		out[row.SubscriberID] = row.Selections
	}
	return out, nil
}
