package vacuum

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mealprep-backend/internal/repo"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// Repository persists vacuum orders.
type Repository struct {
	repo.Base
}

// NewRepository constructs a vacuum order repository bound to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, order *models.VacuumOrder) error {
	return r.DB(ctx).Create(order).Error
}

func (r *Repository) Find(ctx context.Context, id uuid.UUID) (*models.VacuumOrder, error) {
	var order models.VacuumOrder
	if err := r.DB(ctx).Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// ListFilter narrows a listing; zero fields match everything.
type ListFilter struct {
	OrderDate    types.Date
	DeliveryDate types.Date
	SubscriberID uuid.UUID
	Status       enums.VacuumOrderStatus
}

// List returns orders newest first.
func (r *Repository) List(ctx context.Context, f ListFilter) ([]models.VacuumOrder, error) {
	q := r.DB(ctx).Order("order_date DESC").Order("created_at DESC")
	if !f.OrderDate.IsZero() {
		q = q.Where("order_date = ?", f.OrderDate)
	}
	if !f.DeliveryDate.IsZero() {
		q = q.Where("delivery_date = ?", f.DeliveryDate)
	}
	if f.SubscriberID != uuid.Nil {
		q = q.Where("subscriber_id = ?", f.SubscriberID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []models.VacuumOrder
	return out, q.Find(&out).Error
}

// UpdateStatus sets the order status; it reports false when no order matched.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VacuumOrderStatus) (bool, error) {
	res := r.DB(ctx).Model(&models.VacuumOrder{}).Where("id = ?", id).Update("status", status)
	return res.RowsAffected > 0, res.Error
}
