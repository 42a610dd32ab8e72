package subscribers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/angelmondragon/mealprep-backend/internal/repo"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// ErrVersionConflict reports a lost update on a subscription row.
var ErrVersionConflict = pkgerrors.New(pkgerrors.CodeConflict, "subscription was modified concurrently")

// Repository persists subscribers, their subscription and per-day delivery marks.
type Repository struct {
	repo.Base
}

// NewRepository constructs a subscribers repository bound to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{Base: r.Base.Tx(tx)}
}

func (r *Repository) CreateSubscriber(ctx context.Context, s *models.Subscriber) error {
	return r.DB(ctx).Create(s).Error
}

func (r *Repository) CreateSubscription(ctx context.Context, s *models.Subscription) error {
	return r.DB(ctx).Create(s).Error
}

func (r *Repository) FindSubscriber(ctx context.Context, id uuid.UUID) (*models.Subscriber, error) {
	var s models.Subscriber
	if err := r.DB(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindSubscription returns the subscription owned by subscriberID.
func (r *Repository) FindSubscription(ctx context.Context, subscriberID uuid.UUID) (*models.Subscription, error) {
	var s models.Subscription
	if err := r.DB(ctx).Where("subscriber_id = ?", subscriberID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	var out []models.Subscriber
	return out, r.DB(ctx).Order("name ASC").Order("id ASC").Find(&out).Error
}

// ListSubscriptions returns every subscription, or only those in status when it is set.
func (r *Repository) ListSubscriptions(ctx context.Context, status enums.SubscriptionStatus) ([]models.Subscription, error) {
	q := r.DB(ctx).Order("start_date ASC").Order("id ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Subscription
	return out, q.Find(&out).Error
}

// UpdateSubscription writes every mutable column when the stored version still
// matches sub.Version, then bumps the version. A stale version yields ErrVersionConflict.
func (r *Repository) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	expected := sub.Version
	res := r.DB(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND version = ?", sub.ID, expected).
		Updates(map[string]any{
			"package_id":           sub.PackageID,
			"composition":          sub.Composition,
			"start_date":           sub.StartDate,
			"duration_days":        sub.Duration,
			"status":               sub.Status,
			"payment_date":         sub.PaymentDate,
			"payment_method":       sub.PaymentMethod,
			"payment_status":       sub.PaymentStatus,
			"discount_code":        sub.DiscountCode,
			"delivery_shift":       sub.DeliveryShift,
			"area_id":              sub.AreaID,
			"paused_days":          sub.PausedDays,
			"pause_days_available": sub.PauseDaysAvailable,
			"version":              expected + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	sub.Version = expected + 1
	return nil
}

func (r *Repository) SaveFavorites(ctx context.Context, subscriberID uuid.UUID, ids []uuid.UUID) error {
	res := r.DB(ctx).Model(&models.Subscriber{}).
		Where("id = ?", subscriberID).
		Update("favorite_meal_ids", datatypes.JSONSlice[uuid.UUID](ids))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertDeliveryStatus records the delivery mark for a subscriber's day.
func (r *Repository) UpsertDeliveryStatus(ctx context.Context, rec *models.DeliveryRecord) error {
	return r.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "subscriber_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(rec).Error
}

// ListDeliveryStatuses returns the marks recorded for date keyed by subscriber.
func (r *Repository) ListDeliveryStatuses(ctx context.Context, date types.Date) (map[uuid.UUID]enums.DeliveryStatus, error) {
	var rows []models.DeliveryRecord
	if err := r.DB(ctx).Where("date = ?", date).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]enums.DeliveryStatus, len(rows))
	for _, row := range rows {
		out[row.SubscriberID] = row.Status
	}
	return out, nil
}

// MarkExpired flips the listed subscriptions to expired when they are still active.
func (r *Repository) MarkExpired(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.DB(ctx).Model(&models.Subscription{}).
		Where("id IN ? AND status = ?", ids, enums.SubscriptionStatusActive).
		Updates(map[string]any{
			"status":  enums.SubscriptionStatusExpired,
			"version": gorm.Expr("version + 1"),
		})
	return res.RowsAffected, res.Error
}
