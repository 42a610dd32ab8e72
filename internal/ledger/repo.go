package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
)

// Repository manages ledger entries and reads the revenue side of the books.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	List(ctx context.Context, entryType enums.LedgerEntryType) ([]models.LedgerEntry, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	LoadFigures(ctx context.Context) (Figures, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns entries newest first; an empty type lists every entry.
func (r *repository) List(ctx context.Context, entryType enums.LedgerEntryType) ([]models.LedgerEntry, error) {
	q := r.db.WithContext(ctx).Order("date DESC").Order("created_at DESC")
	if entryType != "" {
		q = q.Where("type = ?", entryType)
	}
	var entries []models.LedgerEntry
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.LedgerEntry{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) LoadFigures(ctx context.Context) (Figures, error) {
	var f Figures
	db := r.db.WithContext(ctx)
	if err := db.Where("payment_status = ?", enums.PaymentStatusPaid).Find(&f.Subscriptions).Error; err != nil {
		return Figures{}, err
	}
	if err := db.Find(&f.Packages).Error; err != nil {
		return Figures{}, err
	}
	if err := db.Find(&f.DiscountCodes).Error; err != nil {
		return Figures{}, err
	}
	if err := db.Find(&f.VacuumOrders).Error; err != nil {
		return Figures{}, err
	}
	if err := db.Find(&f.Entries).Error; err != nil {
		return Figures{}, err
	}
	return f, nil
}
