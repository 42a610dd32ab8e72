package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
)

// Repository stores inventory items and their movements.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateItem(ctx context.Context, item *models.InventoryItem) error
	FindItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	ListItems(ctx context.Context) ([]models.InventoryItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) (bool, error)
	CreateTransaction(ctx context.Context, tx *models.InventoryTransaction) error
	ListTransactions(ctx context.Context, itemID uuid.UUID) ([]models.InventoryTransaction, error)
	ListAllTransactions(ctx context.Context) ([]models.InventoryTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to db.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateItem(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) FindItem(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteItem removes the item together with its movements.
func (r *repository) DeleteItem(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.db.WithContext(ctx).Where("item_id = ?", id).Delete(&models.InventoryTransaction{}).Error; err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InventoryItem{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) CreateTransaction(ctx context.Context, tx *models.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

func (r *repository) ListTransactions(ctx context.Context, itemID uuid.UUID) ([]models.InventoryTransaction, error) {
	var txs []models.InventoryTransaction
	err := r.db.WithContext(ctx).Where("item_id = ?", itemID).Order("date ASC").Order("created_at ASC").Find(&txs).Error
	return txs, err
}

func (r *repository) ListAllTransactions(ctx context.Context) ([]models.InventoryTransaction, error) {
	var txs []models.InventoryTransaction
	err := r.db.WithContext(ctx).Order("date ASC").Order("created_at ASC").Find(&txs).Error
	return txs, err
}
