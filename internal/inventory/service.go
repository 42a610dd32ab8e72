package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/mealprep-backend/internal/repo"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// ErrInsufficientStock rejects a withdrawal larger than the current balance.
var ErrInsufficientStock = pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ItemInput creates an inventory item.
type ItemInput struct {
	Name     string              `json:"name" validate:"required"`
	Unit     enums.InventoryUnit `json:"unit" validate:"required"`
	MinStock decimal.Decimal     `json:"min_stock"`
}

// TransactionInput records a stock movement. A zero Date means today.
type TransactionInput struct {
	Type     enums.TransactionType `json:"type" validate:"required"`
	Quantity decimal.Decimal       `json:"quantity"`
	Date     types.Date            `json:"date"`
}

// ItemView is an item with its derived balance.
type ItemView struct {
	ID       uuid.UUID           `json:"id"`
	Name     string              `json:"name"`
	Unit     enums.InventoryUnit `json:"unit"`
	MinStock decimal.Decimal     `json:"min_stock"`
	Balance  decimal.Decimal     `json:"balance"`
	LowStock bool                `json:"low_stock"`
}

// ItemLog is an item's movement history, newest first.
type ItemLog struct {
	Item    ItemView   `json:"item"`
	Entries []LogEntry `json:"entries"`
}

// Service manages stock items and movements.
type Service interface {
	CreateItem(ctx context.Context, input ItemInput) (*ItemView, error)
	ListItems(ctx context.Context) ([]ItemView, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	RecordTransaction(ctx context.Context, itemID uuid.UUID, input TransactionInput) (*ItemLog, error)
	Log(ctx context.Context, itemID uuid.UUID) (*ItemLog, error)
}

// ServiceParams groups dependencies for the inventory service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Location *time.Location
	Now      func() time.Time
}

type service struct {
	repo     Repository
	tx       txRunner
	location *time.Location
	now      func() time.Time
}

// NewService wires an inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inventory repository required")
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

func (s *service) CreateItem(ctx context.Context, input ItemInput) (*ItemView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if !input.Unit.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid unit %q", input.Unit)
	}
	if input.MinStock.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum stock must not be negative")
	}
	item := &models.InventoryItem{ID: uuid.New(), Name: name, Unit: input.Unit, MinStock: input.MinStock}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create inventory item")
	}
	view := itemView(*item, decimal.Zero)
	return &view, nil
}

func (s *service) ListItems(ctx context.Context) ([]ItemView, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, repo.Classify(err, "inventory items")
	}
	txs, err := s.repo.ListAllTransactions(ctx)
	if err != nil {
		return nil, repo.Classify(err, "inventory transactions")
	}
	byItem := make(map[uuid.UUID][]models.InventoryTransaction)
	for _, tx := range txs {
		byItem[tx.ItemID] = append(byItem[tx.ItemID], tx)
	}
	out := make([]ItemView, 0, len(items))
	for _, item := range items {
		out = append(out, itemView(item, Balance(byItem[item.ID])))
	}
	return out, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.WithTx(tx).DeleteItem(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete inventory item")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory item not found")
		}
		return nil
	})
}

// RecordTransaction appends a movement. Withdrawals may not take the balance below zero.
func (s *service) RecordTransaction(ctx context.Context, itemID uuid.UUID, input TransactionInput) (*ItemLog, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid transaction type %q", input.Type)
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	date := input.Date
	if date.IsZero() {
		date = types.Today(s.now(), s.location)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r := s.repo.WithTx(tx)
		if _, err := r.FindItem(ctx, itemID); err != nil {
			return repo.Classify(err, "inventory item")
		}
		txs, err := r.ListTransactions(ctx, itemID)
		if err != nil {
			return repo.Classify(err, "inventory transactions")
		}
		if input.Type == enums.TransactionWithdraw && Balance(txs).LessThan(input.Quantity) {
			return ErrInsufficientStock
		}
		movement := &models.InventoryTransaction{ID: uuid.New(), ItemID: itemID, Type: input.Type, Quantity: input.Quantity, Date: date}
		if err := r.CreateTransaction(ctx, movement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record inventory transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Log(ctx, itemID)
}

func (s *service) Log(ctx context.Context, itemID uuid.UUID) (*ItemLog, error) {
	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		return nil, repo.Classify(err, "inventory item")
	}
	txs, err := s.repo.ListTransactions(ctx, itemID)
	if err != nil {
		return nil, repo.Classify(err, "inventory transactions")
	}
	return &ItemLog{Item: itemView(*item, Balance(txs)), Entries: Log(txs)}, nil
}

func itemView(item models.InventoryItem, balance decimal.Decimal) ItemView {
	return ItemView{
		ID:       item.ID,
		Name:     item.Name,
		Unit:     item.Unit,
		MinStock: item.MinStock,
		Balance:  balance,
		LowStock: LowStock(item, balance),
	}
}
