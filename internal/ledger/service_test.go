package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

type fakeRepository struct {
	createFn  func(ctx context.Context, entry *models.LedgerEntry) error
	deleteFn  func(ctx context.Context, id uuid.UUID) (bool, error)
	figuresFn func(ctx context.Context) (Figures, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) List(ctx context.Context, entryType enums.LedgerEntryType) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return true, nil
}

func (f *fakeRepository) LoadFigures(ctx context.Context) (Figures, error) {
	if f.figuresFn != nil {
		return f.figuresFn(ctx)
	}
	return Figures{}, nil
}

func fixedNow() time.Time {
	return time.Date(2024, time.May, 15, 21, 30, 0, 0, time.UTC)
}

func TestService_RecordEntry(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(ServiceParams{Repo: repo, Now: fixedNow})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	var created *models.LedgerEntry
	repo.createFn = func(ctx context.Context, entry *models.LedgerEntry) error {
		created = entry
		return nil
	}

	got, err := svc.RecordEntry(context.Background(), RecordEntryInput{
		Type:        enums.LedgerEntryInvoicePayment,
		Amount:      decimal.RequireFromString("125.750"),
		Description: "  produce supplier  ",
		Reference:   "INV-0042",
	})
	if err != nil {
		t.Fatalf("RecordEntry error: %v", err)
	}
	if created == nil || got != created {
		t.Fatal("expected the created entry to be returned")
	}
	if created.ID == uuid.Nil {
		t.Fatal("expected an id to be assigned")
	}
	if created.Date != types.NewDate(2024, time.May, 15) {
		t.Fatalf("expected date to default to today, got %s", created.Date)
	}
	if created.Description != "produce supplier" {
		t.Fatalf("expected trimmed description, got %q", created.Description)
	}
}

func TestService_RecordEntryUsesBusinessTimezone(t *testing.T) {
	kuwait := time.FixedZone("AST", 3*60*60)
	repo := &fakeRepository{}
	svc, err := NewService(ServiceParams{Repo: repo, Now: fixedNow, Location: kuwait})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	entry, err := svc.RecordEntry(context.Background(), RecordEntryInput{Type: enums.LedgerEntryExpense, Amount: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatalf("RecordEntry error: %v", err)
	}
	if entry.Date != types.NewDate(2024, time.May, 16) {
		t.Fatalf("21:30 UTC is already the next day in Kuwait, got %s", entry.Date)
	}
}

func TestService_RecordEntryValidation(t *testing.T) {
	svc, err := NewService(ServiceParams{Repo: &fakeRepository{}})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	cases := []RecordEntryInput{
		{Type: "salary", Amount: decimal.NewFromInt(1)},
		{Type: enums.LedgerEntryExpense},
		{Type: enums.LedgerEntryExpense, Amount: decimal.NewFromInt(-4)},
	}
	for _, input := range cases {
		if _, err := svc.RecordEntry(context.Background(), input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}

func TestService_DeleteEntryNotFound(t *testing.T) {
	repo := &fakeRepository{deleteFn: func(context.Context, uuid.UUID) (bool, error) { return false, nil }}
	svc, _ := NewService(ServiceParams{Repo: repo})
	if err := svc.DeleteEntry(context.Background(), uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_NetProfit(t *testing.T) {
	repo := &fakeRepository{figuresFn: func(context.Context) (Figures, error) { return figures(), nil }}
	svc, _ := NewService(ServiceParams{Repo: repo, Now: fixedNow, Calculator: pricing.NewCalculator(3)})

	got, err := svc.NetProfit(context.Background(), FilterThisMonth)
	if err != nil {
		t.Fatalf("NetProfit error: %v", err)
	}
	if got.Net.String() != "28.5" {
		t.Fatalf("expected net 28.5, got %s", got.Net)
	}

	repo.figuresFn = func(context.Context) (Figures, error) { return Figures{}, errors.New("db down") }
	if _, err := svc.NetProfit(context.Background(), FilterTotal); !pkgerrors.IsCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if _, err := svc.NetProfit(context.Background(), "weekly"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
