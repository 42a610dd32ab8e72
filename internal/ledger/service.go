package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/mealprep-backend/pkg/errors"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// Service records outgoing money and reports net profit.
type Service interface {
	RecordEntry(ctx context.Context, input RecordEntryInput) (*models.LedgerEntry, error)
	ListEntries(ctx context.Context, entryType enums.LedgerEntryType) ([]models.LedgerEntry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID) error
	NetProfit(ctx context.Context, filter Filter) (NetProfit, error)
}

// ServiceParams groups dependencies for the ledger service.
type ServiceParams struct {
	Repo       Repository
	Calculator pricing.Calculator
	Location   *time.Location
	Now        func() time.Time
}

type service struct {
	repo     Repository
	calc     pricing.Calculator
	location *time.Location
	now      func() time.Time
}

// RecordEntryInput captures a new expense, invoice payment or partner withdrawal.
type RecordEntryInput struct {
	Type        enums.LedgerEntryType `json:"type" validate:"required"`
	Amount      decimal.Decimal       `json:"amount"`
	Date        types.Date            `json:"date"`
	Description string                `json:"description"`
	Reference   string                `json:"reference"`
}

// NewService wires a ledger service with the provided repository.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ledger repository required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, calc: params.Calculator, location: loc, now: now}, nil
}

func (s *service) RecordEntry(ctx context.Context, input RecordEntryInput) (*models.LedgerEntry, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid ledger entry type %q", input.Type)
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	date := input.Date
	if date.IsZero() {
		date = types.Today(s.now(), s.location)
	}

	entry := &models.LedgerEntry{
		ID:          uuid.New(),
		Type:        input.Type,
		Amount:      input.Amount,
		Date:        date,
		Description: strings.TrimSpace(input.Description),
		Reference:   strings.TrimSpace(input.Reference),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ledger entry")
	}
	return entry, nil
}

func (s *service) ListEntries(ctx context.Context, entryType enums.LedgerEntryType) ([]models.LedgerEntry, error) {
	if entryType != "" && !entryType.IsValid() {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid ledger entry type %q", entryType)
	}
	entries, err := s.repo.List(ctx, entryType)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return entries, nil
}

func (s *service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "entry id is required")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete ledger entry")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "ledger entry not found")
	}
	return nil
}

func (s *service) NetProfit(ctx context.Context, filter Filter) (NetProfit, error) {
	if filter != FilterTotal && filter != FilterThisMonth {
		return NetProfit{}, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid net profit filter %q", filter)
	}
	figures, err := s.repo.LoadFigures(ctx)
	if err != nil {
		return NetProfit{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load financial figures")
	}
	return Compute(figures, filter, types.Today(s.now(), s.location), s.calc), nil
}
