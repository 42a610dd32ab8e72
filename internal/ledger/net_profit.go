package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// Filter narrows net profit to a period.
type Filter string

const (
	FilterTotal     Filter = "total"
	FilterThisMonth Filter = "thisMonth"
)

// ParseFilter accepts "total" (also the empty default) and "thisMonth".
func ParseFilter(raw string) (Filter, error) {
	switch Filter(raw) {
	case "", FilterTotal:
		return FilterTotal, nil
	case FilterThisMonth:
		return FilterThisMonth, nil
	default:
		return "", fmt.Errorf("invalid net profit filter %q", raw)
	}
}

// Revenue breaks income down by product line.
type Revenue struct {
	Packages decimal.Decimal `json:"packages"`
	Vacuum   decimal.Decimal `json:"vacuum"`
	Total    decimal.Decimal `json:"total"`
}

// Liabilities breaks outgoing money down by entry type.
type Liabilities struct {
	Expenses           decimal.Decimal `json:"expenses"`
	InvoicePayments    decimal.Decimal `json:"invoice_payments"`
	PartnerWithdrawals decimal.Decimal `json:"partner_withdrawals"`
	Total              decimal.Decimal `json:"total"`
}

// NetProfit is revenue minus liabilities for a period.
type NetProfit struct {
	Filter      Filter          `json:"filter"`
	Revenue     Revenue         `json:"revenue"`
	Liabilities Liabilities     `json:"liabilities"`
	Net         decimal.Decimal `json:"net"`
}

// Figures is the raw material for a net profit computation.
type Figures struct {
	Subscriptions []models.Subscription
	Packages      []models.Package
	DiscountCodes []models.DiscountCode
	VacuumOrders  []models.VacuumOrder
	Entries       []models.LedgerEntry
}

// Compute folds the figures into a NetProfit. Only paid subscriptions earn
// revenue. With FilterThisMonth each record counts only when its own date
// (payment date, order date, entry date) falls in today's calendar month.
func Compute(f Figures, filter Filter, today types.Date, calc pricing.Calculator) NetProfit {
	include := func(d types.Date) bool {
		return filter != FilterThisMonth || d.SameMonth(today)
	}

	out := NetProfit{
		Filter: filter,
		Revenue: Revenue{
			Packages: decimal.Zero,
			Vacuum:   decimal.Zero,
		},
		Liabilities: Liabilities{
			Expenses:           decimal.Zero,
			InvoicePayments:    decimal.Zero,
			PartnerWithdrawals: decimal.Zero,
		},
	}

	for _, sub := range f.Subscriptions {
		if sub.PaymentStatus != enums.PaymentStatusPaid || !include(sub.PaymentDate) {
			continue
		}
		out.Revenue.Packages = out.Revenue.Packages.Add(calc.ForSubscription(sub, f.Packages, f.DiscountCodes).Final)
	}
	for _, order := range f.VacuumOrders {
		if include(order.OrderDate) {
			out.Revenue.Vacuum = out.Revenue.Vacuum.Add(order.TotalPrice)
		}
	}
	for _, entry := range f.Entries {
		if !include(entry.Date) {
			continue
		}
		switch entry.Type {
		case enums.LedgerEntryExpense:
			out.Liabilities.Expenses = out.Liabilities.Expenses.Add(entry.Amount)
		case enums.LedgerEntryInvoicePayment:
			out.Liabilities.InvoicePayments = out.Liabilities.InvoicePayments.Add(entry.Amount)
		case enums.LedgerEntryPartnerWithdrawal:
			out.Liabilities.PartnerWithdrawals = out.Liabilities.PartnerWithdrawals.Add(entry.Amount)
		}
	}

	out.Revenue.Total = out.Revenue.Packages.Add(out.Revenue.Vacuum)
	out.Liabilities.Total = out.Liabilities.Expenses.Add(out.Liabilities.InvoicePayments).Add(out.Liabilities.PartnerWithdrawals)
	out.Net = out.Revenue.Total.Sub(out.Liabilities.Total)
	return out
}
