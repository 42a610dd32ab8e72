package inventory

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/mealprep-backend/pkg/db/models"
	"github.com/angelmondragon/mealprep-backend/pkg/enums"
	"github.com/angelmondragon/mealprep-backend/pkg/types"
)

// LogEntry is a transaction annotated with the item balance right after it.
type LogEntry struct {
	ID           uuid.UUID             `json:"id"`
	Type         enums.TransactionType `json:"type"`
	Quantity     decimal.Decimal       `json:"quantity"`
	Date         types.Date            `json:"date"`
	BalanceAfter decimal.Decimal       `json:"balance_after"`
}

// Signed is the effect of a transaction on the balance.
func Signed(tx models.InventoryTransaction) decimal.Decimal {
	if tx.Type == enums.TransactionWithdraw {
		return tx.Quantity.Neg()
	}
	return tx.Quantity
}

// Balance sums every transaction: additions count up, withdrawals down.
func Balance(txs []models.InventoryTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(Signed(tx))
	}
	return total
}

// Chronological sorts oldest first; same-day transactions keep recording order.
func Chronological(txs []models.InventoryTransaction) []models.InventoryTransaction {
	out := append([]models.InventoryTransaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// ForwardBalances walks oldest to newest and returns the running balance after each transaction.
func ForwardBalances(txs []models.InventoryTransaction) []decimal.Decimal {
	ordered := Chronological(txs)
	out := make([]decimal.Decimal, len(ordered))
	running := decimal.Zero
	for i, tx := range ordered {
		running = running.Add(Signed(tx))
		out[i] = running
	}
	return out
}

// Log renders transactions newest first. The balance after the newest entry
// is the item total; each older one is obtained by undoing the newer entry.
func Log(txs []models.InventoryTransaction) []LogEntry {
	ordered := Chronological(txs)
	entries := make([]LogEntry, len(ordered))
	balance := Balance(ordered)
	for i := len(ordered) - 1; i >= 0; i-- {
		tx := ordered[i]
		entries[len(ordered)-1-i] = LogEntry{
			ID:           tx.ID,
			Type:         tx.Type,
			Quantity:     tx.Quantity,
			Date:         tx.Date,
			BalanceAfter: balance,
		}
		balance = balance.Sub(Signed(tx))
	}
	return entries
}

// LowStock reports whether balance has dropped below the item's minimum.
func LowStock(item models.InventoryItem, balance decimal.Decimal) bool {
	return balance.LessThan(item.MinStock)
}
