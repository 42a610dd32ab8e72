package enums

import "fmt"

// LedgerEntryType classifies money leaving the business.
type LedgerEntryType string

const (
	LedgerEntryExpense           LedgerEntryType = "expense"
	LedgerEntryInvoicePayment    LedgerEntryType = "invoice_payment"
	LedgerEntryPartnerWithdrawal LedgerEntryType = "partner_withdrawal"
)

var validLedgerEntryTypes = []LedgerEntryType{
	LedgerEntryExpense,
	LedgerEntryInvoicePayment,
	LedgerEntryPartnerWithdrawal,
}

// String implements fmt.Stringer.
func (t LedgerEntryType) String() string {
	return string(t)
}

// IsValid reports whether the value matches a known ledger entry type.
func (t LedgerEntryType) IsValid() bool {
	for _, candidate := range validLedgerEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerEntryType converts raw input into LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	for _, candidate := range validLedgerEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}
