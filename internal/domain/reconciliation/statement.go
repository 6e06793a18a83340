package reconciliation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankTransaction is one row of an imported bank statement. Debit,
// credit and amount are all optional; banks disagree on which columns
// they fill.
type BankTransaction struct {
	ID          string           `json:"id"`
	Date        time.Time        `json:"date"`
	Description string           `json:"description,omitempty"`
	Reference   string           `json:"reference,omitempty"`
	Debit       *decimal.Decimal `json:"debit,omitempty"`
	Credit      *decimal.Decimal `json:"credit,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
}

// EffectiveAmount resolves the transaction amount with debit taking
// precedence over credit, then amount, then zero.
func (t BankTransaction) EffectiveAmount() decimal.Decimal {
	switch {
	case t.Debit != nil:
		return *t.Debit
	case t.Credit != nil:
		return *t.Credit
	case t.Amount != nil:
		return *t.Amount
	default:
		return decimal.Zero
	}
}

// LedgerLine is a single debit/credit row of a journal entry, the unit
// reconciliation operates on.
type LedgerLine struct {
	ID          uuid.UUID       `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// EffectiveAmount returns the debit side when present, otherwise the credit side
func (l LedgerLine) EffectiveAmount() decimal.Decimal {
	if !l.Debit.IsZero() {
		return l.Debit
	}
	return l.Credit
}
