package reconciliation

import (
	"time"

	"github.com/erp/fincore/internal/domain/reconciliation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AutoMatchInput feeds one matcher run. Tolerances are optional; zero
// values fall back to the defaults.
type AutoMatchInput struct {
	AccountID       uuid.UUID                        `json:"account_id"`
	Transactions    []reconciliation.BankTransaction `json:"transactions"`
	ToleranceAmount *decimal.Decimal                 `json:"tolerance_amount,omitempty"`
	ToleranceDays   *int                             `json:"tolerance_days,omitempty"`
}

// PersistInput records one accepted match against a statement
type PersistInput struct {
	AccountID      uuid.UUID       `json:"account_id"`
	LedgerLineID   uuid.UUID       `json:"ledger_line_id"`
	StatementDate  time.Time       `json:"statement_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	BankReference  string          `json:"bank_reference"`
}

// BatchItem is one match within a batch persist
type BatchItem struct {
	LedgerLineID  uuid.UUID `json:"ledger_line_id"`
	BankReference string    `json:"bank_reference"`
}

// BatchInput persists a set of matches for one statement in one go
type BatchInput struct {
	AccountID      uuid.UUID       `json:"account_id"`
	StatementDate  time.Time       `json:"statement_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Items          []BatchItem     `json:"items"`
}

// BatchError reports one item that could not be persisted
type BatchError struct {
	LedgerLineID uuid.UUID `json:"ledger_line_id"`
	Message      string    `json:"message"`
}

// BatchResult summarizes a batch persist: successes commit even when
// some items fail.
type BatchResult struct {
	ReconciledCount int          `json:"reconciled_count"`
	ErrorCount      int          `json:"error_count"`
	Errors          []BatchError `json:"errors"`
}

// MatchView is the read shape of a persisted match
type MatchView struct {
	ID             uuid.UUID       `json:"id"`
	AccountID      uuid.UUID       `json:"account_id"`
	LedgerLineID   uuid.UUID       `json:"ledger_line_id"`
	StatementDate  time.Time       `json:"statement_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	BankReference  string          `json:"bank_reference,omitempty"`
	MatchedBy      uuid.UUID       `json:"matched_by"`
	MatchedAt      time.Time       `json:"matched_at"`
	Status         string          `json:"status"`
}

func matchView(m *reconciliation.Match) *MatchView {
	return &MatchView{
		ID:             m.ID,
		AccountID:      m.AccountID,
		LedgerLineID:   m.LedgerLineID,
		StatementDate:  m.StatementDate,
		OpeningBalance: m.OpeningBalance,
		ClosingBalance: m.ClosingBalance,
		BankReference:  m.BankReference,
		MatchedBy:      m.MatchedBy,
		MatchedAt:      m.MatchedAt,
		Status:         string(m.Status),
	}
}
