package reconciliation

import (
	"time"

	"github.com/erp/fincore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchStatus is the lifecycle state of a persisted match. There is a
// single active state; undoing a match deletes the record.
type MatchStatus string

const (
	MatchStatusReconciled MatchStatus = "RECONCILED"
)

// Match is a persisted, accepted pairing between a bank statement
// transaction and a ledger line. At most one RECONCILED match may
// reference a given ledger line at any time.
type Match struct {
	shared.TenantAggregateRoot
	AccountID      uuid.UUID
	LedgerLineID   uuid.UUID
	StatementDate  time.Time
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	BankReference  string
	MatchedBy      uuid.UUID
	MatchedAt      time.Time
	Status         MatchStatus
}

// NewMatch creates a reconciled match record
func NewMatch(tenantID, accountID, ledgerLineID uuid.UUID, statementDate time.Time, openingBalance, closingBalance decimal.Decimal, bankReference string, matchedBy uuid.UUID, matchedAt time.Time) *Match {
	return &Match{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, matchedBy),
		AccountID:           accountID,
		LedgerLineID:        ledgerLineID,
		StatementDate:       statementDate,
		OpeningBalance:      openingBalance,
		ClosingBalance:      closingBalance,
		BankReference:       bankReference,
		MatchedBy:           matchedBy,
		MatchedAt:           matchedAt,
		Status:              MatchStatusReconciled,
	}
}

// Session is a grouped view of one reconciliation run: every match
// persisted for an account under the same statement date.
type Session struct {
	AccountID      uuid.UUID       `json:"account_id"`
	StatementDate  time.Time       `json:"statement_date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	MatchCount     int             `json:"match_count"`
	LastMatchedAt  time.Time       `json:"last_matched_at"`
}
