package models

import (
	"time"

	"github.com/erp/fincore/internal/domain/reconciliation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationMatchModel is the persistence model for the Match aggregate root.
// A partial unique index enforces at most one RECONCILED row per ledger line.
type ReconciliationMatchModel struct {
	TenantAggregateModel
	AccountID      uuid.UUID                  `gorm:"type:uuid;not null;index"`
	LedgerLineID   uuid.UUID                  `gorm:"type:uuid;not null;index"`
	StatementDate  time.Time                  `gorm:"type:date;not null;index"`
	OpeningBalance decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	ClosingBalance decimal.Decimal            `gorm:"type:decimal(18,4);not null;default:0"`
	BankReference  string                     `gorm:"type:varchar(100)"`
	MatchedBy      uuid.UUID                  `gorm:"type:uuid;not null"`
	MatchedAt      time.Time                  `gorm:"not null"`
	Status         reconciliation.MatchStatus `gorm:"type:varchar(20);not null;default:'RECONCILED';index"`
}

// TableName returns the table name for GORM
func (ReconciliationMatchModel) TableName() string {
	return "reconciliation_matches"
}

// ToDomain converts the persistence model to a domain Match entity.
func (m *ReconciliationMatchModel) ToDomain() *reconciliation.Match {
	return &reconciliation.Match{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		AccountID:           m.AccountID,
		LedgerLineID:        m.LedgerLineID,
		StatementDate:       m.StatementDate,
		OpeningBalance:      m.OpeningBalance,
		ClosingBalance:      m.ClosingBalance,
		BankReference:       m.BankReference,
		MatchedBy:           m.MatchedBy,
		MatchedAt:           m.MatchedAt,
		Status:              m.Status,
	}
}

// FromDomain populates the persistence model from a domain Match entity.
func (m *ReconciliationMatchModel) FromDomain(match *reconciliation.Match) {
	m.FromDomainTenantAggregateRoot(match.TenantAggregateRoot)
	m.AccountID = match.AccountID
	m.LedgerLineID = match.LedgerLineID
	m.StatementDate = match.StatementDate
	m.OpeningBalance = match.OpeningBalance
	m.ClosingBalance = match.ClosingBalance
	m.BankReference = match.BankReference
	m.MatchedBy = match.MatchedBy
	m.MatchedAt = match.MatchedAt
	m.Status = match.Status
}

// ReconciliationMatchModelFromDomain creates a new persistence model from domain.
func ReconciliationMatchModelFromDomain(match *reconciliation.Match) *ReconciliationMatchModel {
	m := &ReconciliationMatchModel{}
	m.FromDomain(match)
	return m
}

// LedgerLineModel maps the ledger_lines table owned by the accounting
// core. The reconciliation side only ever reads it.
type LedgerLineModel struct {
	BaseModel
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	EntryDate   time.Time       `gorm:"type:date;not null;index"`
	Description string          `gorm:"type:varchar(500)"`
	Reference   string          `gorm:"type:varchar(100)"`
	Debit       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Credit      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (LedgerLineModel) TableName() string {
	return "ledger_lines"
}

// ToDomain converts the persistence model to a domain LedgerLine.
func (m *LedgerLineModel) ToDomain() reconciliation.LedgerLine {
	return reconciliation.LedgerLine{
		ID:          m.ID,
		Date:        m.EntryDate,
		Description: m.Description,
		Reference:   m.Reference,
		Debit:       m.Debit,
		Credit:      m.Credit,
	}
}
