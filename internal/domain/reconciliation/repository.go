package reconciliation

import (
	"context"

	"github.com/google/uuid"
)

// MatchRepository persists accepted matches
type MatchRepository interface {
	// Upsert creates the match or replaces the active record for the
	// same ledger line.
	Upsert(ctx context.Context, match *Match) error
	// Create inserts a match; a duplicate active match for the ledger
	// line fails with ALREADY_EXISTS.
	Create(ctx context.Context, match *Match) error
	ExistsForLedgerLine(ctx context.Context, tenantID, ledgerLineID uuid.UUID) (bool, error)
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Match, error)
	// Delete hard-deletes the match, making its ledger line matchable again
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	// Sessions lists past reconciliation runs grouped by account and
	// statement date, newest first. accountID narrows to one account
	// when non-nil.
	Sessions(ctx context.Context, tenantID uuid.UUID, accountID *uuid.UUID) ([]Session, error)
}

// StoreUnitOfWork runs a callback with a match repository bound to one
// database transaction.
type StoreUnitOfWork interface {
	Execute(ctx context.Context, fn func(matches MatchRepository) error) error
}

// LedgerReader is the read-only view of ledger lines owned by the
// accounting core. Implementations must exclude lines that already
// carry an active match.
type LedgerReader interface {
	CandidateLines(ctx context.Context, tenantID, accountID uuid.UUID) ([]LedgerLine, error)
}
