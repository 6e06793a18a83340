package reconciliation

import (
	"context"
	"errors"
	"time"

	"github.com/erp/fincore/internal/domain/reconciliation"
	"github.com/erp/fincore/internal/domain/shared"
	"github.com/google/uuid"
)

// Service drives the reconciliation workflow: running the pure matcher
// over candidate ledger lines and persisting accepted matches.
type Service struct {
	store   reconciliation.StoreUnitOfWork
	matches reconciliation.MatchRepository
	ledger  reconciliation.LedgerReader
	now     func() time.Time
}

// ServiceOption is a functional option for Service configuration
type ServiceOption func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the reconciliation service
func NewService(
	store reconciliation.StoreUnitOfWork,
	matches reconciliation.MatchRepository,
	ledger reconciliation.LedgerReader,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		store:   store,
		matches: matches,
		ledger:  ledger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AutoMatch runs the fuzzy matcher over the account's unreconciled
// ledger lines. It persists nothing; callers review the proposal and
// persist accepted pairs separately.
func (s *Service) AutoMatch(ctx context.Context, tenantID uuid.UUID, input AutoMatchInput) (*reconciliation.MatchResult, error) {
	if input.AccountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Account id is required")
	}

	candidates, err := s.ledger.CandidateLines(ctx, tenantID, input.AccountID)
	if err != nil {
		return nil, err
	}

	tolerances := reconciliation.DefaultTolerances()
	if input.ToleranceAmount != nil {
		tolerances.Amount = *input.ToleranceAmount
	}
	if input.ToleranceDays != nil {
		tolerances.Days = *input.ToleranceDays
	}

	result := reconciliation.NewMatcher(tolerances).Match(input.Transactions, candidates)
	return &result, nil
}

// CandidateLines lists the account's ledger lines still open for
// matching.
func (s *Service) CandidateLines(ctx context.Context, tenantID, accountID uuid.UUID) ([]reconciliation.LedgerLine, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Account id is required")
	}
	return s.ledger.CandidateLines(ctx, tenantID, accountID)
}

// PersistSingle records one match, replacing any active match already
// held by the same ledger line.
func (s *Service) PersistSingle(ctx context.Context, tenantID, userID uuid.UUID, input PersistInput) (*MatchView, error) {
	if err := validatePersistTarget(input.AccountID, input.LedgerLineID); err != nil {
		return nil, err
	}

	match := reconciliation.NewMatch(
		tenantID, input.AccountID, input.LedgerLineID,
		input.StatementDate, input.OpeningBalance, input.ClosingBalance,
		input.BankReference, userID, s.now(),
	)
	if err := s.matches.Upsert(ctx, match); err != nil {
		return nil, err
	}
	return matchView(match), nil
}

// PersistBatch records a set of matches for one statement inside a
// single transaction. Lines that already carry an active match are
// reported in the result's errors slice; the remaining inserts still
// commit.
func (s *Service) PersistBatch(ctx context.Context, tenantID, userID uuid.UUID, input BatchInput) (*BatchResult, error) {
	if input.AccountID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Account id is required")
	}
	if len(input.Items) == 0 {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "At least one match item is required")
	}

	result := &BatchResult{Errors: make([]BatchError, 0)}
	err := s.store.Execute(ctx, func(matches reconciliation.MatchRepository) error {
		now := s.now()
		for _, item := range input.Items {
			if item.LedgerLineID == uuid.Nil {
				result.Errors = append(result.Errors, BatchError{
					LedgerLineID: item.LedgerLineID,
					Message:      "Ledger line id is required",
				})
				continue
			}

			exists, err := matches.ExistsForLedgerLine(ctx, tenantID, item.LedgerLineID)
			if err != nil {
				return err
			}
			if exists {
				result.Errors = append(result.Errors, BatchError{
					LedgerLineID: item.LedgerLineID,
					Message:      "Already reconciled",
				})
				continue
			}

			match := reconciliation.NewMatch(
				tenantID, input.AccountID, item.LedgerLineID,
				input.StatementDate, input.OpeningBalance, input.ClosingBalance,
				item.BankReference, userID, now,
			)
			if err := matches.Create(ctx, match); err != nil {
				// a concurrent insert between the existence check and the
				// insert surfaces as a duplicate; treat it like the check
				var domainErr *shared.DomainError
				if errors.As(err, &domainErr) && domainErr.Code == shared.ErrAlreadyExists.Code {
					result.Errors = append(result.Errors, BatchError{
						LedgerLineID: item.LedgerLineID,
						Message:      "Already reconciled",
					})
					continue
				}
				return err
			}
			result.ReconciledCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.ErrorCount = len(result.Errors)
	return result, nil
}

// Unmatch deletes a persisted match so its ledger line can be matched
// again.
func (s *Service) Unmatch(ctx context.Context, tenantID, matchID uuid.UUID) error {
	if _, err := s.matches.FindByID(ctx, tenantID, matchID); err != nil {
		return err
	}
	return s.matches.Delete(ctx, tenantID, matchID)
}

// History lists past reconciliation sessions, newest first. accountID
// narrows to one account when non-nil.
func (s *Service) History(ctx context.Context, tenantID uuid.UUID, accountID *uuid.UUID) ([]reconciliation.Session, error) {
	return s.matches.Sessions(ctx, tenantID, accountID)
}

func validatePersistTarget(accountID, ledgerLineID uuid.UUID) error {
	if accountID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Account id is required")
	}
	if ledgerLineID == uuid.Nil {
		return shared.NewDomainError("VALIDATION_ERROR", "Ledger line id is required")
	}
	return nil
}
