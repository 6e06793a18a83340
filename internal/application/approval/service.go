package approval

import (
	"context"
	"time"

	"github.com/erp/fincore/internal/domain/approval"
	"github.com/erp/fincore/internal/domain/shared"
	"github.com/google/uuid"
)

// Service is the approval engine. All mutations run inside a unit of
// work with the target request row locked, so two concurrent reviewers
// cannot double-advance or double-finalize the same request.
type Service struct {
	uow       approval.UnitOfWork
	requests  approval.RequestRepository
	history   approval.HistoryRepository
	legacy    approval.LegacyApprovableStore
	authority approval.AuthorityResolver
	executor  approval.ActionExecutor
	now       func() time.Time
}

// ServiceOption is a functional option for Service configuration
type ServiceOption func(*Service)

// WithExecutor replaces the default no-op action executor
func WithExecutor(exec approval.ActionExecutor) ServiceOption {
	return func(s *Service) {
		s.executor = exec
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the approval engine
func NewService(
	uow approval.UnitOfWork,
	requests approval.RequestRepository,
	history approval.HistoryRepository,
	legacy approval.LegacyApprovableStore,
	authority approval.AuthorityResolver,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		uow:       uow,
		requests:  requests,
		history:   history,
		legacy:    legacy,
		authority: authority,
		executor:  approval.NoopExecutor{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates a pending approval request at level 1
func (s *Service) Submit(ctx context.Context, actor approval.Actor, input SubmitInput) (*View, error) {
	if actor.IsZero() {
		return nil, shared.ErrUnauthorized
	}

	kind, err := approval.ParseKind(input.Kind)
	if err != nil {
		return nil, err
	}

	request, err := approval.NewRequest(
		actor.TenantID, kind, input.TargetID,
		input.Reference, input.Description,
		input.Amount, actor.ID, input.TotalLevels,
	)
	if err != nil {
		return nil, err
	}
	if len(input.Metadata) > 0 {
		request.Metadata = input.Metadata
	}

	if err := s.requests.Save(ctx, request); err != nil {
		return nil, err
	}
	return viewFromRequest(request), nil
}

// Approve records an approval decision. Legacy expense rows awaiting
// approval take precedence over approval requests: they are decided
// directly and produce no history entry. For approval requests the
// actor's authority ceiling is checked first, a history entry is
// appended at the current level, and the final level finalizes the
// request and dispatches its action executor. Everything happens in
// one transaction.
func (s *Service) Approve(ctx context.Context, actor approval.Actor, approvalID uuid.UUID, comments string) (*View, error) {
	if actor.IsZero() {
		return nil, shared.ErrUnauthorized
	}

	var view *View
	err := s.uow.Execute(ctx, func(repos approval.Repositories) error {
		now := s.now()

		legacyItem, err := repos.Legacy.FindAwaiting(ctx, actor.TenantID, approvalID)
		if err != nil {
			return err
		}
		if legacyItem != nil {
			if err := repos.Legacy.Approve(ctx, actor.TenantID, approvalID, actor.ID, now); err != nil {
				return err
			}
			legacyItem.Status = approval.LegacyStatusApproved
			legacyItem.ReviewerID = &actor.ID
			legacyItem.DecidedAt = &now
			view = viewFromLegacy(legacyItem)
			return nil
		}

		request, err := repos.Requests.FindByIDForUpdate(ctx, actor.TenantID, approvalID)
		if err != nil {
			return err
		}
		if !request.IsPending() {
			return shared.ErrNotFound
		}

		if err := s.checkAuthority(ctx, actor, request); err != nil {
			return err
		}

		entry := approval.NewHistoryEntry(
			actor.TenantID, request.ID, request.CurrentLevel,
			actor.ID, approval.ActionApproved, comments, now,
		)
		if err := repos.History.Append(ctx, entry); err != nil {
			return err
		}

		if request.IsFinalLevel() {
			if err := request.Finalize(actor.ID, now); err != nil {
				return err
			}
			if err := repos.Requests.Save(ctx, request); err != nil {
				return err
			}
			if err := approval.Dispatch(ctx, s.executor, request.Kind, request.TargetID); err != nil {
				return err
			}
		} else {
			if err := request.Advance(); err != nil {
				return err
			}
			if err := repos.Requests.Save(ctx, request); err != nil {
				return err
			}
		}

		view = viewFromRequest(request)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Reject records a rejection. Comments are mandatory; rejection is
// final from any level.
func (s *Service) Reject(ctx context.Context, actor approval.Actor, approvalID uuid.UUID, comments string) (*View, error) {
	if actor.IsZero() {
		return nil, shared.ErrUnauthorized
	}
	if comments == "" {
		return nil, shared.NewDomainError("VALIDATION_ERROR", "Rejection comments are required")
	}

	var view *View
	err := s.uow.Execute(ctx, func(repos approval.Repositories) error {
		now := s.now()

		legacyItem, err := repos.Legacy.FindAwaiting(ctx, actor.TenantID, approvalID)
		if err != nil {
			return err
		}
		if legacyItem != nil {
			if err := repos.Legacy.Reject(ctx, actor.TenantID, approvalID, actor.ID, comments, now); err != nil {
				return err
			}
			legacyItem.Status = approval.LegacyStatusRejected
			legacyItem.ReviewerID = &actor.ID
			legacyItem.DecidedAt = &now
			view = viewFromLegacy(legacyItem)
			return nil
		}

		request, err := repos.Requests.FindByIDForUpdate(ctx, actor.TenantID, approvalID)
		if err != nil {
			return err
		}
		if !request.IsPending() {
			return shared.ErrNotFound
		}

		if err := s.checkAuthority(ctx, actor, request); err != nil {
			return err
		}

		entry := approval.NewHistoryEntry(
			actor.TenantID, request.ID, request.CurrentLevel,
			actor.ID, approval.ActionRejected, comments, now,
		)
		if err := repos.History.Append(ctx, entry); err != nil {
			return err
		}

		if err := request.Reject(actor.ID, now); err != nil {
			return err
		}
		if err := repos.Requests.Save(ctx, request); err != nil {
			return err
		}

		view = viewFromRequest(request)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Cancel withdraws a pending request on behalf of its requester
func (s *Service) Cancel(ctx context.Context, actor approval.Actor, approvalID uuid.UUID) (*View, error) {
	if actor.IsZero() {
		return nil, shared.ErrUnauthorized
	}

	var view *View
	err := s.uow.Execute(ctx, func(repos approval.Repositories) error {
		request, err := repos.Requests.FindByIDForUpdate(ctx, actor.TenantID, approvalID)
		if err != nil {
			return err
		}
		if err := request.Cancel(actor.ID, s.now()); err != nil {
			return err
		}
		if err := repos.Requests.Save(ctx, request); err != nil {
			return err
		}
		view = viewFromRequest(request)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListPending merges awaiting legacy expense rows and pending approval
// requests into one tenant-scoped projection.
func (s *Service) ListPending(ctx context.Context, actor approval.Actor) ([]*View, error) {
	if actor.IsZero() {
		return nil, shared.ErrUnauthorized
	}

	legacyItems, err := s.legacy.ListAwaiting(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.FindPending(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	views := make([]*View, 0, len(legacyItems)+len(requests))
	for i := range legacyItems {
		views = append(views, viewFromLegacy(&legacyItems[i]))
	}
	for i := range requests {
		views = append(views, viewFromRequest(&requests[i]))
	}
	return views, nil
}

// ListHistory merges decided legacy expense rows and finalized approval
// requests, sorted by finalization time descending.
func (s *Service) ListHistory(ctx context.Context, actor approval.Actor) ([]*View, error) {
	if actor.IsZero() {
		return nil, shared.ErrUnauthorized
	}

	legacyItems, err := s.legacy.ListDecided(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}
	requests, err := s.requests.FindFinalized(ctx, actor.TenantID)
	if err != nil {
		return nil, err
	}

	views := make([]*View, 0, len(legacyItems)+len(requests))
	for i := range legacyItems {
		views = append(views, viewFromLegacy(&legacyItems[i]))
	}
	for i := range requests {
		views = append(views, viewFromRequest(&requests[i]))
	}
	sortByFinalizationDesc(views)
	return views, nil
}

// History returns the decision trail for one approval request
func (s *Service) History(ctx context.Context, actor approval.Actor, approvalID uuid.UUID) ([]HistoryView, error) {
	if actor.IsZero() {
		return nil, shared.ErrUnauthorized
	}

	entries, err := s.history.FindByApprovalID(ctx, actor.TenantID, approvalID)
	if err != nil {
		return nil, err
	}
	views := make([]HistoryView, len(entries))
	for i := range entries {
		views[i] = historyView(&entries[i])
	}
	return views, nil
}

// checkAuthority fails Forbidden when the request amount exceeds the
// actor's ceiling, carrying both values so the caller can route to a
// higher authority.
func (s *Service) checkAuthority(ctx context.Context, actor approval.Actor, request *approval.Request) error {
	authority, err := s.authority.Resolve(ctx, actor)
	if err != nil {
		return err
	}
	if !authority.Allows(request.Amount) {
		return shared.NewDomainErrorWithDetails("INSUFFICIENT_AUTHORITY", "Amount exceeds approval authority", map[string]any{
			"amount":  request.Amount.String(),
			"ceiling": authority.Ceiling.String(),
		})
	}
	return nil
}
