package approval

import (
	"sort"
	"time"

	"github.com/erp/fincore/internal/domain/approval"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Source distinguishes rows backed by approval requests from rows
// backed by legacy expense records.
const (
	SourceRequest = "request"
	SourceLegacy  = "legacy"
)

// SubmitInput carries a new approval request submission
type SubmitInput struct {
	Kind        string            `json:"kind"`
	TargetID    uuid.UUID         `json:"target_id"`
	Reference   string            `json:"reference"`
	Description string            `json:"description"`
	Amount      decimal.Decimal   `json:"amount"`
	TotalLevels int               `json:"total_levels"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// View is the unified read shape for approval requests and legacy
// expense rows.
type View struct {
	ID           uuid.UUID         `json:"id"`
	Kind         string            `json:"kind"`
	TargetID     uuid.UUID         `json:"target_id"`
	Reference    string            `json:"reference"`
	Description  string            `json:"description"`
	Amount       decimal.Decimal   `json:"amount"`
	RequesterID  uuid.UUID         `json:"requester_id"`
	CurrentLevel int               `json:"current_level"`
	TotalLevels  int               `json:"total_levels"`
	Status       string            `json:"status"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	ReviewerID   *uuid.UUID        `json:"reviewer_id,omitempty"`
	ReviewedAt   *time.Time        `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	Source       string            `json:"source"`
}

// HistoryView is one recorded decision on an approval request
type HistoryView struct {
	ID         uuid.UUID `json:"id"`
	ApprovalID uuid.UUID `json:"approval_id"`
	Level      int       `json:"level"`
	ReviewerID uuid.UUID `json:"reviewer_id"`
	Action     string    `json:"action"`
	Comments   string    `json:"comments,omitempty"`
	DecidedAt  time.Time `json:"decided_at"`
}

func viewFromRequest(r *approval.Request) *View {
	return &View{
		ID:           r.ID,
		Kind:         r.Kind.String(),
		TargetID:     r.TargetID,
		Reference:    r.Reference,
		Description:  r.Description,
		Amount:       r.Amount,
		RequesterID:  r.RequesterID,
		CurrentLevel: r.CurrentLevel,
		TotalLevels:  r.TotalLevels,
		Status:       string(r.Status),
		Metadata:     r.Metadata,
		ReviewerID:   r.ReviewerID,
		ReviewedAt:   r.ReviewedAt,
		CreatedAt:    r.CreatedAt,
		Source:       SourceRequest,
	}
}

func viewFromLegacy(item *approval.LegacyItem) *View {
	v := &View{
		ID:           item.ID,
		Kind:         approval.KindExpense.String(),
		TargetID:     item.ID,
		Reference:    item.Reference,
		Description:  item.Description,
		Amount:       item.Amount,
		RequesterID:  item.RequesterID,
		CurrentLevel: 1,
		TotalLevels:  1,
		Status:       legacyStatusLabel(item.Status),
		ReviewerID:   item.ReviewerID,
		ReviewedAt:   item.DecidedAt,
		Source:       SourceLegacy,
	}
	if item.SubmittedAt != nil {
		v.CreatedAt = *item.SubmittedAt
	}
	return v
}

func legacyStatusLabel(s approval.LegacyStatus) string {
	switch s {
	case approval.LegacyStatusAwaiting:
		return string(approval.StatusPending)
	case approval.LegacyStatusApproved:
		return string(approval.StatusApproved)
	case approval.LegacyStatusRejected:
		return string(approval.StatusRejected)
	default:
		return string(s)
	}
}

func historyView(e *approval.HistoryEntry) HistoryView {
	return HistoryView{
		ID:         e.ID,
		ApprovalID: e.ApprovalID,
		Level:      e.Level,
		ReviewerID: e.ReviewerID,
		Action:     string(e.Action),
		Comments:   e.Comments,
		DecidedAt:  e.DecidedAt,
	}
}

// sortByFinalizationDesc orders merged history views newest-first by
// finalization time; views without one sort last.
func sortByFinalizationDesc(views []*View) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].ReviewedAt, views[j].ReviewedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
