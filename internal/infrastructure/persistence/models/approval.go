package models

import (
	"encoding/json"
	"time"

	"github.com/erp/fincore/internal/domain/approval"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApprovalRequestModel is the persistence model for the approval Request aggregate root.
type ApprovalRequestModel struct {
	TenantAggregateModel
	Kind         approval.Kind   `gorm:"type:varchar(30);not null;index"`
	TargetID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Reference    string          `gorm:"type:varchar(100)"`
	Description  string          `gorm:"type:varchar(500)"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RequesterID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	CurrentLevel int             `gorm:"not null;default:1"`
	TotalLevels  int             `gorm:"not null;default:1"`
	Status       approval.Status `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Metadata     string          `gorm:"type:text"`
	ReviewerID   *uuid.UUID      `gorm:"type:uuid"`
	ReviewedAt   *time.Time      `gorm:"index"`
}

// TableName returns the table name for GORM
func (ApprovalRequestModel) TableName() string {
	return "approval_requests"
}

// ToDomain converts the persistence model to a domain Request entity.
func (m *ApprovalRequestModel) ToDomain() *approval.Request {
	request := &approval.Request{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		Kind:                m.Kind,
		TargetID:            m.TargetID,
		Reference:           m.Reference,
		Description:         m.Description,
		Amount:              m.Amount,
		RequesterID:         m.RequesterID,
		CurrentLevel:        m.CurrentLevel,
		TotalLevels:         m.TotalLevels,
		Status:              m.Status,
		ReviewerID:          m.ReviewerID,
		ReviewedAt:          m.ReviewedAt,
	}
	if m.Metadata != "" {
		// a corrupted metadata blob loses the annotations, not the request
		_ = json.Unmarshal([]byte(m.Metadata), &request.Metadata)
	}
	return request
}

// FromDomain populates the persistence model from a domain Request entity.
func (m *ApprovalRequestModel) FromDomain(r *approval.Request) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.Kind = r.Kind
	m.TargetID = r.TargetID
	m.Reference = r.Reference
	m.Description = r.Description
	m.Amount = r.Amount
	m.RequesterID = r.RequesterID
	m.CurrentLevel = r.CurrentLevel
	m.TotalLevels = r.TotalLevels
	m.Status = r.Status
	m.ReviewerID = r.ReviewerID
	m.ReviewedAt = r.ReviewedAt
	m.Metadata = ""
	if len(r.Metadata) > 0 {
		if raw, err := json.Marshal(r.Metadata); err == nil {
			m.Metadata = string(raw)
		}
	}
}

// ApprovalRequestModelFromDomain creates a new persistence model from domain.
func ApprovalRequestModelFromDomain(r *approval.Request) *ApprovalRequestModel {
	m := &ApprovalRequestModel{}
	m.FromDomain(r)
	return m
}

// ApprovalHistoryModel is the persistence model for one recorded approval decision.
type ApprovalHistoryModel struct {
	BaseModel
	TenantID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	ApprovalID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Level      int                    `gorm:"not null"`
	ReviewerID uuid.UUID              `gorm:"type:uuid;not null"`
	Action     approval.HistoryAction `gorm:"type:varchar(10);not null"`
	Comments   string                 `gorm:"type:varchar(500)"`
	DecidedAt  time.Time              `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ApprovalHistoryModel) TableName() string {
	return "approval_history"
}

// ToDomain converts the persistence model to a domain HistoryEntry.
func (m *ApprovalHistoryModel) ToDomain() *approval.HistoryEntry {
	return &approval.HistoryEntry{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		ApprovalID: m.ApprovalID,
		Level:      m.Level,
		ReviewerID: m.ReviewerID,
		Action:     m.Action,
		Comments:   m.Comments,
		DecidedAt:  m.DecidedAt,
	}
}

// FromDomain populates the persistence model from a domain HistoryEntry.
func (m *ApprovalHistoryModel) FromDomain(e *approval.HistoryEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.TenantID = e.TenantID
	m.ApprovalID = e.ApprovalID
	m.Level = e.Level
	m.ReviewerID = e.ReviewerID
	m.Action = e.Action
	m.Comments = e.Comments
	m.DecidedAt = e.DecidedAt
}

// ApprovalAuthority is the persistence model for a reviewer's approval ceiling.
type ApprovalAuthority struct {
	BaseModel
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_authority_tenant_user,priority:1"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_authority_tenant_user,priority:2"`
	Unlimited bool            `gorm:"not null;default:false"`
	Ceiling   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ApprovalAuthority) TableName() string {
	return "approval_authorities"
}

// LegacyExpenseModel maps the pre-workflow expense_records table. Rows
// here are decided directly, outside the multi-level approval flow.
type LegacyExpenseModel struct {
	TenantAggregateModel
	ExpenseNumber  string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_expense_tenant_number,priority:2"`
	Description    string          `gorm:"type:varchar(500)"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status         string          `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	SubmittedAt    *time.Time
	SubmittedBy    *uuid.UUID `gorm:"type:uuid"`
	ReviewedAt     *time.Time
	ReviewedBy     *uuid.UUID `gorm:"type:uuid"`
	ReviewComments string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (LegacyExpenseModel) TableName() string {
	return "expense_records"
}

// ToDomain converts the persistence model to a domain LegacyItem.
func (m *LegacyExpenseModel) ToDomain() *approval.LegacyItem {
	item := &approval.LegacyItem{
		ID:          m.ID,
		TenantID:    m.TenantID,
		Reference:   m.ExpenseNumber,
		Description: m.Description,
		Amount:      m.Amount,
		Status:      approval.LegacyStatus(m.Status),
		SubmittedAt: m.SubmittedAt,
		ReviewerID:  m.ReviewedBy,
		DecidedAt:   m.ReviewedAt,
	}
	if m.SubmittedBy != nil {
		item.RequesterID = *m.SubmittedBy
	} else if m.CreatedBy != nil {
		item.RequesterID = *m.CreatedBy
	}
	return item
}
