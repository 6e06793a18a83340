package handler

import (
	"context"
	"net/http"

	approvalapp "github.com/erp/fincore/internal/application/approval"
	"github.com/erp/fincore/internal/domain/approval"
	"github.com/erp/fincore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApprovalHandler handles approval workflow API endpoints
type ApprovalHandler struct {
	BaseHandler
	service *approvalapp.Service
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(service *approvalapp.Service) *ApprovalHandler {
	return &ApprovalHandler{
		service: service,
	}
}

// SubmitApprovalRequest represents a request to submit something for approval
type SubmitApprovalRequest struct {
	Kind        string            `json:"kind" binding:"required,oneof=EXPENSE JOURNAL_ENTRY INVOICE OTHER" example:"EXPENSE"`
	TargetID    string            `json:"target_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Reference   string            `json:"reference" binding:"required,max=100" example:"EXP-2026-00042"`
	Description string            `json:"description" binding:"max=500" example:"Quarterly team offsite"`
	Amount      decimal.Decimal   `json:"amount" binding:"required" example:"1250.00"`
	TotalLevels int               `json:"total_levels" binding:"required,min=1" example:"2"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ReviewRequest carries the reviewer's comments on a decision
type ReviewRequest struct {
	Comments string `json:"comments" binding:"max=500" example:"Looks good"`
}

// actor builds the acting identity from the authenticated request
func (h *ApprovalHandler) actor(c *gin.Context) (approval.Actor, bool) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return approval.Actor{}, false
	}
	userID, err := getUserID(c)
	if err != nil || userID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user")
		return approval.Actor{}, false
	}
	return approval.Actor{
		ID:       userID,
		TenantID: tenantID,
		Name:     middleware.GetJWTUsername(c),
	}, true
}

// Submit creates a new approval request
func (h *ApprovalHandler) Submit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req SubmitApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		h.BadRequest(c, "Invalid target ID")
		return
	}

	view, err := h.service.Submit(c.Request.Context(), actor, approvalapp.SubmitInput{
		Kind:        req.Kind,
		TargetID:    targetID,
		Reference:   req.Reference,
		Description: req.Description,
		Amount:      req.Amount,
		TotalLevels: req.TotalLevels,
		Metadata:    req.Metadata,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, view)
}

// Approve records an approval decision at the current level
func (h *ApprovalHandler) Approve(c *gin.Context) {
	h.review(c, h.service.Approve)
}

// Reject records a rejection, finalizing the request
func (h *ApprovalHandler) Reject(c *gin.Context) {
	h.review(c, h.service.Reject)
}

// review handles the shared shape of approve and reject: resolve the
// actor, parse the ID, bind optional comments, delegate, return the
// updated view.
func (h *ApprovalHandler) review(c *gin.Context, decide func(ctx context.Context, actor approval.Actor, approvalID uuid.UUID, comments string) (*approvalapp.View, error)) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	approvalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid approval ID")
		return
	}

	// The body is optional: approvals may carry no comments
	var req ReviewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
	}

	view, err := decide(c.Request.Context(), actor, approvalID, req.Comments)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, view)
}

// Cancel withdraws a pending request; only the requester may cancel
func (h *ApprovalHandler) Cancel(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	approvalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid approval ID")
		return
	}

	view, err := h.service.Cancel(c.Request.Context(), actor, approvalID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, view)
}

// ListPending lists the tenant's approvals awaiting a decision
func (h *ApprovalHandler) ListPending(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	views, err := h.service.ListPending(c.Request.Context(), actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, views)
}

// ListHistory lists the tenant's finalized approvals, newest decision first
func (h *ApprovalHandler) ListHistory(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	views, err := h.service.ListHistory(c.Request.Context(), actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, views)
}

// History returns the decision trail of one approval request
func (h *ApprovalHandler) History(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	approvalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid approval ID")
		return
	}

	entries, err := h.service.History(c.Request.Context(), actor, approvalID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entries)
}

// RegisterRoutes registers all approval workflow routes
func (h *ApprovalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	approvals := rg.Group("/finance/approvals")
	{
		approvals.POST("", h.Submit)
		approvals.GET("/pending", h.ListPending)
		approvals.GET("/history", h.ListHistory)
		approvals.GET("/:id/history", h.History)
		approvals.POST("/:id/approve", h.Approve)
		approvals.POST("/:id/reject", h.Reject)
		approvals.POST("/:id/cancel", h.Cancel)
	}
}
