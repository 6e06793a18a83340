package handler

import (
	"errors"
	"net/http"
	"time"

	reconapp "github.com/erp/fincore/internal/application/reconciliation"
	"github.com/erp/fincore/internal/domain/reconciliation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconciliationHandler handles bank reconciliation API endpoints
type ReconciliationHandler struct {
	BaseHandler
	service *reconapp.Service
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(service *reconapp.Service) *ReconciliationHandler {
	return &ReconciliationHandler{
		service: service,
	}
}

// statementDateLayout is the wire format for bank statement dates
const statementDateLayout = "2006-01-02"

var (
	errInvalidAccountID     = errors.New("Invalid account ID")
	errInvalidLedgerLineID  = errors.New("Invalid ledger line ID")
	errInvalidStatementDate = errors.New("Invalid statement date, expected YYYY-MM-DD")
)

// AutoMatchRequest represents a request to run the fuzzy matcher
type AutoMatchRequest struct {
	AccountID       string                           `json:"account_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Transactions    []reconciliation.BankTransaction `json:"transactions" binding:"required"`
	ToleranceAmount *decimal.Decimal                 `json:"tolerance_amount,omitempty" example:"0.05"`
	ToleranceDays   *int                             `json:"tolerance_days,omitempty" example:"5"`
}

// PersistMatchRequest represents a request to record one accepted match
type PersistMatchRequest struct {
	AccountID      string          `json:"account_id" binding:"required,uuid"`
	LedgerLineID   string          `json:"ledger_line_id" binding:"required,uuid"`
	StatementDate  string          `json:"statement_date" binding:"required" example:"2026-03-31"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	BankReference  string          `json:"bank_reference" binding:"max=100"`
}

// BatchMatchItemRequest is one match within a batch persist
type BatchMatchItemRequest struct {
	LedgerLineID  string `json:"ledger_line_id" binding:"required,uuid"`
	BankReference string `json:"bank_reference" binding:"max=100"`
}

// PersistBatchRequest represents a request to record a statement's matches in one go
type PersistBatchRequest struct {
	AccountID      string                  `json:"account_id" binding:"required,uuid"`
	StatementDate  string                  `json:"statement_date" binding:"required" example:"2026-03-31"`
	OpeningBalance decimal.Decimal         `json:"opening_balance"`
	ClosingBalance decimal.Decimal         `json:"closing_balance"`
	Items          []BatchMatchItemRequest `json:"items" binding:"required,min=1,dive"`
}

// CandidateLinesFilter narrows candidate lines to one account
type CandidateLinesFilter struct {
	AccountID string `form:"account_id" binding:"required,uuid"`
}

// HistoryFilter optionally narrows reconciliation history to one account
type HistoryFilter struct {
	AccountID string `form:"account_id" binding:"omitempty,uuid"`
}

// AutoMatch runs the fuzzy matcher over the supplied bank transactions.
// Nothing is persisted; the caller reviews the proposals first.
func (h *ReconciliationHandler) AutoMatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var req AutoMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	result, err := h.service.AutoMatch(c.Request.Context(), tenantID, reconapp.AutoMatchInput{
		AccountID:       accountID,
		Transactions:    req.Transactions,
		ToleranceAmount: req.ToleranceAmount,
		ToleranceDays:   req.ToleranceDays,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// CandidateLines lists an account's ledger lines that carry no active match
func (h *ReconciliationHandler) CandidateLines(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var filter CandidateLinesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	accountID, err := uuid.Parse(filter.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}

	lines, err := h.service.CandidateLines(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lines)
}

// PersistMatch records one accepted match, replacing any earlier match
// for the same ledger line
func (h *ReconciliationHandler) PersistMatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}
	userID, err := getUserID(c)
	if err != nil || userID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user")
		return
	}

	var req PersistMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	input, err := h.persistInput(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	view, err := h.service.PersistSingle(c.Request.Context(), tenantID, userID, input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, view)
}

// PersistBatch records a statement's matches in one transaction.
// Individual failures are reported per item; successes still commit.
func (h *ReconciliationHandler) PersistBatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}
	userID, err := getUserID(c)
	if err != nil || userID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid user")
		return
	}

	var req PersistBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		h.BadRequest(c, "Invalid account ID")
		return
	}
	statementDate, err := time.Parse(statementDateLayout, req.StatementDate)
	if err != nil {
		h.BadRequest(c, "Invalid statement date, expected YYYY-MM-DD")
		return
	}

	items := make([]reconapp.BatchItem, 0, len(req.Items))
	for _, item := range req.Items {
		lineID, err := uuid.Parse(item.LedgerLineID)
		if err != nil {
			h.BadRequest(c, "Invalid ledger line ID")
			return
		}
		items = append(items, reconapp.BatchItem{
			LedgerLineID:  lineID,
			BankReference: item.BankReference,
		})
	}

	result, err := h.service.PersistBatch(c.Request.Context(), tenantID, userID, reconapp.BatchInput{
		AccountID:      accountID,
		StatementDate:  statementDate,
		OpeningBalance: req.OpeningBalance,
		ClosingBalance: req.ClosingBalance,
		Items:          items,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Unmatch deletes a persisted match, making its ledger line matchable again
func (h *ReconciliationHandler) Unmatch(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid match ID")
		return
	}

	if err := h.service.Unmatch(c.Request.Context(), tenantID, matchID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// History lists past reconciliation sessions, newest statement first
func (h *ReconciliationHandler) History(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil || tenantID == uuid.Nil {
		h.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid tenant")
		return
	}

	var filter HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	var accountID *uuid.UUID
	if filter.AccountID != "" {
		id, err := uuid.Parse(filter.AccountID)
		if err != nil {
			h.BadRequest(c, "Invalid account ID")
			return
		}
		accountID = &id
	}

	sessions, err := h.service.History(c.Request.Context(), tenantID, accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sessions)
}

func (h *ReconciliationHandler) persistInput(req PersistMatchRequest) (reconapp.PersistInput, error) {
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return reconapp.PersistInput{}, errInvalidAccountID
	}
	lineID, err := uuid.Parse(req.LedgerLineID)
	if err != nil {
		return reconapp.PersistInput{}, errInvalidLedgerLineID
	}
	statementDate, err := time.Parse(statementDateLayout, req.StatementDate)
	if err != nil {
		return reconapp.PersistInput{}, errInvalidStatementDate
	}
	return reconapp.PersistInput{
		AccountID:      accountID,
		LedgerLineID:   lineID,
		StatementDate:  statementDate,
		OpeningBalance: req.OpeningBalance,
		ClosingBalance: req.ClosingBalance,
		BankReference:  req.BankReference,
	}, nil
}

// RegisterRoutes registers all reconciliation routes
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	recon := rg.Group("/finance/reconciliation")
	{
		recon.GET("/candidates", h.CandidateLines)
		recon.POST("/auto-match", h.AutoMatch)
		recon.POST("/matches", h.PersistMatch)
		recon.POST("/matches/batch", h.PersistBatch)
		recon.DELETE("/matches/:id", h.Unmatch)
		recon.GET("/history", h.History)
	}
}
