package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	financeapp "github.com/tutorcenter/backend/internal/application/finance"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
)

// ExpenseHandler handles general expense endpoints
type ExpenseHandler struct {
	BaseHandler
	service *financeapp.ExpenseService
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(service *financeapp.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// CreateExpenseRequest records a center expense
type CreateExpenseRequest struct {
	Category    string          `json:"category" binding:"required,oneof=rent utilities supplies equipment marketing salaries maintenance insurance transportation training other" example:"rent"`
	Amount      decimal.Decimal `json:"amount" binding:"gt=0,decimal2" swaggertype:"string" example:"50000.00"`
	Currency    string          `json:"currency" binding:"omitempty,len=3" example:"DZD"`
	Description string          `json:"description" binding:"required,max=500" example:"March rent"`
	Vendor      string          `json:"vendor" binding:"max=200"`
	ExpenseDate string          `json:"expenseDate" binding:"required" example:"2024-03-01"`
	Method      string          `json:"method" binding:"omitempty,oneof=cash bank_transfer card check other"`
	Recurring   string          `json:"recurring" binding:"omitempty,oneof=weekly monthly quarterly"`
	Status      string          `json:"status" binding:"omitempty,oneof=pending paid"`
}

// ExpenseListQuery filters the expense listing
type ExpenseListQuery struct {
	PageQuery
	RangeQuery
	Category string `form:"category"`
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected paid"`
}

// RejectExpenseRequest carries the mandatory rejection reason
type RejectExpenseRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"Duplicate invoice"`
}

// Create godoc
// @Summary      Record an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateExpenseRequest true "Expense"
// @Success      201 {object} dto.Response{data=ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /expenses [post]
func (h *ExpenseHandler) Create(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	date, err := parseDate(req.ExpenseDate)
	if err != nil {
		h.BadRequest(c, "Invalid expenseDate, expected YYYY-MM-DD")
		return
	}

	e, err := h.service.Create(c.Request.Context(), actor, financeapp.CreateExpenseInput{
		Category:    finance.ExpenseCategory(req.Category),
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		Vendor:      req.Vendor,
		ExpenseDate: date,
		Method:      finance.PaymentMethod(req.Method),
		Recurring:   finance.RecurringFrequency(req.Recurring),
		Status:      finance.ExpenseStatus(req.Status),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toExpenseResponse(e))
}

// Get godoc
// @Summary      Get an expense
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Expense ID"
// @Success      200 {object} dto.Response{data=ExpenseResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /expenses/{id} [get]
func (h *ExpenseHandler) Get(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.service.Get, expenseView)
}

// List godoc
// @Summary      List expenses
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        startDate query string false "Start date (YYYY-MM-DD)"
// @Param        endDate query string false "End date (YYYY-MM-DD)"
// @Param        category query string false "Category"
// @Param        status query string false "Status" Enums(pending, approved, rejected, paid)
// @Success      200 {object} dto.Response{data=[]ExpenseResponse,meta=dto.Meta}
// @Router       /expenses [get]
func (h *ExpenseHandler) List(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var q ExpenseListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	rng, ok := h.toRange(c, q.RangeQuery)
	if !ok {
		return
	}
	f := financeapp.ExpenseListFilter{
		ListFilter: financeapp.ListFilter{Page: q.Page, PageSize: q.PageSize, Range: rng},
	}
	if q.Category != "" {
		category := finance.ExpenseCategory(q.Category)
		f.Category = &category
	}
	if q.Status != "" {
		status := finance.ExpenseStatus(q.Status)
		f.Status = &status
	}

	page, err := h.service.List(c.Request.Context(), actor, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(mapSlice(page.Items, toExpenseResponse), page))
}

// Approve godoc
// @Summary      Approve an expense
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Expense ID"
// @Success      200 {object} dto.Response{data=ExpenseResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /expenses/{id}/approve [post]
func (h *ExpenseHandler) Approve(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.service.Approve, expenseView)
}

// Reject godoc
// @Summary      Reject an expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Expense ID"
// @Param        request body RejectExpenseRequest true "Reason"
// @Success      200 {object} dto.Response{data=ExpenseResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /expenses/{id}/reject [post]
func (h *ExpenseHandler) Reject(c *gin.Context) {
	var req RejectExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	idAction(&h.BaseHandler, c, func(ctx context.Context, actor identity.Principal, id uuid.UUID) (*finance.Expense, error) {
		return h.service.Reject(ctx, actor, id, req.Reason)
	}, expenseView)
}
