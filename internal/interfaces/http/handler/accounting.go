package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tutorcenter/backend/internal/application/accounting"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/domain/shared"
)

// AccountingHandler serves the read-only accounting aggregates
type AccountingHandler struct {
	BaseHandler
	service *accounting.Service
}

// NewAccountingHandler creates a new accounting handler
func NewAccountingHandler(service *accounting.Service) *AccountingHandler {
	return &AccountingHandler{service: service}
}

// StudentAccountingQuery scopes the per-student aggregate
type StudentAccountingQuery struct {
	RangeQuery
	TeacherID string `form:"teacherId"`
}

// ExpensesQuery scopes the expense aggregate
type ExpensesQuery struct {
	RangeQuery
	Category string `form:"category"`
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected paid"`
}

// CashFlowQuery scopes the cash flow series
type CashFlowQuery struct {
	RangeQuery
	Period string `form:"period" example:"month"`
}

// Students godoc
// @Summary      Student accounting
// @Description  Lessons, payments and balances per student. Teachers only see their own students.
// @Tags         accounting
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string true "Start date (YYYY-MM-DD)"
// @Param        endDate query string true "End date (YYYY-MM-DD)"
// @Param        teacherId query string false "Teacher ID (admin only)"
// @Success      200 {object} dto.Response{data=report.StudentAccountingData}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounting/students [get]
func (h *AccountingHandler) Students(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var q StudentAccountingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	start, end, ok := h.requiredRange(c, q.RangeQuery)
	if !ok {
		return
	}
	teacherID := actor.Scope()
	if teacherID == nil {
		var err error
		if teacherID, err = optionalUUID(q.TeacherID); err != nil {
			h.BadRequest(c, "Invalid teacherId format")
			return
		}
	}

	data, err := h.service.GetStudentAccountingData(c.Request.Context(), start, end, teacherID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// Teachers godoc
// @Summary      Teacher accounting
// @Description  Hours, earnings and payouts per teacher
// @Tags         accounting
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string true "Start date (YYYY-MM-DD)"
// @Param        endDate query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=report.TeacherAccountingData}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounting/teachers [get]
func (h *AccountingHandler) Teachers(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	start, end, ok := h.requiredRange(c, q)
	if !ok {
		return
	}
	data, err := h.service.GetTeacherAccountingData(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// Expenses godoc
// @Summary      Expense accounting
// @Description  Expense totals by category and status
// @Tags         accounting
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string true "Start date (YYYY-MM-DD)"
// @Param        endDate query string true "End date (YYYY-MM-DD)"
// @Param        category query string false "Category"
// @Param        status query string false "Status" Enums(pending, approved, rejected, paid)
// @Success      200 {object} dto.Response{data=report.ExpensesData}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounting/expenses [get]
func (h *AccountingHandler) Expenses(c *gin.Context) {
	var q ExpensesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	start, end, ok := h.requiredRange(c, q.RangeQuery)
	if !ok {
		return
	}
	var category *finance.ExpenseCategory
	if q.Category != "" {
		cat := finance.ExpenseCategory(q.Category)
		category = &cat
	}
	var status *finance.ExpenseStatus
	if q.Status != "" {
		st := finance.ExpenseStatus(q.Status)
		status = &st
	}

	data, err := h.service.GetGeneralExpensesData(c.Request.Context(), start, end, category, status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// ProfitLoss godoc
// @Summary      Profit and loss
// @Tags         accounting
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string true "Start date (YYYY-MM-DD)"
// @Param        endDate query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=report.ProfitLossSummary}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounting/profit-loss [get]
func (h *AccountingHandler) ProfitLoss(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	start, end, ok := h.requiredRange(c, q)
	if !ok {
		return
	}
	data, err := h.service.GetProfitLossSummary(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// CashFlow godoc
// @Summary      Cash flow
// @Description  Inflows and outflows bucketed by day, week, month or year
// @Tags         accounting
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string true "Start date (YYYY-MM-DD)"
// @Param        endDate query string true "End date (YYYY-MM-DD)"
// @Param        period query string false "Bucket size" Enums(day, week, month, year) default(month)
// @Success      200 {object} dto.Response{data=report.CashFlowData}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounting/cash-flow [get]
func (h *AccountingHandler) CashFlow(c *gin.Context) {
	var q CashFlowQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	start, end, ok := h.requiredRange(c, q.RangeQuery)
	if !ok {
		return
	}
	period, err := shared.ParsePeriod(q.Period)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	data, err := h.service.GetCashFlowData(c.Request.Context(), start, end, period)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// Metrics godoc
// @Summary      Financial metrics
// @Description  Revenue per student, collection rate and other ratios
// @Tags         accounting
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string true "Start date (YYYY-MM-DD)"
// @Param        endDate query string true "End date (YYYY-MM-DD)"
// @Success      200 {object} dto.Response{data=report.FinancialMetrics}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounting/metrics [get]
func (h *AccountingHandler) Metrics(c *gin.Context) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	start, end, ok := h.requiredRange(c, q)
	if !ok {
		return
	}
	data, err := h.service.GetFinancialMetrics(c.Request.Context(), start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}
