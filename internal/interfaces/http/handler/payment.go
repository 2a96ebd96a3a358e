package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	financeapp "github.com/tutorcenter/backend/internal/application/finance"
	"github.com/tutorcenter/backend/internal/domain/finance"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
)

// PaymentHandler handles student payment endpoints
type PaymentHandler struct {
	BaseHandler
	service *financeapp.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *financeapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// CreatePaymentRequest records money owed or received from a student
type CreatePaymentRequest struct {
	StudentID   uuid.UUID       `json:"studentId" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"gt=0,decimal2" swaggertype:"string" example:"4800.00"`
	Currency    string          `json:"currency" binding:"omitempty,len=3" example:"DZD"`
	Method      string          `json:"method" binding:"required,oneof=cash bank_transfer card check other" example:"cash"`
	PaymentDate string          `json:"paymentDate" example:"2024-03-01"`
	DueDate     string          `json:"dueDate" example:"2024-03-10"`
	Description string          `json:"description" binding:"max=500"`
}

// RefundRequest reverses part or all of a completed payment
type RefundRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"gt=0,decimal2" swaggertype:"string" example:"1200.00"`
	Date   string          `json:"date" example:"2024-03-20"`
	Reason string          `json:"reason" binding:"required,max=500" example:"Lesson cancelled by the center"`
}

// PaymentListQuery filters the payment listing
type PaymentListQuery struct {
	PageQuery
	RangeQuery
	StudentID string `form:"studentId"`
	Status    string `form:"status" binding:"omitempty,oneof=pending completed failed refunded cancelled"`
}

// Create godoc
// @Summary      Record a student payment
// @Description  The payment starts pending and belongs to the student's teacher
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePaymentRequest true "Payment"
// @Success      201 {object} dto.Response{data=PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	in := financeapp.CreatePaymentInput{
		StudentID:   req.StudentID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Method:      finance.PaymentMethod(req.Method),
		Description: req.Description,
	}
	if req.PaymentDate != "" {
		d, err := parseDate(req.PaymentDate)
		if err != nil {
			h.BadRequest(c, "Invalid paymentDate, expected YYYY-MM-DD")
			return
		}
		in.PaymentDate = d
	}
	due, err := optionalDate(req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid dueDate, expected YYYY-MM-DD")
		return
	}
	in.DueDate = due

	p, err := h.service.Create(c.Request.Context(), actor, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toPaymentResponse(p))
}

// Get godoc
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Payment ID"
// @Success      200 {object} dto.Response{data=PaymentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.service.Get, paymentView)
}

// List godoc
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        startDate query string false "Start date (YYYY-MM-DD)"
// @Param        endDate query string false "End date (YYYY-MM-DD)"
// @Param        studentId query string false "Student ID"
// @Param        status query string false "Status" Enums(pending, completed, failed, refunded, cancelled)
// @Success      200 {object} dto.Response{data=[]PaymentResponse,meta=dto.Meta}
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var q PaymentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	rng, ok := h.toRange(c, q.RangeQuery)
	if !ok {
		return
	}
	studentID, err := optionalUUID(q.StudentID)
	if err != nil {
		h.BadRequest(c, "Invalid studentId format")
		return
	}
	f := financeapp.PaymentListFilter{
		ListFilter: financeapp.ListFilter{Page: q.Page, PageSize: q.PageSize, Range: rng},
		StudentID:  studentID,
	}
	if q.Status != "" {
		status := finance.PaymentStatus(q.Status)
		f.Status = &status
	}

	page, err := h.service.List(c.Request.Context(), actor, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(mapSlice(page.Items, toPaymentResponse), page))
}

// Complete godoc
// @Summary      Complete a payment
// @Description  Assigns a receipt number and credits the student's balance
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Payment ID"
// @Success      200 {object} dto.Response{data=PaymentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/{id}/complete [post]
func (h *PaymentHandler) Complete(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.service.Complete, paymentView)
}

// Fail godoc
// @Summary      Mark a payment as failed
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Payment ID"
// @Param        request body ReasonRequest false "Reason"
// @Success      200 {object} dto.Response{data=PaymentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/{id}/fail [post]
func (h *PaymentHandler) Fail(c *gin.Context) {
	reasonAction(&h.BaseHandler, c, h.service.Fail, paymentView)
}

// Cancel godoc
// @Summary      Cancel a payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Payment ID"
// @Param        request body ReasonRequest false "Reason"
// @Success      200 {object} dto.Response{data=PaymentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/{id}/cancel [post]
func (h *PaymentHandler) Cancel(c *gin.Context) {
	reasonAction(&h.BaseHandler, c, h.service.Cancel, paymentView)
}

// Refund godoc
// @Summary      Refund a completed payment
// @Description  Admin only; the refund amount may not exceed the payment amount
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Payment ID"
// @Param        request body RefundRequest true "Refund"
// @Success      200 {object} dto.Response{data=PaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/{id}/refund [post]
func (h *PaymentHandler) Refund(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	in := financeapp.RefundInput{Amount: req.Amount, Reason: req.Reason}
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		in.Date = d
	}

	p, err := h.service.Refund(c.Request.Context(), actor, id, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toPaymentResponse(p))
}
