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

// TeacherPaymentHandler handles teacher payout endpoints
type TeacherPaymentHandler struct {
	BaseHandler
	service *financeapp.TeacherPaymentService
}

// NewTeacherPaymentHandler creates a new teacher payment handler
func NewTeacherPaymentHandler(service *financeapp.TeacherPaymentService) *TeacherPaymentHandler {
	return &TeacherPaymentHandler{service: service}
}

// CreateTeacherPaymentRequest is the body of a new payout. Hourly payouts
// carry hours and rate; their amount must equal hours times rate.
type CreateTeacherPaymentRequest struct {
	TeacherID   uuid.UUID        `json:"teacherId" binding:"required"`
	Amount      decimal.Decimal  `json:"amount" binding:"gt=0,decimal2" swaggertype:"string" example:"36000.00"`
	Currency    string           `json:"currency" binding:"omitempty,len=3" example:"DZD"`
	PaymentType string           `json:"paymentType" binding:"required,oneof=salary hourly_payment bonus reimbursement other" example:"hourly_payment"`
	Hours       *decimal.Decimal `json:"hours" binding:"omitempty,gt=0,quarterhour" swaggertype:"string" example:"30"`
	HourlyRate  *decimal.Decimal `json:"hourlyRate" binding:"omitempty,gt=0,decimal2" swaggertype:"string" example:"1200.00"`
	PeriodStart string           `json:"periodStart" example:"2024-03-01"`
	PeriodEnd   string           `json:"periodEnd" example:"2024-03-31"`
	Method      string           `json:"method" binding:"omitempty,oneof=cash bank_transfer card check other" example:"bank_transfer"`
	PaymentDate string           `json:"paymentDate" example:"2024-04-02"`
	Description string           `json:"description" binding:"max=500"`
}

// TeacherPaymentListQuery filters the payout listing
type TeacherPaymentListQuery struct {
	PageQuery
	RangeQuery
	TeacherID string `form:"teacherId"`
	Status    string `form:"status" binding:"omitempty,oneof=pending approved paid cancelled"`
}

// Create godoc
// @Summary      Create a teacher payout
// @Tags         teacher-payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTeacherPaymentRequest true "Payout"
// @Success      201 {object} dto.Response{data=TeacherPaymentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /teacher-payments [post]
func (h *TeacherPaymentHandler) Create(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreateTeacherPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	in := financeapp.CreateTeacherPaymentInput{
		TeacherID:   req.TeacherID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		PaymentType: finance.TeacherPaymentType(req.PaymentType),
		Hours:       req.Hours,
		HourlyRate:  req.HourlyRate,
		Method:      finance.PaymentMethod(req.Method),
		Description: req.Description,
	}
	var err error
	if in.PeriodStart, err = optionalDate(req.PeriodStart); err != nil {
		h.BadRequest(c, "Invalid periodStart, expected YYYY-MM-DD")
		return
	}
	if in.PeriodEnd, err = optionalDate(req.PeriodEnd); err != nil {
		h.BadRequest(c, "Invalid periodEnd, expected YYYY-MM-DD")
		return
	}
	if req.PaymentDate != "" {
		if in.PaymentDate, err = parseDate(req.PaymentDate); err != nil {
			h.BadRequest(c, "Invalid paymentDate, expected YYYY-MM-DD")
			return
		}
	}

	tp, err := h.service.Create(c.Request.Context(), actor, in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTeacherPaymentResponse(tp))
}

// Get godoc
// @Summary      Get a teacher payout
// @Tags         teacher-payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Teacher payment ID"
// @Success      200 {object} dto.Response{data=TeacherPaymentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /teacher-payments/{id} [get]
func (h *TeacherPaymentHandler) Get(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.service.Get, teacherPaymentView)
}

// List godoc
// @Summary      List teacher payouts
// @Description  Teachers see only their own payouts
// @Tags         teacher-payments
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        startDate query string false "Start date (YYYY-MM-DD)"
// @Param        endDate query string false "End date (YYYY-MM-DD)"
// @Param        teacherId query string false "Teacher ID (admin only)"
// @Param        status query string false "Status" Enums(pending, approved, paid, cancelled)
// @Success      200 {object} dto.Response{data=[]TeacherPaymentResponse,meta=dto.Meta}
// @Router       /teacher-payments [get]
func (h *TeacherPaymentHandler) List(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var q TeacherPaymentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	rng, ok := h.toRange(c, q.RangeQuery)
	if !ok {
		return
	}
	teacherID, err := optionalUUID(q.TeacherID)
	if err != nil {
		h.BadRequest(c, "Invalid teacherId format")
		return
	}
	f := financeapp.TeacherPaymentListFilter{
		ListFilter: financeapp.ListFilter{Page: q.Page, PageSize: q.PageSize, Range: rng},
		TeacherID:  teacherID,
	}
	if q.Status != "" {
		status := finance.TeacherPaymentStatus(q.Status)
		f.Status = &status
	}

	page, err := h.service.List(c.Request.Context(), actor, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(mapSlice(page.Items, toTeacherPaymentResponse), page))
}

// Approve godoc
// @Summary      Approve a teacher payout
// @Tags         teacher-payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Teacher payment ID"
// @Success      200 {object} dto.Response{data=TeacherPaymentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /teacher-payments/{id}/approve [post]
func (h *TeacherPaymentHandler) Approve(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.service.Approve, teacherPaymentView)
}

// Pay godoc
// @Summary      Mark a teacher payout as paid
// @Description  Assigns a receipt number to the approved payout
// @Tags         teacher-payments
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Teacher payment ID"
// @Success      200 {object} dto.Response{data=TeacherPaymentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /teacher-payments/{id}/pay [post]
func (h *TeacherPaymentHandler) Pay(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.service.Pay, teacherPaymentView)
}

// Cancel godoc
// @Summary      Cancel a teacher payout
// @Tags         teacher-payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Teacher payment ID"
// @Param        request body ReasonRequest false "Reason"
// @Success      200 {object} dto.Response{data=TeacherPaymentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /teacher-payments/{id}/cancel [post]
func (h *TeacherPaymentHandler) Cancel(c *gin.Context) {
	reasonAction(&h.BaseHandler, c, h.service.Cancel, teacherPaymentView)
}
