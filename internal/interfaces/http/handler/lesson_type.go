package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	academicapp "github.com/tutorcenter/backend/internal/application/academic"
)

// LessonTypeHandler handles the per-teacher rate card
type LessonTypeHandler struct {
	BaseHandler
	service *academicapp.Service
}

// NewLessonTypeHandler creates a new lesson type handler
func NewLessonTypeHandler(service *academicapp.Service) *LessonTypeHandler {
	return &LessonTypeHandler{service: service}
}

// CreateLessonTypeRequest is the body of a new rate card entry
type CreateLessonTypeRequest struct {
	TeacherID   *uuid.UUID      `json:"teacherId"`
	Name        string          `json:"name" binding:"required,max=100" example:"Private maths"`
	HourlyRate  decimal.Decimal `json:"hourlyRate" binding:"gt=0,decimal2" swaggertype:"string" example:"1200.00"`
	Currency    string          `json:"currency" binding:"omitempty,len=3" example:"DZD"`
	Description string          `json:"description" binding:"max=500"`
}

// UpdateLessonTypeRequest replaces the editable fields of a lesson type
type UpdateLessonTypeRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	HourlyRate  decimal.Decimal `json:"hourlyRate" binding:"gt=0,decimal2" swaggertype:"string" example:"1500.00"`
	Description string          `json:"description" binding:"max=500"`
	IsActive    *bool           `json:"isActive" binding:"required"`
}

// LessonTypeListQuery filters the rate card listing
type LessonTypeListQuery struct {
	TeacherID  string `form:"teacherId"`
	ActiveOnly bool   `form:"activeOnly"`
}

// Create godoc
// @Summary      Create a lesson type
// @Tags         lesson-types
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateLessonTypeRequest true "Lesson type"
// @Success      201 {object} dto.Response{data=LessonTypeResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /lesson-types [post]
func (h *LessonTypeHandler) Create(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreateLessonTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	lt, err := h.service.CreateLessonType(c.Request.Context(), actor, academicapp.CreateLessonTypeInput{
		TeacherID:   req.TeacherID,
		Name:        req.Name,
		HourlyRate:  req.HourlyRate,
		Currency:    req.Currency,
		Description: req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toLessonTypeResponse(lt))
}

// Update godoc
// @Summary      Update a lesson type
// @Description  Rate changes apply to lessons logged afterwards
// @Tags         lesson-types
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Lesson type ID"
// @Param        request body UpdateLessonTypeRequest true "Lesson type"
// @Success      200 {object} dto.Response{data=LessonTypeResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /lesson-types/{id} [put]
func (h *LessonTypeHandler) Update(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateLessonTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	lt, err := h.service.UpdateLessonType(c.Request.Context(), actor, id, academicapp.UpdateLessonTypeInput{
		Name:        req.Name,
		HourlyRate:  req.HourlyRate,
		Description: req.Description,
		Active:      *req.IsActive,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toLessonTypeResponse(lt))
}

// List godoc
// @Summary      List lesson types
// @Tags         lesson-types
// @Produce      json
// @Security     BearerAuth
// @Param        teacherId query string false "Teacher ID (admin only)"
// @Param        activeOnly query bool false "Only active lesson types"
// @Success      200 {object} dto.Response{data=[]LessonTypeResponse}
// @Router       /lesson-types [get]
func (h *LessonTypeHandler) List(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var q LessonTypeListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	teacherID, err := optionalUUID(q.TeacherID)
	if err != nil {
		h.BadRequest(c, "Invalid teacherId format")
		return
	}

	items, err := h.service.ListLessonTypes(c.Request.Context(), actor, teacherID, q.ActiveOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mapSlice(items, toLessonTypeResponse))
}
