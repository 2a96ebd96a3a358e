package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	academicapp "github.com/tutorcenter/backend/internal/application/academic"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
)

// TimeEntryHandler handles lesson time logging
type TimeEntryHandler struct {
	BaseHandler
	service *academicapp.Service
}

// NewTimeEntryHandler creates a new time entry handler
func NewTimeEntryHandler(service *academicapp.Service) *TimeEntryHandler {
	return &TimeEntryHandler{service: service}
}

// LogTimeRequest records a lesson. Hours are quarter-hour steps.
type LogTimeRequest struct {
	TeacherID    *uuid.UUID      `json:"teacherId"`
	LessonTypeID uuid.UUID       `json:"lessonTypeId" binding:"required"`
	StudentID    *uuid.UUID      `json:"studentId"`
	Date         string          `json:"date" binding:"required" example:"2024-03-15"`
	Hours        decimal.Decimal `json:"hours" binding:"gt=0,quarterhour" swaggertype:"string" example:"1.5"`
	Description  string          `json:"description" binding:"max=500"`
}

// EditTimeRequest corrects a logged lesson
type EditTimeRequest struct {
	Hours       decimal.Decimal `json:"hours" binding:"gt=0,quarterhour" swaggertype:"string" example:"1.75"`
	Description string          `json:"description" binding:"max=500"`
	Reason      string          `json:"reason" binding:"max=500" example:"Lesson ran over"`
}

// TimeEntryListQuery filters the time entry listing
type TimeEntryListQuery struct {
	PageQuery
	RangeQuery
	TeacherID    string `form:"teacherId"`
	StudentID    string `form:"studentId"`
	LessonTypeID string `form:"lessonTypeId"`
}

// Create godoc
// @Summary      Log a lesson
// @Description  The hourly rate is copied from the lesson type at logging time
// @Tags         time-entries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body LogTimeRequest true "Lesson"
// @Success      201 {object} dto.Response{data=TimeEntryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /time-entries [post]
func (h *TimeEntryHandler) Create(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req LogTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	entry, err := h.service.LogTime(c.Request.Context(), actor, academicapp.LogTimeInput{
		TeacherID:    req.TeacherID,
		LessonTypeID: req.LessonTypeID,
		StudentID:    req.StudentID,
		Date:         date,
		Hours:        req.Hours,
		Description:  req.Description,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTimeEntryResponse(entry))
}

// Update godoc
// @Summary      Edit a logged lesson
// @Description  Teachers may edit within four hours of logging; admins at any time
// @Tags         time-entries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Time entry ID"
// @Param        request body EditTimeRequest true "Correction"
// @Success      200 {object} dto.Response{data=TimeEntryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /time-entries/{id} [put]
func (h *TimeEntryHandler) Update(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	var req EditTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	entry, err := h.service.EditTime(c.Request.Context(), actor, id, academicapp.EditTimeInput{
		Hours:       req.Hours,
		Description: req.Description,
		Reason:      req.Reason,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTimeEntryResponse(entry))
}

// Delete godoc
// @Summary      Delete a logged lesson
// @Tags         time-entries
// @Security     BearerAuth
// @Param        id path string true "Time entry ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /time-entries/{id} [delete]
func (h *TimeEntryHandler) Delete(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteTime(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// List godoc
// @Summary      List logged lessons
// @Description  Returns one page of entries and the totals over the whole filter
// @Tags         time-entries
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        startDate query string false "Start date (YYYY-MM-DD)"
// @Param        endDate query string false "End date (YYYY-MM-DD)"
// @Param        teacherId query string false "Teacher ID (admin only)"
// @Param        studentId query string false "Student ID"
// @Param        lessonTypeId query string false "Lesson type ID"
// @Success      200 {object} dto.Response{data=TimeEntryListResponse,meta=dto.Meta}
// @Router       /time-entries [get]
func (h *TimeEntryHandler) List(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var q TimeEntryListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	rng, ok := h.toRange(c, q.RangeQuery)
	if !ok {
		return
	}
	f := academicapp.TimeEntryListFilter{
		Paging: academicapp.Paging{Page: q.Page, PageSize: q.PageSize},
		Range:  rng,
	}
	var err error
	if f.TeacherID, err = optionalUUID(q.TeacherID); err != nil {
		h.BadRequest(c, "Invalid teacherId format")
		return
	}
	if f.StudentID, err = optionalUUID(q.StudentID); err != nil {
		h.BadRequest(c, "Invalid studentId format")
		return
	}
	if f.LessonTypeID, err = optionalUUID(q.LessonTypeID); err != nil {
		h.BadRequest(c, "Invalid lessonTypeId format")
		return
	}

	page, summary, err := h.service.ListTimeEntries(c.Request.Context(), actor, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	resp := dto.NewPageResponse([]TimeEntryResponse(nil), page)
	resp.Data = TimeEntryListResponse{
		Entries: mapSlice(page.Items, toTimeEntryResponse),
		Summary: summary,
	}
	c.JSON(http.StatusOK, resp)
}
