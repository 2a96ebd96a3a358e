package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	academicapp "github.com/tutorcenter/backend/internal/application/academic"
	"github.com/tutorcenter/backend/internal/domain/academic"
)

// AttendanceHandler handles attendance records and statistics
type AttendanceHandler struct {
	BaseHandler
	service *academicapp.Service
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(service *academicapp.Service) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// RecordAttendanceRequest is the body of an attendance record
type RecordAttendanceRequest struct {
	StudentID         uuid.UUID  `json:"studentId" binding:"required"`
	TimeEntryID       *uuid.UUID `json:"timeEntryId"`
	Date              string     `json:"date" binding:"required" example:"2024-03-15"`
	Status            string     `json:"status" binding:"required,oneof=present absent late makeup cancelled" example:"late"`
	DurationMinutes   int        `json:"durationMinutes" binding:"min=0,max=1440" example:"60"`
	LateMinutes       int        `json:"lateMinutes" binding:"min=0,max=1440" example:"10"`
	MakeupCompletedAt *time.Time `json:"makeupCompletedAt"`
	Notes             string     `json:"notes" binding:"max=1000"`
}

// AttendanceStatsQuery scopes the attendance summary
type AttendanceStatsQuery struct {
	RangeQuery
	StudentID string `form:"studentId"`
	TeacherID string `form:"teacherId"`
}

// Record godoc
// @Summary      Record attendance
// @Tags         attendance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body RecordAttendanceRequest true "Attendance"
// @Success      201 {object} dto.Response{data=AttendanceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	a, err := h.service.RecordAttendance(c.Request.Context(), actor, academicapp.RecordAttendanceInput{
		StudentID:         req.StudentID,
		TimeEntryID:       req.TimeEntryID,
		Date:              date,
		Status:            academic.AttendanceStatus(req.Status),
		DurationMinutes:   req.DurationMinutes,
		LateMinutes:       req.LateMinutes,
		MakeupCompletedAt: req.MakeupCompletedAt,
		Notes:             req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toAttendanceResponse(a))
}

// Stats godoc
// @Summary      Attendance statistics
// @Description  Counts by status and the attendance rate over the window
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Param        startDate query string false "Start date (YYYY-MM-DD)"
// @Param        endDate query string false "End date (YYYY-MM-DD)"
// @Param        studentId query string false "Student ID"
// @Param        teacherId query string false "Teacher ID (admin only)"
// @Success      200 {object} dto.Response{data=academic.AttendanceStats}
// @Router       /attendance/stats [get]
func (h *AttendanceHandler) Stats(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var q AttendanceStatsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	rng, ok := h.toRange(c, q.RangeQuery)
	if !ok {
		return
	}
	f := academicapp.AttendanceStatsFilter{Range: rng}
	var err error
	if f.StudentID, err = optionalUUID(q.StudentID); err != nil {
		h.BadRequest(c, "Invalid studentId format")
		return
	}
	if f.TeacherID, err = optionalUUID(q.TeacherID); err != nil {
		h.BadRequest(c, "Invalid teacherId format")
		return
	}

	stats, err := h.service.AttendanceStats(c.Request.Context(), actor, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}
