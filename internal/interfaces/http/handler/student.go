package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	academicapp "github.com/tutorcenter/backend/internal/application/academic"
	"github.com/tutorcenter/backend/internal/domain/academic"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
)

// StudentHandler handles student enrollment endpoints
type StudentHandler struct {
	BaseHandler
	service *academicapp.Service
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(service *academicapp.Service) *StudentHandler {
	return &StudentHandler{service: service}
}

// CreateStudentRequest is the enrollment body. TeacherID is honoured only for admins.
type CreateStudentRequest struct {
	TeacherID *uuid.UUID `json:"teacherId"`
	FirstName string     `json:"firstName" binding:"required,max=100" example:"Yacine"`
	LastName  string     `json:"lastName" binding:"required,max=100" example:"Mansouri"`
	Email     string     `json:"email" binding:"omitempty,email" example:"yacine@example.com"`
	Phone     string     `json:"phone" binding:"max=30" example:"+213555000222"`
	Level     string     `json:"level" binding:"max=50" example:"Terminale"`
}

// StudentListQuery filters the student listing
type StudentListQuery struct {
	PageQuery
	TeacherID string `form:"teacherId"`
	Status    string `form:"status" binding:"omitempty,oneof=active inactive suspended"`
	Search    string `form:"search" binding:"max=100"`
}

// ChangeStudentStatusRequest moves a student between enrollment states
type ChangeStudentStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended" example:"inactive"`
}

// Create godoc
// @Summary      Enroll a student
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateStudentRequest true "Student details"
// @Success      201 {object} dto.Response{data=StudentResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	st, err := h.service.CreateStudent(c.Request.Context(), actor, academicapp.CreateStudentInput{
		TeacherID: req.TeacherID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Level:     req.Level,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toStudentResponse(st))
}

// Get godoc
// @Summary      Get a student
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Student ID"
// @Success      200 {object} dto.Response{data=StudentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.service.GetStudent, studentView)
}

// List godoc
// @Summary      List students
// @Description  Teachers see their own students; admins may filter by teacher
// @Tags         students
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        teacherId query string false "Teacher ID (admin only)"
// @Param        status query string false "Status" Enums(active, inactive, suspended)
// @Param        search query string false "Matches first name, last name or email"
// @Success      200 {object} dto.Response{data=[]StudentResponse,meta=dto.Meta}
// @Router       /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var q StudentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	teacherID, err := optionalUUID(q.TeacherID)
	if err != nil {
		h.BadRequest(c, "Invalid teacherId format")
		return
	}
	f := academicapp.StudentListFilter{
		Paging:    academicapp.Paging{Page: q.Page, PageSize: q.PageSize},
		TeacherID: teacherID,
		Search:    q.Search,
	}
	if q.Status != "" {
		status := academic.StudentStatus(q.Status)
		f.Status = &status
	}

	page, err := h.service.ListStudents(c.Request.Context(), actor, f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(mapSlice(page.Items, toStudentResponse), page))
}

// ChangeStatus godoc
// @Summary      Change a student's status
// @Tags         students
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Student ID"
// @Param        request body ChangeStudentStatusRequest true "New status"
// @Success      200 {object} dto.Response{data=StudentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /students/{id}/status [put]
func (h *StudentHandler) ChangeStatus(c *gin.Context) {
	var req ChangeStudentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	idAction(&h.BaseHandler, c, func(ctx context.Context, actor identity.Principal, id uuid.UUID) (*academic.Student, error) {
		return h.service.ChangeStudentStatus(ctx, actor, id, academic.StudentStatus(req.Status))
	}, studentView)
}

func studentView(s *academic.Student) any { return toStudentResponse(s) }
