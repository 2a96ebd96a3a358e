package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reportapp "github.com/tutorcenter/backend/internal/application/report"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/report"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
)

// ReportHandler handles financial report snapshots
type ReportHandler struct {
	BaseHandler
	service *reportapp.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *reportapp.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

// GenerateReportRequest asks for a snapshot of [startDate, endDate]
type GenerateReportRequest struct {
	StartDate  string `json:"startDate" binding:"required" example:"2024-03-01"`
	EndDate    string `json:"endDate" binding:"required" example:"2024-03-31"`
	ReportType string `json:"reportType" binding:"required,oneof=monthly quarterly yearly custom" example:"monthly"`
	Format     string `json:"format" binding:"omitempty,oneof=json csv xlsx pdf" example:"xlsx"`
}

// ReportListQuery filters the report listing
type ReportListQuery struct {
	PageQuery
	ReportType      string `form:"reportType" binding:"omitempty,oneof=monthly quarterly yearly custom"`
	IncludeArchived bool   `form:"includeArchived"`
}

// ReportResponse is the public view of a report snapshot
type ReportResponse struct {
	ID          uuid.UUID              `json:"id"`
	ReportType  string                 `json:"reportType" example:"monthly"`
	PeriodStart string                 `json:"periodStart" example:"2024-03-01"`
	PeriodEnd   string                 `json:"periodEnd" example:"2024-03-31"`
	Revenue     report.RevenueSnapshot `json:"revenue"`
	Metrics     report.Metrics         `json:"metrics"`
	GeneratedBy uuid.UUID              `json:"generatedBy"`
	GeneratedAt time.Time              `json:"generatedAt"`
	IsArchived  bool                   `json:"isArchived"`
	File        *report.RenderedFile   `json:"file,omitempty"`
}

func toReportResponse(r *report.FinancialReport) ReportResponse {
	return ReportResponse{
		ID:          r.ID,
		ReportType:  string(r.ReportType),
		PeriodStart: r.PeriodStart.Format(DateLayout),
		PeriodEnd:   r.PeriodEnd.Format(DateLayout),
		Revenue:     r.Revenue,
		Metrics:     r.Metrics,
		GeneratedBy: r.GeneratedBy,
		GeneratedAt: r.GeneratedAt,
		IsArchived:  r.IsArchived,
		File:        r.File,
	}
}

// DownloadResponse carries a presigned URL for a stored report file
type DownloadResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Generate godoc
// @Summary      Generate a financial report
// @Description  Snapshots the books for the period. File formats are rendered and stored.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body GenerateReportRequest true "Report parameters"
// @Success      201 {object} dto.Response{data=ReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	start, end, ok := h.requiredRange(c, RangeQuery{StartDate: req.StartDate, EndDate: req.EndDate})
	if !ok {
		return
	}

	r, err := h.service.GenerateFinancialReport(c.Request.Context(), start, end, actor.UserID,
		report.ReportType(req.ReportType), report.Format(req.Format))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toReportResponse(r))
}

// Get godoc
// @Summary      Get a report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Report ID"
// @Success      200 {object} dto.Response{data=ReportResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	r, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReportResponse(r))
}

// List godoc
// @Summary      List reports
// @Description  Newest first; archived reports are hidden unless includeArchived is set
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        reportType query string false "Report type" Enums(monthly, quarterly, yearly, custom)
// @Param        includeArchived query bool false "Include archived reports"
// @Success      200 {object} dto.Response{data=[]ReportResponse,meta=dto.Meta}
// @Router       /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	var q ReportListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	f := reportapp.ListFilter{IncludeArchived: q.IncludeArchived, Page: q.Page, PageSize: q.PageSize}
	if q.ReportType != "" {
		rt := report.ReportType(q.ReportType)
		f.ReportType = &rt
	}

	page, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(mapSlice(page.Items, toReportResponse), page))
}

// Archive godoc
// @Summary      Archive a report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Report ID"
// @Success      200 {object} dto.Response{data=ReportResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/{id}/archive [post]
func (h *ReportHandler) Archive(c *gin.Context) {
	h.setArchived(c, h.service.Archive)
}

// Unarchive godoc
// @Summary      Unarchive a report
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Report ID"
// @Success      200 {object} dto.Response{data=ReportResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/{id}/unarchive [post]
func (h *ReportHandler) Unarchive(c *gin.Context) {
	h.setArchived(c, h.service.Unarchive)
}

func (h *ReportHandler) setArchived(c *gin.Context,
	fn func(ctx context.Context, actor uuid.UUID, id uuid.UUID) (*report.FinancialReport, error)) {
	idAction(&h.BaseHandler, c, func(ctx context.Context, actor identity.Principal, id uuid.UUID) (*report.FinancialReport, error) {
		return fn(ctx, actor.UserID, id)
	}, func(r *report.FinancialReport) any { return toReportResponse(r) })
}

// Render godoc
// @Summary      Render a report
// @Description  Renders the snapshot in the requested file format without storing it
// @Tags         reports
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        id path string true "Report ID"
// @Param        format query string true "File format" Enums(csv, xlsx, pdf)
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/{id}/render [get]
func (h *ReportHandler) Render(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	out, err := h.service.RenderReport(c.Request.Context(), id, report.Format(c.Query("format")))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.%s"`, id, out.Extension))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

// Download godoc
// @Summary      Download URL for a stored report
// @Description  Returns a presigned URL for the file rendered at generation time
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Report ID"
// @Param        expiresIn query int false "URL lifetime in seconds" default(900)
// @Success      200 {object} dto.Response{data=DownloadResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /reports/{id}/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	expiresIn := time.Duration(atoiDefault(c.Query("expiresIn"), 0)) * time.Second
	if expiresIn > 24*time.Hour {
		expiresIn = 24 * time.Hour
	}

	url, expiresAt, err := h.service.DownloadURL(c.Request.Context(), id, expiresIn)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, DownloadResponse{URL: url, ExpiresAt: expiresAt})
}
