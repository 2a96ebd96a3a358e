package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appevent "github.com/tutorcenter/backend/internal/application/event"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
)

// AuditHandler lists the audit trail
type AuditHandler struct {
	BaseHandler
	service *appevent.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(service *appevent.AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

// AuditListQuery filters the audit listing
type AuditListQuery struct {
	PageQuery
	RangeQuery
	ActorID    string `form:"actorId"`
	TargetType string `form:"targetType" example:"Payment"`
	TargetID   string `form:"targetId"`
	Action     string `form:"action" example:"payment.complete"`
}

// List godoc
// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number" default(1)
// @Param        pageSize query int false "Page size" default(20)
// @Param        startDate query string false "Start date (YYYY-MM-DD)"
// @Param        endDate query string false "End date (YYYY-MM-DD)"
// @Param        actorId query string false "Actor user ID"
// @Param        targetType query string false "Record type"
// @Param        targetId query string false "Record ID"
// @Param        action query string false "Action name"
// @Success      200 {object} dto.Response{data=[]audit.Log,meta=dto.Meta}
// @Router       /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	var q AuditListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	rng, ok := h.toRange(c, q.RangeQuery)
	if !ok {
		return
	}
	f := appevent.AuditListFilter{
		TargetType: q.TargetType,
		Action:     q.Action,
		Range:      rng,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}
	var err error
	if f.ActorID, err = optionalUUID(q.ActorID); err != nil {
		h.BadRequest(c, "Invalid actorId format")
		return
	}
	if f.TargetID, err = optionalUUID(q.TargetID); err != nil {
		h.BadRequest(c, "Invalid targetId format")
		return
	}

	page, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page.Items, page))
}
