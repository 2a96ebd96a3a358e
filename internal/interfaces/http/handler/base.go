// Package handler holds the gin handlers of the /api/v1 surface.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/domain/shared"
	"github.com/tutorcenter/backend/internal/infrastructure/logger"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
	"github.com/tutorcenter/backend/internal/interfaces/http/middleware"
)

// DateLayout is the calendar date format accepted in query strings and bodies
const DateLayout = "2006-01-02"

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// BindError answers a failed ShouldBind* call
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError converts a service error into an HTTP response. Domain and
// validation errors keep their code and message; anything else is logged and
// reported as a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := getRequestID(c)

	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed", requestID, dto.FromFieldErrors(validationErr.Fields)))
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code),
			dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	logger.L(c.Request.Context()).Error("Request failed",
		zap.String("route", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal, "An unexpected error occurred", requestID))
}

// principal returns the authenticated caller, answering 401 when there is none
func (h *BaseHandler) principal(c *gin.Context) (identity.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
	}
	return p, ok
}

// parseIDParam parses a UUID path parameter, answering 400 when it is malformed
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUID parses an optional UUID query value
func optionalUUID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseDate accepts a calendar date or an RFC 3339 timestamp
func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// parseEndDate is parseDate for an upper bound: a calendar date covers
// that whole day
func parseEndDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return shared.EndOfDay(t), nil
	}
	return time.Parse(time.RFC3339, raw)
}

func optionalDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func optionalEndDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := parseEndDate(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// PageQuery holds pagination query parameters
type PageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=100" example:"20"`
}

// RangeQuery holds an optional date window
type RangeQuery struct {
	StartDate string `form:"startDate" example:"2024-01-01"`
	EndDate   string `form:"endDate" example:"2024-01-31"`
}

// toRange parses the window, answering 400 when a bound is malformed
func (h *BaseHandler) toRange(c *gin.Context, q RangeQuery) (shared.DateRange, bool) {
	start, err := optionalDate(q.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid startDate, expected YYYY-MM-DD")
		return shared.DateRange{}, false
	}
	end, err := optionalEndDate(q.EndDate)
	if err != nil {
		h.BadRequest(c, "Invalid endDate, expected YYYY-MM-DD")
		return shared.DateRange{}, false
	}
	return shared.DateRange{Start: start, End: end}, true
}

// requiredRange parses a window whose bounds are both required
func (h *BaseHandler) requiredRange(c *gin.Context, q RangeQuery) (time.Time, time.Time, bool) {
	if q.StartDate == "" || q.EndDate == "" {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidPeriod, "startDate and endDate are required")
		return time.Time{}, time.Time{}, false
	}
	r, ok := h.toRange(c, q)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return *r.Start, *r.End, true
}

func atoiDefault(raw string, def int) int {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return def
}

// idAction runs a state transition on the record named by the :id parameter
// and answers with view(result).
func idAction[T any](h *BaseHandler, c *gin.Context,
	fn func(context.Context, identity.Principal, uuid.UUID) (T, error), view func(T) any) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}
	out, err := fn(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view(out))
}

// reasonAction is idAction for transitions that take an optional reason body
func reasonAction[T any](h *BaseHandler, c *gin.Context,
	fn func(context.Context, identity.Principal, uuid.UUID, string) (T, error), view func(T) any) {
	var req ReasonRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	idAction(h, c, func(ctx context.Context, actor identity.Principal, id uuid.UUID) (T, error) {
		return fn(ctx, actor, id, req.Reason)
	}, view)
}
