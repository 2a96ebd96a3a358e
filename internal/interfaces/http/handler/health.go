package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tutorcenter/backend/internal/infrastructure/scheduler"
	"github.com/tutorcenter/backend/internal/interfaces/http/dto"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SchedulerStatus exposes the report scheduler state
type SchedulerStatus interface {
	Status() scheduler.Status
}

// HealthHandler serves liveness, readiness and system information
type HealthHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	scheduler SchedulerStatus
	startTime time.Time
}

// NewHealthHandler creates a new health handler. db and sched may be nil.
func NewHealthHandler(name, version string, db Pinger, sched SchedulerStatus) *HealthHandler {
	return &HealthHandler{
		name:      name,
		version:   version,
		db:        db,
		scheduler: sched,
		startTime: time.Now(),
	}
}

// HealthResponse is the readiness report
type HealthResponse struct {
	Status    string            `json:"status" example:"ok"`
	Database  string            `json:"database" example:"ok"`
	Scheduler *scheduler.Status `json:"scheduler,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name" example:"Tutor Center API"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"goVersion" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// Health godoc
// @Summary      Health check
// @Description  Reports database reachability and the report scheduler state
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Failure      503 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Database: "ok", Timestamp: time.Now().UTC()}
	status := http.StatusOK

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			resp.Status, resp.Database = "degraded", "unreachable"
			status = http.StatusServiceUnavailable
		}
	}
	if h.scheduler != nil {
		st := h.scheduler.Status()
		resp.Scheduler = &st
	}

	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}

// Info godoc
// @Summary      System information
// @Description  Returns the service name, version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=SystemInfoResponse}
// @Router       /system/info [get]
func (h *HealthHandler) Info(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
