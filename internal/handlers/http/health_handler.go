package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"airlink/internal/core/ports"
	"airlink/internal/core/services"
	"airlink/internal/infrastructure/monitoring"
	"airlink/pkg/utils"
)

type HealthHandler struct {
	pinger      services.Pinger
	checker     *monitoring.HealthChecker
	sessionRepo ports.SessionRepository
	eventRepo   ports.EventRepository
	service     string
	version     string
	startedAt   time.Time
}

func NewHealthHandler(
	pinger services.Pinger,
	checker *monitoring.HealthChecker,
	sessionRepo ports.SessionRepository,
	eventRepo ports.EventRepository,
	service, version string,
) *HealthHandler {
	return &HealthHandler{
		pinger:      pinger,
		checker:     checker,
		sessionRepo: sessionRepo,
		eventRepo:   eventRepo,
		service:     service,
		version:     version,
		startedAt:   utils.UTCNow(),
	}
}

func (h *HealthHandler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Liveness)
	router.GET("/ready", h.Readiness)
	router.GET("/api/health", h.Detailed)
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if h.checker != nil {
		status := h.checker.CheckAll(ctx)
		if status.Status != "healthy" {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"checks": status.Checks,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": status.Checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Detailed reports service health plus a database latency probe and the
// session/event totals the ops dashboard graphs.
func (h *HealthHandler) Detailed(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status := "ok"

	db := gin.H{
		"status":  "ok",
		"now_utc": utils.UTCNow(),
	}
	probe := time.Now()
	if h.pinger != nil {
		if err := h.pinger.Ping(ctx); err != nil {
			status = "degraded"
			db["status"] = "error"
			db["error"] = err.Error()
		}
	}
	db["latency_ms"] = time.Since(probe).Milliseconds()

	metrics := gin.H{}
	if totals, err := h.sessionRepo.Totals(ctx); err == nil {
		metrics["sessions_total"] = totals.Total
		metrics["last_session_started_at"] = totals.LastStartedAt
		metrics["last_session_ended_at"] = totals.LastEndedAt
	} else {
		status = "degraded"
		metrics["sessions_error"] = err.Error()
	}
	if total, _, err := h.eventRepo.Totals(ctx); err == nil {
		metrics["events_total"] = total
	} else {
		status = "degraded"
		metrics["events_error"] = err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"service":        h.service,
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"db":             db,
		"metrics":        metrics,
	})
}
