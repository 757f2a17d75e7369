package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"airlink/internal/core/services"
	"airlink/pkg/errors"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

func (h *StatsHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/stats/overview", h.Overview)
	}
}

func (h *StatsHandler) Overview(c *gin.Context) {
	overview, err := h.statsService.Overview(c.Request.Context())
	if err != nil {
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to collect stats", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, overview)
}
