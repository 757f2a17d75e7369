package http

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/internal/core/services"
	"airlink/internal/infrastructure/live"
	"airlink/pkg/errors"
	"airlink/pkg/validation"
)

type AdminHandler struct {
	authService    services.AuthService
	licenseService ports.LicenseService
	eventService   ports.EventService
	statsService   services.StatsService
	hub            *live.Hub
}

func NewAdminHandler(
	authService services.AuthService,
	licenseService ports.LicenseService,
	eventService ports.EventService,
	statsService services.StatsService,
	hub *live.Hub,
) *AdminHandler {
	return &AdminHandler{
		authService:    authService,
		licenseService: licenseService,
		eventService:   eventService,
		statsService:   statsService,
		hub:            hub,
	}
}

func (h *AdminHandler) SetupRoutes(router *gin.Engine, authRequired gin.HandlerFunc) {
	router.POST("/api/admin/login", h.Login)

	admin := router.Group("/api/admin")
	admin.Use(authRequired)
	{
		admin.POST("/licenses", h.CreateLicense)
		admin.GET("/licenses", h.ListLicenses)
		admin.POST("/licenses/:id/revoke", h.RevokeLicense)
		admin.POST("/licenses/:id/reactivate", h.ReactivateLicense)
		admin.GET("/quick-stats", h.QuickStats)
		admin.GET("/live", h.Live)
		admin.GET("/live/ws", h.LiveWS)
		admin.POST("/events/retry", h.RetryEvents)
	}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Secret string `json:"secret" binding:"required,max=256"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	token, expiresAt, err := h.authService.Login(req.Secret)
	if err != nil {
		c.Error(errors.NewUnauthorizedError("invalid admin secret"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   expiresAt,
	})
}

func (h *AdminHandler) CreateLicense(c *gin.Context) {
	var req struct {
		Code            string `json:"code" binding:"required,max=64"`
		DurationMinutes int    `json:"duration_minutes"`
		MaxListeners    int    `json:"max_listeners"`
		Active          bool   `json:"is_active"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	if err := validation.ValidateLicenseCode(req.Code); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}
	if req.DurationMinutes != 0 {
		if err := validation.ValidateDurationMinutes(req.DurationMinutes); err != nil {
			c.Error(errors.NewUnprocessableError(err.Error()))
			return
		}
	}

	lic, err := h.licenseService.Create(c.Request.Context(), ports.CreateLicenseParams{
		Code:            req.Code,
		DurationMinutes: req.DurationMinutes,
		MaxListeners:    req.MaxListeners,
		Active:          req.Active,
	})
	if err != nil {
		switch {
		case stderrors.Is(err, domain.ErrDuplicateLicense):
			c.Error(errors.NewConflictError("license code already exists").WithContext("code", req.Code))
		case stderrors.Is(err, domain.ErrInvalidMaxListeners):
			c.Error(errors.NewUnprocessableError("max_listeners must be one of the allowed tiers").
				WithContext("max_listeners", req.MaxListeners))
		default:
			c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to create license", http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"license": lic})
}

func (h *AdminHandler) ListLicenses(c *gin.Context) {
	filter := domain.LicenseFilter{
		Query: c.Query("q"),
	}

	if v := c.Query("active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			c.Error(errors.NewInvalidInputError("invalid active flag"))
			return
		}
		filter.Active = &active
	}
	if v := c.Query("revoked"); v != "" {
		revoked, err := strconv.ParseBool(v)
		if err != nil {
			c.Error(errors.NewInvalidInputError("invalid revoked flag"))
			return
		}
		filter.Revoked = &revoked
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			c.Error(errors.NewInvalidInputError("invalid limit"))
			return
		}
		filter.Limit = limit
	}
	if v := c.Query("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			c.Error(errors.NewInvalidInputError("invalid offset"))
			return
		}
		filter.Offset = offset
	}

	licenses, total, err := h.licenseService.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to list licenses", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"licenses": licenses,
		"total":    total,
	})
}

func (h *AdminHandler) RevokeLicense(c *gin.Context) {
	id := domain.LicenseID(c.Param("id"))

	lic, err := h.licenseService.Revoke(c.Request.Context(), id)
	if err != nil {
		if stderrors.Is(err, domain.ErrLicenseNotFound) {
			c.Error(errors.NewNotFoundError("license"))
			return
		}
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to revoke license", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{"license": lic})
}

func (h *AdminHandler) ReactivateLicense(c *gin.Context) {
	id := domain.LicenseID(c.Param("id"))

	lic, err := h.licenseService.Reactivate(c.Request.Context(), id)
	if err != nil {
		if stderrors.Is(err, domain.ErrLicenseNotFound) {
			c.Error(errors.NewNotFoundError("license"))
			return
		}
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to reactivate license", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{"license": lic})
}

func (h *AdminHandler) QuickStats(c *gin.Context) {
	stats, err := h.statsService.QuickStats(c.Request.Context())
	if err != nil {
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to collect stats", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) Live(c *gin.Context) {
	bucket := c.DefaultQuery("bucket", "5m")

	kpi, err := h.statsService.LiveKPI(c.Request.Context(), bucket)
	if err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()).WithContext("bucket", bucket))
		return
	}

	c.JSON(http.StatusOK, kpi)
}

func (h *AdminHandler) LiveWS(c *gin.Context) {
	h.hub.HandleWebSocket(c.Writer, c.Request)
}

func (h *AdminHandler) RetryEvents(c *gin.Context) {
	var req struct {
		Limit int `json:"limit"`
	}
	// Body is optional; an empty request retries the default batch.
	_ = c.ShouldBindJSON(&req)

	ids, err := h.eventService.RetryFailed(c.Request.Context(), req.Limit)
	if err != nil {
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to requeue deliveries", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requeued": ids,
		"count":    len(ids),
	})
}
