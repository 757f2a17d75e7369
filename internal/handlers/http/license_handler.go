package http

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/pkg/errors"
	"airlink/pkg/validation"
)

type LicenseHandler struct {
	licenseService ports.LicenseService
}

func NewLicenseHandler(licenseService ports.LicenseService) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
	}
}

func (h *LicenseHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/activate-license", h.ActivateLicense)
	}
}

func (h *LicenseHandler) ActivateLicense(c *gin.Context) {
	var req struct {
		LicenseCode string `json:"license_code" binding:"required,max=64"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	if err := validation.ValidateLicenseCode(req.LicenseCode); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}

	lic, remaining, err := h.licenseService.Activate(c.Request.Context(), req.LicenseCode)
	if err != nil {
		if stderrors.Is(err, domain.ErrLicenseNotFound) {
			c.Error(errors.NewNotFoundError("license"))
			return
		}
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to activate license", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":                lic.ID,
		"code":              lic.Code,
		"is_active":         lic.Active,
		"activated_at":      lic.ActivatedAt,
		"remaining_minutes": remaining,
	})
}
