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

type SessionHandler struct {
	sessionService ports.SessionService
}

func NewSessionHandler(sessionService ports.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

func (h *SessionHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/start-session", h.StartSession)
		api.POST("/join-pin", h.JoinPIN)
		api.POST("/end-session", h.EndSession)
	}
}

func (h *SessionHandler) StartSession(c *gin.Context) {
	var req struct {
		LicenseCode  string `json:"license_code" binding:"required,max=64"`
		MaxListeners int    `json:"max_listeners"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	sess, err := h.sessionService.Start(c.Request.Context(), req.LicenseCode, req.MaxListeners)
	if err != nil {
		switch {
		case stderrors.Is(err, domain.ErrLicenseNotFound):
			c.Error(errors.NewNotFoundError("license"))
		case stderrors.Is(err, domain.ErrLicenseNotActive):
			c.Error(errors.NewConflictError("license not active"))
		case stderrors.Is(err, domain.ErrLicenseExpired):
			c.Error(errors.NewConflictError("license expired"))
		case stderrors.Is(err, domain.ErrInvalidMaxListeners):
			c.Error(errors.NewUnprocessableError("max_listeners not allowed for this license").
				WithContext("max_listeners", req.MaxListeners))
		default:
			c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to start session", http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":            sess.ID,
		"license_id":    sess.LicenseID,
		"pin":           sess.PIN,
		"started_at":    sess.StartedAt,
		"expires_at":    sess.ExpiresAt,
		"max_listeners": sess.MaxListeners,
		"is_active":     sess.Active,
	})
}

func (h *SessionHandler) JoinPIN(c *gin.Context) {
	var req struct {
		PIN         string `json:"pin" binding:"required"`
		DisplayName string `json:"display_name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	if err := validation.ValidatePIN(req.PIN); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}
	if err := validation.ValidateDisplayName(req.DisplayName); err != nil {
		c.Error(errors.NewInvalidInputError(err.Error()))
		return
	}

	listener, err := h.sessionService.Join(c.Request.Context(), req.PIN, req.DisplayName)
	if err != nil {
		switch {
		case stderrors.Is(err, domain.ErrSessionNotFound):
			c.Error(errors.NewNotFoundError("active session for this PIN"))
		case stderrors.Is(err, domain.ErrSessionExpired):
			c.Error(errors.NewGoneError("session expired"))
		case stderrors.Is(err, domain.ErrSessionFull):
			c.Error(errors.NewConflictError("session is full"))
		default:
			c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to join session", http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         listener.ID,
		"session_id": listener.SessionID,
		"joined_at":  listener.JoinedAt,
	})
}

func (h *SessionHandler) EndSession(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewInvalidInputError("invalid request format"))
		return
	}

	if _, err := h.sessionService.End(c.Request.Context(), domain.SessionID(req.SessionID), "manual"); err != nil {
		if stderrors.Is(err, domain.ErrSessionNotFound) {
			c.Error(errors.NewNotFoundError("session"))
			return
		}
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to end session", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
