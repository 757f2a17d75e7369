package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/internal/infrastructure/webhook"
	"airlink/pkg/errors"
	"airlink/pkg/utils"
)

type EventHandler struct {
	eventService ports.EventService

	// Inbound webhook verification settings.
	webhookSecret   string
	signatureHeader string
	maxSkew         time.Duration
}

func NewEventHandler(eventService ports.EventService, webhookSecret, signatureHeader string, maxSkew time.Duration) *EventHandler {
	if signatureHeader == "" {
		signatureHeader = "X-Webhook-Signature"
	}
	if maxSkew <= 0 {
		maxSkew = 5 * time.Minute
	}
	return &EventHandler{
		eventService:    eventService,
		webhookSecret:   webhookSecret,
		signatureHeader: signatureHeader,
		maxSkew:         maxSkew,
	}
}

func (h *EventHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/events", h.ListEvents)
		api.POST("/events/receive", h.ReceiveEvent)
	}
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	filter := domain.EventFilter{
		Type:      c.Query("type"),
		SessionID: domain.SessionID(c.Query("session_id")),
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			c.Error(errors.NewInvalidInputError("invalid limit"))
			return
		}
		filter.Limit = limit
	}

	if v := c.Query("since"); v != "" {
		since, err := utils.ParseTimestamp(v)
		if err != nil {
			c.Error(errors.NewInvalidInputError("invalid since timestamp"))
			return
		}
		filter.Since = &since
	}

	events, err := h.eventService.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to list events", http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

// ReceiveEvent accepts signed webhook callbacks from peer systems and stores
// them in the event log.
func (h *EventHandler) ReceiveEvent(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil {
		c.Error(errors.NewInvalidInputError("unreadable body"))
		return
	}

	sig := c.GetHeader(h.signatureHeader)
	ts := c.GetHeader("X-Webhook-Timestamp")
	if sig == "" || ts == "" {
		c.Error(errors.NewUnauthorizedError("missing signature headers"))
		return
	}

	if err := webhook.VerifySignature(h.webhookSecret, ts, sig, body, h.maxSkew, utils.UTCNow()); err != nil {
		c.Error(errors.NewUnauthorizedError("signature verification failed"))
		return
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		c.Error(errors.NewInvalidInputError("malformed json body"))
		return
	}

	eventType := c.GetHeader("X-Webhook-Event")
	if eventType == "" {
		eventType = "external"
	}

	if err := h.eventService.StoreReceived(c.Request.Context(), eventType, payload); err != nil {
		c.Error(errors.WrapError(err, errors.ErrCodeInternal, "failed to store event", http.StatusInternalServerError))
		return
	}

	c.Status(http.StatusNoContent)
}
