package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/internal/core/services"
	"airlink/internal/infrastructure/middleware"
	"airlink/internal/infrastructure/repositories/memory"
	"airlink/internal/infrastructure/webhook"
)

const receiveSecret = "webhook-secret"

type eventFixture struct {
	router    *gin.Engine
	eventRepo ports.EventRepository
}

func newEventFixture(t *testing.T) *eventFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t).Sugar()

	f := &eventFixture{eventRepo: memory.NewMemoryEventRepository()}
	eventService := services.NewEventService(f.eventRepo, nil, nil, logger)

	f.router = gin.New()
	f.router.Use(middleware.ErrorHandlerMiddleware(logger))
	NewEventHandler(eventService, receiveSecret, "X-Webhook-Signature", 5*time.Minute).SetupRoutes(f.router)
	return f
}

func TestListEventsEndpoint(t *testing.T) {
	f := newEventFixture(t)
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	sessionID := domain.SessionID("sess-1")
	seed := []*domain.Event{
		{ID: "e1", Type: domain.EventSessionStarted, SessionID: &sessionID, CreatedAt: base},
		{ID: "e2", Type: domain.EventListenerJoined, SessionID: &sessionID, CreatedAt: base.Add(time.Minute)},
		{ID: "e3", Type: domain.EventSessionEnded, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, ev := range seed {
		require.NoError(t, f.eventRepo.Append(context.Background(), ev))
	}

	get := func(t *testing.T, path string) *httptest.ResponseRecorder {
		t.Helper()
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("all events", func(t *testing.T) {
		w := get(t, "/api/events")
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 3, decodeBody(t, w)["count"])
	})

	t.Run("filtered by type", func(t *testing.T) {
		w := get(t, "/api/events?type="+domain.EventListenerJoined)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 1, decodeBody(t, w)["count"])
	})

	t.Run("filtered by session", func(t *testing.T) {
		w := get(t, "/api/events?session_id=sess-1")
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 2, decodeBody(t, w)["count"])
	})

	t.Run("since filter", func(t *testing.T) {
		w := get(t, "/api/events?since=2026-03-14T10:02:00Z")
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 1, decodeBody(t, w)["count"])
	})

	t.Run("bad limit", func(t *testing.T) {
		w := get(t, "/api/events?limit=zero")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad since", func(t *testing.T) {
		w := get(t, "/api/events?since=yesterday")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReceiveEventEndpoint(t *testing.T) {
	body := []byte(`{"source":"partner","detail":"synced"}`)

	signedRequest := func(secret string, ts int64, payload []byte) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/events/receive", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Webhook-Timestamp", strconv.FormatInt(ts, 10))
		req.Header.Set("X-Webhook-Signature", webhook.Sign(secret, ts, payload))
		req.Header.Set("X-Webhook-Event", "partner_sync")
		return req
	}

	t.Run("accepts a correctly signed payload", func(t *testing.T) {
		f := newEventFixture(t)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, signedRequest(receiveSecret, time.Now().Unix(), body))
		require.Equal(t, http.StatusNoContent, w.Code)

		stored, err := f.eventRepo.List(context.Background(), domain.EventFilter{Type: "partner_sync", Limit: 10})
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "partner", stored[0].Payload["source"])
	})

	t.Run("rejects a wrong secret", func(t *testing.T) {
		f := newEventFixture(t)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, signedRequest("other-secret", time.Now().Unix(), body))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects a stale timestamp", func(t *testing.T) {
		f := newEventFixture(t)
		w := httptest.NewRecorder()
		stale := time.Now().Add(-time.Hour).Unix()
		f.router.ServeHTTP(w, signedRequest(receiveSecret, stale, body))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects missing headers", func(t *testing.T) {
		f := newEventFixture(t)
		req := httptest.NewRequest(http.MethodPost, "/api/events/receive", bytes.NewReader(body))
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects non-JSON payload", func(t *testing.T) {
		f := newEventFixture(t)
		garbage := []byte("not json")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, signedRequest(receiveSecret, time.Now().Unix(), garbage))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
