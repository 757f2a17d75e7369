package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"airlink/internal/core/domain"
	"airlink/internal/infrastructure/repositories/memory"
)

func TestDispatcher_DisabledMarksSent(t *testing.T) {
	outbox := memory.NewMemoryOutboxRepository()
	d := NewDispatcher(outbox, nil, false, nil, zap.NewNop().Sugar())

	ev, err := d.Enqueue(context.Background(), "license_activated", map[string]interface{}{"code": "TRIAL-10"})
	require.NoError(t, err)

	assert.Equal(t, domain.DeliverySent, ev.Status)
	require.NotNil(t, ev.DeliveredAt)

	stored, err := outbox.GetByID(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliverySent, stored.Status)
}

func TestDispatcher_DeliversAndMarksSent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	outbox := memory.NewMemoryOutboxRepository()
	sender := NewSender(SenderConfig{URL: srv.URL, Secret: "s", MaxRetries: 1}, zap.NewNop().Sugar())
	d := NewDispatcher(outbox, sender, true, nil, zap.NewNop().Sugar())

	ev, err := d.Enqueue(context.Background(), "session_started", map[string]interface{}{"pin": "AB12CD"})
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryQueued, ev.Status)

	require.Eventually(t, func() bool {
		stored, err := outbox.GetByID(context.Background(), ev.ID)
		return err == nil && stored.Status == domain.DeliverySent
	}, 2*time.Second, 20*time.Millisecond)
}

func TestDispatcher_FailureRecordedAndRetried(t *testing.T) {
	healthy := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if healthy {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	outbox := memory.NewMemoryOutboxRepository()
	sender := NewSender(SenderConfig{URL: srv.URL, Secret: "s", MaxRetries: 1}, zap.NewNop().Sugar())
	d := NewDispatcher(outbox, sender, true, nil, zap.NewNop().Sugar())

	ev, err := d.Enqueue(context.Background(), "session_ended", map[string]interface{}{})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stored, err := outbox.GetByID(context.Background(), ev.ID)
		return err == nil && stored.Status == domain.DeliveryFailed
	}, 2*time.Second, 20*time.Millisecond)

	stored, err := outbox.GetByID(context.Background(), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Retries)
	assert.NotEmpty(t, stored.LastError)

	// Endpoint recovers; a retry sweep should deliver the stuck event.
	healthy = true
	ids, err := d.RetryFailed(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ids, 1)

	require.Eventually(t, func() bool {
		stored, err := outbox.GetByID(context.Background(), ev.ID)
		return err == nil && stored.Status == domain.DeliverySent
	}, 2*time.Second, 20*time.Millisecond)
}
