package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func formatTS(ts int64) string {
	return strconv.FormatInt(ts, 10)
}

func TestSender_SignsDeliveries(t *testing.T) {
	secret := "hook-secret"

	var gotEvent, gotSig, gotTS string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEvent = r.Header.Get("X-Webhook-Event")
		gotSig = r.Header.Get("X-Webhook-Signature")
		gotTS = r.Header.Get("X-Webhook-Timestamp")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewSender(SenderConfig{
		URL:        srv.URL,
		Secret:     secret,
		MaxRetries: 1,
	}, zap.NewNop().Sugar())

	err := sender.Send(context.Background(), "session_started", map[string]interface{}{"pin": "AB12CD"})
	require.NoError(t, err)

	assert.Equal(t, "session_started", gotEvent)
	require.NotEmpty(t, gotTS)
	require.NotEmpty(t, gotSig)

	// The receiver-side check must accept what the sender produced.
	err = VerifySignature(secret, gotTS, gotSig, gotBody, 5*time.Minute, time.Now())
	assert.NoError(t, err)
}

func TestSender_Non2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sender := NewSender(SenderConfig{
		URL:        srv.URL,
		Secret:     "s",
		MaxRetries: 1,
	}, zap.NewNop().Sugar())

	err := sender.Send(context.Background(), "session_started", map[string]interface{}{})
	assert.Error(t, err)
}

func TestSender_RetriesUntilSuccess(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sender := NewSender(SenderConfig{
		URL:        srv.URL,
		Secret:     "s",
		MaxRetries: 3,
	}, zap.NewNop().Sugar())

	err := sender.Send(context.Background(), "session_ended", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
