package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"airlink/internal/core/ports"
)

// Notifier pushes short operator notifications. The console channel (zap) is
// always on; a webhook channel is added when a URL is configured. Both are
// fire-and-forget so request handling never blocks on them.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     *zap.SugaredLogger
}

func New(webhookURL string, timeout time.Duration, logger *zap.SugaredLogger) ports.Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (n *Notifier) Notify(title string, payload map[string]interface{}) {
	n.logger.Infow("notify: "+title, "payload", payload)

	if n.webhookURL == "" {
		return
	}
	go n.post(title, payload)
}

func (n *Notifier) post(title string, payload map[string]interface{}) {
	body, err := json.Marshal(map[string]interface{}{
		"title":   title,
		"payload": payload,
	})
	if err != nil {
		n.logger.Warnw("notify marshal failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		n.logger.Warnw("notify request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warnw("notify delivery failed", "error", err)
		return
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warnw("notify endpoint rejected", "status", resp.StatusCode)
	}
}
