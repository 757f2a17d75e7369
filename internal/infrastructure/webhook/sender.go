package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"airlink/pkg/circuitbreaker"
	"airlink/pkg/retry"
	"airlink/pkg/utils"
)

const (
	headerTimestamp = "X-Webhook-Timestamp"
	headerEvent     = "X-Webhook-Event"
)

type SenderConfig struct {
	URL             string
	Secret          string
	SignatureHeader string
	Timeout         time.Duration
	MaxRetries      int
}

// Sender delivers signed JSON payloads to the configured webhook endpoint.
// Failures retry with exponential backoff; a circuit breaker keeps a dead
// endpoint from stalling the dispatcher.
type Sender struct {
	cfg     SenderConfig
	client  *http.Client
	breaker *circuitbreaker.CircuitBreaker
	logger  *zap.SugaredLogger
}

func NewSender(cfg SenderConfig, logger *zap.SugaredLogger) *Sender {
	if cfg.SignatureHeader == "" {
		cfg.SignatureHeader = "X-Webhook-Signature"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Sender{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:  logger,
	}
}

// Send posts the event payload, retrying transient failures. It returns after
// the final attempt; the caller decides how to record the outcome.
func (s *Sender) Send(ctx context.Context, eventType string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	retryCfg := retry.DefaultConfig()
	if s.cfg.MaxRetries > 0 {
		retryCfg.MaxAttempts = s.cfg.MaxRetries
	}

	return retry.Do(ctx, retryCfg, func() error {
		return s.breaker.Execute(func() error {
			return s.post(ctx, eventType, body)
		})
	})
}

func (s *Sender) post(ctx context.Context, eventType string, body []byte) error {
	ts := utils.UTCNow().Unix()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerEvent, eventType)
	req.Header.Set(headerTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(s.cfg.SignatureHeader, Sign(s.cfg.Secret, ts, body))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}

	s.logger.Debugw("webhook delivered", "event_type", eventType, "status", resp.StatusCode)
	return nil
}
