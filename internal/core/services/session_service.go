package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
	"airlink/pkg/utils"
)

// PIN collisions against active sessions are retried this many times before
// giving up. With 36^6 codes the loop practically never exhausts.
const pinGenerationTries = 6

type sessionService struct {
	licenseRepo  ports.LicenseRepository
	sessionRepo  ports.SessionRepository
	listenerRepo ports.ListenerRepository
	pinCache     ports.PINCache
	events       ports.EventService
	notifier     ports.Notifier
	metrics      ports.MetricsRecorder
	logger       *zap.SugaredLogger
}

func NewSessionService(
	licenseRepo ports.LicenseRepository,
	sessionRepo ports.SessionRepository,
	listenerRepo ports.ListenerRepository,
	pinCache ports.PINCache,
	events ports.EventService,
	notifier ports.Notifier,
	metrics ports.MetricsRecorder,
	logger *zap.SugaredLogger,
) ports.SessionService {
	return &sessionService{
		licenseRepo:  licenseRepo,
		sessionRepo:  sessionRepo,
		listenerRepo: listenerRepo,
		pinCache:     pinCache,
		events:       events,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
	}
}

func (s *sessionService) Start(ctx context.Context, licenseCode string, maxListeners int) (*domain.Session, error) {
	lic, err := s.licenseRepo.GetByCode(ctx, licenseCode)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	if !lic.Active || lic.ActivatedAt == nil {
		return nil, domain.ErrLicenseNotActive
	}
	if lic.Expired(now) {
		// The activation window ran out; retire the license on the spot.
		lic.Active = false
		if err := s.licenseRepo.Update(ctx, lic); err != nil {
			s.logger.Warnw("failed to deactivate expired license", "code", lic.Code, "error", err)
		}
		return nil, domain.ErrLicenseExpired
	}

	if maxListeners == 0 {
		maxListeners = lic.MaxListeners
	}
	if !domain.AllowedMaxListeners[maxListeners] {
		return nil, domain.ErrInvalidMaxListeners
	}

	pin, err := s.generatePIN(ctx)
	if err != nil {
		return nil, err
	}

	remaining := lic.RemainingMinutes(now)
	sess := &domain.Session{
		ID:           domain.SessionID(uuid.New().String()),
		LicenseID:    lic.ID,
		PIN:          pin,
		StartedAt:    now,
		ExpiresAt:    utils.ComputeExpiry(now, remaining),
		MaxListeners: maxListeners,
		Active:       true,
	}

	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.pinCache != nil {
		s.pinCache.Set(ctx, pin, sess.ID, time.Until(sess.ExpiresAt))
	}
	if s.metrics != nil {
		s.metrics.RecordSessionStarted()
	}
	s.updateActiveGauge(ctx)

	s.events.Record(ctx, &domain.Event{
		Type:        domain.EventSessionStarted,
		Description: fmt.Sprintf("pin=%s", sess.PIN),
		SessionID:   &sess.ID,
		LicenseCode: lic.Code,
		Payload: map[string]interface{}{
			"session_id":    string(sess.ID),
			"license_code":  lic.Code,
			"pin":           sess.PIN,
			"max_listeners": sess.MaxListeners,
			"started_at":    utils.FormatTimestamp(sess.StartedAt),
		},
	})

	if s.notifier != nil {
		s.notifier.Notify("Session Started", map[string]interface{}{
			"event":         domain.EventSessionStarted,
			"session_id":    string(sess.ID),
			"license_code":  lic.Code,
			"pin":           sess.PIN,
			"max_listeners": sess.MaxListeners,
			"started_at":    utils.FormatTimestamp(sess.StartedAt),
		})
	}

	return sess, nil
}

func (s *sessionService) Join(ctx context.Context, pin, displayName string) (*domain.Listener, error) {
	sess, err := s.lookupByPIN(ctx, pin)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	if sess.Expired(now) {
		sess.Active = false
		if err := s.sessionRepo.Update(ctx, sess); err != nil {
			s.logger.Warnw("failed to deactivate expired session", "session_id", sess.ID, "error", err)
		}
		if s.pinCache != nil {
			s.pinCache.Delete(ctx, pin)
		}
		return nil, domain.ErrSessionExpired
	}

	count, err := s.listenerRepo.CountBySession(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count listeners: %w", err)
	}
	if count >= sess.MaxListeners {
		return nil, domain.ErrSessionFull
	}

	listener := &domain.Listener{
		ID:          domain.ListenerID(uuid.New().String()),
		SessionID:   sess.ID,
		DisplayName: displayName,
		JoinedAt:    now,
		Connected:   true,
	}
	if err := s.listenerRepo.Add(ctx, listener); err != nil {
		return nil, fmt.Errorf("failed to add listener: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordListenerJoined()
	}

	s.events.Record(ctx, &domain.Event{
		Type:        domain.EventListenerJoined,
		Description: fmt.Sprintf("listener=%s", listener.ID),
		SessionID:   &sess.ID,
		Payload: map[string]interface{}{
			"session_id":   string(sess.ID),
			"listener_id":  string(listener.ID),
			"pin":          pin,
			"display_name": displayName,
			"joined_at":    utils.FormatTimestamp(listener.JoinedAt),
		},
	})

	if s.notifier != nil {
		s.notifier.Notify("Listener Joined", map[string]interface{}{
			"event":        domain.EventListenerJoined,
			"session_id":   string(sess.ID),
			"listener_id":  string(listener.ID),
			"pin":          pin,
			"display_name": displayName,
			"joined_at":    utils.FormatTimestamp(listener.JoinedAt),
		})
	}

	return listener, nil
}

func (s *sessionService) End(ctx context.Context, id domain.SessionID, reason string) (*domain.Session, error) {
	sess, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()

	// Already closed: still reconcile listeners that never reported leaving.
	if !sess.Active && sess.EndedAt != nil {
		s.disconnectListeners(ctx, sess, now, reason+"_late_sync")
		return sess, nil
	}

	sess.Active = false
	sess.EndedAt = &now
	if err := s.sessionRepo.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to end session: %w", err)
	}
	if s.pinCache != nil {
		s.pinCache.Delete(ctx, sess.PIN)
	}

	disconnected := s.disconnectListeners(ctx, sess, now, reason)
	total, err := s.listenerRepo.CountBySession(ctx, sess.ID)
	if err != nil {
		total = disconnected
	}

	s.events.Record(ctx, &domain.Event{
		Type:        domain.EventSessionEnded,
		Description: fmt.Sprintf("reason=%s", reason),
		SessionID:   &sess.ID,
		Payload: map[string]interface{}{
			"session_id":      string(sess.ID),
			"pin":             sess.PIN,
			"reason":          reason,
			"listeners_count": total,
			"ended_at":        utils.FormatTimestamp(now),
		},
	})

	if s.metrics != nil {
		s.metrics.RecordSessionEnded(now.Sub(sess.StartedAt))
	}
	s.updateActiveGauge(ctx)

	if s.notifier != nil {
		s.notifier.Notify("Session Ended", map[string]interface{}{
			"event":            domain.EventSessionEnded,
			"session_id":       string(sess.ID),
			"pin":              sess.PIN,
			"started_at":       utils.FormatTimestamp(sess.StartedAt),
			"ended_at":         utils.FormatTimestamp(now),
			"duration_seconds": sess.DurationSeconds(),
			"listeners_count":  total,
		})
	}

	return sess, nil
}

func (s *sessionService) CloseExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.sessionRepo.ListExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired sessions: %w", err)
	}

	closed := 0
	for _, sess := range expired {
		if _, err := s.End(ctx, sess.ID, "auto"); err != nil {
			s.logger.Warnw("failed to auto-close session", "session_id", sess.ID, "error", err)
			continue
		}
		closed++
	}
	return closed, nil
}

func (s *sessionService) lookupByPIN(ctx context.Context, pin string) (*domain.Session, error) {
	if s.pinCache != nil {
		if id, ok := s.pinCache.Get(ctx, pin); ok {
			if sess, err := s.sessionRepo.GetByID(ctx, id); err == nil && sess.Active && sess.PIN == pin {
				return sess, nil
			}
			// stale cache entry
			s.pinCache.Delete(ctx, pin)
		}
	}
	return s.sessionRepo.GetActiveByPIN(ctx, pin)
}

func (s *sessionService) generatePIN(ctx context.Context) (string, error) {
	for i := 0; i < pinGenerationTries; i++ {
		candidate := utils.GeneratePIN(domain.PINLength)
		_, err := s.sessionRepo.GetActiveByPIN(ctx, candidate)
		if err == domain.ErrSessionNotFound {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check pin uniqueness: %w", err)
		}
	}
	return "", domain.ErrPINGeneration
}

func (s *sessionService) disconnectListeners(ctx context.Context, sess *domain.Session, now time.Time, reason string) int {
	listeners, err := s.listenerRepo.ListBySession(ctx, sess.ID)
	if err != nil {
		s.logger.Warnw("failed to list listeners", "session_id", sess.ID, "error", err)
		return 0
	}

	disconnected := 0
	for _, l := range listeners {
		if !l.Disconnect(now) {
			continue
		}
		if err := s.listenerRepo.Update(ctx, l); err != nil {
			s.logger.Warnw("failed to disconnect listener", "listener_id", l.ID, "error", err)
			continue
		}
		disconnected++

		s.events.Record(ctx, &domain.Event{
			Type:        domain.EventListenerLeft,
			Description: fmt.Sprintf("listener_id=%s;reason=session_%s", l.ID, reason),
			SessionID:   &sess.ID,
			Payload: map[string]interface{}{
				"session_id":  string(sess.ID),
				"listener_id": string(l.ID),
				"reason":      reason,
				"left_at":     utils.FormatTimestamp(now),
			},
		})
	}
	return disconnected
}

func (s *sessionService) updateActiveGauge(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	if n, err := s.sessionRepo.CountActive(ctx, utils.UTCNow()); err == nil {
		s.metrics.SetActiveSessions(float64(n))
	}
}
