package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
)

type MemorySessionRepository struct {
	sessions map[domain.SessionID]*domain.Session
	mu       sync.RWMutex
}

func NewMemorySessionRepository() ports.SessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[domain.SessionID]*domain.Session),
	}
}

func (r *MemorySessionRepository) Create(ctx context.Context, sess *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *sess
	r.sessions[sess.ID] = &cp
	return nil
}

func (r *MemorySessionRepository) GetByID(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, exists := r.sessions[id]
	if !exists {
		return nil, domain.ErrSessionNotFound
	}

	cp := *sess
	return &cp, nil
}

func (r *MemorySessionRepository) GetActiveByPIN(ctx context.Context, pin string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sess := range r.sessions {
		if sess.Active && sess.PIN == pin {
			cp := *sess
			return &cp, nil
		}
	}
	return nil, domain.ErrSessionNotFound
}

func (r *MemorySessionRepository) Update(ctx context.Context, sess *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[sess.ID]; !exists {
		return domain.ErrSessionNotFound
	}

	cp := *sess
	r.sessions[sess.ID] = &cp
	return nil
}

func (r *MemorySessionRepository) ListExpired(ctx context.Context, now time.Time) ([]*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []*domain.Session
	for _, sess := range r.sessions {
		if sess.Active && sess.Expired(now) {
			cp := *sess
			expired = append(expired, &cp)
		}
	}
	return expired, nil
}

func (r *MemorySessionRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recent := make([]*domain.Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		cp := *sess
		recent = append(recent, &cp)
	}

	sort.Slice(recent, func(i, j int) bool {
		return recent[i].StartedAt.After(recent[j].StartedAt)
	})

	if limit > 0 && limit < len(recent) {
		recent = recent[:limit]
	}
	return recent, nil
}

func (r *MemorySessionRepository) CountStartedSince(ctx context.Context, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, sess := range r.sessions {
		if !sess.StartedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *MemorySessionRepository) CountActive(ctx context.Context, now time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, sess := range r.sessions {
		if sess.Active && !sess.Expired(now) {
			n++
		}
	}
	return n, nil
}

func (r *MemorySessionRepository) AvgDurationMinutes(ctx context.Context, since time.Time) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	var count int
	for _, sess := range r.sessions {
		if sess.EndedAt == nil || sess.StartedAt.Before(since) {
			continue
		}
		total += sess.EndedAt.Sub(sess.StartedAt).Minutes()
		count++
	}

	if count == 0 {
		return 0, nil
	}
	return total / float64(count), nil
}

func (r *MemorySessionRepository) Totals(ctx context.Context) (domain.SessionTotals, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var totals domain.SessionTotals
	totals.Total = int64(len(r.sessions))
	for _, sess := range r.sessions {
		if totals.LastStartedAt == nil || sess.StartedAt.After(*totals.LastStartedAt) {
			t := sess.StartedAt
			totals.LastStartedAt = &t
		}
		if sess.EndedAt != nil && (totals.LastEndedAt == nil || sess.EndedAt.After(*totals.LastEndedAt)) {
			t := *sess.EndedAt
			totals.LastEndedAt = &t
		}
	}
	return totals, nil
}
