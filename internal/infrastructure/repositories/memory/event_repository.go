package memory

import (
	"context"
	"sync"
	"time"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
)

type MemoryEventRepository struct {
	events []*domain.Event
	mu     sync.RWMutex
}

func NewMemoryEventRepository() ports.EventRepository {
	return &MemoryEventRepository{}
}

func (r *MemoryEventRepository) Append(ctx context.Context, ev *domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *ev
	r.events = append(r.events, &cp)
	return nil
}

func (r *MemoryEventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Appended in order, so walk backwards for newest-first.
	var out []*domain.Event
	for i := len(r.events) - 1; i >= 0; i-- {
		ev := r.events[i]
		if filter.Type != "" && ev.Type != filter.Type {
			continue
		}
		if filter.SessionID != "" && (ev.SessionID == nil || *ev.SessionID != filter.SessionID) {
			continue
		}
		if filter.Since != nil && ev.CreatedAt.Before(*filter.Since) {
			continue
		}
		cp := *ev
		out = append(out, &cp)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *MemoryEventRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, ev := range r.events {
		if !ev.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryEventRepository) CountTypeSince(ctx context.Context, eventType string, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, ev := range r.events {
		if ev.Type == eventType && !ev.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryEventRepository) Totals(ctx context.Context) (int64, *time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.events) == 0 {
		return 0, nil, nil
	}
	last := r.events[len(r.events)-1].CreatedAt
	return int64(len(r.events)), &last, nil
}
