package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
)

type MemoryListenerRepository struct {
	listeners map[domain.ListenerID]*domain.Listener
	mu        sync.RWMutex
}

func NewMemoryListenerRepository() ports.ListenerRepository {
	return &MemoryListenerRepository{
		listeners: make(map[domain.ListenerID]*domain.Listener),
	}
}

func (r *MemoryListenerRepository) Add(ctx context.Context, l *domain.Listener) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *l
	r.listeners[l.ID] = &cp
	return nil
}

func (r *MemoryListenerRepository) Update(ctx context.Context, l *domain.Listener) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.listeners[l.ID]; !exists {
		return domain.ErrListenerNotFound
	}

	cp := *l
	r.listeners[l.ID] = &cp
	return nil
}

func (r *MemoryListenerRepository) ListBySession(ctx context.Context, sessionID domain.SessionID) ([]*domain.Listener, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Listener
	for _, l := range r.listeners {
		if l.SessionID == sessionID {
			cp := *l
			out = append(out, &cp)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

func (r *MemoryListenerRepository) CountBySession(ctx context.Context, sessionID domain.SessionID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, l := range r.listeners {
		if l.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryListenerRepository) CountJoinedSince(ctx context.Context, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int64
	for _, l := range r.listeners {
		if !l.JoinedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
