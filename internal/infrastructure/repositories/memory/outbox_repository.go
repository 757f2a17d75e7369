package memory

import (
	"context"
	"sort"
	"sync"

	"airlink/internal/core/domain"
	"airlink/internal/core/ports"
)

type MemoryOutboxRepository struct {
	events map[domain.OutboxID]*domain.OutboxEvent
	mu     sync.RWMutex
}

func NewMemoryOutboxRepository() ports.OutboxRepository {
	return &MemoryOutboxRepository{
		events: make(map[domain.OutboxID]*domain.OutboxEvent),
	}
}

func (r *MemoryOutboxRepository) Enqueue(ctx context.Context, ev *domain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *ev
	r.events[ev.ID] = &cp
	return nil
}

func (r *MemoryOutboxRepository) GetByID(ctx context.Context, id domain.OutboxID) (*domain.OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ev, exists := r.events[id]
	if !exists {
		return nil, domain.ErrEventNotFound
	}

	cp := *ev
	return &cp, nil
}

func (r *MemoryOutboxRepository) Update(ctx context.Context, ev *domain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.events[ev.ID]; !exists {
		return domain.ErrEventNotFound
	}

	cp := *ev
	r.events[ev.ID] = &cp
	return nil
}

func (r *MemoryOutboxRepository) ListFailed(ctx context.Context, limit int) ([]domain.OutboxID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var failed []*domain.OutboxEvent
	for _, ev := range r.events {
		if ev.Status == domain.DeliveryFailed {
			failed = append(failed, ev)
		}
	}

	sort.Slice(failed, func(i, j int) bool {
		return failed[i].CreatedAt.Before(failed[j].CreatedAt)
	})

	if limit > 0 && limit < len(failed) {
		failed = failed[:limit]
	}

	ids := make([]domain.OutboxID, 0, len(failed))
	for _, ev := range failed {
		ids = append(ids, ev.ID)
	}
	return ids, nil
}
