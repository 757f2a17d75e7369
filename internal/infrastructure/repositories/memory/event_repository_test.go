package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airlink/internal/core/domain"
)

func TestMemoryEventRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	sessA := domain.SessionID("sess-a")
	sessB := domain.SessionID("sess-b")
	seed := []*domain.Event{
		{ID: "e1", Type: domain.EventSessionStarted, SessionID: &sessA, CreatedAt: base},
		{ID: "e2", Type: domain.EventListenerJoined, SessionID: &sessA, CreatedAt: base.Add(time.Minute)},
		{ID: "e3", Type: domain.EventListenerJoined, SessionID: &sessB, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "e4", Type: domain.EventSessionEnded, SessionID: &sessA, CreatedAt: base.Add(3 * time.Minute)},
	}
	for _, ev := range seed {
		require.NoError(t, repo.Append(ctx, ev))
	}

	t.Run("newest first", func(t *testing.T) {
		out, err := repo.List(ctx, domain.EventFilter{Limit: 10})
		require.NoError(t, err)
		require.Len(t, out, 4)
		assert.Equal(t, domain.EventID("e4"), out[0].ID)
		assert.Equal(t, domain.EventID("e1"), out[3].ID)
	})

	t.Run("by type", func(t *testing.T) {
		out, err := repo.List(ctx, domain.EventFilter{Type: domain.EventListenerJoined, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("by session", func(t *testing.T) {
		out, err := repo.List(ctx, domain.EventFilter{SessionID: sessB, Limit: 10})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, domain.EventID("e3"), out[0].ID)
	})

	t.Run("since", func(t *testing.T) {
		since := base.Add(2 * time.Minute)
		out, err := repo.List(ctx, domain.EventFilter{Since: &since, Limit: 10})
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})

	t.Run("limit", func(t *testing.T) {
		out, err := repo.List(ctx, domain.EventFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, domain.EventID("e4"), out[0].ID)
	})
}

func TestMemoryEventRepository_Counts(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEventRepository()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		eventType := domain.EventListenerJoined
		if i%2 == 0 {
			eventType = domain.EventSessionStarted
		}
		require.NoError(t, repo.Append(ctx, &domain.Event{
			ID:        domain.EventID(fmt.Sprintf("e%d", i)),
			Type:      eventType,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	since := base.Add(2 * time.Hour)
	n, err := repo.CountSince(ctx, since)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.CountTypeSince(ctx, domain.EventSessionStarted, since)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, last, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.NotNil(t, last)
	assert.Equal(t, base.Add(4*time.Hour), *last)
}

func TestMemoryEventRepository_TotalsEmpty(t *testing.T) {
	repo := NewMemoryEventRepository()

	total, last, err := repo.Totals(context.Background())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Nil(t, last)
}
