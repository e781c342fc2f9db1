package blocks_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graceolivia/rhythms/internal/blocks"
	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/events"
	"github.com/graceolivia/rhythms/internal/storage/memory"
)

func minuteOf(h, m int) *int {
	v := h*60 + m
	return &v
}

func saveBlock(t *testing.T, store *memory.Store, b *domain.HabitBlock) {
	t.Helper()
	if b.Recurrence == "" {
		b.Recurrence = domain.RecurrenceDaily
	}
	b.IsActive = true
	require.NoError(t, store.SaveBlock(context.Background(), b))
}

func newResolver(store *memory.Store, at *time.Time) (*blocks.Resolver, *events.Log) {
	clock := func() time.Time { return *at }
	log := events.NewLogAt(clock)
	return blocks.NewResolverAt(store, log, clock), log
}

func TestActiveTimeAnchored(t *testing.T) {
	store := memory.NewStore()
	saveBlock(t, store, &domain.HabitBlock{
		ID: "morning", Name: "morning", StartMinute: minuteOf(7, 0), EndMinute: minuteOf(9, 0),
	})

	now := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
	r, _ := newResolver(store, &now)

	got, err := r.Active(t.Context())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "morning", got.ID)

	// End minute is exclusive.
	now = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	got, err = r.Active(t.Context())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestActiveEndDefaultsToNextBlockStart(t *testing.T) {
	store := memory.NewStore()
	saveBlock(t, store, &domain.HabitBlock{
		ID: "morning", Name: "morning", StartMinute: minuteOf(7, 0), Position: 0,
	})
	saveBlock(t, store, &domain.HabitBlock{
		ID: "midday", Name: "midday", StartMinute: minuteOf(11, 30), Position: 1,
	})

	// 10:00 falls after morning's start and before midday's. Morning has no
	// end of its own, so it runs until midday begins.
	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)
	r, _ := newResolver(store, &now)

	got, err := r.Active(t.Context())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "morning", got.ID)

	now = time.Date(2025, time.June, 2, 11, 30, 0, 0, time.UTC)
	got, err = r.Active(t.Context())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "midday", got.ID)
}

func TestActiveLastBlockGetsDefaultWindow(t *testing.T) {
	store := memory.NewStore()
	saveBlock(t, store, &domain.HabitBlock{
		ID: "evening", Name: "evening", StartMinute: minuteOf(19, 0),
	})

	now := time.Date(2025, time.June, 2, 20, 15, 0, 0, time.UTC)
	r, _ := newResolver(store, &now)

	got, err := r.Active(t.Context())
	require.NoError(t, err)
	require.NotNil(t, got)

	// 90 minutes past start the block is over.
	now = time.Date(2025, time.June, 2, 20, 30, 0, 0, time.UTC)
	got, err = r.Active(t.Context())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestActiveOverlapDeclarationOrderWins(t *testing.T) {
	store := memory.NewStore()
	saveBlock(t, store, &domain.HabitBlock{
		ID: "second", Name: "second", StartMinute: minuteOf(7, 0), EndMinute: minuteOf(10, 0), Position: 1,
	})
	saveBlock(t, store, &domain.HabitBlock{
		ID: "first", Name: "first", StartMinute: minuteOf(8, 0), EndMinute: minuteOf(9, 0), Position: 0,
	})

	now := time.Date(2025, time.June, 2, 8, 30, 0, 0, time.UTC)
	r, _ := newResolver(store, &now)

	got, err := r.Active(t.Context())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "first", got.ID, "position order decides overlaps, not start time")
}

func TestActiveEventAnchored(t *testing.T) {
	store := memory.NewStore()
	key := "nap-start"
	saveBlock(t, store, &domain.HabitBlock{
		ID: "nap", Name: "nap chores", EventKey: &key, Window: time.Hour,
	})

	now := time.Date(2025, time.June, 2, 13, 0, 0, 0, time.UTC)
	r, log := newResolver(store, &now)

	// Nothing fired yet.
	got, err := r.Active(t.Context())
	require.NoError(t, err)
	assert.Nil(t, got)

	log.Emit(key)

	now = now.Add(30 * time.Minute)
	got, err = r.Active(t.Context())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "nap", got.ID)

	// Window closed.
	now = now.Add(31 * time.Minute)
	got, err = r.Active(t.Context())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestActiveEventAnchoredDefaultWindow(t *testing.T) {
	store := memory.NewStore()
	key := "school-run"
	saveBlock(t, store, &domain.HabitBlock{
		ID: "after-dropoff", Name: "after dropoff", EventKey: &key,
	})

	now := time.Date(2025, time.June, 2, 8, 30, 0, 0, time.UTC)
	r, log := newResolver(store, &now)
	log.Emit(key)

	now = now.Add(89 * time.Minute)
	got, err := r.Active(t.Context())
	require.NoError(t, err)
	require.NotNil(t, got)

	now = now.Add(time.Minute)
	got, err = r.Active(t.Context())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestActiveSkipsBlocksNotDueToday(t *testing.T) {
	store := memory.NewStore()
	saveBlock(t, store, &domain.HabitBlock{
		ID: "weekend", Name: "weekend reset", StartMinute: minuteOf(9, 0),
		Recurrence: domain.RecurrenceWeekends,
	})

	// A Monday.
	now := time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)
	r, _ := newResolver(store, &now)

	got, err := r.Active(t.Context())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNext(t *testing.T) {
	store := memory.NewStore()
	saveBlock(t, store, &domain.HabitBlock{
		ID: "morning", Name: "morning", StartMinute: minuteOf(7, 0), Position: 0,
	})
	saveBlock(t, store, &domain.HabitBlock{
		ID: "evening", Name: "evening", StartMinute: minuteOf(19, 0), Position: 1,
	})
	key := "nap-start"
	saveBlock(t, store, &domain.HabitBlock{
		ID: "nap", Name: "nap chores", EventKey: &key, Position: 2,
	})

	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	r, _ := newResolver(store, &now)

	got, err := r.Next(t.Context())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "evening", got.ID, "event-anchored blocks have no start time")

	now = time.Date(2025, time.June, 2, 22, 0, 0, 0, time.UTC)
	got, err = r.Next(t.Context())
	require.NoError(t, err)
	assert.Nil(t, got)
}
