// Package compliance holds a behavioral test suite every storage backend
// must pass. Backend packages invoke Run from their own tests with a factory
// for a fresh store.
package compliance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/storage"
)

// Run executes the suite against a backend. newStore must return an empty
// store per invocation.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("templates", func(t *testing.T) { testTemplates(t, newStore(t)) })
	t.Run("instances", func(t *testing.T) { testInstances(t, newStore(t)) })
	t.Run("delete cascades", func(t *testing.T) { testDeleteCascade(t, newStore(t)) })
	t.Run("blocks", func(t *testing.T) { testBlocks(t, newStore(t)) })
	t.Run("challenges", func(t *testing.T) { testChallenges(t, newStore(t)) })
	t.Run("garden", func(t *testing.T) { testGarden(t, newStore(t)) })
	t.Run("children", func(t *testing.T) { testChildren(t, newStore(t)) })
}

func newTemplate(id, title string, createdAt time.Time) *domain.TaskTemplate {
	return &domain.TaskTemplate{
		ID:         id,
		Title:      title,
		Tier:       domain.TierRhythm,
		Kind:       domain.KindStandard,
		Recurrence: domain.RecurrenceDaily,
		IsActive:   true,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
}

func testTemplates(t *testing.T, s storage.Store) {
	ctx := t.Context()
	base := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)

	_, err := s.FindTemplate(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	first := newTemplate("tpl-1", "tidy kitchen", base)
	second := newTemplate("tpl-2", "water plants", base.Add(time.Minute))
	slot := domain.MealLunch
	second.Kind = domain.KindMeal
	second.Meal = &slot
	second.DaysOfWeek = []time.Weekday{time.Monday, time.Wednesday}
	cc := domain.CareContextKidsAsleep
	second.CareContext = &cc

	require.NoError(t, s.SaveTemplate(ctx, first))
	require.NoError(t, s.SaveTemplate(ctx, second))

	got, err := s.FindTemplate(ctx, "tpl-2")
	require.NoError(t, err)
	assert.Equal(t, "water plants", got.Title)
	assert.Equal(t, domain.KindMeal, got.Kind)
	require.NotNil(t, got.Meal)
	assert.Equal(t, domain.MealLunch, *got.Meal)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, got.DaysOfWeek)
	require.NotNil(t, got.CareContext)
	assert.Equal(t, domain.CareContextKidsAsleep, *got.CareContext)

	// Save is an upsert.
	first.IsActive = false
	require.NoError(t, s.SaveTemplate(ctx, first))
	got, err = s.FindTemplate(ctx, "tpl-1")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	all, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "tpl-1", all[0].ID, "creation order is preserved")
}

func testInstances(t *testing.T, s storage.Store) {
	ctx := t.Context()
	base := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	date := domain.NewDate(2025, time.June, 2)

	tpl := newTemplate("tpl-1", "sweep floor", base)
	require.NoError(t, s.SaveTemplate(ctx, tpl))

	inst := &domain.TaskInstance{
		ID:        "inst-1",
		TaskID:    "tpl-1",
		Date:      date,
		Status:    domain.StatusPending,
		CreatedAt: base,
	}
	require.NoError(t, s.SaveInstance(ctx, inst))

	got, err := s.FindInstanceByTemplateDate(ctx, "tpl-1", date)
	require.NoError(t, err)
	assert.Equal(t, "inst-1", got.ID)

	_, err = s.FindInstanceByTemplateDate(ctx, "tpl-1", date.AddDays(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	byDate, err := s.ListInstancesByDate(ctx, date)
	require.NoError(t, err)
	require.Len(t, byDate, 1)

	// Deferred without a target date lands in the seed queue.
	inst.Status = domain.StatusDeferred
	inst.DeferredTo = nil
	require.NoError(t, s.SaveInstance(ctx, inst))

	seeds, err := s.ListSeedQueue(ctx)
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, "inst-1", seeds[0].ID)

	// Deferred with a target date does not.
	target := date.AddDays(3)
	inst.DeferredTo = &target
	require.NoError(t, s.SaveInstance(ctx, inst))

	seeds, err = s.ListSeedQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, seeds)

	now := base.Add(time.Hour)
	inst.Status = domain.StatusCompleted
	inst.DeferredTo = nil
	inst.CompletedAt = &now
	require.NoError(t, s.SaveInstance(ctx, inst))

	got, err = s.FindInstance(ctx, "inst-1")
	require.NoError(t, err)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(now))
}

func testDeleteCascade(t *testing.T, s storage.Store) {
	ctx := t.Context()
	base := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	date := domain.NewDate(2025, time.June, 2)

	tpl := newTemplate("tpl-1", "fold laundry", base)
	require.NoError(t, s.SaveTemplate(ctx, tpl))
	require.NoError(t, s.SaveInstance(ctx, &domain.TaskInstance{
		ID: "inst-1", TaskID: "tpl-1", Date: date,
		Status: domain.StatusPending, CreatedAt: base,
	}))

	require.NoError(t, s.DeleteTemplate(ctx, "tpl-1"))

	_, err := s.FindTemplate(ctx, "tpl-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.FindInstance(ctx, "inst-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, s.DeleteTemplate(ctx, "tpl-1"), domain.ErrNotFound)
}

func testBlocks(t *testing.T, s storage.Store) {
	ctx := t.Context()

	start := 7 * 60
	end := 9 * 60
	taskID := "tpl-1"
	morning := &domain.HabitBlock{
		ID: "blk-morning", Name: "morning", StartMinute: &start, EndMinute: &end,
		Items:      []domain.BlockItem{{TaskID: &taskID}, {ChoreSlot: true}},
		Recurrence: domain.RecurrenceDaily, Position: 0, IsActive: true,
	}
	key := "nap-start"
	nap := &domain.HabitBlock{
		ID: "blk-nap", Name: "nap window", EventKey: &key, Window: time.Hour,
		Recurrence: domain.RecurrenceDaily, Position: 1, IsActive: true,
	}

	require.NoError(t, s.SaveBlock(ctx, nap))
	require.NoError(t, s.SaveBlock(ctx, morning))

	all, err := s.ListBlocks(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "blk-morning", all[0].ID, "blocks come back in position order")

	got, err := s.FindBlock(ctx, "blk-morning")
	require.NoError(t, err)
	require.Len(t, got.Items, 2)
	require.NotNil(t, got.Items[0].TaskID)
	assert.Equal(t, "tpl-1", *got.Items[0].TaskID)
	assert.True(t, got.Items[1].ChoreSlot)

	_, err = s.FindBlock(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testChallenges(t *testing.T, s storage.Store) {
	ctx := t.Context()
	planted := domain.NewDate(2025, time.June, 1)

	c := &domain.Challenge{
		ID: "ch-1", Title: "ten tidy days", Kind: domain.ChallengeStreak,
		TargetCount: 10, PlotID: "plot-1", State: domain.ChallengeActive,
		SeededTaskIDs: []string{"tpl-9"}, RewardFlower: domain.FlowerRose,
		PlantedOn: planted,
	}
	require.NoError(t, s.SaveChallenge(ctx, c))

	got, err := s.FindChallengeByPlot(ctx, "plot-1")
	require.NoError(t, err)
	assert.Equal(t, "ch-1", got.ID)
	assert.Equal(t, []string{"tpl-9"}, got.SeededTaskIDs)

	// Terminal challenges do not occupy the plot.
	c.State = domain.ChallengeBloomed
	require.NoError(t, s.SaveChallenge(ctx, c))
	_, err = s.FindChallengeByPlot(ctx, "plot-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := s.ListChallenges(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testGarden(t *testing.T, s storage.Store) {
	ctx := t.Context()
	date := domain.NewDate(2025, time.June, 2)

	has, err := s.HasFlowerOn(ctx, date, domain.FlowerDaisy)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, s.AddFlower(ctx, &domain.Flower{
		ID: "fl-1", Type: domain.FlowerDaisy, EarnedOn: date,
	}))

	has, err = s.HasFlowerOn(ctx, date, domain.FlowerDaisy)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = s.HasFlowerOn(ctx, date.AddDays(1), domain.FlowerDaisy)
	require.NoError(t, err)
	assert.False(t, has)

	all, err := s.ListFlowers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testChildren(t *testing.T, s storage.Store) {
	ctx := t.Context()

	_, err := s.FindChild(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	child := &domain.Child{ID: "c1", Name: "Juniper", CareStatus: domain.CareStatusHome}
	require.NoError(t, s.SaveChild(ctx, child))

	child.CareStatus = domain.CareStatusAway
	require.NoError(t, s.SaveChild(ctx, child))

	got, err := s.FindChild(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, domain.CareStatusAway, got.CareStatus)

	all, err := s.ListChildren(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
