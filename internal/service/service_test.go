package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/garden"
	"github.com/graceolivia/rhythms/internal/service"
	"github.com/graceolivia/rhythms/internal/storage/memory"
)

type fixture struct {
	svc   *service.Service
	store *memory.Store
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		now:   time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC),
	}
	svc, err := service.NewAt(f.store, func() time.Time { return f.now })
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) createTemplate(t *testing.T, p service.TemplateParams) *domain.TaskTemplate {
	t.Helper()
	if p.Tier == "" {
		p.Tier = "rhythm"
	}
	if p.Recurrence == "" {
		p.Recurrence = "daily"
	}
	tpl, err := f.svc.CreateTemplate(context.Background(), p)
	require.NoError(t, err)
	return tpl
}

func (f *fixture) pendingInstance(t *testing.T, templateID string) *domain.TaskInstance {
	t.Helper()
	_, err := f.svc.Generate(context.Background())
	require.NoError(t, err)
	inst, err := f.store.FindInstanceByTemplateDate(context.Background(), templateID, domain.DateOf(f.now))
	require.NoError(t, err)
	return inst
}

func TestCompleteTask(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	tpl := f.createTemplate(t, service.TemplateParams{Title: "sweep floor"})
	inst := f.pendingInstance(t, tpl.ID)

	require.NoError(t, f.svc.CompleteTask(ctx, inst.ID))

	got, err := f.store.FindInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(f.now))

	// Completion fires the template's event.
	assert.True(t, f.svc.Events().HasFiredToday(service.TaskCompletedEventPrefix+tpl.ID))

	// Completing twice is rejected.
	assert.ErrorIs(t, f.svc.CompleteTask(ctx, inst.ID), domain.ErrInvalidTransition)
}

func TestCompleteTaskUnknownInstance(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.svc.CompleteTask(t.Context(), "missing"), domain.ErrNotFound)
}

func TestCompleteTaskInformational(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	tpl := f.createTemplate(t, service.TemplateParams{Title: "sunset", Informational: true})
	inst := f.pendingInstance(t, tpl.ID)

	assert.ErrorIs(t, f.svc.CompleteTask(ctx, inst.ID), domain.ErrInformationalTask)

	got, err := f.store.FindInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
}

func TestCompleteTaskUpdatesChildCare(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	child, err := f.svc.CreateChild(ctx, "Juniper")
	require.NoError(t, err)

	tests := []struct {
		taskType string
		want     domain.CareStatus
	}{
		{"dropoff", domain.CareStatusAway},
		{"pickup", domain.CareStatusHome},
		{"naptime", domain.CareStatusNapping},
		{"wakeup", domain.CareStatusHome},
	}
	for _, tc := range tests {
		t.Run(tc.taskType, func(t *testing.T) {
			tpl := f.createTemplate(t, service.TemplateParams{
				Title:         tc.taskType + " juniper",
				ChildID:       child.ID,
				ChildTaskType: tc.taskType,
			})
			inst := f.pendingInstance(t, tpl.ID)
			require.NoError(t, f.svc.CompleteTask(ctx, inst.ID))

			got, err := f.store.FindChild(ctx, child.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.CareStatus)
		})
	}
}

func TestCompleteTaskRecordsChallengeProgress(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	c, err := f.svc.Garden().Plant(ctx, garden.PlantParams{
		PlotID: "plot-1", Title: "declutter", Kind: domain.ChallengeStreak,
		TargetCount: 5, RewardFlower: domain.FlowerRose,
		Seeds: []garden.SeedSpec{{Title: "clear one shelf", Recurrence: domain.RecurrenceDaily}},
	})
	require.NoError(t, err)

	inst := f.pendingInstance(t, c.SeededTaskIDs[0])
	require.NoError(t, f.svc.CompleteTask(ctx, inst.ID))

	got, err := f.store.FindChallenge(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalProgress)
}

func TestDailyBloom(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	first := f.createTemplate(t, service.TemplateParams{Title: "sweep floor"})
	second := f.createTemplate(t, service.TemplateParams{Title: "water plants"})

	instFirst := f.pendingInstance(t, first.ID)
	instSecond := f.pendingInstance(t, second.ID)

	// One of two done: no daisy yet.
	require.NoError(t, f.svc.CompleteTask(ctx, instFirst.ID))
	flowers, err := f.svc.Flowers(ctx)
	require.NoError(t, err)
	assert.Empty(t, flowers)

	require.NoError(t, f.svc.CompleteTask(ctx, instSecond.ID))
	flowers, err = f.svc.Flowers(ctx)
	require.NoError(t, err)
	require.Len(t, flowers, 1)
	assert.Equal(t, domain.FlowerDaisy, flowers[0].Type)
}

func TestSkipDeferResetTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	tpl := f.createTemplate(t, service.TemplateParams{Title: "sweep floor"})
	inst := f.pendingInstance(t, tpl.ID)

	require.NoError(t, f.svc.SkipTask(ctx, inst.ID))
	got, err := f.store.FindInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, got.Status)

	// Skipping again fails, reset brings it back.
	assert.ErrorIs(t, f.svc.SkipTask(ctx, inst.ID), domain.ErrInvalidTransition)
	require.NoError(t, f.svc.ResetTask(ctx, inst.ID))
	got, err = f.store.FindInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Nil(t, got.CompletedAt)

	assert.ErrorIs(t, f.svc.ResetTask(ctx, inst.ID), domain.ErrInvalidTransition)
}

func TestDeferUndatedJoinsSeedQueue(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	tpl := f.createTemplate(t, service.TemplateParams{Title: "mend curtain", Tier: "tending"})
	inst := f.pendingInstance(t, tpl.ID)

	require.NoError(t, f.svc.DeferTask(ctx, inst.ID, nil))

	seeds, err := f.svc.SeedQueue(ctx)
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, inst.ID, seeds[0].Instance.ID)
	assert.Equal(t, "mend curtain", seeds[0].Template.Title)
}

func TestDeferDatedMovesInstance(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	tpl := f.createTemplate(t, service.TemplateParams{Title: "mend curtain", Tier: "tending"})
	inst := f.pendingInstance(t, tpl.ID)

	target := domain.DateOf(f.now).AddDays(3)
	require.NoError(t, f.svc.DeferTask(ctx, inst.ID, &target))

	got, err := f.store.FindInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeferred, got.Status)
	assert.Equal(t, target, got.Date)
	require.NotNil(t, got.DeferredTo)
	assert.Equal(t, target, *got.DeferredTo)

	seeds, err := f.svc.SeedQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, seeds, "dated deferrals are not seeds")
}

func TestPromoteAndDismissSeed(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	tpl := f.createTemplate(t, service.TemplateParams{Title: "mend curtain", Tier: "tending"})
	inst := f.pendingInstance(t, tpl.ID)
	require.NoError(t, f.svc.DeferTask(ctx, inst.ID, nil))

	// Two days later the seed is promoted back onto the day.
	f.now = f.now.Add(48 * time.Hour)
	require.NoError(t, f.svc.PromoteToToday(ctx, inst.ID))

	got, err := f.store.FindInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, domain.DateOf(f.now), got.Date)

	// Dismiss only applies to deferred instances.
	assert.ErrorIs(t, f.svc.DismissSeed(ctx, inst.ID), domain.ErrInvalidTransition)

	require.NoError(t, f.svc.DeferTask(ctx, inst.ID, nil))
	require.NoError(t, f.svc.DismissSeed(ctx, inst.ID))
	got, err = f.store.FindInstance(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSkipped, got.Status)
}

func TestDueTasksSuggestions(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	// One child home and awake: availability is parenting.
	_, err := f.svc.CreateChild(ctx, "Juniper")
	require.NoError(t, err)

	f.createTemplate(t, service.TemplateParams{
		Title:                 "fold laundry",
		PreferredAvailability: []string{"parenting"},
	})
	f.createTemplate(t, service.TemplateParams{
		Title:                 "deep clean oven",
		PreferredAvailability: []string{"free"},
	})
	f.createTemplate(t, service.TemplateParams{Title: "no preference"})

	_, err = f.svc.Generate(ctx)
	require.NoError(t, err)

	views, err := f.svc.DueTasks(ctx)
	require.NoError(t, err)
	require.Len(t, views, 3)

	byTitle := map[string]bool{}
	for _, v := range views {
		byTitle[v.Template.Title] = v.Suggested
	}
	assert.True(t, byTitle["fold laundry"])
	assert.False(t, byTitle["deep clean oven"])
	assert.False(t, byTitle["no preference"], "templates without preferences are never suggested")
}

func TestUpcoming(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	f.createTemplate(t, service.TemplateParams{Title: "everyday"})
	f.createTemplate(t, service.TemplateParams{Title: "sunday reset", Recurrence: "weekly"})
	f.createTemplate(t, service.TemplateParams{Title: "rent check", Recurrence: "monthly"})

	// Today is Monday June 2nd.
	entries, err := f.svc.Upcoming(ctx, 7)
	require.NoError(t, err)
	require.Len(t, entries, 2, "monthly due July 1st falls outside the horizon")
	assert.Equal(t, "everyday", entries[0].Template.Title)
	assert.Equal(t, domain.NewDate(2025, time.June, 3), entries[0].Due)
	assert.Equal(t, "sunday reset", entries[1].Template.Title)
	assert.Equal(t, domain.NewDate(2025, time.June, 8), entries[1].Due)
}

func TestCreateTemplateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	_, err := f.svc.CreateTemplate(ctx, service.TemplateParams{Title: "  ", Tier: "rhythm", Recurrence: "daily"})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)

	_, err = f.svc.CreateTemplate(ctx, service.TemplateParams{Title: "x", Tier: "mega", Recurrence: "daily"})
	assert.ErrorIs(t, err, domain.ErrInvalidTaskTier)

	_, err = f.svc.CreateTemplate(ctx, service.TemplateParams{Title: "x", Tier: "rhythm", Recurrence: "fortnightly"})
	assert.ErrorIs(t, err, domain.ErrInvalidRecurrence)

	_, err = f.svc.CreateTemplate(ctx, service.TemplateParams{
		Title: "x", Tier: "rhythm", Recurrence: "daily", Kind: "meal", Meal: "brunch",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMealSlot)
}
