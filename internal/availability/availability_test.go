package availability_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graceolivia/rhythms/internal/availability"
	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/storage/memory"
)

func TestLegacyStates(t *testing.T) {
	tests := []struct {
		context domain.CareContext
		want    []domain.Availability
	}{
		{domain.CareContextKidsAsleep, []domain.Availability{domain.AvailabilityQuiet}},
		{domain.CareContextKidsAway, []domain.Availability{domain.AvailabilityFree}},
		{domain.CareContextSoloParenting, []domain.Availability{domain.AvailabilityParenting}},
		{domain.CareContextBothCovered, []domain.Availability{domain.AvailabilityQuiet}},
		{domain.CareContextAnytime, []domain.Availability{
			domain.AvailabilityFree, domain.AvailabilityQuiet, domain.AvailabilityParenting,
		}},
	}
	for _, tc := range tests {
		t.Run(string(tc.context), func(t *testing.T) {
			assert.Equal(t, tc.want, availability.LegacyStates(tc.context))
		})
	}
}

func TestIsSuggested(t *testing.T) {
	asleep := domain.CareContextKidsAsleep

	tests := []struct {
		name    string
		tpl     domain.TaskTemplate
		current domain.Availability
		want    bool
	}{
		{
			name:    "explicit preference matches",
			tpl:     domain.TaskTemplate{PreferredAvailability: []domain.Availability{domain.AvailabilityQuiet}},
			current: domain.AvailabilityQuiet,
			want:    true,
		},
		{
			name:    "explicit preference misses",
			tpl:     domain.TaskTemplate{PreferredAvailability: []domain.Availability{domain.AvailabilityQuiet}},
			current: domain.AvailabilityFree,
			want:    false,
		},
		{
			name:    "explicit preference wins over legacy context",
			tpl:     domain.TaskTemplate{PreferredAvailability: []domain.Availability{domain.AvailabilityFree}, CareContext: &asleep},
			current: domain.AvailabilityQuiet,
			want:    false,
		},
		{
			name:    "legacy context used when no explicit preference",
			tpl:     domain.TaskTemplate{CareContext: &asleep},
			current: domain.AvailabilityQuiet,
			want:    true,
		},
		{
			name:    "no preference means never suggested",
			tpl:     domain.TaskTemplate{},
			current: domain.AvailabilityFree,
			want:    false,
		},
		{
			name:    "unavailable matches nothing",
			tpl:     domain.TaskTemplate{PreferredAvailability: []domain.Availability{domain.AvailabilityFree, domain.AvailabilityQuiet, domain.AvailabilityParenting}},
			current: domain.AvailabilityUnavailable,
			want:    false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, availability.IsSuggested(&tc.tpl, tc.current))
		})
	}
}

func TestDerive(t *testing.T) {
	child := func(status domain.CareStatus) *domain.Child {
		return &domain.Child{ID: "c", CareStatus: status}
	}

	tests := []struct {
		name     string
		children []*domain.Child
		want     domain.Availability
	}{
		{"no children", nil, domain.AvailabilityFree},
		{"all away", []*domain.Child{child(domain.CareStatusAway), child(domain.CareStatusAway)}, domain.AvailabilityFree},
		{"all home napping", []*domain.Child{child(domain.CareStatusNapping)}, domain.AvailabilityQuiet},
		{"one napping one away", []*domain.Child{child(domain.CareStatusNapping), child(domain.CareStatusAway)}, domain.AvailabilityQuiet},
		{"one home awake", []*domain.Child{child(domain.CareStatusHome)}, domain.AvailabilityParenting},
		{"awake trumps napping", []*domain.Child{child(domain.CareStatusNapping), child(domain.CareStatusHome)}, domain.AvailabilityParenting},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, availability.Derive(tc.children))
		})
	}
}

func TestTrackerOverride(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	require.NoError(t, store.SaveChild(ctx, &domain.Child{ID: "c1", Name: "Juniper", CareStatus: domain.CareStatusHome}))

	now := time.Date(2025, time.June, 2, 10, 0, 0, 0, time.UTC)
	tracker := availability.NewTrackerAt(store, func() time.Time { return now })

	got, err := tracker.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityParenting, got)

	tracker.SetOverride(domain.AvailabilityUnavailable)
	got, err = tracker.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityUnavailable, got)

	// Overrides expire at midnight.
	now = now.Add(24 * time.Hour)
	got, err = tracker.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityParenting, got)

	tracker.SetOverride(domain.AvailabilityQuiet)
	tracker.ClearOverride()
	got, err = tracker.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityParenting, got)
}
