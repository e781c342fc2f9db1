package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graceolivia/rhythms/internal/domain"
)

func TestParseDate(t *testing.T) {
	d, err := domain.ParseDate("2025-06-02")
	require.NoError(t, err)
	assert.Equal(t, domain.NewDate(2025, time.June, 2), d)
	assert.Equal(t, time.Monday, d.Weekday())
	assert.Equal(t, "2025-06-02", d.String())

	_, err = domain.ParseDate("06/02/2025")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestDateArithmetic(t *testing.T) {
	d := domain.NewDate(2025, time.June, 30)

	assert.Equal(t, domain.NewDate(2025, time.July, 1), d.AddDays(1))
	assert.Equal(t, domain.NewDate(2025, time.June, 16), d.AddDays(-14))
	assert.Equal(t, 14, d.DaysSince(domain.NewDate(2025, time.June, 16)))
	assert.Equal(t, -1, d.DaysSince(domain.NewDate(2025, time.July, 1)))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
}

func TestDateJSONRoundTrip(t *testing.T) {
	type payload struct {
		On domain.Date `json:"on"`
	}

	data, err := json.Marshal(payload{On: domain.NewDate(2025, time.June, 2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"on":"2025-06-02"}`, string(data))

	var got payload
	require.NoError(t, json.Unmarshal([]byte(`{"on":"2024-12-31"}`), &got))
	assert.Equal(t, domain.NewDate(2024, time.December, 31), got.On)

	assert.Error(t, json.Unmarshal([]byte(`{"on":"soon"}`), &payload{}))
}

func TestNewTitle(t *testing.T) {
	title, err := domain.NewTitle("  water plants  ")
	require.NoError(t, err)
	assert.Equal(t, "water plants", title.String())

	_, err = domain.NewTitle("   ")
	assert.ErrorIs(t, err, domain.ErrTitleRequired)

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	_, err = domain.NewTitle(string(long))
	assert.ErrorIs(t, err, domain.ErrTitleTooLong)
}

func TestEnumConstructors(t *testing.T) {
	tier, err := domain.NewTaskTier("tending")
	require.NoError(t, err)
	assert.Equal(t, domain.TierTending, tier)

	_, err = domain.NewTaskTier("heroic")
	assert.ErrorIs(t, err, domain.ErrInvalidTaskTier)

	// Kind defaults to standard for the empty string.
	kind, err := domain.NewTemplateKind("")
	require.NoError(t, err)
	assert.Equal(t, domain.KindStandard, kind)

	_, err = domain.NewRecurrence("fortnightly")
	assert.ErrorIs(t, err, domain.ErrInvalidRecurrence)

	_, err = domain.NewAvailability("busy")
	assert.ErrorIs(t, err, domain.ErrInvalidAvailability)

	_, err = domain.NewFlowerType("orchid")
	assert.ErrorIs(t, err, domain.ErrInvalidFlowerType)
}

func TestChallengeStateTerminal(t *testing.T) {
	assert.False(t, domain.ChallengeActive.Terminal())
	assert.True(t, domain.ChallengeBloomed.Terminal())
	assert.True(t, domain.ChallengeAbandoned.Terminal())
}

func TestInstanceInSeedQueue(t *testing.T) {
	target := domain.NewDate(2025, time.June, 5)

	tests := []struct {
		name string
		inst domain.TaskInstance
		want bool
	}{
		{"deferred undated", domain.TaskInstance{Status: domain.StatusDeferred}, true},
		{"deferred dated", domain.TaskInstance{Status: domain.StatusDeferred, DeferredTo: &target}, false},
		{"pending", domain.TaskInstance{Status: domain.StatusPending}, false},
		{"skipped", domain.TaskInstance{Status: domain.StatusSkipped}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.inst.InSeedQueue())
		})
	}
}
