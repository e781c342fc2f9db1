package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_EmitAndQuery(t *testing.T) {
	now := time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)
	l := NewLogAt(func() time.Time { return now })

	assert.False(t, l.HasFiredToday("task-complete:tpl-1"))
	assert.Nil(t, l.LastFired("task-complete:tpl-1"))

	l.Emit("task-complete:tpl-1")

	assert.True(t, l.HasFiredToday("task-complete:tpl-1"))
	fired := l.LastFired("task-complete:tpl-1")
	require.NotNil(t, fired)
	assert.Equal(t, now, *fired)
}

func TestLog_RepeatEmitReplacesTimestamp(t *testing.T) {
	now := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
	l := NewLogAt(func() time.Time { return now })

	l.Emit("nap-start")
	now = now.Add(2 * time.Hour)
	l.Emit("nap-start")

	fired := l.LastFired("nap-start")
	require.NotNil(t, fired)
	assert.Equal(t, now, *fired)
}

func TestLog_YesterdayVisibleButNotToday(t *testing.T) {
	now := time.Date(2025, time.June, 2, 23, 0, 0, 0, time.UTC)
	l := NewLogAt(func() time.Time { return now })

	l.Emit("bedtime")

	// Next morning: fired yesterday, still visible, but not "today".
	now = time.Date(2025, time.June, 3, 7, 0, 0, 0, time.UTC)
	assert.NotNil(t, l.LastFired("bedtime"))
	assert.False(t, l.HasFiredToday("bedtime"))
}

func TestLog_EntriesOlderThanYesterdayArePruned(t *testing.T) {
	now := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)
	l := NewLogAt(func() time.Time { return now })

	l.Emit("dropoff")

	now = now.AddDate(0, 0, 2)
	assert.Nil(t, l.LastFired("dropoff"))
	assert.False(t, l.HasFiredToday("dropoff"))
}
