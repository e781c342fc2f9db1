package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graceolivia/rhythms/internal/domain"
)

func TestLoadUpgradesVersionOneTaskBlob(t *testing.T) {
	dir := t.TempDir()

	// A version-1 blob: no kind field, a time-marker category, and the old
	// nap_context field name.
	blob := `{
		"schema_version": 1,
		"templates": {
			"tpl-old": {
				"id": "tpl-old",
				"title": "sunrise",
				"tier": "anchor",
				"recurrence": "daily",
				"category": "time-marker",
				"nap_context": "kids-asleep",
				"is_active": true,
				"created_at": "2024-01-01T08:00:00Z",
				"updated_at": "2024-01-01T08:00:00Z"
			}
		},
		"instances": {}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, tasksFile), []byte(blob), 0644))

	store, err := NewStore(dir)
	require.NoError(t, err)

	tpl, err := store.FindTemplate(t.Context(), "tpl-old")
	require.NoError(t, err)
	assert.Equal(t, domain.KindStandard, tpl.Kind)
	assert.True(t, tpl.Informational)
	require.NotNil(t, tpl.CareContext)
	assert.Equal(t, domain.CareContextKidsAsleep, *tpl.CareContext)
}

func TestLoadUpgradesVersionOneChallengeBlob(t *testing.T) {
	dir := t.TempDir()

	blob := `{
		"schema_version": 1,
		"challenges": {
			"ch-old": {
				"id": "ch-old",
				"title": "water plants daily",
				"kind": "streak",
				"target_count": 7,
				"total_progress": 3,
				"plot_id": "plot-1",
				"state": "active",
				"reward_flower": "tulip",
				"planted_on": "2024-01-01"
			}
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, challengesFile), []byte(blob), 0644))

	store, err := NewStore(dir)
	require.NoError(t, err)

	ch, err := store.FindChallenge(t.Context(), "ch-old")
	require.NoError(t, err)
	assert.False(t, ch.Sequential)
	assert.Equal(t, 3, ch.TotalProgress)
}

func TestLoadMissingSchemaVersionTreatedAsOne(t *testing.T) {
	dir := t.TempDir()

	blob := `{"templates": {"tpl-1": {"id": "tpl-1", "title": "wake up", "tier": "anchor", "recurrence": "daily", "is_active": true, "created_at": "2024-01-01T08:00:00Z", "updated_at": "2024-01-01T08:00:00Z"}}, "instances": {}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, tasksFile), []byte(blob), 0644))

	store, err := NewStore(dir)
	require.NoError(t, err)

	tpl, err := store.FindTemplate(t.Context(), "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, domain.KindStandard, tpl.Kind)
}

func TestLoadRejectsFutureSchemaVersion(t *testing.T) {
	dir := t.TempDir()

	blob := `{"schema_version": 99, "templates": {}, "instances": {}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, tasksFile), []byte(blob), 0644))

	_, err := NewStore(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}
