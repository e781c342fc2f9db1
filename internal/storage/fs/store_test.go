package fs_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/storage"
	"github.com/graceolivia/rhythms/internal/storage/compliance"
	"github.com/graceolivia/rhythms/internal/storage/fs"
)

func TestStoreCompliance(t *testing.T) {
	compliance.Run(t, func(t *testing.T) storage.Store {
		store, err := fs.NewStore(t.TempDir())
		require.NoError(t, err)
		return store
	})
}

func TestStoreReloadsFromDisk(t *testing.T) {
	ctx := t.Context()
	dir := t.TempDir()

	store, err := fs.NewStore(dir)
	require.NoError(t, err)

	now := time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveTemplate(ctx, &domain.TaskTemplate{
		ID: "tpl-1", Title: "morning tidy", Tier: domain.TierAnchor,
		Kind: domain.KindStandard, Recurrence: domain.RecurrenceDaily,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.SaveChild(ctx, &domain.Child{
		ID: "c1", Name: "Juniper", CareStatus: domain.CareStatusHome,
	}))

	// A second store over the same directory sees the same data.
	reopened, err := fs.NewStore(dir)
	require.NoError(t, err)

	tpl, err := reopened.FindTemplate(ctx, "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, "morning tidy", tpl.Title)

	child, err := reopened.FindChild(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Juniper", child.Name)
}
