// Package storage defines the per-domain store interfaces the engine
// depends on. Implementations: fs (JSON blobs, default), sqlite, memory
// (tests).
package storage

import (
	"context"

	"github.com/graceolivia/rhythms/internal/domain"
)

// TaskStore persists task templates and their per-date instances.
//
// Save methods are upserts keyed by ID. Find methods return
// domain.ErrNotFound (possibly wrapped) for unknown IDs.
type TaskStore interface {
	SaveTemplate(ctx context.Context, tpl *domain.TaskTemplate) error
	FindTemplate(ctx context.Context, id string) (*domain.TaskTemplate, error)
	ListTemplates(ctx context.Context) ([]*domain.TaskTemplate, error)
	// DeleteTemplate removes the template and cascades to its instances.
	DeleteTemplate(ctx context.Context, id string) error

	SaveInstance(ctx context.Context, inst *domain.TaskInstance) error
	FindInstance(ctx context.Context, id string) (*domain.TaskInstance, error)
	// FindInstanceByTemplateDate returns any instance of the template on the
	// date. Used by the generator for (TaskID, Date) idempotence.
	FindInstanceByTemplateDate(ctx context.Context, taskID string, date domain.Date) (*domain.TaskInstance, error)
	ListInstancesByDate(ctx context.Context, date domain.Date) ([]*domain.TaskInstance, error)
	// ListSeedQueue returns deferred instances with no target date.
	ListSeedQueue(ctx context.Context) ([]*domain.TaskInstance, error)
}

// BlockStore persists habit blocks.
type BlockStore interface {
	SaveBlock(ctx context.Context, b *domain.HabitBlock) error
	FindBlock(ctx context.Context, id string) (*domain.HabitBlock, error)
	ListBlocks(ctx context.Context) ([]*domain.HabitBlock, error)
}

// ChallengeStore persists planted challenges.
type ChallengeStore interface {
	SaveChallenge(ctx context.Context, c *domain.Challenge) error
	FindChallenge(ctx context.Context, id string) (*domain.Challenge, error)
	ListChallenges(ctx context.Context) ([]*domain.Challenge, error)
	// FindChallengeByPlot returns the newest non-terminal challenge on the
	// plot, or domain.ErrNotFound when the plot is empty.
	FindChallengeByPlot(ctx context.Context, plotID string) (*domain.Challenge, error)
}

// GardenStore persists earned flowers.
type GardenStore interface {
	AddFlower(ctx context.Context, f *domain.Flower) error
	ListFlowers(ctx context.Context) ([]*domain.Flower, error)
	HasFlowerOn(ctx context.Context, date domain.Date, typ domain.FlowerType) (bool, error)
}

// ChildStore persists children and their care status.
type ChildStore interface {
	SaveChild(ctx context.Context, c *domain.Child) error
	FindChild(ctx context.Context, id string) (*domain.Child, error)
	ListChildren(ctx context.Context) ([]*domain.Child, error)
}

// Store is the full persistence surface a backend provides. The engine's
// components each depend on the narrow interface they need; backends
// implement all of them on one value.
type Store interface {
	TaskStore
	BlockStore
	ChallengeStore
	GardenStore
	ChildStore
}
