// Package schedule materializes recurring task templates into per-date
// instances. Generation is idempotent per (template, date) and safe to run
// any number of times a day.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/recurring"
	"github.com/graceolivia/rhythms/internal/storage"
)

// SeedRetentionDays is how long an undated deferred instance survives in the
// seed queue, measured from its original date, before it is dropped.
const SeedRetentionDays = 14

// Result reports what one generation pass changed.
type Result struct {
	// Created is the number of new pending instances, including deferred
	// instances re-activated on their target date.
	Created int
	// Deferred is the number of missed tending instances moved to the seed queue.
	Deferred int
	// Expired is the number of seeds aged out of the queue.
	Expired int
}

// Generator produces the day's task instances.
type Generator struct {
	tasks storage.TaskStore
	now   func() time.Time
}

func NewGenerator(tasks storage.TaskStore) *Generator {
	return NewGeneratorAt(tasks, time.Now)
}

func NewGeneratorAt(tasks storage.TaskStore, now func() time.Time) *Generator {
	return &Generator{tasks: tasks, now: now}
}

// Generate runs the daily pass for date: expire old seeds, move yesterday's
// missed tending work into the seed queue, then create pending instances for
// every due template that does not have one yet.
func (g *Generator) Generate(ctx context.Context, date domain.Date) (Result, error) {
	var res Result

	expired, err := g.expireSeeds(ctx, date)
	if err != nil {
		return res, err
	}
	res.Expired = expired

	deferred, err := g.deferMissedTending(ctx, date)
	if err != nil {
		return res, err
	}
	res.Deferred = deferred

	woken, err := g.wakeDatedDeferrals(ctx, date)
	if err != nil {
		return res, err
	}

	created, err := g.createDue(ctx, date)
	if err != nil {
		return res, err
	}
	res.Created = created + woken

	return res, nil
}

func (g *Generator) expireSeeds(ctx context.Context, date domain.Date) (int, error) {
	seeds, err := g.tasks.ListSeedQueue(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list seed queue: %w", err)
	}

	expired := 0
	for _, seed := range seeds {
		if date.DaysSince(seed.Date) <= SeedRetentionDays {
			continue
		}
		seed.Status = domain.StatusSkipped
		if err := g.tasks.SaveInstance(ctx, seed); err != nil {
			return expired, fmt.Errorf("failed to expire seed %s: %w", seed.ID, err)
		}
		expired++
	}
	return expired, nil
}

func (g *Generator) deferMissedTending(ctx context.Context, date domain.Date) (int, error) {
	yesterday, err := g.tasks.ListInstancesByDate(ctx, date.AddDays(-1))
	if err != nil {
		return 0, fmt.Errorf("failed to list yesterday's instances: %w", err)
	}

	deferred := 0
	for _, inst := range yesterday {
		if inst.Status != domain.StatusPending {
			continue
		}
		tpl, err := g.tasks.FindTemplate(ctx, inst.TaskID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return deferred, err
		}
		// Anchor and rhythm misses are ephemeral. Only tending work follows
		// the parent into the seed queue.
		if tpl.Tier != domain.TierTending {
			continue
		}
		inst.Status = domain.StatusDeferred
		inst.DeferredTo = nil
		if err := g.tasks.SaveInstance(ctx, inst); err != nil {
			return deferred, fmt.Errorf("failed to defer instance %s: %w", inst.ID, err)
		}
		deferred++
	}
	return deferred, nil
}

// wakeDatedDeferrals flips instances deferred to this exact date back to
// pending, whether or not their template recurs today.
func (g *Generator) wakeDatedDeferrals(ctx context.Context, date domain.Date) (int, error) {
	today, err := g.tasks.ListInstancesByDate(ctx, date)
	if err != nil {
		return 0, fmt.Errorf("failed to list today's instances: %w", err)
	}

	woken := 0
	for _, inst := range today {
		if inst.Status != domain.StatusDeferred || inst.DeferredTo == nil || *inst.DeferredTo != date {
			continue
		}
		inst.Status = domain.StatusPending
		inst.DeferredTo = nil
		if err := g.tasks.SaveInstance(ctx, inst); err != nil {
			return woken, fmt.Errorf("failed to reactivate instance %s: %w", inst.ID, err)
		}
		woken++
	}
	return woken, nil
}

func (g *Generator) createDue(ctx context.Context, date domain.Date) (int, error) {
	templates, err := g.tasks.ListTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list templates: %w", err)
	}

	created := 0
	for _, tpl := range templates {
		if !recurring.IsDue(tpl, date) {
			continue
		}

		if _, err := g.tasks.FindInstanceByTemplateDate(ctx, tpl.ID, date); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return created, err
		}

		id, err := uuid.NewV7()
		if err != nil {
			return created, fmt.Errorf("failed to generate instance id: %w", err)
		}
		inst := &domain.TaskInstance{
			ID:        id.String(),
			TaskID:    tpl.ID,
			Date:      date,
			Status:    domain.StatusPending,
			CreatedAt: g.now(),
		}
		if err := g.tasks.SaveInstance(ctx, inst); err != nil {
			return created, fmt.Errorf("failed to create instance for %s: %w", tpl.ID, err)
		}
		created++
	}
	return created, nil
}
