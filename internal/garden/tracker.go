// Package garden tracks planted challenges, their growth toward bloom, and
// the flowers earned along the way.
package garden

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/storage"
)

// ProgressResult describes the outcome of recording progress. These are
// expected states, not failures, so they are values rather than errors.
type ProgressResult string

const (
	ProgressRecorded        ProgressResult = "recorded"
	ProgressAlreadyRecorded ProgressResult = "already-recorded"
	ProgressBloomed         ProgressResult = "bloomed"
	ProgressNotFound        ProgressResult = "not-found"
)

// SeedSpec describes one task template a challenge plants alongside itself.
type SeedSpec struct {
	Title      string
	Recurrence domain.Recurrence
	DaysOfWeek []time.Weekday
}

// PlantParams carries everything needed to start a challenge on a plot.
type PlantParams struct {
	PlotID       string
	Title        string
	Kind         domain.ChallengeKind
	TargetCount  int
	Sequential   bool
	RewardFlower domain.FlowerType
	Seeds        []SeedSpec
}

// Tracker owns the challenge lifecycle.
type Tracker struct {
	challenges storage.ChallengeStore
	garden     storage.GardenStore
	tasks      storage.TaskStore
	now        func() time.Time
}

func NewTracker(challenges storage.ChallengeStore, garden storage.GardenStore, tasks storage.TaskStore) *Tracker {
	return NewTrackerAt(challenges, garden, tasks, time.Now)
}

func NewTrackerAt(challenges storage.ChallengeStore, garden storage.GardenStore, tasks storage.TaskStore, now func() time.Time) *Tracker {
	return &Tracker{challenges: challenges, garden: garden, tasks: tasks, now: now}
}

// Plant starts a challenge on an empty plot. The plot must hold no live
// challenge and no other active challenge may share the title. Seed specs
// become tending templates owned by the challenge; sequential challenges
// activate only the first.
func (t *Tracker) Plant(ctx context.Context, p PlantParams) (*domain.Challenge, error) {
	if _, err := t.challenges.FindChallengeByPlot(ctx, p.PlotID); err == nil {
		return nil, fmt.Errorf("%w: plot %s", domain.ErrPlotOccupied, p.PlotID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	existing, err := t.challenges.ListChallenges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	for _, c := range existing {
		if c.State == domain.ChallengeActive && c.Title == p.Title {
			return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyPlanted, p.Title)
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate challenge id: %w", err)
	}
	now := t.now()
	challenge := &domain.Challenge{
		ID:           id.String(),
		Title:        p.Title,
		Kind:         p.Kind,
		TargetCount:  p.TargetCount,
		PlotID:       p.PlotID,
		State:        domain.ChallengeActive,
		Sequential:   p.Sequential,
		RewardFlower: p.RewardFlower,
		PlantedOn:    domain.DateOf(now),
	}

	for i, seed := range p.Seeds {
		tplID, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate template id: %w", err)
		}
		challengeID := challenge.ID
		tpl := &domain.TaskTemplate{
			ID:                  tplID.String(),
			Title:               seed.Title,
			Tier:                domain.TierTending,
			Kind:                domain.KindStandard,
			Recurrence:          seed.Recurrence,
			DaysOfWeek:          seed.DaysOfWeek,
			SeededByChallengeID: &challengeID,
			IsActive:            !p.Sequential || i == 0,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := t.tasks.SaveTemplate(ctx, tpl); err != nil {
			return nil, fmt.Errorf("failed to seed template %q: %w", seed.Title, err)
		}
		challenge.SeededTaskIDs = append(challenge.SeededTaskIDs, tpl.ID)
	}

	if err := t.challenges.SaveChallenge(ctx, challenge); err != nil {
		return nil, fmt.Errorf("failed to save challenge: %w", err)
	}
	return challenge, nil
}

// RecordProgress advances a challenge by one unit for the given date.
// Streak challenges count at most once per date. Reaching the target blooms
// the challenge exactly once.
func (t *Tracker) RecordProgress(ctx context.Context, id string, date domain.Date) (ProgressResult, error) {
	c, err := t.challenges.FindChallenge(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ProgressNotFound, nil
		}
		return "", err
	}
	if c.State.Terminal() {
		return ProgressNotFound, nil
	}

	if c.Kind == domain.ChallengeStreak && c.LastRecorded != nil && *c.LastRecorded == date {
		return ProgressAlreadyRecorded, nil
	}

	c.TotalProgress++
	c.LastRecorded = &date

	if c.TotalProgress >= c.TargetCount && !c.RewardIssued {
		if err := t.bloom(ctx, c, date); err != nil {
			return "", err
		}
		return ProgressBloomed, nil
	}

	if err := t.challenges.SaveChallenge(ctx, c); err != nil {
		return "", fmt.Errorf("failed to save challenge: %w", err)
	}
	return ProgressRecorded, nil
}

func (t *Tracker) bloom(ctx context.Context, c *domain.Challenge, date domain.Date) error {
	flowerID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate flower id: %w", err)
	}
	challengeID := c.ID
	if err := t.garden.AddFlower(ctx, &domain.Flower{
		ID:          flowerID.String(),
		Type:        c.RewardFlower,
		EarnedOn:    date,
		ChallengeID: &challengeID,
	}); err != nil {
		return fmt.Errorf("failed to add flower: %w", err)
	}

	c.RewardIssued = true
	c.State = domain.ChallengeBloomed
	if err := t.challenges.SaveChallenge(ctx, c); err != nil {
		return fmt.Errorf("failed to save challenge: %w", err)
	}
	return t.deactivateSeeded(ctx, c)
}

// Abandon retires an active challenge without reward and deactivates its
// seeded templates.
func (t *Tracker) Abandon(ctx context.Context, id string) error {
	c, err := t.challenges.FindChallenge(ctx, id)
	if err != nil {
		return err
	}
	if c.State.Terminal() {
		return fmt.Errorf("%w: challenge %s is %s", domain.ErrInvalidTransition, id, c.State)
	}

	c.State = domain.ChallengeAbandoned
	if err := t.challenges.SaveChallenge(ctx, c); err != nil {
		return fmt.Errorf("failed to save challenge: %w", err)
	}
	return t.deactivateSeeded(ctx, c)
}

// HandleTaskCompleted records progress on the challenge that seeded the
// template, if any, and advances sequential seeding. Templates not owned by
// a challenge produce ProgressNotFound without touching anything.
func (t *Tracker) HandleTaskCompleted(ctx context.Context, tpl *domain.TaskTemplate, date domain.Date) (ProgressResult, error) {
	if tpl.SeededByChallengeID == nil {
		return ProgressNotFound, nil
	}

	res, err := t.RecordProgress(ctx, *tpl.SeededByChallengeID, date)
	if err != nil {
		return "", err
	}
	if res != ProgressRecorded {
		return res, nil
	}

	c, err := t.challenges.FindChallenge(ctx, *tpl.SeededByChallengeID)
	if err != nil {
		return "", err
	}
	if c.Sequential {
		if err := t.activateNextSeed(ctx, c, tpl.ID); err != nil {
			return "", err
		}
	}
	return res, nil
}

// AwardDailyBloom grants the once-per-day daisy for clearing the whole day.
// Returns false without error when today's daisy already exists.
func (t *Tracker) AwardDailyBloom(ctx context.Context, date domain.Date) (bool, error) {
	has, err := t.garden.HasFlowerOn(ctx, date, domain.FlowerDaisy)
	if err != nil {
		return false, err
	}
	if has {
		return false, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return false, fmt.Errorf("failed to generate flower id: %w", err)
	}
	if err := t.garden.AddFlower(ctx, &domain.Flower{
		ID:       id.String(),
		Type:     domain.FlowerDaisy,
		EarnedOn: date,
	}); err != nil {
		return false, fmt.Errorf("failed to add flower: %w", err)
	}
	return true, nil
}

func (t *Tracker) deactivateSeeded(ctx context.Context, c *domain.Challenge) error {
	for _, id := range c.SeededTaskIDs {
		tpl, err := t.tasks.FindTemplate(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return err
		}
		if !tpl.IsActive {
			continue
		}
		tpl.IsActive = false
		tpl.UpdatedAt = t.now()
		if err := t.tasks.SaveTemplate(ctx, tpl); err != nil {
			return fmt.Errorf("failed to deactivate template %s: %w", id, err)
		}
	}
	return nil
}

// activateNextSeed turns on the seeded template following the one just
// completed, deactivating the completed one.
func (t *Tracker) activateNextSeed(ctx context.Context, c *domain.Challenge, completedID string) error {
	idx := -1
	for i, id := range c.SeededTaskIDs {
		if id == completedID {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(c.SeededTaskIDs) {
		return nil
	}

	done, err := t.tasks.FindTemplate(ctx, completedID)
	if err == nil && done.IsActive {
		done.IsActive = false
		done.UpdatedAt = t.now()
		if err := t.tasks.SaveTemplate(ctx, done); err != nil {
			return fmt.Errorf("failed to retire template %s: %w", completedID, err)
		}
	}

	next, err := t.tasks.FindTemplate(ctx, c.SeededTaskIDs[idx+1])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if next.IsActive {
		return nil
	}
	next.IsActive = true
	next.UpdatedAt = t.now()
	if err := t.tasks.SaveTemplate(ctx, next); err != nil {
		return fmt.Errorf("failed to activate template %s: %w", next.ID, err)
	}
	return nil
}
