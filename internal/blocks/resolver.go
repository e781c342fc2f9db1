// Package blocks resolves which habit block, if any, the household is in
// right now. Blocks are either time-anchored (a start minute, an optional
// end) or event-anchored (a window opened by a named event firing).
package blocks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/events"
	"github.com/graceolivia/rhythms/internal/recurring"
	"github.com/graceolivia/rhythms/internal/storage"
)

// DefaultWindow bounds a block that declares no end of its own.
const DefaultWindow = 90 * time.Minute

// Resolver answers "which block is active" and "which block is next".
type Resolver struct {
	store  storage.BlockStore
	events *events.Log
	now    func() time.Time
}

func NewResolver(store storage.BlockStore, log *events.Log) *Resolver {
	return NewResolverAt(store, log, time.Now)
}

func NewResolverAt(store storage.BlockStore, log *events.Log, now func() time.Time) *Resolver {
	return &Resolver{store: store, events: log, now: now}
}

// Active returns the block covering the current moment, or nil when none
// does. When several blocks overlap, declaration order wins.
func (r *Resolver) Active(ctx context.Context) (*domain.HabitBlock, error) {
	now := r.now()
	due, err := r.dueToday(ctx, now)
	if err != nil {
		return nil, err
	}

	ends := effectiveEnds(due)
	minute := now.Hour()*60 + now.Minute()

	for _, b := range due {
		if b.TimeAnchored() {
			if minute >= *b.StartMinute && minute < ends[b.ID] {
				return b, nil
			}
			continue
		}
		if b.EventKey == nil {
			continue
		}
		fired := r.events.LastFired(*b.EventKey)
		if fired == nil {
			continue
		}
		window := b.Window
		if window <= 0 {
			window = DefaultWindow
		}
		if !now.Before(*fired) && now.Before(fired.Add(window)) && sameDay(*fired, now) {
			return b, nil
		}
	}
	return nil, nil
}

// Next returns the earliest time-anchored block due today that starts after
// the current moment, or nil when the day has no more blocks.
func (r *Resolver) Next(ctx context.Context) (*domain.HabitBlock, error) {
	now := r.now()
	due, err := r.dueToday(ctx, now)
	if err != nil {
		return nil, err
	}

	minute := now.Hour()*60 + now.Minute()
	var next *domain.HabitBlock
	for _, b := range due {
		if !b.TimeAnchored() || *b.StartMinute <= minute {
			continue
		}
		if next == nil || *b.StartMinute < *next.StartMinute {
			next = b
		}
	}
	return next, nil
}

// dueToday returns today's active blocks in declaration order.
func (r *Resolver) dueToday(ctx context.Context, now time.Time) ([]*domain.HabitBlock, error) {
	all, err := r.store.ListBlocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}

	today := domain.DateOf(now)
	due := make([]*domain.HabitBlock, 0, len(all))
	for _, b := range all {
		if recurring.BlockIsDue(b, today) {
			due = append(due, b)
		}
	}
	return due, nil
}

// effectiveEnds computes where each time-anchored block ends: its own end
// minute, else the start of the next block by start time, else the default
// window past its start.
func effectiveEnds(due []*domain.HabitBlock) map[string]int {
	timed := make([]*domain.HabitBlock, 0, len(due))
	for _, b := range due {
		if b.TimeAnchored() {
			timed = append(timed, b)
		}
	}
	sort.SliceStable(timed, func(i, j int) bool {
		return *timed[i].StartMinute < *timed[j].StartMinute
	})

	ends := make(map[string]int, len(timed))
	for i, b := range timed {
		switch {
		case b.EndMinute != nil:
			ends[b.ID] = *b.EndMinute
		case i+1 < len(timed):
			ends[b.ID] = *timed[i+1].StartMinute
		default:
			ends[b.ID] = *b.StartMinute + int(DefaultWindow.Minutes())
		}
	}
	return ends
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
