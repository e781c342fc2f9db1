// Package availability decides how much attention the parent has to spare
// and which tasks fit the current moment.
package availability

import (
	"context"
	"sync"
	"time"

	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/storage"
)

// LegacyStates maps an older care-context preference onto the availability
// states it stands for. Templates created before per-state preferences
// existed still carry these.
func LegacyStates(cc domain.CareContext) []domain.Availability {
	switch cc {
	case domain.CareContextKidsAsleep:
		return []domain.Availability{domain.AvailabilityQuiet}
	case domain.CareContextKidsAway:
		return []domain.Availability{domain.AvailabilityFree}
	case domain.CareContextSoloParenting:
		return []domain.Availability{domain.AvailabilityParenting}
	case domain.CareContextBothCovered:
		return []domain.Availability{domain.AvailabilityQuiet}
	case domain.CareContextAnytime:
		return []domain.Availability{
			domain.AvailabilityFree,
			domain.AvailabilityQuiet,
			domain.AvailabilityParenting,
		}
	default:
		return nil
	}
}

// IsSuggested reports whether the template fits the current availability.
// Explicit preferences win over a legacy care context. A template with
// neither is never suggested.
func IsSuggested(tpl *domain.TaskTemplate, current domain.Availability) bool {
	states := tpl.PreferredAvailability
	if len(states) == 0 && tpl.CareContext != nil {
		states = LegacyStates(*tpl.CareContext)
	}
	for _, s := range states {
		if s == current {
			return true
		}
	}
	return false
}

// Derive computes availability from where the children are. Nobody home
// means free attention, everyone home asleep means quiet, anyone home and
// awake means parenting.
func Derive(children []*domain.Child) domain.Availability {
	home := 0
	napping := 0
	for _, c := range children {
		switch c.CareStatus {
		case domain.CareStatusAway:
		case domain.CareStatusNapping:
			home++
			napping++
		default:
			home++
		}
	}
	if home == 0 {
		return domain.AvailabilityFree
	}
	if napping == home {
		return domain.AvailabilityQuiet
	}
	return domain.AvailabilityParenting
}

// Tracker resolves the current availability, preferring a same-day manual
// override and otherwise deriving it from child care status.
type Tracker struct {
	children storage.ChildStore
	now      func() time.Time

	mu         sync.Mutex
	override   *domain.Availability
	overrideOn domain.Date
}

func NewTracker(children storage.ChildStore) *Tracker {
	return NewTrackerAt(children, time.Now)
}

func NewTrackerAt(children storage.ChildStore, now func() time.Time) *Tracker {
	return &Tracker{children: children, now: now}
}

// SetOverride pins availability for the rest of today.
func (t *Tracker) SetOverride(a domain.Availability) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.override = &a
	t.overrideOn = domain.DateOf(t.now())
}

// ClearOverride returns the tracker to derived availability.
func (t *Tracker) ClearOverride() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.override = nil
}

// Current returns today's availability. Overrides from earlier days are
// discarded on first read.
func (t *Tracker) Current(ctx context.Context) (domain.Availability, error) {
	t.mu.Lock()
	if t.override != nil && t.overrideOn != domain.DateOf(t.now()) {
		t.override = nil
	}
	if t.override != nil {
		a := *t.override
		t.mu.Unlock()
		return a, nil
	}
	t.mu.Unlock()

	children, err := t.children.ListChildren(ctx)
	if err != nil {
		return "", err
	}
	return Derive(children), nil
}
