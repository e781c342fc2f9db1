package domain

import (
	"fmt"
	"strings"
)

// Title is a validated title value object (1-255 characters).
type Title struct {
	value string
}

// NewTitle creates a new Title, validating the input.
func NewTitle(s string) (Title, error) {
	s = strings.TrimSpace(s)

	if s == "" {
		return Title{}, ErrTitleRequired
	}

	if len(s) > 255 {
		return Title{}, ErrTitleTooLong
	}

	return Title{value: s}, nil
}

// String returns the title value.
func (t Title) String() string {
	return t.value
}

// NewTaskTier validates and creates a TaskTier.
func NewTaskTier(s string) (TaskTier, error) {
	tier := TaskTier(strings.ToLower(s))

	switch tier {
	case TierAnchor, TierRhythm, TierTending:
		return tier, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTaskTier, s)
	}
}

// NewTaskStatus validates and creates a TaskStatus.
func NewTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(strings.ToLower(s))

	switch status {
	case StatusPending, StatusCompleted, StatusSkipped, StatusDeferred:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTaskStatus, s)
	}
}

// NewRecurrence validates and creates a Recurrence.
func NewRecurrence(s string) (Recurrence, error) {
	r := Recurrence(strings.ToLower(s))

	switch r {
	case RecurrenceDaily, RecurrenceWeekdays, RecurrenceWeekends,
		RecurrenceWeekly, RecurrenceMonthly, RecurrenceSpecificDays:
		return r, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidRecurrence, s)
	}
}

// NewTemplateKind validates and creates a TemplateKind.
// Empty input defaults to the standard kind.
func NewTemplateKind(s string) (TemplateKind, error) {
	if s == "" {
		return KindStandard, nil
	}

	kind := TemplateKind(strings.ToLower(s))

	switch kind {
	case KindStandard, KindMeal:
		return kind, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidTemplateKind, s)
	}
}

// NewMealSlot validates and creates a MealSlot.
func NewMealSlot(s string) (MealSlot, error) {
	slot := MealSlot(strings.ToLower(s))

	switch slot {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return slot, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidMealSlot, s)
	}
}

// NewAvailability validates and creates an Availability.
func NewAvailability(s string) (Availability, error) {
	a := Availability(strings.ToLower(s))

	switch a {
	case AvailabilityFree, AvailabilityQuiet, AvailabilityParenting, AvailabilityUnavailable:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidAvailability, s)
	}
}

// NewCareStatus validates and creates a CareStatus.
func NewCareStatus(s string) (CareStatus, error) {
	cs := CareStatus(strings.ToLower(s))

	switch cs {
	case CareStatusHome, CareStatusAway, CareStatusNapping:
		return cs, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidCareStatus, s)
	}
}

// NewChildTaskType validates and creates a ChildTaskType.
func NewChildTaskType(s string) (ChildTaskType, error) {
	ct := ChildTaskType(strings.ToLower(s))

	switch ct {
	case ChildTaskDropoff, ChildTaskPickup, ChildTaskNaptime, ChildTaskWakeup:
		return ct, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidChildTaskType, s)
	}
}

// NewCareContext validates and creates a CareContext.
func NewCareContext(s string) (CareContext, error) {
	cc := CareContext(strings.ToLower(s))

	switch cc {
	case CareContextKidsAsleep, CareContextKidsAway, CareContextSoloParenting,
		CareContextBothCovered, CareContextAnytime:
		return cc, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidCareContext, s)
	}
}

// NewChallengeKind validates and creates a ChallengeKind.
func NewChallengeKind(s string) (ChallengeKind, error) {
	k := ChallengeKind(strings.ToLower(s))

	switch k {
	case ChallengeStreak, ChallengeCumulative:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidChallengeKind, s)
	}
}

// NewFlowerType validates and creates a FlowerType.
func NewFlowerType(s string) (FlowerType, error) {
	f := FlowerType(strings.ToLower(s))

	switch f {
	case FlowerDaisy, FlowerTulip, FlowerRose, FlowerSunflower:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidFlowerType, s)
	}
}
