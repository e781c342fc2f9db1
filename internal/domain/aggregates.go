package domain

import "time"

// TaskTemplate is the aggregate root a recurring task is defined by.
//
// Templates never carry completion state. The schedule generator materializes
// one TaskInstance per due date; all status changes happen on instances.
// Templates are soft-disabled via IsActive rather than deleted in most flows;
// a hard delete cascades to instances.
type TaskTemplate struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Tier  TaskTier `json:"tier"`

	// Kind discriminates the template variant. Meal is set exactly when
	// Kind == KindMeal.
	Kind TemplateKind `json:"kind"`
	Meal *MealSlot    `json:"meal,omitempty"`

	// Recurrence is ignored whenever DaysOfWeek is non-empty: an explicit
	// weekday set overrides the named rule entirely.
	Recurrence Recurrence     `json:"recurrence"`
	DaysOfWeek []time.Weekday `json:"days_of_week,omitempty"`

	// ScheduledAt is the minute of day the task is anchored to, when any.
	ScheduledAt *int   `json:"scheduled_at,omitempty"`
	Category    string `json:"category,omitempty"`

	// PreferredAvailability lists the availability states the task suits.
	// When empty, the legacy CareContext (if set) decides suggestion.
	PreferredAvailability []Availability `json:"preferred_availability,omitempty"`
	CareContext           *CareContext   `json:"care_context,omitempty"`

	// Informational marks time markers that cannot be completed.
	Informational bool `json:"informational,omitempty"`

	// Optional care link: completing the task transitions the child's
	// care status according to ChildTaskType.
	ChildID       *string        `json:"child_id,omitempty"`
	ChildTaskType *ChildTaskType `json:"child_task_type,omitempty"`

	// SeededByChallengeID is set on templates a challenge created.
	SeededByChallengeID *string `json:"seeded_by_challenge_id,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskInstance is one concrete occurrence of a template on one calendar date.
//
// Invariant: at most one instance per (TaskID, Date) is ever produced by
// generation. User actions (promoting a seed onto a date that already has an
// instance) may relax this; generation itself never does.
type TaskInstance struct {
	ID     string     `json:"id"`
	TaskID string     `json:"task_id"`
	Date   Date       `json:"date"`
	Status TaskStatus `json:"status"`

	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// DeferredTo is the date a deferred instance was pushed to. nil while
	// Status == deferred means the instance sits in the undated seed queue.
	DeferredTo *Date `json:"deferred_to,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// InSeedQueue reports whether the instance is a deferred, undated seed.
func (i *TaskInstance) InSeedQueue() bool {
	return i.Status == StatusDeferred && i.DeferredTo == nil
}

// BlockItem is one entry of a habit block: either a task reference or a
// placeholder slot filled from the chore queue at render time.
type BlockItem struct {
	TaskID    *string `json:"task_id,omitempty"`
	ChoreSlot bool    `json:"chore_slot,omitempty"`
}

// HabitBlock is a named group of task references anchored to a time of day or
// to a named event.
//
// Exactly one of StartMinute and EventKey is set. Time-anchored blocks open at
// StartMinute and close at EndMinute when declared, else at the next block's
// start, else after the default window. Event-anchored blocks open when their
// event fires and close after Window.
type HabitBlock struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	StartMinute *int    `json:"start_minute,omitempty"`
	EndMinute   *int    `json:"end_minute,omitempty"`
	EventKey    *string `json:"event_key,omitempty"`

	// Window is the fallback open duration. Zero means the default (90m).
	Window time.Duration `json:"window,omitempty"`

	Items []BlockItem `json:"items,omitempty"`

	Recurrence Recurrence     `json:"recurrence"`
	DaysOfWeek []time.Weekday `json:"days_of_week,omitempty"`

	// Position is the declaration order. Overlapping active windows resolve
	// by ascending Position, first match wins.
	Position int  `json:"position"`
	IsActive bool `json:"is_active"`
}

// TimeAnchored reports whether the block opens at a fixed minute of day.
func (b *HabitBlock) TimeAnchored() bool {
	return b.StartMinute != nil
}

// Challenge is a gamified streak or cumulative goal planted on a garden plot.
type Challenge struct {
	ID    string        `json:"id"`
	Title string        `json:"title"`
	Kind  ChallengeKind `json:"kind"`

	TargetCount   int `json:"target_count"`
	TotalProgress int `json:"total_progress"`

	// LastRecorded guards streak challenges against double counting within
	// one calendar day.
	LastRecorded *Date `json:"last_recorded,omitempty"`

	PlotID string         `json:"plot_id"`
	State  ChallengeState `json:"state"`

	// SeededTaskIDs are templates this challenge created. They are
	// deactivated when the challenge leaves the active state.
	SeededTaskIDs []string `json:"seeded_task_ids,omitempty"`

	// Sequential keeps only one seeded template active at a time; completing
	// it activates the next.
	Sequential bool `json:"sequential,omitempty"`

	RewardFlower FlowerType `json:"reward_flower"`
	RewardIssued bool       `json:"reward_issued"`

	PlantedOn Date `json:"planted_on"`
}

// Stage returns the growth stage derived from progress toward the target.
func (c *Challenge) Stage() GrowthStage {
	return StageFor(c.TotalProgress, c.TargetCount)
}

// StageFor derives a growth stage from a progress/target pair.
// Boundaries: <25% seed, <60% sprout, <100% budding, otherwise bloom.
func StageFor(progress, target int) GrowthStage {
	if target <= 0 {
		return StageBloom
	}
	ratio := float64(progress) / float64(target)
	switch {
	case ratio < 0.25:
		return StageSeed
	case ratio < 0.60:
		return StageSprout
	case ratio < 1.0:
		return StageBudding
	default:
		return StageBloom
	}
}

// Flower is a reward record in the garden.
type Flower struct {
	ID          string     `json:"id"`
	Type        FlowerType `json:"type"`
	EarnedOn    Date       `json:"earned_on"`
	ChallengeID *string    `json:"challenge_id,omitempty"`
}

// Child is a cared-for household member whose status drives availability.
type Child struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CareStatus CareStatus `json:"care_status"`
}
