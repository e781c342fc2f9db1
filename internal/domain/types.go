package domain

// TaskTier classifies how rigid a task is within the day.
// Value object - immutable string enum.
type TaskTier string

const (
	// TierAnchor is a fixed-clock-time task (e.g. school pickup).
	TierAnchor TaskTier = "anchor"
	// TierRhythm is a recurring-but-flexible daily task.
	TierRhythm TaskTier = "rhythm"
	// TierTending is a flexible task that falls into the seed queue when missed.
	TierTending TaskTier = "tending"
)

// TaskStatus represents the state of a single task instance.
// Value object - immutable string enum.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
	StatusSkipped   TaskStatus = "skipped"
	StatusDeferred  TaskStatus = "deferred"
)

// Recurrence represents how often a template materializes an instance.
// Value object - immutable string enum.
type Recurrence string

const (
	RecurrenceDaily        Recurrence = "daily"
	RecurrenceWeekdays     Recurrence = "weekdays"
	RecurrenceWeekends     Recurrence = "weekends"
	RecurrenceWeekly       Recurrence = "weekly"
	RecurrenceMonthly      Recurrence = "monthly"
	RecurrenceSpecificDays Recurrence = "specific-days"
)

// TemplateKind discriminates the template variants.
// Every consumption site must switch exhaustively over these values.
type TemplateKind string

const (
	KindStandard TemplateKind = "standard"
	KindMeal     TemplateKind = "meal"
)

// MealSlot identifies which meal a meal-kind template covers.
type MealSlot string

const (
	MealBreakfast MealSlot = "breakfast"
	MealLunch     MealSlot = "lunch"
	MealDinner    MealSlot = "dinner"
	MealSnack     MealSlot = "snack"
)

// Availability is the derived caregiver-availability classification used to
// rank task suggestions. It is ephemeral and never persisted.
type Availability string

const (
	AvailabilityFree        Availability = "free"
	AvailabilityQuiet       Availability = "quiet"
	AvailabilityParenting   Availability = "parenting"
	AvailabilityUnavailable Availability = "unavailable"
)

// CareStatus represents where a child currently is.
type CareStatus string

const (
	CareStatusHome    CareStatus = "home"
	CareStatusAway    CareStatus = "away"
	CareStatusNapping CareStatus = "napping"
)

// ChildTaskType links a template to a child care transition. Completing the
// task applies the transition as a side effect.
type ChildTaskType string

const (
	ChildTaskDropoff ChildTaskType = "dropoff"
	ChildTaskPickup  ChildTaskType = "pickup"
	ChildTaskNaptime ChildTaskType = "naptime"
	ChildTaskWakeup  ChildTaskType = "wakeup"
)

// CareContext is the legacy suggestion field carried by templates created
// before explicit availability preferences existed. It maps to a fixed set of
// availability states via availability.LegacyStates.
type CareContext string

const (
	CareContextKidsAsleep    CareContext = "kids-asleep"
	CareContextKidsAway      CareContext = "kids-away"
	CareContextSoloParenting CareContext = "solo-parenting"
	CareContextBothCovered   CareContext = "both-covered"
	CareContextAnytime       CareContext = "anytime"
)

// ChallengeKind represents how challenge progress accumulates.
type ChallengeKind string

const (
	// ChallengeStreak accepts at most one progress increment per calendar day.
	ChallengeStreak ChallengeKind = "streak"
	// ChallengeCumulative accepts every progress increment.
	ChallengeCumulative ChallengeKind = "cumulative"
)

// ChallengeState is the lifecycle state of a planted challenge.
// bloomed and abandoned are terminal.
type ChallengeState string

const (
	ChallengeActive    ChallengeState = "active"
	ChallengeBloomed   ChallengeState = "bloomed"
	ChallengeAbandoned ChallengeState = "abandoned"
)

// GrowthStage is the visual stage derived from challenge progress.
type GrowthStage string

const (
	StageSeed    GrowthStage = "seed"
	StageSprout  GrowthStage = "sprout"
	StageBudding GrowthStage = "budding"
	StageBloom   GrowthStage = "bloom"
)

// FlowerType identifies the reward flower earned in the garden.
type FlowerType string

const (
	// FlowerDaisy marks a fully completed day. At most one per earned date.
	FlowerDaisy     FlowerType = "daisy"
	FlowerTulip     FlowerType = "tulip"
	FlowerRose      FlowerType = "rose"
	FlowerSunflower FlowerType = "sunflower"
)

// Terminal reports whether the state accepts no further transitions.
func (s ChallengeState) Terminal() bool {
	return s == ChallengeBloomed || s == ChallengeAbandoned
}
