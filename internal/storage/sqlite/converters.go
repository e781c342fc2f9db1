package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/graceolivia/rhythms/internal/domain"
)

// timeLayout is how timestamps are stored. RFC 3339 keeps them readable and
// lexicographically sortable.
const timeLayout = time.RFC3339Nano

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row scanner) (*domain.TaskTemplate, error) {
	var (
		tpl                              domain.TaskTemplate
		tier, kind, rec                  string
		mealSlot, careContext            sql.NullString
		childID, childTaskType, seededBy sql.NullString
		scheduledAt                      sql.NullInt64
		days, prefs                      string
		createdAt, updatedAt             string
	)

	err := row.Scan(&tpl.ID, &tpl.Title, &tier, &kind, &mealSlot, &rec, &days,
		&scheduledAt, &tpl.Category, &prefs, &careContext, &tpl.Informational,
		&childID, &childTaskType, &seededBy, &tpl.IsActive, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	tpl.Tier = domain.TaskTier(tier)
	tpl.Kind = domain.TemplateKind(kind)
	tpl.Recurrence = domain.Recurrence(rec)
	if mealSlot.Valid {
		slot := domain.MealSlot(mealSlot.String)
		tpl.Meal = &slot
	}
	if careContext.Valid {
		cc := domain.CareContext(careContext.String)
		tpl.CareContext = &cc
	}
	if childID.Valid {
		tpl.ChildID = &childID.String
	}
	if childTaskType.Valid {
		ct := domain.ChildTaskType(childTaskType.String)
		tpl.ChildTaskType = &ct
	}
	if seededBy.Valid {
		tpl.SeededByChallengeID = &seededBy.String
	}
	if scheduledAt.Valid {
		v := int(scheduledAt.Int64)
		tpl.ScheduledAt = &v
	}

	var dayInts []int
	if err := json.Unmarshal([]byte(days), &dayInts); err != nil {
		return nil, fmt.Errorf("failed to decode days_of_week: %w", err)
	}
	tpl.DaysOfWeek = intsToWeekdays(dayInts)

	if err := json.Unmarshal([]byte(prefs), &tpl.PreferredAvailability); err != nil {
		return nil, fmt.Errorf("failed to decode preferred_availability: %w", err)
	}

	if tpl.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if tpl.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func scanInstance(row scanner) (*domain.TaskInstance, error) {
	var (
		inst                   domain.TaskInstance
		date, status, created  string
		completedAt, deferredTo sql.NullString
	)

	err := row.Scan(&inst.ID, &inst.TaskID, &date, &status, &completedAt, &deferredTo, &created)
	if err != nil {
		return nil, err
	}

	inst.Status = domain.TaskStatus(status)
	if inst.Date, err = domain.ParseDate(date); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t, err := parseTime(completedAt.String)
		if err != nil {
			return nil, err
		}
		inst.CompletedAt = &t
	}
	if deferredTo.Valid {
		d, err := domain.ParseDate(deferredTo.String)
		if err != nil {
			return nil, err
		}
		inst.DeferredTo = &d
	}
	if inst.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &inst, nil
}

func scanBlock(row scanner) (*domain.HabitBlock, error) {
	var (
		b                      domain.HabitBlock
		startMinute, endMinute sql.NullInt64
		eventKey               sql.NullString
		windowMinutes          int
		items, rec, days       string
	)

	err := row.Scan(&b.ID, &b.Name, &startMinute, &endMinute, &eventKey,
		&windowMinutes, &items, &rec, &days, &b.Position, &b.IsActive)
	if err != nil {
		return nil, err
	}

	if startMinute.Valid {
		v := int(startMinute.Int64)
		b.StartMinute = &v
	}
	if endMinute.Valid {
		v := int(endMinute.Int64)
		b.EndMinute = &v
	}
	if eventKey.Valid {
		b.EventKey = &eventKey.String
	}
	b.Window = time.Duration(windowMinutes) * time.Minute
	b.Recurrence = domain.Recurrence(rec)

	if err := json.Unmarshal([]byte(items), &b.Items); err != nil {
		return nil, fmt.Errorf("failed to decode block items: %w", err)
	}

	var dayInts []int
	if err := json.Unmarshal([]byte(days), &dayInts); err != nil {
		return nil, fmt.Errorf("failed to decode days_of_week: %w", err)
	}
	b.DaysOfWeek = intsToWeekdays(dayInts)
	return &b, nil
}

func scanChallenge(row scanner) (*domain.Challenge, error) {
	var (
		c                          domain.Challenge
		kind, state, flower, planted string
		lastRecorded               sql.NullString
		seeded                     string
	)

	err := row.Scan(&c.ID, &c.Title, &kind, &c.TargetCount, &c.TotalProgress,
		&lastRecorded, &c.PlotID, &state, &seeded, &c.Sequential, &flower,
		&c.RewardIssued, &planted)
	if err != nil {
		return nil, err
	}

	c.Kind = domain.ChallengeKind(kind)
	c.State = domain.ChallengeState(state)
	c.RewardFlower = domain.FlowerType(flower)
	if lastRecorded.Valid {
		d, err := domain.ParseDate(lastRecorded.String)
		if err != nil {
			return nil, err
		}
		c.LastRecorded = &d
	}
	if err := json.Unmarshal([]byte(seeded), &c.SeededTaskIDs); err != nil {
		return nil, fmt.Errorf("failed to decode seeded_task_ids: %w", err)
	}
	if c.PlantedOn, err = domain.ParseDate(planted); err != nil {
		return nil, err
	}
	return &c, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullableDate(d *domain.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func weekdaysToInts(days []time.Weekday) []int {
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = int(d)
	}
	return out
}

func intsToWeekdays(ints []int) []time.Weekday {
	if len(ints) == 0 {
		return nil
	}
	out := make([]time.Weekday, len(ints))
	for i, v := range ints {
		out[i] = time.Weekday(v)
	}
	return out
}
