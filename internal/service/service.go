// Package service is the engine facade: status transitions with their side
// effects, day generation, and the read views the CLI renders.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/graceolivia/rhythms/internal/availability"
	"github.com/graceolivia/rhythms/internal/blocks"
	"github.com/graceolivia/rhythms/internal/domain"
	"github.com/graceolivia/rhythms/internal/events"
	"github.com/graceolivia/rhythms/internal/garden"
	"github.com/graceolivia/rhythms/internal/recurring"
	"github.com/graceolivia/rhythms/internal/schedule"
	"github.com/graceolivia/rhythms/internal/storage"
)

// TaskCompletedEventPrefix keys the event a completion fires, suffixed with
// the template ID. Event-anchored habit blocks listen on these.
const TaskCompletedEventPrefix = "task-complete:"

// Service wires the engine components over one store.
type Service struct {
	store     storage.Store
	events    *events.Log
	garden    *garden.Tracker
	avail     *availability.Tracker
	blocks    *blocks.Resolver
	generator *schedule.Generator
	now       func() time.Time

	generated metric.Int64Counter
	expired   metric.Int64Counter
	bloomed   metric.Int64Counter
}

// New builds a Service over the store with the wall clock.
func New(store storage.Store) (*Service, error) {
	return NewAt(store, time.Now)
}

// NewAt builds a Service with an injected clock.
func NewAt(store storage.Store, now func() time.Time) (*Service, error) {
	meter := otel.Meter("rhythms")

	generated, err := meter.Int64Counter("rhythms.instances.generated",
		metric.WithDescription("Task instances created by the daily generation pass"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	expired, err := meter.Int64Counter("rhythms.seeds.expired",
		metric.WithDescription("Seed-queue instances aged out"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}
	bloomed, err := meter.Int64Counter("rhythms.challenges.bloomed",
		metric.WithDescription("Challenges that reached their target"))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	log := events.NewLogAt(now)
	return &Service{
		store:     store,
		events:    log,
		garden:    garden.NewTrackerAt(store, store, store, now),
		avail:     availability.NewTrackerAt(store, now),
		blocks:    blocks.NewResolverAt(store, log, now),
		generator: schedule.NewGeneratorAt(store, now),
		now:       now,

		generated: generated,
		expired:   expired,
		bloomed:   bloomed,
	}, nil
}

// Garden exposes the challenge tracker for planting and progress commands.
func (s *Service) Garden() *garden.Tracker { return s.garden }

// Availability exposes the availability tracker for overrides.
func (s *Service) Availability() *availability.Tracker { return s.avail }

// Blocks exposes the habit block resolver.
func (s *Service) Blocks() *blocks.Resolver { return s.blocks }

// Events exposes the in-memory event log.
func (s *Service) Events() *events.Log { return s.events }

func (s *Service) today() domain.Date { return domain.DateOf(s.now()) }

// Generate runs the daily pass for today and records the counters.
func (s *Service) Generate(ctx context.Context) (schedule.Result, error) {
	res, err := s.generator.Generate(ctx, s.today())
	if err != nil {
		return res, err
	}

	s.generated.Add(ctx, int64(res.Created))
	s.expired.Add(ctx, int64(res.Expired))
	slog.InfoContext(ctx, "generated day",
		"date", s.today().String(),
		"created", res.Created,
		"deferred", res.Deferred,
		"expired", res.Expired)
	return res, nil
}

// CompleteTask moves a pending instance to completed and runs the side
// effects: child care updates, the completion event, challenge progress,
// and the end-of-day daisy.
func (s *Service) CompleteTask(ctx context.Context, instanceID string) error {
	inst, err := s.store.FindInstance(ctx, instanceID)
	if err != nil {
		return err
	}
	tpl, err := s.store.FindTemplate(ctx, inst.TaskID)
	if err != nil {
		return err
	}
	if tpl.Informational {
		return fmt.Errorf("%w: %s", domain.ErrInformationalTask, tpl.Title)
	}
	if inst.Status != domain.StatusPending {
		return fmt.Errorf("%w: cannot complete %s instance", domain.ErrInvalidTransition, inst.Status)
	}

	now := s.now()
	inst.Status = domain.StatusCompleted
	inst.CompletedAt = &now
	if err := s.store.SaveInstance(ctx, inst); err != nil {
		return fmt.Errorf("failed to save instance: %w", err)
	}

	if err := s.applyChildCare(ctx, tpl); err != nil {
		return err
	}

	s.events.Emit(TaskCompletedEventPrefix + tpl.ID)

	res, err := s.garden.HandleTaskCompleted(ctx, tpl, inst.Date)
	if err != nil {
		return err
	}
	if res == garden.ProgressBloomed {
		s.bloomed.Add(ctx, 1)
		slog.InfoContext(ctx, "challenge bloomed", "template_id", tpl.ID)
	}

	return s.maybeAwardDailyBloom(ctx, inst.Date)
}

// applyChildCare updates the linked child's care status for care tasks.
func (s *Service) applyChildCare(ctx context.Context, tpl *domain.TaskTemplate) error {
	if tpl.ChildID == nil || tpl.ChildTaskType == nil {
		return nil
	}

	var status domain.CareStatus
	switch *tpl.ChildTaskType {
	case domain.ChildTaskDropoff:
		status = domain.CareStatusAway
	case domain.ChildTaskPickup:
		status = domain.CareStatusHome
	case domain.ChildTaskNaptime:
		status = domain.CareStatusNapping
	case domain.ChildTaskWakeup:
		status = domain.CareStatusHome
	default:
		return nil
	}

	child, err := s.store.FindChild(ctx, *tpl.ChildID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.WarnContext(ctx, "care task references unknown child",
				"template_id", tpl.ID, "child_id", *tpl.ChildID)
			return nil
		}
		return err
	}
	child.CareStatus = status
	if err := s.store.SaveChild(ctx, child); err != nil {
		return fmt.Errorf("failed to update child care status: %w", err)
	}
	return nil
}

// maybeAwardDailyBloom grants the daisy when nothing on the date is left
// pending and at least one task was completed.
func (s *Service) maybeAwardDailyBloom(ctx context.Context, date domain.Date) error {
	instances, err := s.store.ListInstancesByDate(ctx, date)
	if err != nil {
		return err
	}
	completed := 0
	for _, inst := range instances {
		switch inst.Status {
		case domain.StatusPending:
			return nil
		case domain.StatusCompleted:
			completed++
		}
	}
	if completed == 0 {
		return nil
	}

	awarded, err := s.garden.AwardDailyBloom(ctx, date)
	if err != nil {
		return err
	}
	if awarded {
		slog.InfoContext(ctx, "daily bloom awarded", "date", date.String())
	}
	return nil
}

// SkipTask marks a pending instance skipped.
func (s *Service) SkipTask(ctx context.Context, instanceID string) error {
	return s.transition(ctx, instanceID, domain.StatusPending, func(inst *domain.TaskInstance) {
		inst.Status = domain.StatusSkipped
	})
}

// DeferTask moves a pending instance out of the day. With a target date the
// instance re-surfaces there; without one it joins the undated seed queue.
func (s *Service) DeferTask(ctx context.Context, instanceID string, target *domain.Date) error {
	return s.transition(ctx, instanceID, domain.StatusPending, func(inst *domain.TaskInstance) {
		inst.Status = domain.StatusDeferred
		inst.DeferredTo = target
		if target != nil {
			inst.Date = *target
		}
	})
}

// ResetTask returns a non-pending instance to pending.
func (s *Service) ResetTask(ctx context.Context, instanceID string) error {
	inst, err := s.store.FindInstance(ctx, instanceID)
	if err != nil {
		return err
	}
	if inst.Status == domain.StatusPending {
		return fmt.Errorf("%w: instance already pending", domain.ErrInvalidTransition)
	}
	inst.Status = domain.StatusPending
	inst.CompletedAt = nil
	inst.DeferredTo = nil
	return s.store.SaveInstance(ctx, inst)
}

// PromoteToToday pulls a deferred instance onto today's list as pending.
func (s *Service) PromoteToToday(ctx context.Context, instanceID string) error {
	today := s.today()
	return s.transition(ctx, instanceID, domain.StatusDeferred, func(inst *domain.TaskInstance) {
		inst.Status = domain.StatusPending
		inst.DeferredTo = nil
		inst.Date = today
	})
}

// DismissSeed drops a deferred instance for good.
func (s *Service) DismissSeed(ctx context.Context, instanceID string) error {
	return s.transition(ctx, instanceID, domain.StatusDeferred, func(inst *domain.TaskInstance) {
		inst.Status = domain.StatusSkipped
	})
}

func (s *Service) transition(ctx context.Context, instanceID string, from domain.TaskStatus, apply func(*domain.TaskInstance)) error {
	inst, err := s.store.FindInstance(ctx, instanceID)
	if err != nil {
		return err
	}
	if inst.Status != from {
		return fmt.Errorf("%w: expected %s, found %s", domain.ErrInvalidTransition, from, inst.Status)
	}
	apply(inst)
	return s.store.SaveInstance(ctx, inst)
}

// TaskView pairs an instance with its template and whether it fits the
// current availability.
type TaskView struct {
	Instance  *domain.TaskInstance
	Template  *domain.TaskTemplate
	Suggested bool
}

// DueTasks returns today's instances with suggestion flags, in template
// creation order.
func (s *Service) DueTasks(ctx context.Context) ([]TaskView, error) {
	instances, err := s.store.ListInstancesByDate(ctx, s.today())
	if err != nil {
		return nil, err
	}

	current, err := s.avail.Current(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]TaskView, 0, len(instances))
	for _, inst := range instances {
		tpl, err := s.store.FindTemplate(ctx, inst.TaskID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		views = append(views, TaskView{
			Instance:  inst,
			Template:  tpl,
			Suggested: availability.IsSuggested(tpl, current),
		})
	}
	return views, nil
}

// SeedQueue returns the undated deferred instances with their templates.
func (s *Service) SeedQueue(ctx context.Context) ([]TaskView, error) {
	seeds, err := s.store.ListSeedQueue(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]TaskView, 0, len(seeds))
	for _, inst := range seeds {
		tpl, err := s.store.FindTemplate(ctx, inst.TaskID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		views = append(views, TaskView{Instance: inst, Template: tpl})
	}
	return views, nil
}

// UpcomingEntry is one template's next occurrence.
type UpcomingEntry struct {
	Template *domain.TaskTemplate
	Due      domain.Date
}

// Upcoming lists active templates due within the horizon, soonest first.
func (s *Service) Upcoming(ctx context.Context, days int) ([]UpcomingEntry, error) {
	templates, err := s.store.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}

	today := s.today()
	horizon := today.AddDays(days)
	var entries []UpcomingEntry
	for _, tpl := range templates {
		next := recurring.NextDue(tpl, today)
		if next == nil || next.After(horizon) {
			continue
		}
		entries = append(entries, UpcomingEntry{Template: tpl, Due: *next})
	}

	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].Due.Before(entries[j-1].Due); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	return entries, nil
}

// TemplateParams is the user-facing surface for creating a task template.
type TemplateParams struct {
	Title                 string
	Tier                  string
	Kind                  string
	Meal                  string
	Recurrence            string
	DaysOfWeek            []time.Weekday
	ScheduledAt           *int
	Category              string
	PreferredAvailability []string
	CareContext           string
	Informational         bool
	ChildID               string
	ChildTaskType         string
}

// CreateTemplate validates params and persists a new active template.
func (s *Service) CreateTemplate(ctx context.Context, p TemplateParams) (*domain.TaskTemplate, error) {
	title, err := domain.NewTitle(p.Title)
	if err != nil {
		return nil, err
	}
	tier, err := domain.NewTaskTier(p.Tier)
	if err != nil {
		return nil, err
	}
	kind, err := domain.NewTemplateKind(p.Kind)
	if err != nil {
		return nil, err
	}
	rec, err := domain.NewRecurrence(p.Recurrence)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate template id: %w", err)
	}
	now := s.now()
	tpl := &domain.TaskTemplate{
		ID:            id.String(),
		Title:         title.String(),
		Tier:          tier,
		Kind:          kind,
		Recurrence:    rec,
		DaysOfWeek:    p.DaysOfWeek,
		ScheduledAt:   p.ScheduledAt,
		Category:      p.Category,
		Informational: p.Informational,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if kind == domain.KindMeal {
		slot, err := domain.NewMealSlot(p.Meal)
		if err != nil {
			return nil, err
		}
		tpl.Meal = &slot
	}
	for _, a := range p.PreferredAvailability {
		av, err := domain.NewAvailability(a)
		if err != nil {
			return nil, err
		}
		tpl.PreferredAvailability = append(tpl.PreferredAvailability, av)
	}
	if p.CareContext != "" {
		cc, err := domain.NewCareContext(p.CareContext)
		if err != nil {
			return nil, err
		}
		tpl.CareContext = &cc
	}
	if p.ChildID != "" {
		ct, err := domain.NewChildTaskType(p.ChildTaskType)
		if err != nil {
			return nil, err
		}
		childID := p.ChildID
		tpl.ChildID = &childID
		tpl.ChildTaskType = &ct
	}

	if err := s.store.SaveTemplate(ctx, tpl); err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}
	return tpl, nil
}

// CreateChild registers a child, starting at home.
func (s *Service) CreateChild(ctx context.Context, name string) (*domain.Child, error) {
	title, err := domain.NewTitle(name)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate child id: %w", err)
	}
	child := &domain.Child{ID: id.String(), Name: title.String(), CareStatus: domain.CareStatusHome}
	if err := s.store.SaveChild(ctx, child); err != nil {
		return nil, fmt.Errorf("failed to save child: %w", err)
	}
	return child, nil
}

// BlockParams is the user-facing surface for creating a habit block.
type BlockParams struct {
	Name          string
	StartMinute   *int
	EndMinute     *int
	EventKey      string
	WindowMinutes int
	TaskIDs       []string
	ChoreSlots    int
	Recurrence    string
	DaysOfWeek    []time.Weekday
	Position      int
}

// CreateBlock validates params and persists a new active habit block.
func (s *Service) CreateBlock(ctx context.Context, p BlockParams) (*domain.HabitBlock, error) {
	name, err := domain.NewTitle(p.Name)
	if err != nil {
		return nil, err
	}
	rec, err := domain.NewRecurrence(p.Recurrence)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate block id: %w", err)
	}
	b := &domain.HabitBlock{
		ID:          id.String(),
		Name:        name.String(),
		StartMinute: p.StartMinute,
		EndMinute:   p.EndMinute,
		Window:      time.Duration(p.WindowMinutes) * time.Minute,
		Recurrence:  rec,
		DaysOfWeek:  p.DaysOfWeek,
		Position:    p.Position,
		IsActive:    true,
	}
	if p.EventKey != "" {
		key := p.EventKey
		b.EventKey = &key
	}
	for _, taskID := range p.TaskIDs {
		tid := taskID
		b.Items = append(b.Items, domain.BlockItem{TaskID: &tid})
	}
	for i := 0; i < p.ChoreSlots; i++ {
		b.Items = append(b.Items, domain.BlockItem{ChoreSlot: true})
	}

	if err := s.store.SaveBlock(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save block: %w", err)
	}
	return b, nil
}

// Templates lists every template.
func (s *Service) Templates(ctx context.Context) ([]*domain.TaskTemplate, error) {
	return s.store.ListTemplates(ctx)
}

// Children lists every child.
func (s *Service) Children(ctx context.Context) ([]*domain.Child, error) {
	return s.store.ListChildren(ctx)
}

// HabitBlocks lists every habit block in declaration order.
func (s *Service) HabitBlocks(ctx context.Context) ([]*domain.HabitBlock, error) {
	return s.store.ListBlocks(ctx)
}

// Challenges lists every challenge.
func (s *Service) Challenges(ctx context.Context) ([]*domain.Challenge, error) {
	return s.store.ListChallenges(ctx)
}

// Flowers lists the garden.
func (s *Service) Flowers(ctx context.Context) ([]*domain.Flower, error) {
	return s.store.ListFlowers(ctx)
}
