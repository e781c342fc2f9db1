// Package memory is an in-memory storage backend. It backs the engine's unit
// tests and the storage compliance suite; nothing survives the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/graceolivia/rhythms/internal/domain"
)

// Store keeps every aggregate in maps keyed by ID. Values are copied on the
// way in and out so callers never alias stored state.
type Store struct {
	mu sync.RWMutex

	templates  map[string]domain.TaskTemplate
	instances  map[string]domain.TaskInstance
	blocks     map[string]domain.HabitBlock
	challenges map[string]domain.Challenge
	flowers    map[string]domain.Flower
	children   map[string]domain.Child
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		templates:  make(map[string]domain.TaskTemplate),
		instances:  make(map[string]domain.TaskInstance),
		blocks:     make(map[string]domain.HabitBlock),
		challenges: make(map[string]domain.Challenge),
		flowers:    make(map[string]domain.Flower),
		children:   make(map[string]domain.Child),
	}
}

func (s *Store) SaveTemplate(ctx context.Context, tpl *domain.TaskTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[tpl.ID] = *tpl
	return nil
}

func (s *Store) FindTemplate(ctx context.Context, id string) (*domain.TaskTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return &tpl, nil
}

func (s *Store) ListTemplates(ctx context.Context) ([]*domain.TaskTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.TaskTemplate, 0, len(s.templates))
	for id := range s.templates {
		tpl := s.templates[id]
		out = append(out, &tpl)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	delete(s.templates, id)
	for instID, inst := range s.instances {
		if inst.TaskID == id {
			delete(s.instances, instID)
		}
	}
	return nil
}

func (s *Store) SaveInstance(ctx context.Context, inst *domain.TaskInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[inst.ID] = *inst
	return nil
}

func (s *Store) FindInstance(ctx context.Context, id string) (*domain.TaskInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[id]
	if !ok {
		return nil, fmt.Errorf("instance %s: %w", id, domain.ErrNotFound)
	}
	return &inst, nil
}

func (s *Store) FindInstanceByTemplateDate(ctx context.Context, taskID string, date domain.Date) (*domain.TaskInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := range s.instances {
		inst := s.instances[id]
		if inst.TaskID == taskID && inst.Date == date {
			return &inst, nil
		}
	}
	return nil, fmt.Errorf("instance of %s on %s: %w", taskID, date, domain.ErrNotFound)
}

func (s *Store) ListInstancesByDate(ctx context.Context, date domain.Date) ([]*domain.TaskInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.TaskInstance
	for id := range s.instances {
		inst := s.instances[id]
		if inst.Date == date {
			out = append(out, &inst)
		}
	}
	sortInstances(out)
	return out, nil
}

func (s *Store) ListSeedQueue(ctx context.Context) ([]*domain.TaskInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.TaskInstance
	for id := range s.instances {
		inst := s.instances[id]
		if inst.InSeedQueue() {
			out = append(out, &inst)
		}
	}
	sortInstances(out)
	return out, nil
}

func (s *Store) SaveBlock(ctx context.Context, b *domain.HabitBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[b.ID] = *b
	return nil
}

func (s *Store) FindBlock(ctx context.Context, id string) (*domain.HabitBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks[id]
	if !ok {
		return nil, fmt.Errorf("block %s: %w", id, domain.ErrNotFound)
	}
	return &b, nil
}

func (s *Store) ListBlocks(ctx context.Context) ([]*domain.HabitBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.HabitBlock, 0, len(s.blocks))
	for id := range s.blocks {
		b := s.blocks[id]
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *Store) SaveChallenge(ctx context.Context, c *domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.challenges[c.ID] = *c
	return nil
}

func (s *Store) FindChallenge(ctx context.Context, id string) (*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.challenges[id]
	if !ok {
		return nil, fmt.Errorf("challenge %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (s *Store) ListChallenges(ctx context.Context) ([]*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Challenge, 0, len(s.challenges))
	for id := range s.challenges {
		c := s.challenges[id]
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PlantedOn != out[j].PlantedOn {
			return out[i].PlantedOn.Before(out[j].PlantedOn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) FindChallengeByPlot(ctx context.Context, plotID string) (*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var newest *domain.Challenge
	for id := range s.challenges {
		c := s.challenges[id]
		if c.PlotID != plotID || c.State.Terminal() {
			continue
		}
		if newest == nil || c.PlantedOn.After(newest.PlantedOn) {
			newest = &c
		}
	}
	if newest == nil {
		return nil, fmt.Errorf("plot %s: %w", plotID, domain.ErrNotFound)
	}
	return newest, nil
}

func (s *Store) AddFlower(ctx context.Context, f *domain.Flower) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flowers[f.ID] = *f
	return nil
}

func (s *Store) ListFlowers(ctx context.Context) ([]*domain.Flower, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Flower, 0, len(s.flowers))
	for id := range s.flowers {
		f := s.flowers[id]
		out = append(out, &f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EarnedOn != out[j].EarnedOn {
			return out[i].EarnedOn.Before(out[j].EarnedOn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) HasFlowerOn(ctx context.Context, date domain.Date, typ domain.FlowerType) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.flowers {
		if f.EarnedOn == date && f.Type == typ {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SaveChild(ctx context.Context, c *domain.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.children[c.ID] = *c
	return nil
}

func (s *Store) FindChild(ctx context.Context, id string) (*domain.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.children[id]
	if !ok {
		return nil, fmt.Errorf("child %s: %w", id, domain.ErrNotFound)
	}
	return &c, nil
}

func (s *Store) ListChildren(ctx context.Context) ([]*domain.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Child, 0, len(s.children))
	for id := range s.children {
		c := s.children[id]
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func sortInstances(insts []*domain.TaskInstance) {
	sort.Slice(insts, func(i, j int) bool {
		if !insts[i].CreatedAt.Equal(insts[j].CreatedAt) {
			return insts[i].CreatedAt.Before(insts[j].CreatedAt)
		}
		return insts[i].ID < insts[j].ID
	})
}
