// Package fs is the default storage backend: one JSON blob per domain store
// (tasks, blocks, challenges, garden, children), rewritten in full on every
// mutation. Each blob carries an integer schema version and is upgraded
// field-by-field on load by the migration chain in migrate.go.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/graceolivia/rhythms/internal/domain"
)

const (
	tasksFile      = "tasks.json"
	blocksFile     = "blocks.json"
	challengesFile = "challenges.json"
	gardenFile     = "garden.json"
	childrenFile   = "children.json"
)

type taskState struct {
	SchemaVersion int                             `json:"schema_version"`
	Templates     map[string]*domain.TaskTemplate `json:"templates"`
	Instances     map[string]*domain.TaskInstance `json:"instances"`
}

type blockState struct {
	SchemaVersion int                           `json:"schema_version"`
	Blocks        map[string]*domain.HabitBlock `json:"blocks"`
}

type challengeState struct {
	SchemaVersion int                          `json:"schema_version"`
	Challenges    map[string]*domain.Challenge `json:"challenges"`
}

type gardenState struct {
	SchemaVersion int                       `json:"schema_version"`
	Flowers       map[string]*domain.Flower `json:"flowers"`
}

type childState struct {
	SchemaVersion int                      `json:"schema_version"`
	Children      map[string]*domain.Child `json:"children"`
}

// Store is a filesystem-backed implementation of storage.Store.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	tasks      taskState
	blocks     blockState
	challenges challengeState
	garden     gardenState
	children   childState
}

// NewStore creates a store rooted at baseDir, loading and migrating any
// existing state files.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	s := &Store{
		baseDir:    baseDir,
		tasks:      taskState{SchemaVersion: taskSchemaVersion, Templates: map[string]*domain.TaskTemplate{}, Instances: map[string]*domain.TaskInstance{}},
		blocks:     blockState{SchemaVersion: blockSchemaVersion, Blocks: map[string]*domain.HabitBlock{}},
		challenges: challengeState{SchemaVersion: challengeSchemaVersion, Challenges: map[string]*domain.Challenge{}},
		garden:     gardenState{SchemaVersion: gardenSchemaVersion, Flowers: map[string]*domain.Flower{}},
		children:   childState{SchemaVersion: childSchemaVersion, Children: map[string]*domain.Child{}},
	}

	if err := s.loadAll(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.baseDir, name)
}

func (s *Store) loadAll() error {
	if err := s.loadFile(tasksFile, &s.tasks, migrateTaskState); err != nil {
		return err
	}
	if s.tasks.Templates == nil {
		s.tasks.Templates = map[string]*domain.TaskTemplate{}
	}
	if s.tasks.Instances == nil {
		s.tasks.Instances = map[string]*domain.TaskInstance{}
	}

	if err := s.loadFile(blocksFile, &s.blocks, nil); err != nil {
		return err
	}
	if s.blocks.Blocks == nil {
		s.blocks.Blocks = map[string]*domain.HabitBlock{}
	}

	if err := s.loadFile(challengesFile, &s.challenges, migrateChallengeState); err != nil {
		return err
	}
	if s.challenges.Challenges == nil {
		s.challenges.Challenges = map[string]*domain.Challenge{}
	}

	if err := s.loadFile(gardenFile, &s.garden, nil); err != nil {
		return err
	}
	if s.garden.Flowers == nil {
		s.garden.Flowers = map[string]*domain.Flower{}
	}

	if err := s.loadFile(childrenFile, &s.children, nil); err != nil {
		return err
	}
	if s.children.Children == nil {
		s.children.Children = map[string]*domain.Child{}
	}
	return nil
}

// loadFile reads one state blob, running it through migrate first when a
// migration chain exists. A missing file leaves the zero state in place.
func (s *Store) loadFile(name string, v any, migrate func([]byte) ([]byte, error)) error {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	if migrate != nil {
		data, err = migrate(data)
		if err != nil {
			return fmt.Errorf("failed to migrate %s: %w", name, err)
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return nil
}

// persist writes one state blob. Callers hold the write lock.
func (s *Store) persist(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(s.path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *Store) SaveTemplate(ctx context.Context, tpl *domain.TaskTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *tpl
	s.tasks.Templates[tpl.ID] = &cp
	return s.persist(tasksFile, &s.tasks)
}

func (s *Store) FindTemplate(ctx context.Context, id string) (*domain.TaskTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.tasks.Templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	cp := *tpl
	return &cp, nil
}

func (s *Store) ListTemplates(ctx context.Context) ([]*domain.TaskTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.TaskTemplate, 0, len(s.tasks.Templates))
	for _, tpl := range s.tasks.Templates {
		cp := *tpl
		out = append(out, &cp)
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
	if _, ok := s.tasks.Templates[id]; !ok {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	delete(s.tasks.Templates, id)
	for instID, inst := range s.tasks.Instances {
		if inst.TaskID == id {
			delete(s.tasks.Instances, instID)
		}
	}
	return s.persist(tasksFile, &s.tasks)
}

func (s *Store) SaveInstance(ctx context.Context, inst *domain.TaskInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *inst
	s.tasks.Instances[inst.ID] = &cp
	return s.persist(tasksFile, &s.tasks)
}

func (s *Store) FindInstance(ctx context.Context, id string) (*domain.TaskInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.tasks.Instances[id]
	if !ok {
		return nil, fmt.Errorf("instance %s: %w", id, domain.ErrNotFound)
	}
	cp := *inst
	return &cp, nil
}

func (s *Store) FindInstanceByTemplateDate(ctx context.Context, taskID string, date domain.Date) (*domain.TaskInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inst := range s.tasks.Instances {
		if inst.TaskID == taskID && inst.Date == date {
			cp := *inst
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("instance of %s on %s: %w", taskID, date, domain.ErrNotFound)
}

func (s *Store) ListInstancesByDate(ctx context.Context, date domain.Date) ([]*domain.TaskInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.TaskInstance
	for _, inst := range s.tasks.Instances {
		if inst.Date == date {
			cp := *inst
			out = append(out, &cp)
		}
	}
	sortInstances(out)
	return out, nil
}

func (s *Store) ListSeedQueue(ctx context.Context) ([]*domain.TaskInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.TaskInstance
	for _, inst := range s.tasks.Instances {
		if inst.InSeedQueue() {
			cp := *inst
			out = append(out, &cp)
		}
	}
	sortInstances(out)
	return out, nil
}

func (s *Store) SaveBlock(ctx context.Context, b *domain.HabitBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *b
	s.blocks.Blocks[b.ID] = &cp
	return s.persist(blocksFile, &s.blocks)
}

func (s *Store) FindBlock(ctx context.Context, id string) (*domain.HabitBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blocks.Blocks[id]
	if !ok {
		return nil, fmt.Errorf("block %s: %w", id, domain.ErrNotFound)
	}
	cp := *b
	return &cp, nil
}

func (s *Store) ListBlocks(ctx context.Context) ([]*domain.HabitBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.HabitBlock, 0, len(s.blocks.Blocks))
	for _, b := range s.blocks.Blocks {
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *Store) SaveChallenge(ctx context.Context, c *domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.challenges.Challenges[c.ID] = &cp
	return s.persist(challengesFile, &s.challenges)
}

func (s *Store) FindChallenge(ctx context.Context, id string) (*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.challenges.Challenges[id]
	if !ok {
		return nil, fmt.Errorf("challenge %s: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListChallenges(ctx context.Context) ([]*domain.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Challenge, 0, len(s.challenges.Challenges))
	for _, c := range s.challenges.Challenges {
		cp := *c
		out = append(out, &cp)
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
	for _, c := range s.challenges.Challenges {
		if c.PlotID != plotID || c.State.Terminal() {
			continue
		}
		if newest == nil || c.PlantedOn.After(newest.PlantedOn) {
			cp := *c
			newest = &cp
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
	cp := *f
	s.garden.Flowers[f.ID] = &cp
	return s.persist(gardenFile, &s.garden)
}

func (s *Store) ListFlowers(ctx context.Context) ([]*domain.Flower, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Flower, 0, len(s.garden.Flowers))
	for _, f := range s.garden.Flowers {
		cp := *f
		out = append(out, &cp)
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
	for _, f := range s.garden.Flowers {
		if f.EarnedOn == date && f.Type == typ {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SaveChild(ctx context.Context, c *domain.Child) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.children.Children[c.ID] = &cp
	return s.persist(childrenFile, &s.children)
}

func (s *Store) FindChild(ctx context.Context, id string) (*domain.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.children.Children[id]
	if !ok {
		return nil, fmt.Errorf("child %s: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListChildren(ctx context.Context) ([]*domain.Child, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Child, 0, len(s.children.Children))
	for _, c := range s.children.Children {
		cp := *c
		out = append(out, &cp)
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
