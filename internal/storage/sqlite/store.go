package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/graceolivia/rhythms/internal/domain"
)

// Store implements storage.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const templateColumns = `id, title, tier, kind, meal_slot, recurrence, days_of_week,
	scheduled_at, category, preferred_availability, care_context, informational,
	child_id, child_task_type, seeded_by_challenge_id, is_active, created_at, updated_at`

func (s *Store) SaveTemplate(ctx context.Context, tpl *domain.TaskTemplate) error {
	days, err := json.Marshal(weekdaysToInts(tpl.DaysOfWeek))
	if err != nil {
		return fmt.Errorf("failed to encode days_of_week: %w", err)
	}
	prefs, err := json.Marshal(tpl.PreferredAvailability)
	if err != nil {
		return fmt.Errorf("failed to encode preferred_availability: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO task_templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			tier = excluded.tier,
			kind = excluded.kind,
			meal_slot = excluded.meal_slot,
			recurrence = excluded.recurrence,
			days_of_week = excluded.days_of_week,
			scheduled_at = excluded.scheduled_at,
			category = excluded.category,
			preferred_availability = excluded.preferred_availability,
			care_context = excluded.care_context,
			informational = excluded.informational,
			child_id = excluded.child_id,
			child_task_type = excluded.child_task_type,
			seeded_by_challenge_id = excluded.seeded_by_challenge_id,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		tpl.ID, tpl.Title, string(tpl.Tier), string(tpl.Kind),
		nullableString((*string)(tpl.Meal)), string(tpl.Recurrence), string(days),
		nullableInt(tpl.ScheduledAt), tpl.Category, string(prefs),
		nullableString((*string)(tpl.CareContext)), tpl.Informational,
		nullableString(tpl.ChildID), nullableString((*string)(tpl.ChildTaskType)),
		nullableString(tpl.SeededByChallengeID), tpl.IsActive,
		formatTime(tpl.CreatedAt), formatTime(tpl.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

func (s *Store) FindTemplate(ctx context.Context, id string) (*domain.TaskTemplate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM task_templates WHERE id = ?`, id)
	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	return tpl, err
}

func (s *Store) ListTemplates(ctx context.Context) ([]*domain.TaskTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+templateColumns+` FROM task_templates ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	defer rows.Close()

	var out []*domain.TaskTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM task_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("template %s: %w", id, domain.ErrNotFound)
	}
	// Instances go with the template via ON DELETE CASCADE.
	return nil
}

const instanceColumns = `id, task_id, date, status, completed_at, deferred_to, created_at`

func (s *Store) SaveInstance(ctx context.Context, inst *domain.TaskInstance) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_instances (`+instanceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			status = excluded.status,
			completed_at = excluded.completed_at,
			deferred_to = excluded.deferred_to`,
		inst.ID, inst.TaskID, inst.Date.String(), string(inst.Status),
		nullableTime(inst.CompletedAt), nullableDate(inst.DeferredTo),
		formatTime(inst.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save instance: %w", err)
	}
	return nil
}

func (s *Store) FindInstance(ctx context.Context, id string) (*domain.TaskInstance, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+instanceColumns+` FROM task_instances WHERE id = ?`, id)
	inst, err := scanInstance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("instance %s: %w", id, domain.ErrNotFound)
	}
	return inst, err
}

func (s *Store) FindInstanceByTemplateDate(ctx context.Context, taskID string, date domain.Date) (*domain.TaskInstance, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+instanceColumns+` FROM task_instances WHERE task_id = ? AND date = ? ORDER BY created_at LIMIT 1`,
		taskID, date.String())
	inst, err := scanInstance(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("instance of %s on %s: %w", taskID, date, domain.ErrNotFound)
	}
	return inst, err
}

func (s *Store) ListInstancesByDate(ctx context.Context, date domain.Date) ([]*domain.TaskInstance, error) {
	return s.listInstances(ctx,
		`SELECT `+instanceColumns+` FROM task_instances WHERE date = ? ORDER BY created_at, id`,
		date.String())
}

func (s *Store) ListSeedQueue(ctx context.Context) ([]*domain.TaskInstance, error) {
	return s.listInstances(ctx,
		`SELECT `+instanceColumns+` FROM task_instances
		 WHERE status = 'deferred' AND deferred_to IS NULL
		 ORDER BY created_at, id`)
}

func (s *Store) listInstances(ctx context.Context, query string, args ...any) ([]*domain.TaskInstance, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list instances: %w", err)
	}
	defer rows.Close()

	var out []*domain.TaskInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

const blockColumns = `id, name, start_minute, end_minute, event_key, window_minutes,
	items, recurrence, days_of_week, position, is_active`

func (s *Store) SaveBlock(ctx context.Context, b *domain.HabitBlock) error {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("failed to encode block items: %w", err)
	}
	days, err := json.Marshal(weekdaysToInts(b.DaysOfWeek))
	if err != nil {
		return fmt.Errorf("failed to encode days_of_week: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO habit_blocks (`+blockColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			start_minute = excluded.start_minute,
			end_minute = excluded.end_minute,
			event_key = excluded.event_key,
			window_minutes = excluded.window_minutes,
			items = excluded.items,
			recurrence = excluded.recurrence,
			days_of_week = excluded.days_of_week,
			position = excluded.position,
			is_active = excluded.is_active`,
		b.ID, b.Name, nullableInt(b.StartMinute), nullableInt(b.EndMinute),
		nullableString(b.EventKey), int(b.Window/time.Minute), string(items),
		string(b.Recurrence), string(days), b.Position, b.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to save block: %w", err)
	}
	return nil
}

func (s *Store) FindBlock(ctx context.Context, id string) (*domain.HabitBlock, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blockColumns+` FROM habit_blocks WHERE id = ?`, id)
	b, err := scanBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("block %s: %w", id, domain.ErrNotFound)
	}
	return b, err
}

func (s *Store) ListBlocks(ctx context.Context) ([]*domain.HabitBlock, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+blockColumns+` FROM habit_blocks ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}
	defer rows.Close()

	var out []*domain.HabitBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

const challengeColumns = `id, title, kind, target_count, total_progress, last_recorded,
	plot_id, state, seeded_task_ids, sequential, reward_flower, reward_issued, planted_on`

func (s *Store) SaveChallenge(ctx context.Context, c *domain.Challenge) error {
	seeded, err := json.Marshal(c.SeededTaskIDs)
	if err != nil {
		return fmt.Errorf("failed to encode seeded_task_ids: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO challenges (`+challengeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			target_count = excluded.target_count,
			total_progress = excluded.total_progress,
			last_recorded = excluded.last_recorded,
			state = excluded.state,
			seeded_task_ids = excluded.seeded_task_ids,
			sequential = excluded.sequential,
			reward_issued = excluded.reward_issued`,
		c.ID, c.Title, string(c.Kind), c.TargetCount, c.TotalProgress,
		nullableDate(c.LastRecorded), c.PlotID, string(c.State), string(seeded),
		c.Sequential, string(c.RewardFlower), c.RewardIssued, c.PlantedOn.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save challenge: %w", err)
	}
	return nil
}

func (s *Store) FindChallenge(ctx context.Context, id string) (*domain.Challenge, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id = ?`, id)
	c, err := scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("challenge %s: %w", id, domain.ErrNotFound)
	}
	return c, err
}

func (s *Store) ListChallenges(ctx context.Context) ([]*domain.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+challengeColumns+` FROM challenges ORDER BY planted_on, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var out []*domain.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) FindChallengeByPlot(ctx context.Context, plotID string) (*domain.Challenge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+challengeColumns+` FROM challenges
		WHERE plot_id = ? AND state NOT IN ('bloomed', 'abandoned')
		ORDER BY planted_on DESC, id DESC LIMIT 1`, plotID)
	c, err := scanChallenge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plot %s: %w", plotID, domain.ErrNotFound)
	}
	return c, err
}

func (s *Store) AddFlower(ctx context.Context, f *domain.Flower) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flowers (id, type, earned_on, challenge_id) VALUES (?, ?, ?, ?)`,
		f.ID, string(f.Type), f.EarnedOn.String(), nullableString(f.ChallengeID))
	if err != nil {
		return fmt.Errorf("failed to add flower: %w", err)
	}
	return nil
}

func (s *Store) ListFlowers(ctx context.Context) ([]*domain.Flower, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, earned_on, challenge_id FROM flowers ORDER BY earned_on, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list flowers: %w", err)
	}
	defer rows.Close()

	var out []*domain.Flower
	for rows.Next() {
		var (
			f           domain.Flower
			typ, earned string
			challengeID sql.NullString
		)
		if err := rows.Scan(&f.ID, &typ, &earned, &challengeID); err != nil {
			return nil, fmt.Errorf("failed to scan flower: %w", err)
		}
		f.Type = domain.FlowerType(typ)
		if f.EarnedOn, err = domain.ParseDate(earned); err != nil {
			return nil, err
		}
		if challengeID.Valid {
			f.ChallengeID = &challengeID.String
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

func (s *Store) HasFlowerOn(ctx context.Context, date domain.Date, typ domain.FlowerType) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM flowers WHERE earned_on = ? AND type = ?`,
		date.String(), string(typ)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count flowers: %w", err)
	}
	return n > 0, nil
}

func (s *Store) SaveChild(ctx context.Context, c *domain.Child) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO children (id, name, care_status) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, care_status = excluded.care_status`,
		c.ID, c.Name, string(c.CareStatus))
	if err != nil {
		return fmt.Errorf("failed to save child: %w", err)
	}
	return nil
}

func (s *Store) FindChild(ctx context.Context, id string) (*domain.Child, error) {
	var (
		c      domain.Child
		status string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, care_status FROM children WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("child %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find child: %w", err)
	}
	c.CareStatus = domain.CareStatus(status)
	return &c, nil
}

func (s *Store) ListChildren(ctx context.Context) ([]*domain.Child, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, care_status FROM children ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	defer rows.Close()

	var out []*domain.Child
	for rows.Next() {
		var (
			c      domain.Child
			status string
		)
		if err := rows.Scan(&c.ID, &c.Name, &status); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		c.CareStatus = domain.CareStatus(status)
		out = append(out, &c)
	}
	return out, rows.Err()
}
