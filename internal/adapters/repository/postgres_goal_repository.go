package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

const goalColumns = `
	id, user_id, group_id, title, description, color, icon, sort_order,
	type, target_value, unit, cycle_weeks, start_date, end_date,
	current_streak, longest_streak, completed_at, archived_at,
	version, deleted_at, created_at, updated_at`

type PostgresGoalRepository struct {
	db *sqlx.DB
}

func NewPostgresGoalRepository(db *sqlx.DB) *PostgresGoalRepository {
	return &PostgresGoalRepository{db: db}
}

func (r *PostgresGoalRepository) Create(ctx context.Context, g *domain.Goal) error {
	query := `
		INSERT INTO goals (` + goalColumns + `)
		VALUES (
			:id, :user_id, :group_id, :title, :description, :color, :icon, :sort_order,
			:type, :target_value, :unit, :cycle_weeks, :start_date, :end_date,
			:current_streak, :longest_streak, :completed_at, :archived_at,
			1, NULL, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, g); err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("referenced user or group does not exist: %w", err)
		}
		return fmt.Errorf("failed to insert goal: %w", err)
	}

	g.Version = 1
	return nil
}

func (r *PostgresGoalRepository) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	var g domain.Goal
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = $1 AND deleted_at IS NULL`

	if err := r.db.GetContext(ctx, &g, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGoalNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &g, nil
}

func (r *PostgresGoalRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	goals := []*domain.Goal{}
	query := `
		SELECT ` + goalColumns + ` FROM goals
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY sort_order ASC, created_at DESC`

	if err := r.db.SelectContext(ctx, &goals, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return goals, nil
}

func (r *PostgresGoalRepository) Update(ctx context.Context, g *domain.Goal) error {
	query := `
		UPDATE goals SET
			group_id = $1, title = $2, description = $3, color = $4, icon = $5, sort_order = $6,
			type = $7, target_value = $8, unit = $9, cycle_weeks = $10,
			start_date = $11, end_date = $12,
			current_streak = $13, longest_streak = $14,
			completed_at = $15, archived_at = $16,
			updated_at = NOW(), version = version + 1
		WHERE id = $17 AND version = $18 AND deleted_at IS NULL
		RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		g.GroupID, g.Title, g.Description, g.Color, g.Icon, g.SortOrder,
		g.Type, g.TargetValue, g.Unit, g.CycleWeeks,
		g.StartDate, g.EndDate,
		g.CurrentStreak, g.LongestStreak,
		g.CompletedAt, g.ArchivedAt,
		g.ID, g.Version,
	)

	var newVersion int
	var newUpdatedAt time.Time
	if err := row.Scan(&newVersion, &newUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			exists, checkErr := r.exists(ctx, g.ID)
			if checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}
			if !exists {
				return domain.ErrGoalNotFound
			}
			return domain.ErrGoalConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	g.Version = newVersion
	g.UpdatedAt = newUpdatedAt
	return nil
}

func (r *PostgresGoalRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE goals
		SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
		WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGoalNotFound
	}
	return nil
}

func (r *PostgresGoalRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Goal, error) {
	goals := []*domain.Goal{}
	query := `
		SELECT ` + goalColumns + ` FROM goals
		WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &goals, query, userID, since); err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	return goals, nil
}

func (r *PostgresGoalRepository) ListDueForCompletion(ctx context.Context, asOf time.Time) ([]*domain.Goal, error) {
	goals := []*domain.Goal{}
	query := `
		SELECT ` + goalColumns + ` FROM goals
		WHERE deleted_at IS NULL AND completed_at IS NULL
		  AND end_date IS NOT NULL AND end_date <= $1::date
		ORDER BY end_date ASC`

	if err := r.db.SelectContext(ctx, &goals, query, asOf.Format(time.DateOnly)); err != nil {
		return nil, fmt.Errorf("due goals query error: %w", err)
	}
	return goals, nil
}

func (r *PostgresGoalRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM goals WHERE id = $1 AND deleted_at IS NULL`, id)
	return count > 0, err
}
