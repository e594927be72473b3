package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

const progressColumns = `
	id, goal_id, user_id, week_index, value, notes,
	version, created_at, updated_at, deleted_at`

type PostgresProgressRepository struct {
	db *sqlx.DB
}

func NewPostgresProgressRepository(db *sqlx.DB) *PostgresProgressRepository {
	return &PostgresProgressRepository{db: db}
}

func (r *PostgresProgressRepository) Create(ctx context.Context, p *domain.WeeklyProgress) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	query := `
		INSERT INTO weekly_progress (` + progressColumns + `)
		VALUES (
			:id, :goal_id, :user_id, :week_index, :value, :notes,
			:version, :created_at, :updated_at, :deleted_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		switch pgErrorCode(err) {
		case pgForeignKeyViolation:
			return errors.New("referenced goal or user does not exist")
		case pgUniqueViolation:
			return domain.ErrProgressConflict
		}
		return err
	}
	return nil
}

func (r *PostgresProgressRepository) GetByID(ctx context.Context, id string) (*domain.WeeklyProgress, error) {
	return r.getOne(ctx, `WHERE id = $1 AND deleted_at IS NULL`, id)
}

func (r *PostgresProgressRepository) GetByGoalAndWeek(ctx context.Context, goalID string, week int) (*domain.WeeklyProgress, error) {
	return r.getOne(ctx, `WHERE goal_id = $1 AND week_index = $2 AND deleted_at IS NULL`, goalID, week)
}

func (r *PostgresProgressRepository) getOne(ctx context.Context, where string, args ...any) (*domain.WeeklyProgress, error) {
	var p domain.WeeklyProgress
	query := `SELECT ` + progressColumns + ` FROM weekly_progress ` + where

	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProgressNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresProgressRepository) ListByGoalID(ctx context.Context, goalID string) ([]*domain.WeeklyProgress, error) {
	entries := []*domain.WeeklyProgress{}
	query := `
		SELECT ` + progressColumns + ` FROM weekly_progress
		WHERE goal_id = $1 AND deleted_at IS NULL
		ORDER BY week_index ASC`

	if err := r.db.SelectContext(ctx, &entries, query, goalID); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresProgressRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.WeeklyProgress, error) {
	entries := []*domain.WeeklyProgress{}
	query := `
		SELECT ` + progressColumns + ` FROM weekly_progress
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY goal_id, week_index ASC`

	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PostgresProgressRepository) Update(ctx context.Context, p *domain.WeeklyProgress) error {
	p.Version++
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE weekly_progress
		SET value = :value,
		    notes = :notes,
		    version = :version,
		    updated_at = :updated_at
		WHERE id = :id
		  AND version = :version - 1
		  AND deleted_at IS NULL`

	result, err := r.db.NamedExecContext(ctx, query, p)
	if err != nil {
		p.Version--
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		p.Version--
		exists, _ := r.exists(ctx, p.ID)
		if !exists {
			return domain.ErrProgressNotFound
		}
		return domain.ErrProgressConflict
	}
	return nil
}

func (r *PostgresProgressRepository) Delete(ctx context.Context, id string, userID string) error {
	query := `
		UPDATE weekly_progress
		SET deleted_at = $1,
		    updated_at = $1,
		    version = version + 1
		WHERE id = $2
		  AND user_id = $3
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrProgressNotFound
	}
	return nil
}

func (r *PostgresProgressRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.WeeklyProgress, error) {
	entries := []*domain.WeeklyProgress{}
	query := `
		SELECT ` + progressColumns + ` FROM weekly_progress
		WHERE user_id = $1 AND updated_at > $2
		ORDER BY updated_at ASC`

	if err := r.db.SelectContext(ctx, &entries, query, userID, since); err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	return entries, nil
}

func (r *PostgresProgressRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT count(*) FROM weekly_progress WHERE id = $1 AND deleted_at IS NULL`, id)
	return count > 0, err
}
