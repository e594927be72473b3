package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

type PostgresGroupRepository struct {
	db *sqlx.DB
}

func NewPostgresGroupRepository(db *sqlx.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

// Create inserts the group and its initial members in one transaction.
func (r *PostgresGroupRepository) Create(ctx context.Context, g *domain.Group) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO groups (id, name, owner_id, created_at, updated_at)
		VALUES (:id, :name, :owner_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, g); err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, userID := range g.Members {
		if err := addMember(ctx, tx, g.ID, userID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *PostgresGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	var g domain.Group
	query := `SELECT id, name, owner_id, created_at, updated_at FROM groups WHERE id = $1`

	if err := r.db.GetContext(ctx, &g, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}

	g.Members = []string{}
	err := r.db.SelectContext(ctx, &g.Members,
		`SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY joined_at ASC`, id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *PostgresGroupRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Group, error) {
	groups := []*domain.Group{}
	query := `
		SELECT g.id, g.name, g.owner_id, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = $1
		ORDER BY g.created_at ASC`

	if err := r.db.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *PostgresGroupRepository) AddMember(ctx context.Context, groupID, userID string) error {
	return addMember(ctx, r.db, groupID, userID)
}

func addMember(ctx context.Context, db sqlx.ExecerContext, groupID, userID string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, NOW())`,
		groupID, userID)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return domain.ErrAlreadyGroupMember
		case pgForeignKeyViolation:
			return domain.ErrGroupNotFound
		}
		return fmt.Errorf("failed to add group member: %w", err)
	}
	return nil
}
