package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrGoalNotFound = errors.New("goal not found")
	ErrGoalConflict = errors.New("goal version conflict")
)

type GoalRepository interface {
	// Create persists a new goal.
	Create(ctx context.Context, goal *Goal) error

	// GetByID retrieves a live (non-deleted) goal.
	GetByID(ctx context.Context, id string) (*Goal, error)

	// ListByUserID retrieves all live goals of a user, ordered by sort order.
	ListByUserID(ctx context.Context, userID string) ([]*Goal, error)

	// Update modifies an existing goal.
	// Implementations must compare Version and return ErrGoalConflict on mismatch.
	Update(ctx context.Context, goal *Goal) error

	// Delete soft-deletes a goal.
	Delete(ctx context.Context, id string) error

	// GetChanges [SYNC] returns goals created, updated or deleted after since.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*Goal, error)

	// ListDueForCompletion returns live scheduled goals without a completion
	// time whose end date is on or before the calendar date of asOf.
	ListDueForCompletion(ctx context.Context, asOf time.Time) ([]*Goal, error)
}

type ProgressRepository interface {
	Create(ctx context.Context, p *WeeklyProgress) error

	// Update must handle optimistic locking on Version.
	Update(ctx context.Context, p *WeeklyProgress) error

	// Delete soft-deletes an entry owned by userID.
	Delete(ctx context.Context, id string, userID string) error

	GetByID(ctx context.Context, id string) (*WeeklyProgress, error)

	// GetByGoalAndWeek returns the live entry for one week, or ErrProgressNotFound.
	GetByGoalAndWeek(ctx context.Context, goalID string, week int) (*WeeklyProgress, error)

	// ListByGoalID returns live entries ordered by week.
	ListByGoalID(ctx context.Context, goalID string) ([]*WeeklyProgress, error)

	ListByUserID(ctx context.Context, userID string) ([]*WeeklyProgress, error)

	// GetChanges [SYNC] includes soft-deleted rows so clients can drop them.
	GetChanges(ctx context.Context, userID string, since time.Time) ([]*WeeklyProgress, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type GroupRepository interface {
	Create(ctx context.Context, group *Group) error

	// GetByID loads the group together with its member ids.
	GetByID(ctx context.Context, id string) (*Group, error)

	ListByUserID(ctx context.Context, userID string) ([]*Group, error)
	AddMember(ctx context.Context, groupID, userID string) error
}
