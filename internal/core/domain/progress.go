package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidProgress  = errors.New("invalid progress data")
	ErrProgressNotFound = errors.New("progress entry not found")
	ErrProgressConflict = errors.New("progress entry version conflict")
	ErrWeekNotOpen      = errors.New("week is not open for progress yet")
	ErrGoalNotStarted   = errors.New("goal cycle has not started yet")
	ErrCycleComplete    = errors.New("goal cycle is already complete")
	ErrUnauthorized     = errors.New("resource does not belong to user")
)

// WeeklyProgress is the value a user logged against one week of a goal cycle.
// There is at most one live entry per (goal, week).
type WeeklyProgress struct {
	ID        string `json:"id" db:"id"`
	GoalID    string `json:"goal_id" db:"goal_id"`
	UserID    string `json:"user_id" db:"user_id"`
	WeekIndex int    `json:"week" db:"week_index"`
	Value     int    `json:"value" db:"value"`
	Notes     string `json:"notes" db:"notes"`

	Version   int        `json:"version" db:"version"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func NewWeeklyProgress(goalID, userID string, week, value int) *WeeklyProgress {
	now := time.Now().UTC()

	return &WeeklyProgress{
		GoalID:    goalID,
		UserID:    userID,
		WeekIndex: week,
		Value:     value,

		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (p *WeeklyProgress) Validate() error {
	if strings.TrimSpace(p.GoalID) == "" {
		return errors.New("goal_id is required")
	}
	if strings.TrimSpace(p.UserID) == "" {
		return errors.New("user_id is required")
	}
	if p.Value < 0 {
		return errors.New("value cannot be negative")
	}
	if p.WeekIndex < 1 {
		return errors.New("week must be 1 or greater")
	}
	return nil
}

func (p *WeeklyProgress) Achieved(target int) bool {
	if target < 1 {
		target = 1
	}
	return p.Value >= target
}

// CompletionRate is the share of target reached, capped at 100.
func CompletionRate(value, target int) float64 {
	if target < 1 {
		target = 1
	}
	if value >= target {
		return 100
	}
	if value <= 0 {
		return 0
	}
	return float64(value) / float64(target) * 100
}
