package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWeeklyProgress(t *testing.T) {
	p := NewWeeklyProgress("goal-123", "user-456", 3, 500)

	t.Run("Should set core identity fields correctly", func(t *testing.T) {
		assert.Equal(t, "goal-123", p.GoalID)
		assert.Equal(t, "user-456", p.UserID)
		assert.Equal(t, 3, p.WeekIndex)
		assert.Equal(t, 500, p.Value)
	})

	t.Run("Should initialize Sync Engine fields", func(t *testing.T) {
		assert.Equal(t, 1, p.Version, "Version must always start at 1 for optimistic locking")
		assert.False(t, p.CreatedAt.IsZero())
		assert.False(t, p.UpdatedAt.IsZero())
		assert.Nil(t, p.DeletedAt)
	})
}

func TestWeeklyProgress_Validate(t *testing.T) {
	tests := []struct {
		name     string
		progress *WeeklyProgress
		errorMsg string
	}{
		{"Valid", NewWeeklyProgress("g", "u", 1, 0), ""},
		{"Missing goal", NewWeeklyProgress(" ", "u", 1, 1), "goal_id is required"},
		{"Missing user", NewWeeklyProgress("g", "", 1, 1), "user_id is required"},
		{"Negative value", NewWeeklyProgress("g", "u", 1, -1), "value cannot be negative"},
		{"Week zero", NewWeeklyProgress("g", "u", 0, 1), "week must be 1 or greater"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.progress.Validate()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.errorMsg)
		})
	}
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, CompletionRate(0, 10))
	assert.Equal(t, 50.0, CompletionRate(5, 10))
	assert.Equal(t, 100.0, CompletionRate(15, 10), "Rate is capped at 100")
	assert.Equal(t, 100.0, CompletionRate(1, 0), "Non-positive target counts as 1")

	p := NewWeeklyProgress("g", "u", 1, 3)
	assert.True(t, p.Achieved(3))
	assert.False(t, p.Achieved(4))
}
