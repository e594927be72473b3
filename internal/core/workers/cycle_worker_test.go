package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

type MockGoalRepo struct {
	mock.Mock
}

func (m *MockGoalRepo) GetByID(ctx context.Context, id string) (*domain.Goal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Goal), args.Error(1)
}

func (m *MockGoalRepo) Update(ctx context.Context, goal *domain.Goal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockGoalRepo) ListDueForCompletion(ctx context.Context, asOf time.Time) ([]*domain.Goal, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Goal), args.Error(1)
}

type MockProgressRepo struct {
	mock.Mock
}

func (m *MockProgressRepo) ListByGoalID(ctx context.Context, goalID string) ([]*domain.WeeklyProgress, error) {
	args := m.Called(ctx, goalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WeeklyProgress), args.Error(1)
}

type recordingObserver struct {
	results   []string
	completed int
}

func (o *recordingObserver) RecordCycleJob(_ time.Duration, result string) {
	o.results = append(o.results, result)
}

func (o *recordingObserver) GoalCompleted() { o.completed++ }

func weeks(values ...int) []*domain.WeeklyProgress {
	out := make([]*domain.WeeklyProgress, 0, len(values))
	for i, v := range values {
		out = append(out, &domain.WeeklyProgress{WeekIndex: i + 1, Value: v})
	}
	return out
}

func TestCalculateWeekStreaks(t *testing.T) {
	deleted := time.Now()

	tests := []struct {
		name        string
		entries     []*domain.WeeklyProgress
		target      int
		upTo        int
		wantCurrent int
		wantLongest int
	}{
		{name: "No entries", entries: nil, target: 1, upTo: 3},
		{name: "Cycle not started", entries: weeks(1, 1), target: 1, upTo: 0},
		{name: "Every week achieved", entries: weeks(1, 1, 1), target: 1, upTo: 3, wantCurrent: 3, wantLongest: 3},
		{
			name:        "Current week still open keeps streak alive",
			entries:     weeks(1, 1, 0),
			target:      1,
			upTo:        3,
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name:        "Missed previous week breaks streak",
			entries:     weeks(1, 1, 0, 0),
			target:      1,
			upTo:        4,
			wantCurrent: 0,
			wantLongest: 2,
		},
		{
			name:        "Longest run in the past",
			entries:     weeks(5, 5, 5, 0, 5),
			target:      5,
			upTo:        5,
			wantCurrent: 1,
			wantLongest: 3,
		},
		{
			name:        "Below target does not count",
			entries:     weeks(3, 4, 5),
			target:      5,
			upTo:        3,
			wantCurrent: 1,
			wantLongest: 1,
		},
		{
			name:        "Future weeks ignored",
			entries:     weeks(1, 1, 1, 1),
			target:      1,
			upTo:        2,
			wantCurrent: 2,
			wantLongest: 2,
		},
		{
			name: "Deleted entries ignored",
			entries: []*domain.WeeklyProgress{
				{WeekIndex: 1, Value: 1},
				{WeekIndex: 2, Value: 1, DeletedAt: &deleted},
			},
			target:      1,
			upTo:        2,
			wantCurrent: 1,
			wantLongest: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotCurrent, gotLongest := calculateWeekStreaks(tt.entries, tt.target, tt.upTo)
			assert.Equal(t, tt.wantCurrent, gotCurrent, "Current Streak mismatch")
			assert.Equal(t, tt.wantLongest, gotLongest, "Longest Streak mismatch")
		})
	}
}

func scheduledGoal(t *testing.T, start time.Time, cycleWeeks int) *domain.Goal {
	t.Helper()
	g, err := domain.NewGoal("user-1", "Run", cycleWeeks)
	require.NoError(t, err)
	require.NoError(t, g.Schedule(start))
	return g
}

func TestCycleWorker_Process(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success: Updates Streaks Mid Cycle", func(t *testing.T) {
		goal := scheduledGoal(t, start, 12)
		now := time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC)

		gRepo := new(MockGoalRepo)
		pRepo := new(MockProgressRepo)
		obs := &recordingObserver{}
		w := NewCycleWorker(gRepo, pRepo, cycle.NewCalculator(time.UTC, func() time.Time { return now }), obs)

		gRepo.On("GetByID", ctx, goal.ID).Return(goal, nil)
		pRepo.On("ListByGoalID", ctx, goal.ID).Return(weeks(1, 1), nil)
		gRepo.On("Update", ctx, mock.MatchedBy(func(g *domain.Goal) bool {
			return g.CurrentStreak == 2 && g.LongestStreak == 2 && g.CompletedAt == nil
		})).Return(nil)

		result, err := w.Process(ctx, goal.ID)

		require.NoError(t, err)
		assert.Equal(t, ResultUpdated, result)
		assert.Equal(t, 0, obs.completed)
		gRepo.AssertExpectations(t)
	})

	t.Run("Success: Marks Finished Cycle Complete", func(t *testing.T) {
		goal := scheduledGoal(t, start, 2)
		goal.UpdateStreak(2, 2)
		now := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

		gRepo := new(MockGoalRepo)
		pRepo := new(MockProgressRepo)
		obs := &recordingObserver{}
		w := NewCycleWorker(gRepo, pRepo, cycle.NewCalculator(time.UTC, func() time.Time { return now }), obs)

		gRepo.On("GetByID", ctx, goal.ID).Return(goal, nil)
		pRepo.On("ListByGoalID", ctx, goal.ID).Return(weeks(1, 1), nil)
		gRepo.On("Update", ctx, goal).Return(nil)

		result, err := w.Process(ctx, goal.ID)

		require.NoError(t, err)
		assert.Equal(t, ResultUpdated, result)
		require.NotNil(t, goal.CompletedAt)
		assert.True(t, goal.CompletedAt.Equal(now))
		assert.Equal(t, 1, obs.completed)
	})

	t.Run("Success: Nothing Changed", func(t *testing.T) {
		goal := scheduledGoal(t, start, 12)
		goal.UpdateStreak(1, 1)
		now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

		gRepo := new(MockGoalRepo)
		pRepo := new(MockProgressRepo)
		w := NewCycleWorker(gRepo, pRepo, cycle.NewCalculator(time.UTC, func() time.Time { return now }), nil)

		gRepo.On("GetByID", ctx, goal.ID).Return(goal, nil)
		pRepo.On("ListByGoalID", ctx, goal.ID).Return(weeks(1), nil)

		result, err := w.Process(ctx, goal.ID)

		require.NoError(t, err)
		assert.Equal(t, ResultUnchanged, result)
		gRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Success: Unscheduled Goal Skipped", func(t *testing.T) {
		goal, err := domain.NewGoal("user-1", "Read", 12)
		require.NoError(t, err)

		gRepo := new(MockGoalRepo)
		pRepo := new(MockProgressRepo)
		w := NewCycleWorker(gRepo, pRepo, cycle.NewCalculator(time.UTC, nil), nil)

		gRepo.On("GetByID", ctx, goal.ID).Return(goal, nil)

		result, err := w.Process(ctx, goal.ID)

		require.NoError(t, err)
		assert.Equal(t, ResultUnchanged, result)
		pRepo.AssertNotCalled(t, "ListByGoalID", mock.Anything, mock.Anything)
	})

	t.Run("Error: Goal Lookup Fails", func(t *testing.T) {
		gRepo := new(MockGoalRepo)
		pRepo := new(MockProgressRepo)
		w := NewCycleWorker(gRepo, pRepo, cycle.NewCalculator(time.UTC, nil), nil)

		gRepo.On("GetByID", ctx, "missing").Return(nil, domain.ErrGoalNotFound)

		result, err := w.Process(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrGoalNotFound)
		assert.Equal(t, ResultError, result)
	})

	t.Run("Error: Update Fails", func(t *testing.T) {
		goal := scheduledGoal(t, start, 12)
		now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

		gRepo := new(MockGoalRepo)
		pRepo := new(MockProgressRepo)
		w := NewCycleWorker(gRepo, pRepo, cycle.NewCalculator(time.UTC, func() time.Time { return now }), nil)

		gRepo.On("GetByID", ctx, goal.ID).Return(goal, nil)
		pRepo.On("ListByGoalID", ctx, goal.ID).Return(weeks(1), nil)
		gRepo.On("Update", ctx, goal).Return(errors.New("db down"))

		result, err := w.Process(ctx, goal.ID)

		assert.Error(t, err)
		assert.Equal(t, ResultError, result)
	})
}

func TestCycleWorker_Enqueue(t *testing.T) {
	t.Run("Success: Nil Worker Is Safe", func(t *testing.T) {
		var w *CycleWorker
		assert.NotPanics(t, func() { w.Enqueue("goal-1") })
	})

	t.Run("Success: Full Queue Drops Job", func(t *testing.T) {
		obs := &recordingObserver{}
		w := NewCycleWorker(new(MockGoalRepo), new(MockProgressRepo), cycle.NewCalculator(time.UTC, nil), obs)

		for i := 0; i < defaultQueueSize+1; i++ {
			w.Enqueue("goal-1")
		}

		assert.Len(t, w.jobs, defaultQueueSize)
		assert.Equal(t, []string{ResultDropped}, obs.results)
	})

	t.Run("Success: Background Processing", func(t *testing.T) {
		goal := scheduledGoal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 12)
		now := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

		gRepo := new(MockGoalRepo)
		pRepo := new(MockProgressRepo)
		w := NewCycleWorker(gRepo, pRepo, cycle.NewCalculator(time.UTC, func() time.Time { return now }), nil)

		done := make(chan struct{})
		gRepo.On("GetByID", mock.Anything, goal.ID).Return(goal, nil)
		pRepo.On("ListByGoalID", mock.Anything, goal.ID).Return(weeks(1), nil)
		gRepo.On("Update", mock.Anything, goal).Return(nil).Run(func(mock.Arguments) { close(done) })

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		w.Start(ctx)
		w.Enqueue(goal.ID)

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("worker did not process the job")
		}
		assert.Equal(t, 1, goal.CurrentStreak)
	})
}

func TestCycleWorker_Sweep(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Success: Queues goals due on today's date", func(t *testing.T) {
		now := time.Date(2024, 1, 20, 15, 0, 0, 0, time.UTC)
		due := []*domain.Goal{scheduledGoal(t, start, 1), scheduledGoal(t, start, 2)}

		gRepo := new(MockGoalRepo)
		w := NewCycleWorker(gRepo, new(MockProgressRepo), cycle.NewCalculator(time.UTC, func() time.Time { return now }), nil)

		gRepo.On("ListDueForCompletion", ctx, time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)).Return(due, nil)

		n, err := w.Sweep(ctx)

		require.NoError(t, err)
		assert.Equal(t, 2, n)
		require.Len(t, w.jobs, 2)
		assert.Equal(t, due[0].ID, (<-w.jobs).GoalID)
		assert.Equal(t, due[1].ID, (<-w.jobs).GoalID)
	})

	t.Run("Error: Listing fails", func(t *testing.T) {
		gRepo := new(MockGoalRepo)
		w := NewCycleWorker(gRepo, new(MockProgressRepo), cycle.NewCalculator(time.UTC, nil), nil)

		gRepo.On("ListDueForCompletion", ctx, mock.Anything).Return(nil, errors.New("db down"))

		n, err := w.Sweep(ctx)

		assert.Error(t, err)
		assert.Zero(t, n)
		assert.Empty(t, w.jobs)
	})

	t.Run("Success: Started worker completes a finished cycle", func(t *testing.T) {
		goal := scheduledGoal(t, start, 1)
		now := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

		gRepo := new(MockGoalRepo)
		pRepo := new(MockProgressRepo)
		obs := &recordingObserver{}
		w := NewCycleWorker(gRepo, pRepo, cycle.NewCalculator(time.UTC, func() time.Time { return now }), obs).
			WithSweepInterval(time.Hour)

		done := make(chan struct{})
		gRepo.On("ListDueForCompletion", mock.Anything, mock.Anything).Return([]*domain.Goal{goal}, nil)
		gRepo.On("GetByID", mock.Anything, goal.ID).Return(goal, nil)
		pRepo.On("ListByGoalID", mock.Anything, goal.ID).Return(weeks(1), nil)
		gRepo.On("Update", mock.Anything, goal).Return(nil).Run(func(mock.Arguments) { close(done) })

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		w.Start(ctx)

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("sweep did not complete the goal")
		}
		require.NotNil(t, goal.CompletedAt)
		assert.True(t, goal.CompletedAt.Equal(now))
	})
}
