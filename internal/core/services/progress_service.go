package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
	"github.com/comitanigiacomo/kanso-goals/internal/core/workers"
)

type ProgressService struct {
	repo     domain.ProgressRepository
	goalRepo domain.GoalRepository
	worker   *workers.CycleWorker
	calc     *cycle.Calculator
}

func NewProgressService(repo domain.ProgressRepository, goalRepo domain.GoalRepository, worker *workers.CycleWorker, calc *cycle.Calculator) *ProgressService {
	return &ProgressService{
		repo:     repo,
		goalRepo: goalRepo,
		worker:   worker,
		calc:     calc,
	}
}

// RecordProgressInput logs a value for one week. Week 0 means the week
// containing today.
type RecordProgressInput struct {
	GoalID string
	UserID string
	Week   int
	Value  int
	Notes  string
}

type UpdateProgressInput struct {
	ID      string
	UserID  string
	Value   int
	Notes   string
	Version int
}

func (s *ProgressService) ownedGoal(ctx context.Context, goalID, userID string) (*domain.Goal, error) {
	goal, err := s.goalRepo.GetByID(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return goal, nil
}

// openWeek resolves week against the goal's cycle and checks it accepts
// writes: the cycle must be running and the week must not be in the future.
func (s *ProgressService) openWeek(goal *domain.Goal, week int) (int, error) {
	c, err := goal.Cycle(s.calc.Location())
	if err != nil {
		return 0, err
	}

	status := c.Status(s.calc.Now())
	switch status.Phase {
	case cycle.PhaseNotStarted:
		return 0, domain.ErrGoalNotStarted
	case cycle.PhaseComplete:
		return 0, domain.ErrCycleComplete
	}

	if week == 0 {
		return status.Week, nil
	}
	if _, err := c.Week(week); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidProgress, err)
	}
	if week > status.Week {
		return 0, fmt.Errorf("%w: week %d opens after week %d", domain.ErrWeekNotOpen, week, status.Week)
	}
	return week, nil
}

// Record creates the entry for the week or overwrites the live one.
func (s *ProgressService) Record(ctx context.Context, input RecordProgressInput) (*domain.WeeklyProgress, error) {
	if input.Week < 0 {
		return nil, fmt.Errorf("%w: week must be 1 or greater", domain.ErrInvalidProgress)
	}

	goal, err := s.ownedGoal(ctx, input.GoalID, input.UserID)
	if err != nil {
		return nil, err
	}

	week, err := s.openWeek(goal, input.Week)
	if err != nil {
		return nil, err
	}

	entry := domain.NewWeeklyProgress(goal.ID, input.UserID, week, input.Value)
	entry.Notes = input.Notes
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidProgress, err)
	}

	existing, err := s.repo.GetByGoalAndWeek(ctx, goal.ID, week)
	switch {
	case err == nil:
		existing.Value = entry.Value
		existing.Notes = entry.Notes
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		entry = existing
	case errors.Is(err, domain.ErrProgressNotFound):
		if err := s.repo.Create(ctx, entry); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.worker.Enqueue(goal.ID)

	return entry, nil
}

func (s *ProgressService) Update(ctx context.Context, input UpdateProgressInput) (*domain.WeeklyProgress, error) {
	existing, err := s.GetByID(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && existing.Version != input.Version {
		return nil, domain.ErrProgressConflict
	}

	goal, err := s.ownedGoal(ctx, existing.GoalID, input.UserID)
	if err != nil {
		return nil, err
	}
	if _, err := s.openWeek(goal, existing.WeekIndex); err != nil {
		return nil, err
	}

	existing.Value = input.Value
	existing.Notes = input.Notes
	if err := existing.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidProgress, err)
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	s.worker.Enqueue(existing.GoalID)

	return existing, nil
}

func (s *ProgressService) GetByID(ctx context.Context, id string, userID string) (*domain.WeeklyProgress, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return entry, nil
}

func (s *ProgressService) ListByGoalID(ctx context.Context, goalID string, userID string) ([]*domain.WeeklyProgress, error) {
	if _, err := s.ownedGoal(ctx, goalID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListByGoalID(ctx, goalID)
}

func (s *ProgressService) Delete(ctx context.Context, id string, userID string) error {
	entry, err := s.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.worker.Enqueue(entry.GoalID)

	return nil
}

func (s *ProgressService) GetDelta(ctx context.Context, userID string, since time.Time) ([]*domain.WeeklyProgress, error) {
	return s.repo.GetChanges(ctx, userID, since)
}
