package services

import (
	"context"
	"fmt"
	"time"

	"github.com/comitanigiacomo/kanso-goals/internal/core/cycle"
	"github.com/comitanigiacomo/kanso-goals/internal/core/domain"
)

type GoalService struct {
	repo         domain.GoalRepository
	progressRepo domain.ProgressRepository
	groupRepo    domain.GroupRepository
	calc         *cycle.Calculator
}

func NewGoalService(repo domain.GoalRepository, progressRepo domain.ProgressRepository, groupRepo domain.GroupRepository, calc *cycle.Calculator) *GoalService {
	return &GoalService{
		repo:         repo,
		progressRepo: progressRepo,
		groupRepo:    groupRepo,
		calc:         calc,
	}
}

type CreateGoalInput struct {
	UserID      string
	GroupID     *string
	Title       string
	Description string
	Color       string
	Icon        string
	Type        string
	Unit        string
	TargetValue int
	CycleWeeks  int
	StartDate   *time.Time
}

type UpdateGoalInput struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Color       string
	Icon        string
	Type        string
	Unit        string
	TargetValue int
	CycleWeeks  int
	StartDate   *time.Time
	SortOrder   *int
	Version     int
}

func (s *GoalService) Create(ctx context.Context, input CreateGoalInput) (*domain.Goal, error) {
	goal, err := domain.NewGoal(input.UserID, input.Title, input.CycleWeeks)
	if err != nil {
		return nil, err
	}

	err = goal.Update(
		input.Title,
		input.Description,
		input.Color,
		input.Icon,
		mergeString(input.Type, goal.Type),
		input.Unit,
		input.TargetValue,
	)
	if err != nil {
		return nil, err
	}

	if input.StartDate != nil {
		if err := goal.Schedule(*input.StartDate); err != nil {
			return nil, err
		}
	}

	if input.GroupID != nil && *input.GroupID != "" {
		if err := s.checkMembership(ctx, *input.GroupID, input.UserID); err != nil {
			return nil, err
		}
		goal.GroupID = input.GroupID
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

func (s *GoalService) checkMembership(ctx context.Context, groupID, userID string) error {
	if s.groupRepo == nil {
		return domain.ErrGroupNotFound
	}
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(userID) {
		return domain.ErrNotGroupMember
	}
	return nil
}

func (s *GoalService) Get(ctx context.Context, id, userID string) (*domain.Goal, error) {
	goal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, domain.ErrGoalNotFound
	}
	return goal, nil
}

func (s *GoalService) ListByUserID(ctx context.Context, userID string) ([]*domain.Goal, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *GoalService) GetDelta(ctx context.Context, userID string, lastSync time.Time) ([]*domain.Goal, error) {
	return s.repo.GetChanges(ctx, userID, lastSync)
}

func (s *GoalService) Update(ctx context.Context, input UpdateGoalInput) (*domain.Goal, error) {
	goal, err := s.Get(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Version > 0 && goal.Version != input.Version {
		return nil, fmt.Errorf("%w: client v%d vs server v%d", domain.ErrGoalConflict, input.Version, goal.Version)
	}

	target := goal.TargetValue
	if input.TargetValue > 0 {
		target = input.TargetValue
	}

	err = goal.Update(
		mergeString(input.Title, goal.Title),
		mergeString(input.Description, goal.Description),
		mergeString(input.Color, goal.Color),
		mergeString(input.Icon, goal.Icon),
		mergeString(input.Type, goal.Type),
		mergeString(input.Unit, goal.Unit),
		target,
	)
	if err != nil {
		return nil, err
	}

	if input.CycleWeeks > 0 && input.CycleWeeks != goal.CycleWeeks {
		if err := goal.ChangeCycleWeeks(input.CycleWeeks); err != nil {
			return nil, err
		}
	}

	if input.StartDate != nil {
		if err := goal.Schedule(*input.StartDate); err != nil {
			return nil, err
		}
	}

	if input.SortOrder != nil {
		if err := goal.ChangePosition(*input.SortOrder); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, err
	}

	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, id string, userID string) error {
	if _, err := s.Get(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Week returns the calendar range of one week of the goal's cycle.
func (s *GoalService) Week(ctx context.Context, id, userID string, week int) (cycle.WeekRange, error) {
	goal, err := s.Get(ctx, id, userID)
	if err != nil {
		return cycle.WeekRange{}, err
	}

	c, err := goal.Cycle(s.calc.Location())
	if err != nil {
		return cycle.WeekRange{}, err
	}

	return c.Week(week)
}

// Report builds the week-by-week view of a goal: every week of the cycle with
// its date range, logged value and whether it can still be edited.
func (s *GoalService) Report(ctx context.Context, id, userID string) (*domain.GoalCycleReport, error) {
	goal, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	report := &domain.GoalCycleReport{
		GoalID:      goal.ID,
		Title:       goal.Title,
		TargetValue: goal.TargetValue,
		Unit:        goal.Unit,
		CycleWeeks:  goal.CycleWeeks,
		StartDate:   goal.StartDate,
		EndDate:     goal.EndDate,
		Status:      cycle.NotStarted(goal.CycleWeeks),
		Weeks:       []domain.WeekRow{},
	}

	c, err := goal.Cycle(s.calc.Location())
	if err != nil {
		report.StatusLabel = "Not scheduled"
		return report, nil
	}
	report.Scheduled = true

	entries, err := s.progressRepo.ListByGoalID(ctx, goal.ID)
	if err != nil {
		return nil, err
	}
	idx := indexProgress(entries)

	now := s.calc.Now()
	status := c.Status(now)
	report.Status = status
	report.StatusLabel = status.Label()

	elapsed := 0
	if status.IsStarted() {
		elapsed = c.WeekOf(now)
	}

	for _, w := range c.AllWeeks() {
		row := domain.WeekRow{
			Week:      w.Index,
			StartDate: w.Start,
			EndDate:   w.End,
			Label:     w.Label(),
			Current:   status.Phase == cycle.PhaseInProgress && w.Index == status.Week,
			Editable:  status.Phase == cycle.PhaseInProgress && w.Index <= status.Week,
		}

		if p, ok := idx[goal.ID][w.Index]; ok {
			row.Value = p.Value
			row.Achieved = p.Achieved(goal.TargetValue)
			row.ProgressID = p.ID
			row.Version = p.Version
		}

		if row.Achieved && w.Index <= elapsed {
			report.WeeksAchieved++
		}

		report.Weeks = append(report.Weeks, row)
	}

	if elapsed > 0 {
		report.CompletionRate = float64(report.WeeksAchieved) / float64(elapsed) * 100
	}

	return report, nil
}
